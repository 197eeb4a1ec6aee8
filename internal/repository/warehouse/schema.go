package warehouse

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/BarkinBalci/bi-warehouse/internal/domain"
)

type ColumnType int

const (
	TypeText ColumnType = iota
	TypeInteger
	TypeReal
)

// System columns present on every table, populated by the store or the loader
const (
	ColumnID        = "id"
	ColumnCreatedAt = "created_at"
)

type Column struct {
	Name     string
	Type     ColumnType
	Required bool
}

// Table is the dialect-neutral definition of a warehouse table, system columns excluded
type Table struct {
	Name    string
	Columns []Column
}

// Catalogue holds the star schema. Derived metrics are required so an
// untransformed record set can't be loaded.
var Catalogue = []Table{
	{
		Name: domain.TableCampaigns,
		Columns: []Column{
			{Name: "tenant_id", Type: TypeText, Required: true},
			{Name: "campaign_id", Type: TypeText, Required: true},
			{Name: "campaign_name", Type: TypeText},
			{Name: "date", Type: TypeText},
			{Name: "impressions", Type: TypeInteger},
			{Name: "clicks", Type: TypeInteger},
			{Name: "conversions", Type: TypeInteger},
			{Name: "spend", Type: TypeReal},
			{Name: "revenue", Type: TypeReal},
			{Name: domain.ColumnCTR, Type: TypeReal, Required: true},
			{Name: domain.ColumnROI, Type: TypeReal, Required: true},
			{Name: "region", Type: TypeText},
			{Name: "product", Type: TypeText},
		},
	},
	{
		Name: domain.TableTargets,
		Columns: []Column{
			{Name: "tenant_id", Type: TypeText, Required: true},
			{Name: "region", Type: TypeText},
			{Name: "product", Type: TypeText},
			{Name: "month", Type: TypeInteger},
			{Name: "year", Type: TypeInteger},
			{Name: "target_revenue", Type: TypeReal},
			{Name: "target_conversions", Type: TypeInteger},
			{Name: "target_spend", Type: TypeReal},
			{Name: domain.ColumnTargetROI, Type: TypeReal, Required: true},
		},
	},
	{
		Name: domain.TableCustomers,
		Columns: []Column{
			{Name: "tenant_id", Type: TypeText, Required: true},
			{Name: "customer_id", Type: TypeText, Required: true},
			{Name: "customer_name", Type: TypeText},
			{Name: "region", Type: TypeText},
			{Name: "product_preference", Type: TypeText},
			{Name: "total_spent", Type: TypeReal},
			{Name: "total_orders", Type: TypeInteger},
			{Name: domain.ColumnAvgOrderValue, Type: TypeReal, Required: true},
		},
	},
}

// LookupTable finds a catalogue table by name
func LookupTable(name string) (Table, bool) {
	for _, t := range Catalogue {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// ColumnNames returns every column of the table, system columns included
func (t Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns)+2)
	names = append(names, ColumnID)
	for _, col := range t.Columns {
		names = append(names, col.Name)
	}
	return append(names, ColumnCreatedAt)
}

// CheckColumns validates that a record set with the given columns can be appended
func (t Table) CheckColumns(columns []string) error {
	var unknown, missing []string

	for _, name := range columns {
		if !slices.ContainsFunc(t.Columns, func(c Column) bool { return c.Name == name }) {
			unknown = append(unknown, name)
		}
	}
	for _, col := range t.Columns {
		if col.Required && !slices.Contains(columns, col.Name) {
			missing = append(missing, col.Name)
		}
	}

	switch {
	case len(unknown) > 0:
		return fmt.Errorf("columns not in table %s: %s", t.Name, strings.Join(unknown, ", "))
	case len(missing) > 0:
		return fmt.Errorf("required columns missing for table %s: %s", t.Name, strings.Join(missing, ", "))
	}
	return nil
}

// EnsureSchema creates the warehouse tables if they don't exist. It is safe
// to call on every startup; a pre-existing table lacking catalogue columns is
// rejected since there is no migration.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, t := range Catalogue {
		if _, err := r.client.DB().ExecContext(ctx, r.client.Dialect().CreateTable(t)); err != nil {
			r.log.Error("Failed to create table", zap.String("table", t.Name), zap.Error(err))
			return domain.SchemaError(t.Name, fmt.Errorf("failed to create table: %w", err))
		}

		if err := r.verifyTable(ctx, t); err != nil {
			r.log.Error("Incompatible warehouse table", zap.String("table", t.Name), zap.Error(err))
			return err
		}
	}

	r.log.Info("Warehouse schema initialized successfully",
		zap.String("dialect", r.client.Dialect().Name()),
		zap.Int("tables", len(Catalogue)))
	return nil
}

func (r *Repository) verifyTable(ctx context.Context, t Table) error {
	var existing []string
	if err := r.client.DB().SelectContext(ctx, &existing, r.client.Dialect().ColumnsQuery(), t.Name); err != nil {
		return domain.SchemaError(t.Name, fmt.Errorf("failed to inspect columns: %w", err))
	}

	var missing []string
	for _, name := range t.ColumnNames() {
		if !slices.Contains(existing, name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return domain.SchemaError(t.Name,
			fmt.Errorf("existing table is incompatible, missing columns: %s", strings.Join(missing, ", ")))
	}
	return nil
}

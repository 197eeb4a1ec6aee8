package warehouse

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/jmoiron/sqlx/reflectx"
	"go.uber.org/zap"

	"github.com/BarkinBalci/bi-warehouse/internal/domain"
	"github.com/BarkinBalci/bi-warehouse/internal/repository"
)

const defaultBatchSize = 1000

// Repository implements WarehouseRepository over a SQL warehouse
type Repository struct {
	client    *Client
	batchSize int
	log       *zap.Logger
}

var _ repository.WarehouseRepository = (*Repository)(nil)

// NewRepository creates a new warehouse repository writing in chunks of batchSize rows
func NewRepository(client *Client, batchSize int, log *zap.Logger) *Repository {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Repository{
		client:    client,
		batchSize: batchSize,
		log:       log,
	}
}

// Append inserts every record of the set as a new row. Existing rows are
// never updated, so repeated loads accumulate duplicates.
func (r *Repository) Append(ctx context.Context, tableName string, set domain.RecordSet) (int, error) {
	table, ok := LookupTable(tableName)
	if !ok {
		return 0, domain.LoadError(tableName, fmt.Errorf("unknown table"))
	}

	columns := set.Columns()
	if err := table.CheckColumns(columns); err != nil {
		r.log.Error("Record set does not match table",
			zap.String("table", table.Name),
			zap.String("dataset", string(set.Dataset())),
			zap.Error(err))
		return 0, domain.LoadError(table.Name, err)
	}

	if set.Len() == 0 {
		return 0, nil
	}

	traversals := r.client.DB().Mapper.TraversalsByName(reflect.TypeOf(set.Row(0)), columns)
	for i, tr := range traversals {
		if len(tr) == 0 {
			return 0, domain.LoadError(table.Name,
				fmt.Errorf("record type %T has no field for column %s", set.Row(0), columns[i]))
		}
	}

	insertColumns := columns
	var nextID int64
	if r.client.Dialect().AssignsIDs() {
		id, err := r.maxID(ctx, table.Name)
		if err != nil {
			return 0, domain.LoadError(table.Name, err)
		}
		nextID = id + 1
		insertColumns = append([]string{ColumnID}, columns...)
	}

	query := r.client.DB().Rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table.Name,
		strings.Join(insertColumns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(insertColumns)), ", ")))

	inserted := 0
	for start := 0; start < set.Len(); start += r.batchSize {
		end := min(start+r.batchSize, set.Len())

		if err := r.appendChunk(ctx, query, set, start, end, traversals, nextID); err != nil {
			r.log.Error("Failed to append rows",
				zap.String("table", table.Name),
				zap.Int("committed", inserted),
				zap.Int("chunk_start", start),
				zap.Error(err))
			return inserted, domain.LoadError(table.Name, err)
		}
		inserted += end - start
	}

	r.log.Info("Loaded records",
		zap.String("table", table.Name),
		zap.String("dataset", string(set.Dataset())),
		zap.Int("count", inserted))

	return inserted, nil
}

// appendChunk writes rows [start, end) in one transaction
func (r *Repository) appendChunk(ctx context.Context, query string, set domain.RecordSet, start, end int, traversals [][]int, nextID int64) error {
	tx, err := r.client.DB().BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.log.Debug("Failed to close insert statement", zap.Error(err))
		}
	}()

	for i := start; i < end; i++ {
		args := rowArgs(set.Row(i), traversals)
		if nextID > 0 {
			args = append([]any{nextID + int64(i)}, args...)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rows: %w", err)
	}
	return nil
}

func rowArgs(row any, traversals [][]int) []any {
	v := reflect.Indirect(reflect.ValueOf(row))
	args := make([]any, len(traversals))
	for i, tr := range traversals {
		args[i] = reflectx.FieldByIndexesReadOnly(v, tr).Interface()
	}
	return args
}

func (r *Repository) maxID(ctx context.Context, table string) (int64, error) {
	var id int64
	query := fmt.Sprintf("SELECT coalesce(max(id), 0) FROM %s", table)
	if err := r.client.DB().GetContext(ctx, &id, query); err != nil {
		return 0, fmt.Errorf("failed to read last id: %w", err)
	}
	return id, nil
}

// Count returns the number of rows in a catalogue table
func (r *Repository) Count(ctx context.Context, tableName string) (int64, error) {
	table, ok := LookupTable(tableName)
	if !ok {
		return 0, fmt.Errorf("unknown table: %s", tableName)
	}

	var count int64
	if err := r.client.DB().GetContext(ctx, &count, fmt.Sprintf("SELECT CAST(COUNT(*) AS BIGINT) FROM %s", table.Name)); err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", table.Name, err)
	}
	return count, nil
}

// CampaignSummary retrieves per-tenant campaign totals. Averages are unrounded.
func (r *Repository) CampaignSummary(ctx context.Context) ([]repository.CampaignSummaryRow, error) {
	query := `
		SELECT
			tenant_id,
			CAST(COUNT(*) AS BIGINT) AS total_campaigns,
			CAST(SUM(impressions) AS BIGINT) AS total_impressions,
			CAST(SUM(clicks) AS BIGINT) AS total_clicks,
			CAST(SUM(conversions) AS BIGINT) AS total_conversions,
			SUM(spend) AS total_spend,
			SUM(revenue) AS total_revenue,
			AVG(ctr) AS avg_ctr,
			AVG(roi) AS avg_roi
		FROM fact_campaigns
		GROUP BY tenant_id
		ORDER BY tenant_id
	`

	rows := []repository.CampaignSummaryRow{}
	if err := r.client.DB().SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to query campaign summary: %w", err)
	}
	return rows, nil
}

// DailyPerformance retrieves per-tenant daily totals ordered by tenant and date
func (r *Repository) DailyPerformance(ctx context.Context, limit int) ([]repository.DailyPerformanceRow, error) {
	query := `
		SELECT
			tenant_id,
			date,
			CAST(SUM(conversions) AS BIGINT) AS daily_conversions,
			SUM(revenue) AS daily_revenue,
			SUM(spend) AS daily_spend
		FROM fact_campaigns
		GROUP BY tenant_id, date
		ORDER BY tenant_id, date
		LIMIT ?
	`

	rows := []repository.DailyPerformanceRow{}
	if err := r.client.DB().SelectContext(ctx, &rows, r.client.DB().Rebind(query), limit); err != nil {
		return nil, fmt.Errorf("failed to query daily performance: %w", err)
	}
	return rows, nil
}

// Ping checks if the warehouse connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.DB().PingContext(ctx)
}

// Close closes the warehouse connection
func (r *Repository) Close() error {
	return r.client.Close()
}

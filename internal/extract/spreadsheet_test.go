package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/BarkinBalci/bi-warehouse/internal/domain"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "targets.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func targetHeader() []interface{} {
	header := make([]interface{}, len(domain.TargetColumns))
	for i, name := range domain.TargetColumns {
		header[i] = name
	}
	return header
}

func TestSpreadsheetExtractor_Extract_Success(t *testing.T) {
	path := writeWorkbook(t, "Targets", [][]interface{}{
		targetHeader(),
		{"tenant_a", "North", "Product A", 3, 2024, 50000.5, 120, 10000},
		{},
		{"tenant_b", "South", "Product B", 12, 2024, 0, 0, 0},
	})

	batch, err := NewSpreadsheetExtractor("", zap.NewNop()).Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, domain.DatasetTargets, batch.Dataset())
	assert.Equal(t, domain.TargetColumns, batch.Columns())
	require.Equal(t, 2, batch.Len())
	assert.Equal(t, domain.TargetRecord{
		TenantID:          "tenant_a",
		Region:            "North",
		Product:           "Product A",
		Month:             3,
		Year:              2024,
		TargetRevenue:     50000.5,
		TargetConversions: 120,
		TargetSpend:       10000,
	}, batch.Records[0])
	assert.Equal(t, 12, batch.Records[1].Month)
}

func TestSpreadsheetExtractor_Extract_NamedSheet(t *testing.T) {
	path := writeWorkbook(t, "Plan", [][]interface{}{targetHeader()})

	batch, err := NewSpreadsheetExtractor("Plan", zap.NewNop()).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, batch.Len())

	_, err = NewSpreadsheetExtractor("Missing", zap.NewNop()).Extract(context.Background(), path)
	assert.True(t, errors.Is(err, domain.ErrExtraction))
}

func TestSpreadsheetExtractor_Extract_Errors(t *testing.T) {
	tests := []struct {
		name string
		rows [][]interface{}
	}{
		{name: "empty sheet", rows: nil},
		{name: "missing column", rows: [][]interface{}{{"tenant_id", "region"}}},
		{name: "month out of range", rows: [][]interface{}{
			targetHeader(),
			{"tenant_a", "North", "Product A", 13, 2024, 1, 1, 1},
		}},
		{name: "non-numeric revenue", rows: [][]interface{}{
			targetHeader(),
			{"tenant_a", "North", "Product A", 1, 2024, "lots", 1, 1},
		}},
		{name: "blank tenant", rows: [][]interface{}{
			targetHeader(),
			{"", "North", "Product A", 1, 2024, 1, 1, 1},
		}},
		{name: "fractional conversions", rows: [][]interface{}{
			targetHeader(),
			{"tenant_a", "North", "Product A", 1, 2024, 1, 1.5, 1},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeWorkbook(t, "Sheet1", tt.rows)

			_, err := NewSpreadsheetExtractor("", zap.NewNop()).Extract(context.Background(), path)

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrExtraction), fmt.Sprint(err))
		})
	}
}

func TestSpreadsheetExtractor_Extract_MissingFile(t *testing.T) {
	_, err := NewSpreadsheetExtractor("", zap.NewNop()).Extract(context.Background(), filepath.Join(t.TempDir(), "none.xlsx"))
	assert.True(t, errors.Is(err, domain.ErrExtraction))
}

package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/BarkinBalci/bi-warehouse/internal/domain"
)

// SpreadsheetExtractor reads sales targets from a workbook whose first row is the header
type SpreadsheetExtractor struct {
	sheet string
	log   *zap.Logger
}

// NewSpreadsheetExtractor creates a new spreadsheet extractor. An empty sheet
// name selects the first sheet of the workbook.
func NewSpreadsheetExtractor(sheet string, log *zap.Logger) *SpreadsheetExtractor {
	return &SpreadsheetExtractor{sheet: sheet, log: log}
}

// Extract parses the targets workbook at path
func (e *SpreadsheetExtractor) Extract(ctx context.Context, path string) (domain.Batch[domain.TargetRecord], error) {
	records, columns, err := e.read(ctx, path)
	if err != nil {
		e.log.Error("Spreadsheet extraction failed", zap.String("path", path), zap.Error(err))
		return domain.Batch[domain.TargetRecord]{}, domain.ExtractionError(domain.DatasetTargets, err)
	}

	e.log.Info("Extracted records", zap.String("path", path), zap.Int("count", len(records)))
	return domain.NewBatch(domain.DatasetTargets, columns, records), nil
}

func (e *SpreadsheetExtractor) read(ctx context.Context, path string) ([]domain.TargetRecord, []string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			e.log.Warn("Failed to close workbook", zap.String("path", path), zap.Error(err))
		}
	}()

	sheet := e.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q of %s is empty", sheet, path)
	}

	header := normalizeHeader(rows[0])
	if err := matchColumns(header, domain.TargetColumns); err != nil {
		return nil, nil, err
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	records := make([]domain.TargetRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if isBlank(row) {
			continue
		}

		rec, err := parseTargetRow(row, index)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		records = append(records, rec)
	}

	return records, header, nil
}

func parseTargetRow(row []string, index map[string]int) (domain.TargetRecord, error) {
	p := cellParser{row: row, index: index}

	rec := domain.TargetRecord{
		TenantID:          p.text("tenant_id"),
		Region:            p.text("region"),
		Product:           p.text("product"),
		Month:             int(p.integer("month")),
		Year:              int(p.integer("year")),
		TargetRevenue:     p.decimal("target_revenue"),
		TargetConversions: p.integer("target_conversions"),
		TargetSpend:       p.decimal("target_spend"),
	}
	if p.err != nil {
		return domain.TargetRecord{}, p.err
	}
	if err := requireKeys(map[string]string{"tenant_id": rec.TenantID}); err != nil {
		return domain.TargetRecord{}, err
	}
	if rec.Month < 1 || rec.Month > 12 {
		return domain.TargetRecord{}, fmt.Errorf("month %d out of range 1-12", rec.Month)
	}
	return rec, nil
}

// cellParser reads typed cells by column name and keeps the first error
type cellParser struct {
	row   []string
	index map[string]int
	err   error
}

func (p *cellParser) text(name string) string {
	i := p.index[name]
	if i >= len(p.row) {
		// excelize drops trailing empty cells
		return ""
	}
	return strings.TrimSpace(p.row[i])
}

func (p *cellParser) decimal(name string) float64 {
	raw := p.text(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: invalid number %q", name, raw)
	}
	return v
}

func (p *cellParser) integer(name string) int64 {
	raw := p.text(name)
	if raw == "" {
		return 0
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v
	}
	// numeric cells may be stored as floats, e.g. "2024" written as 2024.0
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int64(f)) {
		if p.err == nil {
			p.err = fmt.Errorf("column %s: invalid integer %q", name, raw)
		}
		return 0
	}
	return int64(f)
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

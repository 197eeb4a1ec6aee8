package extract

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/jszwec/csvutil"
	"go.uber.org/zap"

	"github.com/BarkinBalci/bi-warehouse/internal/domain"
)

// CSVExtractor reads campaign records from a delimited file with a header row
type CSVExtractor struct {
	log *zap.Logger
}

// NewCSVExtractor creates a new delimited-file extractor
func NewCSVExtractor(log *zap.Logger) *CSVExtractor {
	return &CSVExtractor{log: log}
}

// Extract parses the campaign file at path
func (e *CSVExtractor) Extract(ctx context.Context, path string) (domain.Batch[domain.CampaignRecord], error) {
	records, columns, err := e.read(ctx, path)
	if err != nil {
		e.log.Error("CSV extraction failed", zap.String("path", path), zap.Error(err))
		return domain.Batch[domain.CampaignRecord]{}, domain.ExtractionError(domain.DatasetCampaigns, err)
	}

	e.log.Info("Extracted records", zap.String("path", path), zap.Int("count", len(records)))
	return domain.NewBatch(domain.DatasetCampaigns, columns, records), nil
}

func (e *CSVExtractor) read(ctx context.Context, path string) ([]domain.CampaignRecord, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			e.log.Warn("Failed to close CSV file", zap.String("path", path), zap.Error(err))
		}
	}()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	raw, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("file %s is empty", path)
		}
		return nil, nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	header := normalizeHeader(raw)
	if err := matchColumns(header, domain.CampaignColumns); err != nil {
		return nil, nil, err
	}

	// decode against the trimmed names, not the raw header cells
	dec, err := csvutil.NewDecoder(reader, header...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create decoder for %s: %w", path, err)
	}

	var records []domain.CampaignRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		var rec domain.CampaignRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			// csv.ErrFieldCount surfaces here for ragged rows
			return nil, nil, fmt.Errorf("failed to decode record %d: %w", len(records)+1, err)
		}
		if err := requireKeys(map[string]string{
			"tenant_id":   rec.TenantID,
			"campaign_id": rec.CampaignID,
		}); err != nil {
			return nil, nil, fmt.Errorf("record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}

	return records, header, nil
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// matchColumns requires header and expected to hold the same set of names
func matchColumns(header, expected []string) error {
	var missing, unexpected []string
	for _, name := range expected {
		if !slices.Contains(header, name) {
			missing = append(missing, name)
		}
	}
	for _, name := range header {
		if !slices.Contains(expected, name) {
			unexpected = append(unexpected, name)
		}
	}

	if len(missing) == 0 && len(unexpected) == 0 {
		return nil
	}
	return fmt.Errorf("column mismatch: missing [%s], unexpected [%s]",
		strings.Join(missing, ", "), strings.Join(unexpected, ", "))
}

// requireKeys rejects blank identifier values
func requireKeys(keys map[string]string) error {
	var blank []string
	for name, value := range keys {
		if strings.TrimSpace(value) == "" {
			blank = append(blank, name)
		}
	}
	if len(blank) == 0 {
		return nil
	}
	slices.Sort(blank)
	return fmt.Errorf("required value missing: %s", strings.Join(blank, ", "))
}

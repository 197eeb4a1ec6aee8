package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BarkinBalci/bi-warehouse/internal/domain"
	"github.com/BarkinBalci/bi-warehouse/internal/extract"
	"github.com/BarkinBalci/bi-warehouse/internal/repository"
	"github.com/BarkinBalci/bi-warehouse/internal/transform"
)

// CampaignExtractor reads campaign records from a file
type CampaignExtractor interface {
	Extract(ctx context.Context, path string) (domain.Batch[domain.CampaignRecord], error)
}

// TargetExtractor reads sales target records from a file
type TargetExtractor interface {
	Extract(ctx context.Context, path string) (domain.Batch[domain.TargetRecord], error)
}

// CustomerExtractor produces customer records, degrading instead of failing
type CustomerExtractor interface {
	Extract(ctx context.Context) extract.Outcome
}

// Files locates the file-based sources
type Files struct {
	Campaigns string
	Targets   string
}

// DatasetSummary reports the record counts of one dataset
type DatasetSummary struct {
	Dataset   domain.Dataset `json:"dataset"`
	Table     string         `json:"table"`
	Extracted int            `json:"extracted"`
	Loaded    int            `json:"loaded"`
}

// Summary describes a completed pipeline run
type Summary struct {
	RunID             string           `json:"run_id"`
	Datasets          []DatasetSummary `json:"datasets"`
	CustomerSource    string           `json:"customer_source"`
	CustomersDegraded bool             `json:"customers_degraded"`
	DegradedCause     string           `json:"degraded_cause,omitempty"`
	Duration          time.Duration    `json:"duration"`
}

// Pipeline runs schema setup, extraction, transformation and loading in order
type Pipeline struct {
	repository repository.WarehouseRepository
	campaigns  CampaignExtractor
	targets    TargetExtractor
	customers  CustomerExtractor
	files      Files
	log        *zap.Logger
}

// New creates a new pipeline
func New(repo repository.WarehouseRepository, campaigns CampaignExtractor, targets TargetExtractor, customers CustomerExtractor, files Files, log *zap.Logger) *Pipeline {
	return &Pipeline{
		repository: repo,
		campaigns:  campaigns,
		targets:    targets,
		customers:  customers,
		files:      files,
		log:        log,
	}
}

// Run executes one full pipeline run. The first failing stage aborts the
// run; rows loaded before the failure stay in the warehouse.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{RunID: uuid.New().String()}
	log := p.log.With(zap.String("run_id", summary.RunID))

	log.Info("Starting pipeline run",
		zap.String("campaigns_file", p.files.Campaigns),
		zap.String("targets_file", p.files.Targets))

	if err := p.repository.EnsureSchema(ctx); err != nil {
		return nil, p.fail(log, err)
	}

	campaigns, err := p.campaigns.Extract(ctx, p.files.Campaigns)
	if err != nil {
		return nil, p.fail(log, err)
	}
	targets, err := p.targets.Extract(ctx, p.files.Targets)
	if err != nil {
		return nil, p.fail(log, err)
	}
	outcome := p.customers.Extract(ctx)
	summary.CustomerSource = outcome.Source
	if outcome.Degraded {
		summary.CustomersDegraded = true
		summary.DegradedCause = outcome.Cause.Error()
		log.Warn("Customer records come from fallback data", zap.Error(outcome.Cause))
	}

	facts, err := transform.Campaigns(campaigns)
	if err != nil {
		return nil, p.fail(log, err)
	}
	salesTargets, err := transform.Targets(targets)
	if err != nil {
		return nil, p.fail(log, err)
	}
	customers, err := transform.Customers(outcome.Batch)
	if err != nil {
		return nil, p.fail(log, err)
	}

	for _, set := range []domain.RecordSet{facts, salesTargets, customers} {
		table := set.Dataset().Table()
		loaded, err := p.repository.Append(ctx, table, set)
		if err != nil {
			return nil, p.fail(log, err)
		}
		summary.Datasets = append(summary.Datasets, DatasetSummary{
			Dataset:   set.Dataset(),
			Table:     table,
			Extracted: set.Len(),
			Loaded:    loaded,
		})
		log.Info("Loaded dataset",
			zap.String("dataset", string(set.Dataset())),
			zap.String("table", table),
			zap.Int("rows", loaded))
	}

	summary.Duration = time.Since(start)
	log.Info("Pipeline run completed", zap.Duration("duration", summary.Duration))
	return summary, nil
}

func (p *Pipeline) fail(log *zap.Logger, err error) error {
	fields := []zap.Field{zap.Error(err)}
	var se *domain.StageError
	if errors.As(err, &se) {
		fields = append(fields,
			zap.String("stage", string(se.Stage)),
			zap.String("dataset", se.Dataset))
	}
	log.Error("Pipeline run failed", fields...)
	return err
}

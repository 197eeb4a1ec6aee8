package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BarkinBalci/bi-warehouse/internal/config"
	"github.com/BarkinBalci/bi-warehouse/internal/domain"
	"github.com/BarkinBalci/bi-warehouse/internal/extract"
	"github.com/BarkinBalci/bi-warehouse/internal/queue/sqs"
	"github.com/BarkinBalci/bi-warehouse/internal/repository"
)

// NewFromConfig assembles a pipeline with the extractors selected by cfg
func NewFromConfig(ctx context.Context, cfg *config.Config, repo repository.WarehouseRepository, log *zap.Logger) (*Pipeline, error) {
	source, err := NewCustomerSource(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	fallback := extract.NewFallbackGenerator(
		cfg.Tenancy.Tenants,
		cfg.Tenancy.Regions,
		cfg.Tenancy.Products,
		cfg.Fallback.CustomersPerTenant,
		cfg.Fallback.Seed,
	)

	return New(
		repo,
		extract.NewCSVExtractor(log),
		extract.NewSpreadsheetExtractor(cfg.Sources.TargetsSheet, log),
		extract.NewRemoteExtractor(source, fallback, log),
		Files{Campaigns: cfg.Sources.CampaignsFile, Targets: cfg.Sources.TargetsFile},
		log,
	), nil
}

// NewCustomerSource returns the remote customer source for cfg.Remote.Kind,
// or nil when remote extraction is disabled
func NewCustomerSource(ctx context.Context, cfg *config.Config, log *zap.Logger) (extract.CustomerSource, error) {
	parser := extract.NewJSONCustomerParser()

	switch cfg.Remote.Kind {
	case config.RemoteKindNone:
		return nil, nil
	case config.RemoteKindHTTP:
		return extract.NewHTTPSource(cfg.Remote.Endpoint, cfg.Remote.Timeout, parser), nil
	case config.RemoteKindSQS:
		client, err := sqs.NewClient(ctx, cfg.SQS, log)
		if err != nil {
			log.Warn("SQS customer source unavailable", zap.Error(err))
			return unavailableSource{name: config.RemoteKindSQS, err: fmt.Errorf("failed to create SQS client: %w", err)}, nil
		}
		return extract.NewQueueSource(client, parser, extract.QueueSourceConfig{
			MaxMessages:     cfg.SQS.MaxMessages,
			WaitTimeSeconds: cfg.SQS.WaitTimeSeconds,
			MaxCustomers:    cfg.SQS.MaxCustomers,
		}, log), nil
	}
	return nil, fmt.Errorf("unsupported remote kind: %s", cfg.Remote.Kind)
}

// unavailableSource reports a setup failure at fetch time so the customer
// extraction degrades instead of aborting the run
type unavailableSource struct {
	name string
	err  error
}

func (s unavailableSource) Name() string { return s.name }

func (s unavailableSource) FetchCustomers(context.Context) ([]domain.CustomerRecord, error) {
	return nil, s.err
}

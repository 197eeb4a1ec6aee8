package extract

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/BarkinBalci/bi-warehouse/internal/domain"
)

// ErrNoRemoteSource is the degradation cause when no remote source is configured
var ErrNoRemoteSource = errors.New("no remote customer source configured")

// CustomerSource fetches customer records from a remote system
type CustomerSource interface {
	Name() string
	FetchCustomers(ctx context.Context) ([]domain.CustomerRecord, error)
}

// Outcome is the result of a remote extraction. Degraded is set when the
// records come from the local fallback; Cause holds the remote failure.
type Outcome struct {
	Batch    domain.Batch[domain.CustomerRecord]
	Source   string
	Degraded bool
	Cause    error
}

// RemoteExtractor fetches customers from a remote source and falls back to
// locally generated customers on any failure
type RemoteExtractor struct {
	source   CustomerSource
	fallback *FallbackGenerator
	log      *zap.Logger
}

// NewRemoteExtractor creates a new remote extractor. A nil source always degrades.
func NewRemoteExtractor(source CustomerSource, fallback *FallbackGenerator, log *zap.Logger) *RemoteExtractor {
	return &RemoteExtractor{
		source:   source,
		fallback: fallback,
		log:      log,
	}
}

// Extract never fails; remote failures are reported through the outcome
func (e *RemoteExtractor) Extract(ctx context.Context) Outcome {
	if e.source == nil {
		return e.degrade(ErrNoRemoteSource)
	}

	records, err := e.source.FetchCustomers(ctx)
	if err != nil {
		e.log.Warn("Remote customer source failed, using fallback data",
			zap.String("source", e.source.Name()),
			zap.Error(err))
		return e.degrade(err)
	}

	e.log.Info("Extracted records",
		zap.String("source", e.source.Name()),
		zap.Int("count", len(records)))

	return Outcome{
		Batch:  domain.NewBatch(domain.DatasetCustomers, domain.CustomerColumns, records),
		Source: e.source.Name(),
	}
}

func (e *RemoteExtractor) degrade(cause error) Outcome {
	records := e.fallback.Generate()

	e.log.Info("Generated fallback customer data",
		zap.Int("count", len(records)),
		zap.String("cause", cause.Error()))

	return Outcome{
		Batch:    domain.NewBatch(domain.DatasetCustomers, domain.CustomerColumns, records),
		Source:   "fallback",
		Degraded: true,
		Cause:    cause,
	}
}

package report

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/BarkinBalci/bi-warehouse/internal/domain"
	"github.com/BarkinBalci/bi-warehouse/internal/repository"
	"github.com/BarkinBalci/bi-warehouse/internal/transform"
)

// Report names
const (
	CampaignSummary  = "campaign_summary"
	DailyPerformance = "daily_performance"
)

// DailyPerformanceLimit caps the number of (tenant, date) groups returned
const DailyPerformanceLimit = 50

// ErrUnknownReport is the cause of the QueryError returned for names outside the registry
var ErrUnknownReport = errors.New("unknown report")

// Result is a report rendered as named columns and positional rows
type Result struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

type runner func(ctx context.Context) (*Result, error)

// Engine runs the named aggregate reports against the warehouse
type Engine struct {
	repository repository.WarehouseRepository
	registry   map[string]runner
	names      []string
	log        *zap.Logger
}

// NewEngine creates a new report engine
func NewEngine(repo repository.WarehouseRepository, log *zap.Logger) *Engine {
	e := &Engine{
		repository: repo,
		log:        log,
		names:      []string{CampaignSummary, DailyPerformance},
	}
	e.registry = map[string]runner{
		CampaignSummary:  e.campaignSummaryResult,
		DailyPerformance: e.dailyPerformanceResult,
	}
	return e
}

// Names returns the registered report names in stable order
func (e *Engine) Names() []string {
	return append([]string(nil), e.names...)
}

// Run executes the named report
func (e *Engine) Run(ctx context.Context, name string) (*Result, error) {
	run, ok := e.registry[name]
	if !ok {
		e.log.Warn("Unknown report requested", zap.String("report", name))
		return nil, domain.QueryError(name, fmt.Errorf("%w: %s (supported: %s, %s)", ErrUnknownReport, name, CampaignSummary, DailyPerformance))
	}

	e.log.Info("Running report", zap.String("report", name))
	return run(ctx)
}

// CampaignSummary returns per-tenant campaign totals ordered by tenant. The
// average CTR is rounded to 4 places and the average ROI to 2.
func (e *Engine) CampaignSummary(ctx context.Context) ([]repository.CampaignSummaryRow, error) {
	rows, err := e.repository.CampaignSummary(ctx)
	if err != nil {
		e.log.Error("Report query failed", zap.String("report", CampaignSummary), zap.Error(err))
		return nil, domain.QueryError(CampaignSummary, err)
	}

	for i := range rows {
		rows[i].AvgCTR = transform.Round(rows[i].AvgCTR, 4)
		rows[i].AvgROI = transform.Round(rows[i].AvgROI, 2)
	}
	return rows, nil
}

// DailyPerformance returns the first DailyPerformanceLimit (tenant, date)
// groups ordered by tenant and date
func (e *Engine) DailyPerformance(ctx context.Context) ([]repository.DailyPerformanceRow, error) {
	rows, err := e.repository.DailyPerformance(ctx, DailyPerformanceLimit)
	if err != nil {
		e.log.Error("Report query failed", zap.String("report", DailyPerformance), zap.Error(err))
		return nil, domain.QueryError(DailyPerformance, err)
	}
	return rows, nil
}

func (e *Engine) campaignSummaryResult(ctx context.Context) (*Result, error) {
	rows, err := e.CampaignSummary(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Name: CampaignSummary,
		Columns: []string{
			"tenant_id", "total_campaigns", "total_impressions", "total_clicks",
			"total_conversions", "total_spend", "total_revenue", "avg_ctr", "avg_roi",
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, row := range rows {
		result.Rows = append(result.Rows, []any{
			row.TenantID, row.TotalCampaigns, row.TotalImpressions, row.TotalClicks,
			row.TotalConversions, row.TotalSpend, row.TotalRevenue, row.AvgCTR, row.AvgROI,
		})
	}
	return result, nil
}

func (e *Engine) dailyPerformanceResult(ctx context.Context) (*Result, error) {
	rows, err := e.DailyPerformance(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Name:    DailyPerformance,
		Columns: []string{"tenant_id", "date", "daily_conversions", "daily_revenue", "daily_spend"},
		Rows:    make([][]any, 0, len(rows)),
	}
	for _, row := range rows {
		result.Rows = append(result.Rows, []any{
			row.TenantID, row.Date, row.DailyConversions, row.DailyRevenue, row.DailySpend,
		})
	}
	return result, nil
}

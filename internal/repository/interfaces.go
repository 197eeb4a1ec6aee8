package repository

import (
	"context"

	"github.com/BarkinBalci/bi-warehouse/internal/domain"
)

// CampaignSummaryRow represents campaign totals for one tenant
type CampaignSummaryRow struct {
	TenantID         string  `db:"tenant_id" json:"tenant_id"`
	TotalCampaigns   int64   `db:"total_campaigns" json:"total_campaigns"`
	TotalImpressions int64   `db:"total_impressions" json:"total_impressions"`
	TotalClicks      int64   `db:"total_clicks" json:"total_clicks"`
	TotalConversions int64   `db:"total_conversions" json:"total_conversions"`
	TotalSpend       float64 `db:"total_spend" json:"total_spend"`
	TotalRevenue     float64 `db:"total_revenue" json:"total_revenue"`
	AvgCTR           float64 `db:"avg_ctr" json:"avg_ctr"`
	AvgROI           float64 `db:"avg_roi" json:"avg_roi"`
}

// DailyPerformanceRow represents campaign totals for one tenant and day
type DailyPerformanceRow struct {
	TenantID         string  `db:"tenant_id" json:"tenant_id"`
	Date             string  `db:"date" json:"date"`
	DailyConversions int64   `db:"daily_conversions" json:"daily_conversions"`
	DailyRevenue     float64 `db:"daily_revenue" json:"daily_revenue"`
	DailySpend       float64 `db:"daily_spend" json:"daily_spend"`
}

// WarehouseRepository defines the storage operations of the star-schema warehouse
type WarehouseRepository interface {
	// EnsureSchema creates the warehouse tables if they don't exist and
	// verifies existing ones carry every expected column
	EnsureSchema(ctx context.Context) error

	// Append adds every record of the set as a new row of the table
	Append(ctx context.Context, table string, set domain.RecordSet) (int, error)

	// Count returns the number of rows in the table
	Count(ctx context.Context, table string) (int64, error)

	// CampaignSummary aggregates campaign facts per tenant
	CampaignSummary(ctx context.Context) ([]CampaignSummaryRow, error)

	// DailyPerformance aggregates campaign facts per tenant and date, capped to limit groups
	DailyPerformance(ctx context.Context, limit int) ([]DailyPerformanceRow, error)

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error
}

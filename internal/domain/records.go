package domain

// Dataset identifies one of the three record sets flowing through the pipeline
type Dataset string

const (
	DatasetCampaigns Dataset = "campaigns"
	DatasetTargets   Dataset = "targets"
	DatasetCustomers Dataset = "customers"
)

// Warehouse table names
const (
	TableCampaigns = "fact_campaigns"
	TableTargets   = "dim_sales_targets"
	TableCustomers = "dim_customers"
)

// Table returns the warehouse table the dataset is loaded into
func (d Dataset) Table() string {
	switch d {
	case DatasetCampaigns:
		return TableCampaigns
	case DatasetTargets:
		return TableTargets
	case DatasetCustomers:
		return TableCustomers
	}
	return ""
}

// CampaignRecord is one marketing campaign-day as supplied by the delimited file
type CampaignRecord struct {
	TenantID     string  `csv:"tenant_id" db:"tenant_id" json:"tenant_id"`
	CampaignID   string  `csv:"campaign_id" db:"campaign_id" json:"campaign_id"`
	CampaignName string  `csv:"campaign_name" db:"campaign_name" json:"campaign_name"`
	Date         string  `csv:"date" db:"date" json:"date"`
	Impressions  int64   `csv:"impressions" db:"impressions" json:"impressions"`
	Clicks       int64   `csv:"clicks" db:"clicks" json:"clicks"`
	Conversions  int64   `csv:"conversions" db:"conversions" json:"conversions"`
	Spend        float64 `csv:"spend" db:"spend" json:"spend"`
	Revenue      float64 `csv:"revenue" db:"revenue" json:"revenue"`
	Region       string  `csv:"region" db:"region" json:"region"`
	Product      string  `csv:"product" db:"product" json:"product"`
}

// CampaignFact is a campaign record enriched with CTR and ROI
type CampaignFact struct {
	CampaignRecord
	CTR float64 `db:"ctr" json:"ctr"`
	ROI float64 `db:"roi" json:"roi"`
}

// TargetRecord is one (tenant, region, product, month, year) planning cell
type TargetRecord struct {
	TenantID          string  `db:"tenant_id" json:"tenant_id"`
	Region            string  `db:"region" json:"region"`
	Product           string  `db:"product" json:"product"`
	Month             int     `db:"month" json:"month"`
	Year              int     `db:"year" json:"year"`
	TargetRevenue     float64 `db:"target_revenue" json:"target_revenue"`
	TargetConversions int64   `db:"target_conversions" json:"target_conversions"`
	TargetSpend       float64 `db:"target_spend" json:"target_spend"`
}

// SalesTarget is a planning cell enriched with the target ROI
type SalesTarget struct {
	TargetRecord
	TargetROI float64 `db:"target_roi" json:"target_roi"`
}

// CustomerRecord is one customer as returned by the remote record source
type CustomerRecord struct {
	TenantID          string  `db:"tenant_id" json:"tenant_id"`
	CustomerID        string  `db:"customer_id" json:"customer_id"`
	CustomerName      string  `db:"customer_name" json:"customer_name"`
	Region            string  `db:"region" json:"region"`
	ProductPreference string  `db:"product_preference" json:"product_preference"`
	TotalSpent        float64 `db:"total_spent" json:"total_spent"`
	TotalOrders       int64   `db:"total_orders" json:"total_orders"`
}

// Customer is a customer record enriched with the average order value
type Customer struct {
	CustomerRecord
	AvgOrderValue float64 `db:"avg_order_value" json:"avg_order_value"`
}

// Input column sets, in source file order
var (
	CampaignColumns = []string{
		"tenant_id", "campaign_id", "campaign_name", "date", "impressions", "clicks",
		"conversions", "spend", "revenue", "region", "product",
	}
	TargetColumns = []string{
		"tenant_id", "region", "product", "month", "year",
		"target_revenue", "target_conversions", "target_spend",
	}
	CustomerColumns = []string{
		"tenant_id", "customer_id", "customer_name", "region",
		"product_preference", "total_spent", "total_orders",
	}
)

// Derived column names
const (
	ColumnCTR           = "ctr"
	ColumnROI           = "roi"
	ColumnTargetROI     = "target_roi"
	ColumnAvgOrderValue = "avg_order_value"
)

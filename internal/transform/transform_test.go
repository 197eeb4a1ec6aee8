package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BarkinBalci/bi-warehouse/internal/domain"
)

func campaignBatch(records ...domain.CampaignRecord) domain.Batch[domain.CampaignRecord] {
	return domain.NewBatch(domain.DatasetCampaigns, domain.CampaignColumns, records)
}

func TestCampaigns_DerivedMetrics(t *testing.T) {
	tests := []struct {
		name    string
		record  domain.CampaignRecord
		wantCTR float64
		wantROI float64
	}{
		{
			name:    "regular campaign",
			record:  domain.CampaignRecord{Impressions: 10000, Clicks: 150, Spend: 100, Revenue: 250},
			wantCTR: 0.015,
			wantROI: 1.5,
		},
		{
			name:    "no impressions and no revenue",
			record:  domain.CampaignRecord{Impressions: 0, Clicks: 0, Spend: 100, Revenue: 0},
			wantCTR: 0,
			wantROI: -1.0,
		},
		{
			name:    "zero spend",
			record:  domain.CampaignRecord{Impressions: 100, Clicks: 10, Spend: 0, Revenue: 500},
			wantCTR: 0.1,
			wantROI: 0,
		},
		{
			name:    "everything zero",
			record:  domain.CampaignRecord{},
			wantCTR: 0,
			wantROI: 0,
		},
		{
			name:    "clicks without impressions",
			record:  domain.CampaignRecord{Impressions: 0, Clicks: 7, Spend: 50, Revenue: 50},
			wantCTR: 0,
			wantROI: 0,
		},
		{
			name:    "rounding",
			record:  domain.CampaignRecord{Impressions: 3, Clicks: 1, Spend: 300, Revenue: 200},
			wantCTR: 0.3333,
			wantROI: -0.33,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Campaigns(campaignBatch(tt.record))
			require.NoError(t, err)
			require.Equal(t, 1, out.Len())

			fact := out.Records[0]
			assert.Equal(t, tt.wantCTR, fact.CTR)
			assert.Equal(t, tt.wantROI, fact.ROI)
			assert.Equal(t, tt.record, fact.CampaignRecord)
		})
	}
}

func TestCampaigns_AppendsColumnsWithoutTouchingInput(t *testing.T) {
	in := campaignBatch(domain.CampaignRecord{TenantID: "t1", Impressions: 10, Clicks: 1, Spend: 1, Revenue: 2})

	out, err := Campaigns(in)
	require.NoError(t, err)

	assert.Equal(t, domain.CampaignColumns, in.Columns())
	assert.Equal(t, append(append([]string{}, domain.CampaignColumns...), "ctr", "roi"), out.Columns())
	assert.Equal(t, domain.DatasetCampaigns, out.Dataset())
}

func TestCampaigns_Idempotent(t *testing.T) {
	in := campaignBatch(
		domain.CampaignRecord{TenantID: "t1", Impressions: 5000, Clicks: 321, Spend: 1234.56, Revenue: 2000.01},
		domain.CampaignRecord{TenantID: "t2", Impressions: 0, Clicks: 0, Spend: 0, Revenue: 0},
	)

	first, err := Campaigns(in)
	require.NoError(t, err)
	second, err := Campaigns(in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCampaigns_MissingColumn(t *testing.T) {
	in := domain.NewBatch(domain.DatasetCampaigns, []string{"tenant_id", "clicks", "spend", "revenue"},
		[]domain.CampaignRecord{{TenantID: "t1"}})

	out, err := Campaigns(in)

	assert.ErrorIs(t, err, domain.ErrTransform)
	assert.Contains(t, err.Error(), "impressions")
	assert.Zero(t, out.Len())
}

func TestCampaigns_IgnoresNonMetricColumns(t *testing.T) {
	in := domain.NewBatch(domain.DatasetCampaigns, []string{"impressions", "clicks", "spend", "revenue"},
		[]domain.CampaignRecord{{Impressions: 100, Clicks: 5, Spend: 10, Revenue: 20}})

	out, err := Campaigns(in)

	require.NoError(t, err)
	assert.Equal(t, []string{"impressions", "clicks", "spend", "revenue", domain.ColumnCTR, domain.ColumnROI}, out.Columns())
	assert.Equal(t, 0.05, out.Records[0].CTR)
}

func TestTargets_DerivedMetrics(t *testing.T) {
	in := domain.NewBatch(domain.DatasetTargets, domain.TargetColumns, []domain.TargetRecord{
		{TenantID: "t1", TargetRevenue: 10000, TargetSpend: 4000},
		{TenantID: "t1", TargetRevenue: 10000, TargetSpend: 0},
		{TenantID: "t1", TargetRevenue: 1000, TargetSpend: 3000},
	})

	out, err := Targets(in)
	require.NoError(t, err)

	assert.Equal(t, 2.5, out.Records[0].TargetROI)
	assert.Equal(t, 0.0, out.Records[1].TargetROI)
	assert.Equal(t, 0.33, out.Records[2].TargetROI)
	assert.True(t, out.HasColumn(domain.ColumnTargetROI))
}

func TestTargets_MissingColumn(t *testing.T) {
	in := domain.NewBatch(domain.DatasetTargets, []string{"tenant_id", "target_revenue"}, []domain.TargetRecord{{}})

	_, err := Targets(in)

	assert.ErrorIs(t, err, domain.ErrTransform)
	assert.Contains(t, err.Error(), "target_spend")
}

func TestCustomers_ZeroOrders(t *testing.T) {
	in := domain.NewBatch(domain.DatasetCustomers, domain.CustomerColumns, []domain.CustomerRecord{
		{TenantID: "t1", CustomerID: "c1", TotalSpent: 500, TotalOrders: 0},
		{TenantID: "t1", CustomerID: "c2", TotalSpent: 100, TotalOrders: 3},
	})

	out, err := Customers(in)
	require.NoError(t, err)

	assert.Equal(t, 0.0, out.Records[0].AvgOrderValue)
	assert.Equal(t, 33.33, out.Records[1].AvgOrderValue)
}

func TestCustomers_MissingColumn(t *testing.T) {
	in := domain.NewBatch(domain.DatasetCustomers, []string{"tenant_id", "customer_id"}, []domain.CustomerRecord{{}})

	_, err := Customers(in)

	assert.ErrorIs(t, err, domain.ErrTransform)
}

func TestRatio_NeverNaNOrInf(t *testing.T) {
	cases := [][2]float64{{0, 0}, {1, 0}, {-1, 0}, {math.Inf(1), 1}, {1, math.Inf(1)}}
	for _, c := range cases {
		r := Ratio(c[0], c[1], 2)
		assert.False(t, math.IsNaN(r) || math.IsInf(r, 0), "ratio(%v, %v) = %v", c[0], c[1], r)
	}
	assert.Equal(t, 0.0, Ratio(math.Inf(1), 1, 2))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.13, Round(0.125, 2))
	assert.Equal(t, -0.13, Round(-0.125, 2))
	assert.Equal(t, 0.0, Round(-0.001, 2))
	assert.False(t, math.Signbit(Round(-0.001, 2)))
}

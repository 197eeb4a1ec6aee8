// Package transform derives business metrics from extracted record sets.
// All functions are pure: the input batch is never modified.
package transform

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/BarkinBalci/bi-warehouse/internal/domain"
)

const (
	ctrPrecision   = 4
	ratioPrecision = 2
)

// Campaigns computes ctr = clicks/impressions and roi = (revenue-spend)/spend
func Campaigns(in domain.Batch[domain.CampaignRecord]) (domain.Batch[domain.CampaignFact], error) {
	if err := requireColumns(in, "impressions", "clicks", "spend", "revenue"); err != nil {
		return domain.Batch[domain.CampaignFact]{}, err
	}

	out := make([]domain.CampaignFact, len(in.Records))
	for i, rec := range in.Records {
		out[i] = domain.CampaignFact{
			CampaignRecord: rec,
			CTR:            Ratio(float64(rec.Clicks), float64(rec.Impressions), ctrPrecision),
			ROI:            Ratio(rec.Revenue-rec.Spend, rec.Spend, ratioPrecision),
		}
	}

	return domain.NewBatch(in.Dataset(), appendColumns(in.Columns(), domain.ColumnCTR, domain.ColumnROI), out), nil
}

// Targets computes target_roi = target_revenue/target_spend
func Targets(in domain.Batch[domain.TargetRecord]) (domain.Batch[domain.SalesTarget], error) {
	if err := requireColumns(in, "target_revenue", "target_spend"); err != nil {
		return domain.Batch[domain.SalesTarget]{}, err
	}

	out := make([]domain.SalesTarget, len(in.Records))
	for i, rec := range in.Records {
		out[i] = domain.SalesTarget{
			TargetRecord: rec,
			TargetROI:    Ratio(rec.TargetRevenue, rec.TargetSpend, ratioPrecision),
		}
	}

	return domain.NewBatch(in.Dataset(), appendColumns(in.Columns(), domain.ColumnTargetROI), out), nil
}

// Customers computes avg_order_value = total_spent/total_orders
func Customers(in domain.Batch[domain.CustomerRecord]) (domain.Batch[domain.Customer], error) {
	if err := requireColumns(in, "total_spent", "total_orders"); err != nil {
		return domain.Batch[domain.Customer]{}, err
	}

	out := make([]domain.Customer, len(in.Records))
	for i, rec := range in.Records {
		out[i] = domain.Customer{
			CustomerRecord: rec,
			AvgOrderValue:  Ratio(rec.TotalSpent, float64(rec.TotalOrders), ratioPrecision),
		}
	}

	return domain.NewBatch(in.Dataset(), appendColumns(in.Columns(), domain.ColumnAvgOrderValue), out), nil
}

// Ratio divides num by den, replaces a NaN or infinite quotient with 0 and
// rounds the result to the given number of decimal places.
func Ratio(num, den float64, places int) float64 {
	q := num / den
	if math.IsNaN(q) || math.IsInf(q, 0) {
		q = 0
	}
	return Round(q, places)
}

// Round rounds half away from zero to the given number of decimal places
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	r := math.Round(v*scale) / scale
	if r == 0 {
		// normalise -0
		return 0
	}
	return r
}

// requireColumns checks only the inputs of a derived metric, not the full input schema
func requireColumns[T any](in domain.Batch[T], required ...string) error {
	missing := in.MissingColumns(required)
	if len(missing) == 0 {
		return nil
	}
	return domain.TransformError(in.Dataset(),
		fmt.Errorf("missing expected columns: %s", strings.Join(missing, ", ")))
}

func appendColumns(columns []string, derived ...string) []string {
	out := slices.Clone(columns)
	for _, name := range derived {
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

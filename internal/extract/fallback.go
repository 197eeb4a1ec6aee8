package extract

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/BarkinBalci/bi-warehouse/internal/domain"
)

// FallbackGenerator produces customer records shaped like the remote payload.
// Output is deterministic for a given seed.
type FallbackGenerator struct {
	tenants            []string
	regions            []string
	products           []string
	customersPerTenant int
	seed               uint64
}

// NewFallbackGenerator creates a generator. Preferences are drawn from the
// first three products.
func NewFallbackGenerator(tenants, regions, products []string, customersPerTenant int, seed uint64) *FallbackGenerator {
	if len(products) > 3 {
		products = products[:3]
	}
	return &FallbackGenerator{
		tenants:            tenants,
		regions:            regions,
		products:           products,
		customersPerTenant: customersPerTenant,
		seed:               seed,
	}
}

// Generate returns customersPerTenant customers for every tenant
func (g *FallbackGenerator) Generate() []domain.CustomerRecord {
	rng := rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))

	records := make([]domain.CustomerRecord, 0, len(g.tenants)*g.customersPerTenant)
	for _, tenant := range g.tenants {
		for i := 0; i < g.customersPerTenant; i++ {
			records = append(records, domain.CustomerRecord{
				TenantID:          tenant,
				CustomerID:        fmt.Sprintf("cust_%s_%03d", tenant, i),
				CustomerName:      fmt.Sprintf("Customer %d", i+1),
				Region:            pick(rng, g.regions),
				ProductPreference: pick(rng, g.products),
				TotalSpent:        math.Round((100+rng.Float64()*4900)*100) / 100,
				TotalOrders:       int64(1 + rng.IntN(20)),
			})
		}
	}
	return records
}

func pick(rng *rand.Rand, values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[rng.IntN(len(values))]
}

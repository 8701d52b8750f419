package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sales-report/internal/types"
)

// Aggregate computes the Summary of the given rows.
//
// Ordering is deterministic and never depends on map iteration:
//   - Pivot: region ascending, then product ascending.
//   - Regions, Products: revenue descending, ties by name ascending.
//   - Months: ascending.
//
// An empty input yields empty tables and zero KPIs.
func Aggregate(rows []types.Row) types.Summary {
	pivot := make(map[types.AggregateKey]*types.AggregateRow)
	regions := make(map[string]decimal.Decimal)
	products := make(map[string]decimal.Decimal)
	months := make(map[string]*types.MonthTotal)

	kpis := types.KPISet{
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		Transactions:      len(rows),
	}

	for _, row := range rows {
		key := types.AggregateKey{Region: row.Region, Product: row.Product}
		group, ok := pivot[key]
		if !ok {
			group = &types.AggregateRow{Region: row.Region, Product: row.Product, RevenueSum: decimal.Zero}
			pivot[key] = group
		}
		group.UnitsSum += row.Units
		group.RevenueSum = group.RevenueSum.Add(row.Revenue)

		regions[row.Region] = sumOrStart(regions, row.Region).Add(row.Revenue)
		products[row.Product] = sumOrStart(products, row.Product).Add(row.Revenue)

		month := row.Month()
		bucket, ok := months[month]
		if !ok {
			bucket = &types.MonthTotal{Month: month, RevenueSum: decimal.Zero}
			months[month] = bucket
		}
		bucket.UnitsSum += row.Units
		bucket.RevenueSum = bucket.RevenueSum.Add(row.Revenue)

		kpis.TotalUnits += row.Units
		kpis.TotalRevenue = kpis.TotalRevenue.Add(row.Revenue)
	}

	summary := types.Summary{
		Pivot:    make([]types.AggregateRow, 0, len(pivot)),
		Regions:  make([]types.RegionTotal, 0, len(regions)),
		Products: make([]types.ProductTotal, 0, len(products)),
		Months:   make([]types.MonthTotal, 0, len(months)),
	}

	for _, group := range pivot {
		summary.Pivot = append(summary.Pivot, *group)
	}
	sort.Slice(summary.Pivot, func(i, j int) bool {
		a, b := summary.Pivot[i], summary.Pivot[j]
		if a.Region != b.Region {
			return a.Region < b.Region
		}
		return a.Product < b.Product
	})

	for region, revenue := range regions {
		summary.Regions = append(summary.Regions, types.RegionTotal{Region: region, RevenueSum: revenue})
	}
	sort.Slice(summary.Regions, func(i, j int) bool {
		a, b := summary.Regions[i], summary.Regions[j]
		if c := a.RevenueSum.Cmp(b.RevenueSum); c != 0 {
			return c > 0
		}
		return a.Region < b.Region
	})

	for product, revenue := range products {
		summary.Products = append(summary.Products, types.ProductTotal{Product: product, RevenueSum: revenue})
	}
	sort.Slice(summary.Products, func(i, j int) bool {
		a, b := summary.Products[i], summary.Products[j]
		if c := a.RevenueSum.Cmp(b.RevenueSum); c != 0 {
			return c > 0
		}
		return a.Product < b.Product
	})

	for _, bucket := range months {
		summary.Months = append(summary.Months, *bucket)
	}
	sort.Slice(summary.Months, func(i, j int) bool {
		return summary.Months[i].Month < summary.Months[j].Month
	})

	if kpis.TotalUnits > 0 {
		kpis.AverageOrderValue = kpis.TotalRevenue.DivRound(decimal.NewFromInt(kpis.TotalUnits), 2)
	}
	if len(summary.Regions) > 0 {
		kpis.TopRegion = summary.Regions[0].Region
	}
	if len(summary.Products) > 0 {
		kpis.TopProduct = summary.Products[0].Product
	}
	summary.KPIs = kpis

	return summary
}

func sumOrStart(m map[string]decimal.Decimal, key string) decimal.Decimal {
	if v, ok := m[key]; ok {
		return v
	}
	return decimal.Zero
}

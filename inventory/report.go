package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mytheresa/stockroom/models"
)

var hundred = decimal.NewFromInt(100)

// Dashboard holds the headline figures of the stock overview.
type Dashboard struct {
	SKUCount     int
	TotalUnits   int64
	TotalValue   decimal.Decimal
	AveragePrice decimal.Decimal
	LowStock     []models.Product
}

// CategoryShare is one row of the per-category value report.
type CategoryShare struct {
	CategoryID   uint
	CategoryName string
	SKUCount     int
	SumValue     decimal.Decimal
	PercentShare int64
}

// ComputeDashboard aggregates joined product rows. Products whose quantity is
// strictly below threshold are listed as low stock, in input order.
func ComputeDashboard(products []models.Product, threshold int) Dashboard {
	d := Dashboard{
		TotalValue:   decimal.Zero,
		AveragePrice: decimal.Zero,
		LowStock:     []models.Product{},
	}
	priceSum := decimal.Zero
	for _, p := range products {
		d.SKUCount++
		d.TotalUnits += int64(p.Quantity)
		d.TotalValue = d.TotalValue.Add(p.Value())
		priceSum = priceSum.Add(p.UnitPrice)
		if p.Quantity < threshold {
			d.LowStock = append(d.LowStock, p)
		}
	}
	if d.SKUCount > 0 {
		d.AveragePrice = priceSum.Div(decimal.NewFromInt(int64(d.SKUCount))).Round(2)
	}
	return d
}

// ComputeCategoryReport groups joined product rows by category. Each share is
// the category's value over the total value, in whole percent; when the total
// value is zero every share is zero. Rows are ordered by category name.
func ComputeCategoryReport(products []models.Product) []CategoryShare {
	byCategory := make(map[uint]*CategoryShare)
	total := decimal.Zero
	for _, p := range products {
		share, ok := byCategory[p.CategoryID]
		if !ok {
			share = &CategoryShare{
				CategoryID:   p.CategoryID,
				CategoryName: p.Category.Name,
				SumValue:     decimal.Zero,
			}
			byCategory[p.CategoryID] = share
		}
		value := p.Value()
		share.SKUCount++
		share.SumValue = share.SumValue.Add(value)
		total = total.Add(value)
	}

	report := make([]CategoryShare, 0, len(byCategory))
	for _, share := range byCategory {
		if total.IsPositive() {
			share.PercentShare = share.SumValue.Mul(hundred).Div(total).Round(0).IntPart()
		}
		report = append(report, *share)
	}
	sort.Slice(report, func(i, j int) bool {
		if report[i].CategoryName != report[j].CategoryName {
			return report[i].CategoryName < report[j].CategoryName
		}
		return report[i].CategoryID < report[j].CategoryID
	})
	return report
}

// Package pricing computes cart line totals, including the included-quantity
// addon tiers.
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vitrine/pedidos_api/internal/models"
)

// Result holds the totals of a single cart line.
type Result struct {
	ProductTotal decimal.Decimal `json:"productTotal"`
	AddonsTotal  decimal.Decimal `json:"addonsTotal"`
	Total        decimal.Decimal `json:"total"`
}

// Calculate prices one product line with its selected addons.
//
// When the product has an included addon quantity and addons are selected,
// one of three tiers applies:
//   - fewer units than included: the product is free, addons are billed in full
//   - exactly the included units: addons are free, the product is billed
//   - more units than included: the product is billed plus the excess units,
//     taken from the most expensive addons first
//
// Otherwise product and addons are billed in full. Each amount is multiplied
// by the line quantity. A non-positive quantity yields zero totals.
func Calculate(product models.Product, quantity int, addons []models.ProductAddon) Result {
	if quantity < 0 {
		quantity = 0
	}
	qty := decimal.NewFromInt(int64(quantity))
	unitPrice := product.EffectivePrice()

	billable := billableAddons(addons)
	included := product.IncludedQuantity()

	// Addons with no billable units do not select a tier.
	var productTotal, addonsTotal decimal.Decimal
	if included > 0 && len(billable) > 0 {
		units := totalUnits(billable)
		switch {
		case units < included:
			productTotal = decimal.Zero
			addonsTotal = fullAddonCost(billable).Mul(qty)
		case units == included:
			productTotal = unitPrice.Mul(qty)
			addonsTotal = decimal.Zero
		default:
			productTotal = unitPrice.Mul(qty)
			addonsTotal = excessCost(billable, units-included).Mul(qty)
		}
	} else {
		productTotal = unitPrice.Mul(qty)
		addonsTotal = fullAddonCost(billable).Mul(qty)
	}

	return Result{
		ProductTotal: productTotal,
		AddonsTotal:  addonsTotal,
		Total:        productTotal.Add(addonsTotal),
	}
}

// billableAddons drops addons with an explicit zero or negative quantity.
func billableAddons(addons []models.ProductAddon) []models.ProductAddon {
	out := make([]models.ProductAddon, 0, len(addons))
	for _, a := range addons {
		if a.Units() > 0 {
			out = append(out, a)
		}
	}
	return out
}

func totalUnits(addons []models.ProductAddon) int {
	n := 0
	for i := range addons {
		n += addons[i].Units()
	}
	return n
}

func fullAddonCost(addons []models.ProductAddon) decimal.Decimal {
	sum := decimal.Zero
	for i := range addons {
		sum = sum.Add(addons[i].UnitPrice().Mul(decimal.NewFromInt(int64(addons[i].Units()))))
	}
	return sum
}

// excessCost bills the given number of units, costliest first.
func excessCost(addons []models.ProductAddon, excess int) decimal.Decimal {
	sorted := make([]models.ProductAddon, len(addons))
	copy(sorted, addons)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UnitPrice().GreaterThan(sorted[j].UnitPrice())
	})

	cost := decimal.Zero
	remaining := excess
	for i := range sorted {
		if remaining <= 0 {
			break
		}
		take := sorted[i].Units()
		if take > remaining {
			take = remaining
		}
		cost = cost.Add(sorted[i].UnitPrice().Mul(decimal.NewFromInt(int64(take))))
		remaining -= take
	}
	return cost
}

package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/vitrine/pedidos_api/internal/models"
)

// LineResult pairs a cart line with its computed totals.
type LineResult struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Result
}

// CartResult aggregates the line totals of a whole cart.
type CartResult struct {
	Lines         []LineResult    `json:"lines"`
	ProductsTotal decimal.Decimal `json:"productsTotal"`
	AddonsTotal   decimal.Decimal `json:"addonsTotal"`
	Total         decimal.Decimal `json:"total"`
}

// CalculateCart runs Calculate for every line and sums the results.
func CalculateCart(items []models.CartItem) CartResult {
	res := CartResult{
		Lines:         make([]LineResult, 0, len(items)),
		ProductsTotal: decimal.Zero,
		AddonsTotal:   decimal.Zero,
		Total:         decimal.Zero,
	}
	for _, item := range items {
		line := Calculate(item.Product, item.Quantity, item.Addons)
		res.Lines = append(res.Lines, LineResult{
			ProductID: item.Product.ID,
			Quantity:  item.Quantity,
			Result:    line,
		})
		res.ProductsTotal = res.ProductsTotal.Add(line.ProductTotal)
		res.AddonsTotal = res.AddonsTotal.Add(line.AddonsTotal)
		res.Total = res.Total.Add(line.Total)
	}
	return res
}

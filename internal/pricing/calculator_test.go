package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vitrine/pedidos_api/internal/models"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func addon(id, price string, qty *int) models.ProductAddon {
	return models.ProductAddon{ID: id, Price: dec(price), Quantity: qty}
}

func assertResult(t *testing.T, res Result, product, addons string) {
	t.Helper()
	assert.Truef(t, res.ProductTotal.Equal(dec(product)), "productTotal = %s, want %s", res.ProductTotal, product)
	assert.Truef(t, res.AddonsTotal.Equal(dec(addons)), "addonsTotal = %s, want %s", res.AddonsTotal, addons)
	assert.Truef(t, res.Total.Equal(dec(product).Add(dec(addons))), "total = %s", res.Total)
}

func TestCalculate_DefaultBranch(t *testing.T) {
	p := models.Product{ID: "p1", Price: dec("12.50")}
	res := Calculate(p, 2, []models.ProductAddon{addon("a", "5", models.IntPtr(3))})
	assertResult(t, res, "25", "30")
}

func TestCalculate_UnderThreshold(t *testing.T) {
	p := models.Product{ID: "p1", Price: dec("20"), MaxIncludedQuantity: models.IntPtr(3)}
	res := Calculate(p, 1, []models.ProductAddon{addon("a", "4", models.IntPtr(2))})
	assertResult(t, res, "0", "8")
}

func TestCalculate_ExactThreshold(t *testing.T) {
	p := models.Product{ID: "p1", Price: dec("20"), MaxIncludedQuantity: models.IntPtr(3)}
	res := Calculate(p, 1, []models.ProductAddon{addon("a", "4", models.IntPtr(3))})
	assertResult(t, res, "20", "0")
}

func TestCalculate_OverThresholdBillsCostliestFirst(t *testing.T) {
	p := models.Product{ID: "p1", Price: dec("30"), MaxIncludedQuantity: models.IntPtr(2)}
	addons := []models.ProductAddon{
		addon("cheap", "6", models.IntPtr(2)),
		addon("premium", "10", models.IntPtr(1)),
	}
	res := Calculate(p, 1, addons)
	assertResult(t, res, "30", "10")

	// two excess units span two addons: 10 + 8
	res = Calculate(p, 2, append(addons, addon("mid", "8", nil)))
	assertResult(t, res, "60", "36")
}

func TestCalculate_OverThresholdConsumesAllUnitsOfCostliest(t *testing.T) {
	p := models.Product{ID: "p1", Price: dec("10"), MaxIncludedQuantity: models.IntPtr(1)}
	addons := []models.ProductAddon{
		addon("a", "3", models.IntPtr(1)),
		addon("b", "7", models.IntPtr(3)),
	}
	// 4 units, 3 excess, all from b
	res := Calculate(p, 1, addons)
	assertResult(t, res, "10", "21")
}

func TestCalculate_SalePriceWins(t *testing.T) {
	p := models.Product{
		ID:        "p1",
		Price:     dec("20"),
		SalePrice: decimal.NewNullDecimal(dec("15")),
	}
	assertResult(t, Calculate(p, 2, nil), "30", "0")

	p.SalePrice = decimal.NewNullDecimal(decimal.Zero)
	assertResult(t, Calculate(p, 2, nil), "40", "0")
}

func TestCalculate_AddonQuantityDefaultsAndExclusions(t *testing.T) {
	p := models.Product{ID: "p1", Price: dec("10")}
	addons := []models.ProductAddon{
		addon("implicit", "2", nil),
		addon("zero", "100", models.IntPtr(0)),
		addon("negative", "100", models.IntPtr(-3)),
	}
	assertResult(t, Calculate(p, 1, addons), "10", "2")
}

func TestCalculate_OnlyExcludedAddonsFallsBackToDefault(t *testing.T) {
	p := models.Product{ID: "p1", Price: dec("10"), MaxIncludedQuantity: models.IntPtr(2)}
	res := Calculate(p, 1, []models.ProductAddon{addon("zero", "5", models.IntPtr(0))})
	assertResult(t, res, "10", "0")
}

func TestCalculate_NoAddonsIgnoresThreshold(t *testing.T) {
	p := models.Product{ID: "p1", Price: dec("9.90"), MaxIncludedQuantity: models.IntPtr(2)}
	assertResult(t, Calculate(p, 3, nil), "29.70", "0")
}

func TestCalculate_MalformedInputsCoerceToZero(t *testing.T) {
	p := models.Product{ID: "p1", Price: dec("-5")}
	assertResult(t, Calculate(p, -2, []models.ProductAddon{addon("a", "-1", nil)}), "0", "0")
	assertResult(t, Calculate(p, 1, []models.ProductAddon{addon("a", "-1", nil)}), "0", "0")
}

func TestCalculate_DefaultBranchIsDeterministic(t *testing.T) {
	cases := []struct {
		price  string
		qty    int
		addons []models.ProductAddon
	}{
		{"0", 1, nil},
		{"7.35", 4, []models.ProductAddon{addon("a", "1.10", models.IntPtr(2)), addon("b", "0.45", nil)}},
		{"100", 1, []models.ProductAddon{addon("a", "33.33", models.IntPtr(3))}},
	}
	for _, tc := range cases {
		p := models.Product{ID: "p", Price: dec(tc.price)}
		qty := decimal.NewFromInt(int64(tc.qty))

		expected := dec(tc.price).Mul(qty)
		for _, a := range tc.addons {
			expected = expected.Add(a.Price.Mul(decimal.NewFromInt(int64(a.Units()))).Mul(qty))
		}

		first := Calculate(p, tc.qty, tc.addons)
		second := Calculate(p, tc.qty, tc.addons)
		assert.True(t, first.Total.Equal(expected), "total %s want %s", first.Total, expected)
		assert.True(t, first.Total.Equal(second.Total))
	}
}

func TestCalculate_DoesNotReorderCallerAddons(t *testing.T) {
	p := models.Product{ID: "p1", Price: dec("10"), MaxIncludedQuantity: models.IntPtr(1)}
	addons := []models.ProductAddon{addon("a", "1", nil), addon("b", "9", nil)}
	Calculate(p, 1, addons)
	assert.Equal(t, "a", addons[0].ID)
	assert.Equal(t, "b", addons[1].ID)
}

func TestCalculateCart(t *testing.T) {
	items := []models.CartItem{
		{Product: models.Product{ID: "p1", Price: dec("10")}, Quantity: 2},
		{
			Product:  models.Product{ID: "p2", Price: dec("20"), MaxIncludedQuantity: models.IntPtr(3)},
			Quantity: 1,
			Addons:   []models.ProductAddon{addon("a", "4", models.IntPtr(2))},
		},
	}
	res := CalculateCart(items)

	assert.Len(t, res.Lines, 2)
	assert.Equal(t, "p2", res.Lines[1].ProductID)
	assert.True(t, res.ProductsTotal.Equal(dec("20")))
	assert.True(t, res.AddonsTotal.Equal(dec("8")))
	assert.True(t, res.Total.Equal(dec("28")))
}

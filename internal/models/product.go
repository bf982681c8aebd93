package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a sellable menu item of a store.
// Optional columns are pointers (or NullDecimal) so that "not configured"
// stays distinguishable from zero.
type Product struct {
	ID          string              `db:"id" json:"id"`
	StoreID     string              `db:"store_id" json:"storeId"`
	Name        string              `db:"name" json:"name"`
	Description string              `db:"description" json:"description"`
	Price       decimal.Decimal     `db:"price" json:"price"`
	SalePrice   decimal.NullDecimal `db:"sale_price" json:"salePrice"`

	// MaxIncludedQuantity is the number of addon units bundled in the base price.
	MaxIncludedQuantity *int `db:"max_included_quantity" json:"maxIncludedQuantity,omitempty"`
	// ExcessUnitPrice is stored for the admin panel only; excess billing is
	// derived from addon prices.
	ExcessUnitPrice decimal.NullDecimal `db:"excess_unit_price" json:"excessUnitPrice"`

	DailyStock             *int       `db:"daily_stock" json:"dailyStock,omitempty"`
	CurrentStock           *int       `db:"current_stock" json:"currentStock,omitempty"`
	StockLastReset         *time.Time `db:"stock_last_reset" json:"stockLastReset,omitempty"`
	AllowSameDayScheduling *bool      `db:"allow_same_day_scheduling" json:"allowSameDayScheduling,omitempty"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// EffectivePrice returns the sale price when one is set and non-zero,
// otherwise the regular price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.Valid && p.SalePrice.Decimal.IsPositive() {
		return p.SalePrice.Decimal
	}
	if p.Price.IsNegative() {
		return decimal.Zero
	}
	return p.Price
}

// TracksStock reports whether the product has a daily stock configured.
func (p *Product) TracksStock() bool {
	return p.DailyStock != nil
}

// SameDayAllowed defaults to true when the flag was never set.
func (p *Product) SameDayAllowed() bool {
	return p.AllowSameDayScheduling == nil || *p.AllowSameDayScheduling
}

// IncludedQuantity returns the addon threshold, or 0 when none is configured.
func (p *Product) IncludedQuantity() int {
	if p.MaxIncludedQuantity == nil || *p.MaxIncludedQuantity <= 0 {
		return 0
	}
	return *p.MaxIncludedQuantity
}

// Normalize coerces malformed values to safe defaults. It is applied once
// when a product enters the system (repository scan or request decode).
func (p *Product) Normalize() {
	if p.Price.IsNegative() {
		p.Price = decimal.Zero
	}
	if p.SalePrice.Valid && p.SalePrice.Decimal.IsNegative() {
		p.SalePrice = decimal.NullDecimal{}
	}
	if p.MaxIncludedQuantity != nil && *p.MaxIncludedQuantity <= 0 {
		p.MaxIncludedQuantity = nil
	}
	if p.DailyStock != nil && *p.DailyStock < 0 {
		zero := 0
		p.DailyStock = &zero
	}
	if p.CurrentStock != nil && *p.CurrentStock < 0 {
		zero := 0
		p.CurrentStock = &zero
	}
}

// ProductAddon is an optional extra selected on a cart line.
type ProductAddon struct {
	ID        string          `db:"id" json:"id"`
	ProductID string          `db:"product_id" json:"productId"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	// Quantity nil means one unit; zero or negative units are not billed.
	Quantity *int `db:"-" json:"quantity,omitempty"`
}

// Units returns the billable unit count of the addon.
func (a *ProductAddon) Units() int {
	if a.Quantity == nil {
		return 1
	}
	if *a.Quantity <= 0 {
		return 0
	}
	return *a.Quantity
}

// UnitPrice returns the addon price floored at zero.
func (a *ProductAddon) UnitPrice() decimal.Decimal {
	if a.Price.IsNegative() {
		return decimal.Zero
	}
	return a.Price
}

// CartItem is one line of a customer cart.
type CartItem struct {
	Product  Product        `json:"product"`
	Quantity int            `json:"quantity"`
	Addons   []ProductAddon `json:"addons"`
	Notes    string         `json:"notes"`
}

// IntPtr is a small helper for optional integer fields.
func IntPtr(v int) *int { return &v }

// BoolPtr is a small helper for optional boolean fields.
func BoolPtr(v bool) *bool { return &v }

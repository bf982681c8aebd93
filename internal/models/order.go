package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the lifecycle states of an order.
type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// PaymentMethod enumerates the payment options offered at checkout.
type PaymentMethod string

const (
	PaymentMethodPix  PaymentMethod = "pix"
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCash PaymentMethod = "cash"
)

// Order is a persisted checkout.
type Order struct {
	ID            string          `db:"id" json:"id"`
	OrderNumber   string          `db:"order_number" json:"orderNumber"`
	StoreID       string          `db:"store_id" json:"storeId"`
	CustomerName  string          `db:"customer_name" json:"customerName"`
	CustomerPhone string          `db:"customer_phone" json:"customerPhone"`
	Address       *string         `db:"address" json:"address,omitempty"`
	DeliveryType  DeliveryType    `db:"delivery_type" json:"deliveryType"`
	ScheduledDate *string         `db:"scheduled_date" json:"scheduledDate,omitempty"`
	ScheduledTime *string         `db:"scheduled_time" json:"scheduledTime,omitempty"`
	PaymentMethod PaymentMethod   `db:"payment_method" json:"paymentMethod"`
	Status        OrderStatus     `db:"status" json:"status"`
	ProductsTotal decimal.Decimal `db:"products_total" json:"productsTotal"`
	AddonsTotal   decimal.Decimal `db:"addons_total" json:"addonsTotal"`
	Total         decimal.Decimal `db:"total" json:"total"`
	Notes         string          `db:"notes" json:"notes"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`

	Items []OrderItem `db:"-" json:"items"`
}

// OrderItem is a priced order line. The totals are stored exactly as the
// pricing calculator returned them.
type OrderItem struct {
	ID           string          `db:"id" json:"id"`
	OrderID      string          `db:"order_id" json:"orderId"`
	Position     int             `db:"position" json:"-"`
	ProductID    string          `db:"product_id" json:"productId"`
	ProductName  string          `db:"product_name" json:"productName"`
	Quantity     int             `db:"quantity" json:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unitPrice"`
	ProductTotal decimal.Decimal `db:"product_total" json:"productTotal"`
	AddonsTotal  decimal.Decimal `db:"addons_total" json:"addonsTotal"`
	LineTotal    decimal.Decimal `db:"line_total" json:"lineTotal"`
	Notes        string          `db:"notes" json:"notes"`

	Addons []OrderItemAddon `db:"-" json:"addons"`
}

// OrderItemAddon snapshots an addon selection of an order line.
type OrderItemAddon struct {
	ID          string          `db:"id" json:"id"`
	OrderItemID string          `db:"order_item_id" json:"-"`
	AddonID     string          `db:"addon_id" json:"addonId"`
	Name        string          `db:"name" json:"name"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Quantity    int             `db:"quantity" json:"quantity"`
}

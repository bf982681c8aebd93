package utils

import "errors"

// Common application errors used across services.
var (
	ErrStoreNotFound     = errors.New("STORE_NOT_FOUND")
	ErrProductNotFound   = errors.New("PRODUCT_NOT_FOUND")
	ErrAddonNotFound     = errors.New("ADDON_NOT_FOUND")
	ErrOrderNotFound     = errors.New("ORDER_NOT_FOUND")
	ErrInvalidCart       = errors.New("INVALID_CART")
	ErrInvalidQuantity   = errors.New("INVALID_QUANTITY")
	ErrInsufficientStock = errors.New("INSUFFICIENT_STOCK")
	ErrStockNotTracked   = errors.New("STOCK_NOT_TRACKED")
	ErrScheduleRejected  = errors.New("SCHEDULE_REJECTED")
	ErrAddressRequired   = errors.New("ADDRESS_REQUIRED")
	ErrInvalidDelivery   = errors.New("INVALID_DELIVERY_TYPE")
	ErrInvalidPayment    = errors.New("INVALID_PAYMENT_METHOD")
)

// ScheduleRejectedError carries the reason a slot was refused at checkout.
// It matches ErrScheduleRejected with errors.Is.
type ScheduleRejectedError struct {
	Reason string
}

func (e *ScheduleRejectedError) Error() string {
	return "schedule rejected: " + e.Reason
}

func (e *ScheduleRejectedError) Is(target error) bool {
	return target == ErrScheduleRejected
}

// InsufficientStockError names the product whose stock could not cover the order.
type InsufficientStockError struct {
	ProductID string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return "insufficient stock for product " + e.ProductID
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

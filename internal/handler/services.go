package handler

import (
	"context"

	"github.com/vitrine/pedidos_api/internal/models"
	"github.com/vitrine/pedidos_api/internal/scheduling"
	"github.com/vitrine/pedidos_api/internal/service"
)

// CatalogService is implemented by service.CatalogService.
type CatalogService interface {
	ListProducts(ctx context.Context, storeID string, page, limit int) ([]models.Product, int, error)
}

// OrderService is implemented by service.OrderService.
type OrderService interface {
	Quote(ctx context.Context, storeID string, lines []service.CartLine) (*service.Quote, error)
	PlaceOrder(ctx context.Context, storeID string, req service.PlaceOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
}

// SchedulingService is implemented by service.SchedulingService.
type SchedulingService interface {
	Slots(ctx context.Context, storeID string, deliveryType models.DeliveryType, days int, lines []service.CartLine) ([]scheduling.Option, error)
	Check(ctx context.Context, storeID string, req service.ScheduleCheck) (scheduling.Decision, error)
	InvalidateStore(ctx context.Context, storeID string) error
}

// StockService is implemented by service.StockService.
type StockService interface {
	Status(ctx context.Context, storeID, productID string) (*service.StockStatus, error)
	ManualReset(ctx context.Context, productID string) (*models.Product, error)
}

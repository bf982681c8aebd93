package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vitrine/pedidos_api/internal/models"
	"github.com/vitrine/pedidos_api/internal/scheduling"
)

// ProductStore is the product persistence used by the services.
// It is implemented by repository.ProductRepository.
type ProductStore interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByIDs(ctx context.Context, storeID string, ids []string) ([]models.Product, error)
	ListByStore(ctx context.Context, storeID string, page, limit int) ([]models.Product, int, error)
	ListStockTracked(ctx context.Context) ([]models.Product, error)
	ResetDailyStock(ctx context.Context, id string, now, dayStart time.Time) (bool, error)
	ManualResetStock(ctx context.Context, id string, now time.Time) (*models.Product, error)
	DecrementStock(ctx context.Context, tx *sqlx.Tx, id string, quantity int, now, dayStart time.Time) (int, bool, error)
}

// AddonStore is implemented by repository.AddonRepository.
type AddonStore interface {
	GetByIDs(ctx context.Context, productID string, ids []string) ([]models.ProductAddon, error)
}

// StoreStore is implemented by repository.StoreRepository.
type StoreStore interface {
	GetByID(ctx context.Context, id string) (*models.Store, error)
	ListSchedulable(ctx context.Context) ([]models.Store, error)
}

// OrderStore is implemented by repository.OrderRepository.
type OrderStore interface {
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	Create(ctx context.Context, tx *sqlx.Tx, o *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
}

// SlotCacher is implemented by cache.SlotCache.
type SlotCacher interface {
	Get(ctx context.Context, storeID string, deliveryType models.DeliveryType, daysAhead int) ([]scheduling.Option, bool, error)
	Set(ctx context.Context, storeID string, deliveryType models.DeliveryType, daysAhead int, slots []scheduling.Option) error
	Invalidate(ctx context.Context, storeID string) error
}

package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/vitrine/pedidos_api/internal/models"
)

const storeColumns = `id, name, slug, allow_scheduling, same_day_cutoff_time,
        delivery_cutoff_time, pickup_cutoff_time, business_hours, weekly_schedule,
        delivery_schedule, pickup_schedule, special_dates, is_active, created_at, updated_at`

// StoreRepository handles data access for stores.
type StoreRepository struct {
	db *sqlx.DB
}

// NewStoreRepository creates a new StoreRepository.
func NewStoreRepository(db *sqlx.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

// GetByID returns an active store by id or slug.
func (r *StoreRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	const q = `SELECT ` + storeColumns + ` FROM stores
        WHERE (id = $1 OR slug = $1) AND is_active = true LIMIT 1`

	var s models.Store
	if err := r.db.GetContext(ctx, &s, q, id); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSchedulable returns active stores that accept scheduled orders.
func (r *StoreRepository) ListSchedulable(ctx context.Context) ([]models.Store, error) {
	const q = `SELECT ` + storeColumns + ` FROM stores
        WHERE allow_scheduling = true AND is_active = true
        ORDER BY name`

	var stores []models.Store
	if err := r.db.SelectContext(ctx, &stores, q); err != nil {
		return nil, err
	}
	return stores, nil
}

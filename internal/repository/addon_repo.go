package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vitrine/pedidos_api/internal/models"
)

// AddonRepository handles data access for product addons.
type AddonRepository struct {
	db *sqlx.DB
}

// NewAddonRepository creates a new AddonRepository.
func NewAddonRepository(db *sqlx.DB) *AddonRepository {
	return &AddonRepository{db: db}
}

// GetByIDs returns the active addons of productID matching ids.
func (r *AddonRepository) GetByIDs(ctx context.Context, productID string, ids []string) ([]models.ProductAddon, error) {
	if len(ids) == 0 {
		return []models.ProductAddon{}, nil
	}
	const q = `
        SELECT id, product_id, name, price FROM product_addons
        WHERE product_id = $1 AND id = ANY($2) AND is_active = true`

	var addons []models.ProductAddon
	if err := r.db.SelectContext(ctx, &addons, q, productID, pq.Array(ids)); err != nil {
		return nil, err
	}
	return addons, nil
}

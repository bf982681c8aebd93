package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vitrine/pedidos_api/internal/models"
)

const productColumns = `id, store_id, name, description, price, sale_price,
        max_included_quantity, excess_unit_price, daily_stock, current_stock,
        stock_last_reset, allow_same_day_scheduling, is_active, created_at, updated_at`

// availableExpr is the stock a product can still sell today. A row whose last
// reset happened before $dayStart counts as fully restocked.
const availableExpr = `CASE
            WHEN stock_last_reset IS NULL OR stock_last_reset < $3 THEN daily_stock
            ELSE COALESCE(current_stock, daily_stock)
        END`

// ProductRepository handles data access for products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByID returns a single product by id.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = $1 LIMIT 1`

	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

// GetByIDs returns the active products of a store matching ids. Unknown ids
// are silently absent from the result.
func (r *ProductRepository) GetByIDs(ctx context.Context, storeID string, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	const q = `SELECT ` + productColumns + ` FROM products
        WHERE store_id = $1 AND id = ANY($2) AND is_active = true`

	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, q, storeID, pq.Array(ids)); err != nil {
		return nil, err
	}
	normalizeAll(products)
	return products, nil
}

// ListByStore returns active products of a store with pagination and the total count.
// Page begins at 1.
func (r *ProductRepository) ListByStore(ctx context.Context, storeID string, page, limit int) ([]models.Product, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	offset := (page - 1) * limit

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(1) FROM products WHERE store_id = $1 AND is_active = true`, storeID); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + productColumns + ` FROM products
        WHERE store_id = $1 AND is_active = true
        ORDER BY name LIMIT $2 OFFSET $3`
	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, q, storeID, limit, offset); err != nil {
		return nil, 0, err
	}
	normalizeAll(products)
	return products, total, nil
}

// ListStockTracked returns every active product with a daily stock configured.
func (r *ProductRepository) ListStockTracked(ctx context.Context) ([]models.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products
        WHERE daily_stock IS NOT NULL AND is_active = true
        ORDER BY id`

	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, q); err != nil {
		return nil, err
	}
	normalizeAll(products)
	return products, nil
}

// ResetDailyStock restores current_stock to daily_stock when the product was
// not reset since dayStart. It reports whether a row changed, so running it
// twice on the same day is a no-op.
func (r *ProductRepository) ResetDailyStock(ctx context.Context, id string, now, dayStart time.Time) (bool, error) {
	const q = `
        UPDATE products
        SET current_stock = daily_stock, stock_last_reset = $2, updated_at = NOW()
        WHERE id = $1
        AND daily_stock IS NOT NULL
        AND (stock_last_reset IS NULL OR stock_last_reset < $3)`

	res, err := r.db.ExecContext(ctx, q, id, now, dayStart)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ManualResetStock unconditionally restores a product's stock and returns the
// updated row. It returns sql.ErrNoRows when the product does not track stock.
func (r *ProductRepository) ManualResetStock(ctx context.Context, id string, now time.Time) (*models.Product, error) {
	const q = `
        UPDATE products
        SET current_stock = daily_stock, stock_last_reset = $2, updated_at = NOW()
        WHERE id = $1 AND daily_stock IS NOT NULL
        RETURNING ` + productColumns

	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id, now); err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

// DecrementStock takes quantity units from a tracked product inside tx. The
// update only matches while enough stock is left, which makes it safe under
// concurrent checkouts. ok is false when the stock could not cover quantity.
func (r *ProductRepository) DecrementStock(ctx context.Context, tx *sqlx.Tx, id string, quantity int, now, dayStart time.Time) (remaining int, ok bool, err error) {
	const q = `
        UPDATE products
        SET current_stock = ` + availableExpr + ` - $2,
            stock_last_reset = CASE
                WHEN stock_last_reset IS NULL OR stock_last_reset < $3 THEN $4
                ELSE stock_last_reset
            END,
            updated_at = NOW()
        WHERE id = $1
        AND daily_stock IS NOT NULL
        AND ` + availableExpr + ` >= $2
        RETURNING current_stock`

	err = tx.GetContext(ctx, &remaining, q, id, quantity, dayStart, now)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return remaining, true, nil
}

func normalizeAll(products []models.Product) {
	for i := range products {
		products[i].Normalize()
	}
}

package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/vitrine/pedidos_api/internal/database"
	"github.com/vitrine/pedidos_api/internal/models"
)

// OrderRepository handles persistence for orders and their lines.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx runs fn in a database transaction shared by the order insert and the
// stock decrements.
func (r *OrderRepository) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return database.WithTx(ctx, r.db, fn)
}

// Create inserts the order with its items and addon snapshots inside tx.
func (r *OrderRepository) Create(ctx context.Context, tx *sqlx.Tx, o *models.Order) error {
	const insertOrder = `
        INSERT INTO orders (
            id, order_number, store_id, customer_name, customer_phone, address,
            delivery_type, scheduled_date, scheduled_time, payment_method, status,
            products_total, addons_total, total, notes
        ) VALUES (
            :id, :order_number, :store_id, :customer_name, :customer_phone, :address,
            :delivery_type, :scheduled_date, :scheduled_time, :payment_method, :status,
            :products_total, :addons_total, :total, :notes
        ) RETURNING created_at, updated_at`

	stmt, err := tx.PrepareNamedContext(ctx, insertOrder)
	if err != nil {
		return err
	}
	defer stmt.Close()
	if err := stmt.QueryRowxContext(ctx, o).Scan(&o.CreatedAt, &o.UpdatedAt); err != nil {
		return err
	}

	const insertItem = `
        INSERT INTO order_items (
            id, order_id, position, product_id, product_name, quantity, unit_price,
            product_total, addons_total, line_total, notes
        ) VALUES (
            :id, :order_id, :position, :product_id, :product_name, :quantity, :unit_price,
            :product_total, :addons_total, :line_total, :notes
        )`
	const insertAddon = `
        INSERT INTO order_item_addons (id, order_item_id, addon_id, name, price, quantity)
        VALUES (:id, :order_item_id, :addon_id, :name, :price, :quantity)`

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		item.Position = i
		if _, err := tx.NamedExecContext(ctx, insertItem, item); err != nil {
			return err
		}
		for j := range item.Addons {
			addon := &item.Addons[j]
			addon.OrderItemID = item.ID
			if _, err := tx.NamedExecContext(ctx, insertAddon, addon); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetByID returns an order with its items and addons.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := r.db.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1 OR order_number = $1 LIMIT 1`, id); err != nil {
		return nil, err
	}

	items := []models.OrderItem{}
	if err := r.db.SelectContext(ctx, &items,
		`SELECT * FROM order_items WHERE order_id = $1 ORDER BY position`, o.ID); err != nil {
		return nil, err
	}

	var addons []models.OrderItemAddon
	if err := r.db.SelectContext(ctx, &addons, `
        SELECT a.* FROM order_item_addons a
        JOIN order_items i ON i.id = a.order_item_id
        WHERE i.order_id = $1 ORDER BY a.id`, o.ID); err != nil {
		return nil, err
	}

	byItem := make(map[string][]models.OrderItemAddon, len(items))
	for _, a := range addons {
		byItem[a.OrderItemID] = append(byItem[a.OrderItemID], a)
	}
	for i := range items {
		items[i].Addons = byItem[items[i].ID]
		if items[i].Addons == nil {
			items[i].Addons = []models.OrderItemAddon{}
		}
	}
	o.Items = items
	return &o, nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vitrine/pedidos_api/internal/models"
	"github.com/vitrine/pedidos_api/internal/utils"
)

// CartLine is a cart line as sent by a client. Prices are never taken from
// the client; they are loaded from the catalog.
type CartLine struct {
	ProductID string      `json:"productId" binding:"required"`
	Quantity  int         `json:"quantity"`
	Addons    []AddonLine `json:"addons"`
	Notes     string      `json:"notes"`
}

// AddonLine selects an addon. A nil Quantity counts as one unit.
type AddonLine struct {
	AddonID  string `json:"addonId" binding:"required"`
	Quantity *int   `json:"quantity"`
}

// CatalogService loads stores and products and turns client carts into priced cart items.
type CatalogService struct {
	stores   StoreStore
	products ProductStore
	addons   AddonStore
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(stores StoreStore, products ProductStore, addons AddonStore) *CatalogService {
	return &CatalogService{stores: stores, products: products, addons: addons}
}

// GetStore returns an active store by id or slug.
func (s *CatalogService) GetStore(ctx context.Context, storeID string) (*models.Store, error) {
	store, err := s.stores.GetByID(ctx, storeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}
	return store, nil
}

// ListProducts returns a page of the store's active products and the total count.
func (s *CatalogService) ListProducts(ctx context.Context, storeID string, page, limit int) ([]models.Product, int, error) {
	store, err := s.GetStore(ctx, storeID)
	if err != nil {
		return nil, 0, err
	}
	return s.products.ListByStore(ctx, store.ID, page, limit)
}

// BuildCart resolves client lines against the store catalog. Every product
// must belong to the store and every addon to its product.
func (s *CatalogService) BuildCart(ctx context.Context, storeID string, lines []CartLine) ([]models.CartItem, error) {
	if len(lines) == 0 {
		return nil, utils.ErrInvalidCart
	}

	ids := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %s", utils.ErrInvalidQuantity, l.ProductID)
		}
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}

	products, err := s.products.GetByIDs(ctx, storeID, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.CartItem, 0, len(lines))
	for _, l := range lines {
		product, ok := byID[l.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", utils.ErrProductNotFound, l.ProductID)
		}
		addons, err := s.resolveAddons(ctx, product.ID, l.Addons)
		if err != nil {
			return nil, err
		}
		items = append(items, models.CartItem{
			Product:  product,
			Quantity: l.Quantity,
			Addons:   addons,
			Notes:    l.Notes,
		})
	}
	return items, nil
}

func (s *CatalogService) resolveAddons(ctx context.Context, productID string, lines []AddonLine) ([]models.ProductAddon, error) {
	if len(lines) == 0 {
		return []models.ProductAddon{}, nil
	}

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.AddonID)
	}
	found, err := s.addons.GetByIDs(ctx, productID, ids)
	if err != nil {
		return nil, fmt.Errorf("load addons: %w", err)
	}
	byID := make(map[string]models.ProductAddon, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}

	out := make([]models.ProductAddon, 0, len(lines))
	for _, l := range lines {
		a, ok := byID[l.AddonID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", utils.ErrAddonNotFound, l.AddonID)
		}
		a.Quantity = l.Quantity
		out = append(out, a)
	}
	return out, nil
}

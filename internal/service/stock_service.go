package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/vitrine/pedidos_api/internal/models"
	"github.com/vitrine/pedidos_api/internal/sse"
	"github.com/vitrine/pedidos_api/internal/stock"
	"github.com/vitrine/pedidos_api/internal/utils"
)

// StockStatus is the outward-facing stock state of one product.
type StockStatus struct {
	ProductID  string `json:"productId"`
	Tracked    bool   `json:"tracked"`
	DailyStock *int   `json:"dailyStock,omitempty"`
	Available  *int   `json:"available,omitempty"`
	InStock    bool   `json:"inStock"`
}

// StockService keeps the live stock cache in step with the database and
// exposes availability and manual resets.
type StockService struct {
	products ProductStore
	manager  *stock.Manager
	cache    *stock.LiveCache
	notifier sse.StockNotifier
}

// NewStockService constructs a StockService. Products reset by the cache
// sweep are announced through notifier.
func NewStockService(products ProductStore, cache *stock.LiveCache, manager *stock.Manager, notifier sse.StockNotifier) *StockService {
	if notifier == nil {
		notifier = &sse.NopNotifier{}
	}
	s := &StockService{products: products, manager: manager, cache: cache, notifier: notifier}
	cache.OnReset(notifier.NotifyStockReset)
	return s
}

// Manager returns the day-boundary stock rules in use.
func (s *StockService) Manager() *stock.Manager { return s.manager }

// Refresh reloads every stock-tracked product into the live cache.
func (s *StockService) Refresh(ctx context.Context) error {
	products, err := s.products.ListStockTracked(ctx)
	if err != nil {
		return fmt.Errorf("list stock tracked products: %w", err)
	}
	s.cache.Sync(products)
	return nil
}

// ResetSweep restores the database stock of every product not yet reset
// today. A failing product is logged and skipped. It returns the number of
// products reset.
func (s *StockService) ResetSweep(ctx context.Context) (int, error) {
	products, err := s.products.ListStockTracked(ctx)
	if err != nil {
		return 0, fmt.Errorf("list stock tracked products: %w", err)
	}

	now := s.manager.Now()
	dayStart := s.manager.StartOfDay()
	count := 0
	for _, p := range products {
		if ctx.Err() != nil {
			return count, ctx.Err()
		}
		if !s.manager.NeedsReset(p) {
			continue
		}
		changed, err := s.products.ResetDailyStock(ctx, p.ID, now, dayStart)
		if err != nil {
			log.Error().Err(err).Str("product_id", p.ID).Msg("Failed to reset daily stock")
			continue
		}
		if !changed {
			continue
		}
		count++
		reset := s.manager.ResetDailyStock([]models.Product{p})[0]
		s.cache.Replace(reset)
		s.notifier.NotifyStockReset(reset)
	}
	return count, nil
}

// Status returns the stock state of a product, preferring the live cache.
func (s *StockService) Status(ctx context.Context, storeID, productID string) (*StockStatus, error) {
	p, err := s.products.GetByID(ctx, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if storeID != "" && p.StoreID != storeID {
		return nil, utils.ErrProductNotFound
	}

	status := &StockStatus{ProductID: p.ID, Tracked: p.TracksStock(), DailyStock: p.DailyStock}
	if !p.TracksStock() {
		status.InStock = true
		return status, nil
	}

	if _, cached := s.cache.Get(p.ID); !cached {
		s.cache.Replace(*p)
	}
	available := s.cache.AvailableStock(p.ID)
	status.Available = &available
	status.InStock = available > 0
	return status, nil
}

// CheckCart is the advisory pre-check of a cart against the live cache.
// Quantities of repeated products are summed.
func (s *StockService) CheckCart(items []models.CartItem) error {
	quantities := trackedQuantities(items)
	for _, id := range sortedKeys(quantities) {
		if !s.cache.CheckAvailability(id, quantities[id]) {
			return &utils.InsufficientStockError{ProductID: id, Available: s.cache.AvailableStock(id)}
		}
	}
	return nil
}

// ManualReset restores a product's stock to its daily amount now.
func (s *StockService) ManualReset(ctx context.Context, productID string) (*models.Product, error) {
	p, err := s.products.ManualResetStock(ctx, productID, s.manager.Now())
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := s.products.GetByID(ctx, productID); errors.Is(getErr, sql.ErrNoRows) {
			return nil, utils.ErrProductNotFound
		}
		return nil, utils.ErrStockNotTracked
	}
	if err != nil {
		return nil, fmt.Errorf("manual reset: %w", err)
	}

	s.cache.Replace(*p)
	s.notifier.NotifyStockReset(*p)
	log.Info().Str("product_id", p.ID).Int("stock", *p.DailyStock).Msg("Stock manually reset")
	return p, nil
}

// Reduced mirrors a committed sale into the live cache. remaining is the
// stock left in the database after the decrement.
func (s *StockService) Reduced(p models.Product, quantity, remaining int) {
	if !p.TracksStock() {
		return
	}
	if s.manager.NeedsReset(p) {
		p = s.manager.ResetDailyStock([]models.Product{p})[0]
	}
	p.CurrentStock = &remaining
	s.cache.Replace(p)
	s.notifier.NotifyStockReduced(p, quantity)
}

// SoldOut lists the cart products the live cache cannot cover today.
func (s *StockService) SoldOut(items []models.CartItem) []string {
	out := []string{}
	quantities := trackedQuantities(items)
	for _, id := range sortedKeys(quantities) {
		if !s.cache.CheckAvailability(id, quantities[id]) {
			out = append(out, id)
		}
	}
	return out
}

// trackedQuantities sums cart quantities per stock-tracked product.
func trackedQuantities(items []models.CartItem) map[string]int {
	out := make(map[string]int)
	for _, item := range items {
		if item.Product.TracksStock() && item.Quantity > 0 {
			out[item.Product.ID] += item.Quantity
		}
	}
	return out
}

// sortedKeys returns the keys in ascending order. Stock decrements follow it
// so product rows are always locked in the same order.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

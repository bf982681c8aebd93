package stock

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vitrine/pedidos_api/internal/models"
)

// Unlimited is returned by AvailableStock for products without daily stock.
const Unlimited = math.MaxInt

// DefaultResetInterval is the reset sweep cadence when none is configured.
const DefaultResetInterval = time.Hour

// ResetHook is called with every product restored by a sweep.
type ResetHook func(p models.Product)

// LiveCache is a process-local copy of product stock keyed by product id.
// It is re-synchronized from the catalog and sweeps for day-boundary resets
// on a timer. It is not a shared source of truth.
type LiveCache struct {
	manager  *Manager
	interval time.Duration

	mu       sync.RWMutex
	products map[string]models.Product
	onReset  ResetHook

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewLiveCache creates an empty cache. interval <= 0 uses DefaultResetInterval.
func NewLiveCache(manager *Manager, interval time.Duration) *LiveCache {
	if interval <= 0 {
		interval = DefaultResetInterval
	}
	return &LiveCache{
		manager:  manager,
		interval: interval,
		products: make(map[string]models.Product),
	}
}

// OnReset registers a hook invoked after a product is reset by a sweep.
func (c *LiveCache) OnReset(hook ResetHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReset = hook
}

// Sync replaces the cache content with products and runs a reset sweep.
// Entries without an id are dropped.
func (c *LiveCache) Sync(products []models.Product) {
	next := make(map[string]models.Product, len(products))
	for _, p := range products {
		if p.ID == "" {
			continue
		}
		p.Normalize()
		next[p.ID] = p
	}

	c.mu.Lock()
	c.products = next
	c.mu.Unlock()

	c.Sweep()
}

// Sweep resets every tracked product whose last reset is not today and
// returns how many were reset.
func (c *LiveCache) Sweep() int {
	now := c.manager.Now()

	c.mu.Lock()
	var reset []models.Product
	for id, p := range c.products {
		if !c.manager.NeedsReset(p) {
			continue
		}
		p = resetProduct(p, now)
		c.products[id] = p
		reset = append(reset, p)
	}
	hook := c.onReset
	c.mu.Unlock()

	if len(reset) > 0 {
		log.Debug().Int("count", len(reset)).Msg("Daily stock reset in live cache")
	}
	if hook != nil {
		for _, p := range reset {
			hook(p)
		}
	}
	return len(reset)
}

// Start runs an immediate sweep and then one per interval until ctx is
// canceled or Stop is called. Calling Start twice is a no-op.
func (c *LiveCache) Start(ctx context.Context) {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	if c.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	c.Sweep()
	ticker := c.manager.Clock().Ticker(c.interval)

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-ctx.Done():
				log.Info().Msg("Stock cache reset loop stopped")
				return
			}
		}
	}()
	log.Info().Dur("interval", c.interval).Msg("Stock cache reset loop started")
}

// Stop cancels the reset loop and waits for it to exit.
func (c *LiveCache) Stop() {
	c.lifecycle.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.lifecycle.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Interval returns the reset sweep cadence.
func (c *LiveCache) Interval() time.Duration { return c.interval }

// Get returns the cached product.
func (c *LiveCache) Get(productID string) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[productID]
	return p, ok
}

// Len returns the number of cached products.
func (c *LiveCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// AvailableStock returns the units left today, or Unlimited when the
// product is untracked or unknown.
func (c *LiveCache) AvailableStock(productID string) int {
	c.mu.RLock()
	p, ok := c.products[productID]
	c.mu.RUnlock()

	if !ok || !p.TracksStock() {
		return Unlimited
	}
	if c.manager.NeedsReset(p) {
		return *p.DailyStock
	}
	return currentOrDaily(p)
}

// CheckAvailability reports whether quantity units can be taken today.
func (c *LiveCache) CheckAvailability(productID string, quantity int) bool {
	return c.AvailableStock(productID) >= quantity
}

// ReduceStock lowers the cached stock of a tracked product, floored at zero.
func (c *LiveCache) ReduceStock(productID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[productID]
	if !ok || !p.TracksStock() {
		return
	}
	c.products[productID] = c.manager.ReduceStock(p, quantity)
}

// Replace overwrites a single cached product, e.g. after a manual reset.
func (c *LiveCache) Replace(p models.Product) {
	if p.ID == "" {
		return
	}
	p.Normalize()
	c.mu.Lock()
	c.products[p.ID] = p
	c.mu.Unlock()
}

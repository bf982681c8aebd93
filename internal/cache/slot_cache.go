package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vitrine/pedidos_api/internal/models"
	"github.com/vitrine/pedidos_api/internal/scheduling"
)

// SlotCache keeps recently computed slot lists for requests without a cart.
// Entries are advisory: checkout always re-validates the chosen slot.
type SlotCache struct {
	redis    *RedisClient
	ttl      time.Duration
	location *time.Location
	now      func() time.Time
}

// NewSlotCache creates a new SlotCache. now supplies the current time.
func NewSlotCache(redis *RedisClient, ttl time.Duration, location *time.Location, now func() time.Time) *SlotCache {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &SlotCache{redis: redis, ttl: ttl, location: location, now: now}
}

type slotEntry struct {
	Slots    []scheduling.Option `json:"slots"`
	CachedAt time.Time           `json:"cachedAt"`
}

// calculateTTL caps the configured TTL at the end of the store-local day, so a
// list computed before midnight never answers for the next day.
func (c *SlotCache) calculateTTL() time.Duration {
	now := c.now().In(c.location)
	eod := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, c.location)
	untilEOD := eod.Sub(now)
	if c.ttl > 0 && c.ttl < untilEOD {
		return c.ttl
	}
	return untilEOD
}

func storePrefix(storeID string) string {
	return fmt.Sprintf("slots:%s:", storeID)
}

func (c *SlotCache) key(storeID string, deliveryType models.DeliveryType, daysAhead int) string {
	day := c.now().In(c.location).Format(models.DateLayout)
	return fmt.Sprintf("%s%s:%s:%d", storePrefix(storeID), deliveryType, day, daysAhead)
}

// Get returns the cached slots. ok is false on a miss.
func (c *SlotCache) Get(ctx context.Context, storeID string, deliveryType models.DeliveryType, daysAhead int) ([]scheduling.Option, bool, error) {
	raw, err := c.redis.Get(ctx, c.key(storeID, deliveryType, daysAhead))
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry slotEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal slot entry: %w", err)
	}
	return entry.Slots, true, nil
}

// Set stores slots until the TTL expires or the local day ends, whichever comes first.
func (c *SlotCache) Set(ctx context.Context, storeID string, deliveryType models.DeliveryType, daysAhead int, slots []scheduling.Option) error {
	data, err := json.Marshal(slotEntry{Slots: slots, CachedAt: c.now()})
	if err != nil {
		return fmt.Errorf("failed to marshal slot entry: %w", err)
	}
	return c.redis.Set(ctx, c.key(storeID, deliveryType, daysAhead), string(data), c.calculateTTL())
}

// Invalidate drops every cached slot list of a store.
func (c *SlotCache) Invalidate(ctx context.Context, storeID string) error {
	_, err := c.redis.DeletePrefix(ctx, storePrefix(storeID))
	return err
}

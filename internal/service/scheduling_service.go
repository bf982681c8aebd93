package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/vitrine/pedidos_api/internal/models"
	"github.com/vitrine/pedidos_api/internal/scheduling"
	"github.com/vitrine/pedidos_api/internal/utils"
)

// ScheduleCheck is a slot selection to validate.
type ScheduleCheck struct {
	DeliveryType models.DeliveryType `json:"deliveryType" binding:"required"`
	Date         string              `json:"date" binding:"required"`
	Time         string              `json:"time" binding:"required"`
	Items        []CartLine          `json:"items"`
}

// SchedulingService serves slot listings and schedule checks for a store.
type SchedulingService struct {
	catalog *CatalogService
	manager *scheduling.Manager
	cache   SlotCacher
}

// NewSchedulingService constructs a SchedulingService. cache may be nil.
func NewSchedulingService(catalog *CatalogService, manager *scheduling.Manager, cache SlotCacher) *SchedulingService {
	return &SchedulingService{catalog: catalog, manager: manager, cache: cache}
}

// Manager returns the slot engine in use.
func (s *SchedulingService) Manager() *scheduling.Manager { return s.manager }

// clampDays keeps listings inside the window accepted by CanScheduleOrder.
// A negative value asks for the whole window; 0 lists today only.
func (s *SchedulingService) clampDays(days int) int {
	limit := s.manager.Options().DaysAhead
	if days < 0 || days > limit {
		return limit
	}
	return days
}

// Slots lists the bookable slots of a store. Cart-less listings are served
// from the slot cache when one is configured.
func (s *SchedulingService) Slots(ctx context.Context, storeID string, deliveryType models.DeliveryType, days int, lines []CartLine) ([]scheduling.Option, error) {
	if !deliveryType.Valid() {
		return nil, utils.ErrInvalidDelivery
	}
	store, err := s.catalog.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	days = s.clampDays(days)

	if len(lines) > 0 {
		cart, err := s.catalog.BuildCart(ctx, store.ID, lines)
		if err != nil {
			return nil, err
		}
		return s.manager.AvailableSlots(*store, deliveryType, days, cart), nil
	}

	if s.cache != nil {
		slots, ok, err := s.cache.Get(ctx, store.ID, deliveryType, days)
		if err != nil {
			log.Warn().Err(err).Str("store_id", store.ID).Msg("Slot cache read failed")
		} else if ok {
			return slots, nil
		}
	}

	slots := s.manager.AvailableSlots(*store, deliveryType, days, nil)
	if s.cache != nil {
		if err := s.cache.Set(ctx, store.ID, deliveryType, days, slots); err != nil {
			log.Warn().Err(err).Str("store_id", store.ID).Msg("Slot cache write failed")
		}
	}
	return slots, nil
}

// Check validates a slot selection with the same rules applied at checkout.
func (s *SchedulingService) Check(ctx context.Context, storeID string, req ScheduleCheck) (scheduling.Decision, error) {
	store, err := s.catalog.GetStore(ctx, storeID)
	if err != nil {
		return scheduling.Decision{}, err
	}
	var cart []models.CartItem
	if len(req.Items) > 0 {
		if cart, err = s.catalog.BuildCart(ctx, store.ID, req.Items); err != nil {
			return scheduling.Decision{}, err
		}
	}
	return s.manager.CanScheduleOrder(*store, cart, req.DeliveryType, req.Date, req.Time), nil
}

// InvalidateStore drops cached slot listings after a store's schedule changed.
func (s *SchedulingService) InvalidateStore(ctx context.Context, storeID string) error {
	store, err := s.catalog.GetStore(ctx, storeID)
	if err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, store.ID)
}

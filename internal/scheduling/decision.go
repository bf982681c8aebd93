package scheduling

import (
	"time"

	"github.com/vitrine/pedidos_api/internal/models"
)

// Rejection reasons returned by CanScheduleOrder.
const (
	ReasonSchedulingDisabled = "This store does not accept scheduled orders"
	ReasonInvalidType        = "Unknown delivery type"
	ReasonInvalidDate        = "Invalid date, expected YYYY-MM-DD"
	ReasonInvalidTime        = "Invalid time, expected HH:MM"
	ReasonPastDate           = "The selected date has already passed"
	ReasonTooFarAhead        = "The selected date is too far ahead"
	ReasonOutOfStockToday    = "Some products in your cart are sold out for today"
	ReasonNoSameDay          = "Some products in your cart cannot be scheduled for today"
	ReasonCutoffPassed       = "Same-day orders are closed for today"
	ReasonOutOfStock         = "Some products in your cart are not available on the selected date"
	ReasonClosed             = "The store is closed on the selected date"
	ReasonOutsideHours       = "The selected time is outside the store hours"
	ReasonTooSoon            = "The selected time is too close to now"
	ReasonClosedNow          = "The store is not taking orders right now"
)

// Decision is the outcome of a schedule check. Reason is set when
// CanSchedule is false.
type Decision struct {
	CanSchedule bool   `json:"canSchedule"`
	Reason      string `json:"reason,omitempty"`
}

func reject(reason string) Decision {
	return Decision{CanSchedule: false, Reason: reason}
}

// CanScheduleOrder re-validates a chosen slot against the current stock and
// store configuration. It is the gate to run right before committing an
// order; the first failing rule is reported.
func (m *Manager) CanScheduleOrder(store models.Store, cart []models.CartItem, deliveryType models.DeliveryType, date, slotTime string) Decision {
	if !store.AllowScheduling {
		return reject(ReasonSchedulingDisabled)
	}
	if !deliveryType.Valid() {
		return reject(ReasonInvalidType)
	}

	loc := m.stock.Location()
	day, err := time.ParseInLocation(models.DateLayout, date, loc)
	if err != nil {
		return reject(ReasonInvalidDate)
	}
	minute, ok := models.ParseTimeOfDay(slotTime)
	if !ok {
		return reject(ReasonInvalidTime)
	}

	today := m.stock.StartOfDay()
	if day.Before(today) {
		return reject(ReasonPastDate)
	}
	if day.After(today.AddDate(0, 0, m.opts.DaysAhead)) {
		return reject(ReasonTooFarAhead)
	}

	isToday := day.Equal(today)
	if isToday {
		for _, item := range cart {
			if item.Product.TracksStock() && !m.stock.CheckDailyStock(item.Product) {
				return reject(ReasonOutOfStockToday)
			}
		}
		for _, item := range cart {
			if !item.Product.SameDayAllowed() {
				return reject(ReasonNoSameDay)
			}
		}
		if m.stock.PastCutoff(store.CutoffFor(deliveryType)) {
			return reject(ReasonCutoffPassed)
		}
	} else if !m.cartAvailableOn(cart, day) {
		return reject(ReasonOutOfStock)
	}

	w, ok := m.resolveWindow(store, deliveryType, day)
	if !ok {
		return reject(ReasonClosed)
	}
	if minute < w.start || minute > w.end {
		return reject(ReasonOutsideHours)
	}
	if isToday && m.tooSoon(day, minute, m.stock.Now()) {
		return reject(ReasonTooSoon)
	}
	return Decision{CanSchedule: true}
}

// CanOrderNow is the gate for orders placed without a date, fulfilled as
// soon as possible today. It applies the same-day rules of CanScheduleOrder
// and requires the channel to be open at the current time. Store-level
// scheduling does not need to be enabled.
func (m *Manager) CanOrderNow(store models.Store, cart []models.CartItem, deliveryType models.DeliveryType) Decision {
	if !deliveryType.Valid() {
		return reject(ReasonInvalidType)
	}
	for _, item := range cart {
		if item.Product.TracksStock() && !m.stock.CheckDailyStock(item.Product) {
			return reject(ReasonOutOfStockToday)
		}
	}
	for _, item := range cart {
		if !item.Product.SameDayAllowed() {
			return reject(ReasonNoSameDay)
		}
	}
	if m.stock.PastCutoff(store.CutoffFor(deliveryType)) {
		return reject(ReasonCutoffPassed)
	}

	now := m.stock.Now()
	w, ok := m.resolveWindow(store, deliveryType, m.stock.StartOfDay())
	if !ok {
		return reject(ReasonClosedNow)
	}
	if minute := models.MinuteOfDay(now); minute < w.start || minute > w.end {
		return reject(ReasonClosedNow)
	}
	return Decision{CanSchedule: true}
}

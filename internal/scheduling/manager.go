// Package scheduling generates bookable delivery and pickup slots and
// re-validates a customer's chosen slot at checkout.
package scheduling

import (
	"time"

	"github.com/vitrine/pedidos_api/internal/models"
	"github.com/vitrine/pedidos_api/internal/stock"
)

const (
	DefaultSlotInterval = 30 * time.Minute
	DefaultLeadTime     = 60 * time.Minute
	DefaultDaysAhead    = 7
)

// Options tunes slot generation.
type Options struct {
	SlotInterval time.Duration
	LeadTime     time.Duration
	DaysAhead    int
}

// DefaultOptions returns the standard slot configuration.
func DefaultOptions() Options {
	return Options{
		SlotInterval: DefaultSlotInterval,
		LeadTime:     DefaultLeadTime,
		DaysAhead:    DefaultDaysAhead,
	}
}

// Option is one selectable slot.
type Option struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// Manager computes slots from a store's schedules and the cart stock state.
type Manager struct {
	stock *stock.Manager
	opts  Options
}

// NewManager creates a Manager. Zero option values fall back to defaults.
func NewManager(stockManager *stock.Manager, opts Options) *Manager {
	def := DefaultOptions()
	if opts.SlotInterval <= 0 {
		opts.SlotInterval = def.SlotInterval
	}
	if opts.LeadTime <= 0 {
		opts.LeadTime = def.LeadTime
	}
	if opts.DaysAhead <= 0 {
		opts.DaysAhead = def.DaysAhead
	}
	return &Manager{stock: stockManager, opts: opts}
}

// Options returns the effective options.
func (m *Manager) Options() Options { return m.opts }

// window is an opening interval in minutes after midnight.
type window struct {
	start, end int
}

// AvailableSlots lists the slots a customer may pick for the next daysAhead
// days (today included, so 0 means today only). A negative daysAhead uses
// the configured default.
//
// The result is advisory; CanScheduleOrder must be called with the final
// selection before an order is committed.
func (m *Manager) AvailableSlots(store models.Store, deliveryType models.DeliveryType, daysAhead int, cart []models.CartItem) []Option {
	slots := []Option{}
	if !store.AllowScheduling || !deliveryType.Valid() {
		return slots
	}
	if daysAhead < 0 {
		daysAhead = m.opts.DaysAhead
	}

	startDay := 0
	if m.blocksToday(cart) {
		startDay = 1
	}

	today := m.stock.StartOfDay()
	now := m.stock.Now()
	pastCutoff := m.stock.PastCutoff(store.CutoffFor(deliveryType))

	for i := startDay; i <= daysAhead; i++ {
		day := today.AddDate(0, 0, i)
		if i == 0 && pastCutoff {
			continue
		}
		w, ok := m.resolveWindow(store, deliveryType, day)
		if !ok {
			continue
		}
		if len(cart) > 0 && !m.cartAvailableOn(cart, day) {
			continue
		}

		date := day.Format(models.DateLayout)
		for _, minute := range m.slotMinutes(w) {
			if i == 0 && m.tooSoon(day, minute, now) {
				continue
			}
			slots = append(slots, Option{
				Date:      date,
				Time:      models.FormatTimeOfDay(minute),
				Available: true,
			})
		}
	}
	return slots
}

// blocksToday reports whether any cart item rules out same-day fulfillment.
func (m *Manager) blocksToday(cart []models.CartItem) bool {
	for _, item := range cart {
		if item.Product.TracksStock() && !m.stock.CheckDailyStock(item.Product) {
			return true
		}
		if !item.Product.SameDayAllowed() {
			return true
		}
	}
	return false
}

func (m *Manager) cartAvailableOn(cart []models.CartItem, day time.Time) bool {
	for _, item := range cart {
		if item.Product.TracksStock() && !m.stock.AvailableOn(item.Product, day) {
			return false
		}
	}
	return true
}

// resolveWindow finds the opening interval of the channel on day. A special
// date overrides the weekly pattern; a missing schedule means closed.
func (m *Manager) resolveWindow(store models.Store, deliveryType models.DeliveryType, day time.Time) (window, bool) {
	if !deliveryType.Valid() {
		return window{}, false
	}
	startStr, endStr, open := weeklyWindow(store, deliveryType, models.DayName(day))

	if special, ok := store.SpecialDates.Find(day.Format(models.DateLayout)); ok {
		switch {
		case special.Closed:
			return window{}, false
		case special.Open != "" && special.Close != "":
			startStr, endStr, open = special.Open, special.Close, true
		case open && special.Open != "":
			startStr = special.Open
		case open && special.Close != "":
			endStr = special.Close
		}
	}
	if !open {
		return window{}, false
	}

	start, ok := models.ParseTimeOfDay(startStr)
	if !ok {
		return window{}, false
	}
	end, ok := models.ParseTimeOfDay(endStr)
	if !ok || end < start {
		return window{}, false
	}
	return window{start: start, end: end}, true
}

// weeklyWindow reads the channel schedule for a weekday. Delivery only uses
// the delivery schedule; pickup uses the store hours and then the pickup
// schedule.
func weeklyWindow(store models.Store, deliveryType models.DeliveryType, dayName string) (string, string, bool) {
	if deliveryType == models.DeliveryTypeDelivery {
		sched, ok := store.DeliverySchedule[dayName]
		if !ok || !sched.Enabled {
			return "", "", false
		}
		return sched.Start, sched.End, true
	}

	if hours, ok := store.Hours(dayName); ok {
		if hours.Closed {
			return "", "", false
		}
		return hours.Open, hours.Close, true
	}
	if sched, ok := store.PickupSchedule[dayName]; ok && sched.Enabled {
		return sched.Start, sched.End, true
	}
	return "", "", false
}

// slotMinutes walks the window from the top of its opening hour in
// SlotInterval steps, keeping marks inside [start, end].
func (m *Manager) slotMinutes(w window) []int {
	step := int(m.opts.SlotInterval / time.Minute)
	if step <= 0 {
		step = int(DefaultSlotInterval / time.Minute)
	}
	var out []int
	for t := (w.start / 60) * 60; t <= w.end; t += step {
		if t < w.start {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (m *Manager) tooSoon(day time.Time, minute int, now time.Time) bool {
	slotAt := time.Date(day.Year(), day.Month(), day.Day(), minute/60, minute%60, 0, 0, day.Location())
	return slotAt.Before(now.Add(m.opts.LeadTime))
}

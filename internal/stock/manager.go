// Package stock implements the daily stock rules and the process-local
// stock cache.
//
// Every check here is advisory. The authoritative decrement happens at order
// commit time in the database (see repository.ProductRepository.DecrementStock).
package stock

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/vitrine/pedidos_api/internal/models"
)

// Manager answers stock questions relative to the store-local calendar day.
type Manager struct {
	clock    clock.Clock
	location *time.Location
}

// NewManager creates a Manager. A nil location means UTC.
func NewManager(clk clock.Clock, loc *time.Location) *Manager {
	if clk == nil {
		clk = clock.New()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Manager{clock: clk, location: loc}
}

// Clock returns the clock used by the manager.
func (m *Manager) Clock() clock.Clock { return m.clock }

// Location returns the store-local time zone.
func (m *Manager) Location() *time.Location { return m.location }

// Now returns the current store-local time.
func (m *Manager) Now() time.Time {
	return m.clock.Now().In(m.location)
}

// Today returns the current store-local date as YYYY-MM-DD.
func (m *Manager) Today() string {
	return m.Now().Format(models.DateLayout)
}

// StartOfDay returns local midnight of the current day.
func (m *Manager) StartOfDay() time.Time {
	now := m.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, m.location)
}

func (m *Manager) localDate(t time.Time) string {
	return t.In(m.location).Format(models.DateLayout)
}

// ResetToday reports whether the product stock was already reset today.
func (m *Manager) ResetToday(p models.Product) bool {
	return p.StockLastReset != nil && m.localDate(*p.StockLastReset) == m.Today()
}

// NeedsReset reports whether a tracked product was last reset before today.
func (m *Manager) NeedsReset(p models.Product) bool {
	if !p.TracksStock() {
		return false
	}
	if p.StockLastReset == nil {
		return true
	}
	return m.localDate(*p.StockLastReset) < m.Today()
}

// CheckDailyStock reports whether the product can be sold today.
// Untracked products are always available. A product not yet reset today is
// treated as holding its full daily stock.
func (m *Manager) CheckDailyStock(p models.Product) bool {
	if !p.TracksStock() {
		return true
	}
	if !m.ResetToday(p) {
		return *p.DailyStock > 0
	}
	return currentOrDaily(p) > 0
}

// ResetDailyStock returns a copy of products where every tracked product
// last reset before today has its current stock restored.
// Calling it again on the same day changes nothing.
func (m *Manager) ResetDailyStock(products []models.Product) []models.Product {
	now := m.Now()
	out := make([]models.Product, len(products))
	for i, p := range products {
		if m.NeedsReset(p) {
			p = resetProduct(p, now)
		}
		out[i] = p
	}
	return out
}

// ReduceStock returns the product with its current stock lowered by
// quantity, floored at zero. Untracked products are returned unchanged.
func (m *Manager) ReduceStock(p models.Product, quantity int) models.Product {
	if !p.TracksStock() {
		return p
	}
	if quantity < 0 {
		quantity = 0
	}
	remaining := currentOrDaily(p) - quantity
	if remaining < 0 {
		remaining = 0
	}
	p.CurrentStock = &remaining
	return p
}

// PastCutoff reports whether the local time is later than cutoff today.
// The cutoff instant itself (HH:MM:00) is still inside the window.
// An empty or malformed cutoff never excludes.
func (m *Manager) PastCutoff(cutoff string) bool {
	limit, ok := models.ParseTimeOfDay(cutoff)
	if !ok {
		return false
	}
	now := m.Now()
	at := time.Date(now.Year(), now.Month(), now.Day(), limit/60, limit%60, 0, 0, m.location)
	return now.After(at)
}

// CanDeliverSameDay reports whether the product can still be fulfilled today.
func (m *Manager) CanDeliverSameDay(store models.Store, p models.Product) bool {
	if m.PastCutoff(store.SameDayCutoffTime) {
		return false
	}
	if !m.CheckDailyStock(p) {
		return false
	}
	return p.SameDayAllowed()
}

// AvailableOn reports whether the product has stock on the given local date.
// Future days assume the daily reset has happened.
func (m *Manager) AvailableOn(p models.Product, day time.Time) bool {
	date := m.localDate(day)
	today := m.Today()
	switch {
	case date == today:
		return m.CheckDailyStock(p)
	case date < today:
		return false
	}
	return !p.TracksStock() || *p.DailyStock > 0
}

func currentOrDaily(p models.Product) int {
	if p.CurrentStock != nil {
		return *p.CurrentStock
	}
	return *p.DailyStock
}

func resetProduct(p models.Product, now time.Time) models.Product {
	daily := *p.DailyStock
	stamp := now
	p.CurrentStock = &daily
	p.StockLastReset = &stamp
	return p
}

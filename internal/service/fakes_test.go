package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vitrine/pedidos_api/internal/models"
	"github.com/vitrine/pedidos_api/internal/scheduling"
	"github.com/vitrine/pedidos_api/internal/sse"
	"github.com/vitrine/pedidos_api/internal/stock"
)

var brt = time.FixedZone("BRT", -3*3600)

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

type fakeProducts struct {
	mu        sync.Mutex
	items     map[string]models.Product
	failReset map[string]bool
	resets    int
}

func newFakeProducts(products ...models.Product) *fakeProducts {
	f := &fakeProducts{items: map[string]models.Product{}, failReset: map[string]bool{}}
	for _, p := range products {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProducts) get(id string) models.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id]
}

func (f *fakeProducts) GetByID(_ context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (f *fakeProducts) GetByIDs(_ context.Context, storeID string, ids []string) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Product{}
	for _, id := range ids {
		if p, ok := f.items[id]; ok && p.StoreID == storeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) ListByStore(_ context.Context, storeID string, page, limit int) ([]models.Product, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Product{}
	for _, p := range f.items {
		if p.StoreID == storeID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, len(out), nil
}

func (f *fakeProducts) ListStockTracked(context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Product{}
	for _, p := range f.items {
		if p.TracksStock() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProducts) ResetDailyStock(_ context.Context, id string, now, dayStart time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failReset[id] {
		return false, sql.ErrConnDone
	}
	p, ok := f.items[id]
	if !ok || !p.TracksStock() {
		return false, nil
	}
	if p.StockLastReset != nil && !p.StockLastReset.Before(dayStart) {
		return false, nil
	}
	daily := *p.DailyStock
	p.CurrentStock = &daily
	p.StockLastReset = &now
	f.items[id] = p
	f.resets++
	return true, nil
}

func (f *fakeProducts) ManualResetStock(_ context.Context, id string, now time.Time) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok || !p.TracksStock() {
		return nil, sql.ErrNoRows
	}
	daily := *p.DailyStock
	p.CurrentStock = &daily
	p.StockLastReset = &now
	f.items[id] = p
	return &p, nil
}

func (f *fakeProducts) DecrementStock(_ context.Context, _ *sqlx.Tx, id string, quantity int, now, dayStart time.Time) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok || !p.TracksStock() {
		return 0, false, nil
	}
	available := *p.DailyStock
	if p.StockLastReset != nil && !p.StockLastReset.Before(dayStart) && p.CurrentStock != nil {
		available = *p.CurrentStock
	}
	if available < quantity {
		return 0, false, nil
	}
	left := available - quantity
	p.CurrentStock = &left
	if p.StockLastReset == nil || p.StockLastReset.Before(dayStart) {
		p.StockLastReset = &now
	}
	f.items[id] = p
	return left, true, nil
}

func (f *fakeProducts) snapshot() map[string]models.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]models.Product, len(f.items))
	for k, v := range f.items {
		out[k] = v
	}
	return out
}

func (f *fakeProducts) restore(items map[string]models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = items
}

type fakeAddons struct {
	items []models.ProductAddon
}

func (f *fakeAddons) GetByIDs(_ context.Context, productID string, ids []string) ([]models.ProductAddon, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := []models.ProductAddon{}
	for _, a := range f.items {
		if a.ProductID == productID && want[a.ID] {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeStores struct {
	items map[string]models.Store
}

func (f *fakeStores) GetByID(_ context.Context, id string) (*models.Store, error) {
	s, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (f *fakeStores) ListSchedulable(context.Context) ([]models.Store, error) {
	out := []models.Store{}
	for _, s := range f.items {
		if s.AllowScheduling {
			out = append(out, s)
		}
	}
	return out, nil
}

// fakeOrders serializes transactions and rolls product changes back when
// the transaction body fails.
type fakeOrders struct {
	mu       sync.Mutex
	products *fakeProducts
	created  map[string]*models.Order
	failNext error
}

func (f *fakeOrders) WithTx(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	before := f.products.snapshot()
	if err := fn(nil); err != nil {
		f.products.restore(before)
		return err
	}
	return nil
}

func (f *fakeOrders) Create(_ context.Context, _ *sqlx.Tx, o *models.Order) error {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.created[o.ID] = o
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.created[id]; ok {
		return o, nil
	}
	return nil, sql.ErrNoRows
}

type recordingNotifier struct {
	mu      sync.Mutex
	resets  []string
	reduced []string
	orders  []string
}

func (n *recordingNotifier) NotifyStockReset(p models.Product) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resets = append(n.resets, p.ID)
}

func (n *recordingNotifier) NotifyStockReduced(p models.Product, _ int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reduced = append(n.reduced, p.ID)
}

func (n *recordingNotifier) NotifyOrderCreated(o *models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, o.ID)
}

var _ sse.StockNotifier = (*recordingNotifier)(nil)

type fakeSlotCache struct {
	entries     map[string][]scheduling.Option
	gets, sets  int
	invalidated []string
}

func slotKey(storeID string, t models.DeliveryType, days int) string {
	return fmt.Sprintf("%s|%s|%d", storeID, t, days)
}

func (f *fakeSlotCache) Get(_ context.Context, storeID string, t models.DeliveryType, days int) ([]scheduling.Option, bool, error) {
	f.gets++
	s, ok := f.entries[slotKey(storeID, t, days)]
	return s, ok, nil
}

func (f *fakeSlotCache) Set(_ context.Context, storeID string, t models.DeliveryType, days int, slots []scheduling.Option) error {
	f.sets++
	f.entries[slotKey(storeID, t, days)] = slots
	return nil
}

func (f *fakeSlotCache) Invalidate(_ context.Context, storeID string) error {
	f.invalidated = append(f.invalidated, storeID)
	return nil
}

// env wires the services around in-memory stores. The clock starts at the
// given store-local time; 2026-03-10 is a Tuesday.
type env struct {
	clock    *clock.Mock
	products *fakeProducts
	addons   *fakeAddons
	stores   *fakeStores
	orders   *fakeOrders
	notifier *recordingNotifier
	slots    *fakeSlotCache
	cache    *stock.LiveCache

	catalog    *CatalogService
	stock      *StockService
	scheduling *SchedulingService
	order      *OrderService
}

func newEnv(t *testing.T, local string) *env {
	t.Helper()
	now, err := time.ParseInLocation("2006-01-02 15:04", local, brt)
	require.NoError(t, err)
	mock := clock.NewMock()
	mock.Set(now)

	e := &env{
		clock:    mock,
		products: newFakeProducts(testProducts()...),
		addons:   &fakeAddons{items: testAddons()},
		stores:   &fakeStores{items: map[string]models.Store{"s1": testStore()}},
		notifier: &recordingNotifier{},
		slots:    &fakeSlotCache{entries: map[string][]scheduling.Option{}},
	}
	e.orders = &fakeOrders{products: e.products, created: map[string]*models.Order{}}

	manager := stock.NewManager(mock, brt)
	e.cache = stock.NewLiveCache(manager, time.Hour)
	e.catalog = NewCatalogService(e.stores, e.products, e.addons)
	e.stock = NewStockService(e.products, e.cache, manager, e.notifier)
	e.scheduling = NewSchedulingService(e.catalog, scheduling.NewManager(manager, scheduling.DefaultOptions()), e.slots)
	e.order = NewOrderService(e.catalog, e.stock, e.scheduling, e.products, e.orders, e.notifier)
	require.NoError(t, e.stock.Refresh(context.Background()))
	return e
}

func testStore() models.Store {
	store := models.Store{
		ID:                "s1",
		Name:              "Doceria",
		AllowScheduling:   true,
		SameDayCutoffTime: "16:00",
		BusinessHours:     models.WeeklyHours{},
		DeliverySchedule:  models.ChannelSchedule{},
	}
	for _, d := range weekdays {
		store.BusinessHours[d] = models.DayHours{Open: "09:00", Close: "18:00"}
		store.DeliverySchedule[d] = models.ChannelWindow{Start: "10:00", End: "20:00", Enabled: true}
	}
	return store
}

func testProducts() []models.Product {
	reset := time.Date(2026, 3, 10, 0, 5, 0, 0, brt)
	yesterday := time.Date(2026, 3, 9, 0, 5, 0, 0, brt)
	return []models.Product{
		{
			ID: "bolo", StoreID: "s1", Name: "Bolo no pote",
			Price:               decimal.NewFromInt(20),
			MaxIncludedQuantity: models.IntPtr(2),
			DailyStock:          models.IntPtr(5),
			CurrentStock:        models.IntPtr(3),
			StockLastReset:      &reset,
		},
		{
			ID: "torta", StoreID: "s1", Name: "Torta",
			Price:          decimal.NewFromInt(50),
			DailyStock:     models.IntPtr(4),
			CurrentStock:   models.IntPtr(0),
			StockLastReset: &yesterday,
		},
		{ID: "cafe", StoreID: "s1", Name: "Café", Price: decimal.RequireFromString("6.50")},
		{ID: "outra", StoreID: "s2", Name: "Other store", Price: decimal.NewFromInt(1)},
	}
}

func testAddons() []models.ProductAddon {
	return []models.ProductAddon{
		{ID: "morango", ProductID: "bolo", Name: "Morango", Price: decimal.NewFromInt(6)},
		{ID: "nutella", ProductID: "bolo", Name: "Nutella", Price: decimal.NewFromInt(10)},
		{ID: "granola", ProductID: "cafe", Name: "Granola", Price: decimal.NewFromInt(2)},
	}
}

func addr(s string) *string { return &s }

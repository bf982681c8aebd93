package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/vitrine/pedidos_api/internal/models"
	"github.com/vitrine/pedidos_api/internal/pricing"
	"github.com/vitrine/pedidos_api/internal/sse"
	"github.com/vitrine/pedidos_api/internal/utils"
)

// PlaceOrderRequest is a checkout submitted by a customer. An empty
// ScheduledDate places the order for fulfillment as soon as possible.
type PlaceOrderRequest struct {
	CustomerName  string               `json:"customerName" binding:"required"`
	CustomerPhone string               `json:"customerPhone" binding:"required"`
	Address       *string              `json:"address"`
	DeliveryType  models.DeliveryType  `json:"deliveryType" binding:"required"`
	ScheduledDate string               `json:"scheduledDate"`
	ScheduledTime string               `json:"scheduledTime"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"required"`
	Notes         string               `json:"notes"`
	Items         []CartLine           `json:"items" binding:"required"`
}

// Quote is the priced cart returned before checkout.
type Quote struct {
	pricing.CartResult
	// SoldOut lists products the live cache cannot cover today.
	SoldOut []string `json:"soldOut"`
}

// OrderService prices carts and commits orders.
type OrderService struct {
	catalog    *CatalogService
	stock      *StockService
	scheduling *SchedulingService
	products   ProductStore
	orders     OrderStore
	notifier   sse.StockNotifier
}

// NewOrderService constructs an OrderService.
func NewOrderService(
	catalog *CatalogService,
	stockSvc *StockService,
	schedulingSvc *SchedulingService,
	products ProductStore,
	orders OrderStore,
	notifier sse.StockNotifier,
) *OrderService {
	if notifier == nil {
		notifier = &sse.NopNotifier{}
	}
	return &OrderService{
		catalog:    catalog,
		stock:      stockSvc,
		scheduling: schedulingSvc,
		products:   products,
		orders:     orders,
		notifier:   notifier,
	}
}

// Quote prices a cart with catalog prices.
func (s *OrderService) Quote(ctx context.Context, storeID string, lines []CartLine) (*Quote, error) {
	store, err := s.catalog.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	cart, err := s.catalog.BuildCart(ctx, store.ID, lines)
	if err != nil {
		return nil, err
	}

	return &Quote{CartResult: pricing.CalculateCart(cart), SoldOut: s.stock.SoldOut(cart)}, nil
}

// PlaceOrder validates, prices and persists an order. The slot is
// re-validated right before the transaction, and same-day orders take their
// stock with a conditional decrement inside the transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, storeID string, req PlaceOrderRequest) (*models.Order, error) {
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}

	store, err := s.catalog.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	cart, err := s.catalog.BuildCart(ctx, store.ID, req.Items)
	if err != nil {
		return nil, err
	}

	manager := s.stock.Manager()
	sameDay := req.ScheduledDate == "" || req.ScheduledDate == manager.Today()

	if req.ScheduledDate != "" {
		decision := s.scheduling.Manager().CanScheduleOrder(*store, cart, req.DeliveryType, req.ScheduledDate, req.ScheduledTime)
		if !decision.CanSchedule {
			return nil, &utils.ScheduleRejectedError{Reason: decision.Reason}
		}
	} else {
		for _, item := range cart {
			if !manager.CheckDailyStock(item.Product) {
				return nil, &utils.InsufficientStockError{ProductID: item.Product.ID}
			}
		}
		decision := s.scheduling.Manager().CanOrderNow(*store, cart, req.DeliveryType)
		if !decision.CanSchedule {
			return nil, &utils.ScheduleRejectedError{Reason: decision.Reason}
		}
	}
	if sameDay {
		if err := s.stock.CheckCart(cart); err != nil {
			return nil, err
		}
	}

	priced := pricing.CalculateCart(cart)
	order := buildOrder(store.ID, req, cart, priced, manager.Now())

	quantities := trackedQuantities(cart)
	remaining := make(map[string]int, len(quantities))
	now, dayStart := manager.Now(), manager.StartOfDay()

	err = s.orders.WithTx(ctx, func(tx *sqlx.Tx) error {
		if sameDay {
			for _, id := range sortedKeys(quantities) {
				qty := quantities[id]
				left, ok, err := s.products.DecrementStock(ctx, tx, id, qty, now, dayStart)
				if err != nil {
					return fmt.Errorf("decrement stock: %w", err)
				}
				if !ok {
					return &utils.InsufficientStockError{ProductID: id}
				}
				remaining[id] = left
			}
		}
		if err := s.orders.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, item := range uniqueProducts(cart) {
		if left, ok := remaining[item.ID]; ok {
			s.stock.Reduced(item, quantities[item.ID], left)
		}
	}
	s.notifier.NotifyOrderCreated(order)

	log.Info().
		Str("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("store_id", order.StoreID).
		Str("total", order.Total.StringFixed(2)).
		Msg("Order placed")
	return order, nil
}

// GetOrder returns an order by id or order number.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func validateOrderRequest(req PlaceOrderRequest) error {
	if !req.DeliveryType.Valid() {
		return utils.ErrInvalidDelivery
	}
	switch req.PaymentMethod {
	case models.PaymentMethodPix, models.PaymentMethodCard, models.PaymentMethodCash:
	default:
		return utils.ErrInvalidPayment
	}
	if req.DeliveryType == models.DeliveryTypeDelivery && (req.Address == nil || strings.TrimSpace(*req.Address) == "") {
		return utils.ErrAddressRequired
	}
	if req.ScheduledDate != "" && req.ScheduledTime == "" {
		return &utils.ScheduleRejectedError{Reason: "A scheduled order needs a time"}
	}
	if len(req.Items) == 0 {
		return utils.ErrInvalidCart
	}
	return nil
}

func buildOrder(storeID string, req PlaceOrderRequest, cart []models.CartItem, priced pricing.CartResult, now time.Time) *models.Order {
	order := &models.Order{
		ID:            utils.NewID(),
		OrderNumber:   utils.GenerateOrderNumber(now),
		StoreID:       storeID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		DeliveryType:  req.DeliveryType,
		PaymentMethod: req.PaymentMethod,
		Status:        models.OrderStatusPendingPayment,
		ProductsTotal: priced.ProductsTotal,
		AddonsTotal:   priced.AddonsTotal,
		Total:         priced.Total,
		Notes:         req.Notes,
		Items:         make([]models.OrderItem, 0, len(cart)),
	}
	if req.DeliveryType == models.DeliveryTypeDelivery {
		address := strings.TrimSpace(*req.Address)
		order.Address = &address
	}
	if req.ScheduledDate != "" {
		date, slot := req.ScheduledDate, req.ScheduledTime
		order.ScheduledDate, order.ScheduledTime = &date, &slot
	}

	for i, item := range cart {
		line := priced.Lines[i]
		oi := models.OrderItem{
			ID:           utils.NewID(),
			ProductID:    item.Product.ID,
			ProductName:  item.Product.Name,
			Quantity:     item.Quantity,
			UnitPrice:    item.Product.EffectivePrice(),
			ProductTotal: line.ProductTotal,
			AddonsTotal:  line.AddonsTotal,
			LineTotal:    line.Total,
			Notes:        item.Notes,
			Addons:       make([]models.OrderItemAddon, 0, len(item.Addons)),
		}
		for _, a := range item.Addons {
			oi.Addons = append(oi.Addons, models.OrderItemAddon{
				ID:       utils.NewID(),
				AddonID:  a.ID,
				Name:     a.Name,
				Price:    a.UnitPrice(),
				Quantity: a.Units(),
			})
		}
		order.Items = append(order.Items, oi)
	}
	return order
}

func uniqueProducts(cart []models.CartItem) []models.Product {
	seen := make(map[string]bool, len(cart))
	out := make([]models.Product, 0, len(cart))
	for _, item := range cart {
		if !seen[item.Product.ID] {
			seen[item.Product.ID] = true
			out = append(out, item.Product)
		}
	}
	return out
}

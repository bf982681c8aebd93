package sse

import (
	"time"

	"github.com/vitrine/pedidos_api/internal/models"
)

// StockNotifier is the interface services use to emit stock and order events.
type StockNotifier interface {
	NotifyStockReset(p models.Product)
	NotifyStockReduced(p models.Product, quantity int)
	NotifyOrderCreated(o *models.Order)
}

// HubNotifier implements StockNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
	now func() time.Time
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub, now: time.Now}
}

func (n *HubNotifier) NotifyStockReset(p models.Product) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(n.productEvent(EventStockReset, p, 0))
}

func (n *HubNotifier) NotifyStockReduced(p models.Product, quantity int) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(n.productEvent(EventStockReduced, p, quantity))
}

func (n *HubNotifier) NotifyOrderCreated(o *models.Order) {
	if n.hub.ClientCount() == 0 {
		return
	}
	total := o.Total
	n.hub.Broadcast(&Event{
		Event:       EventOrderCreated,
		StoreID:     o.StoreID,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Total:       &total,
		Timestamp:   n.now(),
	})
}

func (n *HubNotifier) productEvent(eventType EventType, p models.Product, quantity int) *Event {
	return &Event{
		Event:        eventType,
		StoreID:      p.StoreID,
		ProductID:    p.ID,
		ProductName:  p.Name,
		DailyStock:   p.DailyStock,
		CurrentStock: p.CurrentStock,
		Quantity:     quantity,
		Timestamp:    n.now(),
	}
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifyStockReset(p models.Product)                 {}
func (n *NopNotifier) NotifyStockReduced(p models.Product, quantity int) {}
func (n *NopNotifier) NotifyOrderCreated(o *models.Order)                {}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitrine/pedidos_api/internal/service"
	"github.com/vitrine/pedidos_api/internal/utils"
)

// OrderHandler handles checkout endpoints.
type OrderHandler struct {
	orders OrderService
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orders OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CreateOrder handles POST /v1/stores/:storeId/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "MISSING_FIELD", "Invalid request body")
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), c.Param("storeId"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Order created", order)
}

// GetOrder handles GET /v1/orders/:orderId
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Order retrieved successfully", order)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitrine/pedidos_api/internal/utils"
)

// StockHandler exposes stock availability and the manual reset.
type StockHandler struct {
	stock StockService
}

// NewStockHandler constructs a StockHandler.
func NewStockHandler(stock StockService) *StockHandler {
	return &StockHandler{stock: stock}
}

// GetStock handles GET /v1/stores/:storeId/products/:productId/stock
func (h *StockHandler) GetStock(c *gin.Context) {
	status, err := h.stock.Status(c.Request.Context(), c.Param("storeId"), c.Param("productId"))
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Stock retrieved successfully", status)
}

// ResetStock handles POST /v1/admin/products/:productId/stock/reset
func (h *StockHandler) ResetStock(c *gin.Context) {
	product, err := h.stock.ManualReset(c.Request.Context(), c.Param("productId"))
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Stock reset", gin.H{
		"productId":      product.ID,
		"dailyStock":     product.DailyStock,
		"currentStock":   product.CurrentStock,
		"stockLastReset": product.StockLastReset,
	})
}

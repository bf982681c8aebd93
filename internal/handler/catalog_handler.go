package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vitrine/pedidos_api/internal/service"
	"github.com/vitrine/pedidos_api/internal/utils"
)

// CatalogHandler handles product listing and cart quotes.
type CatalogHandler struct {
	catalog CatalogService
	orders  OrderService
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalog CatalogService, orders OrderService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, orders: orders}
}

// QuoteRequest is the body of POST /v1/stores/:storeId/quote.
type QuoteRequest struct {
	Items []service.CartLine `json:"items" binding:"required,dive"`
}

// GetProducts handles GET /v1/stores/:storeId/products
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 50)

	products, total, err := h.catalog.ListProducts(c.Request.Context(), c.Param("storeId"), page, limit)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessWithPagination(c, http.StatusOK, "Products retrieved successfully", gin.H{
		"products": products,
	}, page, limit, total)
}

// Quote handles POST /v1/stores/:storeId/quote
func (h *CatalogHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "MISSING_FIELD", "Invalid request body")
		return
	}

	quote, err := h.orders.Quote(c.Request.Context(), c.Param("storeId"), req.Items)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Cart priced", quote)
}

// queryInt reads a positive integer query parameter.
func queryInt(c *gin.Context, key string, def int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

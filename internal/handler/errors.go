package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vitrine/pedidos_api/internal/utils"
)

// handleError maps service errors to API error responses.
func handleError(c *gin.Context, err error) {
	var rejected *utils.ScheduleRejectedError
	var insufficient *utils.InsufficientStockError

	switch {
	case errors.As(err, &rejected):
		utils.Rejected(c, http.StatusUnprocessableEntity, utils.ErrScheduleRejected.Error(), rejected.Reason)
	case errors.As(err, &insufficient):
		utils.Error(c, http.StatusConflict, utils.ErrInsufficientStock.Error(), "Not enough stock for product "+insufficient.ProductID)
	case errors.Is(err, utils.ErrStoreNotFound):
		utils.Error(c, http.StatusNotFound, "STORE_NOT_FOUND", "Store not found")
	case errors.Is(err, utils.ErrProductNotFound):
		utils.Error(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", err.Error())
	case errors.Is(err, utils.ErrAddonNotFound):
		utils.Error(c, http.StatusNotFound, "ADDON_NOT_FOUND", err.Error())
	case errors.Is(err, utils.ErrOrderNotFound):
		utils.Error(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
	case errors.Is(err, utils.ErrInvalidCart):
		utils.Error(c, http.StatusBadRequest, "INVALID_CART", "Cart must have at least one item")
	case errors.Is(err, utils.ErrInvalidQuantity):
		utils.Error(c, http.StatusBadRequest, "INVALID_QUANTITY", "Quantity must be greater than zero")
	case errors.Is(err, utils.ErrInvalidDelivery):
		utils.Error(c, http.StatusBadRequest, "INVALID_DELIVERY_TYPE", "Type must be 'delivery' or 'pickup'")
	case errors.Is(err, utils.ErrInvalidPayment):
		utils.Error(c, http.StatusBadRequest, "INVALID_PAYMENT_METHOD", "Payment method must be 'pix', 'card' or 'cash'")
	case errors.Is(err, utils.ErrAddressRequired):
		utils.Error(c, http.StatusBadRequest, "ADDRESS_REQUIRED", "Address is required for delivery orders")
	case errors.Is(err, utils.ErrStockNotTracked):
		utils.Error(c, http.StatusBadRequest, "STOCK_NOT_TRACKED", "Product has no daily stock")
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

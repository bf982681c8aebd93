package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vitrine/pedidos_api/internal/models"
	"github.com/vitrine/pedidos_api/internal/service"
	"github.com/vitrine/pedidos_api/internal/utils"
)

// SchedulingHandler serves slot listings and schedule checks.
type SchedulingHandler struct {
	scheduling SchedulingService
}

// NewSchedulingHandler constructs a SchedulingHandler.
func NewSchedulingHandler(scheduling SchedulingService) *SchedulingHandler {
	return &SchedulingHandler{scheduling: scheduling}
}

// SlotsRequest is the body of POST /v1/stores/:storeId/slots.
type SlotsRequest struct {
	DeliveryType models.DeliveryType `json:"deliveryType" binding:"required"`
	Days         *int                `json:"days"`
	Items        []service.CartLine  `json:"items" binding:"dive"`
}

// GetSlots handles GET /v1/stores/:storeId/slots?type=delivery&days=7
func (h *SchedulingHandler) GetSlots(c *gin.Context) {
	deliveryType := models.DeliveryType(c.DefaultQuery("type", string(models.DeliveryTypeDelivery)))
	h.respondSlots(c, deliveryType, queryDays(c), nil)
}

// PostSlots handles POST /v1/stores/:storeId/slots with the cart in the body.
func (h *SchedulingHandler) PostSlots(c *gin.Context) {
	var req SlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "MISSING_FIELD", "Invalid request body")
		return
	}
	days := -1
	if req.Days != nil && *req.Days >= 0 {
		days = *req.Days
	}
	h.respondSlots(c, req.DeliveryType, days, req.Items)
}

// queryDays reads the days query parameter. Absent or invalid values ask
// for the store's full booking window (-1); 0 means today only.
func queryDays(c *gin.Context) int {
	if n, err := strconv.Atoi(c.Query("days")); err == nil && n >= 0 {
		return n
	}
	return -1
}

func (h *SchedulingHandler) respondSlots(c *gin.Context, deliveryType models.DeliveryType, days int, items []service.CartLine) {
	slots, err := h.scheduling.Slots(c.Request.Context(), c.Param("storeId"), deliveryType, days, items)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Slots retrieved successfully", gin.H{
		"deliveryType": deliveryType,
		"slots":        slots,
	})
}

// CheckSchedule handles POST /v1/stores/:storeId/schedule/check
func (h *SchedulingHandler) CheckSchedule(c *gin.Context) {
	var req service.ScheduleCheck
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "MISSING_FIELD", "deliveryType, date and time are required")
		return
	}

	decision, err := h.scheduling.Check(c.Request.Context(), c.Param("storeId"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Schedule checked", decision)
}

// InvalidateSlots handles POST /v1/admin/stores/:storeId/slots/invalidate
func (h *SchedulingHandler) InvalidateSlots(c *gin.Context) {
	if err := h.scheduling.InvalidateStore(c.Request.Context(), c.Param("storeId")); err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Slot cache cleared", nil)
}

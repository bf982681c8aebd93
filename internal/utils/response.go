package utils

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "request_id"

// Response is the envelope every storefront endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    Meta        `json:"meta"`
}

// ErrorInfo describes a failed request. Reason carries the customer-facing
// explanation when a schedule or immediate order is refused.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

// Meta contains request-scoped metadata.
type Meta struct {
	RequestID  string      `json:"requestId"`
	Timestamp  string      `json:"timestamp"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination holds paging data for catalog listings.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// NewRequestID returns a short random request ID.
func NewRequestID() string {
	return uuid.New().String()[:8]
}

// RequestID returns the ID set by the logging middleware, or a fresh one
// for handlers mounted without it.
func RequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return NewRequestID()
}

func meta(c *gin.Context) Meta {
	return Meta{RequestID: RequestID(c), Timestamp: time.Now().Format(time.RFC3339)}
}

// Success writes a success envelope.
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{Success: true, Code: code, Message: message, Data: data, Meta: meta(c)})
}

// SuccessWithPagination writes a success envelope with paging metadata.
func SuccessWithPagination(c *gin.Context, code int, message string, data interface{}, page, limit, totalItems int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	m := meta(c)
	m.Pagination = &Pagination{
		Page:       page,
		Limit:      limit,
		TotalItems: totalItems,
		TotalPages: (totalItems + limit - 1) / limit,
	}
	c.JSON(code, Response{Success: true, Code: code, Message: message, Data: data, Meta: m})
}

// Error writes an error envelope.
func Error(c *gin.Context, code int, errCode, message string) {
	writeError(c, code, &ErrorInfo{Code: errCode, Message: message})
}

// Rejected writes a refused order or schedule check, keeping the reason
// separate from the generic message.
func Rejected(c *gin.Context, code int, errCode, reason string) {
	writeError(c, code, &ErrorInfo{Code: errCode, Message: "Order cannot be placed", Reason: reason})
}

func writeError(c *gin.Context, code int, info *ErrorInfo) {
	c.JSON(code, Response{Success: false, Code: code, Message: info.Message, Error: info, Meta: meta(c)})
}

package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns a random identifier for persisted rows.
func NewID() string {
	return uuid.NewString()
}

// GenerateOrderNumber builds a human readable order number.
// Format: PED-YYYYMMDD-XXXXXX, with the date taken in the store location.
// Example: PED-20260310-9F2C4A
func GenerateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return "PED-" + now.Format("20060102") + "-" + suffix
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DeliveryType enumerates the fulfillment channels of an order.
type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "delivery"
	DeliveryTypePickup   DeliveryType = "pickup"
)

// Valid reports whether the delivery type is a known channel.
func (t DeliveryType) Valid() bool {
	return t == DeliveryTypeDelivery || t == DeliveryTypePickup
}

// DayHours is the opening window of a store for one weekday.
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// ChannelWindow is the delivery or pickup window for one weekday.
type ChannelWindow struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Enabled bool   `json:"enabled"`
}

// WeeklyHours maps a lowercase English day name ("monday") to its hours.
type WeeklyHours map[string]DayHours

// ChannelSchedule maps a lowercase English day name to a channel window.
type ChannelSchedule map[string]ChannelWindow

// SpecialDate overrides the weekly pattern for one calendar date (YYYY-MM-DD).
type SpecialDate struct {
	Date        string `json:"date"`
	Open        string `json:"open,omitempty"`
	Close       string `json:"close,omitempty"`
	Closed      bool   `json:"closed"`
	Description string `json:"description,omitempty"`
}

// SpecialDates is the JSONB list of date overrides.
type SpecialDates []SpecialDate

// Find returns the override for the given date, if any.
func (s SpecialDates) Find(date string) (SpecialDate, bool) {
	for _, d := range s {
		if d.Date == date {
			return d, true
		}
	}
	return SpecialDate{}, false
}

// Store holds the scheduling-relevant configuration of a tenant.
type Store struct {
	ID                 string          `db:"id" json:"id"`
	Name               string          `db:"name" json:"name"`
	Slug               string          `db:"slug" json:"slug"`
	AllowScheduling    bool            `db:"allow_scheduling" json:"allowScheduling"`
	SameDayCutoffTime  string          `db:"same_day_cutoff_time" json:"sameDayCutoffTime,omitempty"`
	DeliveryCutoffTime string          `db:"delivery_cutoff_time" json:"deliveryCutoffTime,omitempty"`
	PickupCutoffTime   string          `db:"pickup_cutoff_time" json:"pickupCutoffTime,omitempty"`
	BusinessHours      WeeklyHours     `db:"business_hours" json:"businessHours,omitempty"`
	WeeklySchedule     WeeklyHours     `db:"weekly_schedule" json:"weeklySchedule,omitempty"`
	DeliverySchedule   ChannelSchedule `db:"delivery_schedule" json:"deliverySchedule,omitempty"`
	PickupSchedule     ChannelSchedule `db:"pickup_schedule" json:"pickupSchedule,omitempty"`
	SpecialDates       SpecialDates    `db:"special_dates" json:"specialDates,omitempty"`
	IsActive           bool            `db:"is_active" json:"isActive"`
	CreatedAt          time.Time       `db:"created_at" json:"-"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updatedAt"`
}

// CutoffFor returns the channel-specific cutoff, falling back to the
// same-day cutoff.
func (s *Store) CutoffFor(t DeliveryType) string {
	switch t {
	case DeliveryTypeDelivery:
		if s.DeliveryCutoffTime != "" {
			return s.DeliveryCutoffTime
		}
	case DeliveryTypePickup:
		if s.PickupCutoffTime != "" {
			return s.PickupCutoffTime
		}
	}
	return s.SameDayCutoffTime
}

// Hours returns the store-wide hours for a day, preferring business_hours
// over the legacy weekly_schedule column.
func (s *Store) Hours(day string) (DayHours, bool) {
	if h, ok := s.BusinessHours[day]; ok {
		return h, true
	}
	h, ok := s.WeeklySchedule[day]
	return h, ok
}

// Value implements driver.Valuer.
func (w WeeklyHours) Value() (driver.Value, error) { return jsonValue(w) }

// Scan implements sql.Scanner.
func (w *WeeklyHours) Scan(src interface{}) error { return jsonScan(src, w) }

// Value implements driver.Valuer.
func (c ChannelSchedule) Value() (driver.Value, error) { return jsonValue(c) }

// Scan implements sql.Scanner.
func (c *ChannelSchedule) Scan(src interface{}) error { return jsonScan(src, c) }

// Value implements driver.Valuer.
func (s SpecialDates) Value() (driver.Value, error) { return jsonValue(s) }

// Scan implements sql.Scanner.
func (s *SpecialDates) Scan(src interface{}) error { return jsonScan(src, s) }

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(src interface{}, dst interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported JSON column type")
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode JSON column: %w", err)
	}
	return nil
}

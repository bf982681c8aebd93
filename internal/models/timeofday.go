package models

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by slots and special dates.
const DateLayout = "2006-01-02"

// ParseTimeOfDay converts "HH:MM" (or "HH:MM:SS") to minutes after midnight.
// ok is false for empty or malformed input.
func ParseTimeOfDay(s string) (minutes int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// FormatTimeOfDay renders minutes after midnight as "HH:MM".
func FormatTimeOfDay(minutes int) string {
	h, m := minutes/60, minutes%60
	return pad2(h) + ":" + pad2(m)
}

// MinuteOfDay returns the minutes elapsed since local midnight of t.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// DayName returns the lowercase English weekday used as schedule key.
func DayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

func pad2(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_EffectivePrice(t *testing.T) {
	p := Product{Price: decimal.NewFromInt(20)}
	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(20)))

	p.SalePrice = decimal.NewNullDecimal(decimal.NewFromInt(15))
	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(15)))

	p.SalePrice = decimal.NewNullDecimal(decimal.Zero)
	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(20)), "zero sale price is ignored")
}

func TestProduct_Normalize(t *testing.T) {
	p := Product{
		Price:               decimal.NewFromInt(-3),
		SalePrice:           decimal.NewNullDecimal(decimal.NewFromInt(-1)),
		MaxIncludedQuantity: IntPtr(0),
		DailyStock:          IntPtr(-2),
		CurrentStock:        IntPtr(-5),
	}
	p.Normalize()

	assert.True(t, p.Price.IsZero())
	assert.False(t, p.SalePrice.Valid)
	assert.Nil(t, p.MaxIncludedQuantity)
	assert.Equal(t, 0, *p.DailyStock)
	assert.Equal(t, 0, *p.CurrentStock)
	assert.True(t, p.TracksStock())
}

func TestProduct_Defaults(t *testing.T) {
	var p Product
	assert.True(t, p.SameDayAllowed())
	assert.False(t, p.TracksStock())
	assert.Equal(t, 0, p.IncludedQuantity())

	p.AllowSameDayScheduling = BoolPtr(false)
	assert.False(t, p.SameDayAllowed())
}

func TestProductAddon_Units(t *testing.T) {
	assert.Equal(t, 1, (&ProductAddon{}).Units())
	assert.Equal(t, 3, (&ProductAddon{Quantity: IntPtr(3)}).Units())
	assert.Equal(t, 0, (&ProductAddon{Quantity: IntPtr(-1)}).Units())
	assert.True(t, (&ProductAddon{Price: decimal.NewFromInt(-4)}).UnitPrice().IsZero())
}

func TestTimeOfDay(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"09:30", 570, true},
		{"23:59:00", 1439, true},
		{" 00:00 ", 0, true},
		{"24:00", 0, false},
		{"9h", 0, false},
		{"", 0, false},
	}
	for _, tc := range tests {
		got, ok := ParseTimeOfDay(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
	assert.Equal(t, "07:05", FormatTimeOfDay(425))
	assert.Equal(t, "tuesday", DayName(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)))
}

func TestStore_CutoffAndHours(t *testing.T) {
	s := Store{
		SameDayCutoffTime:  "16:00",
		DeliveryCutoffTime: "12:00",
		WeeklySchedule:     WeeklyHours{"monday": {Open: "08:00", Close: "12:00"}},
		BusinessHours:      WeeklyHours{"tuesday": {Open: "09:00", Close: "18:00"}},
	}
	assert.Equal(t, "12:00", s.CutoffFor(DeliveryTypeDelivery))
	assert.Equal(t, "16:00", s.CutoffFor(DeliveryTypePickup))

	h, ok := s.Hours("tuesday")
	require.True(t, ok)
	assert.Equal(t, "09:00", h.Open)

	h, ok = s.Hours("monday")
	require.True(t, ok, "falls back to weekly schedule")
	assert.Equal(t, "08:00", h.Open)

	_, ok = s.Hours("sunday")
	assert.False(t, ok)
}

func TestSchedules_JSONB(t *testing.T) {
	in := ChannelSchedule{"friday": {Start: "10:00", End: "14:00", Enabled: true}}
	v, err := in.Value()
	require.NoError(t, err)

	var out ChannelSchedule
	require.NoError(t, out.Scan([]byte(v.(string))))
	assert.Equal(t, in, out)

	var dates SpecialDates
	require.NoError(t, dates.Scan(`[{"date":"2026-12-25","closed":true}]`))
	d, ok := dates.Find("2026-12-25")
	require.True(t, ok)
	assert.True(t, d.Closed)

	var empty WeeklyHours
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)
}

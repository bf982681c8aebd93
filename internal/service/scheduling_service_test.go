package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine/pedidos_api/internal/models"
	"github.com/vitrine/pedidos_api/internal/scheduling"
	"github.com/vitrine/pedidos_api/internal/utils"
)

func distinctDates(slots []scheduling.Option) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range slots {
		if !seen[s.Date] {
			seen[s.Date] = true
			out = append(out, s.Date)
		}
	}
	return out
}

func TestSchedulingService_CartlessSlotsAreCached(t *testing.T) {
	e := newEnv(t, "2026-03-10 10:00")
	ctx := context.Background()

	first, err := e.scheduling.Slots(ctx, "s1", models.DeliveryTypePickup, 3, nil)
	require.NoError(t, err)
	second, err := e.scheduling.Slots(ctx, "s1", models.DeliveryTypePickup, 3, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, e.slots.gets)
	assert.Equal(t, 1, e.slots.sets)
	assert.Equal(t, "11:00", first[0].Time)
}

func TestSchedulingService_CartSlotsBypassCache(t *testing.T) {
	e := newEnv(t, "2026-03-10 10:00")

	slots, err := e.scheduling.Slots(context.Background(), "s1", models.DeliveryTypeDelivery, 2,
		[]CartLine{{ProductID: "bolo", Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-10", "2026-03-11", "2026-03-12"}, distinctDates(slots))
	assert.Zero(t, e.slots.gets)
	assert.Zero(t, e.slots.sets)
}

func TestSchedulingService_DaysAreClamped(t *testing.T) {
	e := newEnv(t, "2026-03-10 10:00")

	slots, err := e.scheduling.Slots(context.Background(), "s1", models.DeliveryTypePickup, 60, nil)
	require.NoError(t, err)
	dates := distinctDates(slots)
	assert.Len(t, dates, scheduling.DefaultDaysAhead+1)
	assert.Equal(t, "2026-03-17", dates[len(dates)-1])
}

func TestSchedulingService_DefaultAndTodayOnly(t *testing.T) {
	e := newEnv(t, "2026-03-10 10:00")
	ctx := context.Background()

	all, err := e.scheduling.Slots(ctx, "s1", models.DeliveryTypePickup, -1, nil)
	require.NoError(t, err)
	assert.Len(t, distinctDates(all), scheduling.DefaultDaysAhead+1)

	today, err := e.scheduling.Slots(ctx, "s1", models.DeliveryTypePickup, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-10"}, distinctDates(today))
}

func TestSchedulingService_SlotErrors(t *testing.T) {
	e := newEnv(t, "2026-03-10 10:00")
	ctx := context.Background()

	_, err := e.scheduling.Slots(ctx, "s1", models.DeliveryType("drone"), 3, nil)
	assert.ErrorIs(t, err, utils.ErrInvalidDelivery)

	_, err = e.scheduling.Slots(ctx, "missing", models.DeliveryTypePickup, 3, nil)
	assert.ErrorIs(t, err, utils.ErrStoreNotFound)

	_, err = e.scheduling.Slots(ctx, "s1", models.DeliveryTypePickup, 3, []CartLine{{ProductID: "nope", Quantity: 1}})
	assert.ErrorIs(t, err, utils.ErrProductNotFound)
}

func TestSchedulingService_Check(t *testing.T) {
	e := newEnv(t, "2026-03-10 10:00")
	ctx := context.Background()

	d, err := e.scheduling.Check(ctx, "s1", ScheduleCheck{
		DeliveryType: models.DeliveryTypeDelivery, Date: "2026-03-10", Time: "12:00",
		Items: []CartLine{{ProductID: "bolo", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.True(t, d.CanSchedule)

	d, err = e.scheduling.Check(ctx, "s1", ScheduleCheck{
		DeliveryType: models.DeliveryTypePickup, Date: "2026-03-11", Time: "19:00",
	})
	require.NoError(t, err)
	assert.False(t, d.CanSchedule)
	assert.Equal(t, scheduling.ReasonOutsideHours, d.Reason)
}

func TestSchedulingService_InvalidateStore(t *testing.T) {
	e := newEnv(t, "2026-03-10 10:00")
	require.NoError(t, e.scheduling.InvalidateStore(context.Background(), "s1"))
	assert.Equal(t, []string{"s1"}, e.slots.invalidated)

	assert.ErrorIs(t, e.scheduling.InvalidateStore(context.Background(), "missing"), utils.ErrStoreNotFound)
}

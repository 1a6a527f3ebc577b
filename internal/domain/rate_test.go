package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/pkg/calendar"
	"github.com/m04kA/SMC-ParkingService/pkg/types"
)

func mustLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	return loc
}

func TestResolveRate_BaseRate(t *testing.T) {
	lot := &Lot{ID: 1, BaseDailyRate: 100}

	rate := ResolveRate(lot, calendar.DayKey("2025-06-10"))

	assert.Equal(t, 100.0, rate.Price)
	assert.False(t, rate.IsOverride)
	assert.Empty(t, rate.Label)
}

func TestResolveRate_SpecialRangeOverridesBase(t *testing.T) {
	lot := &Lot{
		ID:            1,
		BaseDailyRate: 100,
		SpecialRates: []SpecialRateRange{
			{ID: 1, StartDay: "2025-06-10", EndDay: "2025-06-12", Price: 250, Label: "праздники"},
		},
	}

	inRange := ResolveRate(lot, calendar.DayKey("2025-06-11"))
	assert.Equal(t, 250.0, inRange.Price)
	assert.True(t, inRange.IsOverride)
	assert.Equal(t, "праздники", inRange.Label)

	// Границы диапазона включительно
	assert.True(t, ResolveRate(lot, calendar.DayKey("2025-06-10")).IsOverride)
	assert.True(t, ResolveRate(lot, calendar.DayKey("2025-06-12")).IsOverride)

	// За пределами диапазона действует базовый тариф
	outside := ResolveRate(lot, calendar.DayKey("2025-06-13"))
	assert.Equal(t, 100.0, outside.Price)
	assert.False(t, outside.IsOverride)
}

func TestResolveRate_OverlappingRanges_PriorityWins(t *testing.T) {
	lot := &Lot{
		ID:            1,
		BaseDailyRate: 100,
		SpecialRates: []SpecialRateRange{
			{ID: 1, StartDay: "2025-06-01", EndDay: "2025-06-30", Price: 150, Label: "лето", Priority: 1},
			{ID: 2, StartDay: "2025-06-10", EndDay: "2025-06-12", Price: 300, Label: "фестиваль", Priority: 5},
		},
	}

	rate := ResolveRate(lot, calendar.DayKey("2025-06-11"))

	assert.Equal(t, 300.0, rate.Price)
	assert.Equal(t, "фестиваль", rate.Label)
}

func TestResolveRate_OverlappingRanges_EqualPriority_NewestWins(t *testing.T) {
	// Регрессионный тест на детерминированность: при равном приоритете
	// выигрывает диапазон с большим ID (созданный позже), независимо
	// от порядка в слайсе
	ranges := []SpecialRateRange{
		{ID: 7, StartDay: "2025-06-10", EndDay: "2025-06-12", Price: 180, Label: "старый"},
		{ID: 9, StartDay: "2025-06-11", EndDay: "2025-06-13", Price: 220, Label: "новый"},
	}

	lot := &Lot{ID: 1, BaseDailyRate: 100, SpecialRates: ranges}
	rate := ResolveRate(lot, calendar.DayKey("2025-06-11"))
	assert.Equal(t, 220.0, rate.Price)
	assert.Equal(t, "новый", rate.Label)

	// Обратный порядок в слайсе - тот же результат
	reversed := &Lot{ID: 1, BaseDailyRate: 100, SpecialRates: []SpecialRateRange{ranges[1], ranges[0]}}
	rateReversed := ResolveRate(reversed, calendar.DayKey("2025-06-11"))
	assert.Equal(t, rate, rateReversed)
}

func TestFirstDayChargeable_CutoffDisabled(t *testing.T) {
	loc := mustLocation(t)
	checkIn := time.Date(2025, 6, 10, 23, 30, 0, 0, loc)

	assert.True(t, FirstDayChargeable(checkIn, CutoffPolicy{Enabled: false, Hour: "18:00"}, loc))
}

func TestFirstDayChargeable_BeforeCutoff(t *testing.T) {
	loc := mustLocation(t)
	checkIn := time.Date(2025, 6, 10, 17, 59, 0, 0, loc)

	assert.True(t, FirstDayChargeable(checkIn, CutoffPolicy{Enabled: true, Hour: "18:00"}, loc))
}

func TestFirstDayChargeable_AtCutoff_NotCharged(t *testing.T) {
	loc := mustLocation(t)
	// Заезд ровно в час отсечки - первый день бесплатный
	checkIn := time.Date(2025, 6, 10, 18, 0, 0, 0, loc)

	assert.False(t, FirstDayChargeable(checkIn, CutoffPolicy{Enabled: true, Hour: "18:00"}, loc))
}

func TestFirstDayChargeable_UsesBusinessTimezone(t *testing.T) {
	loc := mustLocation(t)
	// 11:00 UTC = 19:00 в бизнес-таймзоне (UTC+8): позже отсечки
	checkIn := time.Date(2025, 6, 10, 11, 0, 0, 0, time.UTC)

	policy := CutoffPolicy{Enabled: true, Hour: types.TimeString("18:00")}
	assert.False(t, FirstDayChargeable(checkIn, policy, loc))
}

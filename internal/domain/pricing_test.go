package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-ParkingService/pkg/calendar"
)

func TestPriceStay_TwoNightsBaseRate(t *testing.T) {
	// Приёмочный сценарий: базовый тариф 100, 2 ночи, 1 машина,
	// без услуг и скидок - итог 200
	loc := mustLocation(t)
	lot := &Lot{ID: 1, BaseDailyRate: 100, TotalSpaces: 5}

	quote := PriceStay(lot, day(t, 10, 14), day(t, 12, 10), 1, nil, CutoffPolicy{}, loc)

	assert.Equal(t, 2, quote.DurationDays)
	assert.Equal(t, 200.0, quote.Subtotal)
	assert.Len(t, quote.DailyBreakdown, 2)
}

func TestPriceStay_CheckOutDayNeverCharged(t *testing.T) {
	// Проживание в N ночей даёт ровно N тарифицируемых дней,
	// день выезда отдельно не тарифицируется
	loc := mustLocation(t)
	lot := &Lot{ID: 1, BaseDailyRate: 50}

	quote := PriceStay(lot, day(t, 1, 12), day(t, 6, 9), 1, nil, CutoffPolicy{}, loc)

	assert.Equal(t, 5, quote.DurationDays)
	assert.Len(t, quote.DailyBreakdown, 5)
	assert.Equal(t, calendar.DayKey("2025-06-05"), quote.DailyBreakdown[4].Day)
}

func TestPriceStay_VehicleCountMultiplier(t *testing.T) {
	loc := mustLocation(t)
	lot := &Lot{ID: 1, BaseDailyRate: 100}

	quote := PriceStay(lot, day(t, 10, 14), day(t, 12, 10), 3, nil, CutoffPolicy{}, loc)

	assert.Equal(t, 600.0, quote.Subtotal)
	assert.Equal(t, 300.0, quote.DailyBreakdown[0].Price)
	assert.Equal(t, 100.0, quote.DailyBreakdown[0].RatePrice)
}

func TestPriceStay_SpecialRateInBreakdown(t *testing.T) {
	loc := mustLocation(t)
	lot := &Lot{
		ID:            1,
		BaseDailyRate: 100,
		SpecialRates: []SpecialRateRange{
			{ID: 1, StartDay: "2025-06-11", EndDay: "2025-06-11", Price: 180, Label: "выходной"},
		},
	}

	quote := PriceStay(lot, day(t, 10, 14), day(t, 12, 10), 1, nil, CutoffPolicy{}, loc)

	assert.Equal(t, 280.0, quote.Subtotal)
	assert.False(t, quote.DailyBreakdown[0].IsOverride)
	assert.True(t, quote.DailyBreakdown[1].IsOverride)
	assert.Equal(t, "выходной", quote.DailyBreakdown[1].Label)
}

func TestPriceStay_FirstDayCutoff(t *testing.T) {
	loc := mustLocation(t)
	lot := &Lot{ID: 1, BaseDailyRate: 100}
	policy := CutoffPolicy{Enabled: true, Hour: "18:00"}

	// Заезд в 19:00 - первый день бесплатный, тарифицируется только вторая ночь
	quote := PriceStay(lot, day(t, 10, 19), day(t, 12, 10), 1, nil, policy, loc)

	assert.Equal(t, 2, quote.DurationDays)
	assert.Equal(t, 100.0, quote.Subtotal)
	assert.False(t, quote.DailyBreakdown[0].Chargeable)
	assert.Equal(t, 0.0, quote.DailyBreakdown[0].Price)
	assert.True(t, quote.DailyBreakdown[1].Chargeable)
}

func TestPriceStay_CutoffAppliesOnlyToFirstDay(t *testing.T) {
	loc := mustLocation(t)
	lot := &Lot{ID: 1, BaseDailyRate: 100}
	policy := CutoffPolicy{Enabled: true, Hour: "18:00"}

	// Заезд до отсечки - все дни тарифицируются
	quote := PriceStay(lot, day(t, 10, 12), day(t, 13, 10), 1, nil, policy, loc)

	assert.Equal(t, 300.0, quote.Subtotal)
	for _, charge := range quote.DailyBreakdown {
		assert.True(t, charge.Chargeable)
	}
}

func TestPriceStay_AddonsChargedPerVehicleNotPerDay(t *testing.T) {
	loc := mustLocation(t)
	lot := &Lot{ID: 1, BaseDailyRate: 100}

	addons := []*AddOnService{
		{ID: 1, Name: "мойка", Price: 30, IsActive: true},
		{ID: 2, Name: "зарядка", Price: 20, IsActive: true},
		{ID: 3, Name: "закрытая", Price: 500, IsActive: false}, // неактивная не считается
	}

	// 3 ночи, 2 машины: база 600, услуги (30+20)*2 = 100 независимо от дней
	quote := PriceStay(lot, day(t, 10, 10), day(t, 13, 10), 2, addons, CutoffPolicy{}, loc)

	assert.Equal(t, 600.0, quote.BasePriceTotal)
	assert.Equal(t, 100.0, quote.AddonTotal)
	assert.Equal(t, 700.0, quote.Subtotal)
}

func TestPriceStay_Deterministic(t *testing.T) {
	// Повторный расчёт на тех же входных данных даёт идентичный результат,
	// включая суточную детализацию
	loc := mustLocation(t)
	lot := &Lot{
		ID:            1,
		BaseDailyRate: 99.99,
		SpecialRates: []SpecialRateRange{
			{ID: 1, StartDay: "2025-06-11", EndDay: "2025-06-12", Price: 123.45, Label: "акция"},
		},
	}
	addons := []*AddOnService{{ID: 1, Price: 15.5, IsActive: true}}
	policy := CutoffPolicy{Enabled: true, Hour: "18:00"}

	first := PriceStay(lot, day(t, 10, 19), day(t, 14, 9), 3, addons, policy, loc)
	second := PriceStay(lot, day(t, 10, 19), day(t, 14, 9), 3, addons, policy, loc)

	assert.Equal(t, first, second)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.57, Round2(10.566))
	assert.Equal(t, 10.56, Round2(10.564))
	assert.Equal(t, 0.1, Round2(0.1))
	assert.Equal(t, 33.33, Round2(100.0/3))
}

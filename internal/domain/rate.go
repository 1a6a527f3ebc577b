package domain

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/pkg/calendar"
	"github.com/m04kA/SMC-ParkingService/pkg/types"
)

// ResolvedRate цена одного календарного дня для парковки
type ResolvedRate struct {
	Price      float64
	IsOverride bool   // true, если сработал специальный тариф
	Label      string // Название специального тарифа (пусто для базового)
}

// CutoffPolicy правило отсечки первого дня.
// Если правило включено и локальное время заезда >= Hour, первый календарный
// день проживания не тарифицируется (бесплатный неполный день).
type CutoffPolicy struct {
	Enabled bool
	Hour    types.TimeString
}

// ResolveRate возвращает цену указанного календарного дня для парковки.
// Специальный тариф перекрывает базовый. При пересечении нескольких
// специальных диапазонов выбор детерминированный: больший Priority,
// при равенстве — больший ID (созданный позже выигрывает).
func ResolveRate(lot *Lot, day calendar.DayKey) ResolvedRate {
	var winner *SpecialRateRange

	for i := range lot.SpecialRates {
		r := &lot.SpecialRates[i]
		if !r.Covers(day) {
			continue
		}
		if winner == nil || betterRate(r, winner) {
			winner = r
		}
	}

	if winner == nil {
		return ResolvedRate{Price: lot.BaseDailyRate}
	}

	return ResolvedRate{
		Price:      winner.Price,
		IsOverride: true,
		Label:      winner.Label,
	}
}

// betterRate возвращает true, если candidate выигрывает у current
func betterRate(candidate, current *SpecialRateRange) bool {
	if candidate.Priority != current.Priority {
		return candidate.Priority > current.Priority
	}
	return candidate.ID > current.ID
}

// FirstDayChargeable решает, тарифицируется ли первый календарный день.
// Правило действует только для первого дня проживания: все последующие
// дни тарифицируются всегда.
func FirstDayChargeable(checkIn time.Time, policy CutoffPolicy, loc *time.Location) bool {
	if !policy.Enabled || policy.Hour.IsZero() {
		return true
	}
	localTime := types.NewTimeString(checkIn.In(loc))
	// Заезд ровно в час отсечки или позже - день бесплатный
	return localTime.IsBefore(policy.Hour)
}

package domain

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/pkg/calendar"
)

// Lot represents a parking lot with its capacity and rate schedule
type Lot struct {
	ID            int64
	Name          string
	IsActive      bool
	TotalSpaces   int     // Общее количество машиномест (>= 1)
	BaseDailyRate float64 // Базовый тариф за календарный день (>= 0)

	// SpecialRates диапазоны специальных тарифов, перекрывающие базовый
	SpecialRates []SpecialRateRange

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SpecialRateRange специальный тариф парковки на диапазон календарных дней
// StartDay и EndDay включительно
type SpecialRateRange struct {
	ID       int64
	LotID    int64
	StartDay calendar.DayKey
	EndDay   calendar.DayKey
	Price    float64 // >= 0
	Label    string
	Priority int // При пересечении диапазонов выигрывает больший приоритет
}

// Covers возвращает true, если диапазон покрывает указанный день
func (r *SpecialRateRange) Covers(day calendar.DayKey) bool {
	return !day.Before(r.StartDay) && !day.After(r.EndDay)
}

// CanAccommodate возвращает true, если парковка способна вместить
// requested машин при пиковой занятости occupied
func (l *Lot) CanAccommodate(occupied, requested int) bool {
	return l.TotalSpaces-occupied >= requested
}

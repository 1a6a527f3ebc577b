package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-ParkingService/pkg/calendar"
)

// day возвращает момент d-го июня 2025 в час h бизнес-таймзоны
func day(t *testing.T, d, h int) time.Time {
	t.Helper()
	return time.Date(2025, 6, d, h, 0, 0, 0, mustLocation(t))
}

func activeReservation(checkIn, checkOut time.Time, vehicles int) *Reservation {
	return &Reservation{
		Status:       StatusConfirmed,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		VehicleCount: vehicles,
	}
}

func TestOverlaps_HalfOpenIntervals(t *testing.T) {
	a1, a2 := day(t, 10, 12), day(t, 12, 12)

	// Реальное пересечение
	assert.True(t, Overlaps(a1, a2, day(t, 11, 0), day(t, 13, 0)))
	// Граничный случай: конец одного ровно в начале другого - НЕ пересечение
	assert.False(t, Overlaps(a1, a2, day(t, 12, 12), day(t, 14, 0)))
	assert.False(t, Overlaps(day(t, 12, 12), day(t, 14, 0), a1, a2))
}

func TestCheckAvailability_WorstDayBindsNotAggregate(t *testing.T) {
	loc := mustLocation(t)
	lot := &Lot{ID: 1, TotalSpaces: 2}

	// Три бронирования по одной машине, попарно пересекающиеся на разных
	// днях, но никогда все в один день. Наивная сумма по диапазону дала бы
	// 3 > 2 и ложный отказ; по худшему дню занятость максимум 2.
	reservations := []*Reservation{
		activeReservation(day(t, 10, 10), day(t, 11, 10), 1), // дни 10-11
		activeReservation(day(t, 11, 12), day(t, 12, 10), 1), // дни 11-12
		activeReservation(day(t, 12, 12), day(t, 13, 10), 1), // дни 12-13
	}

	// Запрос без машин - справка о доступности на весь период
	result := CheckAvailability(lot, reservations, day(t, 10, 0), day(t, 14, 0), 0, loc)

	assert.Equal(t, 2, result.PeakOccupancy)
	assert.Equal(t, 0, result.AvailableSpaces)
}

func TestCheckAvailability_ConcreteScenario(t *testing.T) {
	// Сценарий из приёмочных требований: вместимость 5, бронь A на 2 машины
	// дни 1-3 (2 ночи). Запрос B на 4 машины дни 2-4 должен быть отклонён
	// (день 2: 2+4=6 > 5); запрос B на 3 машины должен пройти (ровно 5).
	loc := mustLocation(t)
	lot := &Lot{ID: 1, TotalSpaces: 5, BaseDailyRate: 100}

	reservationA := activeReservation(day(t, 1, 10), day(t, 3, 10), 2)

	rejected := CheckAvailability(lot, []*Reservation{reservationA}, day(t, 2, 10), day(t, 4, 10), 4, loc)
	assert.False(t, rejected.Fits)

	accepted := CheckAvailability(lot, []*Reservation{reservationA}, day(t, 2, 10), day(t, 4, 10), 3, loc)
	assert.True(t, accepted.Fits)
	assert.Equal(t, 3, accepted.AvailableSpaces)
}

func TestCheckAvailability_IgnoresNonOccupyingStatuses(t *testing.T) {
	loc := mustLocation(t)
	lot := &Lot{ID: 1, TotalSpaces: 1}

	cancelled := activeReservation(day(t, 10, 0), day(t, 12, 0), 1)
	cancelled.Status = StatusCancelled
	checkedOut := activeReservation(day(t, 10, 0), day(t, 12, 0), 1)
	checkedOut.Status = StatusCheckedOut
	deleted := activeReservation(day(t, 10, 0), day(t, 12, 0), 1)
	deleted.IsDeleted = true

	result := CheckAvailability(lot, []*Reservation{cancelled, checkedOut, deleted},
		day(t, 10, 0), day(t, 12, 0), 1, loc)

	assert.True(t, result.Fits)
	assert.Equal(t, 0, result.PeakOccupancy)
	assert.Equal(t, 1, result.AvailableSpaces)
}

func TestCheckAvailability_DefaultVehicleCount(t *testing.T) {
	loc := mustLocation(t)
	lot := &Lot{ID: 1, TotalSpaces: 2}

	// VehicleCount не заполнен - считается как 1
	res := activeReservation(day(t, 10, 0), day(t, 11, 0), 0)

	result := CheckAvailability(lot, []*Reservation{res}, day(t, 10, 0), day(t, 11, 0), 1, loc)
	assert.Equal(t, 1, result.PeakOccupancy)
	assert.True(t, result.Fits)
}

func TestDailyOccupancy_MidnightBoundary(t *testing.T) {
	loc := mustLocation(t)

	// Выезд ровно в полночь: день выезда не занимается
	res := activeReservation(day(t, 10, 12), day(t, 12, 0), 1)

	occupancy := DailyOccupancy([]*Reservation{res}, day(t, 10, 0), day(t, 13, 0), loc)

	assert.Equal(t, 1, occupancy[calendar.DayKey("2025-06-10")])
	assert.Equal(t, 1, occupancy[calendar.DayKey("2025-06-11")])
	assert.Equal(t, 0, occupancy[calendar.DayKey("2025-06-12")])
}

func TestFindBlackoutConflicts(t *testing.T) {
	loc := mustLocation(t)

	blackouts := []*BlackoutDay{
		{ID: 1, Day: "2025-06-11", IsActive: true, LotIDs: []int64{1}},
		{ID: 2, Day: "2025-06-11", IsActive: false, LotIDs: []int64{1}},  // неактивный
		{ID: 3, Day: "2025-06-11", IsActive: true, LotIDs: []int64{99}},  // другая парковка
		{ID: 4, Day: "2025-06-20", IsActive: true, LotIDs: []int64{1}},   // вне диапазона
	}

	conflicts := FindBlackoutConflicts(blackouts, 1, day(t, 10, 14), day(t, 12, 10), loc)

	assert.Len(t, conflicts, 1)
	assert.Equal(t, int64(1), conflicts[0].ID)
}

func TestFindBlackoutConflicts_CheckOutDayInclusive(t *testing.T) {
	loc := mustLocation(t)

	// Запрет на день выезда - тоже конфликт (границы включительно)
	blackouts := []*BlackoutDay{
		{ID: 1, Day: "2025-06-12", IsActive: true, LotIDs: []int64{1}},
	}

	conflicts := FindBlackoutConflicts(blackouts, 1, day(t, 10, 14), day(t, 12, 10), loc)
	assert.Len(t, conflicts, 1)
}

func TestCanTransition_StateMachine(t *testing.T) {
	cases := []struct {
		from, to ReservationStatus
		force    bool
		want     bool
	}{
		{StatusPending, StatusConfirmed, false, true},
		{StatusPending, StatusCancelled, false, true},
		{StatusPending, StatusCheckedIn, false, false},
		{StatusConfirmed, StatusCheckedIn, false, true},
		{StatusConfirmed, StatusPending, false, true},
		{StatusConfirmed, StatusCancelled, false, true},
		{StatusCheckedIn, StatusCheckedOut, false, true},
		{StatusCheckedIn, StatusConfirmed, false, true},
		{StatusCheckedIn, StatusCancelled, false, false},
		{StatusCheckedOut, StatusConfirmed, false, false},
		{StatusCancelled, StatusPending, false, false},
		// Административный возврат из терминального статуса
		{StatusCheckedOut, StatusCheckedIn, true, true},
		{StatusCancelled, StatusConfirmed, true, true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to, tc.force),
			"%s -> %s (force=%v)", tc.from, tc.to, tc.force)
	}
}

package domain

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/pkg/calendar"
)

// AvailabilityResult результат проверки вместимости парковки
type AvailabilityResult struct {
	Fits            bool
	AvailableSpaces int             // Вместимость минус пиковая занятость
	PeakOccupancy   int             // Худший (самый занятый) день диапазона
	PeakDay         calendar.DayKey // День пиковой занятости
}

// Overlaps проверяет пересечение полуоткрытых интервалов [CheckIn, CheckOut)
// Граничные случаи (выезд одного ровно в момент заезда другого) пересечением не считаются
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// DailyOccupancy считает занятость (сумму VehicleCount) на каждый календарный
// день запрошенного диапазона. Учитываются только бронирования, занимающие
// машиноместа (OccupiesCapacity), чей интервал пересекает окно дня [00:00, 24:00)
// в бизнес-таймзоне.
func DailyOccupancy(
	reservations []*Reservation,
	checkIn, checkOut time.Time,
	loc *time.Location,
) map[calendar.DayKey]int {
	firstDay := calendar.FromTime(checkIn, loc)
	lastDay := calendar.FromTime(checkOut, loc)

	// Полуоткрытый интервал: если выезд ровно в полночь, день выезда
	// не входит в диапазон; иначе частично занятый день считается
	if checkOut.After(lastDay.StartOfDay(loc)) {
		lastDay = lastDay.Next()
	}

	occupancy := make(map[calendar.DayKey]int, calendar.DaysBetween(firstDay, lastDay))

	for day := firstDay; day.Before(lastDay); day = day.Next() {
		dayStart := day.StartOfDay(loc)
		dayEnd := day.EndOfDay(loc)

		total := 0
		for _, res := range reservations {
			if !res.OccupiesCapacity() {
				continue
			}
			if !Overlaps(res.CheckIn, res.CheckOut, dayStart, dayEnd) {
				continue
			}
			count := res.VehicleCount
			if count < 1 {
				count = DefaultVehicleCount
			}
			total += count
		}
		occupancy[day] = total
	}

	return occupancy
}

// CheckAvailability решает, вмещается ли запрос в парковку.
// Связывающее ограничение - худший отдельный день, а не сумма по диапазону:
// два бронирования, не сосуществующие в один календарный день, не должны
// вдвоём считаться против вместимости одного дня.
func CheckAvailability(
	lot *Lot,
	reservations []*Reservation,
	checkIn, checkOut time.Time,
	requestedVehicles int,
	loc *time.Location,
) AvailabilityResult {
	occupancy := DailyOccupancy(reservations, checkIn, checkOut, loc)

	peak := 0
	peakDay := calendar.FromTime(checkIn, loc)
	// Обходим дни по порядку, чтобы при равной занятости пиковым
	// детерминированно считался первый день
	for day := calendar.FromTime(checkIn, loc); ; day = day.Next() {
		occ, ok := occupancy[day]
		if !ok {
			break
		}
		if occ > peak {
			peak = occ
			peakDay = day
		}
	}

	available := lot.TotalSpaces - peak
	if available < 0 {
		available = 0
	}

	return AvailabilityResult{
		Fits:            lot.CanAccommodate(peak, requestedVehicles),
		AvailableSpaces: available,
		PeakOccupancy:   peak,
		PeakDay:         peakDay,
	}
}

// FilterOverlapping отбирает бронирования, чей интервал пересекает запрошенный.
// Кандидаты без пересечения не влияют ни на один день диапазона
func FilterOverlapping(reservations []*Reservation, checkIn, checkOut time.Time) []*Reservation {
	result := make([]*Reservation, 0, len(reservations))
	for _, res := range reservations {
		if Overlaps(res.CheckIn, res.CheckOut, checkIn, checkOut) {
			result = append(result, res)
		}
	}
	return result
}

// FindBlackoutConflicts возвращает активные запреты бронирования, попадающие
// в диапазон [checkInDay, checkOutDay] включительно для указанной парковки.
// Непустой результат - безусловный отказ: частичное бронирование не допускается
func FindBlackoutConflicts(
	blackouts []*BlackoutDay,
	lotID int64,
	checkIn, checkOut time.Time,
	loc *time.Location,
) []*BlackoutDay {
	firstDay := calendar.FromTime(checkIn, loc)
	lastDay := calendar.FromTime(checkOut, loc)

	conflicts := make([]*BlackoutDay, 0)
	for _, b := range blackouts {
		if !b.IsActive || !b.AffectsLot(lotID) {
			continue
		}
		if b.Day.Before(firstDay) || b.Day.After(lastDay) {
			continue
		}
		conflicts = append(conflicts, b)
	}
	return conflicts
}

package domain

import (
	"math"
	"time"

	"github.com/m04kA/SMC-ParkingService/pkg/calendar"
)

// Round2 округляет денежную сумму до двух знаков.
// Все промежуточные суммы скидок проходят через это округление,
// чтобы расчёт был воспроизводим на одинаковых входных данных.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DayCharge строка суточной детализации (чек для клиента)
type DayCharge struct {
	Day        calendar.DayKey
	Price      float64 // Цена за день на все автомобили (0 для бесплатного первого дня)
	RatePrice  float64 // Цена тарифа за один автомобиль
	IsOverride bool    // Сработал ли специальный тариф
	Label      string  // Название специального тарифа
	Chargeable bool    // false только для первого дня под отсечкой
}

// Quote результат расчёта стоимости проживания до скидок
type Quote struct {
	DurationDays   int // Количество тарифицируемых дней (= количеству ночей)
	BasePriceTotal float64
	AddonTotal     float64
	Subtotal       float64
	DailyBreakdown []DayCharge
}

// PriceStay считает стоимость проживания.
// Обходит календарные дни от дня заезда до дня перед выездом: проживание
// в N ночей даёт N тарифицируемых дней, день выезда отдельно не тарифицируется.
// Для первого дня применяется правило отсечки, каждая цена дня умножается
// на количество автомобилей. Дополнительные услуги взимаются один раз
// за каждый автомобиль.
func PriceStay(
	lot *Lot,
	checkIn, checkOut time.Time,
	vehicleCount int,
	addons []*AddOnService,
	policy CutoffPolicy,
	loc *time.Location,
) Quote {
	if vehicleCount < 1 {
		vehicleCount = DefaultVehicleCount
	}

	firstDay := calendar.FromTime(checkIn, loc)
	checkOutDay := calendar.FromTime(checkOut, loc)

	days := calendar.Range(firstDay, checkOutDay)
	breakdown := make([]DayCharge, 0, len(days))

	baseTotal := 0.0
	for i, day := range days {
		rate := ResolveRate(lot, day)

		charge := DayCharge{
			Day:        day,
			RatePrice:  rate.Price,
			IsOverride: rate.IsOverride,
			Label:      rate.Label,
			Chargeable: true,
		}

		if i == 0 && !FirstDayChargeable(checkIn, policy, loc) {
			charge.Chargeable = false
			charge.Price = 0
		} else {
			charge.Price = Round2(rate.Price * float64(vehicleCount))
		}

		baseTotal += charge.Price
		breakdown = append(breakdown, charge)
	}

	addonTotal := 0.0
	for _, addon := range addons {
		if !addon.IsActive {
			continue
		}
		addonTotal += Round2(addon.Price * float64(vehicleCount))
	}

	baseTotal = Round2(baseTotal)
	addonTotal = Round2(addonTotal)

	return Quote{
		DurationDays:   len(days),
		BasePriceTotal: baseTotal,
		AddonTotal:     addonTotal,
		Subtotal:       Round2(baseTotal + addonTotal),
		DailyBreakdown: breakdown,
	}
}

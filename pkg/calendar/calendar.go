// Package calendar нормализует произвольные моменты времени к календарным дням
// в фиксированной бизнес-таймзоне. Вся итерация по дням в движке идёт через
// этот пакет, а не через арифметику на time.Time напрямую: момент около
// полуночи по UTC может относиться к другому календарному дню локально.
package calendar

import (
	"fmt"
	"time"
)

// DayKey календарный день в бизнес-таймзоне в формате "YYYY-MM-DD"
// Строковое представление сравнимо лексикографически
type DayKey string

// DayKeyLayout формат календарного дня
const DayKeyLayout = "2006-01-02"

// FromTime приводит момент времени к календарному дню в таймзоне loc
func FromTime(t time.Time, loc *time.Location) DayKey {
	return DayKey(t.In(loc).Format(DayKeyLayout))
}

// ParseDayKey парсит строку "YYYY-MM-DD" в DayKey
func ParseDayKey(s string) (DayKey, error) {
	if _, err := time.Parse(DayKeyLayout, s); err != nil {
		return "", fmt.Errorf("calendar: invalid day key %q: %w", s, err)
	}
	return DayKey(s), nil
}

// Next возвращает следующий календарный день
func (d DayKey) Next() DayKey {
	t, _ := time.Parse(DayKeyLayout, string(d))
	return DayKey(t.AddDate(0, 0, 1).Format(DayKeyLayout))
}

// Before возвращает true, если d строго раньше other
func (d DayKey) Before(other DayKey) bool {
	return string(d) < string(other)
}

// After возвращает true, если d строго позже other
func (d DayKey) After(other DayKey) bool {
	return string(d) > string(other)
}

// String возвращает строковое представление дня
func (d DayKey) String() string {
	return string(d)
}

// StartOfDay возвращает момент начала дня (00:00) в таймзоне loc
func (d DayKey) StartOfDay(loc *time.Location) time.Time {
	t, _ := time.ParseInLocation(DayKeyLayout, string(d), loc)
	return t
}

// EndOfDay возвращает момент конца дня (00:00 следующего дня) в таймзоне loc
// Вместе со StartOfDay задаёт полуоткрытое окно дня [00:00, 24:00)
func (d DayKey) EndOfDay(loc *time.Location) time.Time {
	return d.Next().StartOfDay(loc)
}

// DaysBetween возвращает количество календарных дней от from до to (to не включается)
// DaysBetween(d, d) == 0, DaysBetween(d, d.Next()) == 1
func DaysBetween(from, to DayKey) int {
	if !from.Before(to) {
		return 0
	}
	start, _ := time.Parse(DayKeyLayout, string(from))
	end, _ := time.Parse(DayKeyLayout, string(to))
	return int(end.Sub(start).Hours() / 24)
}

// Range возвращает все календарные дни от from до to (to не включается)
// Стандартный способ обхода дней проживания: N ночей == N дней
func Range(from, to DayKey) []DayKey {
	days := make([]DayKey, 0, DaysBetween(from, to))
	for d := from; d.Before(to); d = d.Next() {
		days = append(days, d)
	}
	return days
}

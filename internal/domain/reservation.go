package domain

import (
	"time"
)

// ReservationStatus represents the status of a reservation
type ReservationStatus string

const (
	StatusPending    ReservationStatus = "pending"
	StatusConfirmed  ReservationStatus = "confirmed"
	StatusCheckedIn  ReservationStatus = "checked_in"
	StatusCheckedOut ReservationStatus = "checked_out"
	StatusCancelled  ReservationStatus = "cancelled"
)

// Reservation represents a parking reservation in the system
type Reservation struct {
	ID     int64
	UserID int64
	LotID  int64

	// CheckIn/CheckOut моменты времени (не календарные дни).
	// Интервал полуоткрытый: [CheckIn, CheckOut).
	// Занятость агрегируется по календарным дням в бизнес-таймзоне.
	CheckIn  time.Time
	CheckOut time.Time

	VehicleCount int // >= 1
	Status       ReservationStatus
	IsDeleted    bool

	// Денормализованные данные автомобиля для истории
	VehiclePlate *string
	VehicleModel *string
	Notes        *string

	// Денежные поля, зафиксированные на момент создания
	Subtotal           float64
	AutoDiscountAmount float64
	CodeDiscountAmount float64
	VIPDiscountAmount  float64
	DiscountTotal      float64
	FinalAmount        float64

	// Применённые скидки (для аудита)
	AppliedRuleID *int64
	AppliedCode   *string

	// Breakdown суточная детализация (чек), зафиксированная при создании.
	// Должна воспроизводиться детерминированно из тех же входных данных
	Breakdown []DayCharge

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OccupiesCapacity returns true if the reservation counts toward lot occupancy.
// Единственный предикат занятости: мягкое удаление на границе репозитория
// всегда переводит статус в cancelled, поэтому достаточно проверки статуса.
func (r *Reservation) OccupiesCapacity() bool {
	switch r.Status {
	case StatusPending, StatusConfirmed, StatusCheckedIn:
		return !r.IsDeleted
	default:
		return false
	}
}

// CanBeCancelled returns true if the reservation can be cancelled
func (r *Reservation) CanBeCancelled() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}

// IsTerminal returns true for terminal statuses of the normal flow
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusCheckedOut || s == StatusCancelled
}

// IsValid returns true for known statuses
func (s ReservationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		return true
	}
	return false
}

// allowedTransitions допустимые переходы статусов в нормальном потоке
var allowedTransitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCheckedIn, StatusCancelled, StatusPending},
	StatusCheckedIn: {StatusCheckedOut, StatusConfirmed},
}

// CanTransition returns true if the status transition is allowed in the normal flow.
// Терминальные статусы (checked_out, cancelled) обратимы только с force=true
// (административный возврат).
func CanTransition(from, to ReservationStatus, force bool) bool {
	if !to.IsValid() {
		return false
	}
	if from == to {
		return false
	}
	if force {
		return true
	}
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// LotReservationsFilter фильтр для получения бронирований парковки
type LotReservationsFilter struct {
	LotID           int64              // Обязательный параметр
	StartDate       *time.Time         // Начало периода (опционально)
	EndDate         *time.Time         // Конец периода (опционально)
	Status          *ReservationStatus // Фильтр по статусу (опционально)
	IncludeInactive bool               // Включать ли отменённые и удалённые
}

package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/calendar"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid reservation status")
)

// Request модели

// CancelReservationRequest запрос на отмену бронирования
type CancelReservationRequest struct {
	UserID             int64  `json:"-"`
	IsAdmin            bool   `json:"-"`
	CancellationReason string `json:"cancellation_reason"`
}

// UpdateStatusRequest запрос на обновление статуса бронирования
type UpdateStatusRequest struct {
	UserID int64  `json:"-"`
	Status string `json:"status"`
	// Force разрешает административный возврат из терминального статуса
	Force bool `json:"force,omitempty"`
}

// GetUserReservationsRequest запрос на получение бронирований пользователя
type GetUserReservationsRequest struct {
	UserID int64   `json:"user_id"`
	Status *string `json:"status,omitempty"`
}

// GetLotReservationsRequest запрос на получение бронирований парковки
type GetLotReservationsRequest struct {
	LotID           int64      `json:"lot_id"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Status          *string    `json:"status,omitempty"`
	IncludeInactive bool       `json:"include_inactive,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetLotReservationsRequest) ToDomainFilter() (domain.LotReservationsFilter, error) {
	filter := domain.LotReservationsFilter{
		LotID:           r.LotID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainReservationStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// DayChargeItem строка суточной детализации стоимости
type DayChargeItem struct {
	Day        calendar.DayKey `json:"day"`
	Price      float64         `json:"price"`
	RatePrice  float64         `json:"rate_price"`
	IsOverride bool            `json:"is_override"`
	Label      string          `json:"label,omitempty"`
	Chargeable bool            `json:"chargeable"`
}

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	LotID        int64     `json:"lot_id"`
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
	VehicleCount int       `json:"vehicle_count"`
	Status       string    `json:"status"`

	VehiclePlate *string `json:"vehicle_plate,omitempty"`
	VehicleModel *string `json:"vehicle_model,omitempty"`
	Notes        *string `json:"notes,omitempty"`

	Subtotal           float64 `json:"subtotal"`
	AutoDiscountAmount float64 `json:"auto_discount_amount"`
	CodeDiscountAmount float64 `json:"code_discount_amount"`
	VIPDiscountAmount  float64 `json:"vip_discount_amount"`
	DiscountTotal      float64 `json:"discount_total"`
	FinalAmount        float64 `json:"final_amount"`

	AppliedRuleID *int64  `json:"applied_rule_id,omitempty"`
	AppliedCode   *string `json:"applied_code,omitempty"`

	DailyBreakdown []DayChargeItem `json:"daily_breakdown,omitempty"`

	CancellationReason *string `json:"cancellation_reason,omitempty"`
	CancelledAt        *string `json:"cancelled_at,omitempty"` // ISO 8601

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReservationListResponse ответ со списком бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// Методы конвертации

// ToDomainReservationStatus конвертирует строку в domain статус
func ToDomainReservationStatus(s string) (domain.ReservationStatus, error) {
	status := domain.ReservationStatus(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	resp := &ReservationResponse{
		ID:                 r.ID,
		UserID:             r.UserID,
		LotID:              r.LotID,
		CheckIn:            r.CheckIn,
		CheckOut:           r.CheckOut,
		VehicleCount:       r.VehicleCount,
		Status:             string(r.Status),
		VehiclePlate:       r.VehiclePlate,
		VehicleModel:       r.VehicleModel,
		Notes:              r.Notes,
		Subtotal:           r.Subtotal,
		AutoDiscountAmount: r.AutoDiscountAmount,
		CodeDiscountAmount: r.CodeDiscountAmount,
		VIPDiscountAmount:  r.VIPDiscountAmount,
		DiscountTotal:      r.DiscountTotal,
		FinalAmount:        r.FinalAmount,
		AppliedRuleID:      r.AppliedRuleID,
		AppliedCode:        r.AppliedCode,
		CancellationReason: r.CancellationReason,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}

	for _, charge := range r.Breakdown {
		resp.DailyBreakdown = append(resp.DailyBreakdown, DayChargeItem{
			Day:        charge.Day,
			Price:      charge.Price,
			RatePrice:  charge.RatePrice,
			IsOverride: charge.IsOverride,
			Label:      charge.Label,
			Chargeable: charge.Chargeable,
		})
	}

	if r.CancelledAt != nil {
		cancelledStr := r.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(reservations)),
	}
	for _, r := range reservations {
		resp.Reservations = append(resp.Reservations, *FromDomainReservation(r))
	}
	return resp
}

package create_reservation

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/calendar"
)

// LoyaltyFallback - VIP атрибуты от вызывающей стороны.
// Используются только при недоступности UserService
type LoyaltyFallback struct {
	IsVIP              bool     `json:"is_vip"`
	VIPDiscountPercent *float64 `json:"vip_discount_percent,omitempty"`
	IsNewUser          bool     `json:"is_new_user"`
}

// Request - запрос на создание бронирования
type Request struct {
	UserID       int64     `json:"-"`
	LotID        int64     `json:"lot_id"`
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
	VehicleCount int       `json:"vehicle_count"`
	AddonIDs     []int64   `json:"addon_ids,omitempty"`
	DiscountCode *string   `json:"discount_code,omitempty"`

	VehiclePlate *string `json:"vehicle_plate,omitempty"`
	VehicleModel *string `json:"vehicle_model,omitempty"`
	Notes        *string `json:"notes,omitempty"`

	LoyaltyFallback *LoyaltyFallback `json:"loyalty_fallback,omitempty"`
}

// DayChargeItem - строка суточной детализации стоимости
type DayChargeItem struct {
	Day        calendar.DayKey `json:"day"`
	Price      float64         `json:"price"`
	RatePrice  float64         `json:"rate_price"`
	IsOverride bool            `json:"is_override"`
	Label      string          `json:"label,omitempty"`
	Chargeable bool            `json:"chargeable"`
}

// Response - созданное бронирование с зафиксированной стоимостью
type Response struct {
	ID           int64                    `json:"id"`
	UserID       int64                    `json:"user_id"`
	LotID        int64                    `json:"lot_id"`
	CheckIn      time.Time                `json:"check_in"`
	CheckOut     time.Time                `json:"check_out"`
	VehicleCount int                      `json:"vehicle_count"`
	Status       domain.ReservationStatus `json:"status"`

	Subtotal           float64 `json:"subtotal"`
	AutoDiscountAmount float64 `json:"auto_discount_amount"`
	CodeDiscountAmount float64 `json:"code_discount_amount"`
	VIPDiscountAmount  float64 `json:"vip_discount_amount"`
	DiscountTotal      float64 `json:"discount_total"`
	FinalAmount        float64 `json:"final_amount"`

	AppliedRuleID *int64  `json:"applied_rule_id,omitempty"`
	AppliedCode   *string `json:"applied_code,omitempty"`

	DailyBreakdown []DayChargeItem `json:"daily_breakdown"`

	CreatedAt time.Time `json:"created_at"`
}

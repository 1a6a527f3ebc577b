package calculate_price

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/pkg/calendar"
)

// LoyaltyFallback - VIP атрибуты от вызывающей стороны.
// Используются только при недоступности UserService
type LoyaltyFallback struct {
	IsVIP              bool     `json:"is_vip"`
	VIPDiscountPercent *float64 `json:"vip_discount_percent,omitempty"`
	IsNewUser          bool     `json:"is_new_user"`
}

// Request - запрос на расчёт стоимости бронирования
type Request struct {
	LotID        int64     `json:"lot_id"`
	UserID       int64     `json:"user_id"`
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
	VehicleCount int       `json:"vehicle_count"`
	AddonIDs     []int64   `json:"addon_ids,omitempty"`
	DiscountCode *string   `json:"discount_code,omitempty"`

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

// Response - результат расчёта стоимости
type Response struct {
	DurationDays   int             `json:"duration_days"`
	BasePriceTotal float64         `json:"base_price_total"`
	AddonTotal     float64         `json:"addon_total"`
	Subtotal       float64         `json:"subtotal"`
	DailyBreakdown []DayChargeItem `json:"daily_breakdown"`

	AutoDiscountAmount float64 `json:"auto_discount_amount"`
	CodeDiscountAmount float64 `json:"code_discount_amount"`
	VIPDiscountAmount  float64 `json:"vip_discount_amount"`
	DiscountTotal      float64 `json:"discount_total"`
	FinalAmount        float64 `json:"final_amount"`

	AppliedRuleID   *int64  `json:"applied_rule_id,omitempty"`
	AppliedRuleName *string `json:"applied_rule_name,omitempty"`
	AppliedCode     *string `json:"applied_code,omitempty"`
}

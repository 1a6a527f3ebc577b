package calculate_price

import (
	"time"

	calculatePrice "github.com/m04kA/SMC-ParkingService/internal/usecase/calculate_price"
)

// QuoteRequest HTTP запрос на расчёт стоимости
type QuoteRequest struct {
	LotID        int64     `json:"lot_id"`
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
	VehicleCount int       `json:"vehicle_count"`
	AddonIDs     []int64   `json:"addon_ids,omitempty"`
	DiscountCode *string   `json:"discount_code,omitempty"`

	LoyaltyFallback *LoyaltyFallback `json:"loyalty_fallback,omitempty"`
}

// LoyaltyFallback VIP атрибуты от клиента на случай недоступности UserService
type LoyaltyFallback struct {
	IsVIP              bool     `json:"is_vip"`
	VIPDiscountPercent *float64 `json:"vip_discount_percent,omitempty"`
	IsNewUser          bool     `json:"is_new_user"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// userID равен нулю для анонимного расчёта
func (r *QuoteRequest) ToUseCaseRequest(userID int64) calculatePrice.Request {
	req := calculatePrice.Request{
		LotID:        r.LotID,
		UserID:       userID,
		CheckIn:      r.CheckIn,
		CheckOut:     r.CheckOut,
		VehicleCount: r.VehicleCount,
		AddonIDs:     r.AddonIDs,
		DiscountCode: r.DiscountCode,
	}

	if r.LoyaltyFallback != nil {
		req.LoyaltyFallback = &calculatePrice.LoyaltyFallback{
			IsVIP:              r.LoyaltyFallback.IsVIP,
			VIPDiscountPercent: r.LoyaltyFallback.VIPDiscountPercent,
			IsNewUser:          r.LoyaltyFallback.IsNewUser,
		}
	}

	return req
}

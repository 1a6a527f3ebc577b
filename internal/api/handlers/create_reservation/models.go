package create_reservation

import (
	"time"

	createReservation "github.com/m04kA/SMC-ParkingService/internal/usecase/create_reservation"
)

// CreateReservationRequest HTTP запрос на создание бронирования
type CreateReservationRequest struct {
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

// LoyaltyFallback VIP атрибуты от клиента на случай недоступности UserService
type LoyaltyFallback struct {
	IsVIP              bool     `json:"is_vip"`
	VIPDiscountPercent *float64 `json:"vip_discount_percent,omitempty"`
	IsNewUser          bool     `json:"is_new_user"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(userID int64) createReservation.Request {
	req := createReservation.Request{
		UserID:       userID,
		LotID:        r.LotID,
		CheckIn:      r.CheckIn,
		CheckOut:     r.CheckOut,
		VehicleCount: r.VehicleCount,
		AddonIDs:     r.AddonIDs,
		DiscountCode: r.DiscountCode,
		VehiclePlate: r.VehiclePlate,
		VehicleModel: r.VehicleModel,
		Notes:        r.Notes,
	}

	if r.LoyaltyFallback != nil {
		req.LoyaltyFallback = &createReservation.LoyaltyFallback{
			IsVIP:              r.LoyaltyFallback.IsVIP,
			VIPDiscountPercent: r.LoyaltyFallback.VIPDiscountPercent,
			IsNewUser:          r.LoyaltyFallback.IsNewUser,
		}
	}

	return req
}

package create_reservation

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// validateRequest проверяет корректность запроса на создание бронирования
func validateRequest(req Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: user_id must be positive", ErrInvalidInput)
	}

	if req.LotID <= 0 {
		return fmt.Errorf("%w: lot_id must be positive", ErrInvalidInput)
	}

	if req.CheckIn.IsZero() || req.CheckOut.IsZero() {
		return fmt.Errorf("%w: check_in and check_out are required", ErrInvalidInput)
	}

	if !req.CheckIn.Before(req.CheckOut) {
		return fmt.Errorf("%w: check_in must be before check_out", ErrInvalidInput)
	}

	if req.VehicleCount < domain.MinVehicleCount || req.VehicleCount > domain.MaxVehicleCount {
		return fmt.Errorf("%w: vehicle_count must be between %d and %d",
			ErrInvalidInput, domain.MinVehicleCount, domain.MaxVehicleCount)
	}

	if req.CheckOut.Sub(req.CheckIn).Hours() > float64(domain.MaxStayDays*24) {
		return fmt.Errorf("%w: stay duration exceeds %d days", ErrInvalidInput, domain.MaxStayDays)
	}

	for _, id := range req.AddonIDs {
		if id <= 0 {
			return fmt.Errorf("%w: addon_ids must be positive", ErrInvalidInput)
		}
	}

	if req.DiscountCode != nil && strings.TrimSpace(*req.DiscountCode) == "" {
		return fmt.Errorf("%w: discount_code must not be blank", ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	if req.LoyaltyFallback != nil && req.LoyaltyFallback.VIPDiscountPercent != nil {
		pct := *req.LoyaltyFallback.VIPDiscountPercent
		if pct < 0 || pct > 100 {
			return fmt.Errorf("%w: vip_discount_percent must be between 0 and 100", ErrInvalidInput)
		}
	}

	return nil
}

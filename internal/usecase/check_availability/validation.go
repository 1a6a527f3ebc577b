package check_availability

import (
	"fmt"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// validateRequest проверяет корректность запроса на проверку доступности
func validateRequest(req Request) error {
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

	return nil
}

package check_availability

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/pkg/calendar"
)

// Request - запрос на проверку доступности парковки
type Request struct {
	LotID        int64     `json:"lot_id"`
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
	VehicleCount int       `json:"vehicle_count"`
}

// BlackoutConflict - день блокировки, пересекающийся с запрошенным интервалом
type BlackoutConflict struct {
	Day    calendar.DayKey `json:"day"`
	Reason string          `json:"reason"`
}

// Response - результат проверки доступности
type Response struct {
	Fits              bool               `json:"fits"`
	TotalSpaces       int                `json:"total_spaces"`
	AvailableSpaces   int                `json:"available_spaces"`
	PeakOccupancy     int                `json:"peak_occupancy"`
	PeakDay           *calendar.DayKey   `json:"peak_day,omitempty"`
	BlackoutConflicts []BlackoutConflict `json:"blackout_conflicts,omitempty"`
}

package check_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/calendar"
)

// LotsStorage - интерфейс для работы с хранилищем парковок
type LotsStorage interface {
	GetByID(ctx context.Context, id int64) (*domain.Lot, error)
}

// ReservationsStorage - интерфейс для работы с хранилищем броней
type ReservationsStorage interface {
	GetOverlappingForLot(ctx context.Context, lotID int64, checkIn, checkOut time.Time) ([]*domain.Reservation, error)
}

// BlackoutsStorage - интерфейс для работы с хранилищем дней блокировки
type BlackoutsStorage interface {
	GetActiveForLotInRange(ctx context.Context, lotID int64, fromDay, toDay calendar.DayKey) ([]*domain.BlackoutDay, error)
}

// Logger - интерфейс для логирования
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

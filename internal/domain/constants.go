package domain

// Default business values
const (
	DefaultVehicleCount = 1

	// DefaultVIPDiscountPercent применяется, когда профиль лояльности
	// недоступен и вызывающая сторона не передала свой процент
	DefaultVIPDiscountPercent = 10.0
)

// Business validation constants
const (
	MinVehicleCount             = 1
	MaxVehicleCount             = 20
	MaxStayDays                 = 365
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses статусы бронирований, не занимающих машиноместа
// Используется при фильтрации в репозитории
var InactiveStatuses = []ReservationStatus{
	StatusCheckedOut,
	StatusCancelled,
}

// OccupyingStatuses статусы бронирований, занимающих машиноместа
var OccupyingStatuses = []ReservationStatus{
	StatusPending,
	StatusConfirmed,
	StatusCheckedIn,
}

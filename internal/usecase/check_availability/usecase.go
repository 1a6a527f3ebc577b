package check_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	storageLot "github.com/m04kA/SMC-ParkingService/internal/infra/storage/lot"
	"github.com/m04kA/SMC-ParkingService/pkg/calendar"
)

// UseCase - проверка доступности парковки на интервал дат
type UseCase struct {
	lots         LotsStorage
	reservations ReservationsStorage
	blackouts    BlackoutsStorage
	location     *time.Location
	logger       Logger
}

// NewUseCase создаёт новый экземпляр UseCase
func NewUseCase(
	lots LotsStorage,
	reservations ReservationsStorage,
	blackouts BlackoutsStorage,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		lots:         lots,
		reservations: reservations,
		blackouts:    blackouts,
		location:     location,
		logger:       logger,
	}
}

// Execute проверяет, вмещается ли запрошенное количество машин в парковку
// на каждый день интервала [check_in, check_out)
func (uc *UseCase) Execute(ctx context.Context, req Request) (*Response, error) {
	// 1. Валидация запроса
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CheckAvailability: ошибка валидации: %v", err)
		return nil, err
	}

	// 2. Загрузка парковки
	lot, err := uc.lots.GetByID(ctx, req.LotID)
	if err != nil {
		if errors.Is(err, storageLot.ErrLotNotFound) {
			uc.logger.Warn("CheckAvailability: парковка %d не найдена", req.LotID)
			return nil, fmt.Errorf("%w: lot %d", ErrLotNotFound, req.LotID)
		}
		uc.logger.Error("CheckAvailability: ошибка загрузки парковки %d: %v", req.LotID, err)
		return nil, fmt.Errorf("%w: failed to get lot: %v", ErrInternal, err)
	}

	if !lot.IsActive {
		uc.logger.Warn("CheckAvailability: парковка %d не активна", req.LotID)
		return nil, fmt.Errorf("%w: lot %d", ErrLotInactive, req.LotID)
	}

	// 3. Дни блокировки на диапазоне (день выезда включительно)
	firstDay := calendar.FromTime(req.CheckIn, uc.location)
	lastDay := calendar.FromTime(req.CheckOut, uc.location)

	blackouts, err := uc.blackouts.GetActiveForLotInRange(ctx, req.LotID, firstDay, lastDay)
	if err != nil {
		uc.logger.Error("CheckAvailability: ошибка загрузки дней блокировки для парковки %d: %v", req.LotID, err)
		return nil, fmt.Errorf("%w: failed to get blackout days: %v", ErrInternal, err)
	}

	conflicts := domain.FindBlackoutConflicts(blackouts, req.LotID, req.CheckIn, req.CheckOut, uc.location)

	// 4. Пересекающиеся бронирования и пиковая занятость по дням
	overlapping, err := uc.reservations.GetOverlappingForLot(ctx, req.LotID, req.CheckIn, req.CheckOut)
	if err != nil {
		uc.logger.Error("CheckAvailability: ошибка загрузки бронирований для парковки %d: %v", req.LotID, err)
		return nil, fmt.Errorf("%w: failed to get reservations: %v", ErrInternal, err)
	}

	result := domain.CheckAvailability(lot, overlapping, req.CheckIn, req.CheckOut, req.VehicleCount, uc.location)

	resp := &Response{
		Fits:            result.Fits && len(conflicts) == 0,
		TotalSpaces:     lot.TotalSpaces,
		AvailableSpaces: result.AvailableSpaces,
		PeakOccupancy:   result.PeakOccupancy,
	}
	if result.PeakOccupancy > 0 {
		peakDay := result.PeakDay
		resp.PeakDay = &peakDay
	}
	for _, b := range conflicts {
		resp.BlackoutConflicts = append(resp.BlackoutConflicts, BlackoutConflict{
			Day:    b.Day,
			Reason: b.Reason,
		})
	}

	uc.logger.Info("CheckAvailability: парковка %d, интервал %s - %s, машин %d, fits=%t, свободно %d",
		req.LotID, firstDay, lastDay, req.VehicleCount, resp.Fits, resp.AvailableSpaces)

	return resp, nil
}

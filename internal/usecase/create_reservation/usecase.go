package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	storageAddon "github.com/m04kA/SMC-ParkingService/internal/infra/storage/addon"
	storageDiscount "github.com/m04kA/SMC-ParkingService/internal/infra/storage/discount"
	storageLot "github.com/m04kA/SMC-ParkingService/internal/infra/storage/lot"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/userservice"
	"github.com/m04kA/SMC-ParkingService/pkg/calendar"
	"github.com/m04kA/SMC-ParkingService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

// UseCase - создание бронирования.
// Проверка вместимости, расчёт стоимости и фиксация счётчиков скидок
// выполняются в одной сериализуемой транзакции: два конкурентных запроса
// на последнее машиноместо не должны пройти оба
type UseCase struct {
	lots         LotsStorage
	reservations ReservationsStorage
	blackouts    BlackoutsStorage
	addons       AddonsStorage
	discounts    DiscountsStorage
	users        UserServiceClient
	txManager    TxManager

	cutoff            domain.CutoffPolicy
	location          *time.Location
	defaultVIPPercent float64

	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создаёт новый экземпляр UseCase
func NewUseCase(
	lots LotsStorage,
	reservations ReservationsStorage,
	blackouts BlackoutsStorage,
	addons AddonsStorage,
	discounts DiscountsStorage,
	users UserServiceClient,
	txManager TxManager,
	cutoff domain.CutoffPolicy,
	location *time.Location,
	defaultVIPPercent float64,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		lots:              lots,
		reservations:      reservations,
		blackouts:         blackouts,
		addons:            addons,
		discounts:         discounts,
		users:             users,
		txManager:         txManager,
		cutoff:            cutoff,
		location:          location,
		defaultVIPPercent: defaultVIPPercent,
		timeProvider:      timeProvider,
		logger:            logger,
	}
}

// Execute создаёт бронирование с зафиксированной стоимостью
func (uc *UseCase) Execute(ctx context.Context, req Request) (*Response, error) {
	// 1. Валидация запроса
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: ошибка валидации: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Загрузка парковки (тарифы и вместимость статичны, читаем вне транзакции)
	lot, err := uc.lots.GetByID(ctx, req.LotID)
	if err != nil {
		if errors.Is(err, storageLot.ErrLotNotFound) {
			uc.logger.Warn("CreateReservation: парковка %d не найдена", req.LotID)
			return nil, fmt.Errorf("%w: lot %d", ErrLotNotFound, req.LotID)
		}
		uc.logger.Error("CreateReservation: ошибка загрузки парковки %d: %v", req.LotID, err)
		return nil, fmt.Errorf("%w: failed to get lot: %w", ErrInternal, err)
	}

	if !lot.IsActive {
		uc.logger.Warn("CreateReservation: парковка %d не активна", req.LotID)
		return nil, fmt.Errorf("%w: lot %d", ErrLotInactive, req.LotID)
	}

	// 3. Дополнительные услуги
	addonServices, err := uc.loadAddons(ctx, req.AddonIDs)
	if err != nil {
		return nil, err
	}

	// 4. Профиль лояльности (graceful degradation на атрибуты из запроса)
	loyalty := uc.resolveLoyalty(ctx, req)

	// 5. Сериализуемая транзакция: блокировки, вместимость, стоимость,
	// счётчики скидок, вставка
	var created *domain.Reservation
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		res, txErr := uc.createInTx(txCtx, lot, req, addonServices, loyalty, now)
		if txErr != nil {
			return txErr
		}
		created = res
		return nil
	})
	if err != nil {
		// Оба менеджера транзакций возвращают собственный sentinel
		if errors.Is(err, txmanager.ErrSerializationConflict) || errors.Is(err, simpletxmanager.ErrSerializationConflict) {
			uc.logger.Warn("CreateReservation: конфликт сериализации для парковки %d: %v", req.LotID, err)
			return nil, fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
		}
		return nil, err
	}

	uc.logger.Info("CreateReservation: бронь %d создана: парковка %d, пользователь %d, машин %d, итог=%.2f",
		created.ID, created.LotID, created.UserID, created.VehicleCount, created.FinalAmount)

	return buildResponse(created), nil
}

// createInTx выполняет транзакционную часть создания бронирования
func (uc *UseCase) createInTx(
	ctx context.Context,
	lot *domain.Lot,
	req Request,
	addonServices []*domain.AddOnService,
	loyalty domain.LoyaltyProfile,
	now time.Time,
) (*domain.Reservation, error) {
	// 1. Дни блокировки: непустое пересечение - безусловный отказ
	firstDay := calendar.FromTime(req.CheckIn, uc.location)
	lastDay := calendar.FromTime(req.CheckOut, uc.location)

	blackouts, err := uc.blackouts.GetActiveForLotInRange(ctx, req.LotID, firstDay, lastDay)
	if err != nil {
		uc.logger.Error("CreateReservation: ошибка загрузки дней блокировки для парковки %d: %v", req.LotID, err)
		return nil, fmt.Errorf("%w: failed to get blackout days: %w", ErrInternal, err)
	}

	if conflicts := domain.FindBlackoutConflicts(blackouts, req.LotID, req.CheckIn, req.CheckOut, uc.location); len(conflicts) > 0 {
		uc.logger.Warn("CreateReservation: парковка %d заблокирована на %s", req.LotID, conflicts[0].Day)
		return nil, fmt.Errorf("%w: day %s: %s", ErrBlackoutConflict, conflicts[0].Day, conflicts[0].Reason)
	}

	// 2. Пересекающиеся брони под блокировкой FOR UPDATE и проверка
	// худшего дня диапазона
	overlapping, err := uc.reservations.GetOverlappingForLot(ctx, req.LotID, req.CheckIn, req.CheckOut)
	if err != nil {
		uc.logger.Error("CreateReservation: ошибка загрузки бронирований для парковки %d: %v", req.LotID, err)
		return nil, fmt.Errorf("%w: failed to get reservations: %w", ErrInternal, err)
	}

	availability := domain.CheckAvailability(lot, overlapping, req.CheckIn, req.CheckOut, req.VehicleCount, uc.location)
	if !availability.Fits {
		uc.logger.Warn("CreateReservation: нет мест на парковке %d: пик %d в %s, свободно %d, запрошено %d",
			req.LotID, availability.PeakOccupancy, availability.PeakDay, availability.AvailableSpaces, req.VehicleCount)
		return nil, fmt.Errorf("%w: %d spaces available on %s, %d requested",
			ErrNoCapacity, availability.AvailableSpaces, availability.PeakDay, req.VehicleCount)
	}

	// 3. Стоимость проживания
	quote := domain.PriceStay(lot, req.CheckIn, req.CheckOut, req.VehicleCount, addonServices, uc.cutoff, uc.location)

	// 4. Скидки на свежих счётчиках внутри транзакции
	rules, err := uc.discounts.GetActiveRulesForLot(ctx, req.LotID, now)
	if err != nil {
		uc.logger.Error("CreateReservation: ошибка загрузки правил скидок для парковки %d: %v", req.LotID, err)
		return nil, fmt.Errorf("%w: failed to get discount rules: %w", ErrInternal, err)
	}

	code, err := uc.resolveCode(ctx, req, quote.Subtotal, now)
	if err != nil {
		return nil, err
	}

	result := domain.ComposeDiscounts(domain.DiscountInput{
		Subtotal:     quote.Subtotal,
		DurationDays: quote.DurationDays,
		LotID:        req.LotID,
		UserID:       req.UserID,
		Loyalty:      loyalty,
		Code:         code,
		Rules:        rules,
		Now:          now,
	})

	// 5. Инкременты счётчиков применённых скидок: исчерпание лимита между
	// чтением и инкрементом не должно дать лишнее использование
	if err := uc.commitUsage(ctx, result); err != nil {
		return nil, err
	}

	// 6. Вставка брони с зафиксированной стоимостью
	reservation := &domain.Reservation{
		UserID:             req.UserID,
		LotID:              req.LotID,
		CheckIn:            req.CheckIn,
		CheckOut:           req.CheckOut,
		VehicleCount:       req.VehicleCount,
		Status:             domain.StatusPending,
		VehiclePlate:       req.VehiclePlate,
		VehicleModel:       req.VehicleModel,
		Notes:              req.Notes,
		Subtotal:           quote.Subtotal,
		AutoDiscountAmount: result.AutoDiscountAmount,
		CodeDiscountAmount: result.CodeDiscountAmount,
		VIPDiscountAmount:  result.VIPDiscountAmount,
		DiscountTotal:      result.DiscountTotal(),
		FinalAmount:        result.FinalAmount,
		Breakdown:          quote.DailyBreakdown,
	}
	if result.AppliedRule != nil {
		reservation.AppliedRuleID = &result.AppliedRule.ID
	}
	if result.AppliedCode != nil {
		reservation.AppliedCode = &result.AppliedCode.Code
	}

	created, err := uc.reservations.Create(ctx, reservation)
	if err != nil {
		uc.logger.Error("CreateReservation: ошибка вставки брони: %v", err)
		return nil, fmt.Errorf("%w: failed to create reservation: %w", ErrInternal, err)
	}

	return created, nil
}

// commitUsage инкрементирует счётчики применённых скидок.
// Каждое применение учитывается ровно один раз, в том числе для скидок
// без лимита - условие защиты лимита живёт в самом UPDATE
func (uc *UseCase) commitUsage(ctx context.Context, result domain.DiscountResult) error {
	if result.AppliedRule != nil {
		if err := uc.discounts.IncrementRuleUsage(ctx, result.AppliedRule.ID); err != nil {
			if errors.Is(err, storageDiscount.ErrUsageExhausted) {
				// Правило исчерпано конкурентным бронированием, просим повторить
				uc.logger.Warn("CreateReservation: правило %d исчерпано конкурентно", result.AppliedRule.ID)
				return fmt.Errorf("%w: discount rule exhausted concurrently", ErrConcurrencyConflict)
			}
			uc.logger.Error("CreateReservation: ошибка инкремента правила %d: %v", result.AppliedRule.ID, err)
			return fmt.Errorf("%w: failed to increment rule usage: %w", ErrInternal, err)
		}
	}

	if result.AppliedCode != nil {
		if err := uc.discounts.IncrementCodeUsage(ctx, result.AppliedCode.ID); err != nil {
			if errors.Is(err, storageDiscount.ErrUsageExhausted) {
				uc.logger.Warn("CreateReservation: промокод %q исчерпан конкурентно", result.AppliedCode.Code)
				return fmt.Errorf("%w: %q is exhausted", ErrCodeNotApplicable, result.AppliedCode.Code)
			}
			uc.logger.Error("CreateReservation: ошибка инкремента промокода %q: %v", result.AppliedCode.Code, err)
			return fmt.Errorf("%w: failed to increment code usage: %w", ErrInternal, err)
		}
	}

	return nil
}

// loadAddons загружает запрошенные активные услуги
func (uc *UseCase) loadAddons(ctx context.Context, ids []int64) ([]*domain.AddOnService, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	addons, err := uc.addons.GetActiveByIDs(ctx, ids)
	if err != nil {
		if errors.Is(err, storageAddon.ErrAddonNotFound) {
			uc.logger.Warn("CreateReservation: услуги %v не найдены или неактивны", ids)
			return nil, fmt.Errorf("%w: %v", ErrAddonNotFound, err)
		}
		uc.logger.Error("CreateReservation: ошибка загрузки услуг %v: %v", ids, err)
		return nil, fmt.Errorf("%w: failed to get addons: %w", ErrInternal, err)
	}

	return addons, nil
}

// resolveLoyalty возвращает VIP атрибуты клиента.
// Отсутствие профиля даёт обычного клиента, недоступность UserService
// переключает на атрибуты из запроса
func (uc *UseCase) resolveLoyalty(ctx context.Context, req Request) domain.LoyaltyProfile {
	profile, err := uc.users.GetLoyaltyProfileWithGracefulDegradation(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, userservice.ErrServiceDegraded) && req.LoyaltyFallback != nil {
			percent := uc.defaultVIPPercent
			if req.LoyaltyFallback.VIPDiscountPercent != nil {
				percent = *req.LoyaltyFallback.VIPDiscountPercent
			}
			return domain.LoyaltyProfile{
				UserID:             req.UserID,
				IsVIP:              req.LoyaltyFallback.IsVIP,
				VIPDiscountPercent: percent,
				IsNewUser:          req.LoyaltyFallback.IsNewUser,
			}
		}
		return domain.LoyaltyProfile{UserID: req.UserID}
	}

	percent := profile.VIPDiscountPercent
	if profile.IsVIP && percent <= 0 {
		percent = uc.defaultVIPPercent
	}

	return domain.LoyaltyProfile{
		UserID:             req.UserID,
		IsVIP:              profile.IsVIP,
		VIPDiscountPercent: percent,
		IsNewUser:          profile.IsNewUser,
	}
}

// resolveCode загружает промокод и проверяет его применимость
func (uc *UseCase) resolveCode(ctx context.Context, req Request, subtotal float64, now time.Time) (*domain.DiscountCode, error) {
	if req.DiscountCode == nil {
		return nil, nil
	}

	code, err := uc.discounts.GetCodeByCode(ctx, *req.DiscountCode)
	if err != nil {
		if errors.Is(err, storageDiscount.ErrCodeNotFound) {
			uc.logger.Warn("CreateReservation: промокод %q не найден", *req.DiscountCode)
			return nil, fmt.Errorf("%w: %q", ErrCodeNotFound, *req.DiscountCode)
		}
		uc.logger.Error("CreateReservation: ошибка загрузки промокода %q: %v", *req.DiscountCode, err)
		return nil, fmt.Errorf("%w: failed to get discount code: %w", ErrInternal, err)
	}

	if !code.IsValidAt(now) {
		uc.logger.Warn("CreateReservation: промокод %q истёк или исчерпан", code.Code)
		return nil, fmt.Errorf("%w: %q is expired or exhausted", ErrCodeNotApplicable, code.Code)
	}
	if !code.MeetsMinOrder(subtotal) {
		uc.logger.Warn("CreateReservation: промокод %q не достиг минимального чека (subtotal=%.2f)", code.Code, subtotal)
		return nil, fmt.Errorf("%w: %q requires a larger order amount", ErrCodeNotApplicable, code.Code)
	}

	return code, nil
}

// buildResponse собирает ответ из созданной брони
func buildResponse(res *domain.Reservation) *Response {
	resp := &Response{
		ID:                 res.ID,
		UserID:             res.UserID,
		LotID:              res.LotID,
		CheckIn:            res.CheckIn,
		CheckOut:           res.CheckOut,
		VehicleCount:       res.VehicleCount,
		Status:             res.Status,
		Subtotal:           res.Subtotal,
		AutoDiscountAmount: res.AutoDiscountAmount,
		CodeDiscountAmount: res.CodeDiscountAmount,
		VIPDiscountAmount:  res.VIPDiscountAmount,
		DiscountTotal:      res.DiscountTotal,
		FinalAmount:        res.FinalAmount,
		AppliedRuleID:      res.AppliedRuleID,
		AppliedCode:        res.AppliedCode,
		CreatedAt:          res.CreatedAt,
	}

	resp.DailyBreakdown = make([]DayChargeItem, 0, len(res.Breakdown))
	for _, charge := range res.Breakdown {
		resp.DailyBreakdown = append(resp.DailyBreakdown, DayChargeItem{
			Day:        charge.Day,
			Price:      charge.Price,
			RatePrice:  charge.RatePrice,
			IsOverride: charge.IsOverride,
			Label:      charge.Label,
			Chargeable: charge.Chargeable,
		})
	}

	return resp
}

package calculate_price

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
)

// UseCase - расчёт стоимости бронирования (предварительный просмотр).
// Не имеет побочных эффектов: счётчики использования скидок не трогает
type UseCase struct {
	lots      LotsStorage
	addons    AddonsStorage
	discounts DiscountsStorage
	users     UserServiceClient

	cutoff            domain.CutoffPolicy
	location          *time.Location
	defaultVIPPercent float64

	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создаёт новый экземпляр UseCase
func NewUseCase(
	lots LotsStorage,
	addons AddonsStorage,
	discounts DiscountsStorage,
	users UserServiceClient,
	cutoff domain.CutoffPolicy,
	location *time.Location,
	defaultVIPPercent float64,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		lots:              lots,
		addons:            addons,
		discounts:         discounts,
		users:             users,
		cutoff:            cutoff,
		location:          location,
		defaultVIPPercent: defaultVIPPercent,
		timeProvider:      timeProvider,
		logger:            logger,
	}
}

// Execute считает стоимость проживания с детализацией по дням и скидками
func (uc *UseCase) Execute(ctx context.Context, req Request) (*Response, error) {
	// 1. Валидация запроса
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CalculatePrice: ошибка валидации: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Загрузка парковки
	lot, err := uc.lots.GetByID(ctx, req.LotID)
	if err != nil {
		if errors.Is(err, storageLot.ErrLotNotFound) {
			uc.logger.Warn("CalculatePrice: парковка %d не найдена", req.LotID)
			return nil, fmt.Errorf("%w: lot %d", ErrLotNotFound, req.LotID)
		}
		uc.logger.Error("CalculatePrice: ошибка загрузки парковки %d: %v", req.LotID, err)
		return nil, fmt.Errorf("%w: failed to get lot: %v", ErrInternal, err)
	}

	if !lot.IsActive {
		uc.logger.Warn("CalculatePrice: парковка %d не активна", req.LotID)
		return nil, fmt.Errorf("%w: lot %d", ErrLotInactive, req.LotID)
	}

	// 3. Загрузка дополнительных услуг
	addonServices, err := uc.loadAddons(ctx, req.AddonIDs)
	if err != nil {
		return nil, err
	}

	// 4. Базовая стоимость: детализация по дням, отсечка первого дня,
	// умножение на количество автомобилей
	quote := domain.PriceStay(lot, req.CheckIn, req.CheckOut, req.VehicleCount, addonServices, uc.cutoff, uc.location)

	// 5. Профиль лояльности (graceful degradation на атрибуты из запроса)
	loyalty := uc.resolveLoyalty(ctx, req)

	// 6. Кандидаты автоматических правил
	rules, err := uc.discounts.GetActiveRulesForLot(ctx, req.LotID, now)
	if err != nil {
		uc.logger.Error("CalculatePrice: ошибка загрузки правил скидок для парковки %d: %v", req.LotID, err)
		return nil, fmt.Errorf("%w: failed to get discount rules: %v", ErrInternal, err)
	}

	// 7. Промокод: неизвестный код и код вне окна действия - бизнес-отказ
	code, err := uc.resolveCode(ctx, req, quote.Subtotal, now)
	if err != nil {
		return nil, err
	}

	// 8. Компоновка скидок: автоматическая -> промокод -> VIP
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

	resp := buildResponse(quote, result)

	uc.logger.Info("CalculatePrice: парковка %d, пользователь %d, %d дней, subtotal=%.2f, итог=%.2f",
		req.LotID, req.UserID, quote.DurationDays, quote.Subtotal, resp.FinalAmount)

	return resp, nil
}

// loadAddons загружает запрошенные активные услуги
func (uc *UseCase) loadAddons(ctx context.Context, ids []int64) ([]*domain.AddOnService, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	addons, err := uc.addons.GetActiveByIDs(ctx, ids)
	if err != nil {
		if errors.Is(err, storageAddon.ErrAddonNotFound) {
			uc.logger.Warn("CalculatePrice: услуги %v не найдены или неактивны", ids)
			return nil, fmt.Errorf("%w: %v", ErrAddonNotFound, err)
		}
		uc.logger.Error("CalculatePrice: ошибка загрузки услуг %v: %v", ids, err)
		return nil, fmt.Errorf("%w: failed to get addons: %v", ErrInternal, err)
	}

	return addons, nil
}

// resolveLoyalty возвращает VIP атрибуты клиента.
// Анонимный расчёт и отсутствие профиля дают обычного клиента,
// недоступность UserService переключает на атрибуты из запроса
func (uc *UseCase) resolveLoyalty(ctx context.Context, req Request) domain.LoyaltyProfile {
	if req.UserID <= 0 {
		return domain.LoyaltyProfile{}
	}

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
		// Профиль не найден или деградация без fallback - обычный клиент
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

// resolveCode загружает промокод и проверяет его применимость.
// Блокировка кода несовместимым автоматическим правилом ошибкой не считается -
// это решает компоновщик скидок
func (uc *UseCase) resolveCode(ctx context.Context, req Request, subtotal float64, now time.Time) (*domain.DiscountCode, error) {
	if req.DiscountCode == nil {
		return nil, nil
	}

	code, err := uc.discounts.GetCodeByCode(ctx, *req.DiscountCode)
	if err != nil {
		if errors.Is(err, storageDiscount.ErrCodeNotFound) {
			uc.logger.Warn("CalculatePrice: промокод %q не найден", *req.DiscountCode)
			return nil, fmt.Errorf("%w: %q", ErrCodeNotFound, *req.DiscountCode)
		}
		uc.logger.Error("CalculatePrice: ошибка загрузки промокода %q: %v", *req.DiscountCode, err)
		return nil, fmt.Errorf("%w: failed to get discount code: %v", ErrInternal, err)
	}

	if !code.IsValidAt(now) {
		uc.logger.Warn("CalculatePrice: промокод %q истёк или исчерпан", code.Code)
		return nil, fmt.Errorf("%w: %q is expired or exhausted", ErrCodeNotApplicable, code.Code)
	}
	if !code.MeetsMinOrder(subtotal) {
		uc.logger.Warn("CalculatePrice: промокод %q не достиг минимального чека (subtotal=%.2f)", code.Code, subtotal)
		return nil, fmt.Errorf("%w: %q requires a larger order amount", ErrCodeNotApplicable, code.Code)
	}

	return code, nil
}

// buildResponse собирает ответ из расчёта стоимости и результата скидок
func buildResponse(quote domain.Quote, result domain.DiscountResult) *Response {
	resp := &Response{
		DurationDays:       quote.DurationDays,
		BasePriceTotal:     quote.BasePriceTotal,
		AddonTotal:         quote.AddonTotal,
		Subtotal:           quote.Subtotal,
		AutoDiscountAmount: result.AutoDiscountAmount,
		CodeDiscountAmount: result.CodeDiscountAmount,
		VIPDiscountAmount:  result.VIPDiscountAmount,
		DiscountTotal:      result.DiscountTotal(),
		FinalAmount:        result.FinalAmount,
	}

	resp.DailyBreakdown = make([]DayChargeItem, 0, len(quote.DailyBreakdown))
	for _, charge := range quote.DailyBreakdown {
		resp.DailyBreakdown = append(resp.DailyBreakdown, DayChargeItem{
			Day:        charge.Day,
			Price:      charge.Price,
			RatePrice:  charge.RatePrice,
			IsOverride: charge.IsOverride,
			Label:      charge.Label,
			Chargeable: charge.Chargeable,
		})
	}

	if result.AppliedRule != nil {
		resp.AppliedRuleID = &result.AppliedRule.ID
		resp.AppliedRuleName = &result.AppliedRule.Name
	}
	if result.AppliedCode != nil {
		resp.AppliedCode = &result.AppliedCode.Code
	}

	return resp
}

package domain

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/pkg/calendar"
)

// BlackoutDay административный запрет бронирования на календарный день
type BlackoutDay struct {
	ID       int64
	Day      calendar.DayKey
	IsActive bool
	Reason   string
	LotIDs   []int64 // Парковки, на которые распространяется запрет
}

// AffectsLot возвращает true, если запрет действует для указанной парковки
func (b *BlackoutDay) AffectsLot(lotID int64) bool {
	for _, id := range b.LotIDs {
		if id == lotID {
			return true
		}
	}
	return false
}

// AddOnService дополнительная услуга (мойка, зарядка и т.п.)
// Цена взимается один раз за каждый автомобиль, не за каждый день
type AddOnService struct {
	ID       int64
	Name     string
	Price    float64 // >= 0
	IsActive bool
}

// DiscountKind вид скидки
type DiscountKind string

const (
	// DiscountPercentage процентная скидка
	DiscountPercentage DiscountKind = "percentage"
	// DiscountFixedPerDay фиксированная сумма за каждый день проживания
	DiscountFixedPerDay DiscountKind = "fixed_per_day"
	// DiscountFixed фиксированная сумма (только для промокодов)
	DiscountFixed DiscountKind = "fixed"
)

// DiscountEligibility предикат применимости автоматической скидки
type DiscountEligibility string

const (
	EligibilityAll         DiscountEligibility = "all"
	EligibilityVIPOnly     DiscountEligibility = "vip_only"
	EligibilityNewUserOnly DiscountEligibility = "new_user_only"
	EligibilityAllowList   DiscountEligibility = "allow_list"
)

// AutomaticDiscountRule промо-правило, применяемое без промокода
type AutomaticDiscountRule struct {
	ID     int64
	Name   string
	LotIDs []int64 // Парковки, к которым применимо правило (пусто = все)

	// Границы длительности проживания в днях, включительно
	MinDays int
	MaxDays int

	Kind              DiscountKind
	DiscountValue     float64
	MaxDiscountAmount *float64 // Потолок суммы скидки (опционально)

	// AllowCodeCombination разрешает дополнительно применить промокод
	AllowCodeCombination bool

	// Priority при нескольких подходящих правилах выигрывает больший приоритет
	Priority int

	ValidFrom  time.Time
	ValidUntil time.Time

	UsageLimit int // 0 = без ограничений
	UsedCount  int

	Eligibility    DiscountEligibility
	AllowedUserIDs []int64 // Для EligibilityAllowList

	IsActive bool
}

// AppliesToLot возвращает true, если правило применимо к парковке
func (r *AutomaticDiscountRule) AppliesToLot(lotID int64) bool {
	if len(r.LotIDs) == 0 {
		return true
	}
	for _, id := range r.LotIDs {
		if id == lotID {
			return true
		}
	}
	return false
}

// CoversDuration возвращает true, если длительность проживания попадает в границы
func (r *AutomaticDiscountRule) CoversDuration(days int) bool {
	return days >= r.MinDays && days <= r.MaxDays
}

// IsValidAt возвращает true, если правило действует в момент now
// и не исчерпало лимит использования
func (r *AutomaticDiscountRule) IsValidAt(now time.Time) bool {
	if !r.IsActive {
		return false
	}
	if now.Before(r.ValidFrom) || now.After(r.ValidUntil) {
		return false
	}
	if r.UsageLimit > 0 && r.UsedCount >= r.UsageLimit {
		return false
	}
	return true
}

// DiscountCode промокод
type DiscountCode struct {
	ID   int64
	Code string

	Kind          DiscountKind
	DiscountValue float64

	MinOrderAmount    *float64 // Минимальная сумма заказа (опционально)
	MaxDiscountAmount *float64 // Потолок суммы скидки (опционально)

	ValidFrom  time.Time
	ValidUntil time.Time

	UsageLimit int // 0 = без ограничений
	UsedCount  int

	IsActive bool
}

// IsValidAt возвращает true, если промокод действует в момент now
// и не исчерпал лимит использования
func (c *DiscountCode) IsValidAt(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return false
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return false
	}
	return true
}

// MeetsMinOrder возвращает true, если сумма заказа проходит минимальный порог
func (c *DiscountCode) MeetsMinOrder(subtotal float64) bool {
	return c.MinOrderAmount == nil || subtotal >= *c.MinOrderAmount
}

// LoyaltyProfile VIP атрибуты клиента
// Read-only вход движка: профиль подтягивается из UserService,
// при его недоступности используются значения от вызывающей стороны
type LoyaltyProfile struct {
	UserID             int64
	IsVIP              bool
	VIPDiscountPercent float64 // 0-100
	IsNewUser          bool
}

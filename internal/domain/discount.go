package domain

import (
	"time"
)

// DiscountInput входные данные компоновщика скидок
type DiscountInput struct {
	Subtotal     float64
	DurationDays int
	LotID        int64
	UserID       int64

	Loyalty LoyaltyProfile

	// Code найденный промокод (nil, если код не передан или не найден)
	Code *DiscountCode

	// Rules кандидаты автоматических правил (фильтрация применимости внутри)
	Rules []*AutomaticDiscountRule

	Now time.Time
}

// DiscountResult результат компоновки скидок
type DiscountResult struct {
	AutoDiscountAmount float64
	CodeDiscountAmount float64
	VIPDiscountAmount  float64
	FinalAmount        float64

	// AppliedRule выбранное автоматическое правило (nil, если не сработало)
	AppliedRule *AutomaticDiscountRule
	// AppliedCode применённый промокод (nil, если не сработал)
	AppliedCode *DiscountCode
}

// DiscountTotal суммарная скидка
func (r *DiscountResult) DiscountTotal() float64 {
	return Round2(r.AutoDiscountAmount + r.CodeDiscountAmount + r.VIPDiscountAmount)
}

// SelectAutoRule выбирает единственное применимое автоматическое правило:
// действующее сейчас, подходящее парковке, длительности и клиенту.
// Среди подходящих выигрывает большее значение Priority, при равенстве -
// меньший ID (правило, созданное раньше). Порядок полный и детерминированный,
// от порядка загрузки из хранилища не зависит.
func SelectAutoRule(input DiscountInput) *AutomaticDiscountRule {
	var winner *AutomaticDiscountRule

	for _, rule := range input.Rules {
		if !rule.IsValidAt(input.Now) {
			continue
		}
		if !rule.AppliesToLot(input.LotID) {
			continue
		}
		if !rule.CoversDuration(input.DurationDays) {
			continue
		}
		if !ruleEligible(rule, input) {
			continue
		}
		if winner == nil || betterRule(rule, winner) {
			winner = rule
		}
	}

	return winner
}

func betterRule(candidate, current *AutomaticDiscountRule) bool {
	if candidate.Priority != current.Priority {
		return candidate.Priority > current.Priority
	}
	return candidate.ID < current.ID
}

func ruleEligible(rule *AutomaticDiscountRule, input DiscountInput) bool {
	switch rule.Eligibility {
	case EligibilityVIPOnly:
		return input.Loyalty.IsVIP
	case EligibilityNewUserOnly:
		return input.Loyalty.IsNewUser
	case EligibilityAllowList:
		for _, id := range rule.AllowedUserIDs {
			if id == input.UserID {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// autoRuleAmount считает сумму автоматической скидки.
// Процентные правила работают через суточную ставку: процент применяется
// к subtotal/days с округлением, затем умножается обратно на количество дней.
// Из-за округления это не то же самое, что процент от всей суммы сразу -
// формула воспроизводится буквально. Фиксированные правила - сумма за день,
// умноженная на количество дней.
func autoRuleAmount(rule *AutomaticDiscountRule, subtotal float64, days int) float64 {
	if days <= 0 || subtotal <= 0 {
		return 0
	}

	var amount float64
	switch rule.Kind {
	case DiscountPercentage:
		perDayRate := subtotal / float64(days)
		perDayDiscount := Round2(perDayRate * rule.DiscountValue / 100)
		amount = Round2(perDayDiscount * float64(days))
	case DiscountFixedPerDay:
		amount = Round2(rule.DiscountValue * float64(days))
	default:
		return 0
	}

	if rule.MaxDiscountAmount != nil && amount > *rule.MaxDiscountAmount {
		amount = *rule.MaxDiscountAmount
	}
	if amount > subtotal {
		amount = subtotal
	}
	if amount < 0 {
		amount = 0
	}
	return Round2(amount)
}

// codeAmount считает сумму скидки промокода.
// Процентные коды применяются к исходному subtotal, а не к остатку после
// автоматической скидки - наблюдаемое поведение воспроизводится буквально.
func codeAmount(code *DiscountCode, subtotal float64) float64 {
	var amount float64
	switch code.Kind {
	case DiscountPercentage:
		amount = Round2(subtotal * code.DiscountValue / 100)
	case DiscountFixed:
		amount = code.DiscountValue
	default:
		return 0
	}

	if code.MaxDiscountAmount != nil && amount > *code.MaxDiscountAmount {
		amount = *code.MaxDiscountAmount
	}
	if amount > subtotal {
		amount = subtotal
	}
	if amount < 0 {
		amount = 0
	}
	return Round2(amount)
}

// ComposeDiscounts применяет скидки в фиксированном порядке:
// автоматическая -> промокод -> VIP. Порядок менять нельзя: VIP скидка
// считается от остатка после двух предыдущих.
func ComposeDiscounts(input DiscountInput) DiscountResult {
	result := DiscountResult{}

	// 1. Автоматическая скидка: единственное правило с наибольшим приоритетом
	rule := SelectAutoRule(input)
	if rule != nil {
		result.AutoDiscountAmount = autoRuleAmount(rule, input.Subtotal, input.DurationDays)
		if result.AutoDiscountAmount > 0 {
			result.AppliedRule = rule
		}
	}

	// 2. Промокод: только если автоматическая скидка не сработала
	// или явно разрешает комбинирование с кодом
	codeAllowed := result.AppliedRule == nil || result.AppliedRule.AllowCodeCombination
	if input.Code != nil && codeAllowed &&
		input.Code.IsValidAt(input.Now) && input.Code.MeetsMinOrder(input.Subtotal) {
		result.CodeDiscountAmount = codeAmount(input.Code, input.Subtotal)
		if result.CodeDiscountAmount > 0 {
			result.AppliedCode = input.Code
		}
	}

	// 3. VIP скидка: процент от остатка после обеих предыдущих скидок
	if input.Loyalty.IsVIP {
		percent := input.Loyalty.VIPDiscountPercent
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		remainder := input.Subtotal - result.AutoDiscountAmount - result.CodeDiscountAmount
		if remainder > 0 {
			result.VIPDiscountAmount = Round2(remainder * percent / 100)
		}
	}

	// Итог не может быть отрицательным
	final := Round2(input.Subtotal - result.AutoDiscountAmount - result.CodeDiscountAmount - result.VIPDiscountAmount)
	if final < 0 {
		final = 0
	}
	result.FinalAmount = final

	return result
}

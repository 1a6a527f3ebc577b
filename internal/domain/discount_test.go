package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-ParkingService/pkg/ptr"
)

var discountNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func validRule(id int64, priority int) *AutomaticDiscountRule {
	return &AutomaticDiscountRule{
		ID:            id,
		MinDays:       1,
		MaxDays:       30,
		Kind:          DiscountPercentage,
		DiscountValue: 10,
		Priority:      priority,
		ValidFrom:     discountNow.AddDate(0, -1, 0),
		ValidUntil:    discountNow.AddDate(0, 1, 0),
		Eligibility:   EligibilityAll,
		IsActive:      true,
	}
}

func validCode(code string) *DiscountCode {
	return &DiscountCode{
		ID:            1,
		Code:          code,
		Kind:          DiscountFixed,
		DiscountValue: 50,
		ValidFrom:     discountNow.AddDate(0, -1, 0),
		ValidUntil:    discountNow.AddDate(0, 1, 0),
		IsActive:      true,
	}
}

func TestComposeDiscounts_NoDiscounts(t *testing.T) {
	result := ComposeDiscounts(DiscountInput{Subtotal: 200, DurationDays: 2, Now: discountNow})

	assert.Equal(t, 0.0, result.DiscountTotal())
	assert.Equal(t, 200.0, result.FinalAmount)
}

func TestComposeDiscounts_VIPOnly(t *testing.T) {
	// Приёмочный сценарий: subtotal 200, VIP 10%, без авто и кода - итог 180
	result := ComposeDiscounts(DiscountInput{
		Subtotal:     200,
		DurationDays: 2,
		Loyalty:      LoyaltyProfile{IsVIP: true, VIPDiscountPercent: 10},
		Now:          discountNow,
	})

	assert.Equal(t, 20.0, result.VIPDiscountAmount)
	assert.Equal(t, 180.0, result.FinalAmount)
}

func TestComposeDiscounts_FixedOrderFormula(t *testing.T) {
	// Проверка формулы порядка: S - auto(A,S) - C - (S - auto - C) * V/100.
	// Код применяется к исходной сумме, не к остатку после авто-скидки;
	// VIP - к остатку после обеих.
	rule := validRule(1, 1)
	rule.AllowCodeCombination = true

	code := validCode("SAVE50")

	result := ComposeDiscounts(DiscountInput{
		Subtotal:     1000,
		DurationDays: 4,
		Loyalty:      LoyaltyProfile{IsVIP: true, VIPDiscountPercent: 10},
		Code:         code,
		Rules:        []*AutomaticDiscountRule{rule},
		Now:          discountNow,
	})

	// auto: посуточно 250, 10% = 25/день, 4 дня = 100
	assert.Equal(t, 100.0, result.AutoDiscountAmount)
	// code: фиксированные 50
	assert.Equal(t, 50.0, result.CodeDiscountAmount)
	// VIP: (1000 - 100 - 50) * 10% = 85
	assert.Equal(t, 85.0, result.VIPDiscountAmount)
	assert.Equal(t, 765.0, result.FinalAmount)
}

func TestComposeDiscounts_PercentCodeAgainstRawSubtotal(t *testing.T) {
	// Процентный код считается от исходного subtotal, а не от остатка
	// после автоматической скидки
	rule := validRule(1, 1)
	rule.Kind = DiscountFixedPerDay
	rule.DiscountValue = 100 // 100/день * 2 дня = 200
	rule.AllowCodeCombination = true

	code := validCode("PCT20")
	code.Kind = DiscountPercentage
	code.DiscountValue = 20

	result := ComposeDiscounts(DiscountInput{
		Subtotal:     1000,
		DurationDays: 2,
		Code:         code,
		Rules:        []*AutomaticDiscountRule{rule},
		Now:          discountNow,
	})

	assert.Equal(t, 200.0, result.AutoDiscountAmount)
	// 20% от 1000, а не от 800
	assert.Equal(t, 200.0, result.CodeDiscountAmount)
	assert.Equal(t, 600.0, result.FinalAmount)
}

func TestComposeDiscounts_PerDayPercentageRounding(t *testing.T) {
	// Процентное правило работает через суточную ставку с округлением:
	// 1000/3 = 333.33.. , 10% = 33.33 (округлено), * 3 = 99.99.
	// Процент от всей суммы сразу дал бы ровно 100 - формулы различаются.
	rule := validRule(1, 1)

	result := ComposeDiscounts(DiscountInput{
		Subtotal:     1000,
		DurationDays: 3,
		Rules:        []*AutomaticDiscountRule{rule},
		Now:          discountNow,
	})

	assert.Equal(t, 99.99, result.AutoDiscountAmount)
}

func TestComposeDiscounts_CodeBlockedWithoutCombination(t *testing.T) {
	// Авто-скидка без разрешения комбинирования блокирует промокод
	rule := validRule(1, 1)
	rule.AllowCodeCombination = false

	result := ComposeDiscounts(DiscountInput{
		Subtotal:     1000,
		DurationDays: 4,
		Code:         validCode("SAVE50"),
		Rules:        []*AutomaticDiscountRule{rule},
		Now:          discountNow,
	})

	assert.Equal(t, 100.0, result.AutoDiscountAmount)
	assert.Equal(t, 0.0, result.CodeDiscountAmount)
	assert.Nil(t, result.AppliedCode)
}

func TestSelectAutoRule_PriorityThenID(t *testing.T) {
	low := validRule(1, 1)
	high := validRule(2, 5)
	// При равном приоритете выигрывает меньший ID
	tieA := validRule(3, 5)

	input := DiscountInput{
		Subtotal:     100,
		DurationDays: 2,
		Rules:        []*AutomaticDiscountRule{tieA, low, high},
		Now:          discountNow,
	}

	selected := SelectAutoRule(input)
	assert.Equal(t, int64(2), selected.ID)

	// Порядок в слайсе не влияет на выбор
	input.Rules = []*AutomaticDiscountRule{low, high, tieA}
	assert.Equal(t, int64(2), SelectAutoRule(input).ID)
}

func TestSelectAutoRule_Eligibility(t *testing.T) {
	vipOnly := validRule(1, 5)
	vipOnly.Eligibility = EligibilityVIPOnly

	newOnly := validRule(2, 4)
	newOnly.Eligibility = EligibilityNewUserOnly

	allowList := validRule(3, 3)
	allowList.Eligibility = EligibilityAllowList
	allowList.AllowedUserIDs = []int64{42}

	rules := []*AutomaticDiscountRule{vipOnly, newOnly, allowList}

	// Обычный пользователь не проходит ни один предикат
	assert.Nil(t, SelectAutoRule(DiscountInput{
		Subtotal: 100, DurationDays: 2, UserID: 7, Rules: rules, Now: discountNow,
	}))

	// VIP проходит vip_only
	assert.Equal(t, int64(1), SelectAutoRule(DiscountInput{
		Subtotal: 100, DurationDays: 2, UserID: 7,
		Loyalty: LoyaltyProfile{IsVIP: true},
		Rules:   rules, Now: discountNow,
	}).ID)

	// Пользователь из списка проходит allow_list
	assert.Equal(t, int64(3), SelectAutoRule(DiscountInput{
		Subtotal: 100, DurationDays: 2, UserID: 42, Rules: rules, Now: discountNow,
	}).ID)
}

func TestSelectAutoRule_FiltersUsageAndWindow(t *testing.T) {
	exhausted := validRule(1, 10)
	exhausted.UsageLimit = 5
	exhausted.UsedCount = 5

	expired := validRule(2, 9)
	expired.ValidUntil = discountNow.AddDate(0, 0, -1)

	wrongDuration := validRule(3, 8)
	wrongDuration.MinDays = 10

	wrongLot := validRule(4, 7)
	wrongLot.LotIDs = []int64{99}

	ok := validRule(5, 1)

	selected := SelectAutoRule(DiscountInput{
		Subtotal: 100, DurationDays: 2, LotID: 1,
		Rules: []*AutomaticDiscountRule{exhausted, expired, wrongDuration, wrongLot, ok},
		Now:   discountNow,
	})

	assert.Equal(t, int64(5), selected.ID)
}

func TestComposeDiscounts_MaxDiscountCap(t *testing.T) {
	rule := validRule(1, 1)
	rule.DiscountValue = 50 // 50% дало бы 500
	rule.MaxDiscountAmount = ptr.Ptr(120.0)

	result := ComposeDiscounts(DiscountInput{
		Subtotal:     1000,
		DurationDays: 4,
		Rules:        []*AutomaticDiscountRule{rule},
		Now:          discountNow,
	})

	assert.Equal(t, 120.0, result.AutoDiscountAmount)
}

func TestComposeDiscounts_CodeMinOrderAmount(t *testing.T) {
	code := validCode("MIN500")
	code.MinOrderAmount = ptr.Ptr(500.0)

	// Сумма ниже порога - код не применяется
	below := ComposeDiscounts(DiscountInput{
		Subtotal: 300, DurationDays: 2, Code: code, Now: discountNow,
	})
	assert.Equal(t, 0.0, below.CodeDiscountAmount)

	// Сумма на пороге - применяется
	atThreshold := ComposeDiscounts(DiscountInput{
		Subtotal: 500, DurationDays: 2, Code: code, Now: discountNow,
	})
	assert.Equal(t, 50.0, atThreshold.CodeDiscountAmount)
}

func TestComposeDiscounts_NeverNegative(t *testing.T) {
	// Фиксированный код больше суммы заказа: скидка обрезается по subtotal,
	// итог не уходит в минус даже вместе с VIP скидкой
	code := validCode("HUGE")
	code.DiscountValue = 10000

	result := ComposeDiscounts(DiscountInput{
		Subtotal:     80,
		DurationDays: 2,
		Code:         code,
		Loyalty:      LoyaltyProfile{IsVIP: true, VIPDiscountPercent: 50},
		Now:          discountNow,
	})

	assert.Equal(t, 80.0, result.CodeDiscountAmount)
	assert.Equal(t, 0.0, result.VIPDiscountAmount)
	assert.Equal(t, 0.0, result.FinalAmount)
	assert.GreaterOrEqual(t, result.FinalAmount, 0.0)
	assert.LessOrEqual(t, result.FinalAmount, 80.0)
}

func TestComposeDiscounts_ExhaustedCodeIgnored(t *testing.T) {
	code := validCode("USED")
	code.UsageLimit = 1
	code.UsedCount = 1

	result := ComposeDiscounts(DiscountInput{
		Subtotal: 200, DurationDays: 2, Code: code, Now: discountNow,
	})

	assert.Equal(t, 0.0, result.CodeDiscountAmount)
	assert.Nil(t, result.AppliedCode)
}

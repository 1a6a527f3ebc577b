package calculate_price

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	storageDiscount "github.com/m04kA/SMC-ParkingService/internal/infra/storage/discount"
	storageLot "github.com/m04kA/SMC-ParkingService/internal/infra/storage/lot"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/userservice"
	"github.com/m04kA/SMC-ParkingService/pkg/ptr"
	"github.com/m04kA/SMC-ParkingService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type mockLots struct {
	lot *domain.Lot
	err error
}

func (m *mockLots) GetByID(_ context.Context, _ int64) (*domain.Lot, error) {
	return m.lot, m.err
}

type mockAddons struct {
	addons []*domain.AddOnService
	err    error
}

func (m *mockAddons) GetActiveByIDs(_ context.Context, _ []int64) ([]*domain.AddOnService, error) {
	return m.addons, m.err
}

type mockDiscounts struct {
	code    *domain.DiscountCode
	codeErr error
	rules   []*domain.AutomaticDiscountRule
	ruleErr error
}

func (m *mockDiscounts) GetCodeByCode(_ context.Context, _ string) (*domain.DiscountCode, error) {
	return m.code, m.codeErr
}

func (m *mockDiscounts) GetActiveRulesForLot(_ context.Context, _ int64, _ time.Time) ([]*domain.AutomaticDiscountRule, error) {
	return m.rules, m.ruleErr
}

type mockUsers struct {
	profile *userservice.LoyaltyProfile
	err     error
}

func (m *mockUsers) GetLoyaltyProfileWithGracefulDegradation(_ context.Context, _ int64) (*userservice.LoyaltyProfile, error) {
	return m.profile, m.err
}

func mustLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	return loc
}

func day(t *testing.T, loc *time.Location, d string, hour int) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02", d, loc)
	require.NoError(t, err)
	return parsed.Add(time.Duration(hour) * time.Hour)
}

func cutoffDisabled() domain.CutoffPolicy {
	return domain.CutoffPolicy{}
}

func cutoffAt(t *testing.T, hhmm string) domain.CutoffPolicy {
	t.Helper()
	hour, err := types.NewTimeStringFromString(hhmm)
	require.NoError(t, err)
	return domain.CutoffPolicy{Enabled: true, Hour: hour}
}

func activeLot() *domain.Lot {
	return &domain.Lot{ID: 1, IsActive: true, TotalSpaces: 10, BaseDailyRate: 100}
}

func newUseCase(
	t *testing.T,
	lots *mockLots,
	addons *mockAddons,
	discounts *mockDiscounts,
	users *mockUsers,
	cutoff domain.CutoffPolicy,
	now time.Time,
) *UseCase {
	t.Helper()
	return NewUseCase(lots, addons, discounts, users, cutoff, mustLocation(t), 10, fixedTime{now: now}, nopLogger{})
}

func TestExecute_BaseQuote(t *testing.T) {
	loc := mustLocation(t)
	now := day(t, loc, "2025-06-30", 12)
	uc := newUseCase(t, &mockLots{lot: activeLot()}, &mockAddons{}, &mockDiscounts{}, &mockUsers{err: userservice.ErrProfileNotFound}, cutoffDisabled(), now)

	resp, err := uc.Execute(context.Background(), Request{
		LotID:        1,
		UserID:       7,
		CheckIn:      day(t, loc, "2025-07-01", 10),
		CheckOut:     day(t, loc, "2025-07-03", 10),
		VehicleCount: 1,
	})

	require.NoError(t, err)
	// Две ночи - две тарифицируемых дня, день выезда не тарифицируется
	assert.Equal(t, 2, resp.DurationDays)
	assert.Equal(t, 200.0, resp.Subtotal)
	assert.Equal(t, 200.0, resp.FinalAmount)
	assert.Len(t, resp.DailyBreakdown, 2)
	assert.Nil(t, resp.AppliedRuleID)
	assert.Nil(t, resp.AppliedCode)
}

func TestExecute_CutoffAndVehicles(t *testing.T) {
	loc := mustLocation(t)
	now := day(t, loc, "2025-06-30", 12)
	uc := newUseCase(t, &mockLots{lot: activeLot()}, &mockAddons{}, &mockDiscounts{}, &mockUsers{err: userservice.ErrProfileNotFound}, cutoffAt(t, "18:00"), now)

	resp, err := uc.Execute(context.Background(), Request{
		LotID:        1,
		UserID:       7,
		CheckIn:      day(t, loc, "2025-07-01", 19), // после отсечки
		CheckOut:     day(t, loc, "2025-07-03", 10),
		VehicleCount: 2,
	})

	require.NoError(t, err)
	// Первый день бесплатный, второй день за две машины
	assert.Equal(t, 2, resp.DurationDays)
	assert.Equal(t, 200.0, resp.Subtotal)
	require.Len(t, resp.DailyBreakdown, 2)
	assert.False(t, resp.DailyBreakdown[0].Chargeable)
	assert.Equal(t, 0.0, resp.DailyBreakdown[0].Price)
	assert.Equal(t, 200.0, resp.DailyBreakdown[1].Price)
}

func TestExecute_AddonsChargedPerVehicle(t *testing.T) {
	loc := mustLocation(t)
	now := day(t, loc, "2025-06-30", 12)
	addons := &mockAddons{addons: []*domain.AddOnService{
		{ID: 1, Name: "Мойка", Price: 30, IsActive: true},
	}}
	uc := newUseCase(t, &mockLots{lot: activeLot()}, addons, &mockDiscounts{}, &mockUsers{err: userservice.ErrProfileNotFound}, cutoffDisabled(), now)

	resp, err := uc.Execute(context.Background(), Request{
		LotID:        1,
		UserID:       7,
		CheckIn:      day(t, loc, "2025-07-01", 10),
		CheckOut:     day(t, loc, "2025-07-04", 10),
		VehicleCount: 2,
		AddonIDs:     []int64{1},
	})

	require.NoError(t, err)
	// Услуга взимается один раз за каждую машину, не за каждый день
	assert.Equal(t, 60.0, resp.AddonTotal)
	assert.Equal(t, 660.0, resp.Subtotal)
}

func TestExecute_VIPDiscountFromProfile(t *testing.T) {
	loc := mustLocation(t)
	now := day(t, loc, "2025-06-30", 12)
	users := &mockUsers{profile: &userservice.LoyaltyProfile{UserID: 7, IsVIP: true, VIPDiscountPercent: 15}}
	uc := newUseCase(t, &mockLots{lot: activeLot()}, &mockAddons{}, &mockDiscounts{}, users, cutoffDisabled(), now)

	resp, err := uc.Execute(context.Background(), Request{
		LotID:        1,
		UserID:       7,
		CheckIn:      day(t, loc, "2025-07-01", 10),
		CheckOut:     day(t, loc, "2025-07-03", 10),
		VehicleCount: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, 30.0, resp.VIPDiscountAmount)
	assert.Equal(t, 170.0, resp.FinalAmount)
}

func TestExecute_GracefulDegradationUsesFallback(t *testing.T) {
	loc := mustLocation(t)
	now := day(t, loc, "2025-06-30", 12)
	users := &mockUsers{err: userservice.ErrServiceDegraded}
	uc := newUseCase(t, &mockLots{lot: activeLot()}, &mockAddons{}, &mockDiscounts{}, users, cutoffDisabled(), now)

	resp, err := uc.Execute(context.Background(), Request{
		LotID:        1,
		UserID:       7,
		CheckIn:      day(t, loc, "2025-07-01", 10),
		CheckOut:     day(t, loc, "2025-07-03", 10),
		VehicleCount: 1,
		LoyaltyFallback: &LoyaltyFallback{
			IsVIP:              true,
			VIPDiscountPercent: ptr.Ptr(20.0),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 40.0, resp.VIPDiscountAmount)
	assert.Equal(t, 160.0, resp.FinalAmount)
}

func TestExecute_CodeAgainstRawSubtotal(t *testing.T) {
	loc := mustLocation(t)
	now := day(t, loc, "2025-06-30", 12)
	discounts := &mockDiscounts{
		code: &domain.DiscountCode{
			ID:            1,
			Code:          "SUMMER10",
			Kind:          domain.DiscountPercentage,
			DiscountValue: 10,
			ValidFrom:     now.Add(-time.Hour),
			ValidUntil:    now.Add(time.Hour * 24 * 30),
			IsActive:      true,
		},
	}
	uc := newUseCase(t, &mockLots{lot: activeLot()}, &mockAddons{}, discounts, &mockUsers{err: userservice.ErrProfileNotFound}, cutoffDisabled(), now)

	resp, err := uc.Execute(context.Background(), Request{
		LotID:        1,
		UserID:       7,
		CheckIn:      day(t, loc, "2025-07-01", 10),
		CheckOut:     day(t, loc, "2025-07-03", 10),
		VehicleCount: 1,
		DiscountCode: ptr.Ptr("SUMMER10"),
	})

	require.NoError(t, err)
	assert.Equal(t, 20.0, resp.CodeDiscountAmount)
	assert.Equal(t, 180.0, resp.FinalAmount)
	require.NotNil(t, resp.AppliedCode)
	assert.Equal(t, "SUMMER10", *resp.AppliedCode)
}

func TestExecute_CodeNotFound(t *testing.T) {
	loc := mustLocation(t)
	now := day(t, loc, "2025-06-30", 12)
	discounts := &mockDiscounts{codeErr: storageDiscount.ErrCodeNotFound}
	uc := newUseCase(t, &mockLots{lot: activeLot()}, &mockAddons{}, discounts, &mockUsers{err: userservice.ErrProfileNotFound}, cutoffDisabled(), now)

	_, err := uc.Execute(context.Background(), Request{
		LotID:        1,
		UserID:       7,
		CheckIn:      day(t, loc, "2025-07-01", 10),
		CheckOut:     day(t, loc, "2025-07-03", 10),
		VehicleCount: 1,
		DiscountCode: ptr.Ptr("TYPO"),
	})

	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestExecute_ExpiredCodeRejected(t *testing.T) {
	loc := mustLocation(t)
	now := day(t, loc, "2025-06-30", 12)
	discounts := &mockDiscounts{
		code: &domain.DiscountCode{
			ID:            1,
			Code:          "OLD",
			Kind:          domain.DiscountPercentage,
			DiscountValue: 10,
			ValidFrom:     now.Add(-time.Hour * 48),
			ValidUntil:    now.Add(-time.Hour * 24),
			IsActive:      true,
		},
	}
	uc := newUseCase(t, &mockLots{lot: activeLot()}, &mockAddons{}, discounts, &mockUsers{err: userservice.ErrProfileNotFound}, cutoffDisabled(), now)

	_, err := uc.Execute(context.Background(), Request{
		LotID:        1,
		UserID:       7,
		CheckIn:      day(t, loc, "2025-07-01", 10),
		CheckOut:     day(t, loc, "2025-07-03", 10),
		VehicleCount: 1,
		DiscountCode: ptr.Ptr("OLD"),
	})

	assert.ErrorIs(t, err, ErrCodeNotApplicable)
}

func TestExecute_AutoRuleThenCodeThenVIP(t *testing.T) {
	loc := mustLocation(t)
	now := day(t, loc, "2025-06-30", 12)
	discounts := &mockDiscounts{
		rules: []*domain.AutomaticDiscountRule{
			{
				ID:                   1,
				Name:                 "Неделя и дольше",
				MinDays:              5,
				MaxDays:              365,
				Kind:                 domain.DiscountPercentage,
				DiscountValue:        10,
				AllowCodeCombination: true,
				ValidFrom:            now.Add(-time.Hour),
				ValidUntil:           now.Add(time.Hour * 24 * 90),
				Eligibility:          domain.EligibilityAll,
				IsActive:             true,
			},
		},
		code: &domain.DiscountCode{
			ID:            2,
			Code:          "EXTRA5",
			Kind:          domain.DiscountPercentage,
			DiscountValue: 5,
			ValidFrom:     now.Add(-time.Hour),
			ValidUntil:    now.Add(time.Hour * 24 * 30),
			IsActive:      true,
		},
	}
	users := &mockUsers{profile: &userservice.LoyaltyProfile{UserID: 7, IsVIP: true, VIPDiscountPercent: 10}}
	uc := newUseCase(t, &mockLots{lot: activeLot()}, &mockAddons{}, discounts, users, cutoffDisabled(), now)

	resp, err := uc.Execute(context.Background(), Request{
		LotID:        1,
		UserID:       7,
		CheckIn:      day(t, loc, "2025-07-01", 10),
		CheckOut:     day(t, loc, "2025-07-11", 10),
		VehicleCount: 1,
		DiscountCode: ptr.Ptr("EXTRA5"),
	})

	require.NoError(t, err)
	// 1000 - 100 (правило) - 50 (код от исходной суммы) - 85 (VIP от остатка)
	assert.Equal(t, 1000.0, resp.Subtotal)
	assert.Equal(t, 100.0, resp.AutoDiscountAmount)
	assert.Equal(t, 50.0, resp.CodeDiscountAmount)
	assert.Equal(t, 85.0, resp.VIPDiscountAmount)
	assert.Equal(t, 235.0, resp.DiscountTotal)
	assert.Equal(t, 765.0, resp.FinalAmount)
	require.NotNil(t, resp.AppliedRuleID)
	assert.Equal(t, int64(1), *resp.AppliedRuleID)
}

func TestExecute_LotNotFound(t *testing.T) {
	loc := mustLocation(t)
	now := day(t, loc, "2025-06-30", 12)
	uc := newUseCase(t, &mockLots{err: storageLot.ErrLotNotFound}, &mockAddons{}, &mockDiscounts{}, &mockUsers{err: userservice.ErrProfileNotFound}, cutoffDisabled(), now)

	_, err := uc.Execute(context.Background(), Request{
		LotID:        42,
		CheckIn:      day(t, loc, "2025-07-01", 10),
		CheckOut:     day(t, loc, "2025-07-03", 10),
		VehicleCount: 1,
	})

	assert.ErrorIs(t, err, ErrLotNotFound)
}

func TestExecute_AnonymousQuote(t *testing.T) {
	loc := mustLocation(t)
	now := day(t, loc, "2025-06-30", 12)
	// UserID не передан: профиль лояльности не запрашивается
	users := &mockUsers{err: userservice.ErrServiceDegraded}
	uc := newUseCase(t, &mockLots{lot: activeLot()}, &mockAddons{}, &mockDiscounts{}, users, cutoffDisabled(), now)

	resp, err := uc.Execute(context.Background(), Request{
		LotID:        1,
		CheckIn:      day(t, loc, "2025-07-01", 10),
		CheckOut:     day(t, loc, "2025-07-03", 10),
		VehicleCount: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, 0.0, resp.VIPDiscountAmount)
	assert.Equal(t, 200.0, resp.FinalAmount)
}

package discount

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

// Переиспользуем интерфейс из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий каталога скидок: автоматические правила и промокоды.
// Каталог ведёт административный контур; движок читает его и атомарно
// инкрементирует счётчики использования при успешном бронировании
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория скидок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetCodeByCode получает промокод по строке кода
func (r *Repository) GetCodeByCode(ctx context.Context, code string) (*domain.DiscountCode, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"code",
		"kind",
		"discount_value",
		"min_order_amount",
		"max_discount_amount",
		"valid_from",
		"valid_until",
		"usage_limit",
		"used_count",
		"is_active",
	).
		From("discount_codes").
		Where(squirrel.Eq{"code": code}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetCodeByCode - build select query: %v", ErrBuildQuery, err)
	}

	var c domain.DiscountCode
	var kind string

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&c.ID,
		&c.Code,
		&kind,
		&c.DiscountValue,
		&c.MinOrderAmount,
		&c.MaxDiscountAmount,
		&c.ValidFrom,
		&c.ValidUntil,
		&c.UsageLimit,
		&c.UsedCount,
		&c.IsActive,
	)

	if err == sql.ErrNoRows {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetCodeByCode - scan code: %w", ErrScanRow, err)
	}

	c.Kind = domain.DiscountKind(kind)
	return &c, nil
}

// GetActiveRulesForLot получает автоматические правила, потенциально применимые
// к парковке в момент now. Окно действия и активность фильтруются запросом,
// точная применимость (длительность, клиент, лимит) решается в domain
func (r *Repository) GetActiveRulesForLot(ctx context.Context, lotID int64, now time.Time) ([]*domain.AutomaticDiscountRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"lot_ids",
		"min_days",
		"max_days",
		"kind",
		"discount_value",
		"max_discount_amount",
		"allow_code_combination",
		"priority",
		"valid_from",
		"valid_until",
		"usage_limit",
		"used_count",
		"eligibility",
		"allowed_user_ids",
		"is_active",
	).
		From("automatic_discount_rules").
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.LtOrEq{"valid_from": now}).
		Where(squirrel.GtOrEq{"valid_until": now}).
		Where(squirrel.Or{
			squirrel.Expr("lot_ids = '{}'"),
			squirrel.Expr("? = ANY(lot_ids)", lotID),
		}).
		OrderBy("priority DESC, id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveRulesForLot - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveRulesForLot - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	rules := make([]*domain.AutomaticDiscountRule, 0)
	for rows.Next() {
		var rule domain.AutomaticDiscountRule
		var kind, eligibility string

		if err := rows.Scan(
			&rule.ID,
			&rule.Name,
			pq.Array(&rule.LotIDs),
			&rule.MinDays,
			&rule.MaxDays,
			&kind,
			&rule.DiscountValue,
			&rule.MaxDiscountAmount,
			&rule.AllowCodeCombination,
			&rule.Priority,
			&rule.ValidFrom,
			&rule.ValidUntil,
			&rule.UsageLimit,
			&rule.UsedCount,
			&eligibility,
			pq.Array(&rule.AllowedUserIDs),
			&rule.IsActive,
		); err != nil {
			return nil, fmt.Errorf("%w: GetActiveRulesForLot - scan row: %w", ErrScanRow, err)
		}

		rule.Kind = domain.DiscountKind(kind)
		rule.Eligibility = domain.DiscountEligibility(eligibility)
		rules = append(rules, &rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetActiveRulesForLot - rows error: %w", ErrScanRow, err)
	}

	return rules, nil
}

// IncrementCodeUsage атомарно инкрементирует счётчик использования промокода.
// Условие в запросе защищает лимит от гонки: при usage_limit = 1 две
// одновременные транзакции не пройдут обе
func (r *Repository) IncrementCodeUsage(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("discount_codes").
		Set("used_count", squirrel.Expr("used_count + 1")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Or{
			squirrel.Eq{"usage_limit": 0},
			squirrel.Expr("used_count < usage_limit"),
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: IncrementCodeUsage - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: IncrementCodeUsage - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: IncrementCodeUsage - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrUsageExhausted
	}

	return nil
}

// IncrementRuleUsage атомарно инкрементирует счётчик использования
// автоматического правила, с тем же условием защиты лимита
func (r *Repository) IncrementRuleUsage(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("automatic_discount_rules").
		Set("used_count", squirrel.Expr("used_count + 1")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Or{
			squirrel.Eq{"usage_limit": 0},
			squirrel.Expr("used_count < usage_limit"),
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: IncrementRuleUsage - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: IncrementRuleUsage - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: IncrementRuleUsage - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrUsageExhausted
	}

	return nil
}

package lot

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/calendar"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

// Repository репозиторий для чтения парковок и их тарифов
// Справочник парковок редактируется административным контуром,
// движок бронирования его только читает
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория парковок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает парковку вместе со специальными тарифами
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Lot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"is_active",
		"total_spaces",
		"base_daily_rate",
		"created_at",
		"updated_at",
	).
		From("lots").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var lot domain.Lot
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&lot.ID,
		&lot.Name,
		&lot.IsActive,
		&lot.TotalSpaces,
		&lot.BaseDailyRate,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrLotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan lot: %w", ErrScanRow, err)
	}

	lot.CreatedAt = createdAt.Time
	lot.UpdatedAt = updatedAt.Time

	rates, err := r.getSpecialRates(ctx, id)
	if err != nil {
		return nil, err
	}
	lot.SpecialRates = rates

	return &lot, nil
}

// getSpecialRates получает специальные тарифы парковки
// Сортировка стабильная (priority DESC, id DESC), но выбор победителя
// при пересечении диапазонов делает domain.ResolveRate, не порядок выборки
func (r *Repository) getSpecialRates(ctx context.Context, lotID int64) ([]domain.SpecialRateRange, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"lot_id",
		"start_day",
		"end_day",
		"price",
		"label",
		"priority",
	).
		From("special_rate_ranges").
		Where(squirrel.Eq{"lot_id": lotID}).
		OrderBy("priority DESC, id DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getSpecialRates - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getSpecialRates - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	rates := make([]domain.SpecialRateRange, 0)
	for rows.Next() {
		var rate domain.SpecialRateRange
		var startDay, endDay string

		if err := rows.Scan(
			&rate.ID,
			&rate.LotID,
			&startDay,
			&endDay,
			&rate.Price,
			&rate.Label,
			&rate.Priority,
		); err != nil {
			return nil, fmt.Errorf("%w: getSpecialRates - scan row: %w", ErrScanRow, err)
		}

		rate.StartDay = calendar.DayKey(startDay)
		rate.EndDay = calendar.DayKey(endDay)
		rates = append(rates, rate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getSpecialRates - rows error: %w", ErrScanRow, err)
	}

	return rates, nil
}

package blackout

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/calendar"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

// Переиспользуем интерфейс из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий для чтения запретов бронирования
// Справочник ведёт административный контур, движок его только читает
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория запретов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetActiveForLotInRange получает активные запреты парковки, чей день
// попадает в диапазон [fromDay, toDay] включительно
func (r *Repository) GetActiveForLotInRange(ctx context.Context, lotID int64, fromDay, toDay calendar.DayKey) ([]*domain.BlackoutDay, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"b.id",
		"b.day",
		"b.is_active",
		"b.reason",
	).
		From("blackout_days b").
		Join("blackout_day_lots bl ON bl.blackout_day_id = b.id").
		Where(squirrel.Eq{"bl.lot_id": lotID}).
		Where(squirrel.Eq{"b.is_active": true}).
		Where(squirrel.GtOrEq{"b.day": fromDay.String()}).
		Where(squirrel.LtOrEq{"b.day": toDay.String()}).
		OrderBy("b.day ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveForLotInRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveForLotInRange - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	blackouts := make([]*domain.BlackoutDay, 0)
	for rows.Next() {
		var b domain.BlackoutDay
		var day string

		if err := rows.Scan(&b.ID, &day, &b.IsActive, &b.Reason); err != nil {
			return nil, fmt.Errorf("%w: GetActiveForLotInRange - scan row: %w", ErrScanRow, err)
		}

		b.Day = calendar.DayKey(day)
		// Выборка уже отфильтрована по парковке
		b.LotIDs = []int64{lotID}
		blackouts = append(blackouts, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetActiveForLotInRange - rows error: %w", ErrScanRow, err)
	}

	return blackouts, nil
}

package addon

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

// Переиспользуем интерфейс из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий для чтения каталога дополнительных услуг
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория услуг
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetActiveByIDs получает активные услуги по списку идентификаторов.
// Если какая-то из запрошенных услуг не найдена или неактивна,
// возвращает ErrAddonNotFound - заказ с неизвестной услугой не считается
func (r *Repository) GetActiveByIDs(ctx context.Context, ids []int64) ([]*domain.AddOnService, error) {
	if len(ids) == 0 {
		return []*domain.AddOnService{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"price",
		"is_active",
	).
		From("addon_services").
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByIDs - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	addons := make([]*domain.AddOnService, 0, len(ids))
	for rows.Next() {
		var a domain.AddOnService
		if err := rows.Scan(&a.ID, &a.Name, &a.Price, &a.IsActive); err != nil {
			return nil, fmt.Errorf("%w: GetActiveByIDs - scan row: %w", ErrScanRow, err)
		}
		addons = append(addons, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetActiveByIDs - rows error: %w", ErrScanRow, err)
	}

	if len(addons) != len(uniqueIDs(ids)) {
		return nil, ErrAddonNotFound
	}

	return addons, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

package reservation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/calendar"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var reservationColumns = []string{
	"id",
	"user_id",
	"lot_id",
	"check_in",
	"check_out",
	"vehicle_count",
	"status",
	"is_deleted",
	"vehicle_plate",
	"vehicle_model",
	"notes",
	"subtotal",
	"auto_discount_amount",
	"code_discount_amount",
	"vip_discount_amount",
	"discount_total",
	"final_amount",
	"applied_rule_id",
	"applied_code",
	"daily_breakdown",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// breakdownItem строка суточной детализации в JSON представлении
type breakdownItem struct {
	Day        string  `json:"day"`
	Price      float64 `json:"price"`
	RatePrice  float64 `json:"ratePrice"`
	IsOverride bool    `json:"isOverride"`
	Label      string  `json:"label,omitempty"`
	Chargeable bool    `json:"chargeable"`
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция, использует её - при создании
// с проверкой доступности это обязательно (защита от гонки на вместимость).
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	breakdown, err := encodeBreakdown(res.Breakdown)
	if err != nil {
		return nil, err
	}

	query, args, err := psqlbuilder.Insert("reservations").
		Columns(
			"user_id",
			"lot_id",
			"check_in",
			"check_out",
			"vehicle_count",
			"status",
			"is_deleted",
			"vehicle_plate",
			"vehicle_model",
			"notes",
			"subtotal",
			"auto_discount_amount",
			"code_discount_amount",
			"vip_discount_amount",
			"discount_total",
			"final_amount",
			"applied_rule_id",
			"applied_code",
			"daily_breakdown",
		).
		Values(
			res.UserID,
			res.LotID,
			res.CheckIn,
			res.CheckOut,
			res.VehicleCount,
			res.Status,
			res.IsDeleted,
			res.VehiclePlate,
			res.VehicleModel,
			res.Notes,
			res.Subtotal,
			res.AutoDiscountAmount,
			res.CodeDiscountAmount,
			res.VIPDiscountAmount,
			res.DiscountTotal,
			res.FinalAmount,
			res.AppliedRuleID,
			res.AppliedCode,
			breakdown,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&res.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return res, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := r.scanReservationRow(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %w", ErrScanRow, err)
	}

	return res, nil
}

// GetOverlappingForLot получает бронирования парковки, занимающие машиноместа
// и пересекающие полуоткрытый интервал [checkIn, checkOut).
// Внутри транзакции строки блокируются FOR UPDATE - на этой выборке держится
// сериализация последовательности "проверка вместимости + создание брони".
func (r *Repository) GetOverlappingForLot(ctx context.Context, lotID int64, checkIn, checkOut time.Time) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"lot_id": lotID}).
		Where(squirrel.Eq{"is_deleted": false}).
		Where(squirrel.Eq{"status": statusStrings(domain.OccupyingStatuses)}).
		Where(squirrel.Lt{"check_in": checkOut}).
		Where(squirrel.Gt{"check_out": checkIn}).
		OrderBy("check_in ASC, id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOverlappingForLot - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetOverlappingForLot - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanReservations(rows)
}

// GetByUserID получает список бронирований пользователя
// Опционально фильтрует по статусу; мягко удалённые не возвращаются
func (r *Repository) GetByUserID(ctx context.Context, userID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"is_deleted": false}).
		OrderBy("check_in DESC, id DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanReservations(rows)
}

// GetByLotWithFilter получает бронирования парковки с гибкой фильтрацией
// по периоду, статусу и включению неактивных (для менеджерского списка)
func (r *Repository) GetByLotWithFilter(ctx context.Context, filter domain.LotReservationsFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"lot_id": filter.LotID})

	// Период фильтруется по пересечению интервалов, не по точному совпадению
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.Gt{"check_out": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"check_in": *filter.EndDate})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.
			Where(squirrel.Eq{"is_deleted": false}).
			Where(squirrel.NotEq{"status": statusStrings(domain.InactiveStatuses)})
	}

	selectBuilder = selectBuilder.OrderBy("check_in DESC, id DESC")

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByLotWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByLotWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanReservations(rows)
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "UpdateStatus")
}

// Cancel отменяет бронирование с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "Cancel")
}

// SoftDelete мягко удаляет бронирование.
// Статус всегда переводится в cancelled тем же запросом: учёт занятости
// опирается на один предикат по статусу, второй флаг проверять не нужно
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("is_deleted", true).
		Set("status", domain.StatusCancelled).
		Set("cancelled_at", squirrel.Expr("COALESCE(cancelled_at, NOW())")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SoftDelete - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "SoftDelete")
}

// execExpectingRow выполняет запрос и требует ровно одну затронутую строку
func (r *Repository) execExpectingRow(ctx context.Context, executor DBExecutor, query string, args []interface{}, op string) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}

// scanReservationRow сканирует одну строку результата
func (r *Repository) scanReservationRow(row *sql.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	var breakdown []byte
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.LotID,
		&res.CheckIn,
		&res.CheckOut,
		&res.VehicleCount,
		&res.Status,
		&res.IsDeleted,
		&res.VehiclePlate,
		&res.VehicleModel,
		&res.Notes,
		&res.Subtotal,
		&res.AutoDiscountAmount,
		&res.CodeDiscountAmount,
		&res.VIPDiscountAmount,
		&res.DiscountTotal,
		&res.FinalAmount,
		&res.AppliedRuleID,
		&res.AppliedCode,
		&breakdown,
		&res.CancellationReason,
		&res.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	charges, err := decodeBreakdown(breakdown)
	if err != nil {
		return nil, err
	}
	res.Breakdown = charges

	return &res, nil
}

// scanReservations сканирует результаты запроса в слайс бронирований
func (r *Repository) scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		var res domain.Reservation
		var breakdown []byte
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&res.ID,
			&res.UserID,
			&res.LotID,
			&res.CheckIn,
			&res.CheckOut,
			&res.VehicleCount,
			&res.Status,
			&res.IsDeleted,
			&res.VehiclePlate,
			&res.VehicleModel,
			&res.Notes,
			&res.Subtotal,
			&res.AutoDiscountAmount,
			&res.CodeDiscountAmount,
			&res.VIPDiscountAmount,
			&res.DiscountTotal,
			&res.FinalAmount,
			&res.AppliedRuleID,
			&res.AppliedCode,
			&breakdown,
			&res.CancellationReason,
			&res.CancelledAt,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %w", ErrScanRow, err)
		}

		res.CreatedAt = createdAt.Time
		res.UpdatedAt = updatedAt.Time

		charges, err := decodeBreakdown(breakdown)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - decode breakdown: %w", ErrScanRow, err)
		}
		res.Breakdown = charges

		reservations = append(reservations, &res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows error: %w", ErrScanRow, err)
	}

	return reservations, nil
}

func encodeBreakdown(charges []domain.DayCharge) ([]byte, error) {
	items := make([]breakdownItem, 0, len(charges))
	for _, c := range charges {
		items = append(items, breakdownItem{
			Day:        c.Day.String(),
			Price:      c.Price,
			RatePrice:  c.RatePrice,
			IsOverride: c.IsOverride,
			Label:      c.Label,
			Chargeable: c.Chargeable,
		})
	}

	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeBreakdown, err)
	}
	return data, nil
}

func decodeBreakdown(data []byte) ([]domain.DayCharge, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var items []breakdownItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeBreakdown, err)
	}

	charges := make([]domain.DayCharge, 0, len(items))
	for _, item := range items {
		charges = append(charges, domain.DayCharge{
			Day:        calendar.DayKey(item.Day),
			Price:      item.Price,
			RatePrice:  item.RatePrice,
			IsOverride: item.IsOverride,
			Label:      item.Label,
			Chargeable: item.Chargeable,
		})
	}
	return charges, nil
}

func statusStrings(statuses []domain.ReservationStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}

package availability

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	"github.com/waelosamahelmi/saroistavaloon/pkg/dbmetrics"
	"github.com/waelosamahelmi/saroistavaloon/pkg/psqlbuilder"
)

var columns = []string{"id", "day_of_week", "start_time", "end_time", "active", "created_at"}

// Repository окна доступности в Postgres
type Repository struct {
	db dbmetrics.DBExecutor
}

func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет окно. Пересечения с другими окнами не проверяются
func (r *Repository) Create(ctx context.Context, w *domain.AvailabilityWindow) (*domain.AvailabilityWindow, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if w.ID == "" {
		w.ID = uuid.NewString()
	}

	query, args, err := psqlbuilder.Insert("availability_windows").
		Columns("id", "day_of_week", "start_time", "end_time", "active").
		Values(w.ID, w.DayOfWeek, w.StartTime, w.EndTime, w.Active).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&w.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return w, nil
}

// Delete удаляет окно
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrWindowNotFound
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("availability_windows").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrWindowNotFound
	}

	return nil
}

// List все окна, упорядоченные по дню недели и началу
func (r *Repository) List(ctx context.Context) ([]*domain.AvailabilityWindow, error) {
	return r.list(ctx, psqlbuilder.Select(columns...).From("availability_windows"), "List")
}

// ListActiveByDay активные окна на день недели
func (r *Repository) ListActiveByDay(ctx context.Context, dayOfWeek int) ([]*domain.AvailabilityWindow, error) {
	builder := psqlbuilder.Select(columns...).
		From("availability_windows").
		Where(squirrel.Eq{"day_of_week": dayOfWeek, "active": true})

	return r.list(ctx, builder, "ListActiveByDay")
}

func (r *Repository) list(ctx context.Context, builder squirrel.SelectBuilder, op string) ([]*domain.AvailabilityWindow, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.OrderBy("day_of_week ASC", "start_time ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	return scanWindows(rows)
}

func scanWindows(rows *sql.Rows) ([]*domain.AvailabilityWindow, error) {
	windows := make([]*domain.AvailabilityWindow, 0)

	for rows.Next() {
		var w domain.AvailabilityWindow
		if err := rows.Scan(&w.ID, &w.DayOfWeek, &w.StartTime, &w.EndTime, &w.Active, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanWindows - scan row: %v", ErrScanRow, err)
		}
		windows = append(windows, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanWindows - rows error: %v", ErrScanRow, err)
	}

	return windows, nil
}

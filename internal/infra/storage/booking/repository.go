package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	"github.com/waelosamahelmi/saroistavaloon/pkg/dbmetrics"
	"github.com/waelosamahelmi/saroistavaloon/pkg/psqlbuilder"
)

// Коды ошибок Postgres
const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
)

var columns = []string{
	"id",
	"service_id",
	"customer_id",
	"contact_name",
	"contact_email",
	"contact_phone",
	"start_time",
	"end_time",
	"duration_minutes",
	"status",
	"payment_status",
	"payment_method",
	"payment_link",
	"service_title",
	"price",
	"invoice_number",
	"invoice_due_date",
	"notes",
	"cancelled_at",
	"paid_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий бронирований в Postgres
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// LockCalendar берёт транзакционную advisory-блокировку календаря
// Все создания бронирований одного календаря выполняются строго по одному
// Работает только внутри транзакции: блокировка снимается при commit/rollback
func (r *Repository) LockCalendar(ctx context.Context, calendar string) error {
	tx, ok := dbmetrics.TxFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: LockCalendar - no transaction in context", ErrTransaction)
	}

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", calendar); err != nil {
		return fmt.Errorf("%w: LockCalendar - acquire lock: %v", ErrExecQuery, err)
	}

	return nil
}

// Create сохраняет новое бронирование
// Пересечение с активным бронированием ловится exclusion constraint и возвращается как ErrSlotNotAvailable
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"id",
			"service_id",
			"customer_id",
			"contact_name",
			"contact_email",
			"contact_phone",
			"start_time",
			"end_time",
			"duration_minutes",
			"status",
			"payment_status",
			"service_title",
			"price",
			"notes",
		).
		Values(
			b.ID,
			b.ServiceID,
			b.CustomerID,
			b.ContactName,
			b.ContactEmail,
			b.ContactPhone,
			b.StartTime,
			b.EndTime,
			b.DurationMinutes,
			b.Status,
			b.PaymentStatus,
			b.ServiceTitle,
			b.Price,
			b.Notes,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgExclusionViolation {
			return nil, ErrSlotNotAvailable
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return b, nil
}

// GetByID получает бронирование по ID
// Внутри пишущей транзакции строка блокируется (FOR UPDATE) до конца транзакции
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrBookingNotFound
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.CanLockRows(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	b, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return b, nil
}

// List возвращает бронирования по фильтру, отсортированные по времени начала
func (r *Repository) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From("bookings").
		OrderBy("start_time ASC")

	if filter.CustomerID != nil {
		builder = builder.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		builder = builder.Where(squirrel.Eq{"status": statuses})
	}
	if filter.StartFrom != nil {
		builder = builder.Where(squirrel.GtOrEq{"start_time": *filter.StartFrom})
	}
	if filter.StartTo != nil {
		builder = builder.Where(squirrel.Lt{"start_time": *filter.StartTo})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListOverlapping возвращает активные бронирования, пересекающие [start, end)
// Строки не блокируются: создания бронирований сериализует LockCalendar
func (r *Repository) ListOverlapping(ctx context.Context, start, end time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	statuses := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		statuses[i] = string(s)
	}

	builder := psqlbuilder.Select(columns...).
		From("bookings").
		Where(squirrel.Eq{"status": statuses}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start}).
		OrderBy("start_time ASC")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverlapping - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// Update сохраняет изменяемые поля жизненного цикла бронирования
func (r *Repository) Update(ctx context.Context, b *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", b.Status).
		Set("payment_status", b.PaymentStatus).
		Set("payment_method", b.PaymentMethod).
		Set("payment_link", b.PaymentLink).
		Set("invoice_number", b.InvoiceNumber).
		Set("invoice_due_date", b.InvoiceDueDate).
		Set("cancelled_at", b.CancelledAt).
		Set("paid_at", b.PaidAt).
		Set("updated_at", b.UpdatedAt).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: Update - duplicate invoice number: %v", ErrExecQuery, err)
		}
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking

	err := row.Scan(
		&b.ID,
		&b.ServiceID,
		&b.CustomerID,
		&b.ContactName,
		&b.ContactEmail,
		&b.ContactPhone,
		&b.StartTime,
		&b.EndTime,
		&b.DurationMinutes,
		&b.Status,
		&b.PaymentStatus,
		&b.PaymentMethod,
		&b.PaymentLink,
		&b.ServiceTitle,
		&b.Price,
		&b.InvoiceNumber,
		&b.InvoiceDueDate,
		&b.Notes,
		&b.CancelledAt,
		&b.PaidAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

package appointment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	"github.com/dvasko/SBP-AppointmentService/pkg/dbmetrics"
	"github.com/dvasko/SBP-AppointmentService/pkg/psqlbuilder"
)

// столбцы таблицы appointments в порядке сканирования
var appointmentColumns = []string{
	"id",
	"code",
	"client_name",
	"client_email",
	"client_phone",
	"service_id",
	"service_name",
	"service_duration_minutes",
	"professional_id",
	"professional_name",
	"professional_email",
	"start_at",
	"end_at",
	"status",
	"channel",
	"created_by_id",
	"created_by_role",
	"created_by_name",
	"created_by_email",
	"confirmed_by_id",
	"confirmed_by_role",
	"confirmed_by_name",
	"confirmed_by_email",
	"confirmed_at",
	"cancelled_by_id",
	"cancelled_by_role",
	"cancelled_by_name",
	"cancelled_by_email",
	"cancelled_at",
	"cancel_origin",
	"cancel_reason",
	"cancel_message",
	"no_show_by_id",
	"no_show_by_role",
	"no_show_by_name",
	"no_show_by_email",
	"no_show_at",
	"reminder_sent_at",
	"created_at",
	"updated_at",
}

// activeStatusStrings статусы, занимающие слот (для проверки конфликтов)
var activeStatusStrings = statusStrings(domain.ActiveStatuses)

func statusStrings(statuses []domain.AppointmentStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}

// Repository репозиторий для работы с записями на приём
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись на приём
// Вызывается только внутри сериализуемой транзакции usecase создания,
// после проверки пересечений через FindOverlapping
func (r *Repository) Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"code",
			"client_name",
			"client_email",
			"client_phone",
			"service_id",
			"service_name",
			"service_duration_minutes",
			"professional_id",
			"professional_name",
			"professional_email",
			"start_at",
			"end_at",
			"status",
			"channel",
			"created_by_id",
			"created_by_role",
			"created_by_name",
			"created_by_email",
		).
		Values(
			appointment.Code,
			appointment.ClientName,
			appointment.ClientEmail,
			appointment.ClientPhone,
			appointment.ServiceID,
			appointment.ServiceName,
			appointment.ServiceDurationMinutes,
			appointment.ProfessionalID,
			appointment.ProfessionalName,
			appointment.ProfessionalEmail,
			appointment.StartAt,
			appointment.EndAt,
			appointment.Status,
			appointment.Channel,
			appointment.Created.ActorID,
			appointment.Created.ActorRole,
			appointment.Created.ActorName,
			appointment.Created.ActorEmail,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&appointment.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	appointment.CreatedAt = createdAt.Time
	appointment.UpdatedAt = updatedAt.Time
	appointment.Created.At = &appointment.CreatedAt

	return appointment, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate получает запись по ID с блокировкой строки (FOR UPDATE)
// Используется внутри транзакций переходов жизненного цикла, чтобы guard
// вычислялся по актуальному статусу без окна потерянного обновления
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error) {
	return r.getByID(ctx, id, true)
}

func (r *Repository) getByID(ctx context.Context, id int64, forUpdate bool) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id})

	if forUpdate && dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	appointment, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}

	return appointment, nil
}

// FindOverlapping получает активные (pending/confirmed) записи мастера,
// пересекающиеся с интервалом [startAt, endAt)
// Внутри транзакции добавляет FOR UPDATE: блокировка существующих строк
// сериализует конкурирующие бронирования одного мастера
func (r *Repository) FindOverlapping(ctx context.Context, professionalID int64, startAt, endAt time.Time) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"professional_id": professionalID}).
		Where(squirrel.Eq{"status": activeStatusStrings}).
		Where(squirrel.Lt{"start_at": endAt}).
		Where(squirrel.Gt{"end_at": startAt}).
		OrderBy("start_at ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// FindActiveByProfessionalAndDate получает активные записи мастера на дату
// Используется генератором слотов для построения списка занятых интервалов
func (r *Repository) FindActiveByProfessionalAndDate(ctx context.Context, professionalID int64, date time.Time) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"professional_id": professionalID}).
		Where(squirrel.Eq{"status": activeStatusStrings}).
		Where(squirrel.GtOrEq{"start_at": dayStart}).
		Where(squirrel.Lt{"start_at": dayEnd}).
		OrderBy("start_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FindActiveByProfessionalAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindActiveByProfessionalAndDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ListWithFilter получает записи с фильтрацией и пагинацией
// Возвращает страницу записей и общее количество подходящих строк
func (r *Repository) ListWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	applyFilter := func(b squirrel.SelectBuilder) squirrel.SelectBuilder {
		if filter.Status != nil {
			b = b.Where(squirrel.Eq{"status": *filter.Status})
		}
		if filter.ProfessionalID != nil {
			b = b.Where(squirrel.Eq{"professional_id": *filter.ProfessionalID})
		}
		if filter.ServiceID != nil {
			b = b.Where(squirrel.Eq{"service_id": *filter.ServiceID})
		}
		if filter.StartDate != nil {
			b = b.Where(squirrel.GtOrEq{"start_at": *filter.StartDate})
		}
		if filter.EndDate != nil {
			b = b.Where(squirrel.Lt{"start_at": filter.EndDate.AddDate(0, 0, 1)})
		}
		if filter.Search != "" {
			pattern := "%" + filter.Search + "%"
			b = b.Where(squirrel.Or{
				squirrel.ILike{"client_name": pattern},
				squirrel.ILike{"client_email": pattern},
				squirrel.ILike{"client_phone": pattern},
				squirrel.ILike{"code": pattern},
			})
		}
		return b
	}

	countQuery, countArgs, err := applyFilter(psqlbuilder.Select("COUNT(*)").From("appointments")).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: ListWithFilter - build count query: %v", ErrBuildQuery, err)
	}

	var total int64
	if err := executor.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: ListWithFilter - scan count: %v", ErrScanRow, err)
	}

	order := "start_at DESC"
	if filter.SortAscending {
		order = "start_at ASC"
	}

	selectBuilder := applyFilter(psqlbuilder.Select(appointmentColumns...).From("appointments")).
		OrderBy(order).
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize))

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: ListWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: ListWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	appointments, err := scanAppointments(rows)
	if err != nil {
		return nil, 0, err
	}

	return appointments, total, nil
}

// Confirm переводит запись в статус confirmed с аудитом подтверждения
// Предикат по текущему статусу защищает от гонки с параллельным переходом
func (r *Repository) Confirm(ctx context.Context, id int64, audit domain.TransitionAudit) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", domain.StatusConfirmed).
		Set("confirmed_by_id", audit.ActorID).
		Set("confirmed_by_role", audit.ActorRole).
		Set("confirmed_by_name", audit.ActorName).
		Set("confirmed_by_email", audit.ActorEmail).
		Set("confirmed_at", audit.At).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Confirm - build update query: %v", ErrBuildQuery, err)
	}

	return r.execTransition(ctx, executor, "Confirm", query, args)
}

// Cancel переводит запись в статус cancelled с аудитом отмены
func (r *Repository) Cancel(
	ctx context.Context,
	id int64,
	audit domain.TransitionAudit,
	origin domain.CancelOrigin,
	reason domain.CancelReason,
	message *string,
) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", domain.StatusCancelled).
		Set("cancelled_by_id", audit.ActorID).
		Set("cancelled_by_role", audit.ActorRole).
		Set("cancelled_by_name", audit.ActorName).
		Set("cancelled_by_email", audit.ActorEmail).
		Set("cancelled_at", audit.At).
		Set("cancel_origin", origin).
		Set("cancel_reason", reason).
		Set("cancel_message", message).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execTransition(ctx, executor, "Cancel", query, args)
}

// MarkNoShow переводит запись в статус no_show с аудитом
func (r *Repository) MarkNoShow(ctx context.Context, id int64, audit domain.TransitionAudit) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", domain.StatusNoShow).
		Set("no_show_by_id", audit.ActorID).
		Set("no_show_by_role", audit.ActorRole).
		Set("no_show_by_name", audit.ActorName).
		Set("no_show_by_email", audit.ActorEmail).
		Set("no_show_at", audit.At).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkNoShow - build update query: %v", ErrBuildQuery, err)
	}

	return r.execTransition(ctx, executor, "MarkNoShow", query, args)
}

// FindPendingForReminder получает pending записи, начинающиеся в окне [from, to],
// для которых напоминание ещё не отправлялось
func (r *Repository) FindPendingForReminder(ctx context.Context, from, to time.Time) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"status": domain.StatusPending}).
		Where(squirrel.GtOrEq{"start_at": from}).
		Where(squirrel.LtOrEq{"start_at": to}).
		Where(squirrel.Eq{"reminder_sent_at": nil}).
		OrderBy("start_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FindPendingForReminder - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindPendingForReminder - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// MarkReminderSent ставит отметку об отправленном напоминании
func (r *Repository) MarkReminderSent(ctx context.Context, id int64, sentAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("reminder_sent_at", sentAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkReminderSent - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkReminderSent - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkReminderSent - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// FindPendingStartedBefore получает pending записи со start_at раньше cutoff
// Используется задачей автоматического no-show
func (r *Repository) FindPendingStartedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"status": domain.StatusPending}).
		Where(squirrel.Lt{"start_at": cutoff}).
		OrderBy("start_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FindPendingStartedBefore - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindPendingStartedBefore - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

func (r *Repository) execTransition(ctx context.Context, executor DBExecutor, method, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}

	if rowsAffected == 0 {
		return ErrStatusConflict
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAppointment сканирует одну строку в domain.Appointment
func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var a domain.Appointment
	var createdAt, updatedAt sql.NullTime
	var cancelOrigin, cancelReason sql.NullString

	err := row.Scan(
		&a.ID,
		&a.Code,
		&a.ClientName,
		&a.ClientEmail,
		&a.ClientPhone,
		&a.ServiceID,
		&a.ServiceName,
		&a.ServiceDurationMinutes,
		&a.ProfessionalID,
		&a.ProfessionalName,
		&a.ProfessionalEmail,
		&a.StartAt,
		&a.EndAt,
		&a.Status,
		&a.Channel,
		&a.Created.ActorID,
		&a.Created.ActorRole,
		&a.Created.ActorName,
		&a.Created.ActorEmail,
		&a.Confirmed.ActorID,
		&a.Confirmed.ActorRole,
		&a.Confirmed.ActorName,
		&a.Confirmed.ActorEmail,
		&a.Confirmed.At,
		&a.Cancelled.ActorID,
		&a.Cancelled.ActorRole,
		&a.Cancelled.ActorName,
		&a.Cancelled.ActorEmail,
		&a.Cancelled.At,
		&cancelOrigin,
		&cancelReason,
		&a.CancelMessage,
		&a.NoShow.ActorID,
		&a.NoShow.ActorRole,
		&a.NoShow.ActorName,
		&a.NoShow.ActorEmail,
		&a.NoShow.At,
		&a.ReminderSentAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time
	a.Created.At = &a.CreatedAt

	if cancelOrigin.Valid {
		origin := domain.CancelOrigin(cancelOrigin.String)
		a.CancelOrigin = &origin
	}
	if cancelReason.Valid {
		reason := domain.CancelReason(cancelReason.String)
		a.CancelReason = &reason
	}

	return &a, nil
}

// scanAppointments сканирует результаты запроса в слайс записей
func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}

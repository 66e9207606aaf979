package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	"github.com/dvasko/SBP-AppointmentService/pkg/dbmetrics"
	"github.com/dvasko/SBP-AppointmentService/pkg/psqlbuilder"
	"github.com/dvasko/SBP-AppointmentService/pkg/types"
)

// Переиспользуем интерфейс executor-а из dbmetrics
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий недельных расписаний и блокировок
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByProfessional получает недельное расписание мастера (7 дней + перерывы)
func (r *Repository) GetByProfessional(ctx context.Context, professionalID int64) (*domain.WeeklySchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	dayQuery, dayArgs, err := psqlbuilder.Select(
		"weekday",
		"active",
		"start_time",
		"end_time",
		"created_at",
		"updated_at",
	).
		From("weekly_schedule_days").
		Where(squirrel.Eq{"professional_id": professionalID}).
		OrderBy("weekday ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByProfessional - build days query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, dayQuery, dayArgs...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProfessional - execute days query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	schedule := &domain.WeeklySchedule{ProfessionalID: professionalID}

	for rows.Next() {
		var day domain.DayConfig
		var weekday int
		var start, end *types.TimeString
		var createdAt, updatedAt sql.NullTime

		if err := rows.Scan(&weekday, &day.Active, &start, &end, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: GetByProfessional - scan day: %v", ErrScanRow, err)
		}

		day.Weekday = time.Weekday(weekday)
		day.Start = start
		day.End = end
		schedule.Days = append(schedule.Days, day)
		schedule.CreatedAt = createdAt.Time
		schedule.UpdatedAt = updatedAt.Time
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByProfessional - days rows error: %v", ErrScanRow, err)
	}

	if len(schedule.Days) == 0 {
		return nil, ErrScheduleNotFound
	}

	breakQuery, breakArgs, err := psqlbuilder.Select(
		"weekday",
		"start_time",
		"end_time",
	).
		From("weekly_schedule_breaks").
		Where(squirrel.Eq{"professional_id": professionalID}).
		OrderBy("weekday ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByProfessional - build breaks query: %v", ErrBuildQuery, err)
	}

	breakRows, err := executor.QueryContext(ctx, breakQuery, breakArgs...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProfessional - execute breaks query: %v", ErrExecQuery, err)
	}
	defer breakRows.Close()

	for breakRows.Next() {
		var weekday int
		var br domain.Break

		if err := breakRows.Scan(&weekday, &br.Start, &br.End); err != nil {
			return nil, fmt.Errorf("%w: GetByProfessional - scan break: %v", ErrScanRow, err)
		}

		if day := schedule.DayFor(time.Weekday(weekday)); day != nil {
			day.Breaks = append(day.Breaks, br)
		}
	}
	if err := breakRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByProfessional - breaks rows error: %v", ErrScanRow, err)
	}

	return schedule, nil
}

// Replace полностью заменяет недельное расписание мастера
// Вызывается внутри транзакции: удаление и вставка атомарны
func (r *Repository) Replace(ctx context.Context, schedule *domain.WeeklySchedule) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	for _, table := range []string{"weekly_schedule_breaks", "weekly_schedule_days"} {
		query, args, err := psqlbuilder.Delete(table).
			Where(squirrel.Eq{"professional_id": schedule.ProfessionalID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: Replace - build delete query: %v", ErrBuildQuery, err)
		}
		if _, err := executor.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: Replace - execute delete: %v", ErrExecQuery, err)
		}
	}

	dayInsert := psqlbuilder.Insert("weekly_schedule_days").
		Columns("professional_id", "weekday", "active", "start_time", "end_time")
	for _, day := range schedule.Days {
		dayInsert = dayInsert.Values(schedule.ProfessionalID, int(day.Weekday), day.Active, day.Start, day.End)
	}

	query, args, err := dayInsert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: Replace - build days insert: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Replace - execute days insert: %v", ErrExecQuery, err)
	}

	breakInsert := psqlbuilder.Insert("weekly_schedule_breaks").
		Columns("professional_id", "weekday", "start_time", "end_time")
	hasBreaks := false
	for _, day := range schedule.Days {
		for _, br := range day.Breaks {
			breakInsert = breakInsert.Values(schedule.ProfessionalID, int(day.Weekday), br.Start, br.End)
			hasBreaks = true
		}
	}
	if !hasBreaks {
		return nil
	}

	query, args, err = breakInsert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: Replace - build breaks insert: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Replace - execute breaks insert: %v", ErrExecQuery, err)
	}

	return nil
}

// столбцы таблицы schedule_blocks в порядке сканирования
var blockColumns = []string{
	"id",
	"professional_id",
	"start_date",
	"end_date",
	"full_day",
	"start_time",
	"end_time",
	"reason",
	"created_at",
}

// CreateBlock создает блокировку расписания
func (r *Repository) CreateBlock(ctx context.Context, block *domain.ScheduleBlock) (*domain.ScheduleBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("schedule_blocks").
		Columns(
			"professional_id",
			"start_date",
			"end_date",
			"full_day",
			"start_time",
			"end_time",
			"reason",
		).
		Values(
			block.ProfessionalID,
			block.StartDate,
			block.EndDate,
			block.FullDay,
			block.Start,
			block.End,
			block.Reason,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateBlock - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&block.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateBlock - execute insert: %v", ErrExecQuery, err)
	}
	block.CreatedAt = createdAt.Time

	return block, nil
}

// FindBlocksForDate получает блокировки мастера, действующие на дату
func (r *Repository) FindBlocksForDate(ctx context.Context, professionalID int64, date time.Time) ([]*domain.ScheduleBlock, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return r.findBlocks(ctx, professionalID, &day, &day, false)
}

// FindBlocksInRange получает блокировки мастера, пересекающие диапазон дат
// Опционально принимает открытые границы
func (r *Repository) FindBlocksInRange(ctx context.Context, professionalID int64, from, to *time.Time) ([]*domain.ScheduleBlock, error) {
	return r.findBlocks(ctx, professionalID, from, to, false)
}

// FindBlocksInRangeForUpdate как FindBlocksInRange, но с блокировкой строк
// Используется при создании блокировки для проверки инварианта непересечения
func (r *Repository) FindBlocksInRangeForUpdate(ctx context.Context, professionalID int64, from, to *time.Time) ([]*domain.ScheduleBlock, error) {
	return r.findBlocks(ctx, professionalID, from, to, true)
}

func (r *Repository) findBlocks(ctx context.Context, professionalID int64, from, to *time.Time, forUpdate bool) ([]*domain.ScheduleBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(blockColumns...).
		From("schedule_blocks").
		Where(squirrel.Eq{"professional_id": professionalID}).
		OrderBy("start_date ASC")

	if to != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"start_date": *to})
	}
	if from != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"end_date": *from})
	}
	if forUpdate && dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: findBlocks - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: findBlocks - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	blocks := make([]*domain.ScheduleBlock, 0)
	for rows.Next() {
		var block domain.ScheduleBlock
		var createdAt sql.NullTime

		err := rows.Scan(
			&block.ID,
			&block.ProfessionalID,
			&block.StartDate,
			&block.EndDate,
			&block.FullDay,
			&block.Start,
			&block.End,
			&block.Reason,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: findBlocks - scan row: %v", ErrScanRow, err)
		}

		block.CreatedAt = createdAt.Time
		blocks = append(blocks, &block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: findBlocks - rows error: %v", ErrScanRow, err)
	}

	return blocks, nil
}

// GetBlockByID получает блокировку по ID
func (r *Repository) GetBlockByID(ctx context.Context, id int64) (*domain.ScheduleBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(blockColumns...).
		From("schedule_blocks").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetBlockByID - build select query: %v", ErrBuildQuery, err)
	}

	var block domain.ScheduleBlock
	var createdAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&block.ID,
		&block.ProfessionalID,
		&block.StartDate,
		&block.EndDate,
		&block.FullDay,
		&block.Start,
		&block.End,
		&block.Reason,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBlockByID - scan block: %v", ErrScanRow, err)
	}

	block.CreatedAt = createdAt.Time
	return &block, nil
}

// DeleteBlock удаляет блокировку расписания
func (r *Repository) DeleteBlock(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("schedule_blocks").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteBlock - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteBlock - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteBlock - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBlockNotFound
	}

	return nil
}

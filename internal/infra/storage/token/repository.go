package token

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

// Переиспользуем интерфейс executor-а из dbmetrics
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий токенов самостоятельной отмены
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория токенов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает токен отмены
// Вызывается в одной транзакции с созданием записи на приём
func (r *Repository) Create(ctx context.Context, token *domain.CancellationToken) (*domain.CancellationToken, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("cancellation_tokens").
		Columns("appointment_id", "secret", "expires_at").
		Values(token.AppointmentID, token.Secret, token.ExpiresAt).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&token.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}
	token.CreatedAt = createdAt.Time

	return token, nil
}

// GetBySecret получает токен по секрету
// Внутри транзакции блокирует строку: конкурентные попытки использовать
// один токен сериализуются, и вторая увидит used_at
func (r *Repository) GetBySecret(ctx context.Context, secret string) (*domain.CancellationToken, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"appointment_id",
		"secret",
		"expires_at",
		"used_at",
		"created_at",
	).
		From("cancellation_tokens").
		Where(squirrel.Eq{"secret": secret})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySecret - build select query: %v", ErrBuildQuery, err)
	}

	var token domain.CancellationToken
	var createdAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&token.ID,
		&token.AppointmentID,
		&token.Secret,
		&token.ExpiresAt,
		&token.UsedAt,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySecret - scan token: %v", ErrScanRow, err)
	}

	token.CreatedAt = createdAt.Time
	return &token, nil
}

// Consume помечает токен использованным
// Предикат used_at IS NULL гарантирует не более одного использования
func (r *Repository) Consume(ctx context.Context, id int64, usedAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("cancellation_tokens").
		Set("used_at", usedAt).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"used_at": nil}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Consume - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Consume - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Consume - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrTokenAlreadyUsed
	}

	return nil
}

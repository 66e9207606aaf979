package code

import (
	"context"
	"fmt"
	"time"

	"github.com/dvasko/SBP-AppointmentService/pkg/dbmetrics"
)

// Переиспользуем интерфейс executor-а из dbmetrics
type DBExecutor = dbmetrics.DBExecutor

// Repository выдаёт последовательные человекочитаемые коды записей
// Счётчик ведётся по префиксу год+месяц; значения монотонны и не переиспользуются
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория кодов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// upsert инкрементирует счётчик префикса и возвращает новое значение
// Конфликт по первичному ключу сериализует конкурентные вызовы
const nextCodeQuery = `
INSERT INTO appointment_codes (prefix, counter)
VALUES ($1, 1)
ON CONFLICT (prefix) DO UPDATE SET counter = appointment_codes.counter + 1
RETURNING counter`

// Next выдает следующий код для месяца даты создания, формат "YYMM-NNNN"
func (r *Repository) Next(ctx context.Context, at time.Time) (string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	prefix := at.Format("0601")

	var counter int64
	if err := executor.QueryRowContext(ctx, nextCodeQuery, prefix).Scan(&counter); err != nil {
		return "", fmt.Errorf("%w: Next - execute upsert: %v", ErrExecQuery, err)
	}

	return fmt.Sprintf("%s-%04d", prefix, counter), nil
}

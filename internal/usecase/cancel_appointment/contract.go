package cancel_appointment

import (
	"context"
	"time"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error)
	Cancel(
		ctx context.Context,
		id int64,
		audit domain.TransitionAudit,
		origin domain.CancelOrigin,
		reason domain.CancelReason,
		message *string,
	) error
}

// TokenRepository интерфейс репозитория токенов отмены
type TokenRepository interface {
	GetBySecret(ctx context.Context, secret string) (*domain.CancellationToken, error)
	Consume(ctx context.Context, id int64, usedAt time.Time) error
}

// EventPublisher интерфейс публикации доменных событий
type EventPublisher interface {
	PublishAsync(ctx context.Context, event domain.Event)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

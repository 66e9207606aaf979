package scheduler

import (
	"context"
	"time"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	"github.com/dvasko/SBP-AppointmentService/internal/usecase/mark_no_show"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	FindPendingForReminder(ctx context.Context, from, to time.Time) ([]*domain.Appointment, error)
	MarkReminderSent(ctx context.Context, id int64, sentAt time.Time) error
}

// NoShowUseCase интерфейс автоматической отметки неявок
type NoShowUseCase interface {
	ExecuteAuto(ctx context.Context) (*mark_no_show.AutoResult, error)
}

// EventPublisher интерфейс публикации доменных событий
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
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

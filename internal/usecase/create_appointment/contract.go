package create_appointment

import (
	"context"
	"time"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	"github.com/dvasko/SBP-AppointmentService/internal/integrations/catalogservice"
	"github.com/dvasko/SBP-AppointmentService/internal/integrations/identityservice"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error)
	FindOverlapping(ctx context.Context, professionalID int64, startAt, endAt time.Time) ([]*domain.Appointment, error)
}

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetByProfessional(ctx context.Context, professionalID int64) (*domain.WeeklySchedule, error)
	FindBlocksForDate(ctx context.Context, professionalID int64, date time.Time) ([]*domain.ScheduleBlock, error)
}

// TokenRepository интерфейс репозитория токенов отмены
type TokenRepository interface {
	Create(ctx context.Context, token *domain.CancellationToken) (*domain.CancellationToken, error)
}

// CodeRepository интерфейс аллокатора человекочитаемых кодов
type CodeRepository interface {
	Next(ctx context.Context, at time.Time) (string, error)
}

// IdentityServiceClient интерфейс клиента для IdentityService
type IdentityServiceClient interface {
	GetProfessional(ctx context.Context, professionalID int64) (*identityservice.Professional, error)
}

// CatalogServiceClient интерфейс клиента для CatalogService
type CatalogServiceClient interface {
	GetService(ctx context.Context, serviceID int64) (*catalogservice.Service, error)
	IsProfessionalAuthorized(ctx context.Context, professionalID, serviceID int64) (bool, error)
}

// EventPublisher интерфейс публикации доменных событий
type EventPublisher interface {
	PublishAsync(ctx context.Context, event domain.Event)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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

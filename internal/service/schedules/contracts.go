package schedules

import (
	"context"
	"time"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	"github.com/dvasko/SBP-AppointmentService/internal/integrations/identityservice"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetByProfessional(ctx context.Context, professionalID int64) (*domain.WeeklySchedule, error)
	Replace(ctx context.Context, schedule *domain.WeeklySchedule) error
	CreateBlock(ctx context.Context, block *domain.ScheduleBlock) (*domain.ScheduleBlock, error)
	FindBlocksInRange(ctx context.Context, professionalID int64, from, to *time.Time) ([]*domain.ScheduleBlock, error)
	FindBlocksInRangeForUpdate(ctx context.Context, professionalID int64, from, to *time.Time) ([]*domain.ScheduleBlock, error)
	GetBlockByID(ctx context.Context, id int64) (*domain.ScheduleBlock, error)
	DeleteBlock(ctx context.Context, id int64) error
}

// IdentityServiceClient интерфейс клиента для IdentityService
type IdentityServiceClient interface {
	GetProfessional(ctx context.Context, professionalID int64) (*identityservice.Professional, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

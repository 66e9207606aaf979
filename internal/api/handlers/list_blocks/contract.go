package list_blocks

import (
	"context"
	"time"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	"github.com/dvasko/SBP-AppointmentService/internal/service/schedules/models"
)

type SchedulesService interface {
	ListBlocks(ctx context.Context, professionalID int64, from, to *time.Time, actor domain.Actor) (*models.BlockListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

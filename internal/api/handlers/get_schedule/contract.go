package get_schedule

import (
	"context"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	"github.com/dvasko/SBP-AppointmentService/internal/service/schedules/models"
)

type SchedulesService interface {
	GetSchedule(ctx context.Context, professionalID int64, actor domain.Actor) (*models.ScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

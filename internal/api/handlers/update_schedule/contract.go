package update_schedule

import (
	"context"

	"github.com/dvasko/SBP-AppointmentService/internal/service/schedules/models"
)

type SchedulesService interface {
	ReplaceSchedule(ctx context.Context, req *models.ReplaceScheduleRequest) (*models.ScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package create_block

import (
	"context"

	"github.com/dvasko/SBP-AppointmentService/internal/service/schedules/models"
)

type SchedulesService interface {
	CreateBlock(ctx context.Context, req *models.CreateBlockRequest) (*models.BlockResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

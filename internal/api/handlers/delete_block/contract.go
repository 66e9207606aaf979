package delete_block

import (
	"context"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
)

type SchedulesService interface {
	DeleteBlock(ctx context.Context, blockID int64, actor domain.Actor) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package mark_no_show

import (
	"context"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	markNoShow "github.com/dvasko/SBP-AppointmentService/internal/usecase/mark_no_show"
)

type MarkNoShowUseCase interface {
	ExecuteByActor(ctx context.Context, req *markNoShow.Request) (*domain.Appointment, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

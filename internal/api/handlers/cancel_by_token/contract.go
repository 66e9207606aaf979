package cancel_by_token

import (
	"context"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	cancelAppointment "github.com/dvasko/SBP-AppointmentService/internal/usecase/cancel_appointment"
)

type CancelAppointmentUseCase interface {
	ExecuteByToken(ctx context.Context, req *cancelAppointment.TokenRequest) (*domain.Appointment, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

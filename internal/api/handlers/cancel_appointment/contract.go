package cancel_appointment

import (
	"context"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	cancelAppointment "github.com/dvasko/SBP-AppointmentService/internal/usecase/cancel_appointment"
)

type CancelAppointmentUseCase interface {
	ExecuteByActor(ctx context.Context, req *cancelAppointment.ActorRequest) (*domain.Appointment, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

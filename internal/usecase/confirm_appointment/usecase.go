package confirm_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	appointmentRepo "github.com/dvasko/SBP-AppointmentService/internal/infra/storage/appointment"
	"github.com/dvasko/SBP-AppointmentService/pkg/ptr"
)

// Request модель запроса на подтверждение записи
type Request struct {
	AppointmentID int64
	Actor         domain.Actor
}

// UseCase use case для подтверждения записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	publisher       EventPublisher
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	publisher EventPublisher,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		publisher:       publisher,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case подтверждения записи.
// Подтверждение разрешено только из статуса pending в окне
// [startAt-10m, startAt+10m] и только актору с правами на мастера.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*domain.Appointment, error) {
	uc.logger.Info("ConfirmAppointment: appointment=%d, actor=%d role=%s",
		req.AppointmentID, req.Actor.ID, req.Actor.Role)

	if req.AppointmentID <= 0 {
		return nil, fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}

	now := uc.timeProvider.Now()

	var confirmed *domain.Appointment

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		appointment, err := uc.appointmentRepo.GetByIDForUpdate(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				uc.logger.Warn("ConfirmAppointment: appointment id=%d not found", req.AppointmentID)
				return ErrAppointmentNotFound
			}
			uc.logger.Error("ConfirmAppointment: failed to get appointment id=%d: %v", req.AppointmentID, err)
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}

		if !req.Actor.CanActOn(appointment.ProfessionalID) {
			uc.logger.Warn("ConfirmAppointment: actor id=%d role=%s cannot act on professional id=%d",
				req.Actor.ID, req.Actor.Role, appointment.ProfessionalID)
			return ErrForbidden
		}

		if appointment.Status != domain.StatusPending {
			uc.logger.Warn("ConfirmAppointment: appointment id=%d is %s, not pending",
				appointment.ID, appointment.Status)
			return ErrNotPending
		}

		if now.Before(appointment.StartAt.Add(-domain.ConfirmationWindowBefore)) {
			uc.logger.Warn("ConfirmAppointment: appointment id=%d confirmation window not open, start=%s now=%s",
				appointment.ID, appointment.StartAt, now)
			return ErrTooEarly
		}
		if now.After(appointment.StartAt.Add(domain.ConfirmationWindowAfter)) {
			uc.logger.Warn("ConfirmAppointment: appointment id=%d confirmation window expired, start=%s now=%s",
				appointment.ID, appointment.StartAt, now)
			return ErrWindowExpired
		}

		audit := transitionAudit(req.Actor, now)
		if err := uc.appointmentRepo.Confirm(txCtx, appointment.ID, audit); err != nil {
			if errors.Is(err, appointmentRepo.ErrStatusConflict) {
				return ErrNotPending
			}
			uc.logger.Error("ConfirmAppointment: failed to confirm appointment id=%d: %v", appointment.ID, err)
			return fmt.Errorf("%w: failed to confirm appointment: %v", ErrInternal, err)
		}

		appointment.Status = domain.StatusConfirmed
		appointment.Confirmed = audit
		confirmed = appointment
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("ConfirmAppointment: confirmed appointment id=%d code=%s", confirmed.ID, confirmed.Code)

	uc.publisher.PublishAsync(ctx, domain.NewEvent(domain.EventConfirmed, confirmed, now))

	return confirmed, nil
}

func transitionAudit(actor domain.Actor, now time.Time) domain.TransitionAudit {
	return domain.TransitionAudit{
		ActorID:    ptr.Ptr(actor.ID),
		ActorRole:  ptr.Ptr(string(actor.Role)),
		ActorName:  ptr.Ptr(actor.Name),
		ActorEmail: ptr.Ptr(actor.Email),
		At:         &now,
	}
}

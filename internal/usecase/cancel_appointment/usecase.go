package cancel_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	appointmentRepo "github.com/dvasko/SBP-AppointmentService/internal/infra/storage/appointment"
	tokenRepo "github.com/dvasko/SBP-AppointmentService/internal/infra/storage/token"
	"github.com/dvasko/SBP-AppointmentService/pkg/ptr"
)

// ActorRequest модель запроса на отмену записи аутентифицированным актором
type ActorRequest struct {
	AppointmentID int64
	Actor         domain.Actor
	Message       *string // Опциональное сообщение для клиента
}

// TokenRequest модель запроса на отмену записи по одноразовому токену
type TokenRequest struct {
	Secret string
}

// UseCase use case для отмены записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	tokenRepo       TokenRepository
	publisher       EventPublisher
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	tokenRepo TokenRepository,
	publisher EventPublisher,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		tokenRepo:       tokenRepo,
		publisher:       publisher,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// ExecuteByActor отменяет запись от имени аутентифицированного актора.
// Отмена разрешена только из статуса pending и строго до дедлайна
// (за 10 минут до начала).
func (uc *UseCase) ExecuteByActor(ctx context.Context, req *ActorRequest) (*domain.Appointment, error) {
	uc.logger.Info("CancelAppointment: appointment=%d, actor=%d role=%s",
		req.AppointmentID, req.Actor.ID, req.Actor.Role)

	if req.AppointmentID <= 0 {
		return nil, fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}

	now := uc.timeProvider.Now()
	message := truncateMessage(req.Message)

	var cancelled *domain.Appointment

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		appointment, err := uc.appointmentRepo.GetByIDForUpdate(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				uc.logger.Warn("CancelAppointment: appointment id=%d not found", req.AppointmentID)
				return ErrAppointmentNotFound
			}
			uc.logger.Error("CancelAppointment: failed to get appointment id=%d: %v", req.AppointmentID, err)
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}

		if !req.Actor.CanActOn(appointment.ProfessionalID) {
			uc.logger.Warn("CancelAppointment: actor id=%d role=%s cannot act on professional id=%d",
				req.Actor.ID, req.Actor.Role, appointment.ProfessionalID)
			return ErrForbidden
		}

		if appointment.Status != domain.StatusPending {
			uc.logger.Warn("CancelAppointment: appointment id=%d is %s, not pending",
				appointment.ID, appointment.Status)
			return ErrNotPending
		}

		if !appointment.CanCancel(now) {
			uc.logger.Warn("CancelAppointment: deadline passed for appointment id=%d, start=%s now=%s",
				appointment.ID, appointment.StartAt, now)
			return ErrDeadlinePassed
		}

		audit := actorAudit(req.Actor, now)
		reason := reasonForRole(req.Actor.Role)

		err = uc.appointmentRepo.Cancel(txCtx, appointment.ID, audit, domain.CancelOriginInternal, reason, message)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrStatusConflict) {
				return ErrNotPending
			}
			uc.logger.Error("CancelAppointment: failed to cancel appointment id=%d: %v", appointment.ID, err)
			return fmt.Errorf("%w: failed to cancel appointment: %v", ErrInternal, err)
		}

		applyCancellation(appointment, audit, domain.CancelOriginInternal, reason, message)
		cancelled = appointment
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CancelAppointment: cancelled appointment id=%d code=%s by actor id=%d",
		cancelled.ID, cancelled.Code, req.Actor.ID)

	uc.publisher.PublishAsync(ctx, domain.NewEvent(domain.EventCanceled, cancelled, now))

	return cancelled, nil
}

// ExecuteByToken отменяет запись по одноразовому токену без аутентификации.
// Любой сбой предусловий (нет токена, истек, использован, запись не pending)
// сворачивается в один общий ErrInvalidToken, чтобы не раскрывать состояние
// чужих записей перебором секретов.
func (uc *UseCase) ExecuteByToken(ctx context.Context, req *TokenRequest) (*domain.Appointment, error) {
	uc.logger.Info("CancelAppointmentByToken: token cancellation requested")

	if req.Secret == "" {
		return nil, fmt.Errorf("%w: token secret is required", ErrInvalidInput)
	}

	now := uc.timeProvider.Now()

	var cancelled *domain.Appointment

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		token, err := uc.tokenRepo.GetBySecret(txCtx, req.Secret)
		if err != nil {
			if errors.Is(err, tokenRepo.ErrTokenNotFound) {
				uc.logger.Warn("CancelAppointmentByToken: token not found")
				return ErrInvalidToken
			}
			uc.logger.Error("CancelAppointmentByToken: failed to get token: %v", err)
			return fmt.Errorf("%w: failed to get token: %v", ErrInternal, err)
		}

		if !token.IsUsable(now) {
			uc.logger.Warn("CancelAppointmentByToken: token id=%d expired or already used", token.ID)
			return ErrInvalidToken
		}

		appointment, err := uc.appointmentRepo.GetByIDForUpdate(txCtx, token.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				uc.logger.Error("CancelAppointmentByToken: appointment id=%d missing for token id=%d",
					token.AppointmentID, token.ID)
				return ErrInvalidToken
			}
			uc.logger.Error("CancelAppointmentByToken: failed to get appointment id=%d: %v",
				token.AppointmentID, err)
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}

		if !appointment.CanCancel(now) {
			uc.logger.Warn("CancelAppointmentByToken: appointment id=%d cannot be cancelled, status=%s",
				appointment.ID, appointment.Status)
			return ErrInvalidToken
		}

		if err := uc.tokenRepo.Consume(txCtx, token.ID, now); err != nil {
			if errors.Is(err, tokenRepo.ErrTokenAlreadyUsed) {
				return ErrInvalidToken
			}
			uc.logger.Error("CancelAppointmentByToken: failed to consume token id=%d: %v", token.ID, err)
			return fmt.Errorf("%w: failed to consume token: %v", ErrInternal, err)
		}

		// Аудит клиентской отмены фиксирует только время
		audit := domain.TransitionAudit{At: &now}

		err = uc.appointmentRepo.Cancel(txCtx, appointment.ID, audit,
			domain.CancelOriginClient, domain.ReasonCancelledByClient, nil)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrStatusConflict) {
				return ErrInvalidToken
			}
			uc.logger.Error("CancelAppointmentByToken: failed to cancel appointment id=%d: %v",
				appointment.ID, err)
			return fmt.Errorf("%w: failed to cancel appointment: %v", ErrInternal, err)
		}

		applyCancellation(appointment, audit, domain.CancelOriginClient, domain.ReasonCancelledByClient, nil)
		cancelled = appointment
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CancelAppointmentByToken: cancelled appointment id=%d code=%s",
		cancelled.ID, cancelled.Code)

	uc.publisher.PublishAsync(ctx, domain.NewEvent(domain.EventCanceled, cancelled, now))

	return cancelled, nil
}

func actorAudit(actor domain.Actor, now time.Time) domain.TransitionAudit {
	return domain.TransitionAudit{
		ActorID:    ptr.Ptr(actor.ID),
		ActorRole:  ptr.Ptr(string(actor.Role)),
		ActorName:  ptr.Ptr(actor.Name),
		ActorEmail: ptr.Ptr(actor.Email),
		At:         &now,
	}
}

// reasonForRole выводит причину отмены из роли актора.
// DEV действует с правами администратора.
func reasonForRole(role domain.Role) domain.CancelReason {
	if role == domain.RoleStaff {
		return domain.ReasonCancelledByStaff
	}
	return domain.ReasonCancelledByAdmin
}

func applyCancellation(
	appointment *domain.Appointment,
	audit domain.TransitionAudit,
	origin domain.CancelOrigin,
	reason domain.CancelReason,
	message *string,
) {
	appointment.Status = domain.StatusCancelled
	appointment.Cancelled = audit
	appointment.CancelOrigin = &origin
	appointment.CancelReason = &reason
	appointment.CancelMessage = message
}

// truncateMessage обрезает сообщение отмены до допустимой длины
func truncateMessage(message *string) *string {
	if message == nil {
		return nil
	}
	if len(*message) <= domain.MaxCancelMessageLen {
		return message
	}
	truncated := (*message)[:domain.MaxCancelMessageLen]
	return &truncated
}

package mark_no_show

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	appointmentRepo "github.com/dvasko/SBP-AppointmentService/internal/infra/storage/appointment"
	"github.com/dvasko/SBP-AppointmentService/pkg/ptr"
)

// Request модель запроса на ручную отметку неявки
type Request struct {
	AppointmentID int64
	Actor         domain.Actor
}

// AutoResult результат автоматического прохода по просроченным записям
type AutoResult struct {
	Processed int // Количество успешно отмеченных записей
	Failed    int // Количество записей, отметить которые не удалось
}

// UseCase use case для отметки неявки клиента
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

// ExecuteByActor отмечает неявку вручную. Разрешено только из статуса
// pending и не раньше времени начала записи. Событие при ручной отметке
// не публикуется: актор уже знает результат.
func (uc *UseCase) ExecuteByActor(ctx context.Context, req *Request) (*domain.Appointment, error) {
	uc.logger.Info("MarkNoShow: appointment=%d, actor=%d role=%s",
		req.AppointmentID, req.Actor.ID, req.Actor.Role)

	if req.AppointmentID <= 0 {
		return nil, fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}

	now := uc.timeProvider.Now()

	var marked *domain.Appointment

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		appointment, err := uc.appointmentRepo.GetByIDForUpdate(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				uc.logger.Warn("MarkNoShow: appointment id=%d not found", req.AppointmentID)
				return ErrAppointmentNotFound
			}
			uc.logger.Error("MarkNoShow: failed to get appointment id=%d: %v", req.AppointmentID, err)
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}

		if !req.Actor.CanActOn(appointment.ProfessionalID) {
			uc.logger.Warn("MarkNoShow: actor id=%d role=%s cannot act on professional id=%d",
				req.Actor.ID, req.Actor.Role, appointment.ProfessionalID)
			return ErrForbidden
		}

		if appointment.Status != domain.StatusPending {
			uc.logger.Warn("MarkNoShow: appointment id=%d is %s, not pending",
				appointment.ID, appointment.Status)
			return ErrNotPending
		}

		if !appointment.CanMarkNoShow(now) {
			uc.logger.Warn("MarkNoShow: appointment id=%d has not started yet, start=%s now=%s",
				appointment.ID, appointment.StartAt, now)
			return ErrTooEarly
		}

		audit := actorAudit(req.Actor, now)
		if err := uc.appointmentRepo.MarkNoShow(txCtx, appointment.ID, audit); err != nil {
			if errors.Is(err, appointmentRepo.ErrStatusConflict) {
				return ErrNotPending
			}
			uc.logger.Error("MarkNoShow: failed to mark appointment id=%d: %v", appointment.ID, err)
			return fmt.Errorf("%w: failed to mark no-show: %v", ErrInternal, err)
		}

		appointment.Status = domain.StatusNoShow
		appointment.NoShow = audit
		marked = appointment
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("MarkNoShow: marked appointment id=%d code=%s as no-show", marked.ID, marked.Code)

	return marked, nil
}

// ExecuteAuto отмечает неявку для всех pending записей, начавшихся более
// 10 минут назад. Вызывается фоновым планировщиком. Ошибка по одной записи
// не прерывает проход: остальные записи обрабатываются дальше.
func (uc *UseCase) ExecuteAuto(ctx context.Context) (*AutoResult, error) {
	now := uc.timeProvider.Now()
	cutoff := now.Add(-domain.AutoNoShowAfter)

	appointments, err := uc.appointmentRepo.FindPendingStartedBefore(ctx, cutoff)
	if err != nil {
		uc.logger.Error("AutoNoShow: failed to find overdue appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to find overdue appointments: %v", ErrInternal, err)
	}

	result := &AutoResult{}

	for _, candidate := range appointments {
		if err := uc.markAuto(ctx, candidate.ID, now); err != nil {
			uc.logger.Error("AutoNoShow: failed to mark appointment id=%d: %v", candidate.ID, err)
			result.Failed++
			continue
		}
		result.Processed++
	}

	if result.Processed > 0 || result.Failed > 0 {
		uc.logger.Info("AutoNoShow: marked %d appointment(s), %d failed", result.Processed, result.Failed)
	}

	return result, nil
}

// markAuto обрабатывает одну просроченную запись в отдельной транзакции
func (uc *UseCase) markAuto(ctx context.Context, id int64, now time.Time) error {
	var marked *domain.Appointment

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		appointment, err := uc.appointmentRepo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				// Запись исчезла между выборкой и блокировкой
				return nil
			}
			return fmt.Errorf("get appointment: %w", err)
		}

		// Конкурентный переход мог опередить планировщик
		if appointment.Status != domain.StatusPending {
			return nil
		}

		audit := systemAudit(now)
		if err := uc.appointmentRepo.MarkNoShow(txCtx, appointment.ID, audit); err != nil {
			if errors.Is(err, appointmentRepo.ErrStatusConflict) {
				return nil
			}
			return fmt.Errorf("mark no-show: %w", err)
		}

		appointment.Status = domain.StatusNoShow
		appointment.NoShow = audit
		marked = appointment
		return nil
	})

	if err != nil {
		return err
	}

	if marked != nil {
		uc.publisher.PublishAsync(ctx, domain.NewEvent(domain.EventNoShow, marked, now))
	}

	return nil
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

func systemAudit(now time.Time) domain.TransitionAudit {
	return domain.TransitionAudit{
		ActorID:   ptr.Ptr(domain.SystemActor.ID),
		ActorRole: ptr.Ptr(string(domain.SystemActor.Role)),
		ActorName: ptr.Ptr(domain.SystemActor.Name),
		At:        &now,
	}
}

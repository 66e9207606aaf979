package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	scheduleRepo "github.com/dvasko/SBP-AppointmentService/internal/infra/storage/schedule"
	catalogClient "github.com/dvasko/SBP-AppointmentService/internal/integrations/catalogservice"
	identityClient "github.com/dvasko/SBP-AppointmentService/internal/integrations/identityservice"
	"github.com/dvasko/SBP-AppointmentService/pkg/ptr"
	"github.com/dvasko/SBP-AppointmentService/pkg/txmanager"
)

// UseCase use case для создания записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	scheduleRepo    ScheduleRepository
	tokenRepo       TokenRepository
	codeRepo        CodeRepository
	identityClient  IdentityServiceClient
	catalogClient   CatalogServiceClient
	publisher       EventPublisher
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	scheduleRepo ScheduleRepository,
	tokenRepo TokenRepository,
	codeRepo CodeRepository,
	identityClient IdentityServiceClient,
	catalogClient CatalogServiceClient,
	publisher EventPublisher,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		scheduleRepo:    scheduleRepo,
		tokenRepo:       tokenRepo,
		codeRepo:        codeRepo,
		identityClient:  identityClient,
		catalogClient:   catalogClient,
		publisher:       publisher,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания записи.
// Проверка доступности слота и вставка выполняются в сериализуемой
// транзакции с блокировкой пересекающихся записей (FOR UPDATE), чтобы
// два конкурентных запроса не заняли один слот.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: professional=%d, service=%d, date=%s, time=%s, channel=%s",
		req.ProfessionalID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime, req.Channel)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Время начала строго в будущем, проверяем до походов во внешние сервисы
	startAt := combineDateTime(req.Date, req.StartTime.Minutes())
	if !startAt.After(now) {
		uc.logger.Warn("CreateAppointment: start %s is not in the future", startAt)
		return nil, ErrStartInPast
	}

	// 4. Получаем мастера и проверяем, что он активен
	professional, err := uc.identityClient.GetProfessional(ctx, req.ProfessionalID)
	if err != nil {
		if errors.Is(err, identityClient.ErrProfessionalNotFound) {
			uc.logger.Warn("CreateAppointment: professional id=%d not found", req.ProfessionalID)
			return nil, ErrProfessionalNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get professional id=%d: %v", req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: failed to get professional: %v", ErrInternal, err)
	}
	if !professional.Active {
		uc.logger.Warn("CreateAppointment: professional id=%d is inactive", req.ProfessionalID)
		return nil, ErrProfessionalInactive
	}

	// 5. Получаем услугу
	service, err := uc.catalogClient.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateAppointment: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if service.DurationMinutes < domain.MinServiceDurationMinutes {
		uc.logger.Warn("CreateAppointment: service id=%d has invalid duration %d",
			req.ServiceID, service.DurationMinutes)
		return nil, fmt.Errorf("%w: duration %d", ErrInvalidServiceDuration, service.DurationMinutes)
	}

	// 6. Проверяем, что мастер оказывает эту услугу
	authorized, err := uc.catalogClient.IsProfessionalAuthorized(ctx, req.ProfessionalID, req.ServiceID)
	if err != nil {
		uc.logger.Error("CreateAppointment: failed to check authorization professional=%d service=%d: %v",
			req.ProfessionalID, req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to check authorization: %v", ErrInternal, err)
	}
	if !authorized {
		uc.logger.Warn("CreateAppointment: professional id=%d does not provide service id=%d",
			req.ProfessionalID, req.ServiceID)
		return nil, ErrServiceNotAuthorized
	}

	// 7. Вычисляем границы слота
	endTime, err := req.StartTime.AddMinutes(service.DurationMinutes)
	if err != nil {
		// Слот пересекает полночь
		uc.logger.Warn("CreateAppointment: slot crosses midnight: %v", err)
		return nil, ErrOutsideWorkingHours
	}

	endAt := startAt.Add(time.Duration(service.DurationMinutes) * time.Minute)

	candidate := domain.Interval{Start: req.StartTime, End: endTime}

	var created *domain.Appointment
	var token *domain.CancellationToken

	// 8. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 8.1. Получаем расписание мастера
		schedule, err := uc.scheduleRepo.GetByProfessional(txCtx, req.ProfessionalID)
		if err != nil {
			if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
				uc.logger.Warn("CreateAppointment: professional id=%d has no schedule", req.ProfessionalID)
				return ErrOutsideWorkingHours
			}
			uc.logger.Error("CreateAppointment: failed to get schedule: %v", err)
			return fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
		}

		// 8.2. Получаем блокировки на эту дату
		blocks, err := uc.scheduleRepo.FindBlocksForDate(txCtx, req.ProfessionalID, req.Date)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to get blocks: %v", err)
			return fmt.Errorf("%w: failed to get blocks: %v", ErrInternal, err)
		}

		// 8.3. Слот обязан целиком помещаться в один свободный интервал
		day := schedule.DayFor(req.Date.Weekday())
		free := domain.FreeIntervals(day, blocks, req.Date)
		if !fitsInFree(candidate, free) {
			uc.logger.Warn("CreateAppointment: slot %s-%s does not fit free intervals",
				candidate.Start, candidate.End)
			return ErrOutsideWorkingHours
		}

		// 8.4. Проверяем пересечения с активными записями (FOR UPDATE)
		overlapping, err := uc.appointmentRepo.FindOverlapping(txCtx, req.ProfessionalID, startAt, endAt)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to find overlapping appointments: %v", err)
			return fmt.Errorf("%w: failed to find overlapping appointments: %v", ErrInternal, err)
		}
		if len(overlapping) > 0 {
			uc.logger.Warn("CreateAppointment: slot conflicts with %d active appointment(s)", len(overlapping))
			return ErrSlotConflict
		}

		// 8.5. Выделяем человекочитаемый код
		code, err := uc.codeRepo.Next(txCtx, now)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to allocate code: %v", err)
			return fmt.Errorf("%w: failed to allocate code: %v", ErrInternal, err)
		}

		// 8.6. Создаем запись со снапшотами данных мастера и услуги
		appointment := &domain.Appointment{
			Code:        code,
			ClientName:  req.ClientName,
			ClientEmail: req.ClientEmail,
			ClientPhone: req.ClientPhone,

			ServiceID:              service.ID,
			ServiceName:            service.Name,
			ServiceDurationMinutes: service.DurationMinutes,

			ProfessionalID:    professional.ID,
			ProfessionalName:  professional.Name,
			ProfessionalEmail: professional.Email,

			StartAt: startAt,
			EndAt:   endAt,
			Status:  domain.StatusPending,
			Channel: req.Channel,

			Created: creationAudit(req.Actor, now),
		}

		created, err = uc.appointmentRepo.Create(txCtx, appointment)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		// 8.7. Создаем одноразовый токен отмены, истекающий вместе с дедлайном отмены
		token, err = uc.tokenRepo.Create(txCtx, &domain.CancellationToken{
			AppointmentID: created.ID,
			Secret:        uuid.NewString(),
			ExpiresAt:     startAt.Add(-domain.CancellationDeadline),
		})
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to create cancellation token: %v", err)
			return fmt.Errorf("%w: failed to create cancellation token: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		if txmanager.IsRetryable(err) {
			uc.logger.Warn("CreateAppointment: transient transaction conflict: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return nil, err
	}

	uc.logger.Info("CreateAppointment: created appointment id=%d code=%s", created.ID, created.Code)

	// 9. Публикуем событие после коммита
	event := domain.NewEvent(domain.EventCreated, created, now)
	event.CancelToken = token.Secret
	uc.publisher.PublishAsync(ctx, event)

	return &Response{
		ID:     created.ID,
		Code:   created.Code,
		Status: created.Status,

		ClientName:  created.ClientName,
		ClientEmail: created.ClientEmail,
		ClientPhone: created.ClientPhone,

		ProfessionalID:   created.ProfessionalID,
		ProfessionalName: created.ProfessionalName,

		ServiceID:              created.ServiceID,
		ServiceName:            created.ServiceName,
		ServiceDurationMinutes: created.ServiceDurationMinutes,

		StartAt: created.StartAt,
		EndAt:   created.EndAt,
		Channel: created.Channel,

		CancelToken: token.Secret,

		CreatedAt: created.CreatedAt,
	}, nil
}

// creationAudit собирает аудит создания: для публичного канала
// фиксируется только время
func creationAudit(actor *domain.Actor, now time.Time) domain.TransitionAudit {
	audit := domain.TransitionAudit{At: &now}
	if actor != nil {
		audit.ActorID = ptr.Ptr(actor.ID)
		audit.ActorRole = ptr.Ptr(string(actor.Role))
		audit.ActorName = ptr.Ptr(actor.Name)
		audit.ActorEmail = ptr.Ptr(actor.Email)
	}
	return audit
}

// fitsInFree проверяет, что кандидат целиком лежит в одном свободном интервале
func fitsInFree(candidate domain.Interval, free []domain.Interval) bool {
	for _, interval := range free {
		if interval.Contains(candidate) {
			return true
		}
	}
	return false
}

// combineDateTime составляет момент времени из даты и минут от полуночи
func combineDateTime(date time.Time, minutes int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, date.Location())
}

package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	scheduleRepo "github.com/dvasko/SBP-AppointmentService/internal/infra/storage/schedule"
	catalogClient "github.com/dvasko/SBP-AppointmentService/internal/integrations/catalogservice"
)

// UseCase use case для получения доступных слотов
type UseCase struct {
	appointmentRepo AppointmentRepository
	scheduleRepo    ScheduleRepository
	catalogClient   CatalogServiceClient
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	scheduleRepo ScheduleRepository,
	catalogClient CatalogServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		scheduleRepo:    scheduleRepo,
		catalogClient:   catalogClient,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: professional=%d, service=%d, date=%s",
		req.ProfessionalID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем услугу
	service, err := uc.catalogClient.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 4. Проверяем, что мастер оказывает эту услугу
	authorized, err := uc.catalogClient.IsProfessionalAuthorized(ctx, req.ProfessionalID, req.ServiceID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to check authorization professional=%d service=%d: %v",
			req.ProfessionalID, req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to check authorization: %v", ErrInternal, err)
	}
	if !authorized {
		uc.logger.Warn("GetAvailableSlots: professional id=%d does not provide service id=%d",
			req.ProfessionalID, req.ServiceID)
		return nil, ErrServiceNotAuthorized
	}

	response := &Response{
		Date:            req.Date,
		ProfessionalID:  req.ProfessionalID,
		ServiceID:       req.ServiceID,
		DurationMinutes: service.DurationMinutes,
		Slots:           []domain.Slot{},
	}

	// 5. Прошедшие даты всегда отдают пустой список
	if isDateInPast(req.Date, now) {
		uc.logger.Info("GetAvailableSlots: date %s is in the past, returning empty list",
			req.Date.Format(domain.DateFormat))
		return response, nil
	}

	// 6. Получаем недельное расписание мастера
	schedule, err := uc.scheduleRepo.GetByProfessional(ctx, req.ProfessionalID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			uc.logger.Info("GetAvailableSlots: professional id=%d has no schedule, returning empty list",
				req.ProfessionalID)
			return response, nil
		}
		uc.logger.Error("GetAvailableSlots: failed to get schedule for professional id=%d: %v",
			req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	// 7. Получаем блокировки, действующие на эту дату
	blocks, err := uc.scheduleRepo.FindBlocksForDate(ctx, req.ProfessionalID, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get blocks for professional id=%d: %v",
			req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: failed to get blocks: %v", ErrInternal, err)
	}

	// 8. Вычисляем свободные интервалы дня: рабочие часы минус перерывы минус блокировки
	day := schedule.DayFor(req.Date.Weekday())
	free := domain.FreeIntervals(day, blocks, req.Date)
	if len(free) == 0 {
		uc.logger.Info("GetAvailableSlots: no free intervals for professional id=%d on %s",
			req.ProfessionalID, req.Date.Format(domain.DateFormat))
		return response, nil
	}

	// 9. Получаем активные записи на эту дату
	appointments, err := uc.appointmentRepo.FindActiveByProfessionalAndDate(ctx, req.ProfessionalID, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get appointments for professional id=%d: %v",
			req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	// 10. Генерируем слоты
	slots, err := generateSlots(free, busyIntervals(appointments), service.DurationMinutes, req.Date, now)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}

	uc.logger.Info("GetAvailableSlots: found %d available slots for professional=%d on %s",
		len(slots), req.ProfessionalID, req.Date.Format(domain.DateFormat))

	response.Slots = slots
	return response, nil
}

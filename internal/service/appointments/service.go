package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	appointmentRepo "github.com/dvasko/SBP-AppointmentService/internal/infra/storage/appointment"
	"github.com/dvasko/SBP-AppointmentService/internal/service/appointments/models"
)

// Service сервис чтения записей
type Service struct {
	appointmentRepo AppointmentRepository
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(appointmentRepo AppointmentRepository, logger Logger) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает запись по ID.
// STAFF видит только записи своих клиентов, ADMIN и DEV - любые.
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for actor=%d role=%s", id, actor.ID, actor.Role)

	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}

	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if !actor.CanActOn(appointment.ProfessionalID) {
		s.logger.Warn("GetByID: access denied for actor=%d to appointment id=%d", actor.ID, id)
		return nil, ErrForbidden
	}

	return models.FromDomainAppointment(appointment, s.timeProvider.Now()), nil
}

// List получает список записей с фильтрацией и пагинацией.
// Для STAFF список всегда ограничен их собственными записями, независимо
// от переданного фильтра по мастеру.
func (s *Service) List(ctx context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("List: fetching appointments for actor=%d role=%s, page=%d", req.Actor.ID, req.Actor.Role, req.Page)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if req.Actor.Role == domain.RoleStaff {
		filter.ProfessionalID = &req.Actor.ID
	}

	appointments, total, err := s.appointmentRepo.ListWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	totalPages := int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize))

	s.logger.Info("List: fetched %d of %d appointment(s)", len(appointments), total)

	return &models.AppointmentListResponse{
		Appointments: models.FromDomainAppointmentList(appointments, s.timeProvider.Now()),
		Pagination: models.Pagination{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

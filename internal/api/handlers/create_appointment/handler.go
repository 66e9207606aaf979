package create_appointment

import (
	"errors"
	"net/http"

	"github.com/dvasko/SBP-AppointmentService/internal/api/handlers"
	"github.com/dvasko/SBP-AppointmentService/internal/api/middleware"
	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	createAppointment "github.com/dvasko/SBP-AppointmentService/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody     = "некорректное тело запроса"
	msgInvalidDateOrTime      = "некорректная дата или время, ожидается YYYY-MM-DD и HH:MM"
	msgInvalidInput           = "некорректные данные записи"
	msgProfessionalNotFound   = "мастер не найден"
	msgProfessionalInactive   = "мастер деактивирован"
	msgServiceNotFound        = "услуга не найдена"
	msgServiceNotAuthorized   = "мастер не оказывает эту услугу"
	msgInvalidServiceDuration = "у услуги некорректная длительность"
	msgStartInPast            = "время начала должно быть в будущем"
	msgOutsideWorkingHours    = "слот за пределами рабочего времени мастера"
	msgSlotConflict           = "слот уже занят другой записью"
	msgTransient              = "не удалось обработать запрос из-за конкурентного конфликта, повторите попытку"
	msgActorRequired          = "не удалось определить пользователя"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// HandleInternal POST /api/v1/appointments
// Создание записи аутентифицированным сотрудником
func (h *Handler) HandleInternal(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Error("POST /appointments - Actor missing from context")
		handlers.RespondUnauthorized(w, msgActorRequired)
		return
	}

	h.handle(w, r, domain.ChannelInternal, &actor)
}

// HandlePublic POST /api/v1/public/appointments
// Публичное создание записи без аутентификации
func (h *Handler) HandlePublic(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, domain.ChannelPublic, nil)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, channel domain.Channel, actor *domain.Actor) {
	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(channel, actor)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createAppointment.ErrProfessionalNotFound):
			h.logger.Warn("POST /appointments - Professional not found: professional_id=%d", req.ProfessionalID)
			handlers.RespondNotFound(w, msgProfessionalNotFound)

		case errors.Is(err, createAppointment.ErrProfessionalInactive):
			h.logger.Warn("POST /appointments - Professional inactive: professional_id=%d", req.ProfessionalID)
			handlers.RespondConflict(w, msgProfessionalInactive)

		case errors.Is(err, createAppointment.ErrServiceNotFound):
			h.logger.Warn("POST /appointments - Service not found: service_id=%d", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createAppointment.ErrServiceNotAuthorized):
			h.logger.Warn("POST /appointments - Service not authorized: professional_id=%d, service_id=%d",
				req.ProfessionalID, req.ServiceID)
			handlers.RespondConflict(w, msgServiceNotAuthorized)

		case errors.Is(err, createAppointment.ErrInvalidServiceDuration):
			h.logger.Warn("POST /appointments - Invalid service duration: service_id=%d", req.ServiceID)
			handlers.RespondBadRequest(w, msgInvalidServiceDuration)

		case errors.Is(err, createAppointment.ErrStartInPast):
			h.logger.Warn("POST /appointments - Start in past: professional_id=%d", req.ProfessionalID)
			handlers.RespondBadRequest(w, msgStartInPast)

		case errors.Is(err, createAppointment.ErrOutsideWorkingHours):
			h.logger.Warn("POST /appointments - Outside working hours: professional_id=%d", req.ProfessionalID)
			handlers.RespondConflict(w, msgOutsideWorkingHours)

		case errors.Is(err, createAppointment.ErrSlotConflict):
			h.logger.Warn("POST /appointments - Slot conflict: professional_id=%d", req.ProfessionalID)
			handlers.RespondConflict(w, msgSlotConflict)

		case errors.Is(err, createAppointment.ErrTransient):
			h.logger.Warn("POST /appointments - Transient conflict: professional_id=%d", req.ProfessionalID)
			handlers.RespondServiceUnavailable(w, msgTransient)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: professional_id=%d, error=%v",
				req.ProfessionalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	// Публичному клиенту токен отдается в теле ответа, внутренний канал
	// получает его через событие нотификации
	h.logger.Info("POST /appointments - Appointment created: appointment_id=%d, code=%s, channel=%s",
		result.ID, result.Code, channel)
	handlers.RespondJSON(w, http.StatusCreated, response)
}

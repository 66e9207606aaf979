package confirm_appointment

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/dvasko/SBP-AppointmentService/internal/api/handlers"
	"github.com/dvasko/SBP-AppointmentService/internal/api/middleware"
	"github.com/dvasko/SBP-AppointmentService/internal/service/appointments/models"
	confirmAppointment "github.com/dvasko/SBP-AppointmentService/internal/usecase/confirm_appointment"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgAppointmentNotFound  = "запись не найдена"
	msgAccessDenied         = "нет доступа к этой записи"
	msgNotPending           = "запись уже в финальном статусе"
	msgTooEarly             = "подтверждение откроется за 10 минут до начала записи"
	msgWindowExpired        = "окно подтверждения истекло"
	msgActorRequired        = "не удалось определить пользователя"
)

type Handler struct {
	useCase ConfirmAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase ConfirmAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{id}/confirm
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Error("POST /appointments/{id}/confirm - Actor missing from context")
		handlers.RespondUnauthorized(w, msgActorRequired)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &confirmAppointment.Request{
		AppointmentID: id,
		Actor:         actor,
	})
	if err != nil {
		switch {
		case errors.Is(err, confirmAppointment.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidAppointmentID)

		case errors.Is(err, confirmAppointment.ErrAppointmentNotFound):
			h.logger.Warn("POST /appointments/%d/confirm - Not found", id)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, confirmAppointment.ErrForbidden):
			h.logger.Warn("POST /appointments/%d/confirm - Access denied for actor=%d", id, actor.ID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, confirmAppointment.ErrNotPending):
			h.logger.Warn("POST /appointments/%d/confirm - Not pending", id)
			handlers.RespondConflict(w, msgNotPending)

		case errors.Is(err, confirmAppointment.ErrTooEarly):
			h.logger.Warn("POST /appointments/%d/confirm - Confirmation window not open yet", id)
			handlers.RespondConflict(w, msgTooEarly)

		case errors.Is(err, confirmAppointment.ErrWindowExpired):
			h.logger.Warn("POST /appointments/%d/confirm - Confirmation window expired", id)
			handlers.RespondConflict(w, msgWindowExpired)

		default:
			h.logger.Error("POST /appointments/%d/confirm - Failed to confirm: error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/%d/confirm - Confirmed by actor=%d", id, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainAppointment(result, time.Now()))
}

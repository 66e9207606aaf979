package cancel_appointment

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/dvasko/SBP-AppointmentService/internal/api/handlers"
	"github.com/dvasko/SBP-AppointmentService/internal/api/middleware"
	"github.com/dvasko/SBP-AppointmentService/internal/service/appointments/models"
	cancelAppointment "github.com/dvasko/SBP-AppointmentService/internal/usecase/cancel_appointment"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidAppointmentID = "некорректный ID записи"
	msgAppointmentNotFound  = "запись не найдена"
	msgAccessDenied         = "нет доступа к этой записи"
	msgNotPending           = "запись уже в финальном статусе"
	msgDeadlinePassed       = "отмена недоступна менее чем за 10 минут до начала"
	msgActorRequired        = "не удалось определить пользователя"
)

// CancelAppointmentRequest HTTP request model
type CancelAppointmentRequest struct {
	Message *string `json:"message,omitempty"` // Опциональное сообщение для клиента
}

type Handler struct {
	useCase CancelAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CancelAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{id}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Error("POST /appointments/{id}/cancel - Actor missing from context")
		handlers.RespondUnauthorized(w, msgActorRequired)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	// Тело запроса опционально
	var req CancelAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("POST /appointments/%d/cancel - Invalid request body: %v", id, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.ExecuteByActor(r.Context(), &cancelAppointment.ActorRequest{
		AppointmentID: id,
		Actor:         actor,
		Message:       req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, cancelAppointment.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidAppointmentID)

		case errors.Is(err, cancelAppointment.ErrAppointmentNotFound):
			h.logger.Warn("POST /appointments/%d/cancel - Not found", id)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, cancelAppointment.ErrForbidden):
			h.logger.Warn("POST /appointments/%d/cancel - Access denied for actor=%d", id, actor.ID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, cancelAppointment.ErrNotPending):
			h.logger.Warn("POST /appointments/%d/cancel - Not pending", id)
			handlers.RespondConflict(w, msgNotPending)

		case errors.Is(err, cancelAppointment.ErrDeadlinePassed):
			h.logger.Warn("POST /appointments/%d/cancel - Deadline passed", id)
			handlers.RespondConflict(w, msgDeadlinePassed)

		default:
			h.logger.Error("POST /appointments/%d/cancel - Failed to cancel: error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/%d/cancel - Cancelled by actor=%d", id, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainAppointment(result, time.Now()))
}

package mark_no_show

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/dvasko/SBP-AppointmentService/internal/api/handlers"
	"github.com/dvasko/SBP-AppointmentService/internal/api/middleware"
	"github.com/dvasko/SBP-AppointmentService/internal/service/appointments/models"
	markNoShow "github.com/dvasko/SBP-AppointmentService/internal/usecase/mark_no_show"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgAppointmentNotFound  = "запись не найдена"
	msgAccessDenied         = "нет доступа к этой записи"
	msgNotPending           = "запись уже в финальном статусе"
	msgTooEarly             = "неявку можно отметить только после времени начала записи"
	msgActorRequired        = "не удалось определить пользователя"
)

type Handler struct {
	useCase MarkNoShowUseCase
	logger  Logger
}

func NewHandler(useCase MarkNoShowUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{id}/no-show
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Error("POST /appointments/{id}/no-show - Actor missing from context")
		handlers.RespondUnauthorized(w, msgActorRequired)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	result, err := h.useCase.ExecuteByActor(r.Context(), &markNoShow.Request{
		AppointmentID: id,
		Actor:         actor,
	})
	if err != nil {
		switch {
		case errors.Is(err, markNoShow.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidAppointmentID)

		case errors.Is(err, markNoShow.ErrAppointmentNotFound):
			h.logger.Warn("POST /appointments/%d/no-show - Not found", id)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, markNoShow.ErrForbidden):
			h.logger.Warn("POST /appointments/%d/no-show - Access denied for actor=%d", id, actor.ID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, markNoShow.ErrNotPending):
			h.logger.Warn("POST /appointments/%d/no-show - Not pending", id)
			handlers.RespondConflict(w, msgNotPending)

		case errors.Is(err, markNoShow.ErrTooEarly):
			h.logger.Warn("POST /appointments/%d/no-show - Too early", id)
			handlers.RespondConflict(w, msgTooEarly)

		default:
			h.logger.Error("POST /appointments/%d/no-show - Failed to mark no-show: error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/%d/no-show - Marked by actor=%d", id, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainAppointment(result, time.Now()))
}

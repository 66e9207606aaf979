package get_schedule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/dvasko/SBP-AppointmentService/internal/api/handlers"
	"github.com/dvasko/SBP-AppointmentService/internal/api/middleware"
	schedulesService "github.com/dvasko/SBP-AppointmentService/internal/service/schedules"
)

const (
	msgInvalidProfessionalID = "некорректный ID мастера"
	msgScheduleNotFound      = "у мастера нет расписания"
	msgAccessDenied          = "нет доступа к расписанию этого мастера"
	msgActorRequired         = "не удалось определить пользователя"
)

type Handler struct {
	service SchedulesService
	logger  Logger
}

func NewHandler(service SchedulesService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/professionals/{professionalId}/schedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Error("GET /professionals/{professionalId}/schedule - Actor missing from context")
		handlers.RespondUnauthorized(w, msgActorRequired)
		return
	}

	professionalID, err := strconv.ParseInt(mux.Vars(r)["professionalId"], 10, 64)
	if err != nil || professionalID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidProfessionalID)
		return
	}

	result, err := h.service.GetSchedule(r.Context(), professionalID, actor)
	if err != nil {
		switch {
		case errors.Is(err, schedulesService.ErrScheduleNotFound):
			h.logger.Warn("GET /professionals/%d/schedule - Schedule not found", professionalID)
			handlers.RespondNotFound(w, msgScheduleNotFound)

		case errors.Is(err, schedulesService.ErrForbidden):
			h.logger.Warn("GET /professionals/%d/schedule - Access denied for actor=%d", professionalID, actor.ID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, schedulesService.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidProfessionalID)

		default:
			h.logger.Error("GET /professionals/%d/schedule - Failed to get schedule: error=%v", professionalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

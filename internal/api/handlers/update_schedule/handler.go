package update_schedule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/dvasko/SBP-AppointmentService/internal/api/handlers"
	"github.com/dvasko/SBP-AppointmentService/internal/api/middleware"
	schedulesService "github.com/dvasko/SBP-AppointmentService/internal/service/schedules"
	"github.com/dvasko/SBP-AppointmentService/internal/service/schedules/models"
)

const (
	msgInvalidRequestBody    = "некорректное тело запроса"
	msgInvalidProfessionalID = "некорректный ID мастера"
	msgInvalidSchedule       = "некорректное расписание"
	msgProfessionalNotFound  = "мастер не найден"
	msgAccessDenied          = "нет доступа к расписанию этого мастера"
	msgActorRequired         = "не удалось определить пользователя"
)

// UpdateScheduleRequest HTTP request model
type UpdateScheduleRequest struct {
	Days []models.DayConfigInput `json:"days"`
}

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

// Handle PUT /api/v1/professionals/{professionalId}/schedule
// Расписание заменяется целиком, все семь дней в одном запросе
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Error("PUT /professionals/{professionalId}/schedule - Actor missing from context")
		handlers.RespondUnauthorized(w, msgActorRequired)
		return
	}

	professionalID, err := strconv.ParseInt(mux.Vars(r)["professionalId"], 10, 64)
	if err != nil || professionalID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidProfessionalID)
		return
	}

	var req UpdateScheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /professionals/%d/schedule - Invalid request body: %v", professionalID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.ReplaceSchedule(r.Context(), &models.ReplaceScheduleRequest{
		ProfessionalID: professionalID,
		Actor:          actor,
		Days:           req.Days,
	})
	if err != nil {
		switch {
		case errors.Is(err, schedulesService.ErrInvalidInput):
			h.logger.Warn("PUT /professionals/%d/schedule - Invalid schedule: %v", professionalID, err)
			handlers.RespondBadRequest(w, msgInvalidSchedule)

		case errors.Is(err, schedulesService.ErrProfessionalNotFound):
			h.logger.Warn("PUT /professionals/%d/schedule - Professional not found", professionalID)
			handlers.RespondNotFound(w, msgProfessionalNotFound)

		case errors.Is(err, schedulesService.ErrForbidden):
			h.logger.Warn("PUT /professionals/%d/schedule - Access denied for actor=%d", professionalID, actor.ID)
			handlers.RespondForbidden(w, msgAccessDenied)

		default:
			h.logger.Error("PUT /professionals/%d/schedule - Failed to replace schedule: error=%v", professionalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /professionals/%d/schedule - Schedule replaced by actor=%d", professionalID, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

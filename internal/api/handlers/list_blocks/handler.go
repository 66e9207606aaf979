package list_blocks

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/dvasko/SBP-AppointmentService/internal/api/handlers"
	"github.com/dvasko/SBP-AppointmentService/internal/api/middleware"
	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	schedulesService "github.com/dvasko/SBP-AppointmentService/internal/service/schedules"
)

const (
	msgInvalidProfessionalID = "некорректный ID мастера"
	msgInvalidDates          = "некорректные параметры from/to, ожидается YYYY-MM-DD"
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

// Handle GET /api/v1/professionals/{professionalId}/blocks?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Error("GET /professionals/{professionalId}/blocks - Actor missing from context")
		handlers.RespondUnauthorized(w, msgActorRequired)
		return
	}

	professionalID, err := strconv.ParseInt(mux.Vars(r)["professionalId"], 10, 64)
	if err != nil || professionalID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidProfessionalID)
		return
	}

	var from, to *time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidDates)
			return
		}
		from = &parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidDates)
			return
		}
		to = &parsed
	}

	result, err := h.service.ListBlocks(r.Context(), professionalID, from, to, actor)
	if err != nil {
		switch {
		case errors.Is(err, schedulesService.ErrForbidden):
			h.logger.Warn("GET /professionals/%d/blocks - Access denied for actor=%d", professionalID, actor.ID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, schedulesService.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidProfessionalID)

		default:
			h.logger.Error("GET /professionals/%d/blocks - Failed to list blocks: error=%v", professionalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

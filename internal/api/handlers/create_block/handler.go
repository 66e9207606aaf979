package create_block

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
	"github.com/dvasko/SBP-AppointmentService/internal/service/schedules/models"
)

const (
	msgInvalidRequestBody    = "некорректное тело запроса"
	msgInvalidProfessionalID = "некорректный ID мастера"
	msgInvalidDates          = "некорректные даты блокировки, ожидается YYYY-MM-DD"
	msgInvalidBlock          = "некорректная блокировка"
	msgBlockOverlap          = "блокировка пересекается с существующей"
	msgAccessDenied          = "нет доступа к расписанию этого мастера"
	msgActorRequired         = "не удалось определить пользователя"
)

// CreateBlockHTTPRequest HTTP request model
type CreateBlockHTTPRequest struct {
	StartDate string  `json:"startDate"` // "2026-09-15"
	EndDate   string  `json:"endDate"`   // "2026-09-20"
	FullDay   bool    `json:"fullDay"`
	Start     *string `json:"start,omitempty"` // "13:00", только для частичных блокировок
	End       *string `json:"end,omitempty"`   // "15:00", только для частичных блокировок
	Reason    string  `json:"reason,omitempty"`
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

// Handle POST /api/v1/professionals/{professionalId}/blocks
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Error("POST /professionals/{professionalId}/blocks - Actor missing from context")
		handlers.RespondUnauthorized(w, msgActorRequired)
		return
	}

	professionalID, err := strconv.ParseInt(mux.Vars(r)["professionalId"], 10, 64)
	if err != nil || professionalID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidProfessionalID)
		return
	}

	var req CreateBlockHTTPRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /professionals/%d/blocks - Invalid request body: %v", professionalID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	startDate, err := time.Parse(domain.DateFormat, req.StartDate)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDates)
		return
	}
	endDate, err := time.Parse(domain.DateFormat, req.EndDate)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDates)
		return
	}

	result, err := h.service.CreateBlock(r.Context(), &models.CreateBlockRequest{
		ProfessionalID: professionalID,
		Actor:          actor,
		StartDate:      startDate,
		EndDate:        endDate,
		FullDay:        req.FullDay,
		Start:          req.Start,
		End:            req.End,
		Reason:         req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, schedulesService.ErrInvalidInput):
			h.logger.Warn("POST /professionals/%d/blocks - Invalid block: %v", professionalID, err)
			handlers.RespondBadRequest(w, msgInvalidBlock)

		case errors.Is(err, schedulesService.ErrBlockOverlap):
			h.logger.Warn("POST /professionals/%d/blocks - Block overlap", professionalID)
			handlers.RespondConflict(w, msgBlockOverlap)

		case errors.Is(err, schedulesService.ErrForbidden):
			h.logger.Warn("POST /professionals/%d/blocks - Access denied for actor=%d", professionalID, actor.ID)
			handlers.RespondForbidden(w, msgAccessDenied)

		default:
			h.logger.Error("POST /professionals/%d/blocks - Failed to create block: error=%v", professionalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /professionals/%d/blocks - Block id=%d created by actor=%d",
		professionalID, result.ID, actor.ID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

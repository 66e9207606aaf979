package delete_block

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
	msgInvalidBlockID = "некорректный ID блокировки"
	msgBlockNotFound  = "блокировка не найдена"
	msgAccessDenied   = "нет доступа к расписанию этого мастера"
	msgActorRequired  = "не удалось определить пользователя"
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

// Handle DELETE /api/v1/blocks/{blockId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Error("DELETE /blocks/{blockId} - Actor missing from context")
		handlers.RespondUnauthorized(w, msgActorRequired)
		return
	}

	blockID, err := strconv.ParseInt(mux.Vars(r)["blockId"], 10, 64)
	if err != nil || blockID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidBlockID)
		return
	}

	err = h.service.DeleteBlock(r.Context(), blockID, actor)
	if err != nil {
		switch {
		case errors.Is(err, schedulesService.ErrBlockNotFound):
			h.logger.Warn("DELETE /blocks/%d - Not found", blockID)
			handlers.RespondNotFound(w, msgBlockNotFound)

		case errors.Is(err, schedulesService.ErrForbidden):
			h.logger.Warn("DELETE /blocks/%d - Access denied for actor=%d", blockID, actor.ID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, schedulesService.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidBlockID)

		default:
			h.logger.Error("DELETE /blocks/%d - Failed to delete block: error=%v", blockID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /blocks/%d - Deleted by actor=%d", blockID, actor.ID)
	handlers.RespondNoContent(w)
}

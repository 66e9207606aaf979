package cancel_by_token

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dvasko/SBP-AppointmentService/internal/api/handlers"
	cancelAppointment "github.com/dvasko/SBP-AppointmentService/internal/usecase/cancel_appointment"
)

const (
	msgInvalidToken = "ссылка на отмену недействительна или устарела"
)

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

// CancelByTokenResponse HTTP response model.
// Анонимному клиенту отдается только подтверждение отмены,
// без деталей записи.
type CancelByTokenResponse struct {
	Cancelled bool `json:"cancelled"`
}

// Handle POST /api/v1/public/cancellations/{token}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	secret := mux.Vars(r)["token"]

	result, err := h.useCase.ExecuteByToken(r.Context(), &cancelAppointment.TokenRequest{
		Secret: secret,
	})
	if err != nil {
		switch {
		case errors.Is(err, cancelAppointment.ErrInvalidToken),
			errors.Is(err, cancelAppointment.ErrInvalidInput):
			h.logger.Warn("POST /public/cancellations - Invalid token")
			handlers.RespondNotFound(w, msgInvalidToken)

		default:
			h.logger.Error("POST /public/cancellations - Failed to cancel by token: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /public/cancellations - Appointment code=%s cancelled by client", result.Code)
	handlers.RespondJSON(w, http.StatusOK, &CancelByTokenResponse{
		Cancelled: true,
	})
}

package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/dvasko/SBP-AppointmentService/internal/api/handlers"
	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	getAvailableSlots "github.com/dvasko/SBP-AppointmentService/internal/usecase/get_available_slots"
)

const (
	msgInvalidProfessionalID = "некорректный ID мастера"
	msgInvalidServiceID      = "некорректный параметр serviceId"
	msgInvalidDate           = "некорректный параметр date, ожидается YYYY-MM-DD"
	msgServiceNotFound       = "услуга не найдена"
	msgServiceNotAuthorized  = "мастер не оказывает эту услугу"
	msgInvalidInput          = "некорректные параметры запроса"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// SlotView HTTP модель слота
type SlotView struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// GetAvailableSlotsResponse HTTP response model
type GetAvailableSlotsResponse struct {
	Date            string     `json:"date"`
	ProfessionalID  int64      `json:"professionalId"`
	ServiceID       int64      `json:"serviceId"`
	DurationMinutes int        `json:"durationMinutes"`
	Slots           []SlotView `json:"slots"`
}

// Handle GET /api/v1/professionals/{professionalId}/slots?serviceId=...&date=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	professionalID, err := strconv.ParseInt(mux.Vars(r)["professionalId"], 10, 64)
	if err != nil || professionalID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidProfessionalID)
		return
	}

	serviceID, err := strconv.ParseInt(r.URL.Query().Get("serviceId"), 10, 64)
	if err != nil || serviceID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	date, err := time.Parse(domain.DateFormat, r.URL.Query().Get("date"))
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		ProfessionalID: professionalID,
		ServiceID:      serviceID,
		Date:           date,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /professionals/%d/slots - Invalid input: %v", professionalID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, getAvailableSlots.ErrServiceNotFound):
			h.logger.Warn("GET /professionals/%d/slots - Service not found: service_id=%d", professionalID, serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailableSlots.ErrServiceNotAuthorized):
			h.logger.Warn("GET /professionals/%d/slots - Service not authorized: service_id=%d", professionalID, serviceID)
			handlers.RespondConflict(w, msgServiceNotAuthorized)

		default:
			h.logger.Error("GET /professionals/%d/slots - Failed to get slots: error=%v", professionalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	slots := make([]SlotView, len(result.Slots))
	for i, slot := range result.Slots {
		slots[i] = SlotView{
			StartTime: slot.StartTime.String(),
			EndTime:   slot.EndTime.String(),
		}
	}

	h.logger.Info("GET /professionals/%d/slots - Found %d slots for date=%s",
		professionalID, len(slots), result.Date.Format(domain.DateFormat))
	handlers.RespondJSON(w, http.StatusOK, &GetAvailableSlotsResponse{
		Date:            result.Date.Format(domain.DateFormat),
		ProfessionalID:  result.ProfessionalID,
		ServiceID:       result.ServiceID,
		DurationMinutes: result.DurationMinutes,
		Slots:           slots,
	})
}

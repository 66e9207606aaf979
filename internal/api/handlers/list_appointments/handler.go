package list_appointments

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dvasko/SBP-AppointmentService/internal/api/handlers"
	"github.com/dvasko/SBP-AppointmentService/internal/api/middleware"
	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	appointmentsService "github.com/dvasko/SBP-AppointmentService/internal/service/appointments"
	"github.com/dvasko/SBP-AppointmentService/internal/service/appointments/models"
)

const (
	msgInvalidQuery  = "некорректные параметры запроса"
	msgActorRequired = "не удалось определить пользователя"
)

type Handler struct {
	service AppointmentsService
	logger  Logger
}

func NewHandler(service AppointmentsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/appointments
// Параметры: status, professionalId, serviceId, startDate, endDate,
// search, page, pageSize, sort=asc|desc
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Error("GET /appointments - Actor missing from context")
		handlers.RespondUnauthorized(w, msgActorRequired)
		return
	}

	req, err := parseListRequest(r, actor)
	if err != nil {
		h.logger.Warn("GET /appointments - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appointmentsService.ErrInvalidInput):
			h.logger.Warn("GET /appointments - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidQuery)

		default:
			h.logger.Error("GET /appointments - Failed to list appointments: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func parseListRequest(r *http.Request, actor domain.Actor) (*models.ListAppointmentsRequest, error) {
	query := r.URL.Query()

	req := &models.ListAppointmentsRequest{
		Actor:  actor,
		Search: query.Get("search"),
	}

	if raw := query.Get("status"); raw != "" {
		req.Status = &raw
	}

	if raw := query.Get("professionalId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		req.ProfessionalID = &id
	}

	if raw := query.Get("serviceId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		req.ServiceID = &id
	}

	if raw := query.Get("startDate"); raw != "" {
		date, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return nil, err
		}
		req.StartDate = &date
	}

	if raw := query.Get("endDate"); raw != "" {
		date, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return nil, err
		}
		req.EndDate = &date
	}

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		req.Page = page
	}

	if raw := query.Get("pageSize"); raw != "" {
		pageSize, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		req.PageSize = pageSize
	}

	req.SortAscending = query.Get("sort") == "asc"

	return req, nil
}

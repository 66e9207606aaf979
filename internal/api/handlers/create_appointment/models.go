package create_appointment

import (
	"fmt"
	"time"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	createAppointment "github.com/dvasko/SBP-AppointmentService/internal/usecase/create_appointment"
	"github.com/dvasko/SBP-AppointmentService/pkg/types"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	ClientName     string `json:"clientName"`
	ClientEmail    string `json:"clientEmail"`
	ClientPhone    string `json:"clientPhone"`
	ProfessionalID int64  `json:"professionalId"`
	ServiceID      int64  `json:"serviceId"`
	Date           string `json:"date"`      // "2026-09-15"
	StartTime      string `json:"startTime"` // "10:00"
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(channel domain.Channel, actor *domain.Actor) (*createAppointment.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("parse start time: %w", err)
	}

	return &createAppointment.Request{
		ClientName:     r.ClientName,
		ClientEmail:    r.ClientEmail,
		ClientPhone:    r.ClientPhone,
		ProfessionalID: r.ProfessionalID,
		ServiceID:      r.ServiceID,
		Date:           date,
		StartTime:      startTime,
		Channel:        channel,
		Actor:          actor,
	}, nil
}

// CreateAppointmentResponse HTTP response model
type CreateAppointmentResponse struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	Status string `json:"status"`

	ClientName  string `json:"clientName"`
	ClientEmail string `json:"clientEmail"`
	ClientPhone string `json:"clientPhone"`

	ProfessionalID   int64  `json:"professionalId"`
	ProfessionalName string `json:"professionalName"`

	ServiceID              int64  `json:"serviceId"`
	ServiceName            string `json:"serviceName"`
	ServiceDurationMinutes int    `json:"serviceDurationMinutes"`

	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`
	Channel string    `json:"channel"`

	CancelToken string `json:"cancelToken"`

	CreatedAt time.Time `json:"createdAt"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *CreateAppointmentResponse {
	return &CreateAppointmentResponse{
		ID:     resp.ID,
		Code:   resp.Code,
		Status: string(resp.Status),

		ClientName:  resp.ClientName,
		ClientEmail: resp.ClientEmail,
		ClientPhone: resp.ClientPhone,

		ProfessionalID:   resp.ProfessionalID,
		ProfessionalName: resp.ProfessionalName,

		ServiceID:              resp.ServiceID,
		ServiceName:            resp.ServiceName,
		ServiceDurationMinutes: resp.ServiceDurationMinutes,

		StartAt: resp.StartAt,
		EndAt:   resp.EndAt,
		Channel: string(resp.Channel),

		CancelToken: resp.CancelToken,

		CreatedAt: resp.CreatedAt,
	}
}

package domain

import "time"

// EventType identifies a domain event raised by lifecycle operations
type EventType string

const (
	EventCreated   EventType = "appointment.created"
	EventConfirmed EventType = "appointment.confirmed"
	EventCanceled  EventType = "appointment.canceled"
	EventReminder  EventType = "appointment.reminder"
	EventNoShow    EventType = "appointment.no_show"
)

// Event carries enough data for downstream notification without
// requiring the consumer to re-read the appointment
type Event struct {
	Type          EventType `json:"type"`
	AppointmentID int64     `json:"appointmentId"`
	Code          string    `json:"code"`

	ClientName  string `json:"clientName"`
	ClientEmail string `json:"clientEmail"`
	ClientPhone string `json:"clientPhone"`

	ProfessionalName  string `json:"professionalName"`
	ProfessionalEmail string `json:"professionalEmail"`

	ServiceName string    `json:"serviceName"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`

	// CancelToken is set only on EventCreated so the notification can
	// embed a self-service cancellation link
	CancelToken string `json:"cancelToken,omitempty"`

	OccurredAt time.Time `json:"occurredAt"`
}

// NewEvent builds an event snapshot from an appointment
func NewEvent(eventType EventType, appointment *Appointment, occurredAt time.Time) Event {
	return Event{
		Type:              eventType,
		AppointmentID:     appointment.ID,
		Code:              appointment.Code,
		ClientName:        appointment.ClientName,
		ClientEmail:       appointment.ClientEmail,
		ClientPhone:       appointment.ClientPhone,
		ProfessionalName:  appointment.ProfessionalName,
		ProfessionalEmail: appointment.ProfessionalEmail,
		ServiceName:       appointment.ServiceName,
		StartAt:           appointment.StartAt,
		EndAt:             appointment.EndAt,
		OccurredAt:        occurredAt,
	}
}

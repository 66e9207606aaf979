package models

import (
	"errors"
	"time"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// ListAppointmentsRequest запрос на получение списка записей
type ListAppointmentsRequest struct {
	Actor          domain.Actor
	Status         *string    `json:"status,omitempty"`         // Фильтр по статусу (опционально)
	ProfessionalID *int64     `json:"professionalId,omitempty"` // Фильтр по мастеру (опционально)
	ServiceID      *int64     `json:"serviceId,omitempty"`      // Фильтр по услуге (опционально)
	StartDate      *time.Time `json:"startDate,omitempty"`      // Начало периода по start_at (опционально)
	EndDate        *time.Time `json:"endDate,omitempty"`        // Конец периода по start_at (опционально)
	Search         string     `json:"search,omitempty"`         // Поиск по данным клиента и коду
	Page           int        `json:"page,omitempty"`
	PageSize       int        `json:"pageSize,omitempty"`
	SortAscending  bool       `json:"sortAscending,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListAppointmentsRequest) ToDomainFilter() (domain.AppointmentsFilter, error) {
	filter := domain.AppointmentsFilter{
		ProfessionalID: r.ProfessionalID,
		ServiceID:      r.ServiceID,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		Search:         r.Search,
		Page:           r.Page,
		PageSize:       r.PageSize,
		SortAscending:  r.SortAscending,
	}

	if r.Status != nil {
		status, err := ToDomainAppointmentStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	filter.Normalize()
	return filter, nil
}

// ToDomainAppointmentStatus конвертирует строку в domain статус
func ToDomainAppointmentStatus(raw string) (domain.AppointmentStatus, error) {
	switch domain.AppointmentStatus(raw) {
	case domain.StatusPending, domain.StatusConfirmed, domain.StatusCancelled, domain.StatusNoShow:
		return domain.AppointmentStatus(raw), nil
	default:
		return "", ErrInvalidStatus
	}
}

// Response модели

// AuditView данные аудита перехода статуса
type AuditView struct {
	ActorID    *int64     `json:"actorId,omitempty"`
	ActorRole  *string    `json:"actorRole,omitempty"`
	ActorName  *string    `json:"actorName,omitempty"`
	ActorEmail *string    `json:"actorEmail,omitempty"`
	At         *time.Time `json:"at,omitempty"`
}

// AppointmentResponse представление записи с вычисленными флагами
// доступных действий для текущего момента
type AppointmentResponse struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	Status string `json:"status"`

	ClientName  string `json:"clientName"`
	ClientEmail string `json:"clientEmail"`
	ClientPhone string `json:"clientPhone"`

	ProfessionalID    int64  `json:"professionalId"`
	ProfessionalName  string `json:"professionalName"`
	ProfessionalEmail string `json:"professionalEmail"`

	ServiceID              int64  `json:"serviceId"`
	ServiceName            string `json:"serviceName"`
	ServiceDurationMinutes int    `json:"serviceDurationMinutes"`

	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`
	Channel string    `json:"channel"`

	Created   *AuditView `json:"created,omitempty"`
	Confirmed *AuditView `json:"confirmed,omitempty"`
	Cancelled *AuditView `json:"cancelled,omitempty"`
	NoShow    *AuditView `json:"noShow,omitempty"`

	CancelOrigin  *string `json:"cancelOrigin,omitempty"`
	CancelReason  *string `json:"cancelReason,omitempty"`
	CancelMessage *string `json:"cancelMessage,omitempty"`

	// Флаги действий, допустимых на момент запроса
	CanCancel     bool `json:"canCancel"`
	CanConfirm    bool `json:"canConfirm"`
	CanMarkNoShow bool `json:"canMarkNoShow"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Pagination данные пагинации списка
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// AppointmentListResponse список записей с пагинацией
type AppointmentListResponse struct {
	Appointments []*AppointmentResponse `json:"appointments"`
	Pagination   Pagination             `json:"pagination"`
}

// FromDomainAppointment конвертирует domain модель в response
func FromDomainAppointment(a *domain.Appointment, now time.Time) *AppointmentResponse {
	resp := &AppointmentResponse{
		ID:     a.ID,
		Code:   a.Code,
		Status: string(a.Status),

		ClientName:  a.ClientName,
		ClientEmail: a.ClientEmail,
		ClientPhone: a.ClientPhone,

		ProfessionalID:    a.ProfessionalID,
		ProfessionalName:  a.ProfessionalName,
		ProfessionalEmail: a.ProfessionalEmail,

		ServiceID:              a.ServiceID,
		ServiceName:            a.ServiceName,
		ServiceDurationMinutes: a.ServiceDurationMinutes,

		StartAt: a.StartAt,
		EndAt:   a.EndAt,
		Channel: string(a.Channel),

		Created:   fromAudit(a.Created),
		Confirmed: fromAudit(a.Confirmed),
		Cancelled: fromAudit(a.Cancelled),
		NoShow:    fromAudit(a.NoShow),

		CancelMessage: a.CancelMessage,

		CanCancel:     a.CanCancel(now),
		CanConfirm:    a.CanConfirm(now),
		CanMarkNoShow: a.CanMarkNoShow(now),

		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}

	if a.CancelOrigin != nil {
		origin := string(*a.CancelOrigin)
		resp.CancelOrigin = &origin
	}
	if a.CancelReason != nil {
		reason := string(*a.CancelReason)
		resp.CancelReason = &reason
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в response
func FromDomainAppointmentList(appointments []*domain.Appointment, now time.Time) []*AppointmentResponse {
	result := make([]*AppointmentResponse, len(appointments))
	for i, a := range appointments {
		result[i] = FromDomainAppointment(a, now)
	}
	return result
}

func fromAudit(audit domain.TransitionAudit) *AuditView {
	if !audit.IsSet() {
		return nil
	}
	return &AuditView{
		ActorID:    audit.ActorID,
		ActorRole:  audit.ActorRole,
		ActorName:  audit.ActorName,
		ActorEmail: audit.ActorEmail,
		At:         audit.At,
	}
}

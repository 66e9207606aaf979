package domain

import (
	"time"

	"github.com/dvasko/SBP-AppointmentService/pkg/types"
)

// AppointmentStatus represents the lifecycle status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

// Channel is the creation channel of an appointment
type Channel string

const (
	ChannelInternal Channel = "internal"
	ChannelPublic   Channel = "public"
)

// CancelOrigin identifies who triggered a cancellation
type CancelOrigin string

const (
	CancelOriginInternal CancelOrigin = "internal"
	CancelOriginClient   CancelOrigin = "client"
)

// CancelReason is derived from the cancelling actor's role
type CancelReason string

const (
	ReasonCancelledByAdmin  CancelReason = "cancelled_by_admin"
	ReasonCancelledByStaff  CancelReason = "cancelled_by_staff"
	ReasonCancelledByClient CancelReason = "cancelled_by_client"
)

// TransitionAudit captures who performed a lifecycle transition and when
type TransitionAudit struct {
	ActorID    *int64
	ActorRole  *string
	ActorName  *string
	ActorEmail *string
	At         *time.Time
}

// IsSet returns true if the transition happened
func (a TransitionAudit) IsSet() bool {
	return a.At != nil
}

// Appointment is the booking record.
// Service and professional fields are snapshotted at creation time so the
// record stays historically accurate if the upstream catalog or identity
// record changes later.
type Appointment struct {
	ID   int64
	Code string

	ClientName  string
	ClientEmail string
	ClientPhone string

	ServiceID              int64
	ServiceName            string
	ServiceDurationMinutes int

	ProfessionalID    int64
	ProfessionalName  string
	ProfessionalEmail string

	StartAt time.Time
	EndAt   time.Time
	Status  AppointmentStatus
	Channel Channel

	Created   TransitionAudit
	Confirmed TransitionAudit

	Cancelled     TransitionAudit
	CancelOrigin  *CancelOrigin
	CancelReason  *CancelReason
	CancelMessage *string

	NoShow TransitionAudit

	ReminderSentAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal returns true if no further transitions are allowed
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusConfirmed || a.Status == StatusCancelled || a.Status == StatusNoShow
}

// IsActive returns true if the appointment occupies its slot
// (counts for conflict detection and slot generation)
func (a *Appointment) IsActive() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanCancel reports whether cancellation is currently allowed:
// the appointment is still pending and the deadline has not passed.
func (a *Appointment) CanCancel(now time.Time) bool {
	return a.Status == StatusPending && now.Before(a.StartAt.Add(-CancellationDeadline))
}

// CanConfirm reports whether confirmation is currently allowed:
// pending status and now within [startAt-10m, startAt+10m].
func (a *Appointment) CanConfirm(now time.Time) bool {
	if a.Status != StatusPending {
		return false
	}
	windowStart := a.StartAt.Add(-ConfirmationWindowBefore)
	windowEnd := a.StartAt.Add(ConfirmationWindowAfter)
	return !now.Before(windowStart) && !now.After(windowEnd)
}

// CanMarkNoShow reports whether the appointment can be marked as no-show:
// pending status and the start time has been reached.
func (a *Appointment) CanMarkNoShow(now time.Time) bool {
	return a.Status == StatusPending && !now.Before(a.StartAt)
}

// DayInterval returns the appointment's occupied time-of-day interval
func (a *Appointment) DayInterval() Interval {
	return Interval{
		Start: types.NewTimeString(a.StartAt),
		End:   types.NewTimeString(a.EndAt),
	}
}

// AppointmentsFilter describes listing filters and pagination
type AppointmentsFilter struct {
	Status         *AppointmentStatus
	ProfessionalID *int64
	ServiceID      *int64
	StartDate      *time.Time // Начало периода по start_at (опционально)
	EndDate        *time.Time // Конец периода по start_at (опционально)
	Search         string     // Поиск по имени/email/телефону клиента и коду
	Page           int
	PageSize       int
	SortAscending  bool // По умолчанию сортировка по start_at DESC
}

// Normalize clamps pagination values to the allowed bounds
func (f *AppointmentsFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

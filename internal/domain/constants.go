package domain

import "time"

// Default slot generation values
const (
	DefaultSlotStepMinutes    = 5
	MinServiceDurationMinutes = 5
)

// Lifecycle time gates, all relative to the appointment start
const (
	// CancellationDeadline cancellation is allowed only while now < startAt - CancellationDeadline
	CancellationDeadline = 10 * time.Minute

	// ConfirmationWindowBefore confirmation opens at startAt - ConfirmationWindowBefore
	ConfirmationWindowBefore = 10 * time.Minute

	// ConfirmationWindowAfter confirmation closes at startAt + ConfirmationWindowAfter
	ConfirmationWindowAfter = 10 * time.Minute

	// AutoNoShowAfter pending appointments older than this past startAt are marked no-show
	AutoNoShowAfter = 10 * time.Minute

	// ReminderWindowFrom / ReminderWindowTo reminder is sent when startAt falls in
	// [now+ReminderWindowFrom, now+ReminderWindowTo]
	ReminderWindowFrom = 29 * time.Minute
	ReminderWindowTo   = 31 * time.Minute
)

// Business validation constants
const (
	MinClientNameLength  = 2
	MaxClientNameLength  = 120
	MinClientPhoneLength = 5
	MaxClientPhoneLength = 20
	MaxCancelMessageLen  = 500
	MaxBlockReasonLength = 500
	MaxPageSize          = 100
	DefaultPageSize      = 20
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses statuses that occupy a slot on the professional's timeline
// Used by conflict detection and the slot generator
var ActiveStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
}

// TerminalStatuses statuses with no further transitions
var TerminalStatuses = []AppointmentStatus{
	StatusConfirmed,
	StatusCancelled,
	StatusNoShow,
}

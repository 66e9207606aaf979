package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func pendingAt(startAt time.Time) *Appointment {
	return &Appointment{
		Status:  StatusPending,
		StartAt: startAt,
		EndAt:   startAt.Add(30 * time.Minute),
	}
}

func TestAppointment_CanCancel(t *testing.T) {
	startAt := time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC)
	a := pendingAt(startAt)

	assert.True(t, a.CanCancel(startAt.Add(-time.Hour)))

	// Ровно за 10 минут до начала отмена уже закрыта
	assert.True(t, a.CanCancel(startAt.Add(-CancellationDeadline).Add(-time.Second)))
	assert.False(t, a.CanCancel(startAt.Add(-CancellationDeadline)))
	assert.False(t, a.CanCancel(startAt))

	for _, status := range []AppointmentStatus{StatusConfirmed, StatusCancelled, StatusNoShow} {
		a := pendingAt(startAt)
		a.Status = status
		assert.False(t, a.CanCancel(startAt.Add(-time.Hour)), "status %s", status)
	}
}

func TestAppointment_CanConfirm(t *testing.T) {
	startAt := time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC)
	a := pendingAt(startAt)

	assert.False(t, a.CanConfirm(startAt.Add(-11*time.Minute)))
	assert.True(t, a.CanConfirm(startAt.Add(-ConfirmationWindowBefore)))
	assert.True(t, a.CanConfirm(startAt))
	assert.True(t, a.CanConfirm(startAt.Add(ConfirmationWindowAfter)))
	assert.False(t, a.CanConfirm(startAt.Add(ConfirmationWindowAfter).Add(time.Second)))

	a.Status = StatusConfirmed
	assert.False(t, a.CanConfirm(startAt))
}

func TestAppointment_CanMarkNoShow(t *testing.T) {
	startAt := time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC)
	a := pendingAt(startAt)

	assert.False(t, a.CanMarkNoShow(startAt.Add(-time.Second)))
	assert.True(t, a.CanMarkNoShow(startAt))
	assert.True(t, a.CanMarkNoShow(startAt.Add(time.Hour)))

	a.Status = StatusCancelled
	assert.False(t, a.CanMarkNoShow(startAt.Add(time.Hour)))
}

func TestAppointment_TerminalAndActive(t *testing.T) {
	a := &Appointment{Status: StatusPending}
	assert.False(t, a.IsTerminal())
	assert.True(t, a.IsActive())

	a.Status = StatusConfirmed
	assert.True(t, a.IsTerminal())
	assert.True(t, a.IsActive())

	a.Status = StatusCancelled
	assert.True(t, a.IsTerminal())
	assert.False(t, a.IsActive())

	a.Status = StatusNoShow
	assert.True(t, a.IsTerminal())
	assert.False(t, a.IsActive())
}

func TestAppointmentsFilter_Normalize(t *testing.T) {
	f := &AppointmentsFilter{Page: 0, PageSize: 0}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPageSize, f.PageSize)

	f = &AppointmentsFilter{Page: 3, PageSize: MaxPageSize + 50}
	f.Normalize()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, MaxPageSize, f.PageSize)
}

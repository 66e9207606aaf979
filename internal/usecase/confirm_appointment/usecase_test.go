package confirm_appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	appointmentRepo "github.com/dvasko/SBP-AppointmentService/internal/infra/storage/appointment"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type passthroughTxManager struct{}

func (passthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeAppointmentRepo struct {
	appointment *domain.Appointment
	getErr      error
	confirmErr  error

	confirmedID    int64
	confirmedAudit domain.TransitionAudit
}

func (f *fakeAppointmentRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.appointment, nil
}

func (f *fakeAppointmentRepo) Confirm(ctx context.Context, id int64, audit domain.TransitionAudit) error {
	if f.confirmErr != nil {
		return f.confirmErr
	}
	f.confirmedID = id
	f.confirmedAudit = audit
	return nil
}

type fakePublisher struct {
	events []domain.Event
}

func (f *fakePublisher) PublishAsync(ctx context.Context, event domain.Event) {
	f.events = append(f.events, event)
}

var startAt = time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC)

func pendingAppointment() *domain.Appointment {
	return &domain.Appointment{
		ID:             10,
		Code:           "2609-0001",
		ProfessionalID: 1,
		Status:         domain.StatusPending,
		StartAt:        startAt,
		EndAt:          startAt.Add(30 * time.Minute),
	}
}

func newTestUseCase(repo *fakeAppointmentRepo, publisher *fakePublisher, now time.Time) *UseCase {
	uc := NewUseCase(repo, publisher, passthroughTxManager{}, nopLogger{})
	uc.timeProvider = fixedTime{now: now}
	return uc
}

func TestExecute_ConfirmsWithinWindow(t *testing.T) {
	repo := &fakeAppointmentRepo{appointment: pendingAppointment()}
	publisher := &fakePublisher{}
	uc := newTestUseCase(repo, publisher, startAt.Add(-5*time.Minute))

	confirmed, err := uc.Execute(context.Background(), &Request{
		AppointmentID: 10,
		Actor:         domain.Actor{ID: 1, Name: "Anna", Role: domain.RoleStaff},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)
	assert.Equal(t, int64(10), repo.confirmedID)
	require.NotNil(t, repo.confirmedAudit.ActorID)
	assert.Equal(t, int64(1), *repo.confirmedAudit.ActorID)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, domain.EventConfirmed, publisher.events[0].Type)
}

func TestExecute_WindowBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{name: "too early", now: startAt.Add(-11 * time.Minute), wantErr: ErrTooEarly},
		{name: "window opens", now: startAt.Add(-10 * time.Minute)},
		{name: "at start", now: startAt},
		{name: "window closes", now: startAt.Add(10 * time.Minute)},
		{name: "too late", now: startAt.Add(10*time.Minute + time.Second), wantErr: ErrWindowExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeAppointmentRepo{appointment: pendingAppointment()}
			uc := newTestUseCase(repo, &fakePublisher{}, tt.now)

			_, err := uc.Execute(context.Background(), &Request{
				AppointmentID: 10,
				Actor:         domain.Actor{ID: 1, Role: domain.RoleAdmin},
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

// Ошибки двух сторон окна различимы между собой
func TestExecute_WindowErrorsAreDistinct(t *testing.T) {
	repo := &fakeAppointmentRepo{appointment: pendingAppointment()}

	uc := newTestUseCase(repo, &fakePublisher{}, startAt.Add(-11*time.Minute))
	_, err := uc.Execute(context.Background(), &Request{
		AppointmentID: 10,
		Actor:         domain.Actor{ID: 1, Role: domain.RoleAdmin},
	})
	assert.ErrorIs(t, err, ErrTooEarly)
	assert.NotErrorIs(t, err, ErrWindowExpired)

	uc = newTestUseCase(repo, &fakePublisher{}, startAt.Add(11*time.Minute))
	_, err = uc.Execute(context.Background(), &Request{
		AppointmentID: 10,
		Actor:         domain.Actor{ID: 1, Role: domain.RoleAdmin},
	})
	assert.ErrorIs(t, err, ErrWindowExpired)
	assert.NotErrorIs(t, err, ErrTooEarly)
}

func TestExecute_StaffCannotConfirmForeignAppointment(t *testing.T) {
	repo := &fakeAppointmentRepo{appointment: pendingAppointment()}
	uc := newTestUseCase(repo, &fakePublisher{}, startAt)

	_, err := uc.Execute(context.Background(), &Request{
		AppointmentID: 10,
		Actor:         domain.Actor{ID: 777, Role: domain.RoleStaff},
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestExecute_NotPending(t *testing.T) {
	a := pendingAppointment()
	a.Status = domain.StatusCancelled
	uc := newTestUseCase(&fakeAppointmentRepo{appointment: a}, &fakePublisher{}, startAt)

	_, err := uc.Execute(context.Background(), &Request{
		AppointmentID: 10,
		Actor:         domain.Actor{ID: 1, Role: domain.RoleAdmin},
	})
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestExecute_ConcurrentStatusConflict(t *testing.T) {
	repo := &fakeAppointmentRepo{
		appointment: pendingAppointment(),
		confirmErr:  appointmentRepo.ErrStatusConflict,
	}
	publisher := &fakePublisher{}
	uc := newTestUseCase(repo, publisher, startAt)

	_, err := uc.Execute(context.Background(), &Request{
		AppointmentID: 10,
		Actor:         domain.Actor{ID: 1, Role: domain.RoleAdmin},
	})
	assert.ErrorIs(t, err, ErrNotPending)
	assert.Empty(t, publisher.events)
}

func TestExecute_NotFound(t *testing.T) {
	uc := newTestUseCase(&fakeAppointmentRepo{getErr: appointmentRepo.ErrAppointmentNotFound},
		&fakePublisher{}, startAt)

	_, err := uc.Execute(context.Background(), &Request{
		AppointmentID: 10,
		Actor:         domain.Actor{ID: 1, Role: domain.RoleAdmin},
	})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := newTestUseCase(&fakeAppointmentRepo{}, &fakePublisher{}, startAt)

	_, err := uc.Execute(context.Background(), &Request{AppointmentID: 0, Actor: domain.Actor{ID: 1, Role: domain.RoleAdmin}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

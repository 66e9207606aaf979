package cancel_appointment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	appointmentRepo "github.com/dvasko/SBP-AppointmentService/internal/infra/storage/appointment"
	tokenRepo "github.com/dvasko/SBP-AppointmentService/internal/infra/storage/token"
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
	cancelErr   error

	cancelledID     int64
	cancelledOrigin domain.CancelOrigin
	cancelledReason domain.CancelReason
	cancelledMsg    *string
	cancelledAudit  domain.TransitionAudit
}

func (f *fakeAppointmentRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.appointment, nil
}

func (f *fakeAppointmentRepo) Cancel(
	ctx context.Context,
	id int64,
	audit domain.TransitionAudit,
	origin domain.CancelOrigin,
	reason domain.CancelReason,
	message *string,
) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelledID = id
	f.cancelledAudit = audit
	f.cancelledOrigin = origin
	f.cancelledReason = reason
	f.cancelledMsg = message
	return nil
}

type fakeTokenRepo struct {
	token      *domain.CancellationToken
	getErr     error
	consumeErr error
	consumedID int64
}

func (f *fakeTokenRepo) GetBySecret(ctx context.Context, secret string) (*domain.CancellationToken, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.token, nil
}

func (f *fakeTokenRepo) Consume(ctx context.Context, id int64, usedAt time.Time) error {
	if f.consumeErr != nil {
		return f.consumeErr
	}
	f.consumedID = id
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

func newTestUseCase(
	appointments *fakeAppointmentRepo,
	tokens *fakeTokenRepo,
	publisher *fakePublisher,
	now time.Time,
) *UseCase {
	uc := NewUseCase(appointments, tokens, publisher, passthroughTxManager{}, nopLogger{})
	uc.timeProvider = fixedTime{now: now}
	return uc
}

func TestExecuteByActor_CancelsPendingAppointment(t *testing.T) {
	appointments := &fakeAppointmentRepo{appointment: pendingAppointment()}
	publisher := &fakePublisher{}
	uc := newTestUseCase(appointments, &fakeTokenRepo{}, publisher, startAt.Add(-time.Hour))

	msg := "перенесите на другой день"
	cancelled, err := uc.ExecuteByActor(context.Background(), &ActorRequest{
		AppointmentID: 10,
		Actor:         domain.Actor{ID: 99, Name: "Olga", Role: domain.RoleAdmin},
		Message:       &msg,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, domain.CancelOriginInternal, appointments.cancelledOrigin)
	assert.Equal(t, domain.ReasonCancelledByAdmin, appointments.cancelledReason)
	require.NotNil(t, appointments.cancelledMsg)
	assert.Equal(t, msg, *appointments.cancelledMsg)
	require.NotNil(t, appointments.cancelledAudit.ActorID)
	assert.Equal(t, int64(99), *appointments.cancelledAudit.ActorID)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, domain.EventCanceled, publisher.events[0].Type)
}

func TestExecuteByActor_ReasonFollowsRole(t *testing.T) {
	tests := []struct {
		role   domain.Role
		reason domain.CancelReason
	}{
		{role: domain.RoleAdmin, reason: domain.ReasonCancelledByAdmin},
		{role: domain.RoleDev, reason: domain.ReasonCancelledByAdmin},
		{role: domain.RoleStaff, reason: domain.ReasonCancelledByStaff},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			appointments := &fakeAppointmentRepo{appointment: pendingAppointment()}
			uc := newTestUseCase(appointments, &fakeTokenRepo{}, &fakePublisher{}, startAt.Add(-time.Hour))

			// STAFF может отменить только собственную запись
			_, err := uc.ExecuteByActor(context.Background(), &ActorRequest{
				AppointmentID: 10,
				Actor:         domain.Actor{ID: 1, Role: tt.role},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.reason, appointments.cancelledReason)
		})
	}
}

func TestExecuteByActor_StaffCannotCancelForeignAppointment(t *testing.T) {
	appointments := &fakeAppointmentRepo{appointment: pendingAppointment()}
	publisher := &fakePublisher{}
	uc := newTestUseCase(appointments, &fakeTokenRepo{}, publisher, startAt.Add(-time.Hour))

	_, err := uc.ExecuteByActor(context.Background(), &ActorRequest{
		AppointmentID: 10,
		Actor:         domain.Actor{ID: 777, Role: domain.RoleStaff},
	})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, publisher.events)
}

func TestExecuteByActor_DeadlinePassed(t *testing.T) {
	appointments := &fakeAppointmentRepo{appointment: pendingAppointment()}
	uc := newTestUseCase(appointments, &fakeTokenRepo{}, &fakePublisher{},
		startAt.Add(-domain.CancellationDeadline))

	_, err := uc.ExecuteByActor(context.Background(), &ActorRequest{
		AppointmentID: 10,
		Actor:         domain.Actor{ID: 99, Role: domain.RoleAdmin},
	})
	assert.ErrorIs(t, err, ErrDeadlinePassed)
}

func TestExecuteByActor_NotPending(t *testing.T) {
	a := pendingAppointment()
	a.Status = domain.StatusConfirmed
	uc := newTestUseCase(&fakeAppointmentRepo{appointment: a}, &fakeTokenRepo{}, &fakePublisher{},
		startAt.Add(-time.Hour))

	_, err := uc.ExecuteByActor(context.Background(), &ActorRequest{
		AppointmentID: 10,
		Actor:         domain.Actor{ID: 99, Role: domain.RoleAdmin},
	})
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestExecuteByActor_NotFound(t *testing.T) {
	uc := newTestUseCase(&fakeAppointmentRepo{getErr: appointmentRepo.ErrAppointmentNotFound},
		&fakeTokenRepo{}, &fakePublisher{}, startAt.Add(-time.Hour))

	_, err := uc.ExecuteByActor(context.Background(), &ActorRequest{
		AppointmentID: 10,
		Actor:         domain.Actor{ID: 99, Role: domain.RoleAdmin},
	})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestExecuteByActor_TruncatesLongMessage(t *testing.T) {
	appointments := &fakeAppointmentRepo{appointment: pendingAppointment()}
	uc := newTestUseCase(appointments, &fakeTokenRepo{}, &fakePublisher{}, startAt.Add(-time.Hour))

	long := strings.Repeat("a", domain.MaxCancelMessageLen+100)
	_, err := uc.ExecuteByActor(context.Background(), &ActorRequest{
		AppointmentID: 10,
		Actor:         domain.Actor{ID: 99, Role: domain.RoleAdmin},
		Message:       &long,
	})
	require.NoError(t, err)
	require.NotNil(t, appointments.cancelledMsg)
	assert.Len(t, *appointments.cancelledMsg, domain.MaxCancelMessageLen)
}

func usableToken() *domain.CancellationToken {
	return &domain.CancellationToken{
		ID:            3,
		AppointmentID: 10,
		Secret:        "secret-uuid",
		ExpiresAt:     startAt.Add(-domain.CancellationDeadline),
	}
}

func TestExecuteByToken_CancelsAppointment(t *testing.T) {
	appointments := &fakeAppointmentRepo{appointment: pendingAppointment()}
	tokens := &fakeTokenRepo{token: usableToken()}
	publisher := &fakePublisher{}
	uc := newTestUseCase(appointments, tokens, publisher, startAt.Add(-time.Hour))

	cancelled, err := uc.ExecuteByToken(context.Background(), &TokenRequest{Secret: "secret-uuid"})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, int64(3), tokens.consumedID)
	assert.Equal(t, domain.CancelOriginClient, appointments.cancelledOrigin)
	assert.Equal(t, domain.ReasonCancelledByClient, appointments.cancelledReason)
	assert.Nil(t, appointments.cancelledMsg)

	// Клиентская отмена фиксирует в аудите только время
	assert.Nil(t, appointments.cancelledAudit.ActorID)
	require.NotNil(t, appointments.cancelledAudit.At)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, domain.EventCanceled, publisher.events[0].Type)
}

// Все сбои предусловий сворачиваются в один общий ErrInvalidToken
func TestExecuteByToken_PreconditionFailuresCollapse(t *testing.T) {
	now := startAt.Add(-time.Hour)

	t.Run("token not found", func(t *testing.T) {
		uc := newTestUseCase(&fakeAppointmentRepo{}, &fakeTokenRepo{getErr: tokenRepo.ErrTokenNotFound},
			&fakePublisher{}, now)
		_, err := uc.ExecuteByToken(context.Background(), &TokenRequest{Secret: "nope"})
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token expired", func(t *testing.T) {
		token := usableToken()
		token.ExpiresAt = now.Add(-time.Minute)
		uc := newTestUseCase(&fakeAppointmentRepo{appointment: pendingAppointment()},
			&fakeTokenRepo{token: token}, &fakePublisher{}, now)
		_, err := uc.ExecuteByToken(context.Background(), &TokenRequest{Secret: "secret-uuid"})
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token already used", func(t *testing.T) {
		token := usableToken()
		used := now.Add(-time.Minute)
		token.UsedAt = &used
		uc := newTestUseCase(&fakeAppointmentRepo{appointment: pendingAppointment()},
			&fakeTokenRepo{token: token}, &fakePublisher{}, now)
		_, err := uc.ExecuteByToken(context.Background(), &TokenRequest{Secret: "secret-uuid"})
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("appointment not pending", func(t *testing.T) {
		a := pendingAppointment()
		a.Status = domain.StatusConfirmed
		uc := newTestUseCase(&fakeAppointmentRepo{appointment: a},
			&fakeTokenRepo{token: usableToken()}, &fakePublisher{}, now)
		_, err := uc.ExecuteByToken(context.Background(), &TokenRequest{Secret: "secret-uuid"})
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("concurrent consume", func(t *testing.T) {
		uc := newTestUseCase(&fakeAppointmentRepo{appointment: pendingAppointment()},
			&fakeTokenRepo{token: usableToken(), consumeErr: tokenRepo.ErrTokenAlreadyUsed},
			&fakePublisher{}, now)
		_, err := uc.ExecuteByToken(context.Background(), &TokenRequest{Secret: "secret-uuid"})
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestExecuteByToken_EmptySecret(t *testing.T) {
	uc := newTestUseCase(&fakeAppointmentRepo{}, &fakeTokenRepo{}, &fakePublisher{}, startAt)
	_, err := uc.ExecuteByToken(context.Background(), &TokenRequest{Secret: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

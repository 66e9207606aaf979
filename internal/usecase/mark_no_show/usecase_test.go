package mark_no_show

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
	byID       map[int64]*domain.Appointment
	pending    []*domain.Appointment
	markErrs   map[int64]error
	markedIDs  []int64
	lastAudits map[int64]domain.TransitionAudit
}

func newFakeRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		byID:       make(map[int64]*domain.Appointment),
		markErrs:   make(map[int64]error),
		lastAudits: make(map[int64]domain.TransitionAudit),
	}
}

func (f *fakeAppointmentRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	return a, nil
}

func (f *fakeAppointmentRepo) MarkNoShow(ctx context.Context, id int64, audit domain.TransitionAudit) error {
	if err := f.markErrs[id]; err != nil {
		return err
	}
	f.markedIDs = append(f.markedIDs, id)
	f.lastAudits[id] = audit
	return nil
}

func (f *fakeAppointmentRepo) FindPendingStartedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Appointment, error) {
	return f.pending, nil
}

type fakePublisher struct {
	events []domain.Event
}

func (f *fakePublisher) PublishAsync(ctx context.Context, event domain.Event) {
	f.events = append(f.events, event)
}

var startAt = time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC)

func pendingAppointment(id int64) *domain.Appointment {
	return &domain.Appointment{
		ID:             id,
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

func TestExecuteByActor_MarksNoShow(t *testing.T) {
	repo := newFakeRepo()
	repo.byID[10] = pendingAppointment(10)
	publisher := &fakePublisher{}
	uc := newTestUseCase(repo, publisher, startAt.Add(5*time.Minute))

	marked, err := uc.ExecuteByActor(context.Background(), &Request{
		AppointmentID: 10,
		Actor:         domain.Actor{ID: 1, Role: domain.RoleStaff},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusNoShow, marked.Status)
	assert.Equal(t, []int64{10}, repo.markedIDs)

	// Ручная отметка не публикует событие
	assert.Empty(t, publisher.events)
}

func TestExecuteByActor_TooEarly(t *testing.T) {
	repo := newFakeRepo()
	repo.byID[10] = pendingAppointment(10)
	uc := newTestUseCase(repo, &fakePublisher{}, startAt.Add(-time.Second))

	_, err := uc.ExecuteByActor(context.Background(), &Request{
		AppointmentID: 10,
		Actor:         domain.Actor{ID: 1, Role: domain.RoleAdmin},
	})
	assert.ErrorIs(t, err, ErrTooEarly)
}

func TestExecuteByActor_StaffCannotMarkForeignAppointment(t *testing.T) {
	repo := newFakeRepo()
	repo.byID[10] = pendingAppointment(10)
	uc := newTestUseCase(repo, &fakePublisher{}, startAt.Add(time.Hour))

	_, err := uc.ExecuteByActor(context.Background(), &Request{
		AppointmentID: 10,
		Actor:         domain.Actor{ID: 777, Role: domain.RoleStaff},
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestExecuteByActor_NotPending(t *testing.T) {
	repo := newFakeRepo()
	a := pendingAppointment(10)
	a.Status = domain.StatusNoShow
	repo.byID[10] = a
	uc := newTestUseCase(repo, &fakePublisher{}, startAt.Add(time.Hour))

	_, err := uc.ExecuteByActor(context.Background(), &Request{
		AppointmentID: 10,
		Actor:         domain.Actor{ID: 1, Role: domain.RoleAdmin},
	})
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestExecuteAuto_MarksOverdueAppointments(t *testing.T) {
	repo := newFakeRepo()
	repo.byID[10] = pendingAppointment(10)
	repo.byID[11] = pendingAppointment(11)
	repo.pending = []*domain.Appointment{repo.byID[10], repo.byID[11]}

	publisher := &fakePublisher{}
	uc := newTestUseCase(repo, publisher, startAt.Add(time.Hour))

	result, err := uc.ExecuteAuto(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, []int64{10, 11}, repo.markedIDs)

	// Системный актор в аудите, событие на каждую отмеченную запись
	audit := repo.lastAudits[10]
	require.NotNil(t, audit.ActorID)
	assert.Equal(t, domain.SystemActor.ID, *audit.ActorID)

	require.Len(t, publisher.events, 2)
	assert.Equal(t, domain.EventNoShow, publisher.events[0].Type)
}

func TestExecuteAuto_SkipsConcurrentlyTransitionedAppointments(t *testing.T) {
	repo := newFakeRepo()
	repo.byID[10] = pendingAppointment(10)

	gone := pendingAppointment(11)
	confirmed := pendingAppointment(12)
	confirmed.Status = domain.StatusConfirmed
	repo.byID[12] = confirmed

	repo.pending = []*domain.Appointment{repo.byID[10], gone, confirmed}

	publisher := &fakePublisher{}
	uc := newTestUseCase(repo, publisher, startAt.Add(time.Hour))

	result, err := uc.ExecuteAuto(context.Background())
	require.NoError(t, err)

	// Исчезнувшая и уже подтвержденная записи молча пропускаются
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, []int64{10}, repo.markedIDs)
	assert.Len(t, publisher.events, 1)
}

func TestExecuteAuto_ContinuesAfterFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.byID[10] = pendingAppointment(10)
	repo.byID[11] = pendingAppointment(11)
	repo.pending = []*domain.Appointment{repo.byID[10], repo.byID[11]}
	repo.markErrs[10] = assert.AnError

	uc := newTestUseCase(repo, &fakePublisher{}, startAt.Add(time.Hour))

	result, err := uc.ExecuteAuto(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []int64{11}, repo.markedIDs)
}

package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	appointmentRepo "github.com/dvasko/SBP-AppointmentService/internal/infra/storage/appointment"
	"github.com/dvasko/SBP-AppointmentService/internal/service/appointments/models"
	"github.com/dvasko/SBP-AppointmentService/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fakeAppointmentRepo struct {
	appointment *domain.Appointment
	getErr      error

	listResult []*domain.Appointment
	listTotal  int64
	lastFilter domain.AppointmentsFilter
}

func (f *fakeAppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.appointment, nil
}

func (f *fakeAppointmentRepo) ListWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, int64, error) {
	f.lastFilter = filter
	return f.listResult, f.listTotal, nil
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

func newTestService(repo *fakeAppointmentRepo, now time.Time) *Service {
	svc := NewService(repo, nopLogger{})
	svc.timeProvider = fixedTime{now: now}
	return svc
}

func TestGetByID_ComputesActionFlags(t *testing.T) {
	repo := &fakeAppointmentRepo{appointment: pendingAppointment()}
	svc := newTestService(repo, startAt.Add(-time.Hour))

	resp, err := svc.GetByID(context.Background(), 10, domain.Actor{ID: 99, Role: domain.RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, "2609-0001", resp.Code)
	assert.True(t, resp.CanCancel)
	assert.False(t, resp.CanConfirm)
	assert.False(t, resp.CanMarkNoShow)
}

func TestGetByID_StaffSeesOnlyOwnAppointments(t *testing.T) {
	repo := &fakeAppointmentRepo{appointment: pendingAppointment()}
	svc := newTestService(repo, startAt)

	_, err := svc.GetByID(context.Background(), 10, domain.Actor{ID: 1, Role: domain.RoleStaff})
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), 10, domain.Actor{ID: 777, Role: domain.RoleStaff})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := &fakeAppointmentRepo{getErr: appointmentRepo.ErrAppointmentNotFound}
	svc := newTestService(repo, startAt)

	_, err := svc.GetByID(context.Background(), 10, domain.Actor{ID: 99, Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestList_StaffFilterIsForced(t *testing.T) {
	repo := &fakeAppointmentRepo{listResult: []*domain.Appointment{pendingAppointment()}, listTotal: 1}
	svc := newTestService(repo, startAt)

	// STAFF пытается подсмотреть чужие записи через фильтр
	_, err := svc.List(context.Background(), &models.ListAppointmentsRequest{
		Actor:          domain.Actor{ID: 1, Role: domain.RoleStaff},
		ProfessionalID: ptr.Ptr(int64(777)),
	})
	require.NoError(t, err)

	require.NotNil(t, repo.lastFilter.ProfessionalID)
	assert.Equal(t, int64(1), *repo.lastFilter.ProfessionalID)
}

func TestList_AdminFilterIsKept(t *testing.T) {
	repo := &fakeAppointmentRepo{listTotal: 0}
	svc := newTestService(repo, startAt)

	_, err := svc.List(context.Background(), &models.ListAppointmentsRequest{
		Actor:          domain.Actor{ID: 99, Role: domain.RoleAdmin},
		ProfessionalID: ptr.Ptr(int64(777)),
	})
	require.NoError(t, err)

	require.NotNil(t, repo.lastFilter.ProfessionalID)
	assert.Equal(t, int64(777), *repo.lastFilter.ProfessionalID)
}

func TestList_PaginationAndTotals(t *testing.T) {
	repo := &fakeAppointmentRepo{listResult: []*domain.Appointment{pendingAppointment()}, listTotal: 45}
	svc := newTestService(repo, startAt)

	resp, err := svc.List(context.Background(), &models.ListAppointmentsRequest{
		Actor:    domain.Actor{ID: 99, Role: domain.RoleAdmin},
		Page:     2,
		PageSize: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 20, resp.Pagination.PageSize)
	assert.Equal(t, int64(45), resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
}

func TestList_InvalidStatus(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	svc := newTestService(repo, startAt)

	_, err := svc.List(context.Background(), &models.ListAppointmentsRequest{
		Actor:  domain.Actor{ID: 99, Role: domain.RoleAdmin},
		Status: ptr.Ptr("imaginary"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	scheduleRepo "github.com/dvasko/SBP-AppointmentService/internal/infra/storage/schedule"
	"github.com/dvasko/SBP-AppointmentService/internal/integrations/catalogservice"
	"github.com/dvasko/SBP-AppointmentService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fakeAppointmentRepo struct {
	appointments []*domain.Appointment
	err          error
}

func (f *fakeAppointmentRepo) FindActiveByProfessionalAndDate(ctx context.Context, professionalID int64, date time.Time) ([]*domain.Appointment, error) {
	return f.appointments, f.err
}

type fakeScheduleRepo struct {
	schedule    *domain.WeeklySchedule
	scheduleErr error
	blocks      []*domain.ScheduleBlock
	blocksErr   error
}

func (f *fakeScheduleRepo) GetByProfessional(ctx context.Context, professionalID int64) (*domain.WeeklySchedule, error) {
	return f.schedule, f.scheduleErr
}

func (f *fakeScheduleRepo) FindBlocksForDate(ctx context.Context, professionalID int64, date time.Time) ([]*domain.ScheduleBlock, error) {
	return f.blocks, f.blocksErr
}

type fakeCatalogClient struct {
	service    *catalogservice.Service
	serviceErr error
	authorized bool
	authErr    error
}

func (f *fakeCatalogClient) GetService(ctx context.Context, serviceID int64) (*catalogservice.Service, error) {
	return f.service, f.serviceErr
}

func (f *fakeCatalogClient) IsProfessionalAuthorized(ctx context.Context, professionalID, serviceID int64) (bool, error) {
	return f.authorized, f.authErr
}

func tsPtr(s string) *types.TimeString {
	v := types.TimeString(s)
	return &v
}

// Понедельник 2026-09-07, рабочие часы 10:00-12:00
func mondaySchedule() *domain.WeeklySchedule {
	days := make([]domain.DayConfig, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if wd != time.Monday {
			days = append(days, domain.DayConfig{Weekday: wd, Active: false})
			continue
		}
		days = append(days, domain.DayConfig{
			Weekday: wd,
			Active:  true,
			Start:   tsPtr("10:00"),
			End:     tsPtr("12:00"),
		})
	}
	return &domain.WeeklySchedule{ProfessionalID: 1, Days: days}
}

func newTestUseCase(
	appointments *fakeAppointmentRepo,
	schedules *fakeScheduleRepo,
	catalog *fakeCatalogClient,
	now time.Time,
) *UseCase {
	uc := NewUseCase(appointments, schedules, catalog, nopLogger{})
	uc.timeProvider = fixedTime{now: now}
	return uc
}

func TestExecute_GeneratesSlotsAroundBusyAppointment(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC) // Monday
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	busy := &domain.Appointment{
		Status:  domain.StatusPending,
		StartAt: time.Date(2026, 9, 7, 10, 30, 0, 0, time.UTC),
		EndAt:   time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC),
	}

	uc := newTestUseCase(
		&fakeAppointmentRepo{appointments: []*domain.Appointment{busy}},
		&fakeScheduleRepo{schedule: mondaySchedule()},
		&fakeCatalogClient{
			service:    &catalogservice.Service{ID: 5, Name: "Haircut", DurationMinutes: 30, Active: true},
			authorized: true,
		},
		now,
	)

	resp, err := uc.Execute(context.Background(), &Request{ProfessionalID: 1, ServiceID: 5, Date: date})
	require.NoError(t, err)
	assert.Equal(t, 30, resp.DurationMinutes)

	// 10:00 свободен, 10:05-10:55 конфликтуют с занятым интервалом,
	// дальше 11:00..11:30 с шагом 5 минут
	require.Len(t, resp.Slots, 8)
	assert.Equal(t, domain.Slot{Date: date, StartTime: "10:00", EndTime: "10:30"}, resp.Slots[0])
	assert.Equal(t, domain.Slot{Date: date, StartTime: "11:00", EndTime: "11:30"}, resp.Slots[1])
	assert.Equal(t, domain.Slot{Date: date, StartTime: "11:30", EndTime: "12:00"}, resp.Slots[7])
}

func TestExecute_CancelledAppointmentFreesTheSlot(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	cancelled := &domain.Appointment{
		Status:  domain.StatusCancelled,
		StartAt: time.Date(2026, 9, 7, 10, 30, 0, 0, time.UTC),
		EndAt:   time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC),
	}

	uc := newTestUseCase(
		&fakeAppointmentRepo{appointments: []*domain.Appointment{cancelled}},
		&fakeScheduleRepo{schedule: mondaySchedule()},
		&fakeCatalogClient{
			service:    &catalogservice.Service{ID: 5, DurationMinutes: 30, Active: true},
			authorized: true,
		},
		now,
	)

	resp, err := uc.Execute(context.Background(), &Request{ProfessionalID: 1, ServiceID: 5, Date: date})
	require.NoError(t, err)

	// Все кандидаты 10:00..11:30 с шагом 5 минут
	assert.Len(t, resp.Slots, 19)
}

func TestExecute_TodayFiltersPastSlots(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC)

	uc := newTestUseCase(
		&fakeAppointmentRepo{},
		&fakeScheduleRepo{schedule: mondaySchedule()},
		&fakeCatalogClient{
			service:    &catalogservice.Service{ID: 5, DurationMinutes: 30, Active: true},
			authorized: true,
		},
		now,
	)

	resp, err := uc.Execute(context.Background(), &Request{ProfessionalID: 1, ServiceID: 5, Date: date})
	require.NoError(t, err)

	// Слот ровно в 11:00 не включается, остаются 11:05..11:30
	require.Len(t, resp.Slots, 6)
	assert.Equal(t, types.TimeString("11:05"), resp.Slots[0].StartTime)
}

func TestExecute_PastDateReturnsEmpty(t *testing.T) {
	uc := newTestUseCase(
		&fakeAppointmentRepo{},
		&fakeScheduleRepo{schedule: mondaySchedule()},
		&fakeCatalogClient{
			service:    &catalogservice.Service{ID: 5, DurationMinutes: 30, Active: true},
			authorized: true,
		},
		time.Date(2026, 9, 8, 9, 0, 0, 0, time.UTC),
	)

	resp, err := uc.Execute(context.Background(), &Request{
		ProfessionalID: 1,
		ServiceID:      5,
		Date:           time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_NoScheduleReturnsEmpty(t *testing.T) {
	uc := newTestUseCase(
		&fakeAppointmentRepo{},
		&fakeScheduleRepo{scheduleErr: scheduleRepo.ErrScheduleNotFound},
		&fakeCatalogClient{
			service:    &catalogservice.Service{ID: 5, DurationMinutes: 30, Active: true},
			authorized: true,
		},
		time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
	)

	resp, err := uc.Execute(context.Background(), &Request{
		ProfessionalID: 1,
		ServiceID:      5,
		Date:           time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_FullDayBlockReturnsEmpty(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	block := &domain.ScheduleBlock{
		ProfessionalID: 1,
		StartDate:      date,
		EndDate:        date,
		FullDay:        true,
	}

	uc := newTestUseCase(
		&fakeAppointmentRepo{},
		&fakeScheduleRepo{schedule: mondaySchedule(), blocks: []*domain.ScheduleBlock{block}},
		&fakeCatalogClient{
			service:    &catalogservice.Service{ID: 5, DurationMinutes: 30, Active: true},
			authorized: true,
		},
		time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
	)

	resp, err := uc.Execute(context.Background(), &Request{ProfessionalID: 1, ServiceID: 5, Date: date})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_ServiceNotFound(t *testing.T) {
	uc := newTestUseCase(
		&fakeAppointmentRepo{},
		&fakeScheduleRepo{},
		&fakeCatalogClient{serviceErr: catalogservice.ErrServiceNotFound},
		time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
	)

	_, err := uc.Execute(context.Background(), &Request{
		ProfessionalID: 1,
		ServiceID:      99,
		Date:           time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_ProfessionalNotAuthorized(t *testing.T) {
	uc := newTestUseCase(
		&fakeAppointmentRepo{},
		&fakeScheduleRepo{},
		&fakeCatalogClient{
			service:    &catalogservice.Service{ID: 5, DurationMinutes: 30, Active: true},
			authorized: false,
		},
		time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
	)

	_, err := uc.Execute(context.Background(), &Request{
		ProfessionalID: 1,
		ServiceID:      5,
		Date:           time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrServiceNotAuthorized)
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := newTestUseCase(&fakeAppointmentRepo{}, &fakeScheduleRepo{}, &fakeCatalogClient{}, time.Now())

	_, err := uc.Execute(context.Background(), &Request{ProfessionalID: 0, ServiceID: 5, Date: time.Now()})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{ProfessionalID: 1, ServiceID: 0, Date: time.Now()})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{ProfessionalID: 1, ServiceID: 5})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

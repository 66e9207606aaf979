package schedules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	scheduleRepo "github.com/dvasko/SBP-AppointmentService/internal/infra/storage/schedule"
	"github.com/dvasko/SBP-AppointmentService/internal/integrations/identityservice"
	"github.com/dvasko/SBP-AppointmentService/internal/service/schedules/models"
	"github.com/dvasko/SBP-AppointmentService/pkg/ptr"
	"github.com/dvasko/SBP-AppointmentService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type passthroughTxManager struct{}

func (passthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeScheduleRepo struct {
	schedule    *domain.WeeklySchedule
	scheduleErr error
	replaced    *domain.WeeklySchedule

	existingBlocks []*domain.ScheduleBlock
	createdBlock   *domain.ScheduleBlock
	blockByID      *domain.ScheduleBlock
	blockErr       error
	deletedID      int64
}

func (f *fakeScheduleRepo) GetByProfessional(ctx context.Context, professionalID int64) (*domain.WeeklySchedule, error) {
	if f.scheduleErr != nil {
		return nil, f.scheduleErr
	}
	return f.schedule, nil
}

func (f *fakeScheduleRepo) Replace(ctx context.Context, schedule *domain.WeeklySchedule) error {
	f.replaced = schedule
	f.schedule = schedule
	return nil
}

func (f *fakeScheduleRepo) CreateBlock(ctx context.Context, block *domain.ScheduleBlock) (*domain.ScheduleBlock, error) {
	stored := *block
	stored.ID = 5
	f.createdBlock = &stored
	return &stored, nil
}

func (f *fakeScheduleRepo) FindBlocksInRange(ctx context.Context, professionalID int64, from, to *time.Time) ([]*domain.ScheduleBlock, error) {
	return f.existingBlocks, nil
}

func (f *fakeScheduleRepo) FindBlocksInRangeForUpdate(ctx context.Context, professionalID int64, from, to *time.Time) ([]*domain.ScheduleBlock, error) {
	return f.existingBlocks, nil
}

func (f *fakeScheduleRepo) GetBlockByID(ctx context.Context, id int64) (*domain.ScheduleBlock, error) {
	if f.blockErr != nil {
		return nil, f.blockErr
	}
	return f.blockByID, nil
}

func (f *fakeScheduleRepo) DeleteBlock(ctx context.Context, id int64) error {
	f.deletedID = id
	return nil
}

type fakeIdentityClient struct {
	professional *identityservice.Professional
	err          error
}

func (f *fakeIdentityClient) GetProfessional(ctx context.Context, professionalID int64) (*identityservice.Professional, error) {
	return f.professional, f.err
}

func newTestService(repo *fakeScheduleRepo, identity *fakeIdentityClient) *Service {
	return NewService(repo, identity, passthroughTxManager{}, nopLogger{})
}

func fullWeekInput() []models.DayConfigInput {
	days := make([]models.DayConfigInput, 0, 7)
	for _, name := range []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"} {
		if name == "sunday" || name == "saturday" {
			days = append(days, models.DayConfigInput{Weekday: name, Active: false})
			continue
		}
		days = append(days, models.DayConfigInput{
			Weekday: name,
			Active:  true,
			Start:   ptr.Ptr("09:00"),
			End:     ptr.Ptr("18:00"),
			Breaks:  []models.BreakInput{{Start: "13:00", End: "14:00"}},
		})
	}
	return days
}

func admin() domain.Actor {
	return domain.Actor{ID: 99, Name: "Olga", Role: domain.RoleAdmin}
}

func TestReplaceSchedule_ReplacesWholesale(t *testing.T) {
	repo := &fakeScheduleRepo{}
	identity := &fakeIdentityClient{professional: &identityservice.Professional{ID: 1, Active: true}}
	svc := newTestService(repo, identity)

	resp, err := svc.ReplaceSchedule(context.Background(), &models.ReplaceScheduleRequest{
		ProfessionalID: 1,
		Actor:          admin(),
		Days:           fullWeekInput(),
	})
	require.NoError(t, err)

	require.NotNil(t, repo.replaced)
	assert.Equal(t, int64(1), repo.replaced.ProfessionalID)
	assert.Len(t, repo.replaced.Days, 7)
	assert.Len(t, resp.Days, 7)
}

func TestReplaceSchedule_RejectsInvalidPayload(t *testing.T) {
	repo := &fakeScheduleRepo{}
	identity := &fakeIdentityClient{professional: &identityservice.Professional{ID: 1, Active: true}}
	svc := newTestService(repo, identity)

	t.Run("unknown weekday", func(t *testing.T) {
		days := fullWeekInput()
		days[0].Weekday = "someday"
		_, err := svc.ReplaceSchedule(context.Background(), &models.ReplaceScheduleRequest{
			ProfessionalID: 1, Actor: admin(), Days: days,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("incomplete week", func(t *testing.T) {
		_, err := svc.ReplaceSchedule(context.Background(), &models.ReplaceScheduleRequest{
			ProfessionalID: 1, Actor: admin(), Days: fullWeekInput()[:5],
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("break outside working hours", func(t *testing.T) {
		days := fullWeekInput()
		days[1].Breaks = []models.BreakInput{{Start: "07:00", End: "08:00"}}
		_, err := svc.ReplaceSchedule(context.Background(), &models.ReplaceScheduleRequest{
			ProfessionalID: 1, Actor: admin(), Days: days,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestReplaceSchedule_ProfessionalMustExist(t *testing.T) {
	repo := &fakeScheduleRepo{}
	identity := &fakeIdentityClient{err: identityservice.ErrProfessionalNotFound}
	svc := newTestService(repo, identity)

	_, err := svc.ReplaceSchedule(context.Background(), &models.ReplaceScheduleRequest{
		ProfessionalID: 1, Actor: admin(), Days: fullWeekInput(),
	})
	assert.ErrorIs(t, err, ErrProfessionalNotFound)
}

func TestReplaceSchedule_StaffCannotEditForeignSchedule(t *testing.T) {
	svc := newTestService(&fakeScheduleRepo{}, &fakeIdentityClient{})

	_, err := svc.ReplaceSchedule(context.Background(), &models.ReplaceScheduleRequest{
		ProfessionalID: 1,
		Actor:          domain.Actor{ID: 777, Role: domain.RoleStaff},
		Days:           fullWeekInput(),
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetSchedule_NotFound(t *testing.T) {
	svc := newTestService(&fakeScheduleRepo{scheduleErr: scheduleRepo.ErrScheduleNotFound}, &fakeIdentityClient{})

	_, err := svc.GetSchedule(context.Background(), 1, admin())
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestCreateBlock_RejectsOverlap(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	start := types.TimeString("10:00")
	end := types.TimeString("12:00")

	repo := &fakeScheduleRepo{
		existingBlocks: []*domain.ScheduleBlock{
			{ID: 1, ProfessionalID: 1, StartDate: date, EndDate: date, Start: &start, End: &end},
		},
	}
	svc := newTestService(repo, &fakeIdentityClient{})

	_, err := svc.CreateBlock(context.Background(), &models.CreateBlockRequest{
		ProfessionalID: 1,
		Actor:          admin(),
		StartDate:      date,
		EndDate:        date,
		Start:          ptr.Ptr("11:00"),
		End:            ptr.Ptr("13:00"),
	})
	assert.ErrorIs(t, err, ErrBlockOverlap)
	assert.Nil(t, repo.createdBlock)
}

func TestCreateBlock_AllowsTouchingBlocks(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	start := types.TimeString("10:00")
	end := types.TimeString("12:00")

	repo := &fakeScheduleRepo{
		existingBlocks: []*domain.ScheduleBlock{
			{ID: 1, ProfessionalID: 1, StartDate: date, EndDate: date, Start: &start, End: &end},
		},
	}
	svc := newTestService(repo, &fakeIdentityClient{})

	resp, err := svc.CreateBlock(context.Background(), &models.CreateBlockRequest{
		ProfessionalID: 1,
		Actor:          admin(),
		StartDate:      date,
		EndDate:        date,
		Start:          ptr.Ptr("12:00"),
		End:            ptr.Ptr("13:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.ID)
}

func TestCreateBlock_InvalidPayload(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	svc := newTestService(&fakeScheduleRepo{}, &fakeIdentityClient{})

	// Частичная блокировка на несколько дат запрещена
	_, err := svc.CreateBlock(context.Background(), &models.CreateBlockRequest{
		ProfessionalID: 1,
		Actor:          admin(),
		StartDate:      date,
		EndDate:        date.AddDate(0, 0, 1),
		Start:          ptr.Ptr("10:00"),
		End:            ptr.Ptr("11:00"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteBlock(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	block := &domain.ScheduleBlock{ID: 3, ProfessionalID: 1, StartDate: date, EndDate: date, FullDay: true}

	t.Run("owner can delete", func(t *testing.T) {
		repo := &fakeScheduleRepo{blockByID: block}
		svc := newTestService(repo, &fakeIdentityClient{})

		err := svc.DeleteBlock(context.Background(), 3, domain.Actor{ID: 1, Role: domain.RoleStaff})
		require.NoError(t, err)
		assert.Equal(t, int64(3), repo.deletedID)
	})

	t.Run("foreign staff cannot delete", func(t *testing.T) {
		repo := &fakeScheduleRepo{blockByID: block}
		svc := newTestService(repo, &fakeIdentityClient{})

		err := svc.DeleteBlock(context.Background(), 3, domain.Actor{ID: 777, Role: domain.RoleStaff})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("not found", func(t *testing.T) {
		repo := &fakeScheduleRepo{blockErr: scheduleRepo.ErrBlockNotFound}
		svc := newTestService(repo, &fakeIdentityClient{})

		err := svc.DeleteBlock(context.Background(), 3, admin())
		assert.ErrorIs(t, err, ErrBlockNotFound)
	})
}

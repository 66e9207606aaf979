package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validWeek() []DayConfig {
	days := make([]DayConfig, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if wd == time.Sunday || wd == time.Saturday {
			days = append(days, DayConfig{Weekday: wd, Active: false})
			continue
		}
		days = append(days, DayConfig{
			Weekday: wd,
			Active:  true,
			Start:   tsPtr("09:00"),
			End:     tsPtr("18:00"),
			Breaks:  []Break{{Start: ts("13:00"), End: ts("14:00")}},
		})
	}
	return days
}

func TestWeeklySchedule_Validate(t *testing.T) {
	t.Run("valid schedule", func(t *testing.T) {
		s := &WeeklySchedule{ProfessionalID: 1, Days: validWeek()}
		require.NoError(t, s.Validate())
	})

	t.Run("wrong number of days", func(t *testing.T) {
		s := &WeeklySchedule{ProfessionalID: 1, Days: validWeek()[:6]}
		assert.ErrorIs(t, s.Validate(), ErrInvalidSchedule)
	})

	t.Run("duplicate weekday", func(t *testing.T) {
		days := validWeek()
		days[6].Weekday = time.Monday
		s := &WeeklySchedule{ProfessionalID: 1, Days: days}
		assert.ErrorIs(t, s.Validate(), ErrInvalidSchedule)
	})

	t.Run("inactive day with times", func(t *testing.T) {
		days := validWeek()
		days[0].Start = tsPtr("09:00")
		s := &WeeklySchedule{ProfessionalID: 1, Days: days}
		assert.ErrorIs(t, s.Validate(), ErrInvalidSchedule)
	})

	t.Run("active day without times", func(t *testing.T) {
		days := validWeek()
		days[1].End = nil
		s := &WeeklySchedule{ProfessionalID: 1, Days: days}
		assert.ErrorIs(t, s.Validate(), ErrInvalidSchedule)
	})

	t.Run("start not before end", func(t *testing.T) {
		days := validWeek()
		days[1].Start = tsPtr("18:00")
		s := &WeeklySchedule{ProfessionalID: 1, Days: days}
		assert.ErrorIs(t, s.Validate(), ErrInvalidSchedule)
	})

	t.Run("break outside working hours", func(t *testing.T) {
		days := validWeek()
		days[1].Breaks = []Break{{Start: ts("08:00"), End: ts("09:30")}}
		s := &WeeklySchedule{ProfessionalID: 1, Days: days}
		assert.ErrorIs(t, s.Validate(), ErrInvalidSchedule)
	})

	t.Run("overlapping breaks", func(t *testing.T) {
		days := validWeek()
		days[1].Breaks = []Break{
			{Start: ts("12:00"), End: ts("13:00")},
			{Start: ts("12:30"), End: ts("14:00")},
		}
		s := &WeeklySchedule{ProfessionalID: 1, Days: days}
		assert.ErrorIs(t, s.Validate(), ErrInvalidSchedule)
	})
}

func TestWeeklySchedule_DayFor(t *testing.T) {
	s := &WeeklySchedule{ProfessionalID: 1, Days: validWeek()}

	day := s.DayFor(time.Monday)
	require.NotNil(t, day)
	assert.True(t, day.Active)

	s.Days = s.Days[:3]
	assert.Nil(t, s.DayFor(time.Friday))
}

func TestScheduleBlock_AppliesTo(t *testing.T) {
	b := &ScheduleBlock{
		ProfessionalID: 1,
		StartDate:      time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC),
		FullDay:        true,
	}

	assert.False(t, b.AppliesTo(time.Date(2026, 9, 6, 12, 0, 0, 0, time.UTC)))
	assert.True(t, b.AppliesTo(time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)))
	assert.True(t, b.AppliesTo(time.Date(2026, 9, 9, 23, 59, 0, 0, time.UTC)))
	assert.False(t, b.AppliesTo(time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)))
}

func TestScheduleBlock_Overlaps(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	partial := func(start, end string) *ScheduleBlock {
		return &ScheduleBlock{
			ProfessionalID: 1,
			StartDate:      date,
			EndDate:        date,
			Start:          tsPtr(start),
			End:            tsPtr(end),
		}
	}

	t.Run("partial blocks with intersecting times", func(t *testing.T) {
		assert.True(t, partial("10:00", "12:00").Overlaps(partial("11:00", "13:00")))
	})

	t.Run("partial blocks with touching times", func(t *testing.T) {
		assert.False(t, partial("10:00", "12:00").Overlaps(partial("12:00", "13:00")))
	})

	t.Run("full day block excludes any block in range", func(t *testing.T) {
		fullDay := &ScheduleBlock{
			ProfessionalID: 1,
			StartDate:      date,
			EndDate:        date.AddDate(0, 0, 2),
			FullDay:        true,
		}
		assert.True(t, fullDay.Overlaps(partial("10:00", "11:00")))
	})

	t.Run("disjoint date ranges", func(t *testing.T) {
		other := &ScheduleBlock{
			ProfessionalID: 1,
			StartDate:      date.AddDate(0, 0, 5),
			EndDate:        date.AddDate(0, 0, 5),
			FullDay:        true,
		}
		assert.False(t, partial("10:00", "11:00").Overlaps(other))
	})
}

func TestScheduleBlock_Validate(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	t.Run("valid full day block", func(t *testing.T) {
		b := &ScheduleBlock{ProfessionalID: 1, StartDate: date, EndDate: date.AddDate(0, 0, 3), FullDay: true}
		require.NoError(t, b.Validate())
	})

	t.Run("full day block with times", func(t *testing.T) {
		b := &ScheduleBlock{ProfessionalID: 1, StartDate: date, EndDate: date, FullDay: true, Start: tsPtr("10:00")}
		assert.ErrorIs(t, b.Validate(), ErrInvalidBlock)
	})

	t.Run("partial block over multiple dates", func(t *testing.T) {
		b := &ScheduleBlock{
			ProfessionalID: 1,
			StartDate:      date,
			EndDate:        date.AddDate(0, 0, 1),
			Start:          tsPtr("10:00"),
			End:            tsPtr("11:00"),
		}
		assert.ErrorIs(t, b.Validate(), ErrInvalidBlock)
	})

	t.Run("endDate before startDate", func(t *testing.T) {
		b := &ScheduleBlock{ProfessionalID: 1, StartDate: date, EndDate: date.AddDate(0, 0, -1), FullDay: true}
		assert.ErrorIs(t, b.Validate(), ErrInvalidBlock)
	})

	t.Run("partial block without times", func(t *testing.T) {
		b := &ScheduleBlock{ProfessionalID: 1, StartDate: date, EndDate: date}
		assert.ErrorIs(t, b.Validate(), ErrInvalidBlock)
	})
}

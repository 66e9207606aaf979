package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/dvasko/SBP-AppointmentService/pkg/types"
)

var (
	// ErrInvalidSchedule is returned when a weekly schedule violates its invariants
	ErrInvalidSchedule = errors.New("domain: invalid weekly schedule")

	// ErrInvalidBlock is returned when a schedule block violates its invariants
	ErrInvalidBlock = errors.New("domain: invalid schedule block")
)

// Break is a pause inside a working day
type Break struct {
	Start types.TimeString
	End   types.TimeString
}

// DayConfig is the configuration of one weekday.
// Start/End/Breaks are meaningful only when Active is true.
type DayConfig struct {
	Weekday time.Weekday
	Active  bool
	Start   *types.TimeString
	End     *types.TimeString
	Breaks  []Break
}

// WeeklySchedule holds the seven day configurations of one professional.
// It is always replaced wholesale, never patched per day.
type WeeklySchedule struct {
	ProfessionalID int64
	Days           []DayConfig
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DayFor returns the configuration for the given weekday, nil if absent
func (s *WeeklySchedule) DayFor(weekday time.Weekday) *DayConfig {
	for i := range s.Days {
		if s.Days[i].Weekday == weekday {
			return &s.Days[i]
		}
	}
	return nil
}

// Validate checks the schedule invariants: exactly seven distinct days;
// active days carry start < end and ordered non-overlapping breaks strictly
// inside working hours; inactive days carry no times and no breaks.
func (s *WeeklySchedule) Validate() error {
	if len(s.Days) != 7 {
		return fmt.Errorf("%w: expected 7 day configs, got %d", ErrInvalidSchedule, len(s.Days))
	}

	seen := make(map[time.Weekday]bool, 7)
	for _, day := range s.Days {
		if seen[day.Weekday] {
			return fmt.Errorf("%w: duplicate weekday %s", ErrInvalidSchedule, day.Weekday)
		}
		seen[day.Weekday] = true

		if !day.Active {
			if day.Start != nil || day.End != nil || len(day.Breaks) > 0 {
				return fmt.Errorf("%w: inactive day %s must not carry times or breaks", ErrInvalidSchedule, day.Weekday)
			}
			continue
		}

		if day.Start == nil || day.End == nil {
			return fmt.Errorf("%w: active day %s requires start and end", ErrInvalidSchedule, day.Weekday)
		}
		if err := day.Start.Validate(); err != nil {
			return fmt.Errorf("%w: day %s: %v", ErrInvalidSchedule, day.Weekday, err)
		}
		if err := day.End.Validate(); err != nil {
			return fmt.Errorf("%w: day %s: %v", ErrInvalidSchedule, day.Weekday, err)
		}
		if !day.Start.IsBefore(*day.End) {
			return fmt.Errorf("%w: day %s start must be before end", ErrInvalidSchedule, day.Weekday)
		}

		working := Interval{Start: *day.Start, End: *day.End}
		var prevEnd *types.TimeString
		for _, br := range day.Breaks {
			if err := br.Start.Validate(); err != nil {
				return fmt.Errorf("%w: day %s break: %v", ErrInvalidSchedule, day.Weekday, err)
			}
			if err := br.End.Validate(); err != nil {
				return fmt.Errorf("%w: day %s break: %v", ErrInvalidSchedule, day.Weekday, err)
			}
			if !br.Start.IsBefore(br.End) {
				return fmt.Errorf("%w: day %s break start must be before end", ErrInvalidSchedule, day.Weekday)
			}
			if !working.Contains(Interval{Start: br.Start, End: br.End}) {
				return fmt.Errorf("%w: day %s break outside working hours", ErrInvalidSchedule, day.Weekday)
			}
			if prevEnd != nil && br.Start.IsBefore(*prevEnd) {
				return fmt.Errorf("%w: day %s breaks must be ordered and non-overlapping", ErrInvalidSchedule, day.Weekday)
			}
			end := br.End
			prevEnd = &end
		}
	}

	return nil
}

// ScheduleBlock is an ad-hoc unavailability override for a date range.
// A partial-day block (FullDay=false) is limited to a single date and
// carries a time-of-day range.
type ScheduleBlock struct {
	ID             int64
	ProfessionalID int64
	StartDate      time.Time
	EndDate        time.Time
	FullDay        bool
	Start          *types.TimeString
	End            *types.TimeString
	Reason         string
	CreatedAt      time.Time
}

// AppliesTo reports whether the block covers the given date
func (b *ScheduleBlock) AppliesTo(date time.Time) bool {
	day := truncateToDay(date)
	return !day.Before(truncateToDay(b.StartDate)) && !day.After(truncateToDay(b.EndDate))
}

// Overlaps reports whether two blocks of the same professional conflict:
// date ranges intersect and, when both are partial, time ranges intersect too.
// A full-day block excludes any other block in its date range.
func (b *ScheduleBlock) Overlaps(other *ScheduleBlock) bool {
	if truncateToDay(b.StartDate).After(truncateToDay(other.EndDate)) ||
		truncateToDay(other.StartDate).After(truncateToDay(b.EndDate)) {
		return false
	}
	if b.FullDay || other.FullDay {
		return true
	}
	left := Interval{Start: *b.Start, End: *b.End}
	right := Interval{Start: *other.Start, End: *other.End}
	return left.Overlaps(right)
}

// Validate checks the block invariants
func (b *ScheduleBlock) Validate() error {
	if b.ProfessionalID <= 0 {
		return fmt.Errorf("%w: professionalID must be positive", ErrInvalidBlock)
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return fmt.Errorf("%w: date range is required", ErrInvalidBlock)
	}
	if truncateToDay(b.EndDate).Before(truncateToDay(b.StartDate)) {
		return fmt.Errorf("%w: endDate before startDate", ErrInvalidBlock)
	}
	if len(b.Reason) > MaxBlockReasonLength {
		return fmt.Errorf("%w: reason too long", ErrInvalidBlock)
	}

	if b.FullDay {
		if b.Start != nil || b.End != nil {
			return fmt.Errorf("%w: full-day block must not carry times", ErrInvalidBlock)
		}
		return nil
	}

	if b.Start == nil || b.End == nil {
		return fmt.Errorf("%w: partial block requires start and end times", ErrInvalidBlock)
	}
	if !truncateToDay(b.StartDate).Equal(truncateToDay(b.EndDate)) {
		return fmt.Errorf("%w: partial block must cover a single date", ErrInvalidBlock)
	}
	if err := b.Start.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBlock, err)
	}
	if err := b.End.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBlock, err)
	}
	if !b.Start.IsBefore(*b.End) {
		return fmt.Errorf("%w: start must be before end", ErrInvalidBlock)
	}

	return nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

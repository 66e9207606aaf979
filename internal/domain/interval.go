package domain

import (
	"sort"
	"time"

	"github.com/dvasko/SBP-AppointmentService/pkg/types"
)

// Interval is a half-open time-of-day range [Start, End) within a single day
type Interval struct {
	Start types.TimeString
	End   types.TimeString
}

// IsEmpty returns true for degenerate intervals (Start >= End)
func (i Interval) IsEmpty() bool {
	return i.Start.Minutes() >= i.End.Minutes()
}

// Overlaps reports whether two half-open intervals overlap.
// Touching boundaries (one ends exactly where the other starts) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.IsBefore(other.End) && other.Start.IsBefore(i.End)
}

// Contains reports whether other lies entirely within i
func (i Interval) Contains(other Interval) bool {
	return !other.Start.IsBefore(i.Start) && !i.End.IsBefore(other.End)
}

// Subtract removes cut from the interval, yielding zero, one or two
// sub-intervals depending on the overlap position. Degenerate results are dropped.
func (i Interval) Subtract(cut Interval) []Interval {
	if !i.Overlaps(cut) {
		return []Interval{i}
	}

	result := make([]Interval, 0, 2)

	if i.Start.IsBefore(cut.Start) {
		left := Interval{Start: i.Start, End: cut.Start}
		if !left.IsEmpty() {
			result = append(result, left)
		}
	}
	if cut.End.IsBefore(i.End) {
		right := Interval{Start: cut.End, End: i.End}
		if !right.IsEmpty() {
			result = append(result, right)
		}
	}

	return result
}

// SubtractAll folds Subtract over the free list for every cut interval.
// The free list stays disjoint and ordered after each step, so the result
// does not depend on the order of cuts.
func SubtractAll(free []Interval, cuts []Interval) []Interval {
	sorted := make([]Interval, len(cuts))
	copy(sorted, cuts)
	sort.Slice(sorted, func(a, b int) bool {
		return sorted[a].Start.IsBefore(sorted[b].Start)
	})

	current := free
	for _, cut := range sorted {
		if cut.IsEmpty() {
			continue
		}
		next := make([]Interval, 0, len(current)+1)
		for _, interval := range current {
			next = append(next, interval.Subtract(cut)...)
		}
		current = next
	}
	return current
}

// FreeIntervals computes the free time-of-day intervals for a professional
// on the given date: working hours minus breaks minus applicable blocks.
// An inactive or unconfigured day yields an empty set; a full-day block
// covering the date short-circuits the whole day to empty.
func FreeIntervals(day *DayConfig, blocks []*ScheduleBlock, date time.Time) []Interval {
	if day == nil || !day.Active || day.Start == nil || day.End == nil {
		return []Interval{}
	}

	base := Interval{Start: *day.Start, End: *day.End}
	if base.IsEmpty() {
		return []Interval{}
	}

	cuts := make([]Interval, 0, len(day.Breaks)+len(blocks))
	for _, br := range day.Breaks {
		cuts = append(cuts, Interval{Start: br.Start, End: br.End})
	}

	for _, block := range blocks {
		if !block.AppliesTo(date) {
			continue
		}
		if block.FullDay {
			return []Interval{}
		}
		if block.Start != nil && block.End != nil {
			cuts = append(cuts, Interval{Start: *block.Start, End: *block.End})
		}
	}

	return SubtractAll([]Interval{base}, cuts)
}

package domain

import (
	"time"

	"github.com/dvasko/SBP-AppointmentService/pkg/types"
)

// Slot is a candidate bookable time range of exactly the requested
// service duration
type Slot struct {
	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
}

// Interval returns the slot as a time-of-day interval
func (s Slot) Interval() Interval {
	return Interval{Start: s.StartTime, End: s.EndTime}
}

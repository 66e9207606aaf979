package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlot_Interval(t *testing.T) {
	slot := Slot{
		Date:      time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		StartTime: "10:00",
		EndTime:   "10:30",
	}

	assert.Equal(t, Interval{Start: "10:00", End: "10:30"}, slot.Interval())
	assert.True(t, slot.Interval().Overlaps(Interval{Start: "10:15", End: "10:45"}))
	assert.False(t, slot.Interval().Overlaps(Interval{Start: "10:30", End: "11:00"}))
}

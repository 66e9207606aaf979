package get_available_slots

import (
	"time"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	"github.com/dvasko/SBP-AppointmentService/pkg/types"
)

// generateSlots генерирует доступные слоты для одного дня.
// Кандидаты перебираются с фиксированным шагом от начала каждого свободного
// интервала. Слот попадает в результат, если он целиком помещается в свободный
// интервал и не пересекается ни с одной активной записью.
func generateSlots(
	free []domain.Interval,
	busy []domain.Interval,
	durationMinutes int,
	requestDate time.Time,
	now time.Time,
) ([]domain.Slot, error) {
	slots := make([]domain.Slot, 0)

	for _, interval := range free {
		current := interval.Start

		for current.IsBefore(interval.End) {
			slotEnd, err := current.AddMinutes(durationMinutes)
			if err != nil {
				// Кандидат выходит за полночь - интервал исчерпан
				break
			}
			if interval.End.IsBefore(slotEnd) {
				break
			}

			candidate := domain.Slot{Date: requestDate, StartTime: current, EndTime: slotEnd}
			if !overlapsAny(candidate.Interval(), busy) {
				slots = append(slots, candidate)
			}

			current, err = current.AddMinutes(domain.DefaultSlotStepMinutes)
			if err != nil {
				break
			}
		}
	}

	// Для сегодняшней даты отфильтровываем слоты, начинающиеся не позже текущего времени
	if isSameDay(requestDate, now) {
		nowTime := types.NewTimeString(now)
		filtered := make([]domain.Slot, 0, len(slots))
		for _, slot := range slots {
			if slot.StartTime.IsAfter(nowTime) {
				filtered = append(filtered, slot)
			}
		}
		slots = filtered
	}

	return slots, nil
}

// overlapsAny проверяет пересечение кандидата хотя бы с одним занятым интервалом
func overlapsAny(candidate domain.Interval, busy []domain.Interval) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}

// busyIntervals собирает занятые интервалы дня из активных записей
func busyIntervals(appointments []*domain.Appointment) []domain.Interval {
	intervals := make([]domain.Interval, 0, len(appointments))
	for _, appointment := range appointments {
		if !appointment.IsActive() {
			continue
		}
		intervals = append(intervals, appointment.DayInterval())
	}
	return intervals
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}

package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	"github.com/dvasko/SBP-AppointmentService/pkg/types"
)

var (
	// ErrInvalidWeekday возвращается при неизвестном названии дня недели
	ErrInvalidWeekday = errors.New("invalid weekday")

	// ErrInvalidTime возвращается при некорректном формате времени
	ErrInvalidTime = errors.New("invalid time format, expected HH:MM")
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Request модели

// BreakInput перерыв внутри рабочего дня
type BreakInput struct {
	Start string `json:"start"` // HH:MM
	End   string `json:"end"`   // HH:MM
}

// DayConfigInput конфигурация одного дня недели
type DayConfigInput struct {
	Weekday string       `json:"weekday"` // monday..sunday
	Active  bool         `json:"active"`
	Start   *string      `json:"start,omitempty"` // HH:MM, только для активных дней
	End     *string      `json:"end,omitempty"`   // HH:MM, только для активных дней
	Breaks  []BreakInput `json:"breaks,omitempty"`
}

// ReplaceScheduleRequest запрос на полную замену недельного расписания
type ReplaceScheduleRequest struct {
	ProfessionalID int64
	Actor          domain.Actor
	Days           []DayConfigInput `json:"days"`
}

// ToDomainSchedule конвертирует request в domain модель
func (r *ReplaceScheduleRequest) ToDomainSchedule() (*domain.WeeklySchedule, error) {
	days := make([]domain.DayConfig, 0, len(r.Days))

	for _, input := range r.Days {
		weekday, ok := weekdayNames[strings.ToLower(strings.TrimSpace(input.Weekday))]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWeekday, input.Weekday)
		}

		day := domain.DayConfig{
			Weekday: weekday,
			Active:  input.Active,
		}

		if input.Start != nil {
			start, err := parseTime(*input.Start)
			if err != nil {
				return nil, err
			}
			day.Start = &start
		}
		if input.End != nil {
			end, err := parseTime(*input.End)
			if err != nil {
				return nil, err
			}
			day.End = &end
		}

		for _, br := range input.Breaks {
			start, err := parseTime(br.Start)
			if err != nil {
				return nil, err
			}
			end, err := parseTime(br.End)
			if err != nil {
				return nil, err
			}
			day.Breaks = append(day.Breaks, domain.Break{Start: start, End: end})
		}

		days = append(days, day)
	}

	return &domain.WeeklySchedule{
		ProfessionalID: r.ProfessionalID,
		Days:           days,
	}, nil
}

// CreateBlockRequest запрос на создание блокировки расписания
type CreateBlockRequest struct {
	ProfessionalID int64
	Actor          domain.Actor
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	FullDay        bool      `json:"fullDay"`
	Start          *string   `json:"start,omitempty"` // HH:MM, только для частичных блокировок
	End            *string   `json:"end,omitempty"`   // HH:MM, только для частичных блокировок
	Reason         string    `json:"reason,omitempty"`
}

// ToDomainBlock конвертирует request в domain модель
func (r *CreateBlockRequest) ToDomainBlock() (*domain.ScheduleBlock, error) {
	block := &domain.ScheduleBlock{
		ProfessionalID: r.ProfessionalID,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		FullDay:        r.FullDay,
		Reason:         r.Reason,
	}

	if r.Start != nil {
		start, err := parseTime(*r.Start)
		if err != nil {
			return nil, err
		}
		block.Start = &start
	}
	if r.End != nil {
		end, err := parseTime(*r.End)
		if err != nil {
			return nil, err
		}
		block.End = &end
	}

	return block, nil
}

// Response модели

// BreakView перерыв внутри рабочего дня
type BreakView struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DayConfigView конфигурация одного дня недели
type DayConfigView struct {
	Weekday string      `json:"weekday"`
	Active  bool        `json:"active"`
	Start   *string     `json:"start,omitempty"`
	End     *string     `json:"end,omitempty"`
	Breaks  []BreakView `json:"breaks,omitempty"`
}

// ScheduleResponse недельное расписание мастера
type ScheduleResponse struct {
	ProfessionalID int64           `json:"professionalId"`
	Days           []DayConfigView `json:"days"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// BlockResponse блокировка расписания
type BlockResponse struct {
	ID             int64     `json:"id"`
	ProfessionalID int64     `json:"professionalId"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	FullDay        bool      `json:"fullDay"`
	Start          *string   `json:"start,omitempty"`
	End            *string   `json:"end,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// BlockListResponse список блокировок
type BlockListResponse struct {
	Blocks []*BlockResponse `json:"blocks"`
}

// FromDomainSchedule конвертирует domain модель в response
func FromDomainSchedule(schedule *domain.WeeklySchedule) *ScheduleResponse {
	days := make([]DayConfigView, len(schedule.Days))
	for i, day := range schedule.Days {
		view := DayConfigView{
			Weekday: strings.ToLower(day.Weekday.String()),
			Active:  day.Active,
		}
		if day.Start != nil {
			s := day.Start.String()
			view.Start = &s
		}
		if day.End != nil {
			e := day.End.String()
			view.End = &e
		}
		for _, br := range day.Breaks {
			view.Breaks = append(view.Breaks, BreakView{
				Start: br.Start.String(),
				End:   br.End.String(),
			})
		}
		days[i] = view
	}

	return &ScheduleResponse{
		ProfessionalID: schedule.ProfessionalID,
		Days:           days,
		UpdatedAt:      schedule.UpdatedAt,
	}
}

// FromDomainBlock конвертирует domain модель в response
func FromDomainBlock(block *domain.ScheduleBlock) *BlockResponse {
	resp := &BlockResponse{
		ID:             block.ID,
		ProfessionalID: block.ProfessionalID,
		StartDate:      block.StartDate,
		EndDate:        block.EndDate,
		FullDay:        block.FullDay,
		Reason:         block.Reason,
		CreatedAt:      block.CreatedAt,
	}
	if block.Start != nil {
		s := block.Start.String()
		resp.Start = &s
	}
	if block.End != nil {
		e := block.End.String()
		resp.End = &e
	}
	return resp
}

// FromDomainBlockList конвертирует список domain моделей в response
func FromDomainBlockList(blocks []*domain.ScheduleBlock) *BlockListResponse {
	result := make([]*BlockResponse, len(blocks))
	for i, block := range blocks {
		result[i] = FromDomainBlock(block)
	}
	return &BlockListResponse{Blocks: result}
}

func parseTime(raw string) (types.TimeString, error) {
	parsed, err := types.NewTimeStringFromString(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	return parsed, nil
}

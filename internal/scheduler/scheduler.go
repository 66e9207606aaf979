package scheduler

import (
	"context"
	"time"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	"github.com/dvasko/SBP-AppointmentService/pkg/metrics"
)

const (
	jobReminders   = "reminders"
	jobAutoNoShows = "auto_no_shows"
)

// Scheduler фоновый планировщик: рассылает напоминания за 30 минут до
// начала записи и отмечает неявку для просроченных pending записей.
// Оба прохода выполняются на одном тике; ошибка одного элемента не
// прерывает обработку остальных.
type Scheduler struct {
	appointmentRepo AppointmentRepository
	noShowUseCase   NoShowUseCase
	publisher       EventPublisher
	interval        time.Duration
	timeProvider    TimeProvider
	metrics         *metrics.Metrics
	logger          Logger
}

// New создает новый экземпляр планировщика
func New(
	appointmentRepo AppointmentRepository,
	noShowUseCase NoShowUseCase,
	publisher EventPublisher,
	interval time.Duration,
	m *metrics.Metrics,
	logger Logger,
) *Scheduler {
	return &Scheduler{
		appointmentRepo: appointmentRepo,
		noShowUseCase:   noShowUseCase,
		publisher:       publisher,
		interval:        interval,
		timeProvider:    &RealTimeProvider{},
		metrics:         m,
		logger:          logger,
	}
}

// Run запускает цикл планировщика до отмены контекста
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Scheduler: started with interval %s", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler: stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce выполняет один проход обоих заданий
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.runReminders(ctx)
	s.runAutoNoShows(ctx)
}

// runReminders публикует напоминания для pending записей, начинающихся
// примерно через 30 минут. Окно [now+29m, now+31m] шире интервала тика,
// поэтому запись не проскочит между проходами; штамп reminder_sent_at
// защищает от повторной отправки.
func (s *Scheduler) runReminders(ctx context.Context) {
	now := s.timeProvider.Now()
	from := now.Add(domain.ReminderWindowFrom)
	to := now.Add(domain.ReminderWindowTo)

	appointments, err := s.appointmentRepo.FindPendingForReminder(ctx, from, to)
	if err != nil {
		s.logger.Error("Scheduler: failed to find appointments for reminder: %v", err)
		s.observeRun(jobReminders, "error")
		return
	}

	sent := 0
	failed := 0

	for _, appointment := range appointments {
		event := domain.NewEvent(domain.EventReminder, appointment, now)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("Scheduler: failed to publish reminder for appointment id=%d: %v",
				appointment.ID, err)
			failed++
			continue
		}

		// Штамп ставится только после успешной публикации. При сбое между
		// публикацией и штампом напоминание может уйти повторно - это
		// приемлемее, чем потерянное напоминание.
		if err := s.appointmentRepo.MarkReminderSent(ctx, appointment.ID, now); err != nil {
			s.logger.Error("Scheduler: failed to mark reminder sent for appointment id=%d: %v",
				appointment.ID, err)
			failed++
			continue
		}

		sent++
	}

	if sent > 0 || failed > 0 {
		s.logger.Info("Scheduler: sent %d reminder(s), %d failed", sent, failed)
	}

	s.observeItems(jobReminders, sent, failed)
	s.observeRun(jobReminders, "ok")
}

// runAutoNoShows отмечает неявку для просроченных pending записей
func (s *Scheduler) runAutoNoShows(ctx context.Context) {
	result, err := s.noShowUseCase.ExecuteAuto(ctx)
	if err != nil {
		s.logger.Error("Scheduler: auto no-show pass failed: %v", err)
		s.observeRun(jobAutoNoShows, "error")
		return
	}

	s.observeItems(jobAutoNoShows, result.Processed, result.Failed)
	s.observeRun(jobAutoNoShows, "ok")
}

func (s *Scheduler) observeRun(job, status string) {
	if s.metrics != nil {
		s.metrics.SchedulerRunsTotal.WithLabelValues(job, status).Inc()
	}
}

func (s *Scheduler) observeItems(job string, processed, failed int) {
	if s.metrics == nil {
		return
	}
	if processed > 0 {
		s.metrics.SchedulerItemsTotal.WithLabelValues(job).Add(float64(processed))
	}
	if failed > 0 {
		s.metrics.SchedulerItemsFailed.WithLabelValues(job).Add(float64(failed))
	}
}

package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	"github.com/dvasko/SBP-AppointmentService/pkg/metrics"
)

// Logger интерфейс для логирования
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Publisher публикует доменные события в Redis Stream.
// Публикация выполняется после коммита транзакции и не влияет
// на результат операции: ошибка записи логируется и учитывается
// в метриках, но не возвращается вызывающему коду.
type Publisher struct {
	rdb     *redis.Client
	stream  string
	log     Logger
	metrics *metrics.Metrics
}

// NewPublisher создает новый экземпляр Publisher
func NewPublisher(rdb *redis.Client, stream string, log Logger, m *metrics.Metrics) *Publisher {
	return &Publisher{
		rdb:     rdb,
		stream:  stream,
		log:     log,
		metrics: m,
	}
}

// Publish записывает событие в стрим
func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.observeFailure(event.Type)
		return fmt.Errorf("%w: Publish - marshal: %v", ErrMarshalEvent, err)
	}

	err = p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"type":    string(event.Type),
			"payload": payload,
		},
	}).Err()
	if err != nil {
		p.observeFailure(event.Type)
		return fmt.Errorf("%w: Publish - xadd: %v", ErrPublishEvent, err)
	}

	if p.metrics != nil {
		p.metrics.EventsPublishedTotal.WithLabelValues(string(event.Type)).Inc()
	}

	p.log.Debug("Published event type=%s appointment_id=%d", event.Type, event.AppointmentID)
	return nil
}

// PublishAsync публикует событие, логируя ошибку вместо возврата.
// Используется из usecase-слоя после успешного коммита.
func (p *Publisher) PublishAsync(ctx context.Context, event domain.Event) {
	if err := p.Publish(ctx, event); err != nil {
		p.log.Error("Failed to publish event type=%s appointment_id=%d: %v", event.Type, event.AppointmentID, err)
	}
}

func (p *Publisher) observeFailure(eventType domain.EventType) {
	if p.metrics != nil {
		p.metrics.EventsPublishingFailed.WithLabelValues(string(eventType)).Inc()
	}
}

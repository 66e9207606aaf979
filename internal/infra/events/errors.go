package events

import "errors"

var (
	// ErrMarshalEvent возвращается при ошибке сериализации события
	ErrMarshalEvent = errors.New("failed to marshal event")

	// ErrPublishEvent возвращается при ошибке записи события в стрим
	ErrPublishEvent = errors.New("failed to publish event")
)

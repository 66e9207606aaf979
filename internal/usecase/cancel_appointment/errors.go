package cancel_appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("cancel_appointment: appointment not found")

	// ErrForbidden возвращается, когда актор не вправе отменять эту запись
	ErrForbidden = errors.New("cancel_appointment: actor is not allowed to cancel this appointment")

	// ErrNotPending возвращается, когда запись уже в терминальном статусе
	ErrNotPending = errors.New("cancel_appointment: appointment is not pending")

	// ErrDeadlinePassed возвращается, когда дедлайн отмены уже прошел
	ErrDeadlinePassed = errors.New("cancel_appointment: cancellation deadline has passed")

	// ErrInvalidToken возвращается для несуществующего, истекшего или
	// использованного токена. Причина намеренно не раскрывается.
	ErrInvalidToken = errors.New("cancel_appointment: invalid or expired cancellation token")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("cancel_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_appointment: internal error")
)

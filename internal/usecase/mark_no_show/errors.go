package mark_no_show

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("mark_no_show: appointment not found")

	// ErrForbidden возвращается, когда актор не вправе отмечать неявку
	ErrForbidden = errors.New("mark_no_show: actor is not allowed to mark this appointment")

	// ErrNotPending возвращается, когда запись уже в терминальном статусе
	ErrNotPending = errors.New("mark_no_show: appointment is not pending")

	// ErrTooEarly возвращается, когда время начала записи еще не наступило
	ErrTooEarly = errors.New("mark_no_show: appointment has not started yet")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("mark_no_show: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("mark_no_show: internal error")
)

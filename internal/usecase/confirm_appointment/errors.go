package confirm_appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("confirm_appointment: appointment not found")

	// ErrForbidden возвращается, когда актор не вправе подтверждать эту запись
	ErrForbidden = errors.New("confirm_appointment: actor is not allowed to confirm this appointment")

	// ErrNotPending возвращается, когда запись уже в терминальном статусе
	ErrNotPending = errors.New("confirm_appointment: appointment is not pending")

	// ErrTooEarly возвращается, когда окно подтверждения еще не открылось
	ErrTooEarly = errors.New("confirm_appointment: confirmation window has not opened yet")

	// ErrWindowExpired возвращается, когда окно подтверждения уже закрылось
	ErrWindowExpired = errors.New("confirm_appointment: confirmation window has expired")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("confirm_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("confirm_appointment: internal error")
)

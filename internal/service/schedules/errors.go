package schedules

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда у мастера нет расписания
	ErrScheduleNotFound = errors.New("schedules: weekly schedule not found")

	// ErrBlockNotFound возвращается, когда блокировка не найдена
	ErrBlockNotFound = errors.New("schedules: schedule block not found")

	// ErrProfessionalNotFound возвращается, когда мастер не найден
	ErrProfessionalNotFound = errors.New("schedules: professional not found")

	// ErrForbidden возвращается, когда актор не вправе менять это расписание
	ErrForbidden = errors.New("schedules: access denied")

	// ErrBlockOverlap возвращается, когда новая блокировка пересекается
	// с существующей блокировкой того же мастера
	ErrBlockOverlap = errors.New("schedules: block overlaps an existing block")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("schedules: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("schedules: internal error")
)

package create_appointment

import "errors"

var (
	// ErrProfessionalNotFound возвращается, когда мастер не найден
	ErrProfessionalNotFound = errors.New("create_appointment: professional not found")

	// ErrProfessionalInactive возвращается, когда мастер деактивирован
	ErrProfessionalInactive = errors.New("create_appointment: professional is inactive")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_appointment: service not found")

	// ErrServiceNotAuthorized возвращается, когда мастер не оказывает услугу
	ErrServiceNotAuthorized = errors.New("create_appointment: professional does not provide this service")

	// ErrInvalidServiceDuration возвращается, когда длительность услуги
	// из каталога меньше допустимого минимума
	ErrInvalidServiceDuration = errors.New("create_appointment: service duration is below minimum")

	// ErrStartInPast возвращается, когда запрошенное время не строго в будущем
	ErrStartInPast = errors.New("create_appointment: start time must be in the future")

	// ErrOutsideWorkingHours возвращается, когда слот не помещается
	// в свободные интервалы рабочего дня мастера
	ErrOutsideWorkingHours = errors.New("create_appointment: slot is outside working hours")

	// ErrSlotConflict возвращается, когда слот пересекается с активной записью
	ErrSlotConflict = errors.New("create_appointment: slot conflicts with an existing appointment")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrTransient возвращается при конкурентном конфликте транзакций,
	// клиенту следует повторить запрос
	ErrTransient = errors.New("create_appointment: transient conflict, retry the request")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)

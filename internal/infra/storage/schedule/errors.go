package schedule

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда у мастера нет недельного расписания
	ErrScheduleNotFound = errors.New("schedule.repository: weekly schedule not found")

	// ErrBlockNotFound возвращается, когда блокировка расписания не найдена
	ErrBlockNotFound = errors.New("schedule.repository: schedule block not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("schedule.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("schedule.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("schedule.repository: failed to scan row")
)

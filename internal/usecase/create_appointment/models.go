package create_appointment

import (
	"time"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	"github.com/dvasko/SBP-AppointmentService/pkg/types"
)

// Request модель запроса на создание записи
type Request struct {
	ClientName  string
	ClientEmail string
	ClientPhone string

	ProfessionalID int64
	ServiceID      int64

	Date      time.Time        // Дата записи (без времени)
	StartTime types.TimeString // Время начала

	Channel domain.Channel // internal или public
	Actor   *domain.Actor  // nil для публичного канала
}

// Response модель ответа с созданной записью
type Response struct {
	ID     int64
	Code   string
	Status domain.AppointmentStatus

	ClientName  string
	ClientEmail string
	ClientPhone string

	ProfessionalID   int64
	ProfessionalName string

	ServiceID              int64
	ServiceName            string
	ServiceDurationMinutes int

	StartAt time.Time
	EndAt   time.Time
	Channel domain.Channel

	// CancelToken одноразовый секрет для самостоятельной отмены записи
	CancelToken string

	CreatedAt time.Time
}

package get_available_slots

import (
	"time"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	ProfessionalID int64     // ID мастера
	ServiceID      int64     // ID услуги
	Date           time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date            time.Time     // Дата, на которую запрашивались слоты
	ProfessionalID  int64         // ID мастера
	ServiceID       int64         // ID услуги
	DurationMinutes int           // Длительность услуги в минутах
	Slots           []domain.Slot // Список доступных слотов
}

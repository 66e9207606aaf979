package create_appointment

import (
	"fmt"
	"strings"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	name := strings.TrimSpace(req.ClientName)
	if len(name) < domain.MinClientNameLength || len(name) > domain.MaxClientNameLength {
		return fmt.Errorf("%w: clientName must be %d-%d characters",
			ErrInvalidInput, domain.MinClientNameLength, domain.MaxClientNameLength)
	}

	email := strings.TrimSpace(req.ClientEmail)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: clientEmail is not a valid email", ErrInvalidInput)
	}

	phone := strings.TrimSpace(req.ClientPhone)
	if len(phone) < domain.MinClientPhoneLength || len(phone) > domain.MaxClientPhoneLength {
		return fmt.Errorf("%w: clientPhone must be %d-%d characters",
			ErrInvalidInput, domain.MinClientPhoneLength, domain.MaxClientPhoneLength)
	}

	if req.ProfessionalID <= 0 {
		return fmt.Errorf("%w: professionalID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: startTime: %v", ErrInvalidInput, err)
	}

	switch req.Channel {
	case domain.ChannelInternal:
		if req.Actor == nil {
			return fmt.Errorf("%w: internal channel requires an authenticated actor", ErrInvalidInput)
		}
	case domain.ChannelPublic:
		// Публичный канал работает без аутентификации
	default:
		return fmt.Errorf("%w: unknown channel %q", ErrInvalidInput, req.Channel)
	}

	return nil
}

package identityservice

import "errors"

var (
	// ErrProfessionalNotFound возвращается, когда исполнитель не существует
	ErrProfessionalNotFound = errors.New("professional not found")

	// ErrActorNotFound возвращается, когда пользователь не существует
	ErrActorNotFound = errors.New("actor not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("identityservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("identityservice client: invalid response")
)

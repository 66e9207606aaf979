package token

import "errors"

var (
	// ErrTokenNotFound возвращается, когда токен отмены не найден
	ErrTokenNotFound = errors.New("token.repository: cancellation token not found")

	// ErrTokenAlreadyUsed возвращается при повторном использовании токена
	ErrTokenAlreadyUsed = errors.New("token.repository: cancellation token already used")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("token.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("token.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("token.repository: failed to scan row")
)

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dvasko/SBP-AppointmentService/internal/api/handlers"
	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	identityClient "github.com/dvasko/SBP-AppointmentService/internal/integrations/identityservice"
)

type contextKey string

const actorContextKey contextKey = "actor"

const (
	msgMissingUserID = "отсутствует заголовок X-User-ID"
	msgInvalidUserID = "некорректный заголовок X-User-ID"
	msgUnknownUser   = "пользователь не найден"
	msgUnknownRole   = "роль пользователя не поддерживается"
	msgAuthFailed    = "не удалось проверить пользователя"
)

// IdentityServiceClient интерфейс клиента для IdentityService
type IdentityServiceClient interface {
	GetActor(ctx context.Context, actorID int64) (*identityClient.ActorInfo, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Auth аутентифицирует запрос по заголовку X-User-ID.
// Идентификацию выполняет API-шлюз, сервис доверяет заголовку и
// дорезолвивает имя, email и роль через IdentityService.
type Auth struct {
	identityClient IdentityServiceClient
	logger         Logger
}

// NewAuth создает новый экземпляр middleware аутентификации
func NewAuth(identityClient IdentityServiceClient, logger Logger) *Auth {
	return &Auth{
		identityClient: identityClient,
		logger:         logger,
	}
}

// Middleware возвращает http middleware, кладущий актора в контекст запроса
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawID := r.Header.Get("X-User-ID")
		if rawID == "" {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		actorID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || actorID <= 0 {
			a.logger.Warn("Auth: invalid X-User-ID header %q", rawID)
			handlers.RespondUnauthorized(w, msgInvalidUserID)
			return
		}

		info, err := a.identityClient.GetActor(r.Context(), actorID)
		if err != nil {
			if errors.Is(err, identityClient.ErrActorNotFound) {
				a.logger.Warn("Auth: actor id=%d not found", actorID)
				handlers.RespondUnauthorized(w, msgUnknownUser)
				return
			}
			a.logger.Error("Auth: failed to resolve actor id=%d: %v", actorID, err)
			handlers.RespondServiceUnavailable(w, msgAuthFailed)
			return
		}

		role, err := domain.ParseRole(info.Role)
		if err != nil {
			a.logger.Warn("Auth: actor id=%d has unknown role %q", actorID, info.Role)
			handlers.RespondForbidden(w, msgUnknownRole)
			return
		}

		actor := domain.Actor{
			ID:    info.ID,
			Name:  info.Name,
			Email: info.Email,
			Role:  role,
		}

		ctx := context.WithValue(r.Context(), actorContextKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFromContext извлекает актора из контекста запроса
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(domain.Actor)
	return actor, ok
}

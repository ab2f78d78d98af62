package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-todo-list/internal/config"
	"github.com/pribylovaa/go-todo-list/internal/models"
	"github.com/pribylovaa/go-todo-list/internal/service"
	"github.com/pribylovaa/go-todo-list/internal/transport/http/httperr"
	"github.com/pribylovaa/go-todo-list/internal/transport/http/tokentransport"
)

type ctxKey struct{}

var claimsKey ctxKey

// ClaimsFrom возвращает клеймы аутентифицированного пользователя из контекста.
func ClaimsFrom(ctx context.Context) (models.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(models.Claims)
	return claims, ok
}

// Authenticate проверяет access-токен каждого запроса и кладёт клеймы
// в контекст. Просрочка — отдельный исход: клиенту, помимо 401, выставляется
// сигнальный заголовок, по которому его интерсептор запускает refresh.
func Authenticate(svc *service.Service, tt tokentransport.Transport, cfg config.AuthConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tt.ReadAccess(r)
			if token == "" {
				httperr.WriteError(w, r, service.ErrInvalidToken)
				return
			}

			claims, err := svc.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrAccessTokenExpired) {
					w.Header().Set(cfg.AccessExpiredHeader, "true")
				}
				httperr.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

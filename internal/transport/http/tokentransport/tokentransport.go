// tokentransport инкапсулирует доставку пары токенов между сервером
// и клиентом. Поддерживаются два режима (выбирается конфигурацией):
//   - header — токены ходят в именованных заголовках запроса/ответа;
//   - cookie — токены ходят в HttpOnly-cookie.
//
// Имена заголовков/cookie берутся из конфигурации и нигде не зашиты.
// Чтение в обоих режимах дополнительно принимает Authorization: Bearer
// для access-токена.
package tokentransport

import (
	"net/http"
	"strings"
	"time"

	"github.com/pribylovaa/go-todo-list/internal/config"
	"github.com/pribylovaa/go-todo-list/internal/models"
)

// Transport читает и пишет пару токенов в HTTP-запросах/ответах.
type Transport interface {
	// ReadAccess возвращает access-токен из запроса ("" — токена нет).
	ReadAccess(r *http.Request) string
	// ReadRefresh возвращает refresh-токен из запроса ("" — токена нет).
	ReadRefresh(r *http.Request) string
	// Write отдаёт свежую пару клиенту.
	Write(w http.ResponseWriter, pair *models.TokenPair)
	// Clear стирает токены на клиенте (logout).
	Clear(w http.ResponseWriter)
}

// New выбирает реализацию по cfg.TokenTransport. Неизвестное значение
// трактуется как header-режим.
func New(cfg config.AuthConfig) Transport {
	if cfg.TokenTransport == config.TransportCookie {
		return &cookieTransport{cfg: cfg}
	}

	return &headerTransport{cfg: cfg}
}

// bearerToken вынимает токен из Authorization: Bearer.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")

	const prefix = "Bearer "
	if strings.HasPrefix(auth, prefix) && len(auth) > len(prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}

	return ""
}

type headerTransport struct {
	cfg config.AuthConfig
}

func (t *headerTransport) ReadAccess(r *http.Request) string {
	if v := r.Header.Get(t.cfg.AccessTokenKey); v != "" {
		return v
	}

	return bearerToken(r)
}

func (t *headerTransport) ReadRefresh(r *http.Request) string {
	return r.Header.Get(t.cfg.RefreshTokenKey)
}

func (t *headerTransport) Write(w http.ResponseWriter, pair *models.TokenPair) {
	w.Header().Set(t.cfg.AccessTokenKey, pair.AccessToken)
	w.Header().Set(t.cfg.RefreshTokenKey, pair.RefreshToken)
}

func (t *headerTransport) Clear(w http.ResponseWriter) {
	w.Header().Set(t.cfg.AccessTokenKey, "")
	w.Header().Set(t.cfg.RefreshTokenKey, "")
}

type cookieTransport struct {
	cfg config.AuthConfig
}

func (t *cookieTransport) ReadAccess(r *http.Request) string {
	if c, err := r.Cookie(t.cfg.AccessTokenKey); err == nil && c.Value != "" {
		return c.Value
	}

	return bearerToken(r)
}

func (t *cookieTransport) ReadRefresh(r *http.Request) string {
	if c, err := r.Cookie(t.cfg.RefreshTokenKey); err == nil {
		return c.Value
	}

	return ""
}

func (t *cookieTransport) Write(w http.ResponseWriter, pair *models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.cfg.AccessTokenKey,
		Value:    pair.AccessToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	// Cookie refresh-токена живёт столько же, сколько запись в кэше;
	// скользящий TTL продлевается при каждом refresh перевыпуском cookie.
	http.SetCookie(w, &http.Cookie{
		Name:     t.cfg.RefreshTokenKey,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(t.cfg.RefreshTokenTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (t *cookieTransport) Clear(w http.ResponseWriter) {
	for _, name := range []string{t.cfg.AccessTokenKey, t.cfg.RefreshTokenKey} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

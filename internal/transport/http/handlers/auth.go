package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/pribylovaa/go-todo-list/internal/service"
	"github.com/pribylovaa/go-todo-list/internal/transport/http/httperr"
	"github.com/pribylovaa/go-todo-list/internal/transport/http/middleware"
)

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenBodyRequest — необязательное тело refresh/logout: токены принимаются
// и из тела, и из транспорта (заголовки/cookie); тело имеет приоритет.
type tokenBodyRequest struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type refreshResponse struct {
	AccessExpiresAt time.Time `json:"access_expires_at"`
}

type loginResponse struct {
	User            userResponse `json:"user"`
	AccessExpiresAt time.Time    `json:"access_expires_at"`
}

type verifySendRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// SignupUser регистрирует пользователя и отправляет код подтверждения.
func (h *Handlers) SignupUser(w http.ResponseWriter, r *http.Request) {
	var in signupRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrInvalidArgument)
		return
	}

	user, err := h.svc.SignupUser(r.Context(), in.Email, in.Name, in.Password)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, userToResponse(user))
}

// LoginUser выполняет вход и отдаёт свежую пару токенов через транспорт.
func (h *Handlers) LoginUser(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrInvalidArgument)
		return
	}

	pair, user, err := h.svc.LoginUser(r.Context(), in.Email, in.Password)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	h.tt.Write(w, pair)
	writeJSON(w, http.StatusOK, loginResponse{
		User:            userToResponse(user),
		AccessExpiresAt: pair.AccessExpiresAt,
	})
}

// RefreshTokens обменивает просроченный access + живой refresh на новую пару.
// Отсутствие записи в кэше возвращается с сигнальным заголовком и сбросом
// токенов на клиенте: повтор бессмыслен, нужен новый логин.
func (h *Handlers) RefreshTokens(w http.ResponseWriter, r *http.Request) {
	var in tokenBodyRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeStrict(r, &in); err != nil {
			httperr.WriteError(w, r, httperr.ErrInvalidArgument)
			return
		}
	}

	access := in.AccessToken
	if access == "" {
		access = h.tt.ReadAccess(r)
	}
	refresh := in.RefreshToken
	if refresh == "" {
		refresh = h.tt.ReadRefresh(r)
	}

	if access == "" || refresh == "" {
		httperr.WriteError(w, r, httperr.ErrInvalidArgument)
		return
	}

	pair, err := h.svc.RefreshTokens(r.Context(), access, refresh)
	if err != nil {
		if errors.Is(err, service.ErrRefreshTokenExpired) {
			w.Header().Set(h.cfg.RefreshExpiredHeader, "true")
			h.tt.Clear(w)
		}
		httperr.WriteError(w, r, err)
		return
	}

	h.tt.Write(w, pair)
	writeJSON(w, http.StatusOK, refreshResponse{AccessExpiresAt: pair.AccessExpiresAt})
}

// Logout отзывает refresh-токен и стирает токены на клиенте.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	var in tokenBodyRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeStrict(r, &in); err != nil {
			httperr.WriteError(w, r, httperr.ErrInvalidArgument)
			return
		}
	}

	access := in.AccessToken
	if access == "" {
		access = h.tt.ReadAccess(r)
	}
	refresh := in.RefreshToken
	if refresh == "" {
		refresh = h.tt.ReadRefresh(r)
	}

	if access == "" || refresh == "" {
		httperr.WriteError(w, r, httperr.ErrInvalidArgument)
		return
	}

	if err := h.svc.Logout(r.Context(), access, refresh); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	h.tt.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// UserInfo возвращает учётную запись аутентифицированного пользователя.
func (h *Handlers) UserInfo(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	user, err := h.svc.UserInfo(r.Context(), claims.UserID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userToResponse(user))
}

// SendVerifyCode повторно отправляет код подтверждения e-mail.
func (h *Handlers) SendVerifyCode(w http.ResponseWriter, r *http.Request) {
	var in verifySendRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrInvalidArgument)
		return
	}

	if err := h.svc.SendVerifyCode(r.Context(), in.Email); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// VerifyEmail сверяет код подтверждения и помечает адрес подтверждённым.
func (h *Handlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var in verifyRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrInvalidArgument)
		return
	}

	if err := h.svc.VerifyEmail(r.Context(), in.Email, in.Code); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

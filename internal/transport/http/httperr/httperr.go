// httperr стандартизирует ответы об ошибках HTTP-слоя todo-сервиса.
// На вход он принимает ошибку сервисного слоя, на выход даёт:
//   - корректный HTTP-статус;
//   - короткий стабильный код для машиночитаемой обработки на FE;
//   - краткое безопасное message без утечки деталей.
//
// Источник истинности по маппингу: сентинельные ошибки пакета service.
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-todo-list/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ErrInvalidArgument — локальная ошибка разбора запроса в хендлере
// (битый JSON, неизвестные поля, невалидный UUID в пути).
var ErrInvalidArgument = errors.New("invalid argument")

// ToHTTP конвертирует ошибку сервисного слоя в HTTP-статус и унифицированный
// ответ для фронта.
//
// Поведение:
//   - err == nil — это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг;
//   - известная сентинельная ошибка — маппится по таблице ниже;
//   - прочее — 500/internal (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	httpStatus, code, msg := base(err)

	return httpStatus, ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	// Прокидываем request_id для фронта, чтобы он мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// base — таблица маппинга сентинельных ошибок сервиса в HTTP/FE-код/сообщение.
func base(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", "internal error"
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case errors.Is(err, service.ErrInvalidEmail):
		return http.StatusBadRequest, "invalid_email", "invalid email format"
	case errors.Is(err, service.ErrInvalidUserName):
		return http.StatusBadRequest, "invalid_user_name", "invalid user name"
	case errors.Is(err, service.ErrWeakPassword):
		return http.StatusBadRequest, "weak_password", "password is too weak"
	case errors.Is(err, service.ErrInvalidItemName):
		return http.StatusBadRequest, "invalid_item_name", "invalid item name"
	case errors.Is(err, service.ErrEmailNotExist):
		return http.StatusNotFound, "email_not_exist", "email not exist"
	case errors.Is(err, service.ErrWrongPassword):
		return http.StatusBadRequest, "wrong_password", "wrong password"
	case errors.Is(err, service.ErrEmailNotVerified):
		return http.StatusForbidden, "email_not_verified", "email not verified"
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "email_duplicate", "email already taken"
	case errors.Is(err, service.ErrUserNameTaken):
		return http.StatusConflict, "name_duplicate", "user name already taken"
	case errors.Is(err, service.ErrAccessTokenMismatch):
		return http.StatusBadRequest, "access_token_not_match", "access token not match"
	case errors.Is(err, service.ErrWrongAccessToken):
		return http.StatusBadRequest, "wrong_access_token", "wrong access token"
	case errors.Is(err, service.ErrRefreshTokenExpired):
		return http.StatusNotFound, "refresh_token_expired", "refresh token expired"
	case errors.Is(err, service.ErrAccessTokenExpired):
		return http.StatusUnauthorized, "access_token_expired", "access token expired"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid_token", "invalid token"
	case errors.Is(err, service.ErrEmailVerifyFailed):
		return http.StatusBadRequest, "email_verify_fail", "email verify failed"
	case errors.Is(err, service.ErrItemNotFound):
		return http.StatusNotFound, "todo_item_not_found", "todo item not found"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden", "forbidden"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled", "canceled"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}

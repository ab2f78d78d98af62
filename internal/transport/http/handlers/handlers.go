package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-todo-list/internal/config"
	"github.com/pribylovaa/go-todo-list/internal/models"
	"github.com/pribylovaa/go-todo-list/internal/service"
	"github.com/pribylovaa/go-todo-list/internal/transport/http/httperr"
	"github.com/pribylovaa/go-todo-list/internal/transport/http/tokentransport"
)

// Handlers агрегирует зависимости HTTP-слоя.
type Handlers struct {
	svc *service.Service
	tt  tokentransport.Transport
	cfg config.AuthConfig
}

func New(svc *service.Service, tt tokentransport.Transport, cfg config.AuthConfig) *Handlers {
	return &Handlers{svc: svc, tt: tt, cfg: cfg}
}

// userResponse — представление учётной записи для фронта.
type userResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
}

func userToResponse(u *models.User) userResponse {
	return userResponse{
		ID:            u.ID.String(),
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
	}
}

// itemResponse — представление элемента списка дел.
type itemResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	IsComplete bool      `json:"is_complete"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func itemToResponse(it *models.TodoItem) itemResponse {
	return itemResponse{
		ID:         it.ID.String(),
		Name:       it.Name,
		IsComplete: it.IsComplete,
		CreatedAt:  it.CreatedAt,
		UpdatedAt:  it.UpdatedAt,
	}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через httperr.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// pathUUID разбирает UUID из параметра пути chi.
func pathUUID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, httperr.ErrInvalidArgument
	}

	return id, nil
}

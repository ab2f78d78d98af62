package models

import (
	"time"

	"github.com/google/uuid"
)

// TodoItem — элемент списка дел. Принадлежит ровно одному пользователю;
// доступ чужим пользователям запрещён на уровне сервиса.
type TodoItem struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Name       string
	IsComplete bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

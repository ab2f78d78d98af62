package models

import (
	"time"

	"github.com/google/uuid"
)

// User — учётная запись пользователя to-do списка.
//
// PasswordHash хранится в PHC-формате argon2id (соль и параметры внутри строки).
// EmailVerified выставляется только после подтверждения кода из письма;
// до этого логин запрещён.
type User struct {
	ID            uuid.UUID
	Email         string
	Name          string
	Role          string
	PasswordHash  string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

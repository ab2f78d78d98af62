package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenPair — пара токенов, выдаваемая при логине и обновляемая при refresh.
//
// Описание:
//   - AccessToken — короткоживущий подписанный JWT с фиксированным набором клеймов;
//   - RefreshToken — непрозрачная случайная строка (>=32 байт, base64url),
//     используется только как ключ поиска в серверном кэше; на сервере хранится
//     её sha256-хэш;
//   - AccessExpiresAt — момент истечения access-токена (UTC).
type TokenPair struct {
	// AccessToken — JWT для авторизации запросов.
	AccessToken string
	// RefreshToken — случайный секрет для обновления пары.
	RefreshToken string
	// AccessExpiresAt — время истечения действия access-токена (UTC).
	AccessExpiresAt time.Time
}

// Claims — фиксированный, строго типизированный набор идентификационных
// атрибутов, зашитых в access-токен. Производится и потребляется только
// кодеком токенов и его вызывающими; никаких динамических claim-мешков.
type Claims struct {
	UserID uuid.UUID
	Name   string
	Role   string
	Email  string
}

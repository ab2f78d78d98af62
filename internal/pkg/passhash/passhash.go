// passhash — хэширование паролей argon2id с PHC-кодированием
// ($argon2id$v=19$m=...,t=...,p=...$salt$hash). Соль и параметры хранятся
// внутри строки, поэтому Verify работает и после смены конфигурации.
package passhash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const algorithmID = "argon2id"

var (
	// ErrMalformedHash — строка не является корректной PHC-записью argon2id.
	ErrMalformedHash = errors.New("malformed password hash")
)

// Params — параметры argon2id. Нулевые значения недопустимы.
type Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams — параметры по умолчанию (OWASP-рекомендация для argon2id).
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hash хэширует пароль со случайной солью и возвращает PHC-строку.
func Hash(password string, p Params) (string, error) {
	const op = "passhash.Hash"

	if p.Memory == 0 || p.Time == 0 || p.Parallelism == 0 || p.SaltLength == 0 || p.KeyLength == 0 {
		return "", fmt.Errorf("%s: invalid params", op)
	}

	salt := make([]byte, p.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		p.Memory,
		p.Time,
		p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify сравнивает пароль с PHC-строкой за константное время.
func Verify(password, encoded string) (bool, error) {
	const op = "passhash.Verify"

	memory, timeCost, parallelism, salt, key, err := parsePHC(encoded)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	computed := argon2.IDKey([]byte(password), salt, timeCost, memory, parallelism, uint32(len(key)))

	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

func parsePHC(encoded string) (memory, timeCost uint32, parallelism uint8, salt, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	var p uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &p); err != nil {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}
	if memory == 0 || timeCost == 0 || p == 0 || p > 255 {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}
	parallelism = uint8(p)

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	return memory, timeCost, parallelism, salt, key, nil
}

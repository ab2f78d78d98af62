package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/go-todo-list/internal/models"
	"github.com/pribylovaa/go-todo-list/internal/pkg/log"
)

// accessClaims — проводной формат клеймов access-токена.
// Subject несёт имя пользователя, uid — его идентификатор.
type accessClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func (c *accessClaims) toClaims() (models.Claims, error) {
	uid, err := uuid.Parse(c.UserID)
	if err != nil {
		return models.Claims{}, err
	}

	return models.Claims{
		UserID: uid,
		Name:   c.Subject,
		Role:   c.Role,
		Email:  c.Email,
	}, nil
}

// generateAccessToken выпускает подписанный access-токен с заданным моментом
// истечения. Ошибается только при неверной конфигурации (пустой ключ подписи).
func (s *Service) generateAccessToken(ctx context.Context, user *models.User, now, expiresAt time.Time) (string, error) {
	const op = "service.token.generateAccessToken"

	if s.cfg.JWTSecret == "" {
		return "", fmt.Errorf("%s: jwt secret is not configured", op)
	}

	claims := accessClaims{
		UserID: user.ID.String(),
		Role:   user.Role,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Name,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings(s.cfg.Audience),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		log.From(ctx).Error("access_token_sign_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// validateAccessToken — полная проверка: подпись, алгоритм, issuer/audience
// и срок действия. Просрочка возвращается отдельной ошибкой, чтобы middleware
// мог выставить сигнальный заголовок.
func (s *Service) validateAccessToken(tokenStr string) (models.Claims, error) {
	const op = "service.token.validateAccessToken"

	token, err := jwt.ParseWithClaims(tokenStr, &accessClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience...),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Claims{}, fmt.Errorf("%s: %w", op, ErrAccessTokenExpired)
		}

		return models.Claims{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return models.Claims{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	out, err := claims.toClaims()
	if err != nil {
		return models.Claims{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return out, nil
}

// readExpiredClaims — второй, намеренно отдельный режим декодирования:
// подпись и алгоритм проверяются, срок действия — нет. Используется только
// в refresh-потоке, где access-токен по определению уже просрочен, а клеймы
// нужны, чтобы опознать пользователя.
func (s *Service) readExpiredClaims(tokenStr string) (models.Claims, error) {
	const op = "service.token.readExpiredClaims"

	token, err := jwt.ParseWithClaims(tokenStr, &accessClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrWrongAccessToken)
			}

			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return models.Claims{}, fmt.Errorf("%s: %w", op, ErrWrongAccessToken)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok {
		return models.Claims{}, fmt.Errorf("%s: %w", op, ErrWrongAccessToken)
	}

	out, err := claims.toClaims()
	if err != nil {
		return models.Claims{}, fmt.Errorf("%s: %w", op, ErrWrongAccessToken)
	}

	return out, nil
}

// newRefreshToken генерирует непрозрачный refresh-токен: 32 случайных байта,
// base64url без паддинга.
func newRefreshToken() (string, error) {
	const op = "service.token.newRefreshToken"

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// hashToken — ключ кэша по секрету: sha256 + base64url.
// Сырой refresh-токен сервер нигде не хранит.
func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// newVerifyCode генерирует код подтверждения e-mail (16 случайных байт).
func newVerifyCode() (string, error) {
	const op = "service.token.newVerifyCode"

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-todo-list/internal/cache"
	mailpkg "github.com/pribylovaa/go-todo-list/internal/mail"
	"github.com/pribylovaa/go-todo-list/internal/models"
	"github.com/pribylovaa/go-todo-list/internal/pkg/log"
	"github.com/pribylovaa/go-todo-list/internal/pkg/passhash"
	"github.com/pribylovaa/go-todo-list/internal/pkg/redact"
	"github.com/pribylovaa/go-todo-list/internal/storage"
)

// maxEmailLen и maxUserNameLen — жёсткие лимиты полей учётной записи.
const (
	maxEmailLen    = 320
	maxUserNameLen = 12
)

// SignupUser регистрирует нового пользователя и отправляет код подтверждения
// на указанный адрес. Токены при регистрации не выпускаются: вход возможен
// только после подтверждения e-mail.
func (s *Service) SignupUser(ctx context.Context, email, name, password string) (*models.User, error) {
	const op = "service.auth.SignupUser"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	normName, err := validateUserName(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.storage.UserByEmail(ctx, normEmail)
	if err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.storage.UserByName(ctx, normName)
	if err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNameTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := passhash.Hash(password, s.hashParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        normEmail,
		Name:         normName,
		Role:         "user",
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.SendVerifyCode(ctx, user.Email); err != nil {
		// Регистрация уже состоялась: код можно запросить повторно.
		log.From(ctx).Warn("signup_verify_code_failed",
			slog.String("op", op),
			slog.String("email", redact.Email(user.Email)),
			slog.String("err", err.Error()),
		)
	}

	return user, nil
}

// LoginUser выполняет вход по email+пароль и выпускает новую пару токенов.
func (s *Service) LoginUser(ctx context.Context, email, password string) (*models.TokenPair, *models.User, error) {
	const op = "service.auth.LoginUser"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrEmailNotExist)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	ok, err := passhash.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrWrongPassword)
	}

	if !user.EmailVerified {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrEmailNotVerified)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_logged_in",
		slog.String("user_id", user.ID.String()),
		slog.String("email", redact.Email(user.Email)),
	)

	return pair, user, nil
}

// RefreshTokens обменивает просроченный access-токен и живой refresh-токен
// на новую пару. Порядок проверок фиксирован:
//  1. запись в кэше по хэшу refresh-токена (чтение сбрасывает скользящий TTL);
//  2. байтовое совпадение предъявленного access-токена с закэшированным;
//  3. подпись access-токена и разбор клеймов (срок действия игнорируется);
//  4. существование пользователя;
//  5. атомарная ротация: старый ключ удаляется, новый создаётся — гонящиеся
//     запросы с одним refresh-токеном получают ровно одну новую пару.
func (s *Service) RefreshTokens(ctx context.Context, accessToken, refreshToken string) (*models.TokenPair, error) {
	const op = "service.auth.RefreshTokens"

	if accessToken == "" || refreshToken == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrWrongAccessToken)
	}

	oldHash := hashToken(refreshToken)

	cachedAccess, found, err := s.tokens.Get(ctx, oldHash, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", op, ErrRefreshTokenExpired)
	}

	if cachedAccess != accessToken {
		return nil, fmt.Errorf("%s: %w", op, ErrAccessTokenMismatch)
	}

	claims, err := s.readExpiredClaims(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrWrongAccessToken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.cfg.AccessTokenTTL)

	newAccess, err := s.generateAccessToken(ctx, user, now, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	newRefresh, err := newRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status, err := s.tokens.Rotate(ctx, oldHash, accessToken, hashToken(newRefresh), newAccess, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch status {
	case cache.StatusAbsent:
		return nil, fmt.Errorf("%s: %w", op, ErrRefreshTokenExpired)
	case cache.StatusMismatch:
		return nil, fmt.Errorf("%s: %w", op, ErrAccessTokenMismatch)
	}

	log.From(ctx).Info("tokens_refreshed",
		slog.String("user_id", user.ID.String()),
	)

	return &models.TokenPair{
		AccessToken:     newAccess,
		RefreshToken:    newRefresh,
		AccessExpiresAt: expiresAt,
	}, nil
}

// Logout отзывает refresh-токен: запись удаляется, только если закэшированный
// access-токен совпал с предъявленным.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	const op = "service.auth.Logout"

	if accessToken == "" || refreshToken == "" {
		return fmt.Errorf("%s: %w", op, ErrWrongAccessToken)
	}

	status, err := s.tokens.Remove(ctx, hashToken(refreshToken), accessToken)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch status {
	case cache.StatusAbsent:
		return fmt.Errorf("%s: %w", op, ErrRefreshTokenExpired)
	case cache.StatusMismatch:
		return fmt.Errorf("%s: %w", op, ErrAccessTokenMismatch)
	}

	return nil
}

// Authenticate проверяет access-токен для middleware авторизации.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (models.Claims, error) {
	const op = "service.auth.Authenticate"

	claims, err := s.validateAccessToken(accessToken)
	if err != nil {
		return models.Claims{}, fmt.Errorf("%s: %w", op, err)
	}

	return claims, nil
}

// UserInfo возвращает учётную запись по идентификатору.
func (s *Service) UserInfo(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	const op = "service.auth.UserInfo"

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailNotExist)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// SendVerifyCode генерирует код подтверждения, кладёт его в кэш со скользящим
// TTL и отправляет письмом. Повторный вызов перезаписывает предыдущий код.
func (s *Service) SendVerifyCode(ctx context.Context, email string) error {
	const op = "service.auth.SendVerifyCode"

	normEmail, err := validateEmail(email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrEmailNotExist)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if user.EmailVerified {
		return nil
	}

	code, err := newVerifyCode()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.codes.SetCode(ctx, normEmail, code, s.cfg.VerifyCodeTTL); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := mailpkg.Message{
		To:      normEmail,
		Subject: "Подтверждение e-mail",
		Body:    "Код подтверждения: " + code,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		// Код уже в кэше: письмо можно запросить повторно.
		log.From(ctx).Warn("verify_mail_failed",
			slog.String("op", op),
			slog.String("email", redact.Email(normEmail)),
			slog.String("err", err.Error()),
		)
	}

	return nil
}

// VerifyEmail сверяет код подтверждения и помечает адрес подтверждённым.
// Код одноразовый: совпавший удаляется из кэша атомарно.
func (s *Service) VerifyEmail(ctx context.Context, email, code string) error {
	const op = "service.auth.VerifyEmail"

	normEmail, err := validateEmail(email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if code == "" {
		return fmt.Errorf("%s: %w", op, ErrEmailVerifyFailed)
	}

	ok, err := s.codes.ConsumeCode(ctx, normEmail, code)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrEmailVerifyFailed)
	}

	if err := s.storage.MarkEmailVerified(ctx, normEmail); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrEmailNotExist)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("email_verified",
		slog.String("email", redact.Email(normEmail)),
	)

	return nil
}

// issueTokenPair выпускает новую пару access+refresh и сохраняет связку
// в кэше: sha256(refresh) -> точная строка access-токена.
func (s *Service) issueTokenPair(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	const op = "service.auth.issueTokenPair"

	now := time.Now().UTC()
	expiresAt := now.Add(s.cfg.AccessTokenTTL)

	accessToken, err := s.generateAccessToken(ctx, user, now, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err := newRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.tokens.Set(ctx, hashToken(refreshToken), accessToken, s.cfg.RefreshTokenTTL); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: expiresAt,
	}, nil
}

// validateEmail проверяет базовый формат email и нормализует регистр.
func validateEmail(raw string) (string, error) {
	const op = "service.auth.validateEmail"

	email := strings.TrimSpace(raw)
	if email == "" || len(email) > maxEmailLen {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	return strings.ToLower(email), nil
}

// validateUserName проверяет имя пользователя: непустое, без пробелов,
// не длиннее 12 символов.
func validateUserName(raw string) (string, error) {
	const op = "service.auth.validateUserName"

	name := strings.TrimSpace(raw)
	if name == "" || len([]rune(name)) > maxUserNameLen {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidUserName)
	}

	for _, r := range name {
		if unicode.IsSpace(r) {
			return "", fmt.Errorf("%s: %w", op, ErrInvalidUserName)
		}
	}

	return name, nil
}

// validatePassword проверяет минимальные требования к паролю.
// Политика: длина >= 8, хотя бы одна строчная, заглавная и цифра.
func validatePassword(pw string) error {
	const op = "service.auth.validatePassword"

	if len([]rune(pw)) < 8 {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !(hasLower && hasUpper && hasDigit) {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	return nil
}

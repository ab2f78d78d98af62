package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-todo-list/internal/config"
	"github.com/pribylovaa/go-todo-list/internal/models"
)

func testAuthCfg() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       "unit-test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "todo-service",
		Audience:        []string{"todo-client"},
		VerifyCodeTTL:   15 * time.Minute,
	}
}

func testUser() *models.User {
	return &models.User{
		ID:            uuid.New(),
		Email:         "user@example.com",
		Name:          "alice",
		Role:          "user",
		EmailVerified: true,
	}
}

func TestGenerateAccessToken_AndValidate_OK(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	ctx := context.Background()
	user := testUser()
	now := time.Now().UTC()

	at, err := svc.generateAccessToken(ctx, user, now, now.Add(svc.cfg.AccessTokenTTL))
	require.NoError(t, err)

	claims, err := svc.validateAccessToken(at)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, user.Name, claims.Name)
	require.Equal(t, user.Role, claims.Role)
	require.Equal(t, user.Email, claims.Email)
}

func TestGenerateAccessToken_EmptySecret(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()
	svc.cfg.JWTSecret = ""

	now := time.Now().UTC()
	_, err := svc.generateAccessToken(context.Background(), testUser(), now, now.Add(time.Minute))
	require.Error(t, err)
}

func TestValidateAccessToken_WrongAlg_WrongIssuer_WrongAudience(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	secret := []byte(testAuthCfg().JWTSecret)
	uid := uuid.New()
	now := time.Now().UTC()

	baseClaims := func() jwt.MapClaims {
		return jwt.MapClaims{
			"uid":   uid.String(),
			"role":  "user",
			"email": "a@b.c",
			"iss":   testAuthCfg().Issuer,
			"sub":   "alice",
			"aud":   testAuthCfg().Audience,
			"exp":   now.Add(15 * time.Minute).Unix(),
			"iat":   now.Unix(),
		}
	}

	t.Run("wrong alg", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS512, baseClaims())
		signed, err := token.SignedString(secret)
		require.NoError(t, err)

		_, err = svc.validateAccessToken(signed)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := baseClaims()
		claims["iss"] = "another-issuer"
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString(secret)
		require.NoError(t, err)

		_, err = svc.validateAccessToken(signed)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		claims := baseClaims()
		claims["aud"] = []string{"someone-else"}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString(secret)
		require.NoError(t, err)

		_, err = svc.validateAccessToken(signed)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, baseClaims())
		signed, err := token.SignedString([]byte("other-secret"))
		require.NoError(t, err)

		_, err = svc.validateAccessToken(signed)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestValidateAccessToken_Expired(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	ctx := context.Background()
	user := testUser()
	now := time.Now().UTC().Add(-time.Hour)

	at, err := svc.generateAccessToken(ctx, user, now, now.Add(time.Minute))
	require.NoError(t, err)

	_, err = svc.validateAccessToken(at)
	require.ErrorIs(t, err, ErrAccessTokenExpired)
}

// Просроченный, но корректно подписанный access читается вторым режимом
// кодека: именно так refresh-поток опознаёт пользователя.
func TestReadExpiredClaims_OK(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	ctx := context.Background()
	user := testUser()
	now := time.Now().UTC().Add(-time.Hour)

	at, err := svc.generateAccessToken(ctx, user, now, now.Add(time.Minute))
	require.NoError(t, err)

	claims, err := svc.readExpiredClaims(at)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, user.Name, claims.Name)
	require.Equal(t, user.Email, claims.Email)
}

func TestReadExpiredClaims_BadSignature(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": uuid.New().String(),
		"sub": "alice",
	})
	signed, err := token.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = svc.readExpiredClaims(signed)
	require.ErrorIs(t, err, ErrWrongAccessToken)
}

func TestNewRefreshToken_UniqueAndOpaque(t *testing.T) {
	t.Parallel()

	a, err := newRefreshToken()
	require.NoError(t, err)
	b, err := newRefreshToken()
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	// 32 байта в base64url без паддинга — 43 символа.
	require.Len(t, a, 43)
}

func TestHashToken_Deterministic(t *testing.T) {
	t.Parallel()

	require.Equal(t, hashToken("secret"), hashToken("secret"))
	require.NotEqual(t, hashToken("secret"), hashToken("other"))
}

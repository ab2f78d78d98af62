// service содержит бизнес-логику todo-сервиса: регистрацию и вход
// пользователей, выпуск/ротацию пар токенов, подтверждение e-mail и
// операции над списком дел. Работа с БД и кэшем — через интерфейсы
// пакетов storage и cache.
//
// Основные аспекты:
//   - Экземпляр Service не хранит состояние запроса и безопасен для
//     конкурентного использования, если потокобезопасны переданные
//     зависимости.
//   - Все ожидаемые исходы возвращаются сентинельными ошибками ниже и
//     маппятся транспортом в HTTP-статусы и коды (см. transport/http/httperr);
//     инфраструктурные сбои (кэш/БД недоступны, не задан ключ подписи)
//     поднимаются как есть и становятся 5xx.
package service

import (
	"errors"

	"github.com/pribylovaa/go-todo-list/internal/cache"
	"github.com/pribylovaa/go-todo-list/internal/config"
	"github.com/pribylovaa/go-todo-list/internal/mail"
	"github.com/pribylovaa/go-todo-list/internal/pkg/passhash"
	"github.com/pribylovaa/go-todo-list/internal/storage"
)

var (
	// ErrEmailNotExist — пользователь с таким e-mail не зарегистрирован.
	// Транспорт: 404.
	ErrEmailNotExist = errors.New("email not exist")

	// ErrWrongPassword — пароль не совпал. Транспорт: 400.
	ErrWrongPassword = errors.New("wrong password")

	// ErrEmailNotVerified — e-mail ещё не подтверждён, вход запрещён.
	// Транспорт: 403.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrEmailTaken — e-mail уже занят другим пользователем. Транспорт: 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrUserNameTaken — имя уже занято. Транспорт: 409.
	ErrUserNameTaken = errors.New("user name already taken")

	// ErrAccessTokenMismatch — предъявленный access-токен не совпал байт в байт
	// с тем, который кэш в последний раз связывал с этим refresh-токеном
	// (подделка, повтор или устаревшее состояние клиента). Транспорт: 400.
	ErrAccessTokenMismatch = errors.New("access token not match")

	// ErrWrongAccessToken — access-токен корректно подписан, но бесполезен:
	// клеймы не разбираются или пользователь уже не существует. Транспорт: 400.
	ErrWrongAccessToken = errors.New("wrong access token")

	// ErrRefreshTokenExpired — refresh-токен отсутствует в кэше (истёк или
	// никогда не выдавался). Транспорт: 404 + сигнальный заголовок.
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrAccessTokenExpired — access-токен валиден, но просрочен. Middleware
	// аутентификации превращает его в сигнальный заголовок + 401.
	ErrAccessTokenExpired = errors.New("access token expired")

	// ErrInvalidToken — access-токен не разбирается или подпись/алгоритм
	// не соответствуют конфигурации. Транспорт: 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrEmailVerifyFailed — код подтверждения не совпал или истёк.
	// Транспорт: 400.
	ErrEmailVerifyFailed = errors.New("email verify failed")

	// ErrInvalidEmail — e-mail имеет некорректный формат. Транспорт: 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidUserName — имя пустое или длиннее 12 символов. Транспорт: 400.
	ErrInvalidUserName = errors.New("invalid user name")

	// ErrWeakPassword — пароль не удовлетворяет политике сложности.
	// Транспорт: 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrInvalidItemName — имя элемента пустое или длиннее 100 символов.
	// Транспорт: 400.
	ErrInvalidItemName = errors.New("invalid item name")

	// ErrItemNotFound — элемент списка дел не найден. Транспорт: 404.
	ErrItemNotFound = errors.New("todo item not found")

	// ErrForbidden — элемент принадлежит другому пользователю. Транспорт: 403.
	ErrForbidden = errors.New("forbidden")
)

// Service описывает бизнес-логику todo-сервиса.
type Service struct {
	storage    storage.Storage
	tokens     cache.RefreshTokenStore
	codes      cache.VerifyCodeStore
	mailer     mail.Mailer
	cfg        config.AuthConfig
	hashParams passhash.Params
}

// New создаёт новый экземпляр Service.
func New(st storage.Storage, tokens cache.RefreshTokenStore, codes cache.VerifyCodeStore, mailer mail.Mailer, cfg config.AuthConfig) *Service {
	return &Service{
		storage:    st,
		tokens:     tokens,
		codes:      codes,
		mailer:     mailer,
		cfg:        cfg,
		hashParams: passhash.DefaultParams(),
	}
}

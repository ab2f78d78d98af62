// cache — Redis-хранилище пар refresh-токен -> access-токен и кодов
// подтверждения e-mail.
//
// Ключи refresh-токенов строятся из sha256-хэша секрета (хэширует сервисный
// слой), значением хранится ровно та строка access-токена, с которой пара
// была выпущена в последний раз. Запись одна на ключ: при ротации старый ключ
// удаляется, новый создаётся одним Lua-скриптом — из двух гонящихся refresh
// выигрывает только один.
//
// Недоступность Redis — обычная ошибка, поднимающаяся до вызывающего запроса:
// локального фолбэка нет, кэш — единственный источник истины о валидности
// refresh-токена.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Status — исход условных операций над записью пары.
type Status int

const (
	// StatusAbsent — ключ отсутствует (истёк по TTL или никогда не выдавался).
	StatusAbsent Status = iota
	// StatusMismatch — ключ есть, но закэшированный access-токен не совпал
	// с предъявленным.
	StatusMismatch
	// StatusOK — сравнение прошло, операция выполнена.
	StatusOK
)

// RefreshTokenStore — контракт кэша пар refresh -> access.
type RefreshTokenStore interface {
	// Get возвращает закэшированный access-токен и признак наличия записи.
	// Каждое успешное чтение сбрасывает скользящий TTL заново.
	Get(ctx context.Context, hash string, ttl time.Duration) (string, bool, error)
	// Set сохраняет пару со скользящим TTL (перезаписывает, не дополняет).
	Set(ctx context.Context, hash, accessToken string, ttl time.Duration) error
	// Rotate атомарно (compare-and-swap) заменяет старую запись новой:
	// старый ключ удаляется только если его значение равно expectedAccess,
	// и в той же операции создаётся новый ключ.
	Rotate(ctx context.Context, oldHash, expectedAccess, newHash, newAccess string, ttl time.Duration) (Status, error)
	// Remove атомарно удаляет запись, если её значение равно expectedAccess.
	Remove(ctx context.Context, hash, expectedAccess string) (Status, error)
	// Close закрывает клиент Redis.
	Close() error
}

// VerifyCodeStore — контракт хранилища кодов подтверждения e-mail.
type VerifyCodeStore interface {
	// SetCode сохраняет код для адреса со скользящим TTL.
	SetCode(ctx context.Context, email, code string, ttl time.Duration) error
	// ConsumeCode атомарно сверяет код и удаляет его при совпадении.
	ConsumeCode(ctx context.Context, email, code string) (bool, error)
}

const (
	refreshPrefix = "todo:rt:"
	verifyPrefix  = "todo:vc:"
)

// rotateScript: 0 — старый ключ отсутствует; 1 — значение не совпало;
// 2 — ротация выполнена.
var rotateScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if not cur then
  return 0
end
if cur ~= ARGV[1] then
  return 1
end
redis.call("DEL", KEYS[1])
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 2
`)

// removeScript: те же коды исхода, что и у rotateScript, без создания ключа.
var removeScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if not cur then
  return 0
end
if cur ~= ARGV[1] then
  return 1
end
redis.call("DEL", KEYS[1])
return 2
`)

// consumeScript: 1 — код совпал и удалён; 0 — отсутствует или не совпал.
var consumeScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if not cur or cur ~= ARGV[1] then
  return 0
end
redis.call("DEL", KEYS[1])
return 1
`)

type Cache struct {
	rdb *redis.Client
}

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0)
// с fail-fast пингом на старте.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	const op = "cache.New"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Cache{rdb: rdb}, nil
}

// NewWithClient оборачивает готовый клиент (используется в тестах с miniredis).
func NewWithClient(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func refreshKey(hash string) string { return refreshPrefix + hash }
func verifyKey(email string) string { return verifyPrefix + email }

// Get возвращает закэшированный access-токен, сбрасывая скользящий TTL.
func (c *Cache) Get(ctx context.Context, hash string, ttl time.Duration) (string, bool, error) {
	const op = "cache.Get"

	val, err := c.rdb.GetEx(ctx, refreshKey(hash), ttl).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	return val, true, nil
}

// Set сохраняет пару со скользящим TTL.
func (c *Cache) Set(ctx context.Context, hash, accessToken string, ttl time.Duration) error {
	const op = "cache.Set"

	if err := c.rdb.Set(ctx, refreshKey(hash), accessToken, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Rotate атомарно заменяет старую запись новой (compare-and-swap).
func (c *Cache) Rotate(ctx context.Context, oldHash, expectedAccess, newHash, newAccess string, ttl time.Duration) (Status, error) {
	const op = "cache.Rotate"

	res, err := rotateScript.Run(ctx, c.rdb,
		[]string{refreshKey(oldHash), refreshKey(newHash)},
		expectedAccess, newAccess, ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return StatusAbsent, fmt.Errorf("%s: %w", op, err)
	}

	return Status(res), nil
}

// Remove атомарно удаляет запись при совпадении access-токена.
func (c *Cache) Remove(ctx context.Context, hash, expectedAccess string) (Status, error) {
	const op = "cache.Remove"

	res, err := removeScript.Run(ctx, c.rdb,
		[]string{refreshKey(hash)},
		expectedAccess,
	).Int64()
	if err != nil {
		return StatusAbsent, fmt.Errorf("%s: %w", op, err)
	}

	return Status(res), nil
}

// SetCode сохраняет код подтверждения для адреса.
func (c *Cache) SetCode(ctx context.Context, email, code string, ttl time.Duration) error {
	const op = "cache.SetCode"

	if err := c.rdb.Set(ctx, verifyKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ConsumeCode атомарно сверяет код и удаляет его при совпадении.
func (c *Cache) ConsumeCode(ctx context.Context, email, code string) (bool, error) {
	const op = "cache.ConsumeCode"

	res, err := consumeScript.Run(ctx, c.rdb, []string{verifyKey(email)}, code).Int64()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return res == 1, nil
}

// Close закрывает клиент Redis.
func (c *Cache) Close() error { return c.rdb.Close() }

var (
	_ RefreshTokenStore = (*Cache)(nil)
	_ VerifyCodeStore   = (*Cache)(nil)
)

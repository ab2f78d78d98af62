// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Режимы транспорта токенов на границе HTTP.
const (
	TransportHeader = "header"
	TransportCookie = "cookie"
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	Auth     AuthConfig    `yaml:"auth"`
	DB       DBConfig      `yaml:"db"`
	Redis    RedisConfig   `yaml:"redis"`
	SMTP     SMTPConfig    `yaml:"smtp"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE" env-default:"5s"`
}

// HTTPConfig — сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50080"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// AuthConfig содержит параметры выпуска и валидации токенов, а также
// имена транспортных полей и сигнальных заголовков. Имена никогда не
// зашиваются в логику — только сюда.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"30m"`
	// RefreshTokenTTL — скользящий TTL: каждое успешное обращение к записи
	// в кэше сбрасывает отсчёт заново.
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"720h"`
	Issuer          string        `yaml:"issuer"   env:"ISSUER" env-default:"todo-service"`
	Audience        []string      `yaml:"audience" env:"AUDIENCE" env-default:"todo-client"`

	// TokenTransport — способ доставки пары токенов клиенту: header | cookie.
	// Тело запроса при refresh/logout принимается в обоих режимах.
	TokenTransport string `yaml:"token_transport" env:"TOKEN_TRANSPORT" env-default:"header"`
	// AccessTokenKey/RefreshTokenKey — имена заголовков или cookie для пары.
	AccessTokenKey  string `yaml:"access_token_key"  env:"ACCESS_TOKEN_KEY"  env-default:"X-Access-Token"`
	RefreshTokenKey string `yaml:"refresh_token_key" env:"REFRESH_TOKEN_KEY" env-default:"X-Refresh-Token"`
	// Сигнальные заголовки, по которым клиентский интерсептор понимает,
	// что истёк access- или refresh-токен.
	AccessExpiredHeader  string `yaml:"access_expired_header"  env:"ACCESS_EXPIRED_HEADER"  env-default:"IS-ACCESS-TOKEN-EXPIRED"`
	RefreshExpiredHeader string `yaml:"refresh_expired_header" env:"REFRESH_EXPIRED_HEADER" env-default:"IS-REFRESH-TOKEN-EXPIRED"`

	// VerifyCodeTTL — скользящий срок жизни кода подтверждения e-mail.
	VerifyCodeTTL time.Duration `yaml:"verify_code_ttl" env:"VERIFY_CODE_TTL" env-default:"15m"`
}

// DBConfig — настройки подключения к базе данных.
type DBConfig struct {
	DatabaseURL string `yaml:"db_url" env:"DATABASE_URL" env-required:"true"`
}

// RedisConfig — настройки подключения к Redis (кэш refresh-токенов и кодов).
type RedisConfig struct {
	RedisURL string `yaml:"redis_url" env:"REDIS_URL" env-required:"true"`
}

// SMTPConfig — исходящая почта для писем подтверждения.
// Пустой Host отключает реальную отправку (no-op в local/dev).
type SMTPConfig struct {
	Host string `yaml:"host" env:"SMTP_HOST" env-default:""`
	Port string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	User string `yaml:"user" env:"SMTP_USER" env-default:""`
	Pass string `yaml:"pass" env:"SMTP_PASS" env-default:""`
	From string `yaml:"from" env:"SMTP_FROM" env-default:"no-reply@todo-list.local"`
}

// Addr возвращает адрес в формате host:port.
func (s SMTPConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// ВАЖНО: после чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read local.yaml: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}

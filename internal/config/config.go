package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	// ProxyHeader names the header carrying the client IP when the service
	// runs behind a reverse proxy, e.g. X-Forwarded-For. Only honored for
	// requests from TrustedProxies.
	ProxyHeader    string
	TrustedProxies []string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Format      string
	Development bool
}

// AuthConfig defines session token parameters. The two secrets sign the
// user and judge token families respectively and must differ.
type AuthConfig struct {
	JWTSecret                string
	JWTJudgeSecret           string
	CookieSecure             bool
	BcryptCost               int
	MaxLoginAttempts         int
	MaxIPLoginAttempts       int
	LoginCooldownSeconds     int
	LoginThrottleIPAddresses bool
}

var (
	ErrMissingJWTSecret      = errors.New("AUTH_JWT_SECRET is required")
	ErrMissingJudgeJWTSecret = errors.New("AUTH_JWT_JUDGE_SECRET is required")
	ErrSharedJWTSecret       = errors.New("AUTH_JWT_SECRET and AUTH_JWT_JUDGE_SECRET must differ")
)

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "survey-auth"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			ProxyHeader:           os.Getenv("HTTP_PROXY_HEADER"),
			TrustedProxies:        getEnvAsList("HTTP_TRUSTED_PROXIES"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Format:      getEnv("LOG_FORMAT", "json"),
			Development: getEnv("APP_ENV", "development") == "development",
		},
		Auth: AuthConfig{
			JWTSecret:                os.Getenv("AUTH_JWT_SECRET"),
			JWTJudgeSecret:           os.Getenv("AUTH_JWT_JUDGE_SECRET"),
			CookieSecure:             getEnvAsBool("AUTH_COOKIE_SECURE", false),
			BcryptCost:               getEnvAsInt("AUTH_BCRYPT_COST", 12),
			MaxLoginAttempts:         getEnvAsInt("AUTH_MAX_LOGIN_ATTEMPTS", 5),
			MaxIPLoginAttempts:       getEnvAsInt("AUTH_MAX_IP_LOGIN_ATTEMPTS", 100),
			LoginCooldownSeconds:     getEnvAsInt("AUTH_LOGIN_COOLDOWN_SECONDS", 900),
			LoginThrottleIPAddresses: getEnvAsBool("AUTH_LOGIN_THROTTLE_IP", false),
		},
	}

	if err := cfg.Auth.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures both signing secrets are present and distinct.
func (a AuthConfig) Validate() error {
	if a.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if a.JWTJudgeSecret == "" {
		return ErrMissingJudgeJWTSecret
	}
	if a.JWTSecret == a.JWTJudgeSecret {
		return ErrSharedJWTSecret
	}
	return nil
}

// LoginCooldown returns the failed-login counting window.
func (a AuthConfig) LoginCooldown() time.Duration {
	if a.LoginCooldownSeconds <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(a.LoginCooldownSeconds) * time.Second
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

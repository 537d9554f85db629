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

const defaultJWTSecret = "dev-secret"

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Invite       InviteConfig
	Access       AccessConfig
	RateLimit    RateLimitConfig
	Notification NotificationConfig
	Housekeeping HousekeepingConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	CORSOrigins           string
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

// RedisConfig holds Redis connection values. An empty Addr selects the in-process cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret               string
	AccessTokenTTLMinutes   int
	PasswordResetTTLMinutes int
	BcryptCost              int
	PasswordResetURL        string
}

// InviteConfig controls invite code limits.
//
// UsageCap is a global ceiling applied on top of each code's own max uses. Zero disables it.
// The legacy client enforced a fixed cap of 10 regardless of the stored max; set 10 to match.
type InviteConfig struct {
	UsageCap       int
	DefaultMaxUses int
	MaxExpiresDays int
}

// AccessConfig lists email allow-lists used for role derivation.
type AccessConfig struct {
	AdminEmails  []string
	TesterEmails []string
}

// RateLimitConfig throttles invite endpoints per client IP.
type RateLimitConfig struct {
	InvitePerMinute int
	InviteBurst     int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// HousekeepingConfig schedules background cleanup.
type HousekeepingConfig struct {
	Enabled  bool
	Schedule string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "mente-aberta-api"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			CORSOrigins:           getEnv("CORS_ORIGINS", "*"),
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
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:               getEnv("AUTH_JWT_SECRET", defaultJWTSecret),
			AccessTokenTTLMinutes:   getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			PasswordResetTTLMinutes: getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 30),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
			PasswordResetURL:        getEnv("AUTH_PASSWORD_RESET_URL", "http://localhost:3000/auth/reset-password"),
		},
		Invite: InviteConfig{
			UsageCap:       getEnvAsInt("INVITE_USAGE_CAP", 0),
			DefaultMaxUses: getEnvAsInt("INVITE_DEFAULT_MAX_USES", 10),
			MaxExpiresDays: getEnvAsInt("INVITE_MAX_EXPIRES_DAYS", 365),
		},
		Access: AccessConfig{
			AdminEmails:  getEnvAsList("ACCESS_ADMIN_EMAILS"),
			TesterEmails: getEnvAsList("ACCESS_TESTER_EMAILS"),
		},
		RateLimit: RateLimitConfig{
			InvitePerMinute: getEnvAsInt("RATELIMIT_INVITE_PER_MINUTE", 10),
			InviteBurst:     getEnvAsInt("RATELIMIT_INVITE_BURST", 5),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		Housekeeping: HousekeepingConfig{
			Enabled:  getEnvAsBool("HOUSEKEEPING_ENABLED", true),
			Schedule: getEnv("HOUSEKEEPING_SCHEDULE", "@every 1h"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that would run production without real credentials.
func (c *Config) Validate() error {
	if c.Invite.UsageCap < 0 {
		return errors.New("INVITE_USAGE_CAP must be >= 0")
	}
	if c.Invite.DefaultMaxUses <= 0 {
		return errors.New("INVITE_DEFAULT_MAX_USES must be > 0")
	}
	if !c.IsProduction() {
		return nil
	}
	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == defaultJWTSecret {
		return errors.New("AUTH_JWT_SECRET must be set in production")
	}
	if c.Postgres.DSN == "" {
		return errors.New("POSTGRES_DSN must be set in production")
	}
	return nil
}

// IsProduction reports whether APP_ENV selects production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
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

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

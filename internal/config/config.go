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

// MinSessionSecretLength is the shortest accepted session signing secret.
const MinSessionSecretLength = 32

// MinBcryptCost is the lowest accepted bcrypt work factor.
const MinBcryptCost = 10

// ErrMissingSessionSecret is returned when AUTH_SESSION_SECRET is absent or too short.
var ErrMissingSessionSecret = errors.New("AUTH_SESSION_SECRET must be set to at least 32 bytes")

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN                string
	ApplicationName    string
	StatementTimeoutMS int
	MaxConns           int32
	MinConns           int32
	RunMigrations      bool
	MigrationsDir      string
	ConnMaxIdleSec     int32
	ConnMaxLifeSec     int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
	// File enables a rotating file sink in addition to stdout.
	File         string
	FileMaxSize  int
	FileMaxAge   int
	FileBackups  int
	FileCompress bool
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	SessionSecret           string
	SessionIssuer           string
	CookieSecure            bool
	BcryptCost              int
	LoginMaxFailures        int
	LoginLockoutMinutes     int
	PasswordResetTTLMinutes int
	InviteTTLHours          int

	// Bootstrap credentials create the first ADMIN when no account holds the email.
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
	PortalURL  string
}

// Load reads configuration from environment variables, applying defaults where possible.
// It fails when the session signing secret is missing instead of falling back to a literal.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	env := getEnv("APP_ENV", "production")
	appName := getEnv("APP_NAME", "agency-console")

	cfg := &Config{
		App: AppConfig{
			Name:                  appName,
			Env:                   env,
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:                os.Getenv("POSTGRES_DSN"),
			ApplicationName:    getEnv("POSTGRES_APPLICATION_NAME", appName),
			StatementTimeoutMS: getEnvAsInt("POSTGRES_STATEMENT_TIMEOUT_MS", 5000),
			MaxConns:           maxConns,
			MinConns:           minConns,
			RunMigrations:      runMigrations,
			MigrationsDir:      getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec:     connMaxIdle,
			ConnMaxLifeSec:     connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			File:         os.Getenv("LOG_FILE"),
			FileMaxSize:  getEnvAsInt("LOG_FILE_MAX_SIZE_MB", 100),
			FileMaxAge:   getEnvAsInt("LOG_FILE_MAX_AGE_DAYS", 28),
			FileBackups:  getEnvAsInt("LOG_FILE_MAX_BACKUPS", 3),
			FileCompress: getEnvAsBool("LOG_FILE_COMPRESS", true),
		},
		Auth: AuthConfig{
			SessionSecret:           os.Getenv("AUTH_SESSION_SECRET"),
			SessionIssuer:           getEnv("AUTH_SESSION_ISSUER", "agency-console"),
			CookieSecure:            getEnvAsBool("AUTH_COOKIE_SECURE", env != "development"),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
			LoginMaxFailures:        getEnvAsInt("AUTH_LOGIN_MAX_FAILURES", 5),
			LoginLockoutMinutes:     getEnvAsInt("AUTH_LOGIN_LOCKOUT_MINUTES", 15),
			PasswordResetTTLMinutes: getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 30),
			InviteTTLHours:          getEnvAsInt("AUTH_INVITE_TTL_HOURS", 72),
			BootstrapAdminEmail:     os.Getenv("AUTH_BOOTSTRAP_ADMIN_EMAIL"),
			BootstrapAdminPassword:  os.Getenv("AUTH_BOOTSTRAP_ADMIN_PASSWORD"),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
			PortalURL:  getEnv("NOTIFY_PORTAL_URL", "http://localhost:8080/portal"),
		},
	}

	if err := cfg.Auth.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that must never be defaulted.
func (a AuthConfig) Validate() error {
	if len(strings.TrimSpace(a.SessionSecret)) < MinSessionSecretLength {
		return ErrMissingSessionSecret
	}
	if a.BcryptCost < MinBcryptCost {
		return fmt.Errorf("AUTH_BCRYPT_COST must be at least %d, got %d", MinBcryptCost, a.BcryptCost)
	}
	return nil
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

// LoginLockout returns the window in which failed logins are counted.
func (a AuthConfig) LoginLockout() time.Duration {
	if a.LoginLockoutMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(a.LoginLockoutMinutes) * time.Minute
}

// PasswordResetTTL returns the lifetime of a password reset token.
func (a AuthConfig) PasswordResetTTL() time.Duration {
	if a.PasswordResetTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(a.PasswordResetTTLMinutes) * time.Minute
}

// InviteTTL returns the lifetime of a client portal invitation.
func (a AuthConfig) InviteTTL() time.Duration {
	if a.InviteTTLHours <= 0 {
		return 72 * time.Hour
	}
	return time.Duration(a.InviteTTLHours) * time.Hour
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

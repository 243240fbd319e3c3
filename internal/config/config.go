package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (default)
	AuthModeLocal AuthMode = "local" // Local user database with sessions
)

type (
	Config struct {
		HTTP
		Audit
		Global
		Database
		UI
		Tasks
		Auth
		Vocabulary
		Uploads
	}

	HTTP struct {
		Port int32
		Host string
	}
	Audit struct {
		RetentionDays   int    // Days to keep audit events (default: 30)
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver string // sqlite or postgres
		Path   string // sqlite file
		DSN    string // postgres connection string
	}
	UI struct {
		TemplatesPath string
		StaticPath    string
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Auth struct {
		Mode              AuthMode
		SessionSecret     string
		SessionLifetime   time.Duration
		TokenExpiry       time.Duration
		BcryptCost        int
		SecureCookies     bool // Set to false for local dev without HTTPS
		AllowRegistration bool // Open sign-up after the first admin exists

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Vocabulary struct {
		AllowedLanguages    []string // Empty means the built-in list
		MeaningImpliesKnown bool
	}
	Uploads struct {
		MaxBytes int64
	}
)

// loadEnvFile populates the process environment from path when it exists.
// Variables already set in the environment win over the file.
func loadEnvFile(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Could not load %s: %v", path, err)
	}
}

// splitList parses a comma separated value, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// defaults apply when neither the environment nor the .env file set a key.
var defaults = map[string]any{
	"port":                        8188,
	"host":                        "0.0.0.0",
	"shutdown_timeout_in_seconds": 2,

	"database_driver": DriverSQLite,
	"database_path":   DefaultDatabasePath,
	"database_dsn":    "",

	"audit_retention_days":   30,
	"audit_cleanup_schedule": "0 3 * * *",

	"templates_path": "./templates",
	"static_path":    "./static",

	"allowed_languages":           "",
	"vocab_meaning_implies_known": true,
	"upload_max_bytes":            10 << 20,

	// An empty session secret is generated at startup
	"auth_mode":               string(AuthModeNone),
	"auth_session_secret":     "",
	"auth_session_lifetime":   "24h",
	"auth_token_expiry":       "720h",
	"auth_bcrypt_cost":        12,
	"auth_secure_cookies":     true,
	"auth_allow_registration": true,
	"auth_max_login_attempts": 5,
	"auth_rate_limit_window":  "15m",
	"auth_lockout_duration":   "30m",

	"tasks_enabled":           true,
	"task_workers":            2,
	"task_max_retries":        3,
	"task_retry_delay":        "1m",
	"task_timeout":            "5m",
	"task_release_after":      "15m",
	"task_cleanup_interval":   "1h",
	"task_retention_duration": "24h",
}

func NewConfig() *Config {
	loadEnvFile(DefaultEnvFile)

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Audit: Audit{
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver: v.GetString("DATABASE_DRIVER"),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Auth: Auth{
			Mode:              AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:     v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:   v.GetDuration("AUTH_SESSION_LIFETIME"),
			TokenExpiry:       v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:        v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:     v.GetBool("AUTH_SECURE_COOKIES"),
			AllowRegistration: v.GetBool("AUTH_ALLOW_REGISTRATION"),
			MaxLoginAttempts:  v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:   v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:   v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Vocabulary: Vocabulary{
			AllowedLanguages:    splitList(v.GetString("ALLOWED_LANGUAGES")),
			MeaningImpliesKnown: v.GetBool("VOCAB_MEANING_IMPLIES_KNOWN"),
		},
		Uploads: Uploads{
			MaxBytes: v.GetInt64("UPLOAD_MAX_BYTES"),
		},
	}
}

// Validate reports configuration combinations the application cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("DATABASE_PATH must be set for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("DATABASE_DSN must be set for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	if c.Auth.Mode != AuthModeNone && c.Auth.Mode != AuthModeLocal {
		return fmt.Errorf("unsupported AUTH_MODE %q", c.Auth.Mode)
	}
	return nil
}

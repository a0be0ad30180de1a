// Package config loads the service configuration from an optional YAML file
// and environment variables.
//
// PRIORITY: ENV > YAML > defaults (env-default tags).
package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Env      string         `yaml:"env"      env:"APP_ENV"  env-default:"development"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Email    EmailConfig    `yaml:"email"`
	Notify   NotifyConfig   `yaml:"notify"`
	Progress ProgressConfig `yaml:"progress"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"PORT"                    env-default:"3000"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"DB_PATH" env-default:"data/dailylog.db"`
}

// AuthConfig holds session token and OAuth settings.
type AuthConfig struct {
	JWTSecret          string        `yaml:"jwt_secret"           env:"JWT_SECRET"           env-required:"true"`
	TokenTTL           time.Duration `yaml:"token_ttl"            env:"AUTH_TOKEN_TTL"       env-default:"24h"`
	SecureCookie       bool          `yaml:"secure_cookie"        env:"AUTH_SECURE_COOKIE"   env-default:"false"`
	BcryptCost         int           `yaml:"bcrypt_cost"          env:"AUTH_BCRYPT_COST"     env-default:"12"`
	GitHubClientID     string        `yaml:"github_client_id"     env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string        `yaml:"github_client_secret" env:"GITHUB_CLIENT_SECRET"`
	GitHubCallbackURL  string        `yaml:"github_callback_url"  env:"GITHUB_CALLBACK_URL"`
}

// GitHubEnabled reports whether GitHub login is fully configured.
func (a AuthConfig) GitHubEnabled() bool {
	return a.GitHubClientID != "" && a.GitHubClientSecret != ""
}

// EmailConfig holds SMTP settings for entry notifications.
// Notifications are disabled when Host is empty.
type EmailConfig struct {
	Host     string `yaml:"host"     env:"EMAIL_HOST"`
	Port     int    `yaml:"port"     env:"EMAIL_PORT"     env-default:"587"`
	Secure   bool   `yaml:"secure"   env:"EMAIL_SECURE"   env-default:"false"`
	User     string `yaml:"user"     env:"EMAIL_USER"`
	Password string `yaml:"password" env:"EMAIL_PASSWORD"`
	From     string `yaml:"from"     env:"EMAIL_FROM"`
	To       string `yaml:"to"       env:"EMAIL_TO"`
}

// Enabled reports whether an SMTP host is configured.
func (e EmailConfig) Enabled() bool {
	return e.Host != ""
}

// Sender returns the From address, falling back to the SMTP user.
func (e EmailConfig) Sender() string {
	if e.From != "" {
		return e.From
	}
	return e.User
}

// NotifyConfig tunes the asynchronous notification queue.
type NotifyConfig struct {
	Workers     int           `yaml:"workers"      env:"NOTIFY_WORKERS"      env-default:"2"`
	QueueSize   int           `yaml:"queue_size"   env:"NOTIFY_QUEUE_SIZE"   env-default:"128"`
	MaxAttempts int           `yaml:"max_attempts" env:"NOTIFY_MAX_ATTEMPTS" env-default:"3"`
	BaseBackoff time.Duration `yaml:"base_backoff" env:"NOTIFY_BASE_BACKOFF" env-default:"1s"`
	SendTimeout time.Duration `yaml:"send_timeout" env:"NOTIFY_SEND_TIMEOUT" env-default:"20s"`
}

// ProgressConfig holds the course progress target.
type ProgressConfig struct {
	TargetDays int    `yaml:"target_days" env:"PROGRESS_TARGET_DAYS" env-default:"65"`
	Timezone   string `yaml:"timezone"    env:"PROGRESS_TIMEZONE"    env-default:"Local"`

	// Location is resolved from Timezone during validation.
	Location *time.Location `yaml:"-" env:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// CORSConfig holds CORS settings. The browser client may be served from a
// different origin than the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000" env-separator:","`
	MaxAge         int      `yaml:"max_age"         env:"CORS_MAX_AGE"         env-default:"300"`
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

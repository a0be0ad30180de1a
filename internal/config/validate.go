package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Validate checks business rules on a loaded configuration and resolves
// derived fields. Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("auth.jwt_secret must be at least 16 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be between 4 and 31 (got %d)", c.Auth.BcryptCost)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range (got %d)", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Email.Enabled() && c.Email.To == "" {
		return fmt.Errorf("email.to is required when email.host is set")
	}

	if c.Notify.Workers <= 0 {
		return fmt.Errorf("notify.workers must be > 0 (got %d)", c.Notify.Workers)
	}
	if c.Notify.QueueSize <= 0 {
		return fmt.Errorf("notify.queue_size must be > 0 (got %d)", c.Notify.QueueSize)
	}

	if c.Progress.TargetDays <= 0 {
		return fmt.Errorf("progress.target_days must be > 0 (got %d)", c.Progress.TargetDays)
	}
	loc, err := time.LoadLocation(c.Progress.Timezone)
	if err != nil {
		return fmt.Errorf("progress.timezone: %w", err)
	}
	c.Progress.Location = loc

	c.Log.Level = strings.ToLower(c.Log.Level)
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Log.Level) {
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}
	c.Log.Format = strings.ToLower(c.Log.Format)
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}

	return nil
}

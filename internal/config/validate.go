package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required when storage.driver is %q", DriverPostgres)
		}
	default:
		return fmt.Errorf("storage.driver must be %q or %q (got %q)", DriverMemory, DriverPostgres, c.Storage.Driver)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}

	if err := c.Game.validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}

	if c.Idempotency.Enabled && c.Idempotency.TTL <= 0 {
		return fmt.Errorf("idempotency.ttl must be > 0 (got %v)", c.Idempotency.TTL)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with / (got %q)", c.Metrics.Path)
	}

	if c.RateLimit.Enabled && c.RateLimit.PerMinute <= 0 {
		return fmt.Errorf("rate_limit.per_minute must be > 0 (got %d)", c.RateLimit.PerMinute)
	}

	return nil
}

func (g *GameConfig) validate() error {
	loc, err := ParseTimezone(g.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	g.Location = loc

	if g.SweepEnabled && g.SweepInterval < time.Second {
		return fmt.Errorf("sweep_interval must be >= 1s (got %v)", g.SweepInterval)
	}
	if g.MaxSessionDuration <= 0 {
		return fmt.Errorf("max_session_duration must be > 0 (got %v)", g.MaxSessionDuration)
	}
	if g.DefaultRecordsLimit <= 0 {
		return fmt.Errorf("default_records_limit must be > 0 (got %d)", g.DefaultRecordsLimit)
	}

	return nil
}

// ParseTimezone resolves an IANA zone name. An empty string means UTC.
func ParseTimezone(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown zone %q: %w", tz, err)
	}
	return loc, nil
}

/*
config.go - Server configuration

PURPOSE:
  Holds everything the server needs to start: listen address and timeouts,
  database driver and DSN, the enrollment window, retry policy and log
  settings. Values come from Default(), are overlaid by an optional YAML
  file, then by command-line flags (see cmd/server).

EXAMPLE FILE:
  server:
    port: 8080
    cors_origins: ["http://localhost:3000"]
  database:
    driver: sqlite3          # or pgx, or memory (no persistence)
    dsn: leave.db
  enrollment:
    start: 2024-11-01
    end: 2024-11-30
  retry:
    max_attempts: 3
    base_delay: 10ms
  log:
    level: info
    format: json             # or console
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/warp/leave-engine/leave"
)

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Enrollment EnrollmentConfig `yaml:"enrollment"`
	Retry      RetryConfig      `yaml:"retry"`
	Log        LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite3 | pgx | memory
	DSN    string `yaml:"dsn"`
}

// EnrollmentConfig bounds the days a request may cover. Dates are YYYY-MM-DD.
type EnrollmentConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | console
}

// Default returns the configuration used when nothing else is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:8080"},
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "leave.db",
		},
		Enrollment: EnrollmentConfig{
			Start: "2024-11-01",
			End:   "2024-11-30",
		},
		Retry: RetryConfig{
			MaxAttempts: leave.DefaultRetryPolicy.MaxAttempts,
			BaseDelay:   leave.DefaultRetryPolicy.BaseDelay,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail late at startup.
func (c Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Database.Driver {
	case "sqlite3", "pgx", "memory":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q: must be sqlite3, pgx or memory", c.Database.Driver))
	}
	if c.Database.DSN == "" && c.Database.Driver != "memory" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if _, err := c.Window(); err != nil {
		errs = append(errs, err)
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry.max_attempts %d: must be at least 1", c.Retry.MaxAttempts))
	}
	if c.Retry.BaseDelay < 0 {
		errs = append(errs, errors.New("retry.base_delay must not be negative"))
	}
	var lvl zapcore.Level
	if err := lvl.Set(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level %q: %w", c.Log.Level, err))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: must be json or console", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Window parses the enrollment dates.
func (c Config) Window() (leave.Window, error) {
	start, err := time.Parse(leave.DateLayout, c.Enrollment.Start)
	if err != nil {
		return leave.Window{}, fmt.Errorf("enrollment.start %q: %w", c.Enrollment.Start, err)
	}
	end, err := time.Parse(leave.DateLayout, c.Enrollment.End)
	if err != nil {
		return leave.Window{}, fmt.Errorf("enrollment.end %q: %w", c.Enrollment.End, err)
	}
	return leave.NewWindow(start, end)
}

// RetryPolicy converts the retry section.
func (c Config) RetryPolicy() leave.RetryPolicy {
	return leave.RetryPolicy{MaxAttempts: c.Retry.MaxAttempts, BaseDelay: c.Retry.BaseDelay}
}

// Addr is the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

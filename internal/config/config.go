package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env       string    `mapstructure:"env" validate:"required"` // local, production, test
	DB        DB        `mapstructure:"database"`
	Study     Study     `mapstructure:"study"`
	Reminders Reminders `mapstructure:"reminders"`
}

// DB contains database-related configuration parameters.
type DB struct {
	Type string `mapstructure:"type" validate:"oneof=sqlite postgres"`
	URL  string `mapstructure:"url"`  // postgres connection string
	Path string `mapstructure:"path"` // sqlite file
}

// Study holds session defaults.
type Study struct {
	SessionSize int `mapstructure:"session_size" validate:"min=1,max=100"`
}

// Reminders configures the due-review reminder job. Hours are UTC.
type Reminders struct {
	StartHour int           `mapstructure:"start_hour" validate:"min=0,max=23"`
	EndHour   int           `mapstructure:"end_hour" validate:"min=0,max=23"`
	Interval  time.Duration `mapstructure:"interval" validate:"min=1s"`
	Workers   int           `mapstructure:"workers" validate:"min=1"`
}

// Defaults for the notification window.
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

var validate = validator.New()

// Load reads configuration from .env, an optional config file and environment variables.
func Load() (*Config, error) {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("env", "local")
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.url", "")
	v.SetDefault("database.path", "data/wordgo.db")
	v.SetDefault("study.session_size", 10)
	v.SetDefault("reminders.start_hour", DefaultNotificationStartHour)
	v.SetDefault("reminders.end_hour", DefaultNotificationEndHour)
	v.SetDefault("reminders.interval", "1h")
	v.SetDefault("reminders.workers", 4)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("database.type", "DB_TYPE")
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("database.path", "DB_PATH")
	_ = v.BindEnv("study.session_size", "SESSION_SIZE")
	_ = v.BindEnv("reminders.start_hour", "NOTIFICATION_START_HOUR")
	_ = v.BindEnv("reminders.end_hour", "NOTIFICATION_END_HOUR")
	_ = v.BindEnv("reminders.interval", "REMINDER_INTERVAL")
	_ = v.BindEnv("reminders.workers", "REMINDER_WORKERS")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges and cross-field requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.DB.Type == "postgres" && c.DB.URL == "" {
		return ErrMissingEnvironmentVariables
	}
	return nil
}

// InNotificationWindow reports whether reminders may be sent at the given hour.
func (r Reminders) InNotificationWindow(hour int) bool {
	if r.StartHour <= r.EndHour {
		return hour >= r.StartHour && hour <= r.EndHour
	}
	// Window wraps past midnight, e.g. 22..6.
	return hour >= r.StartHour || hour <= r.EndHour
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. SPROUT_SERVER_PORT for server.port.
const EnvPrefix = "SPROUT"

// ErrDatabaseURLRequired is returned when the postgres driver is selected
// without a connection URL.
var ErrDatabaseURLRequired = errors.New("database.url is required for the postgres storage driver")

// ErrBadgerPathRequired is returned when on-disk badger storage has no path.
var ErrBadgerPathRequired = errors.New("storage.badger_path is required unless storage.badger_in_memory is set")

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("storage.driver", DriverBadger)
	v.SetDefault("storage.badger_path", "./data/sprout")
	v.SetDefault("storage.badger_in_memory", false)

	v.SetDefault("database.url", "")

	v.SetDefault("lifecycle.stale_after", "24h")
	v.SetDefault("lifecycle.check_interval", "1h")
	v.SetDefault("lifecycle.min_attributes", 3)

	v.SetDefault("reminders.delivery_hour", 9)
	v.SetDefault("reminders.notifications_enabled", true)
	v.SetDefault("reminders.max_pending", 64)
}

// Load configuration from environment variables and optionally a config.yaml
// in the working directory. Environment variables take precedence over values
// from the file. Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate runs the struct tag rules plus the cross-field storage rules.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("config validation failed: %w", ErrDatabaseURLRequired)
		}
	case DriverBadger:
		if !c.Storage.BadgerInMemory && c.Storage.BadgerPath == "" {
			return fmt.Errorf("config validation failed: %w", ErrBadgerPathRequired)
		}
	}

	return nil
}

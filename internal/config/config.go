package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage"   validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Lifecycle LifecycleConfig `mapstructure:"lifecycle" validate:"required"`
	Reminders RemindersConfig `mapstructure:"reminders" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// Storage drivers.
const (
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
)

// StorageConfig selects where profiles and notification history live.
type StorageConfig struct {
	Driver         string `mapstructure:"driver"           validate:"required,oneof=badger postgres"`
	BadgerPath     string `mapstructure:"badger_path"`
	BadgerInMemory bool   `mapstructure:"badger_in_memory"`
}

// DatabaseConfig contains the Postgres connection settings. Only used when
// the storage driver is postgres.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// LifecycleConfig tunes stage progression and the periodic checker.
type LifecycleConfig struct {
	StaleAfter    time.Duration `mapstructure:"stale_after"    validate:"gt=0"`
	CheckInterval time.Duration `mapstructure:"check_interval" validate:"gt=0"`
	MinAttributes int           `mapstructure:"min_attributes" validate:"gte=0,lte=10"`
}

// RemindersConfig tunes the reminder campaign.
type RemindersConfig struct {
	// DeliveryHour is the local hour of day every campaign point fires at
	DeliveryHour         int  `mapstructure:"delivery_hour"         validate:"gte=0,lte=23"`
	NotificationsEnabled bool `mapstructure:"notifications_enabled"`
	// MaxPending caps how many reminders the local registrar keeps armed
	MaxPending int `mapstructure:"max_pending" validate:"gt=0"`
}

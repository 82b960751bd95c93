// Package config loads application settings from the environment
// (SPROUT_ prefix) and an optional config.yaml using viper, then validates
// them with go-playground/validator.
package config

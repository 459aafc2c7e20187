package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete FileBridge configuration.
//
// This structure captures all configurable aspects of the server:
//   - Logging configuration
//   - Metrics exposure
//   - Failed-login throttling
//   - The type catalog backend and custom type definitions
//   - Logins and repositories
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (FILEBRIDGE_*)
//  3. Configuration file (YAML or TOML)
//  4. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Metrics controls the Prometheus endpoint
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Auth controls failed-login throttling
	Auth AuthConfig `mapstructure:"auth" yaml:"auth"`

	// Types selects where custom types are persisted and which are registered at startup
	Types TypesConfig `mapstructure:"types" yaml:"types"`

	// Logins lists the accepted username/password pairs
	Logins []LoginConfig `mapstructure:"logins" yaml:"logins" validate:"dive"`

	// Repositories lists the directory trees served by the server
	Repositories []RepositoryConfig `mapstructure:"repositories" yaml:"repositories" validate:"dive"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output" validate:"required"`

	// Rotation limits file outputs; ignored for stdout and stderr
	Rotation RotationConfig `mapstructure:"rotation" yaml:"rotation,omitempty"`
}

// RotationConfig controls log file rotation.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb" yaml:"max_size_mb,omitempty" validate:"gte=0"`
	MaxAgeDays int  `mapstructure:"max_age_days" yaml:"max_age_days,omitempty" validate:"gte=0"`
	MaxBackups int  `mapstructure:"max_backups" yaml:"max_backups,omitempty" validate:"gte=0"`
	Compress   bool `mapstructure:"compress" yaml:"compress,omitempty"`
}

// MetricsConfig controls the metrics HTTP server.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" yaml:"port" validate:"omitempty,min=1,max=65535"`
}

// AuthConfig tunes failed-login throttling. A zero rate disables it.
type AuthConfig struct {
	MaxFailuresPerSecond float64 `mapstructure:"max_failures_per_second" yaml:"max_failures_per_second" validate:"gte=0"`
	Burst                uint    `mapstructure:"burst" yaml:"burst"`
}

// TypesConfig specifies the type store and the custom types to register.
//
// The Store field determines which backend is used. Only the matching
// type-specific section is read.
type TypesConfig struct {
	// Store specifies which type store implementation to use
	// Valid values: memory, badger
	Store string `mapstructure:"store" yaml:"store" validate:"required,oneof=memory badger"`

	// Badger contains BadgerDB-specific configuration
	// Only used when Store = "badger"
	Badger map[string]any `mapstructure:"badger" yaml:"badger,omitempty"`

	// Definitions are registered at startup unless already present in the store
	Definitions []TypeDefinitionConfig `mapstructure:"definitions" yaml:"definitions,omitempty" validate:"dive"`
}

// TypeDefinitionConfig describes a custom type.
type TypeDefinitionConfig struct {
	ID          string                     `mapstructure:"id" yaml:"id" validate:"required"`
	Parent      string                     `mapstructure:"parent" yaml:"parent" validate:"required"`
	DisplayName string                     `mapstructure:"display_name" yaml:"display_name,omitempty"`
	Description string                     `mapstructure:"description" yaml:"description,omitempty"`
	Properties  []PropertyDefinitionConfig `mapstructure:"properties" yaml:"properties,omitempty" validate:"dive"`
}

// PropertyDefinitionConfig describes a property of a custom type.
type PropertyDefinitionConfig struct {
	ID           string `mapstructure:"id" yaml:"id" validate:"required"`
	QueryName    string `mapstructure:"query_name" yaml:"query_name,omitempty"`
	DisplayName  string `mapstructure:"display_name" yaml:"display_name,omitempty"`
	Type         string `mapstructure:"type" yaml:"type" validate:"required,oneof=string id boolean integer datetime decimal uri html"`
	Multi        bool   `mapstructure:"multi" yaml:"multi,omitempty"`
	Required     bool   `mapstructure:"required" yaml:"required,omitempty"`
	Updatability string `mapstructure:"updatability" yaml:"updatability" validate:"required,oneof=readonly oncreate readwrite"`
}

// LoginConfig is one accepted login. An empty password is allowed.
type LoginConfig struct {
	Username string `mapstructure:"username" yaml:"username" validate:"required"`
	Password string `mapstructure:"password" yaml:"password"`
}

// RepositoryConfig defines a single repository.
type RepositoryConfig struct {
	// ID names the repository
	ID string `mapstructure:"id" yaml:"id" validate:"required"`

	// Root is the directory served by the repository
	Root string `mapstructure:"root" yaml:"root" validate:"required"`

	// ReadWrite lists users allowed to modify the repository
	ReadWrite []string `mapstructure:"read_write" yaml:"read_write,omitempty"`

	// ReadOnly lists users allowed to read it. Applied after ReadWrite.
	ReadOnly []string `mapstructure:"read_only" yaml:"read_only,omitempty"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (FILEBRIDGE_*)
//  2. Configuration file
//  3. Default values
//
// An empty configPath searches the default location.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Example: FILEBRIDGE_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("FILEBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees environment overrides for keys viper knows about
	for _, key := range []string{
		"logging.level", "logging.format", "logging.output",
		"metrics.enabled", "metrics.port",
		"auth.max_failures_per_second", "auth.burst",
		"types.store",
	} {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to the
// current directory if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "filebridge")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "filebridge")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}

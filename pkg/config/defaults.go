package config

import (
	"strings"

	"github.com/marmos91/filebridge/pkg/auth"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values are replaced with defaults; explicit values are preserved.
// Logins and repositories have no defaults.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyMetricsDefaults(&cfg.Metrics)
	applyAuthDefaults(&cfg.Auth)
	applyTypesDefaults(&cfg.Types)
	applyRepositoryDefaults(cfg.Repositories)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// applyAuthDefaults fills in throttling only when both knobs are unset, so
// an explicit max_failures_per_second of 0 with a burst still disables it.
func applyAuthDefaults(cfg *AuthConfig) {
	if cfg.MaxFailuresPerSecond == 0 && cfg.Burst == 0 {
		cfg.MaxFailuresPerSecond = auth.DefaultFailuresPerSecond
		cfg.Burst = auth.DefaultFailureBurst
	}
}

func applyTypesDefaults(cfg *TypesConfig) {
	if cfg.Store == "" {
		cfg.Store = "memory"
	}
	cfg.Store = strings.ToLower(cfg.Store)

	if cfg.Badger == nil {
		cfg.Badger = make(map[string]any)
	}

	for i := range cfg.Definitions {
		for j := range cfg.Definitions[i].Properties {
			prop := &cfg.Definitions[i].Properties[j]
			if prop.Type == "" {
				prop.Type = "string"
			}
			if prop.Updatability == "" {
				prop.Updatability = "readwrite"
			}
			prop.Type = strings.ToLower(prop.Type)
			prop.Updatability = strings.ToLower(prop.Updatability)
		}
	}
}

func applyRepositoryDefaults(repos []RepositoryConfig) {
	for i := range repos {
		repo := &repos[i]
		repo.ID = strings.TrimSpace(repo.ID)
		if repo.ReadWrite == nil {
			repo.ReadWrite = []string{}
		}
		if repo.ReadOnly == nil {
			repo.ReadOnly = []string{}
		}
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is used to generate sample configuration files and in tests.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Logins: []LoginConfig{
			{Username: "test", Password: "test"},
		},
		Repositories: []RepositoryConfig{
			{
				ID:        "test",
				Root:      "/srv/filebridge",
				ReadWrite: []string{"test"},
			},
		},
	}

	ApplyDefaults(cfg)
	return cfg
}

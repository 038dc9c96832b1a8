// Package config defines the reporter configuration and how it is loaded.
//
// Conventions:
//   - A config file holds one section per deployment environment
//     (development, production, local); only the selected section is used.
//   - Provide New(ctx) to build a Config with defaults; Load layers the file
//     section and SCORESTATS_* env vars on top.
//   - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"os"
	"strings"
)

// Section names recognised in the config file.
const (
	SectionDevelopment = "development"
	SectionProduction  = "production"
	SectionLocal       = "local"
)

// Environment defaults and prefixes.
const (
	EnvAppEnv     = "APP_ENV"
	EnvConfigPath = "SCORESTATS_CONFIG"
	envPrefix     = "SCORESTATS_"

	defaultEnvironment = "local"
	defaultConfigPath  = "config.json"
)

// Config contains process configuration for one environment section.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Database holds the data store connection parameters.
	Database Database `koanf:"database"`

	// Metrics configures the optional Pushgateway export.
	Metrics Metrics `koanf:"metrics"`
}

// Database describes how to reach the data store.
type Database struct {
	// Driver is one of mysql, postgres or sqlite.
	Driver   string `koanf:"driver"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	// Name is the database (schema) name, or the file path for sqlite.
	Name    string `koanf:"database"`
	SSLMode string `koanf:"sslmode"`

	// DSN, when set, is passed to the driver verbatim and the fields above are ignored.
	DSN string `koanf:"dsn"`

	// Params are extra driver parameters appended to the generated DSN.
	// Keys of the database object that no field above claims land here too.
	Params map[string]string `koanf:"params"`

	// ShowsTable and ScoreMapTable override the default table names.
	ShowsTable    string `koanf:"shows_table"`
	ScoreMapTable string `koanf:"score_map_table"`
}

// Metrics configures the Prometheus Pushgateway export.
type Metrics struct {
	// PushgatewayURL is left empty to disable pushing.
	PushgatewayURL string `koanf:"pushgateway_url"`
	Job            string `koanf:"job"`
}

// New returns a Config holding defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Database: Database{
			Driver: "mysql",
			Host:   "localhost",
		},
		Metrics: Metrics{
			Job: "scorestats",
		},
	}
}

// Section maps an environment indicator to the config section it selects.
// Matching is by prefix: develop* selects development, prod* selects
// production, anything else selects local.
func Section(environment string) string {
	switch {
	case strings.HasPrefix(environment, "develop"):
		return SectionDevelopment
	case strings.HasPrefix(environment, "prod"):
		return SectionProduction
	default:
		return SectionLocal
	}
}

// Environment returns the normalised APP_ENV value, "local" when unset.
func Environment() string {
	v, ok := os.LookupEnv(EnvAppEnv)
	if !ok {
		v = defaultEnvironment
	}
	return strings.ToLower(strings.TrimSpace(v))
}

// Path returns the config file location: SCORESTATS_CONFIG or config.json.
func Path() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	return defaultConfigPath
}

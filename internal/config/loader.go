package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load reads the config file at Path() and returns the section selected by
// the environment indicator. See LoadFile.
func Load(ctx context.Context, environment string) (*Config, error) {
	return LoadFile(ctx, Path(), environment)
}

// LoadFile builds a Config from one section of the file at path.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. the selected section of the file (JSON or YAML by extension)
//  3. env (prefix SCORESTATS_, "__" separates nested keys)
//
// A missing section yields an error wrapping ErrMissingSection.
func LoadFile(ctx context.Context, path, environment string) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}

	name := Section(environment)
	if !k.Exists(name) {
		return nil, fmt.Errorf("%w: %q not found in %s", ErrMissingSection, name, path)
	}
	section := k.Cut(name)

	// SCORESTATS_LOG_LEVEL -> log_level, SCORESTATS_DATABASE__PASSWORD -> database.password
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := section.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *New(ctx)
	if err := section.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: section %q: %w", ErrLoadConfig, name, err)
	}
	collectParams(section.Cut("database"), &cfg.Database)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports whether the config can be used to open a connection.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Driver) == "" {
		return fmt.Errorf("%w: database.driver must not be empty", ErrInvalidConfig)
	}
	if c.Database.DSN == "" && c.Database.Name == "" {
		return fmt.Errorf("%w: database.database or database.dsn must be set", ErrInvalidConfig)
	}
	if c.Database.Port < 0 {
		return fmt.Errorf("%w: database.port must not be negative", ErrInvalidConfig)
	}
	return nil
}

// databaseKeys are the database object keys claimed by Database fields.
var databaseKeys = map[string]struct{}{
	"driver": {}, "host": {}, "port": {}, "user": {}, "password": {},
	"database": {}, "sslmode": {}, "dsn": {}, "params": {},
	"shows_table": {}, "score_map_table": {},
}

// collectParams moves scalar keys of the database object that no field
// claims into db.Params. Entries already in params take precedence.
func collectParams(k *koanf.Koanf, db *Database) {
	for key, v := range k.Raw() {
		if _, claimed := databaseKeys[key]; claimed {
			continue
		}
		switch v.(type) {
		case map[string]any, []any, nil:
			continue
		}
		if _, set := db.Params[key]; set {
			continue
		}
		if db.Params == nil {
			db.Params = make(map[string]string)
		}
		db.Params[key] = fmt.Sprint(v)
	}
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return json.Parser()
	}
}

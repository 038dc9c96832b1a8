package repository

import (
	"regexp"

	"github.com/okian/scorestats/pkg/logger"
	"github.com/okian/scorestats/pkg/metrics"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Option applies a configuration option to the ScoreRepository.
type Option func(*ScoreRepository)

// WithShowsTable overrides the show table name. Names that are not plain
// (optionally schema-qualified) identifiers are ignored.
func WithShowsTable(name string) Option {
	return func(r *ScoreRepository) {
		if identifier.MatchString(name) {
			r.showsTable = name
		}
	}
}

// WithScoreMapTable overrides the panelist score map table name.
func WithScoreMapTable(name string) Option {
	return func(r *ScoreRepository) {
		if identifier.MatchString(name) {
			r.scoreMapTable = name
		}
	}
}

// WithLogger sets the logger used for query diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(r *ScoreRepository) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics sets the metrics manager queries are recorded in.
func WithMetrics(m *metrics.Manager) Option {
	return func(r *ScoreRepository) {
		if m != nil {
			r.metrics = m
		}
	}
}

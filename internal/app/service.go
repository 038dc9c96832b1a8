// Package service runs one score report: fetch, compute and render.
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/okian/scorestats/internal/adapters/repository"
	"github.com/okian/scorestats/internal/domain/model"
	"github.com/okian/scorestats/internal/domain/stats"
	"github.com/okian/scorestats/internal/report"
	"github.com/okian/scorestats/pkg/logger"
	"github.com/okian/scorestats/pkg/metrics"
)

// Run stages used to label failures.
const (
	StageQuery  = "query"
	StageStats  = "stats"
	StageOutput = "output"
)

// Service wires the score repository to the statistics calculator and the
// report renderer. A Service is single-use and not safe for concurrent Run calls.
type Service struct {
	store   repository.Store
	out     io.Writer
	runID   string
	logger  logger.Logger
	metrics *metrics.Manager
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the score source. Required.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithOutput sets where the reports are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.out = w
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics manager run results are recorded in.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.runID = id
		}
	}
}

// New constructs a Service. A random run id is generated unless WithRunID is given.
func New(opts ...Option) *Service {
	s := &Service{
		out:     os.Stdout,
		runID:   uuid.NewString(),
		logger:  logger.Nop(),
		metrics: metrics.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.String("run_id", s.runID))
	return s
}

// RunID identifies this run in logs and pushed metrics.
func (s *Service) RunID() string { return s.runID }

// Run prints the summary report, then the score spread report.
// A report whose query returns no rows is replaced by a notice; any
// repository failure aborts the run, possibly after the first report.
func (s *Service) Run(ctx context.Context) (err error) {
	if s.store == nil {
		return fmt.Errorf("service: no score store configured")
	}

	start := time.Now()
	defer func() {
		s.metrics.RecordRun(time.Since(start), err == nil)
	}()

	r := report.New(s.out)

	scores, ok, err := s.store.AllScores(ctx)
	if err != nil {
		s.metrics.RecordRunError(StageQuery)
		return fmt.Errorf("retrieve all scores: %w", err)
	}
	s.metrics.UpdateScoresLoaded(len(scores))

	if ok {
		summary, err := stats.Calculate(scores)
		if err != nil {
			s.metrics.RecordRunError(StageStats)
			return fmt.Errorf("calculate stats: %w", err)
		}
		s.recordSummary(summary)
		r.PrintStats(summary)
	} else {
		s.logger.Warn(ctx, "no qualifying scores; skipping statistics")
		r.PrintNoScores(report.TitleStats)
	}

	entries, grouped, err := s.store.GroupedScores(ctx)
	if err != nil {
		s.metrics.RecordRunError(StageQuery)
		return fmt.Errorf("retrieve grouped scores: %w", err)
	}
	s.metrics.UpdateSpreadEntries(len(entries))

	if grouped {
		r.PrintScoreSpread(entries)
	} else {
		s.logger.Warn(ctx, "no qualifying scores; skipping score spread")
		r.PrintNoScores(report.TitleSpread)
	}

	// The two queries are not in one transaction, so the data may move between them.
	if !slices.Equal(entries, stats.Spread(scores)) {
		s.logger.Warn(ctx, "score spread does not match raw scores",
			logger.Int("raw", len(scores)),
			logger.Int("spread", model.SpreadCount(entries)),
		)
	}

	if err := r.Err(); err != nil {
		s.metrics.RecordRunError(StageOutput)
		return fmt.Errorf("write report: %w", err)
	}

	s.logger.Info(ctx, "report complete",
		logger.Int("scores", len(scores)),
		logger.Int("distinct", len(entries)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (s *Service) recordSummary(summary model.Summary) {
	s.metrics.UpdateStatistic("count", float64(summary.Count))
	s.metrics.UpdateStatistic("minimum", float64(summary.Minimum))
	s.metrics.UpdateStatistic("maximum", float64(summary.Maximum))
	s.metrics.UpdateStatistic("median", float64(summary.Median))
	s.metrics.UpdateStatistic("mean", summary.Mean)
	s.metrics.UpdateStatistic("standard_deviation", summary.StandardDeviation)
	s.metrics.UpdateStatistic("total", float64(summary.Total))
}

// Package repository reads panelist scores from the relational store.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/okian/scorestats/internal/domain/model"
	"github.com/okian/scorestats/pkg/logger"
	"github.com/okian/scorestats/pkg/metrics"
)

// Query names used in logs and metrics.
const (
	QueryAllScores     = "all_scores"
	QueryGroupedScores = "grouped_scores"
)

const (
	defaultShowsTable    = "ww_shows"
	defaultScoreMapTable = "ww_showpnlmap"
)

// Querier is the subset of *sql.DB the repository needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Store reads qualifying scores: those from shows that are neither Best Of
// nor repeats, with a recorded score. A false ok means no rows qualified.
type Store interface {
	// AllScores returns every qualifying score in ascending order.
	AllScores(ctx context.Context) (scores []model.Score, ok bool, err error)
	// GroupedScores returns each distinct qualifying score with its count, ascending.
	GroupedScores(ctx context.Context) (entries []model.SpreadEntry, ok bool, err error)
}

// ScoreRepository implements Store over database/sql.
type ScoreRepository struct {
	db            Querier
	showsTable    string
	scoreMapTable string
	logger        logger.Logger
	metrics       *metrics.Manager
}

var _ Store = (*ScoreRepository)(nil)

// New creates a ScoreRepository on an already open connection.
func New(db Querier, opts ...Option) *ScoreRepository {
	r := &ScoreRepository{
		db:            db,
		showsTable:    defaultShowsTable,
		scoreMapTable: defaultScoreMapTable,
		logger:        logger.Nop(),
		metrics:       metrics.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AllScores implements Store.
func (r *ScoreRepository) AllScores(ctx context.Context) ([]model.Score, bool, error) {
	q := fmt.Sprintf(`SELECT pm.panelistscore FROM %s pm
JOIN %s s ON s.showid = pm.showid
WHERE s.bestof = FALSE AND s.repeatshowid IS NULL
AND pm.panelistscore IS NOT NULL
ORDER BY pm.panelistscore ASC`, r.scoreMapTable, r.showsTable)

	var scores []model.Score
	err := r.query(ctx, QueryAllScores, q, func(rows *sql.Rows) error {
		var s model.Score
		if err := rows.Scan(&s); err != nil {
			return err
		}
		scores = append(scores, s)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return scores, len(scores) > 0, nil
}

// GroupedScores implements Store.
func (r *ScoreRepository) GroupedScores(ctx context.Context) ([]model.SpreadEntry, bool, error) {
	q := fmt.Sprintf(`SELECT pm.panelistscore, COUNT(pm.panelistscore) FROM %s pm
JOIN %s s ON s.showid = pm.showid
WHERE pm.panelistscore IS NOT NULL
AND s.bestof = FALSE AND s.repeatshowid IS NULL
GROUP BY pm.panelistscore
ORDER BY pm.panelistscore ASC`, r.scoreMapTable, r.showsTable)

	var entries []model.SpreadEntry
	err := r.query(ctx, QueryGroupedScores, q, func(rows *sql.Rows) error {
		var e model.SpreadEntry
		if err := rows.Scan(&e.Score, &e.Count); err != nil {
			return err
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return entries, len(entries) > 0, nil
}

// query runs q and calls scan once per row, recording latency and outcome.
func (r *ScoreRepository) query(ctx context.Context, name, q string, scan func(*sql.Rows) error) error {
	start := time.Now()
	n, err := r.run(ctx, q, scan)
	elapsed := time.Since(start)

	outcome := metrics.OutcomeOK
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
	case n == 0:
		outcome = metrics.OutcomeEmpty
	}
	r.metrics.RecordQuery(name, outcome, n, elapsed)

	if err != nil {
		r.logger.Error(ctx, "score query failed", logger.String("query", name), logger.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrQuery, name, err)
	}
	r.logger.Debug(ctx, "score query done",
		logger.String("query", name),
		logger.Int("rows", n),
		logger.Duration("elapsed", elapsed),
	)
	return nil
}

func (r *ScoreRepository) run(ctx context.Context, q string, scan func(*sql.Rows) error) (int, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		if err := scan(rows); err != nil {
			return n, err
		}
		n++
	}
	return n, rows.Err()
}

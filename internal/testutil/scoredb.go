// Package testutil provides a seeded sqlite score database for package tests.
package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // sqlite driver
)

// Schema mirrors the two tables the score queries read.
const Schema = `
CREATE TABLE ww_shows (
	showid INTEGER PRIMARY KEY,
	showdate TEXT NOT NULL,
	bestof BOOLEAN NOT NULL DEFAULT 0,
	repeatshowid INTEGER NULL
);
CREATE TABLE ww_showpnlmap (
	showpnlmapid INTEGER PRIMARY KEY AUTOINCREMENT,
	showid INTEGER NOT NULL REFERENCES ww_shows(showid),
	panelistid INTEGER NOT NULL,
	panelistscore INTEGER NULL
);`

// Show is one ww_shows row.
type Show struct {
	ID       int
	Date     string
	BestOf   bool
	RepeatOf *int
}

// PanelistScore is one ww_showpnlmap row; a nil Score is stored as NULL.
type PanelistScore struct {
	ShowID     int
	PanelistID int
	Score      *int
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// OpenScoreDB opens a sqlite database at dsn with the score schema applied.
// Use ":memory:" for a private in-memory database.
func OpenScoreDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// An in-memory database lives on one connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(Schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

// Seed inserts shows and panelist scores.
func Seed(t *testing.T, db *sql.DB, shows []Show, scores []PanelistScore) {
	t.Helper()
	for _, s := range shows {
		if _, err := db.Exec(`INSERT INTO ww_shows (showid, showdate, bestof, repeatshowid) VALUES (?, ?, ?, ?)`,
			s.ID, s.Date, s.BestOf, s.RepeatOf); err != nil {
			t.Fatalf("insert show %d: %v", s.ID, err)
		}
	}
	for _, p := range scores {
		if _, err := db.Exec(`INSERT INTO ww_showpnlmap (showid, panelistid, panelistscore) VALUES (?, ?, ?)`,
			p.ShowID, p.PanelistID, p.Score); err != nil {
			t.Fatalf("insert score for show %d: %v", p.ShowID, err)
		}
	}
}

// SeedStandard loads a fixture whose qualifying scores are 2, 4, 4, 6, 8.
// It also holds a Best Of show, a repeat show and a NULL score, none of
// which qualify.
func SeedStandard(t *testing.T, db *sql.DB) {
	t.Helper()
	Seed(t, db,
		[]Show{
			{ID: 1, Date: "2018-01-06"},
			{ID: 2, Date: "2018-01-13"},
			{ID: 3, Date: "2018-01-20", BestOf: true},
			{ID: 4, Date: "2018-01-27", RepeatOf: IntPtr(1)},
		},
		[]PanelistScore{
			{ShowID: 1, PanelistID: 10, Score: IntPtr(4)},
			{ShowID: 1, PanelistID: 11, Score: IntPtr(8)},
			{ShowID: 1, PanelistID: 12, Score: IntPtr(2)},
			{ShowID: 2, PanelistID: 10, Score: IntPtr(6)},
			{ShowID: 2, PanelistID: 11, Score: IntPtr(4)},
			{ShowID: 2, PanelistID: 12, Score: nil},
			{ShowID: 3, PanelistID: 10, Score: IntPtr(20)},
			{ShowID: 3, PanelistID: 11, Score: IntPtr(1)},
			{ShowID: 4, PanelistID: 12, Score: IntPtr(15)},
		},
	)
}

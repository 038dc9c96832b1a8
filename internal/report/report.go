// Package report renders score statistics as plain text.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/scorestats/internal/domain/model"
)

// Report titles.
const (
	TitleStats  = "Panelist Scores"
	TitleSpread = "Score Spread"
)

// Renderer writes the summary and score spread reports to w.
// The first write error is kept and later writes are skipped.
type Renderer struct {
	w   io.Writer
	err error
}

// New returns a Renderer writing to w.
func New(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// PrintStats writes the labelled summary statistics.
func (r *Renderer) PrintStats(s model.Summary) {
	r.printf("\n")
	r.printf("  %s\n", TitleStats)
	r.printf("    Count:      %d\n", s.Count)
	r.printf("    Minimum:    %d\n", s.Minimum)
	r.printf("    Maximum:    %d\n", s.Maximum)
	r.printf("    Median:     %d\n", s.Median)
	r.printf("    Mean:       %s\n", formatDecimal(s.Mean))
	r.printf("    Std Dev:    %s\n", formatDecimal(s.StandardDeviation))
	r.printf("    Total:      %d\n", s.Total)
	r.printf("\n\n\n")
}

// PrintScoreSpread writes a score/count table in the order given.
func (r *Renderer) PrintScoreSpread(entries []model.SpreadEntry) {
	r.printf("  %s\n\n", TitleSpread)
	r.printf("    Score       Count\n")
	for _, e := range entries {
		r.printf("  %7d%12d\n", e.Score, e.Count)
	}
	r.printf("\n")
}

// PrintNoScores writes the notice shown in place of a report when no
// score qualified.
func (r *Renderer) PrintNoScores(title string) {
	r.printf("\n  %s\n    No qualifying scores found.\n\n", title)
}

// Err returns the first write error, if any.
func (r *Renderer) Err() error {
	return r.err
}

func (r *Renderer) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

// formatDecimal prints the shortest exact form, keeping one decimal for
// whole numbers (2 -> "2.0").
func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

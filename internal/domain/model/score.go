// Package model contains domain models passed between layers.
package model

// Score is the points a panelist earned in one segment of one show.
type Score = int

// SpreadEntry is one row of the score spread: how many times a score value occurs.
type SpreadEntry struct {
	Score Score
	Count int
}

// Summary holds descriptive statistics over a list of scores.
// Mean and StandardDeviation are rounded to 4 decimal places.
type Summary struct {
	Count             int
	Minimum           Score
	Maximum           Score
	Median            Score
	Mean              float64
	StandardDeviation float64 // population, divisor is Count
	Total             int
}

// SpreadCount sums the counts of all entries.
func SpreadCount(entries []SpreadEntry) int {
	n := 0
	for _, e := range entries {
		n += e.Count
	}
	return n
}

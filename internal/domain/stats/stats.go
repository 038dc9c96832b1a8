// Package stats reduces panelist scores to summary statistics and spreads.
package stats

import (
	"errors"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/scorestats/internal/domain/model"
)

// ErrEmptyScores is returned when statistics are requested for no scores.
var ErrEmptyScores = errors.New("no scores to summarise")

// decimalPlaces is the precision of Mean and StandardDeviation.
const decimalPlaces = 4

// Calculate computes the summary statistics of scores. The input is not
// modified and its order does not matter. An empty input returns ErrEmptyScores.
func Calculate(scores []model.Score) (model.Summary, error) {
	if len(scores) == 0 {
		return model.Summary{}, ErrEmptyScores
	}

	sorted := slices.Clone(scores)
	slices.Sort(sorted)

	values := make([]float64, len(sorted))
	total := 0
	for i, s := range sorted {
		values[i] = float64(s)
		total += s
	}
	mean, stddev := stat.PopMeanStdDev(values, nil)

	return model.Summary{
		Count:             len(sorted),
		Minimum:           sorted[0],
		Maximum:           sorted[len(sorted)-1],
		Median:            median(sorted),
		Mean:              round(mean, decimalPlaces),
		StandardDeviation: round(stddev, decimalPlaces),
		Total:             total,
	}, nil
}

// Spread groups scores by value, ascending, with the number of occurrences.
func Spread(scores []model.Score) []model.SpreadEntry {
	counts := make(map[model.Score]int, len(scores))
	for _, s := range scores {
		counts[s]++
	}
	values := make([]model.Score, 0, len(counts))
	for s := range counts {
		values = append(values, s)
	}
	slices.Sort(values)

	entries := make([]model.SpreadEntry, len(values))
	for i, s := range values {
		entries[i] = model.SpreadEntry{Score: s, Count: counts[s]}
	}
	return entries
}

// median of a sorted, non-empty slice. For even lengths the two middle
// values are averaged and truncated toward zero.
func median(sorted []model.Score) model.Score {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// round to places decimals, ties to even.
func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.RoundToEven(v*p) / p
}

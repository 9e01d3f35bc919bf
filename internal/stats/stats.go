// Package stats computes per-category aggregates and trends over a user's
// notation history. Everything here is a pure function of the fetched
// records, so identical inputs always produce identical results.
package stats

import (
	mstats "github.com/montanaflynn/stats"

	"github.com/SstealzZ/SynapseOS/internal/store"
)

const (
	TrendUp           = "up"
	TrendDown         = "down"
	TrendStable       = "stable"
	TrendInsufficient = "insufficient_data"

	DefaultWindow = 7

	// Mean shifts smaller than this between the older and recent windows
	// count as stable.
	stableBand = 0.5
)

// categories maps canonical category names to their score on a notation.
// Output keys use the canonical name even where the wire alias differs
// (three_things_note vs 3_things_note).
var categories = []struct {
	name  string
	score func(store.Notation) float64
}{
	{"spiritual_note", func(n store.Notation) float64 { return float64(n.SpiritualNote) }},
	{"physical_note", func(n store.Notation) float64 { return float64(n.PhysicalNote) }},
	{"mental_note", func(n store.Notation) float64 { return float64(n.MentalNote) }},
	{"business_note", func(n store.Notation) float64 { return float64(n.BusinessNote) }},
	{"social_note", func(n store.Notation) float64 { return float64(n.SocialNote) }},
	{"three_things_note", func(n store.Notation) float64 { return float64(n.ThreeThingsNote) }},
	{"russian_note", func(n store.Notation) float64 { return float64(n.RussianNote) }},
}

type CategoryStats struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Trend   string  `json:"trend"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Result struct {
	TotalEntries int                      `json:"total_entries"`
	DateRange    DateRange                `json:"date_range"`
	Stats        map[string]CategoryStats `json:"stats"`
}

// Compute aggregates the given notations, which must be sorted ascending by
// date so the trend windows line up chronologically.
func Compute(entries []store.Notation, window int, dateRange DateRange) Result {
	result := Result{
		TotalEntries: len(entries),
		DateRange:    dateRange,
		Stats:        make(map[string]CategoryStats, len(categories)),
	}
	if len(entries) == 0 {
		return result
	}

	for _, category := range categories {
		values := make(mstats.Float64Data, len(entries))
		for i, entry := range entries {
			values[i] = category.score(entry)
		}
		average, _ := mstats.Mean(values)
		minimum, _ := mstats.Min(values)
		maximum, _ := mstats.Max(values)
		result.Stats[category.name] = CategoryStats{
			Average: average,
			Min:     minimum,
			Max:     maximum,
			Trend:   Trend(values, window),
		}
	}
	return result
}

// Trend compares the mean of the last window values against the window
// immediately before it. With fewer than 2*window points the older window
// falls back to the first window values, so the two ranges may overlap;
// that mirrors how the series has always been read and is intentional.
func Trend(values []float64, window int) string {
	if window <= 0 {
		window = DefaultWindow
	}
	if len(values) < window {
		return TrendInsufficient
	}

	recent := values[len(values)-window:]
	older := values[:window]
	if len(values) >= 2*window {
		older = values[len(values)-2*window : len(values)-window]
	}

	recentAvg, _ := mstats.Mean(mstats.Float64Data(recent))
	olderAvg, _ := mstats.Mean(mstats.Float64Data(older))

	diff := recentAvg - olderAvg
	switch {
	case diff < stableBand && diff > -stableBand:
		return TrendStable
	case diff > 0:
		return TrendUp
	default:
		return TrendDown
	}
}

// Package aggregate pools per-frame scores into a single video score.
package aggregate

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// ErrInvalidMode indicates an unparseable aggregation mode.
var ErrInvalidMode = errors.New("invalid metric mode")

// Mode selects how per-frame scores are pooled.
type Mode struct {
	// Percentile is 0 for the arithmetic mean, otherwise in (0, 100].
	Percentile float64
}

// Mean is the arithmetic mean mode.
var Mean = Mode{}

// ParseMode parses "mean" or "pN" (e.g. "p5", "p12.5").
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "mean" {
		return Mean, nil
	}
	if !strings.HasPrefix(s, "p") {
		return Mode{}, fmt.Errorf("%w: %q, expected 'mean' or 'pN'", ErrInvalidMode, s)
	}

	p, err := strconv.ParseFloat(s[1:], 64)
	if err != nil {
		return Mode{}, fmt.Errorf("%w: %q: %v", ErrInvalidMode, s, err)
	}
	if !(p > 0 && p <= 100) {
		return Mode{}, fmt.Errorf("%w: percentile must be in (0, 100], got %v", ErrInvalidMode, p)
	}
	return Mode{Percentile: p}, nil
}

// String returns the flag form of the mode.
func (m Mode) String() string {
	if m.Percentile == 0 {
		return "mean"
	}
	return "p" + strconv.FormatFloat(m.Percentile, 'f', -1, 64)
}

// Pool reduces values according to the mode. An empty slice pools to 0.
// +Inf entries (identical frames) propagate: the mean of any set containing
// +Inf is +Inf.
func Pool(values []float64, m Mode) float64 {
	if len(values) == 0 {
		return 0
	}
	if m.Percentile == 0 {
		return stat.Mean(values, nil)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(m.Percentile/100, stat.Empirical, sorted, nil)
}

// Stats summarizes per-frame scores for display.
type Stats struct {
	Count     int
	Infinite  int
	FiniteMin float64
	FiniteMax float64
	// StdDev is the standard deviation of the finite values.
	StdDev float64
}

// Summarize computes Stats over values. Min, max and deviation only
// consider finite entries and are zero when there are none.
func Summarize(values []float64) Stats {
	s := Stats{Count: len(values)}

	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			if math.IsInf(v, 1) {
				s.Infinite++
			}
			continue
		}
		finite = append(finite, v)
	}
	if len(finite) == 0 {
		return s
	}

	s.FiniteMin, s.FiniteMax = finite[0], finite[0]
	for _, v := range finite[1:] {
		s.FiniteMin = math.Min(s.FiniteMin, v)
		s.FiniteMax = math.Max(s.FiniteMax, v)
	}
	if len(finite) > 1 {
		s.StdDev = stat.StdDev(finite, nil)
	}
	return s
}

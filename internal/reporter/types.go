// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// ComparisonSummary names the two inputs of a run.
type ComparisonSummary struct {
	GTVideo   string
	PredVideo string
}

// SourceSummary describes an opened input video.
type SourceSummary struct {
	Role     string
	Path     string
	Width    int
	Height   int
	FPS      float64
	Duration float64
	Codec    string
}

// SamplingPlan describes the common sampling domain of both inputs.
type SamplingPlan struct {
	FPS      float64
	Duration float64
	Samples  int
	Width    int
	Height   int
	Mode     string
}

// SampleProgress is emitted once per compared frame pair.
type SampleProgress struct {
	// Index is zero-based.
	Index int
	Total int
	Time  float64
	PSNR  float64
}

// Percent returns completion in [0, 100].
func (p SampleProgress) Percent() float64 {
	if p.Total <= 0 {
		return 100
	}
	pct := float64(p.Index+1) / float64(p.Total) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// ScoreSummary contains the final score and per-frame statistics.
type ScoreSummary struct {
	PSNR      float64
	Frames    int
	Mode      string
	Infinite  int
	FiniteMin float64
	FiniteMax float64
	StdDev    float64
	Elapsed   time.Duration
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

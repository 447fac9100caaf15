package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JSONReporter outputs NDJSON events. Every event carries the run id so
// interleaved streams from concurrent runs can be separated.
type JSONReporter struct {
	writer             io.Writer
	runID              string
	mu                 sync.Mutex
	lastProgressBucket int
	lastProgressTime   time.Time
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer:             w,
		runID:              uuid.NewString(),
		lastProgressBucket: -1,
	}
}

// RunID returns the identifier attached to every event.
func (r *JSONReporter) RunID() string {
	return r.runID
}

func (r *JSONReporter) timestamp() int64 {
	return time.Now().Unix()
}

func (r *JSONReporter) write(v map[string]interface{}) {
	v["run_id"] = r.runID
	v["timestamp"] = r.timestamp()

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

// jsonDecibels keeps non-finite scores encodable.
func jsonDecibels(db float64) interface{} {
	switch {
	case math.IsInf(db, 1):
		return "Infinity"
	case math.IsInf(db, -1):
		return "-Infinity"
	case math.IsNaN(db):
		return "NaN"
	}
	return db
}

func (r *JSONReporter) Comparing(summary ComparisonSummary) {
	r.write(map[string]interface{}{
		"type":       "comparing",
		"gt_video":   summary.GTVideo,
		"pred_video": summary.PredVideo,
	})
}

func (r *JSONReporter) SourceOpened(summary SourceSummary) {
	r.write(map[string]interface{}{
		"type":             "source_opened",
		"role":             summary.Role,
		"path":             summary.Path,
		"width":            summary.Width,
		"height":           summary.Height,
		"fps":              summary.FPS,
		"duration_seconds": summary.Duration,
		"codec":            summary.Codec,
	})
}

func (r *JSONReporter) SamplingStarted(plan SamplingPlan) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.lastProgressTime = time.Time{}
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":             "sampling_started",
		"fps":              plan.FPS,
		"duration_seconds": plan.Duration,
		"samples":          plan.Samples,
		"width":            plan.Width,
		"height":           plan.Height,
		"mode":             plan.Mode,
	})
}

func (r *JSONReporter) SamplingProgress(progress SampleProgress) {
	const progressBucketSize = 1
	const minInterval = 5 * time.Second

	percent := progress.Percent()
	bucket := int(percent) / progressBucketSize
	now := time.Now()

	r.mu.Lock()
	intervalElapsed := r.lastProgressTime.IsZero() || now.Sub(r.lastProgressTime) >= minInterval
	shouldEmit := bucket > r.lastProgressBucket || intervalElapsed || progress.Index+1 >= progress.Total

	if !shouldEmit {
		r.mu.Unlock()
		return
	}

	if bucket > r.lastProgressBucket {
		r.lastProgressBucket = bucket
	}
	r.lastProgressTime = now
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":           "sampling_progress",
		"current_sample": progress.Index + 1,
		"total_samples":  progress.Total,
		"percent":        percent,
		"time_seconds":   progress.Time,
		"psnr":           jsonDecibels(progress.PSNR),
	})
}

func (r *JSONReporter) ScoreComputed(summary ScoreSummary) {
	r.write(map[string]interface{}{
		"type":            "score_computed",
		"psnr":            jsonDecibels(summary.PSNR),
		"frames":          summary.Frames,
		"mode":            summary.Mode,
		"infinite_frames": summary.Infinite,
		"finite_min":      summary.FiniteMin,
		"finite_max":      summary.FiniteMax,
		"finite_std_dev":  summary.StdDev,
		"elapsed_seconds": summary.Elapsed.Seconds(),
	})
}

func (r *JSONReporter) ResultSaved(path string) {
	r.write(map[string]interface{}{
		"type": "result_saved",
		"path": path,
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]interface{}{
		"type":    "warning",
		"message": message,
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]interface{}{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
	})
}

func (r *JSONReporter) OperationFailed(message string) {
	r.write(map[string]interface{}{
		"type":    "operation_failed",
		"message": message,
	})
}

func (r *JSONReporter) Verbose(message string) {
	r.write(map[string]interface{}{
		"type":    "verbose",
		"message": message,
	})
}

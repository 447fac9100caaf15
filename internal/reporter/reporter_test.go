package reporter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func newTestTerminal(verbose bool) (*TerminalReporter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	r := NewTerminalReporterWithWriters(&out, &errOut, TerminalOptions{Verbose: verbose})
	return r, &out, &errOut
}

func TestTerminalComparingAndScore(t *testing.T) {
	r, out, _ := newTestTerminal(false)

	r.Comparing(ComparisonSummary{GTVideo: "gt.mp4", PredVideo: "pred.mp4"})
	r.ScoreComputed(ScoreSummary{PSNR: 31.123456, Frames: 10, Mode: "mean"})
	r.ResultSaved("out/result.json")

	rule := strings.Repeat("-", 30)
	want := "Comparing:\nRef: gt.mp4\nPred: pred.mp4\n" +
		rule + "\nVideo PSNR: 31.1235 dB\n" + rule + "\n" +
		"Result saved to out/result.json\n"
	assert.Equal(t, want, out.String())
}

func TestTerminalInfiniteScore(t *testing.T) {
	r, out, _ := newTestTerminal(false)
	r.ScoreComputed(ScoreSummary{PSNR: math.Inf(1), Frames: 3, Infinite: 3})
	assert.Contains(t, out.String(), "Video PSNR: inf dB\n")
}

func TestTerminalVerboseStats(t *testing.T) {
	r, out, _ := newTestTerminal(true)
	r.ScoreComputed(ScoreSummary{
		PSNR: 30, Frames: 4, Mode: "p5", Infinite: 1,
		FiniteMin: 28, FiniteMax: 33.5, StdDev: 1.5, Elapsed: 65 * time.Second,
	})
	r.Verbose("closing sources")

	s := out.String()
	assert.Contains(t, s, "Identical:")
	assert.Contains(t, s, "28.0000 .. 33.5000 dB")
	assert.Contains(t, s, "00:01:05")
	assert.Contains(t, s, "closing sources")
}

func TestTerminalQuietHidesVerbose(t *testing.T) {
	r, out, _ := newTestTerminal(false)
	r.Verbose("hidden")
	r.SourceOpened(SourceSummary{Role: "reference", Path: "/v/gt.mp4", Width: 64, Height: 64, FPS: 30})
	r.Error(ReporterError{Title: "Error processing", Message: "Error processing gt.mp4: boom", Context: "/v/gt.mp4"})
	r.OperationFailed("Failed to calculate PSNR.")

	assert.Equal(t, "Error processing gt.mp4: boom\nFailed to calculate PSNR.\n", out.String())
}

func TestTerminalErrorSuggestion(t *testing.T) {
	r, out, _ := newTestTerminal(false)
	r.Error(ReporterError{
		Title:      "Error processing",
		Message:    "Error processing gt.mp4: failed to execute ffprobe",
		Suggestion: "Check that ffprobe is installed",
	})

	assert.Equal(t, "Error processing gt.mp4: failed to execute ffprobe\n  Suggestion: Check that ffprobe is installed\n", out.String())
}

func TestTerminalProgressWritesToErrOut(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewTerminalReporterWithWriters(&out, &errOut, TerminalOptions{Progress: true})

	r.SamplingStarted(SamplingPlan{FPS: 24, Duration: 1, Samples: 4, Width: 256, Height: 256, Mode: "mean"})
	for i := 0; i < 4; i++ {
		r.SamplingProgress(SampleProgress{Index: i, Total: 4, Time: float64(i) / 24, PSNR: 30})
	}
	r.ScoreComputed(ScoreSummary{PSNR: 30, Frames: 4})

	assert.NotEmpty(t, errOut.String())
	assert.NotContains(t, out.String(), "Sampling [")
}

func decodeEvents(t *testing.T, data []byte) []map[string]interface{} {
	t.Helper()
	var events []map[string]interface{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var ev map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev))
		events = append(events, ev)
	}
	return events
}

func TestJSONReporterEvents(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)

	r.Comparing(ComparisonSummary{GTVideo: "gt.mp4", PredVideo: "pred.mp4"})
	r.SamplingStarted(SamplingPlan{FPS: 24, Duration: 1.5, Samples: 36, Width: 256, Height: 256, Mode: "mean"})
	r.ScoreComputed(ScoreSummary{PSNR: math.Inf(1), Frames: 36, Infinite: 36})
	r.ResultSaved("r.json")

	events := decodeEvents(t, buf.Bytes())
	require.Len(t, events, 4)

	types := []string{"comparing", "sampling_started", "score_computed", "result_saved"}
	for i, ev := range events {
		assert.Equal(t, types[i], ev["type"])
		assert.Equal(t, r.RunID(), ev["run_id"])
		assert.Contains(t, ev, "timestamp")
	}
	assert.Equal(t, "Infinity", events[2]["psnr"])
	assert.Equal(t, float64(36), events[1]["samples"])
}

func TestJSONReporterThrottlesProgress(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)

	r.SamplingStarted(SamplingPlan{Samples: 1000})
	buf.Reset()
	for i := 0; i < 1000; i++ {
		r.SamplingProgress(SampleProgress{Index: i, Total: 1000, PSNR: 40})
	}

	events := decodeEvents(t, buf.Bytes())
	assert.LessOrEqual(t, len(events), 101)
	last := events[len(events)-1]
	assert.Equal(t, float64(1000), last["current_sample"])
	assert.Equal(t, float64(100), last["percent"])
}

func TestJSONReporterDistinctRunIDs(t *testing.T) {
	a := NewJSONReporterWithWriter(&bytes.Buffer{})
	b := NewJSONReporterWithWriter(&bytes.Buffer{})
	assert.NotEqual(t, a.RunID(), b.RunID())
}

type recordingReporter struct {
	NullReporter
	events []string
}

func (r *recordingReporter) Warning(message string)         { r.events = append(r.events, "warn:"+message) }
func (r *recordingReporter) OperationFailed(message string) { r.events = append(r.events, "fail:"+message) }

func TestCompositeReporterFansOut(t *testing.T) {
	a, b := &recordingReporter{}, &recordingReporter{}
	c := NewCompositeReporter(a, nil, b)

	c.Warning("no frames")
	c.OperationFailed("x")
	c.Comparing(ComparisonSummary{})

	want := []string{"warn:no frames", "fail:x"}
	assert.Equal(t, want, a.events)
	assert.Equal(t, want, b.events)
}

func TestSampleProgressPercent(t *testing.T) {
	assert.Equal(t, 50.0, SampleProgress{Index: 1, Total: 4}.Percent())
	assert.Equal(t, 100.0, SampleProgress{Index: 0, Total: 0}.Percent())
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

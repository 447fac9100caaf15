// Package evaluate samples two videos on a common time grid and pools the
// per-frame PSNR into a single score.
package evaluate

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"time"

	"github.com/five82/vpsnr/internal/aggregate"
	"github.com/five82/vpsnr/internal/errors"
	"github.com/five82/vpsnr/internal/ffmpeg"
	"github.com/five82/vpsnr/internal/ffprobe"
	"github.com/five82/vpsnr/internal/frame"
	"github.com/five82/vpsnr/internal/logging"
	"github.com/five82/vpsnr/internal/psnr"
	"github.com/five82/vpsnr/internal/reporter"
	"github.com/five82/vpsnr/internal/util"
)

// Default comparison resolution.
const (
	DefaultWidth  = 256
	DefaultHeight = 256
)

// Source serves decoded frames of one video by time.
type Source interface {
	FPS() float64
	Duration() float64
	// Frame returns the frame displayed at t, for 0 <= t < Duration().
	Frame(t float64) (*frame.RGB, error)
	Close() error
}

// Opener opens a Source for path.
type Opener func(ctx context.Context, path string) (Source, error)

// FFmpegOpener returns an Opener backed by ffprobe and an ffmpeg pipe.
func FFmpegOpener(opts ffmpeg.Options) Opener {
	return func(ctx context.Context, path string) (Source, error) {
		src, err := ffmpeg.Open(ctx, path, opts)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
}

// Options controls comparison resolution and pooling.
type Options struct {
	Width  int
	Height int
	Mode   aggregate.Mode
}

// DefaultOptions returns 256x256 mean pooling.
func DefaultOptions() Options {
	return Options{Width: DefaultWidth, Height: DefaultHeight, Mode: aggregate.Mean}
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// Result contains the outcome of one evaluation.
type Result struct {
	Success bool
	// PSNR is the pooled score in dB. +Inf when every sampled pair is identical.
	PSNR   float64
	Frames int
	// FailedFile is the input that could not be processed.
	FailedFile string
	Error      error
	Stats      aggregate.Stats
	Elapsed    time.Duration
}

// SampleTimes returns k/fps for k = 0, 1, ... while the time is below duration.
// Non-positive or NaN inputs yield no samples.
func SampleTimes(fps, duration float64) []float64 {
	if !(fps > 0) || !(duration > 0) || math.IsInf(fps, 0) || math.IsInf(duration, 0) {
		return nil
	}

	var times []float64
	for k := 0; ; k++ {
		t := float64(k) / fps
		if t >= duration {
			break
		}
		times = append(times, t)
	}
	return times
}

// Run compares gtPath against predPath. Both sources are closed before Run
// returns. Failures are reported through rep and returned as an unsuccessful
// Result; no partial score is produced.
func Run(ctx context.Context, gtPath, predPath string, open Opener, opts Options, rep reporter.Reporter) Result {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	opts = opts.withDefaults()
	start := time.Now()

	values, err := sample(ctx, gtPath, predPath, open, opts, rep)
	if err != nil {
		return failure(err, gtPath, start, rep)
	}

	if len(values) == 0 {
		rep.Warning("no frames were sampled; reporting a score of 0")
		logging.Warn("no frames sampled", "gt", gtPath, "pred", predPath)
	}

	score := aggregate.Pool(values, opts.Mode)
	stats := aggregate.Summarize(values)
	elapsed := time.Since(start)

	logging.Info("psnr computed",
		"gt", gtPath,
		"pred", predPath,
		"psnr", util.FormatDecibels(score),
		"frames", len(values),
		"mode", opts.Mode.String(),
		"elapsed", elapsed)

	rep.ScoreComputed(reporter.ScoreSummary{
		PSNR:      score,
		Frames:    len(values),
		Mode:      opts.Mode.String(),
		Infinite:  stats.Infinite,
		FiniteMin: stats.FiniteMin,
		FiniteMax: stats.FiniteMax,
		StdDev:    stats.StdDev,
		Elapsed:   elapsed,
	})

	return Result{
		Success: true,
		PSNR:    score,
		Frames:  len(values),
		Stats:   stats,
		Elapsed: elapsed,
	}
}

func sample(ctx context.Context, gtPath, predPath string, open Opener, opts Options, rep reporter.Reporter) ([]float64, error) {
	gt, err := openSource(ctx, open, gtPath, "reference", rep)
	if err != nil {
		return nil, err
	}
	defer closeSource(gt, gtPath)

	pred, err := openSource(ctx, open, predPath, "prediction", rep)
	if err != nil {
		return nil, err
	}
	defer closeSource(pred, predPath)

	fps := math.Min(gt.FPS(), pred.FPS())
	duration := math.Min(gt.Duration(), pred.Duration())
	times := SampleTimes(fps, duration)

	rep.SamplingStarted(reporter.SamplingPlan{
		FPS:      fps,
		Duration: duration,
		Samples:  len(times),
		Width:    opts.Width,
		Height:   opts.Height,
		Mode:     opts.Mode.String(),
	})
	logging.Debug("sampling plan", "fps", fps, "duration", duration, "samples", len(times))
	if gt.FPS() != pred.FPS() || gt.Duration() != pred.Duration() {
		rep.Verbose(fmt.Sprintf("Sources differ (reference %s fps, %.3fs; prediction %s fps, %.3fs); sampling the common range",
			util.FormatFPS(gt.FPS()), gt.Duration(), util.FormatFPS(pred.FPS()), pred.Duration()))
	}

	values := make([]float64, 0, len(times))
	for i, t := range times {
		if ctx.Err() != nil {
			return nil, errors.NewCancelledError()
		}

		a, err := resizedFrame(gt, gtPath, t, opts)
		if err != nil {
			return nil, err
		}
		b, err := resizedFrame(pred, predPath, t, opts)
		if err != nil {
			return nil, err
		}

		v, err := psnr.Compute(a, b)
		if err != nil {
			return nil, fmt.Errorf("frame at %.3fs: %w", t, err)
		}
		values = append(values, v)

		rep.SamplingProgress(reporter.SampleProgress{Index: i, Total: len(times), Time: t, PSNR: v})
	}
	return values, nil
}

func openSource(ctx context.Context, open Opener, path, role string, rep reporter.Reporter) (Source, error) {
	src, err := open(ctx, path)
	if err != nil {
		return nil, attachPath(err, path)
	}

	summary := reporter.SourceSummary{Role: role, Path: path, FPS: src.FPS(), Duration: src.Duration()}
	if d, ok := src.(interface{ Info() ffprobe.StreamInfo }); ok {
		info := d.Info()
		summary.Width, summary.Height, summary.Codec = info.Width, info.Height, info.CodecName
	}
	rep.SourceOpened(summary)
	return src, nil
}

func closeSource(src Source, path string) {
	if err := src.Close(); err != nil {
		logging.Debug("failed to close source", "file", path, "error", err)
	}
}

func resizedFrame(src Source, path string, t float64, opts Options) (*frame.RGB, error) {
	f, err := src.Frame(t)
	if err != nil {
		return nil, attachPath(err, path)
	}
	out, err := frame.Resize(f, opts.Width, opts.Height)
	if err != nil {
		return nil, errors.NewDecodeError(path, err)
	}
	return out, nil
}

// attachPath makes sure err names the input it came from.
func attachPath(err error, path string) error {
	if errors.IsCancelled(err) || errors.PathOf(err) != "" {
		return err
	}
	return errors.NewDecodeError(path, err)
}

func failure(err error, fallbackPath string, start time.Time, rep reporter.Reporter) Result {
	if errors.IsCancelled(err) {
		logging.Warn("evaluation cancelled")
		rep.Error(reporter.ReporterError{Title: "Cancelled", Message: "Operation cancelled"})
		return Result{Error: err, Elapsed: time.Since(start)}
	}

	path := errors.PathOf(err)
	if path == "" {
		path = fallbackPath
	}
	name := util.GetFilename(path)
	cause := describe(err)

	logging.Error("error processing video", "file", name, "error", cause)
	rep.Error(reporter.ReporterError{
		Title:      "Error processing",
		Message:    fmt.Sprintf("Error processing %s: %s", name, cause),
		Context:    path,
		Suggestion: suggestion(err),
	})

	return Result{FailedFile: path, Error: err, Elapsed: time.Since(start)}
}

// describe drops the decode wrapper, whose text only repeats the file name.
func describe(err error) string {
	var coreErr *errors.CoreError
	if stderrors.As(err, &coreErr) && coreErr.Kind == errors.KindDecode && coreErr.Underlying != nil {
		return coreErr.Underlying.Error()
	}
	return err.Error()
}

// suggestion points at the tool settings when ffmpeg or ffprobe could not be started.
func suggestion(err error) string {
	var cmdErr *errors.CommandError
	if stderrors.As(err, &cmdErr) && cmdErr.Kind == errors.CommandStart {
		return fmt.Sprintf("Check that %s is installed, or set VPSNR_FFMPEG and VPSNR_FFPROBE", cmdErr.Command)
	}
	return ""
}

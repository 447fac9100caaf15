// Package vpsnr computes the Peak Signal-to-Noise Ratio between a reference
// video and a predicted video.
//
// Both videos are sampled on a common time grid (the lower of the two frame
// rates, up to the shorter duration), each frame pair is resized to a fixed
// comparison resolution, and the per-frame PSNR values are pooled into one
// score. Decoding is delegated to the ffmpeg and ffprobe binaries.
//
// Basic usage:
//
//	result, err := vpsnr.Compare(ctx, "gt.mp4", "pred.mp4",
//	    vpsnr.WithSize(256, 256),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Video PSNR: %.4f dB over %d frames\n", result.PSNR, result.Frames)
package vpsnr

import (
	"context"

	"github.com/five82/vpsnr/internal/config"
	"github.com/five82/vpsnr/internal/errors"
	"github.com/five82/vpsnr/internal/evaluate"
	"github.com/five82/vpsnr/internal/ffmpeg"
	"github.com/five82/vpsnr/internal/output"
	"github.com/five82/vpsnr/internal/reporter"
	"github.com/five82/vpsnr/internal/util"
)

// Reporter receives progress and result events.
type Reporter = reporter.Reporter

// Evaluator compares video pairs with a fixed configuration.
type Evaluator struct {
	config   *config.Config
	reporter Reporter
	opener   evaluate.Opener
}

// Result contains the outcome of one comparison.
type Result struct {
	GTVideo   string
	PredVideo string
	// PSNR is the pooled score in dB. It is +Inf when every sampled frame
	// pair is identical and 0 when no frames could be sampled.
	PSNR   float64
	Frames int
	// InfiniteFrames counts identical frame pairs.
	InfiniteFrames int
	FiniteMin      float64
	FiniteMax      float64
}

// Option configures the evaluator.
type Option func(*Evaluator)

// New creates a new Evaluator with the given options.
func New(opts ...Option) (*Evaluator, error) {
	// Placeholder paths satisfy validation; real paths are supplied per call.
	e := &Evaluator{config: config.NewConfig("-", "-")}

	for _, opt := range opts {
		opt(e)
	}

	if err := e.config.Validate(); err != nil {
		return nil, err
	}

	if e.reporter == nil {
		e.reporter = reporter.NullReporter{}
	}
	if e.opener == nil {
		e.opener = evaluate.FFmpegOpener(ffmpeg.Options{
			FFmpegPath:  e.config.FFmpegPath,
			FFprobePath: e.config.FFprobePath,
		})
	}

	return e, nil
}

// WithSize sets the comparison resolution frames are resized to.
func WithSize(width, height int) Option {
	return func(e *Evaluator) {
		e.config.Width = width
		e.config.Height = height
	}
}

// WithMetricMode sets per-frame pooling: "mean" or "pN" for the N-th percentile.
func WithMetricMode(mode string) Option {
	return func(e *Evaluator) {
		e.config.MetricMode = mode
	}
}

// WithFFmpegPath sets the ffmpeg binary.
func WithFFmpegPath(path string) Option {
	return func(e *Evaluator) {
		e.config.FFmpegPath = path
	}
}

// WithFFprobePath sets the ffprobe binary.
func WithFFprobePath(path string) Option {
	return func(e *Evaluator) {
		e.config.FFprobePath = path
	}
}

// WithReporter sends progress events to rep.
func WithReporter(rep Reporter) Option {
	return func(e *Evaluator) {
		e.reporter = rep
	}
}

// withOpener replaces the decoder, for tests.
func withOpener(open evaluate.Opener) Option {
	return func(e *Evaluator) {
		e.opener = open
	}
}

// Compare evaluates pred against gt with a one-off Evaluator.
func Compare(ctx context.Context, gt, pred string, opts ...Option) (*Result, error) {
	e, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return e.Compare(ctx, gt, pred)
}

// Compare evaluates pred against gt. Missing inputs are reported before any
// decoding starts, the reference first.
func (e *Evaluator) Compare(ctx context.Context, gt, pred string) (*Result, error) {
	if !util.PathExists(gt) {
		return nil, errors.NewMissingInputError("GT video", gt)
	}
	if !util.PathExists(pred) {
		return nil, errors.NewMissingInputError("Pred video", pred)
	}

	mode, err := e.config.Mode()
	if err != nil {
		return nil, err
	}

	res := evaluate.Run(ctx, gt, pred, e.opener, evaluate.Options{
		Width:  e.config.Width,
		Height: e.config.Height,
		Mode:   mode,
	}, e.reporter)
	if !res.Success {
		return nil, res.Error
	}

	return &Result{
		GTVideo:        gt,
		PredVideo:      pred,
		PSNR:           res.PSNR,
		Frames:         res.Frames,
		InfiniteFrames: res.Stats.Infinite,
		FiniteMin:      res.Stats.FiniteMin,
		FiniteMax:      res.Stats.FiniteMax,
	}, nil
}

// Save writes r as an indented JSON record. Infinite scores are written as
// the string "Infinity".
func (r *Result) Save(path string) error {
	return output.WriteFile(path, output.NewRecord(r.GTVideo, r.PredVideo, r.PSNR))
}

// IsMissingInput reports whether err means an input path does not exist.
func IsMissingInput(err error) bool {
	return errors.IsMissingInput(err)
}

// FailedFile returns the input path a comparison error refers to, if any.
func FailedFile(err error) string {
	return errors.PathOf(err)
}

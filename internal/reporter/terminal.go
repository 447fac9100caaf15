package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/five82/vpsnr/internal/util"
)

// ruleWidth is the width of the separator printed around the score.
const ruleWidth = 30

// TerminalOptions controls optional terminal output.
type TerminalOptions struct {
	// Progress shows a sampling progress bar on the error writer.
	Progress bool
	// Verbose prints source details, per-run statistics and Verbose messages.
	Verbose bool
}

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu       sync.Mutex
	out      io.Writer
	errOut   io.Writer
	opts     TerminalOptions
	progress *progressbar.ProgressBar
	cyan     *color.Color
	green    *color.Color
	yellow   *color.Color
	red      *color.Color
	faint    *color.Color
	bold     *color.Color
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewTerminalReporterWithWriters creates a terminal reporter with custom writers.
func NewTerminalReporterWithWriters(out, errOut io.Writer, opts TerminalOptions) *TerminalReporter {
	return &TerminalReporter{
		out:    out,
		errOut: errOut,
		opts:   opts,
		cyan:   color.New(color.FgCyan, color.Bold),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow, color.Bold),
		red:    color.New(color.FgRed, color.Bold),
		faint:  color.New(color.Faint),
		bold:   color.New(color.Bold),
	}
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) Comparing(summary ComparisonSummary) {
	_, _ = fmt.Fprintln(r.out, "Comparing:")
	_, _ = fmt.Fprintf(r.out, "Ref: %s\n", summary.GTVideo)
	_, _ = fmt.Fprintf(r.out, "Pred: %s\n", summary.PredVideo)
}

func (r *TerminalReporter) SourceOpened(summary SourceSummary) {
	if !r.opts.Verbose {
		return
	}
	_, _ = r.cyan.Fprintln(r.out, strings.ToUpper(summary.Role))
	const w = 11
	r.printLabel(w, "File:", util.GetFilename(summary.Path))
	r.printLabel(w, "Resolution:", fmt.Sprintf("%dx%d", summary.Width, summary.Height))
	r.printLabel(w, "Frame rate:", util.FormatFPS(summary.FPS)+" fps")
	r.printLabel(w, "Duration:", fmt.Sprintf("%s (%.3fs)", util.FormatDuration(summary.Duration), summary.Duration))
	if summary.Codec != "" {
		r.printLabel(w, "Codec:", summary.Codec)
	}
}

func (r *TerminalReporter) SamplingStarted(plan SamplingPlan) {
	r.finishProgress()

	if r.opts.Verbose {
		_, _ = r.cyan.Fprintln(r.out, "SAMPLING")
		const w = 11
		r.printLabel(w, "Frame rate:", util.FormatFPS(plan.FPS)+" fps")
		r.printLabel(w, "Duration:", fmt.Sprintf("%.3fs", plan.Duration))
		r.printLabel(w, "Samples:", fmt.Sprint(plan.Samples))
		r.printLabel(w, "Size:", fmt.Sprintf("%dx%d", plan.Width, plan.Height))
		r.printLabel(w, "Pooling:", plan.Mode)
	}

	if !r.opts.Progress || plan.Samples <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = progressbar.NewOptions(
		plan.Samples,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(r.errOut),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowCount(),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Sampling [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) SamplingProgress(progress SampleProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	_ = r.progress.Set(progress.Index + 1)
	r.progress.Describe(fmt.Sprintf("t=%.3fs, %s dB", progress.Time, util.FormatDecibels(progress.PSNR)))
}

func (r *TerminalReporter) ScoreComputed(summary ScoreSummary) {
	r.finishProgress()

	rule := strings.Repeat("-", ruleWidth)
	_, _ = fmt.Fprintln(r.out, rule)
	_, _ = fmt.Fprintf(r.out, "Video PSNR: %s dB\n", r.bold.Sprint(util.FormatDecibels(summary.PSNR)))
	_, _ = fmt.Fprintln(r.out, rule)

	if !r.opts.Verbose {
		return
	}

	const w = 16
	r.printLabel(w, "Frames:", fmt.Sprint(summary.Frames))
	r.printLabel(w, "Pooling:", summary.Mode)
	r.printLabel(w, "Identical:", fmt.Sprint(summary.Infinite))
	if summary.Frames > summary.Infinite {
		r.printLabel(w, "Finite range:", fmt.Sprintf("%s .. %s dB",
			util.FormatDecibels(summary.FiniteMin), util.FormatDecibels(summary.FiniteMax)))
		r.printLabel(w, "Finite std dev:", util.FormatDecibels(summary.StdDev))
	}
	r.printLabel(w, "Time:", util.FormatDurationFromSecs(int64(summary.Elapsed.Seconds())))
}

func (r *TerminalReporter) ResultSaved(path string) {
	_, _ = fmt.Fprintf(r.out, "Result saved to %s\n", r.green.Sprint(path))
}

func (r *TerminalReporter) Warning(message string) {
	_, _ = r.yellow.Fprintf(r.out, "WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	r.finishProgress()

	_, _ = r.red.Fprintln(r.out, err.Message)
	if err.Context != "" && r.opts.Verbose {
		_, _ = fmt.Fprintf(r.out, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(r.out, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) OperationFailed(message string) {
	r.finishProgress()
	_, _ = fmt.Fprintln(r.out, message)
}

func (r *TerminalReporter) Verbose(message string) {
	if !r.opts.Verbose {
		return
	}
	_, _ = r.faint.Fprintf(r.out, "  %s\n", message)
}

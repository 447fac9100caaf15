// Package main provides the CLI entry point for vpsnr.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/five82/vpsnr/internal/config"
	"github.com/five82/vpsnr/internal/errors"
	"github.com/five82/vpsnr/internal/evaluate"
	"github.com/five82/vpsnr/internal/ffmpeg"
	"github.com/five82/vpsnr/internal/logging"
	"github.com/five82/vpsnr/internal/output"
	"github.com/five82/vpsnr/internal/reporter"
	"github.com/five82/vpsnr/internal/util"
)

const (
	appName    = "vpsnr"
	appVersion = "0.1.0"
)

// failedMessage is printed when no score could be computed.
const failedMessage = "Failed to calculate PSNR."

func main() {
	sigs := append([]os.Signal{os.Interrupt}, extraSignals...)
	ctx, cancel := signal.NotifyContext(context.Background(), sigs...)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// compareArgs holds the parsed command line.
type compareArgs struct {
	gtVideo    string
	predVideo  string
	outputFile string
	width      int
	height     int
	metricMode string
	verbose    bool
	logFile    string
	noProgress bool
	eventsFile string
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	code := 0
	root := newRootCmd(stdout, stderr, &code)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return code
}

func newRootCmd(stdout, stderr io.Writer, code *int) *cobra.Command {
	var ca compareArgs

	root := &cobra.Command{
		Use:   appName + " --gt_video <PATH> --pred_video <PATH> [--output_file <PATH>]",
		Short: "Compute the PSNR between a reference video and a predicted video",
		Long: `Compute the Peak Signal-to-Noise Ratio between a reference ("ground truth")
video and a predicted video.

Both videos are sampled at the lower of their frame rates up to the shorter
duration. Each frame pair is resized to the comparison resolution and the
per-frame PSNR values are pooled into a single score in dB.

Environment:
  VPSNR_FFMPEG       ffmpeg binary (default: ffmpeg)
  VPSNR_FFPROBE      ffprobe binary (default: ffprobe)
  VPSNR_WIDTH        comparison width (default: 256)
  VPSNR_HEIGHT       comparison height (default: 256)
  VPSNR_METRIC_MODE  pooling mode (default: mean)
  VPSNR_LOG_FILE     log file path`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := buildConfig(ca, cmd.Flags())
			if err != nil {
				return err
			}
			*code = executeCompare(cmd.Context(), cfg, stdout, stderr)
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	fs := root.Flags()
	fs.StringVar(&ca.gtVideo, "gt_video", "", "path to the reference video (required)")
	fs.StringVar(&ca.predVideo, "pred_video", "", "path to the predicted video (required)")
	fs.StringVar(&ca.outputFile, "output_file", "", "write the result as JSON to this path")
	fs.IntVar(&ca.width, "width", config.DefaultWidth, "comparison width in pixels")
	fs.IntVar(&ca.height, "height", config.DefaultHeight, "comparison height in pixels")
	fs.StringVar(&ca.metricMode, "metric-mode", config.DefaultMetricMode, `per-frame pooling: "mean" or "pN" (N-th percentile)`)
	fs.BoolVarP(&ca.verbose, "verbose", "v", false, "enable debug logging and per-run statistics")
	fs.StringVar(&ca.logFile, "log-file", "", "write a structured log to this path")
	fs.BoolVar(&ca.noProgress, "no-progress", false, "disable the progress bar")
	fs.StringVar(&ca.eventsFile, "events", "", "write NDJSON progress events to this path")
	_ = root.MarkFlagRequired("gt_video")
	_ = root.MarkFlagRequired("pred_video")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(stdout, "%s version %s\n", appName, appVersion)
		},
	})

	return root
}

// buildConfig layers defaults, VPSNR_* variables and explicitly set flags.
func buildConfig(ca compareArgs, flags *pflag.FlagSet) (*config.Config, error) {
	env, err := config.LoadEnvironment()
	if err != nil {
		return nil, errors.NewConfigError("invalid environment", err)
	}

	cfg := config.NewConfig(ca.gtVideo, ca.predVideo)
	cfg.ApplyEnvironment(env)

	cfg.OutputFile = ca.outputFile
	cfg.Verbose = ca.verbose
	cfg.NoProgress = ca.noProgress
	cfg.EventsFile = ca.eventsFile
	if flags.Changed("width") {
		cfg.Width = ca.width
	}
	if flags.Changed("height") {
		cfg.Height = ca.height
	}
	if flags.Changed("metric-mode") {
		cfg.MetricMode = ca.metricMode
	}
	if flags.Changed("log-file") {
		cfg.LogFile = ca.logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigError("invalid configuration", err)
	}
	return cfg, nil
}

func executeCompare(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) int {
	logger, err := logging.Setup(cfg.LogFile, cfg.Verbose)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: failed to setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Close() }()
	logging.SetGlobal(logger)
	defer logging.SetGlobal(nil)

	var rep reporter.Reporter = reporter.NewTerminalReporterWithWriters(stdout, stderr, reporter.TerminalOptions{
		Progress: !cfg.NoProgress && reporter.IsTerminal(stderr),
		Verbose:  cfg.Verbose,
	})

	if cfg.EventsFile != "" {
		if err := util.EnsureParentDirectory(cfg.EventsFile); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: failed to create events directory: %v\n", err)
			return 1
		}
		events, err := os.Create(cfg.EventsFile)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: failed to create events file: %v\n", err)
			return 1
		}
		defer func() { _ = events.Close() }()
		rep = reporter.NewCompositeReporter(rep, reporter.NewJSONReporterWithWriter(events))
	}

	if missing := checkInputs(cfg); missing != nil {
		logging.Error("missing input", "path", missing.Path)
		rep.Error(reporter.ReporterError{Title: "Missing input", Message: "Error: " + missing.Message})
		return 1
	}

	mode, err := cfg.Mode()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logging.Info("starting comparison",
		"gt", cfg.GTVideo,
		"pred", cfg.PredVideo,
		"width", cfg.Width,
		"height", cfg.Height,
		"mode", mode.String(),
		"ffmpeg", cfg.FFmpegPath,
		"ffprobe", cfg.FFprobePath)

	rep.Comparing(reporter.ComparisonSummary{GTVideo: cfg.GTVideo, PredVideo: cfg.PredVideo})

	open := evaluate.FFmpegOpener(ffmpeg.Options{FFmpegPath: cfg.FFmpegPath, FFprobePath: cfg.FFprobePath})
	res := evaluate.Run(ctx, cfg.GTVideo, cfg.PredVideo, open, evaluate.Options{
		Width:  cfg.Width,
		Height: cfg.Height,
		Mode:   mode,
	}, rep)

	if !res.Success {
		rep.OperationFailed(failedMessage)
		return 1
	}

	if cfg.OutputFile != "" {
		record := output.NewRecord(cfg.GTVideo, cfg.PredVideo, res.PSNR)
		if err := output.WriteFile(cfg.OutputFile, record); err != nil {
			logging.Error("failed to save result", "path", cfg.OutputFile, "error", err)
			rep.Error(reporter.ReporterError{Title: "Save failed", Message: fmt.Sprintf("Error: %v", err)})
			return 1
		}
		rep.ResultSaved(cfg.OutputFile)
	}

	return 0
}

// checkInputs verifies both inputs exist, the reference first.
func checkInputs(cfg *config.Config) *errors.CoreError {
	if !util.PathExists(cfg.GTVideo) {
		return errors.NewMissingInputError("GT video", cfg.GTVideo)
	}
	if !util.PathExists(cfg.PredVideo) {
		return errors.NewMissingInputError("Pred video", cfg.PredVideo)
	}
	return nil
}

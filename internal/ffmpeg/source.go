package ffmpeg

import (
	"context"
	"fmt"

	"github.com/five82/vpsnr/internal/errors"
	"github.com/five82/vpsnr/internal/ffprobe"
	"github.com/five82/vpsnr/internal/frame"
	"github.com/five82/vpsnr/internal/logging"
)

// Options configures the external binaries used by a Source.
type Options struct {
	FFmpegPath  string
	FFprobePath string
}

// Source serves frames of one video by time.
type Source struct {
	path  string
	info  *ffprobe.StreamInfo
	ctx   context.Context
	start startFunc

	proc   process
	reader *frameReader
	closed bool
}

// Open probes path and starts a decoder for its first video stream.
// The decoder is bound to ctx.
func Open(ctx context.Context, path string, opts Options) (*Source, error) {
	info, err := ffprobe.NewProber(opts.FFprobePath).Probe(ctx, path)
	if err != nil {
		return nil, errors.NewDecodeError(path, err)
	}

	binary := opts.FFmpegPath
	if binary == "" {
		binary = DefaultBinary
	}

	logging.Debug("opened video",
		"file", path,
		"width", info.Width,
		"height", info.Height,
		"fps", info.FPS,
		"duration", info.Duration,
		"codec", info.CodecName)

	return newSource(ctx, path, info, func(ctx context.Context) (process, error) {
		proc, err := startExec(ctx, binary, path)
		if err != nil {
			return nil, err
		}
		return proc, nil
	})
}

func newSource(ctx context.Context, path string, info *ffprobe.StreamInfo, start startFunc) (*Source, error) {
	s := &Source{path: path, info: info, ctx: ctx, start: start}
	if err := s.restart(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the input path.
func (s *Source) Path() string { return s.path }

// Info returns the probed stream properties.
func (s *Source) Info() ffprobe.StreamInfo { return *s.info }

// FPS returns the average frame rate.
func (s *Source) FPS() float64 { return s.info.FPS }

// Duration returns the duration in seconds.
func (s *Source) Duration() float64 { return s.info.Duration }

// Frame returns the frame displayed at time t. Requests past the last decoded
// frame return the last frame. The returned frame is reused by the next call.
func (s *Source) Frame(t float64) (*frame.RGB, error) {
	if s.closed {
		return nil, errors.NewDecodeError(s.path, fmt.Errorf("source is closed"))
	}
	if err := s.ctx.Err(); err != nil {
		return nil, errors.NewCancelledError()
	}

	idx := frameIndex(t, s.info.FPS)
	if idx < s.reader.index {
		logging.Debug("restarting decoder for backward seek", "file", s.path, "from", s.reader.index, "to", idx)
		_ = s.proc.Kill()
		if err := s.restart(); err != nil {
			return nil, err
		}
	}

	if err := s.reader.advanceTo(idx); err != nil {
		return nil, errors.NewDecodeError(s.path, err)
	}

	f := s.reader.current()
	if !s.reader.eof {
		return f, nil
	}

	// The last frame is only held once the decoder has exited cleanly.
	err := s.proc.Wait()
	if s.ctx.Err() != nil {
		return nil, errors.NewCancelledError()
	}
	if err == nil && f == nil {
		err = fmt.Errorf("no frames decoded")
	}
	if err != nil {
		return nil, errors.NewDecodeError(s.path, err)
	}
	return f, nil
}

// Close stops the decoder. It is safe to call more than once.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.proc != nil {
		return s.proc.Kill()
	}
	return nil
}

func (s *Source) restart() error {
	proc, err := s.start(s.ctx)
	if err != nil {
		return errors.NewDecodeError(s.path, err)
	}
	s.proc = proc
	s.reader = newFrameReader(proc.Stdout(), s.info.Width, s.info.Height)
	return nil
}

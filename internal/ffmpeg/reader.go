package ffmpeg

import (
	"fmt"
	"io"
	"math"

	"github.com/five82/vpsnr/internal/frame"
)

// frameEpsilon absorbs float error when converting a sample time to a frame index.
const frameEpsilon = 1e-5

// frameIndex returns the index of the frame displayed at time t.
func frameIndex(t, fps float64) int {
	if t <= 0 || fps <= 0 {
		return 0
	}
	return int(math.Floor(fps*t + frameEpsilon))
}

// frameReader slices a rawvideo RGB24 byte stream into frames.
// After EOF the last complete frame is held indefinitely.
type frameReader struct {
	r     io.Reader
	cur   *frame.RGB
	next  *frame.RGB
	index int
	eof   bool
}

func newFrameReader(r io.Reader, width, height int) *frameReader {
	return &frameReader{
		r:     r,
		cur:   frame.New(width, height),
		next:  frame.New(width, height),
		index: -1,
	}
}

// advanceTo reads forward until the frame at idx is current or the stream ends.
// It never moves backward.
func (fr *frameReader) advanceTo(idx int) error {
	for fr.index < idx && !fr.eof {
		_, err := io.ReadFull(fr.r, fr.next.Pix)
		switch err {
		case nil:
			fr.cur, fr.next = fr.next, fr.cur
			fr.index++
		case io.EOF, io.ErrUnexpectedEOF:
			fr.eof = true
		default:
			return fmt.Errorf("read frame %d: %w", fr.index+1, err)
		}
	}
	return nil
}

// current returns the held frame, or nil before the first frame was read.
func (fr *frameReader) current() *frame.RGB {
	if fr.index < 0 {
		return nil
	}
	return fr.cur
}

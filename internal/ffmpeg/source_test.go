package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verrors "github.com/five82/vpsnr/internal/errors"
	"github.com/five82/vpsnr/internal/ffprobe"
)

type fakeProcess struct {
	r       io.Reader
	waitErr error
	killed  bool
}

func (p *fakeProcess) Stdout() io.Reader { return p.r }
func (p *fakeProcess) Wait() error       { return p.waitErr }
func (p *fakeProcess) Kill() error {
	p.killed = true
	return nil
}

type fakeStarter struct {
	data    []byte
	waitErr error
	started []*fakeProcess
}

func (f *fakeStarter) start(context.Context) (process, error) {
	p := &fakeProcess{r: bytes.NewReader(f.data), waitErr: f.waitErr}
	f.started = append(f.started, p)
	return p, nil
}

func testInfo() *ffprobe.StreamInfo {
	return &ffprobe.StreamInfo{Width: 2, Height: 2, FPS: 10, Duration: 0.5}
}

func TestSourceFrameByTime(t *testing.T) {
	st := &fakeStarter{data: rawStream(2, 2, 5)}
	src, err := newSource(context.Background(), "/v/gt.mp4", testInfo(), st.start)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 10.0, src.FPS())
	assert.Equal(t, 0.5, src.Duration())

	f, err := src.Frame(0)
	require.NoError(t, err)
	assert.Equal(t, byte(1), f.Pix[0])

	f, err = src.Frame(0.3)
	require.NoError(t, err)
	assert.Equal(t, byte(4), f.Pix[0])

	// Past the end returns the last frame.
	f, err = src.Frame(2.0)
	require.NoError(t, err)
	assert.Equal(t, byte(5), f.Pix[0])
	assert.Len(t, st.started, 1)
}

func TestSourceBackwardSeekRestarts(t *testing.T) {
	st := &fakeStarter{data: rawStream(2, 2, 5)}
	src, err := newSource(context.Background(), "/v/gt.mp4", testInfo(), st.start)
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Frame(0.4)
	require.NoError(t, err)

	f, err := src.Frame(0.1)
	require.NoError(t, err)
	assert.Equal(t, byte(2), f.Pix[0])

	require.Len(t, st.started, 2)
	assert.True(t, st.started[0].killed)
}

func TestSourceNoFramesIsDecodeError(t *testing.T) {
	st := &fakeStarter{waitErr: verrors.NewCommandFailedError("ffmpeg", 1, "Invalid data found when processing input")}
	src, err := newSource(context.Background(), "/v/pred.mp4", testInfo(), st.start)
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Frame(0)
	require.Error(t, err)
	assert.True(t, verrors.IsDecode(err))
	assert.Equal(t, "/v/pred.mp4", verrors.PathOf(err))
	assert.Contains(t, err.Error(), "Invalid data found")
}

func TestSourceDecoderFailureMidStream(t *testing.T) {
	st := &fakeStarter{
		data:    rawStream(2, 2, 2),
		waitErr: verrors.NewCommandFailedError("ffmpeg", 1, "corrupt packet"),
	}
	src, err := newSource(context.Background(), "/v/pred.mp4", testInfo(), st.start)
	require.NoError(t, err)
	defer src.Close()

	for _, ts := range []float64{0, 0.1} {
		_, err := src.Frame(ts)
		require.NoError(t, err, "t=%v", ts)
	}

	// A truncated stream from a failed decoder must not repeat the last frame.
	for _, ts := range []float64{0.2, 0.3, 0.4} {
		f, err := src.Frame(ts)
		require.Error(t, err, "t=%v", ts)
		assert.Nil(t, f)
		assert.True(t, verrors.IsDecode(err))
		assert.Equal(t, "/v/pred.mp4", verrors.PathOf(err))
	}
}

func TestSourceStartFailure(t *testing.T) {
	start := func(context.Context) (process, error) {
		return nil, errors.New("exec: not found")
	}
	_, err := newSource(context.Background(), "/v/pred.mp4", testInfo(), start)
	require.Error(t, err)
	assert.True(t, verrors.IsDecode(err))
	assert.Equal(t, "/v/pred.mp4", verrors.PathOf(err))
}

func TestSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	st := &fakeStarter{data: rawStream(2, 2, 5)}
	src, err := newSource(ctx, "/v/gt.mp4", testInfo(), st.start)
	require.NoError(t, err)
	defer src.Close()

	cancel()
	_, err = src.Frame(0)
	assert.True(t, verrors.IsCancelled(err))
}

func TestSourceClose(t *testing.T) {
	st := &fakeStarter{data: rawStream(2, 2, 1)}
	src, err := newSource(context.Background(), "/v/gt.mp4", testInfo(), st.start)
	require.NoError(t, err)

	require.NoError(t, src.Close())
	require.NoError(t, src.Close())
	assert.True(t, st.started[0].killed)

	_, err = src.Frame(0)
	assert.True(t, verrors.IsDecode(err))
}

func TestBuildDecodeArgs(t *testing.T) {
	args := BuildDecodeArgs("/videos/in put.mp4")

	require.NotEmpty(t, args)
	assert.Equal(t, "pipe:", args[len(args)-1])
	assert.Subset(t, args, []string{"-i", "/videos/in put.mp4", "-f", "rawvideo", "-pix_fmt", "rgb24", "-map", "0:v:0", "-nostdin"})

	for i, a := range args {
		if a == "-i" {
			assert.Equal(t, "/videos/in put.mp4", args[i+1])
		}
	}
}

func TestTailBuffer(t *testing.T) {
	b := &tailBuffer{limit: 4}
	_, _ = b.Write([]byte("abc"))
	_, _ = b.Write([]byte("defg\n"))
	assert.Equal(t, "efg", b.String())
}

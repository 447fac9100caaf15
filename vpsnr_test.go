package vpsnr

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/vpsnr/internal/evaluate"
	"github.com/five82/vpsnr/internal/frame"
)

type solidSource struct {
	fps, duration float64
	value         uint8
	fail          bool
}

func (s *solidSource) FPS() float64      { return s.fps }
func (s *solidSource) Duration() float64 { return s.duration }
func (s *solidSource) Close() error      { return nil }

func (s *solidSource) Frame(float64) (*frame.RGB, error) {
	if s.fail {
		return nil, fmt.Errorf("truncated stream")
	}
	f := frame.New(32, 18)
	f.Fill(s.value, s.value, s.value)
	return f, nil
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	return p
}

func fakeOpener(sources map[string]*solidSource) evaluate.Opener {
	return func(_ context.Context, path string) (evaluate.Source, error) {
		return sources[filepath.Base(path)], nil
	}
}

func TestNewValidatesOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{"defaults", nil, false},
		{"custom size", []Option{WithSize(128, 64)}, false},
		{"percentile", []Option{WithMetricMode("p5")}, false},
		{"zero width", []Option{WithSize(0, 256)}, true},
		{"bad mode", []Option{WithMetricMode("median")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompareMissingInputs(t *testing.T) {
	dir := t.TempDir()
	gt := touch(t, dir, "gt.mp4")
	missing := filepath.Join(dir, "nope.mp4")

	_, err := Compare(context.Background(), missing, missing)
	require.True(t, IsMissingInput(err), "error = %v", err)
	assert.Contains(t, err.Error(), "GT video not found at "+missing, "GT is checked first")

	_, err = Compare(context.Background(), gt, missing)
	require.True(t, IsMissingInput(err), "error = %v", err)
	assert.Contains(t, err.Error(), "Pred video not found at "+missing)
	assert.Equal(t, missing, FailedFile(err))
}

func TestCompareAndSave(t *testing.T) {
	dir := t.TempDir()
	gt := touch(t, dir, "gt.mp4")
	pred := touch(t, dir, "pred.mp4")

	open := fakeOpener(map[string]*solidSource{
		"gt.mp4":   {fps: 24, duration: 1, value: 50},
		"pred.mp4": {fps: 24, duration: 1, value: 50},
	})

	res, err := Compare(context.Background(), gt, pred, withOpener(open))
	require.NoError(t, err)
	assert.True(t, math.IsInf(res.PSNR, 1), "PSNR = %v", res.PSNR)
	assert.Equal(t, 24, res.Frames)
	assert.Equal(t, 24, res.InfiniteFrames)

	out := filepath.Join(dir, "out", "result.json")
	require.NoError(t, res.Save(out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"psnr": "Infinity"`)
}

func TestCompareDecodeFailure(t *testing.T) {
	dir := t.TempDir()
	gt := touch(t, dir, "gt.mp4")
	pred := touch(t, dir, "pred.mp4")

	open := fakeOpener(map[string]*solidSource{
		"gt.mp4":   {fps: 24, duration: 1, value: 50},
		"pred.mp4": {fps: 24, duration: 1, fail: true},
	})

	res, err := Compare(context.Background(), gt, pred, withOpener(open))
	require.Error(t, err, "result = %+v", res)
	assert.Equal(t, pred, FailedFile(err))
}

// Package psnr computes the Peak Signal-to-Noise Ratio between 8-bit frames.
package psnr

import (
	"fmt"
	"math"

	"github.com/five82/vpsnr/internal/frame"
)

// MaxPixel is the peak sample value for 8-bit content.
const MaxPixel = 255.0

// MSE returns the mean squared error between two equally sized sample buffers.
// Differences are accumulated in float64.
func MSE(a, b []uint8) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("sample count mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("empty sample buffers")
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum / float64(len(a)), nil
}

// FromMSE converts a mean squared error to decibels. Zero error is +Inf.
func FromMSE(mse float64) float64 {
	if mse == 0 {
		return math.Inf(1)
	}
	return 20 * math.Log10(MaxPixel/math.Sqrt(mse))
}

// Compute returns the PSNR of two frames with identical dimensions.
func Compute(a, b *frame.RGB) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, fmt.Errorf("first frame: %w", err)
	}
	if err := b.Validate(); err != nil {
		return 0, fmt.Errorf("second frame: %w", err)
	}
	if !frame.SameShape(a, b) {
		return 0, fmt.Errorf("frame shape mismatch: %dx%d vs %dx%d", a.Width, a.Height, b.Width, b.Height)
	}

	mse, err := MSE(a.Pix, b.Pix)
	if err != nil {
		return 0, err
	}
	return FromMSE(mse), nil
}

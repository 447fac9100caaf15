// Package frame holds decoded RGB rasters and the bilinear resize used to
// bring frames of any native resolution onto a common comparison size.
package frame

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Channels is the number of samples per pixel in an RGB frame.
const Channels = 3

// RGB is a packed 8-bit RGB raster. Row stride is Channels*Width.
type RGB struct {
	Width  int
	Height int
	Pix    []uint8
}

// New allocates a zeroed frame.
func New(width, height int) *RGB {
	return &RGB{Width: width, Height: height, Pix: make([]uint8, Size(width, height))}
}

// Size returns the byte size of a width x height RGB frame.
func Size(width, height int) int {
	return width * height * Channels
}

// Validate checks that the pixel buffer matches the declared dimensions.
func (f *RGB) Validate() error {
	if f == nil {
		return fmt.Errorf("nil frame")
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid frame dimensions %dx%d", f.Width, f.Height)
	}
	if len(f.Pix) != Size(f.Width, f.Height) {
		return fmt.Errorf("frame buffer is %d bytes, want %d for %dx%d", len(f.Pix), Size(f.Width, f.Height), f.Width, f.Height)
	}
	return nil
}

// SameShape reports whether two frames have equal dimensions.
func SameShape(a, b *RGB) bool {
	return a.Width == b.Width && a.Height == b.Height
}

// Fill sets every pixel to the given color.
func (f *RGB) Fill(r, g, b uint8) {
	for i := 0; i+2 < len(f.Pix); i += Channels {
		f.Pix[i] = r
		f.Pix[i+1] = g
		f.Pix[i+2] = b
	}
}

// ToRGBA converts the frame to an opaque *image.RGBA.
func (f *RGB) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, j := 0, 0; i < len(f.Pix); i, j = i+Channels, j+4 {
		img.Pix[j] = f.Pix[i]
		img.Pix[j+1] = f.Pix[i+1]
		img.Pix[j+2] = f.Pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// FromRGBA drops the alpha channel of img. img must start at the origin.
func FromRGBA(img *image.RGBA) *RGB {
	b := img.Bounds()
	out := New(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		dst := out.Pix[y*out.Width*Channels : (y+1)*out.Width*Channels]
		for i, j := 0, 0; i < len(src); i, j = i+4, j+Channels {
			dst[j] = src[i]
			dst[j+1] = src[i+1]
			dst[j+2] = src[i+2]
		}
	}
	return out
}

// Resize scales src to width x height with bilinear interpolation.
// The kernel support widens when downscaling, so every source pixel
// contributes to the result.
func Resize(src *RGB, width, height int) (*RGB, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid resize target %dx%d", width, height)
	}

	in := src.ToRGBA()
	if src.Width == width && src.Height == height {
		return FromRGBA(in), nil
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(out, out.Bounds(), in, in.Bounds(), draw.Src, nil)
	return FromRGBA(out), nil
}

package fractal

import (
	"fmt"
)

const (
	DefaultMaxIterations = 100
	DefaultEscapeRadius  = 2.0
	DefaultViewWidth     = 3.0
)

// ViewParameters describes the region of the complex plane being looked at. Height is derived
// from Width and the pixel aspect ratio; it is never chosen on its own.
type ViewParameters struct {
	CenterReal    float64 `json:"centerReal"`
	CenterImag    float64 `json:"centerImag"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	MaxIterations int     `json:"maxIterations"`
	EscapeRadius  float64 `json:"escapeRadius"`
}

func (v ViewParameters) String() string {
	return fmt.Sprintf("{Center: %g%+gi Width: %g Height: %g MaxIterations: %d EscapeRadius: %g}",
		v.CenterReal, v.CenterImag, v.Width, v.Height, v.MaxIterations, v.EscapeRadius)
}

// Verify replaces invalid fields with their defaults.
func (v *ViewParameters) Verify() error {
	if v.Width <= 0 {
		v.Width = DefaultViewWidth
	}
	if v.MaxIterations <= 0 {
		v.MaxIterations = DefaultMaxIterations
	}
	if v.EscapeRadius <= 0 {
		v.EscapeRadius = DefaultEscapeRadius
	}
	if v.Height < 0 {
		v.Height = 0
	}
	return nil
}

// WithAspect returns a copy whose Height matches the aspect ratio of a pixelWidth x pixelHeight
// image.
func (v ViewParameters) WithAspect(pixelWidth int, pixelHeight int) ViewParameters {
	if pixelWidth > 0 {
		v.Height = v.Width * float64(pixelHeight) / float64(pixelWidth)
	}
	return v
}

// Bounds returns the corners of the viewed region.
func (v ViewParameters) Bounds() (minReal float64, maxReal float64, minImag float64, maxImag float64) {
	return v.CenterReal - v.Width/2, v.CenterReal + v.Width/2, v.CenterImag - v.Height/2, v.CenterImag + v.Height/2
}

// pixelMapper converts pixel (x, y) to a point on the complex plane. Row 0 maps to the minimum
// imaginary value.
type pixelMapper struct {
	minReal, minImag float64
	stepReal         float64
	stepImag         float64
}

func newPixelMapper(view ViewParameters, width int, height int) pixelMapper {
	minReal, maxReal, minImag, maxImag := view.Bounds()
	return pixelMapper{
		minReal:  minReal,
		minImag:  minImag,
		stepReal: (maxReal - minReal) / float64(width),
		stepImag: (maxImag - minImag) / float64(height),
	}
}

func (p pixelMapper) point(x int, y int) (float64, float64) {
	return p.minReal + float64(x)*p.stepReal, p.minImag + float64(y)*p.stepImag
}

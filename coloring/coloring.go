package coloring

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"FractalRenderer/colormap"
	"FractalRenderer/fractal"
	"FractalRenderer/misc"
	"github.com/BrugadaSyndrome/bslogger"
)

const ParamColorScale = "color_scale"

var logger = bslogger.NewLogger("Coloring", bslogger.Normal, nil)

var black = color.RGBA{A: 255}

// Algorithm turns an escape-time grid into pixels.
type Algorithm interface {
	Name() string
	ParametersDefinition() []fractal.ParameterDescriptor
	// Apply colours result. When the result lacks input the algorithm needs, a black image of the
	// declared size is returned together with a *misc.DataError.
	Apply(result *fractal.Result, view fractal.ViewParameters, params fractal.Parameters, cmap colormap.ColorMap) (*image.RGBA, error)
}

func colorScaleDefinition() fractal.ParameterDescriptor {
	return fractal.ParameterDescriptor{
		Name: ParamColorScale, Label: "Color scale", Type: fractal.FloatParameter,
		Default: 1.0, Min: 0.01, Max: 100, Step: 0.01,
	}
}

// fallback is the solid black image returned when input is missing.
func fallback(algorithm string, result *fractal.Result, missing string) (*image.RGBA, error) {
	width, height := 0, 0
	if result != nil {
		width, height = max(result.Width, 0), max(result.Height, 0)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: black}, image.Point{}, draw.Src)

	err := &misc.DataError{Algorithm: algorithm, Missing: missing}
	logger.Warning(err.Error())
	return img, err
}

// paint sets every pixel of a new image from its grid index.
func paint(result *fractal.Result, pixel func(i int) color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, result.Width, result.Height))
	for y := 0; y < result.Height; y++ {
		for x := 0; x < result.Width; x++ {
			img.SetRGBA(x, y, pixel(result.Index(x, y)))
		}
	}
	return img
}

// interpolate blends the two colours around a fractional map index, wrapping cyclically.
func interpolate(cmap colormap.ColorMap, index float64) color.RGBA {
	i0 := math.Floor(index)
	fraction := index - i0
	c1 := cmap.At(int(i0))
	c2 := cmap.At(int(i0) + 1)
	return misc.LerpRGBA(c1, c2, fraction)
}

// usableMap swaps maps too short to interpolate for a 256 step gray ramp.
func usableMap(algorithm string, cmap colormap.ColorMap) colormap.ColorMap {
	if len(cmap) >= 2 {
		return cmap
	}
	logger.Warningf("%s coloring needs at least 2 colors, got %d; using a gray ramp", algorithm, len(cmap))
	return colormap.GrayRamp(256)
}

package coloring_test

import (
	"errors"
	"image/color"
	"testing"

	"FractalRenderer/coloring"
	"FractalRenderer/colormap"
	"FractalRenderer/fractal"
	"FractalRenderer/misc"
)

var opaqueBlack = color.RGBA{A: 255}

func grid(maxIterations int, rows [][]int32) *fractal.Result {
	height, width := len(rows), len(rows[0])
	result := fractal.NewResult(width, height, maxIterations, false)
	for y, row := range rows {
		for x, it := range row {
			result.Iterations[result.Index(x, y)] = it
		}
	}
	return result
}

func TestFlat(t *testing.T) {
	result := grid(50, [][]int32{{50, 10, 0}, {5, 50, 20}, {0, 15, 50}})
	img, err := coloring.Flat{}.Apply(result, fractal.ViewParameters{}, nil, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := img.RGBAAt(0, 0); got != opaqueBlack {
		t.Fatalf("in-set pixel = %v", got)
	}
	if got := img.RGBAAt(1, 0); got != (color.RGBA{R: 51, G: 51, B: 51, A: 255}) {
		t.Fatalf("pixel with 10 iterations = %v, want 51 gray", got)
	}
	if got := img.RGBAAt(2, 0); got != opaqueBlack {
		t.Fatalf("pixel with 0 iterations = %v, want black", got)
	}
}

func TestSmoothInSetIsBlack(t *testing.T) {
	result := grid(20, [][]int32{{20, 3}, {7, 20}})
	result.ModulusSq = []float64{1e6, 9, 16, -3}
	cmap := colormap.ColorMap{{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255}}

	img, err := coloring.Smooth{}.Apply(result, fractal.ViewParameters{}, nil, cmap)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if img.RGBAAt(0, 0) != opaqueBlack || img.RGBAAt(1, 1) != opaqueBlack {
		t.Fatalf("in-set pixels should be black, got %v and %v", img.RGBAAt(0, 0), img.RGBAAt(1, 1))
	}
	if img.RGBAAt(1, 0) == opaqueBlack {
		t.Fatal("escaped pixel should not be black")
	}
}

func TestSmoothSmallModulusKeepsIterationCount(t *testing.T) {
	// |z| <= 1 keeps the raw count, so index 1 lands exactly on the second colour
	result := grid(10, [][]int32{{1}})
	result.ModulusSq = []float64{0.5}
	cmap := colormap.ColorMap{{R: 10, A: 255}, {R: 20, A: 255}, {R: 30, A: 255}}

	img, err := coloring.Smooth{}.Apply(result, fractal.ViewParameters{}, nil, cmap)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{R: 20, A: 255}) {
		t.Fatalf("pixel = %v, want the second colour", got)
	}
}

func TestSmoothEscapedValues(t *testing.T) {
	ramp := colormap.ColorMap{{R: 10, A: 255}, {R: 20, A: 255}, {R: 30, A: 255}, {R: 40, A: 255}}
	cases := []struct {
		name       string
		iterations int32
		modulusSq  float64
		cmap       colormap.ColorMap
		want       color.RGBA
	}{
		// 1 - log(log(1e150))/log(2) = -7.432, so colours -8 and -7 wrap to 0 and 1
		{name: "negative index wraps", iterations: 0, modulusSq: 1e300, cmap: ramp, want: color.RGBA{R: 16, A: 255}},
		// 3 + 1 - log(log(3))/log(2) = 3.864, blending colour 3 into colour 0
		{name: "blend across the end", iterations: 3, modulusSq: 9, cmap: ramp, want: color.RGBA{R: 14, A: 255}},
		{name: "short map uses gray ramp", iterations: 5, modulusSq: 0.5, cmap: colormap.ColorMap{{R: 200, A: 255}}, want: color.RGBA{R: 5, G: 5, B: 5, A: 255}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := grid(20, [][]int32{{tc.iterations}})
			result.ModulusSq = []float64{tc.modulusSq}
			img, err := coloring.Smooth{}.Apply(result, fractal.ViewParameters{}, nil, tc.cmap)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if got := img.RGBAAt(0, 0); got != tc.want {
				t.Fatalf("pixel = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSmoothMissingModulusFallsBack(t *testing.T) {
	result := grid(10, [][]int32{{1, 2, 3}})
	img, err := coloring.Smooth{}.Apply(result, fractal.ViewParameters{}, nil, colormap.GrayRamp(4))
	var dataErr *misc.DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("expected a DataError, got %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 1 {
		t.Fatalf("fallback has size %v", img.Bounds())
	}
	for x := 0; x < 3; x++ {
		if img.RGBAAt(x, 0) != opaqueBlack {
			t.Fatalf("fallback pixel %d = %v", x, img.RGBAAt(x, 0))
		}
	}
}

func TestIteration(t *testing.T) {
	result := grid(10, [][]int32{{0, 5, 10}})
	cmap := colormap.ColorMap{{R: 0, A: 255}, {R: 100, A: 255}, {R: 200, A: 255}}

	img, err := coloring.Iteration{}.Apply(result, fractal.ViewParameters{}, nil, cmap)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	// index = (1 - it/max) * (N - 1): 2 wraps to colour 2, 1 is colour 1
	if got := img.RGBAAt(0, 0); got != (color.RGBA{R: 200, A: 255}) {
		t.Fatalf("pixel 0 = %v", got)
	}
	if got := img.RGBAAt(1, 0); got != (color.RGBA{R: 100, A: 255}) {
		t.Fatalf("pixel 1 = %v", got)
	}
	if got := img.RGBAAt(2, 0); got != opaqueBlack {
		t.Fatalf("in-set pixel = %v", got)
	}

	gray, err := coloring.Iteration{}.Apply(result, fractal.ViewParameters{}, nil, nil)
	if err != nil {
		t.Fatalf("Apply without map: %v", err)
	}
	if got := gray.RGBAAt(1, 0); got != (color.RGBA{R: 127, G: 127, B: 127, A: 255}) {
		t.Fatalf("gray pixel = %v, want 127", got)
	}
}

func TestRegistry(t *testing.T) {
	registry := coloring.DefaultRegistry()
	if _, err := registry.Get("Smooth"); err != nil {
		t.Fatalf("Get Smooth: %v", err)
	}
	if _, err := registry.Get("Histogram"); !errors.Is(err, misc.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

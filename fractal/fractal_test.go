package fractal_test

import (
	"errors"
	"reflect"
	"testing"

	"FractalRenderer/fractal"
	"FractalRenderer/misc"
)

func TestMandelbrotPixelMapping(t *testing.T) {
	view := fractal.ViewParameters{Width: 4, Height: 4, MaxIterations: 50, EscapeRadius: 2}
	result, err := fractal.NewMandelbrot().Compute(view, nil, 2, 2)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	// pixel (0, 0) is -2-2i, which is already outside the escape radius
	if it := result.Iterations[result.Index(0, 0)]; it != 0 {
		t.Fatalf("corner iterations = %d, want 0", it)
	}
	if m := result.ModulusSq[result.Index(0, 0)]; m != 8 {
		t.Fatalf("corner modulus = %v, want 8", m)
	}
	// pixel (1, 1) is the origin, which never escapes
	i := result.Index(1, 1)
	if !result.InSet(i) || result.Iterations[i] != 50 || result.ModulusSq[i] != 0 {
		t.Fatalf("origin = (%d, %v), want (50, 0)", result.Iterations[i], result.ModulusSq[i])
	}
}

func TestComputeIsDeterministicAndInRange(t *testing.T) {
	for _, kernel := range []fractal.Kernel{fractal.NewMandelbrot(), fractal.NewJulia()} {
		t.Run(kernel.Name(), func(t *testing.T) {
			view := kernel.DefaultView().WithAspect(64, 48)
			first, err := kernel.Compute(view, fractal.Defaults(kernel.ParametersDefinition()), 64, 48)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			second, err := kernel.Compute(view, fractal.Defaults(kernel.ParametersDefinition()), 64, 48)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if !reflect.DeepEqual(first, second) {
				t.Fatal("two computations of the same view differ")
			}
			if len(first.Iterations) != 64*48 {
				t.Fatalf("got %d cells, want %d", len(first.Iterations), 64*48)
			}
			for i, it := range first.Iterations {
				if it < 0 || int(it) > view.MaxIterations {
					t.Fatalf("cell %d has %d iterations", i, it)
				}
			}
		})
	}
}

func TestJuliaUsesParameters(t *testing.T) {
	julia := fractal.NewJulia()
	view := julia.DefaultView().WithAspect(16, 16)
	a, err := julia.Compute(view, fractal.Parameters{fractal.ParamCReal: 0.285, fractal.ParamCImag: 0.01}, 16, 16)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	b, err := julia.Compute(view, fractal.Parameters{fractal.ParamCReal: -0.162, fractal.ParamCImag: 1.04}, 16, 16)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if reflect.DeepEqual(a.Iterations, b.Iterations) {
		t.Fatal("different c values produced identical grids")
	}
}

func TestComputeRejectsEmptySize(t *testing.T) {
	_, err := fractal.NewMandelbrot().Compute(fractal.NewMandelbrot().DefaultView(), nil, 0, 10)
	if !errors.Is(err, misc.ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	definitions := fractal.NewJulia().ParametersDefinition()
	resolved := fractal.Resolve(definitions, fractal.Parameters{
		fractal.ParamCReal: 5,
		"unknown":          1,
	})
	want := fractal.Parameters{fractal.ParamCReal: 2, fractal.ParamCImag: 0.113}
	if !reflect.DeepEqual(resolved, want) {
		t.Fatalf("Resolve = %v, want %v", resolved, want)
	}
}

func TestParameterTypes(t *testing.T) {
	d := fractal.ParameterDescriptor{Name: "n", Type: fractal.IntParameter, Default: 3}
	if got := d.Clamp(2.6); got != 3 {
		t.Fatalf("int parameter clamp = %v, want 3", got)
	}
	if got := d.Clamp(-40); got != -40 {
		t.Fatalf("unbounded parameter should not be clamped, got %v", got)
	}
}

func TestPresets(t *testing.T) {
	julia := fractal.NewJulia()
	preset, err := fractal.FindPreset(julia, "Seahorse")
	if err != nil {
		t.Fatalf("FindPreset: %v", err)
	}
	if preset.Params[fractal.ParamCReal] != -0.75 || preset.Params[fractal.ParamCImag] != 0.1 {
		t.Fatalf("unexpected preset %v", preset)
	}
	if _, err := fractal.FindPreset(julia, "Nope"); !errors.Is(err, misc.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := fractal.FindPreset(fractal.NewMandelbrot(), "Seahorse"); err == nil {
		t.Fatal("Mandelbrot has no presets")
	}
}

func TestRegistry(t *testing.T) {
	registry := fractal.DefaultRegistry()
	if names := registry.Names(); !reflect.DeepEqual(names, []string{"Mandelbrot", "Julia"}) {
		t.Fatalf("names = %v", names)
	}
	_, err := registry.Get("Newton")
	var configErr *misc.ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
}

func TestViewVerify(t *testing.T) {
	view := fractal.ViewParameters{Width: -1}
	_ = view.Verify()
	if view.Width != fractal.DefaultViewWidth || view.MaxIterations != fractal.DefaultMaxIterations || view.EscapeRadius != fractal.DefaultEscapeRadius {
		t.Fatalf("Verify left %v", view)
	}
	if h := view.WithAspect(200, 100).Height; h != 1.5 {
		t.Fatalf("derived height = %v, want 1.5", h)
	}
}

package fractal

import (
	"errors"
	"fmt"
	"runtime"

	"FractalRenderer/misc"
	"FractalRenderer/task"
	"golang.org/x/sync/errgroup"
)

// Kernel computes an escape-time grid. Implementations must be deterministic and treat every
// pixel independently.
type Kernel interface {
	Name() string
	ParametersDefinition() []ParameterDescriptor
	DefaultView() ViewParameters
	Compute(view ViewParameters, params Parameters, width int, height int) (*Result, error)
}

// Preset is a named set of kernel parameters.
type Preset struct {
	Name   string
	Params Parameters
}

// PresetProvider is implemented by kernels that ship named parameter sets.
type PresetProvider interface {
	Presets() []Preset
}

// escapeFunc returns the escape iteration and |z|^2 at escape for one point.
type escapeFunc func(re float64, im float64) (int32, float64)

// computeGrid evaluates escape for every pixel. Rows are split into bands computed in parallel;
// a panicking band fails the whole grid.
func computeGrid(view ViewParameters, width int, height int, escape escapeFunc) (*Result, error) {
	if width <= 0 || height <= 0 {
		return nil, misc.ErrInvalidSize
	}
	if view.Height <= 0 {
		view = view.WithAspect(width, height)
	}

	result := NewResult(width, height, view.MaxIterations, true)
	mapper := newPixelMapper(view, width, height)
	workers := runtime.GOMAXPROCS(0)

	var g errgroup.Group
	g.SetLimit(workers)
	for _, t := range task.Split(height, workers) {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%v panicked: %v", t, r)
				}
			}()
			for y := t.StartRow; y < t.EndRow; y++ {
				for x := 0; x < width; x++ {
					i := result.Index(x, y)
					result.Iterations[i], result.ModulusSq[i] = escape(mapper.point(x, y))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// Registry maps kernel names to kernels, keeping registration order.
type Registry struct {
	names   []string
	kernels map[string]Kernel
}

func NewRegistry(kernels ...Kernel) *Registry {
	r := &Registry{kernels: make(map[string]Kernel)}
	for _, k := range kernels {
		r.Register(k)
	}
	return r
}

// DefaultRegistry holds every kernel this module provides.
func DefaultRegistry() *Registry {
	return NewRegistry(NewMandelbrot(), NewJulia())
}

// Register adds k, replacing any kernel of the same name.
func (r *Registry) Register(k Kernel) {
	if _, ok := r.kernels[k.Name()]; !ok {
		r.names = append(r.names, k.Name())
	}
	r.kernels[k.Name()] = k
}

func (r *Registry) Get(name string) (Kernel, error) {
	k, ok := r.kernels[name]
	if !ok {
		return nil, &misc.ConfigurationError{What: "fractal kernel", Name: name, Err: misc.ErrNotFound}
	}
	return k, nil
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// FindPreset looks up a named preset of kernel k.
func FindPreset(k Kernel, name string) (Preset, error) {
	provider, ok := k.(PresetProvider)
	if !ok {
		return Preset{}, &misc.ConfigurationError{What: "preset", Name: name, Err: errors.New(k.Name() + " has no presets")}
	}
	for _, p := range provider.Presets() {
		if p.Name == name {
			return Preset{Name: p.Name, Params: p.Params.Clone()}, nil
		}
	}
	return Preset{}, &misc.ConfigurationError{What: "preset", Name: name, Err: misc.ErrNotFound}
}

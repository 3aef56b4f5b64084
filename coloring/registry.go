package coloring

import (
	"FractalRenderer/misc"
)

// Registry maps algorithm names to algorithms, keeping registration order.
type Registry struct {
	names      []string
	algorithms map[string]Algorithm
}

func NewRegistry(algorithms ...Algorithm) *Registry {
	r := &Registry{algorithms: make(map[string]Algorithm)}
	for _, a := range algorithms {
		r.Register(a)
	}
	return r
}

func DefaultRegistry() *Registry {
	return NewRegistry(Smooth{}, Flat{}, Iteration{})
}

func (r *Registry) Register(a Algorithm) {
	if _, ok := r.algorithms[a.Name()]; !ok {
		r.names = append(r.names, a.Name())
	}
	r.algorithms[a.Name()] = a
}

func (r *Registry) Get(name string) (Algorithm, error) {
	a, ok := r.algorithms[name]
	if !ok {
		return nil, &misc.ConfigurationError{What: "coloring algorithm", Name: name, Err: misc.ErrNotFound}
	}
	return a, nil
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

package fractal

import (
	"math"
)

const (
	FloatParameter = "float"
	IntParameter   = "int"
)

// ParameterDescriptor declares one tunable parameter of a kernel or colouring algorithm. Label
// is for display only. Min and Max bound the value when Max > Min.
type ParameterDescriptor struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Type    string  `json:"type"`
	Default float64 `json:"default"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
}

func (d ParameterDescriptor) bounded() bool {
	return d.Max > d.Min
}

// Clamp fits value into the declared range and type.
func (d ParameterDescriptor) Clamp(value float64) float64 {
	if math.IsNaN(value) {
		return d.Default
	}
	if d.Type == IntParameter {
		value = math.Round(value)
	}
	if d.bounded() {
		value = math.Max(d.Min, math.Min(d.Max, value))
	}
	return value
}

// Parameters holds named parameter values for a kernel or colouring algorithm.
type Parameters map[string]float64

// Clone returns an independent copy.
func (p Parameters) Clone() Parameters {
	clone := make(Parameters, len(p))
	for k, v := range p {
		clone[k] = v
	}
	return clone
}

// Merge returns a copy of p with every value of overrides applied on top.
func (p Parameters) Merge(overrides Parameters) Parameters {
	merged := p.Clone()
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// Defaults builds the parameter set holding every declared default.
func Defaults(definitions []ParameterDescriptor) Parameters {
	return Resolve(definitions, nil)
}

// Resolve checks given against definitions: unknown names are dropped, missing names take their
// default and every value is clamped into its declared range.
func Resolve(definitions []ParameterDescriptor, given Parameters) Parameters {
	resolved := make(Parameters, len(definitions))
	for _, d := range definitions {
		value, ok := given[d.Name]
		if !ok {
			value = d.Default
		}
		resolved[d.Name] = d.Clamp(value)
	}
	return resolved
}

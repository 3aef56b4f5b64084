package fractal

const (
	ParamCReal = "c_real"
	ParamCImag = "c_imag"
)

// Julia iterates z <- z^2 + c from the pixel's point, with c fixed by the parameters.
type Julia struct{}

func NewJulia() *Julia {
	return &Julia{}
}

func (j *Julia) Name() string {
	return "Julia"
}

func (j *Julia) ParametersDefinition() []ParameterDescriptor {
	return []ParameterDescriptor{
		{Name: ParamCReal, Label: "C (real)", Type: FloatParameter, Default: -0.745, Min: -2, Max: 2, Step: 0.001},
		{Name: ParamCImag, Label: "C (imaginary)", Type: FloatParameter, Default: 0.113, Min: -2, Max: 2, Step: 0.001},
	}
}

func (j *Julia) DefaultView() ViewParameters {
	return ViewParameters{
		CenterReal:    0,
		CenterImag:    0,
		Width:         DefaultViewWidth,
		MaxIterations: DefaultMaxIterations,
		EscapeRadius:  DefaultEscapeRadius,
	}
}

func (j *Julia) Presets() []Preset {
	preset := func(name string, cr float64, ci float64) Preset {
		return Preset{Name: name, Params: Parameters{ParamCReal: cr, ParamCImag: ci}}
	}
	return []Preset{
		preset("Classic Beauty", -0.745, 0.113),
		preset("Feigenbaum Point", -1.401155, 0),
		preset("Seahorse", -0.75, 0.1),
		preset("Dragon Tail", -0.8, 0.156),
		preset("Electric Eel", -0.162, 1.04),
		preset("Snowflake", 0.285, 0.01),
		preset("Spiral", -0.778, -0.136),
	}
}

func (j *Julia) Compute(view ViewParameters, params Parameters, width int, height int) (*Result, error) {
	resolved := Resolve(j.ParametersDefinition(), params)
	cr, ci := resolved[ParamCReal], resolved[ParamCImag]
	maxIterations := view.MaxIterations
	boundary := view.EscapeRadius * view.EscapeRadius
	return computeGrid(view, width, height, func(zr float64, zi float64) (int32, float64) {
		return escapeTime(zr, zi, cr, ci, maxIterations, boundary)
	})
}

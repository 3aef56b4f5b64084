package fractal

// Mandelbrot iterates z <- z^2 + c from z = 0, with c the pixel's point.
type Mandelbrot struct{}

func NewMandelbrot() *Mandelbrot {
	return &Mandelbrot{}
}

func (m *Mandelbrot) Name() string {
	return "Mandelbrot"
}

func (m *Mandelbrot) ParametersDefinition() []ParameterDescriptor {
	return nil
}

func (m *Mandelbrot) DefaultView() ViewParameters {
	return ViewParameters{
		CenterReal:    -0.5,
		CenterImag:    0,
		Width:         DefaultViewWidth,
		MaxIterations: DefaultMaxIterations,
		EscapeRadius:  DefaultEscapeRadius,
	}
}

func (m *Mandelbrot) Compute(view ViewParameters, _ Parameters, width int, height int) (*Result, error) {
	maxIterations := view.MaxIterations
	boundary := view.EscapeRadius * view.EscapeRadius
	return computeGrid(view, width, height, func(cr float64, ci float64) (int32, float64) {
		return escapeTime(0, 0, cr, ci, maxIterations, boundary)
	})
}

// escapeTime iterates z <- z^2 + c from z0 until |z|^2 exceeds boundary or maxIterations is
// reached. It returns the escape iteration and |z|^2 at that point, or (maxIterations, 0).
// https://en.wikipedia.org/wiki/Plotting_algorithms_for_the_Mandelbrot_set#Optimized_escape_time_algorithms
func escapeTime(zr float64, zi float64, cr float64, ci float64, maxIterations int, boundary float64) (int32, float64) {
	x2, y2 := zr*zr, zi*zi
	for i := 0; i < maxIterations; i++ {
		if modulusSq := x2 + y2; modulusSq > boundary {
			return int32(i), modulusSq
		}
		zi = 2*zr*zi + ci
		zr = x2 - y2 + cr
		x2, y2 = zr*zr, zi*zi
	}
	return int32(maxIterations), 0
}

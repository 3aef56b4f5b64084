package fractal

// Result is the escape-time grid of one computation, stored row major.
type Result struct {
	Width         int
	Height        int
	MaxIterations int
	// Iterations holds the escape iteration of every pixel, MaxIterations meaning it never escaped.
	Iterations []int32
	// ModulusSq holds |z|^2 at escape, 0 for pixels that never escaped. Nil when not produced.
	ModulusSq []float64
}

func NewResult(width int, height int, maxIterations int, withModulus bool) *Result {
	r := &Result{
		Width:         width,
		Height:        height,
		MaxIterations: maxIterations,
		Iterations:    make([]int32, width*height),
	}
	if withModulus {
		r.ModulusSq = make([]float64, width*height)
	}
	return r
}

func (r *Result) Index(x int, y int) int {
	return y*r.Width + x
}

// InSet reports whether pixel i reached the iteration limit.
func (r *Result) InSet(i int) bool {
	return int(r.Iterations[i]) >= r.MaxIterations
}

// Complete reports whether the grids match the declared size.
func (r *Result) Complete(needModulus bool) bool {
	if r == nil || r.Width <= 0 || r.Height <= 0 || r.MaxIterations <= 0 {
		return false
	}
	if len(r.Iterations) != r.Width*r.Height {
		return false
	}
	return !needModulus || len(r.ModulusSq) == r.Width*r.Height
}

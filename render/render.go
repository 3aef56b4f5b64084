package render

import (
	"errors"
	"fmt"
	"image"

	"FractalRenderer/coloring"
	"FractalRenderer/colormap"
	"FractalRenderer/fractal"
	"FractalRenderer/misc"
	"github.com/BrugadaSyndrome/bslogger"
)

// GridComputer runs kernels and turns any failure they raise into a *misc.ComputationError.
type GridComputer struct {
	logger bslogger.Logger
}

func NewGridComputer() *GridComputer {
	return &GridComputer{logger: bslogger.NewLogger("GridComputer", bslogger.Normal, nil)}
}

// Compute evaluates kernel over a width x height grid. The view's Height is derived from its
// Width and the grid's aspect ratio.
func (gc *GridComputer) Compute(kernel fractal.Kernel, view fractal.ViewParameters, params fractal.Parameters, width int, height int) (result *fractal.Result, err error) {
	if width <= 0 || height <= 0 {
		return nil, &misc.ConfigurationError{What: "image size", Name: fmt.Sprintf("%dx%d", width, height), Err: misc.ErrInvalidSize}
	}
	_ = view.Verify()
	view = view.WithAspect(width, height)

	defer func() {
		if r := recover(); r != nil {
			result, err = nil, &misc.ComputationError{Stage: "compute", Err: fmt.Errorf("%s panicked: %v", kernel.Name(), r)}
			misc.CheckError(err, gc.logger, misc.Error)
		}
	}()

	gc.logger.Debugf("Computing %s %dx%d %v", kernel.Name(), width, height, view)
	result, err = kernel.Compute(view, params, width, height)
	if err != nil {
		err = &misc.ComputationError{Stage: "compute", Err: err}
		misc.CheckError(err, gc.logger, misc.Error)
		return nil, err
	}
	if result == nil || len(result.Iterations) != width*height {
		err = &misc.ComputationError{Stage: "compute", Err: misc.ErrShapeMismatch}
		misc.CheckError(err, gc.logger, misc.Error)
		return nil, err
	}
	return result, nil
}

// Colorizer runs colouring algorithms. Missing input produces a logged black fallback instead of
// an error; panics become a *misc.ComputationError.
type Colorizer struct {
	logger bslogger.Logger
}

func NewColorizer() *Colorizer {
	return &Colorizer{logger: bslogger.NewLogger("Colorizer", bslogger.Normal, nil)}
}

// Colorize colours result, which is expected to be width x height. A nil result is treated as
// an empty grid of that size.
func (c *Colorizer) Colorize(algorithm coloring.Algorithm, result *fractal.Result, view fractal.ViewParameters, params fractal.Parameters, cmap colormap.ColorMap, width int, height int) (img *image.RGBA, err error) {
	if width <= 0 || height <= 0 {
		return nil, &misc.ConfigurationError{What: "image size", Name: fmt.Sprintf("%dx%d", width, height), Err: misc.ErrInvalidSize}
	}
	if result == nil {
		result = &fractal.Result{Width: width, Height: height, MaxIterations: view.MaxIterations}
	}

	defer func() {
		if r := recover(); r != nil {
			img, err = nil, &misc.ComputationError{Stage: "colorize", Err: fmt.Errorf("%s panicked: %v", algorithm.Name(), r)}
			misc.CheckError(err, c.logger, misc.Error)
		}
	}()

	img, err = algorithm.Apply(result, view, params, cmap)
	var dataErr *misc.DataError
	if errors.As(err, &dataErr) {
		misc.CheckError(err, c.logger, misc.Warning)
		return img, nil
	}
	if err != nil {
		err = &misc.ComputationError{Stage: "colorize", Err: err}
		misc.CheckError(err, c.logger, misc.Error)
		return nil, err
	}
	if img == nil || img.Bounds().Dx() != width || img.Bounds().Dy() != height {
		err = &misc.ComputationError{Stage: "colorize", Err: misc.ErrShapeMismatch}
		misc.CheckError(err, c.logger, misc.Error)
		return nil, err
	}
	return img, nil
}

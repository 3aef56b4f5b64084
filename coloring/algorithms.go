package coloring

import (
	"image"
	"image/color"
	"math"

	"FractalRenderer/colormap"
	"FractalRenderer/fractal"
	"FractalRenderer/misc"
)

// Flat shades escaped pixels by how long they took to escape, in gray. The map is ignored.
type Flat struct{}

func (f Flat) Name() string {
	return "Flat"
}

func (f Flat) ParametersDefinition() []fractal.ParameterDescriptor {
	return nil
}

func (f Flat) Apply(result *fractal.Result, _ fractal.ViewParameters, _ fractal.Parameters, _ colormap.ColorMap) (*image.RGBA, error) {
	if !result.Complete(false) {
		return fallback(f.Name(), result, "iterations")
	}
	maxIterations := float64(result.MaxIterations)
	return paint(result, func(i int) color.RGBA {
		if result.InSet(i) {
			return black
		}
		v := misc.RoundChannel(float64(result.Iterations[i]) / maxIterations * 255)
		return color.RGBA{R: v, G: v, B: v, A: 255}
	}), nil
}

// Smooth uses the normalized iteration count so bands blend into each other.
// https://en.wikipedia.org/wiki/Plotting_algorithms_for_the_Mandelbrot_set#Continuous_(smooth)_coloring
type Smooth struct{}

func (s Smooth) Name() string {
	return "Smooth"
}

func (s Smooth) ParametersDefinition() []fractal.ParameterDescriptor {
	return []fractal.ParameterDescriptor{colorScaleDefinition()}
}

func (s Smooth) Apply(result *fractal.Result, _ fractal.ViewParameters, params fractal.Parameters, cmap colormap.ColorMap) (*image.RGBA, error) {
	if !result.Complete(true) {
		return fallback(s.Name(), result, "modulus data")
	}
	scale := fractal.Resolve(s.ParametersDefinition(), params)[ParamColorScale]
	cmap = usableMap(s.Name(), cmap)
	log2 := math.Log(2)

	return paint(result, func(i int) color.RGBA {
		if result.InSet(i) {
			return black
		}
		smooth := float64(result.Iterations[i])
		if aux := result.ModulusSq[i]; aux > 0 {
			// |z| <= 1 would make log(log(|z|)) undefined, so those keep the plain count
			if modulus := math.Sqrt(aux); modulus > 1 {
				smooth = smooth + 1 - math.Log(math.Log(modulus))/log2
			}
		}
		return interpolate(cmap, smooth*scale)
	}), nil
}

// Iteration walks the map from its end towards its start as the escape count grows.
type Iteration struct{}

func (it Iteration) Name() string {
	return "Iteration"
}

func (it Iteration) ParametersDefinition() []fractal.ParameterDescriptor {
	return []fractal.ParameterDescriptor{colorScaleDefinition()}
}

func (it Iteration) Apply(result *fractal.Result, _ fractal.ViewParameters, params fractal.Parameters, cmap colormap.ColorMap) (*image.RGBA, error) {
	if !result.Complete(false) {
		return fallback(it.Name(), result, "iterations")
	}
	scale := fractal.Resolve(it.ParametersDefinition(), params)[ParamColorScale]
	maxIterations := float64(result.MaxIterations)

	return paint(result, func(i int) color.RGBA {
		if result.InSet(i) {
			return black
		}
		remaining := 1 - float64(result.Iterations[i])/maxIterations
		if len(cmap) < 2 {
			v := uint8(misc.ClampFloat64(remaining*255, 0, 255))
			return color.RGBA{R: v, G: v, B: v, A: 255}
		}
		return interpolate(cmap, remaining*float64(len(cmap)-1)*scale)
	}), nil
}

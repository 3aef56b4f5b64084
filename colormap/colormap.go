package colormap

import (
	"image/color"
	"sort"

	"FractalRenderer/misc"
	"github.com/BrugadaSyndrome/bslogger"
)

var logger = bslogger.NewLogger("ColorMap", bslogger.Normal, nil)

// ColorStop anchors a gradient colour at a position in [0, 1].
type ColorStop struct {
	Position float64
	Color    color.RGBA
}

// ColorMap is an ordered colour sequence indexed cyclically by colouring algorithms.
type ColorMap []color.RGBA

// At returns the colour at index i, wrapping negative and out of range indices.
func (cm ColorMap) At(i int) color.RGBA {
	return cm[misc.FloorMod(i, len(cm))]
}

// GrayRamp is a black to white map with the given number of evenly spaced steps.
func GrayRamp(steps int) ColorMap {
	ramp := make(ColorMap, steps)
	for i := 0; i < steps; i++ {
		v := uint8(0)
		if steps > 1 {
			v = misc.RoundChannel(float64(i) * 255 / float64(steps-1))
		}
		ramp[i] = color.RGBA{R: v, G: v, B: v, A: 255}
	}
	return ramp
}

// GenerateGradient samples count evenly spaced positions over [0, 1] and interpolates each
// channel independently against the stops. Positions outside the stop range take the colour
// of the nearest end stop.
func GenerateGradient(stops []ColorStop, count int) ColorMap {
	if count <= 0 {
		return ColorMap{}
	}
	if len(stops) == 0 {
		logger.Warning("Gradient requested without any color stops, using black")
		black := make(ColorMap, count)
		for i := range black {
			black[i] = color.RGBA{A: 255}
		}
		return black
	}

	sorted := make([]ColorStop, len(stops))
	copy(sorted, stops)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	gradient := make(ColorMap, count)
	for i := 0; i < count; i++ {
		position := 0.0
		if count > 1 {
			position = float64(i) / float64(count-1)
		}
		gradient[i] = sampleStops(sorted, position)
	}
	return gradient
}

func sampleStops(stops []ColorStop, position float64) color.RGBA {
	first, last := stops[0], stops[len(stops)-1]
	if position <= first.Position {
		return opaque(first.Color)
	}
	if position >= last.Position {
		return opaque(last.Color)
	}

	// The stops are sorted, so the first stop past position closes the segment.
	j := sort.Search(len(stops), func(k int) bool {
		return stops[k].Position > position
	})
	lower, upper := stops[j-1], stops[j]
	span := upper.Position - lower.Position
	if span <= 0 {
		return opaque(upper.Color)
	}
	return misc.LerpRGBA(lower.Color, upper.Color, (position-lower.Position)/span)
}

func opaque(c color.RGBA) color.RGBA {
	c.A = 255
	return c
}

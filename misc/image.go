package misc

import (
	"image/color"
	"math"
)

func LerpFloat64(v1 float64, v2 float64, fraction float64) float64 {
	return v1 + (v2-v1)*fraction
}

// ClampFloat64 limits v to [low, high].
func ClampFloat64(v float64, low float64, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

// RoundChannel rounds v half to even and clamps it into a colour channel.
func RoundChannel(v float64) uint8 {
	return uint8(math.RoundToEven(ClampFloat64(v, 0, 255)))
}

// FloorMod is the modulo used for cyclic colour map indexing; the result is always in [0, n).
func FloorMod(i int, n int) int {
	m := i % n
	if m < 0 {
		m += n
	}
	return m
}

// LerpRGBA mixes two colours channel by channel, rounding and clamping the result. Alpha is
// always opaque.
func LerpRGBA(color1 color.RGBA, color2 color.RGBA, fraction float64) color.RGBA {
	return color.RGBA{
		R: RoundChannel(LerpFloat64(float64(color1.R), float64(color2.R), fraction)),
		G: RoundChannel(LerpFloat64(float64(color1.G), float64(color2.G), fraction)),
		B: RoundChannel(LerpFloat64(float64(color1.B), float64(color2.B), fraction)),
		A: 255,
	}
}

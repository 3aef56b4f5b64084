package colormap

import (
	"image/color"

	"FractalRenderer/misc"
	"github.com/lucasb-eyer/go-colorful"
)

const BuiltinPack = "Default"

var fireStops = []ColorStop{
	{Position: 0.0, Color: color.RGBA{R: 0, G: 0, B: 0, A: 255}},
	{Position: 0.35, Color: color.RGBA{R: 180, G: 20, B: 0, A: 255}},
	{Position: 0.7, Color: color.RGBA{R: 255, G: 170, B: 0, A: 255}},
	{Position: 1.0, Color: color.RGBA{R: 255, G: 255, B: 220, A: 255}},
}

// Builtin returns the Default pack, available even when no pack files load.
func Builtin() *Pack {
	pack := newPack(BuiltinPack)
	pack.set("Grayscale", GrayRamp(256))
	pack.set("Fire", GenerateGradient(fireStops, 256))
	pack.set("Rainbow", hueSweep(256))
	return pack
}

func hueSweep(steps int) ColorMap {
	sweep := make(ColorMap, steps)
	for i := 0; i < steps; i++ {
		c := colorful.Hsv(360*float64(i)/float64(steps), 1, 1).Clamped()
		sweep[i] = color.RGBA{
			R: misc.RoundChannel(c.R * 255),
			G: misc.RoundChannel(c.G * 255),
			B: misc.RoundChannel(c.B * 255),
			A: 255,
		}
	}
	return sweep
}

// Fallback is used when a requested map cannot be found: 16 grays from 0 to 240.
func Fallback() ColorMap {
	gray := make(ColorMap, 0, 16)
	for v := 0; v < 256; v += 16 {
		gray = append(gray, color.RGBA{R: uint8(v), G: uint8(v), B: uint8(v), A: 255})
	}
	return gray
}

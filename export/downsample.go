package export

import (
	"fmt"
	"image"

	"FractalRenderer/misc"
)

// Downsample box filters src by factor: every output channel is the integer mean of the
// factor x factor block under it, truncated. A factor of 1 returns src unchanged.
func Downsample(src *image.RGBA, width int, height int, factor int) (*image.RGBA, error) {
	if factor <= 1 {
		return src, nil
	}
	bounds := src.Bounds()
	if bounds.Dx() != width*factor || bounds.Dy() != height*factor {
		return nil, fmt.Errorf("%w: expected %dx%d, got %dx%d",
			misc.ErrShapeMismatch, width*factor, height*factor, bounds.Dx(), bounds.Dy())
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	samples := factor * factor
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum [4]int
			for sy := 0; sy < factor; sy++ {
				offset := src.PixOffset(bounds.Min.X+x*factor, bounds.Min.Y+y*factor+sy)
				for sx := 0; sx < factor; sx++ {
					for c := 0; c < 4; c++ {
						sum[c] += int(src.Pix[offset+sx*4+c])
					}
				}
			}
			o := dst.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				dst.Pix[o+c] = uint8(sum[c] / samples)
			}
		}
	}
	return dst, nil
}

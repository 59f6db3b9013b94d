package vision

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// toHSV converts an 8-bit RGB sample to OpenCV-scaled HSV
// (H 0-180, S 0-255, V 0-255).
func toHSV(r, g, b uint8) (h, s, v uint8) {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	hf, sf, vf := c.Hsv()
	return scale(hf/2, 180), scale(sf*255, 255), scale(vf*255, 255)
}

func scale(x, max float64) uint8 {
	x = math.Round(x)
	if x < 0 {
		return 0
	}
	if x > max {
		return uint8(max)
	}
	return uint8(x)
}

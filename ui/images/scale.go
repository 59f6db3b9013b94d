package images

import (
	"bytes"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// Fit returns src scaled so that it fits within maxW x maxH preserving aspect
// ratio. Images smaller than the box are enlarged by a whole factor (at most
// maxUpscale) so thin bars stay readable; nearest-neighbour keeps marker lines
// crisp. If no scaling is needed the original is returned.
func Fit(src image.Image, maxW, maxH, maxUpscale int) image.Image {
	if src == nil {
		return nil
	}
	if maxW < 1 {
		maxW = 1
	}
	if maxH < 1 {
		maxH = 1
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	var newW, newH int
	switch {
	case w > maxW || h > maxH:
		ratio := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
		newW = max(1, int(float64(w)*ratio+0.5))
		newH = max(1, int(float64(h)*ratio+0.5))
	default:
		k := min(maxW/w, maxH/h, maxUpscale)
		if k <= 1 {
			return src
		}
		newW, newH = w*k, h*k
	}
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

package images

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/soocke/reelbot-go/domain/vision"
)

var (
	TargetColor  = color.RGBA{230, 40, 40, 255}
	DesiredColor = color.RGBA{240, 200, 20, 255}
	ControlColor = color.RGBA{20, 220, 230, 255}
)

// Annotate returns a copy of a control-bar frame with the marker rows drawn
// across its width: the target, the desired control position (target plus
// offset) and the detected control row. Missing markers are skipped.
func Annotate(frame *image.RGBA, r vision.MarkerReading, offset int) *image.RGBA {
	if frame == nil {
		return nil
	}
	b := frame.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), frame, b.Min, draw.Src)
	if r.Target.OK {
		hline(out, r.Target.Y, TargetColor)
		hline(out, r.Target.Y+offset, DesiredColor)
	}
	if r.Control.OK {
		hline(out, r.Control.Y, ControlColor)
	}
	return out
}

func hline(img *image.RGBA, y int, c color.RGBA) {
	b := img.Bounds()
	if y < b.Min.Y || y >= b.Max.Y {
		return
	}
	for x := b.Min.X; x < b.Max.X; x++ {
		img.SetRGBA(x, y, c)
	}
}

package view

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/soocke/reelbot-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// BarPreview shows the annotated control-bar frame.
type BarPreview interface {
	Update(img image.Image)
	Reset()
}

const (
	previewMaxW       = 120
	previewMaxH       = 320
	previewMaxUpscale = 3
)

type barPreview struct {
	label *LabelWidget
	photo *Img
}

// NewBarPreview grids the preview label at column col spanning rows
// [row, row+span).
func NewBarPreview(row, col, span int) BarPreview {
	v := &barPreview{}
	v.photo = NewPhoto(Data(images.EncodePNG(placeholder())))
	v.label = Label(Image(v.photo), Borderwidth(1), Relief("sunken"))
	Grid(v.label, Row(row), Column(col), Rowspan(span), Sticky("n"), Padx("0.4m"), Pady("0.4m"))
	return v
}

func placeholder() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 40, previewMaxH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{0x33, 0x33, 0x33, 0xff}}, image.Point{}, draw.Src)
	return img
}

func (v *barPreview) Update(img image.Image) {
	if v == nil || v.label == nil || img == nil {
		return
	}
	v.show(images.Fit(img, previewMaxW, previewMaxH, previewMaxUpscale))
}

func (v *barPreview) Reset() {
	if v == nil || v.label == nil {
		return
	}
	v.show(placeholder())
}

// show swaps the label's photo, deleting the previous one so Tk does not
// retain stale pixel buffers.
func (v *barPreview) show(img image.Image) {
	if v.photo != nil {
		v.photo.Delete()
	}
	v.photo = NewPhoto(Data(images.EncodePNG(img)))
	v.label.Configure(Image(v.photo))
}

package vision

import (
	"image"

	"github.com/soocke/reelbot-go/config"
)

// MarkerExtractor locates the target marker (bright, low saturation blob)
// and the controlled marker (thin dark-grey band) inside a control-bar frame.
// It never fails: a marker that cannot be read is reported as None.
type MarkerExtractor struct {
	target   config.HSVRange
	darkMin  uint8
	darkMax  uint8
	minWidth int
	rowCount []int
}

// NewMarkerExtractor returns an extractor configured from cfg. If cfg is nil
// the default configuration is used. Not safe for concurrent use.
func NewMarkerExtractor(cfg *config.Config) *MarkerExtractor {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &MarkerExtractor{
		target:   cfg.TargetHSV,
		darkMin:  cfg.ControlRGBMin,
		darkMax:  cfg.ControlRGBMax,
		minWidth: cfg.ControlMinWidth,
	}
}

// Extract returns the target centroid row and the dominant control row.
func (e *MarkerExtractor) Extract(frame *image.RGBA) MarkerReading {
	if frame == nil {
		return MarkerReading{}
	}
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || len(frame.Pix) < (h-1)*frame.Stride+w*4 {
		return MarkerReading{}
	}
	if cap(e.rowCount) < h {
		e.rowCount = make([]int, h)
	}
	rows := e.rowCount[:h]

	var mass, moment int
	for y := 0; y < h; y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+w*4]
		dark := 0
		for x := 0; x < w; x++ {
			i := x * 4
			r, g, bb := row[i], row[i+1], row[i+2]
			if e.isDark(r, g, bb) {
				dark++
				continue
			}
			if hh, s, v := toHSV(r, g, bb); e.target.Contains(hh, s, v) {
				mass++
				moment += y
			}
		}
		rows[y] = dark
	}

	var out MarkerReading
	if mass > 0 {
		out.Target = At(moment / mass)
	}
	best, bestY := 0, -1
	for y, n := range rows {
		if n > best {
			best, bestY = n, y
		}
	}
	if bestY >= 0 && best >= e.minWidth {
		out.Control = At(bestY)
	}
	return out
}

func (e *MarkerExtractor) isDark(r, g, b uint8) bool {
	return r >= e.darkMin && r <= e.darkMax &&
		g >= e.darkMin && g <= e.darkMax &&
		b >= e.darkMin && b <= e.darkMax
}

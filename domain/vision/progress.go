package vision

import (
	"image"

	"github.com/soocke/reelbot-go/config"
)

// ProgressEstimator measures the fill level of the progress bar as the share
// of pixels inside a broad green HSV band. Single-frame, no smoothing.
type ProgressEstimator struct {
	band config.HSVRange
}

// NewProgressEstimator returns an estimator configured from cfg.
func NewProgressEstimator(cfg *config.Config) *ProgressEstimator {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &ProgressEstimator{band: cfg.ProgressHSV}
}

// Estimate returns the completion percentage in [0,100]. Empty frames yield 0.
func (p *ProgressEstimator) Estimate(frame *image.RGBA) float64 {
	if frame == nil {
		return 0
	}
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	total := w * h
	if w <= 0 || h <= 0 || len(frame.Pix) < (h-1)*frame.Stride+w*4 {
		return 0
	}
	matching := 0
	for y := 0; y < h; y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+w*4]
		for x := 0; x < w; x++ {
			i := x * 4
			if hh, s, v := toHSV(row[i], row[i+1], row[i+2]); p.band.Contains(hh, s, v) {
				matching++
			}
		}
	}
	return float64(matching) / float64(total) * 100
}

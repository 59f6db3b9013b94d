package region

import (
	"errors"
	"image"

	"gocv.io/x/gocv"

	"github.com/soocke/reelbot-go/config"
)

// BarCriteria configures the vertical-bar heuristic applied to contour
// bounding boxes.
type BarCriteria struct {
	HSV       config.HSVRange
	MinHeight int
	MinWidth  int
	Aspect    int // height must exceed Aspect * width
	Kernel    int
}

// CriteriaFromConfig extracts the bar heuristic from cfg.
func CriteriaFromConfig(cfg *config.Config) BarCriteria {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return BarCriteria{
		HSV:       cfg.BarHSV,
		MinHeight: cfg.BarMinHeight,
		MinWidth:  cfg.BarMinWidth,
		Aspect:    cfg.BarAspect,
		Kernel:    cfg.MorphKernel,
	}
}

// Accept reports whether a bounding box looks like the control bar.
func (c BarCriteria) Accept(bb image.Rectangle) bool {
	w, h := bb.Dx(), bb.Dy()
	return h > c.MinHeight && w > c.MinWidth && h > c.Aspect*w
}

// FindBar thresholds frame for the bar colour in HSV space, removes speckle
// with a morphological close then open, and returns the bounding box of the
// first external contour accepted by the criteria. Coordinates are relative
// to frame.Bounds().Min.
func FindBar(frame *image.RGBA, crit BarCriteria) (image.Rectangle, bool, error) {
	if frame == nil || frame.Bounds().Empty() {
		return image.Rectangle{}, false, errors.New("region: empty frame")
	}
	src, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return image.Rectangle{}, false, err
	}
	defer src.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(src, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	defer mask.Close()
	lower := gocv.NewScalar(float64(crit.HSV.Lower[0]), float64(crit.HSV.Lower[1]), float64(crit.HSV.Lower[2]), 0)
	upper := gocv.NewScalar(float64(crit.HSV.Upper[0]), float64(crit.HSV.Upper[1]), float64(crit.HSV.Upper[2]), 0)
	gocv.InRangeWithScalar(hsv, lower, upper, &mask)

	k := crit.Kernel
	if k <= 0 {
		k = 5
	}
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(k, k))
	defer kernel.Close()
	gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)
	gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, kernel)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	for i := 0; i < contours.Size(); i++ {
		bb := gocv.BoundingRect(contours.At(i))
		if crit.Accept(bb) {
			return bb, true, nil
		}
	}
	return image.Rectangle{}, false, nil
}

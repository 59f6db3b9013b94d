package region

import (
	"errors"
	"fmt"
	"image"

	"github.com/soocke/reelbot-go/config"
)

var (
	// ErrNotFound is returned when no control bar was found within the attempt budget.
	ErrNotFound = errors.New("region: control bar not found")
	// ErrUserCancelled is returned when interactive calibration is aborted.
	ErrUserCancelled = errors.New("region: calibration cancelled")
)

// Region is a pixel rectangle in screen coordinates.
type Region struct {
	Top    int
	Left   int
	Width  int
	Height int
}

// Valid reports whether the region has a positive size and a non-negative origin.
func (r Region) Valid() bool {
	return r.Width > 0 && r.Height > 0 && r.Left >= 0 && r.Top >= 0
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

// Origin returns the top-left corner.
func (r Region) Origin() image.Point { return image.Pt(r.Left, r.Top) }

func (r Region) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.Left, r.Top)
}

// Pair holds the control bar and the progress bar regions. A pair is replaced
// wholesale on recalibration.
type Pair struct {
	Control  Region
	Progress Region
}

// Valid reports whether both regions are valid.
func (p Pair) Valid() bool { return p.Control.Valid() && p.Progress.Valid() }

// Layout is the fixed geometry of the minigame: the detector only trusts the
// position of the control bar, sizes and the progress offset are constants.
type Layout struct {
	ControlWidth    int
	ControlHeight   int
	ProgressOffsetX int
	ProgressOffsetY int
	ProgressWidth   int
	ProgressHeight  int
}

// LayoutFromConfig extracts the fixed layout from cfg.
func LayoutFromConfig(cfg *config.Config) Layout {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return Layout{
		ControlWidth:    cfg.ControlWidth,
		ControlHeight:   cfg.ControlHeight,
		ProgressOffsetX: cfg.ProgressOffsetX,
		ProgressOffsetY: cfg.ProgressOffsetY,
		ProgressWidth:   cfg.ProgressWidth,
		ProgressHeight:  cfg.ProgressHeight,
	}
}

// FromOrigin builds both regions from the control bar's top-left corner.
func (l Layout) FromOrigin(p image.Point) (Pair, error) {
	pair := Pair{
		Control: Region{Top: p.Y, Left: p.X, Width: l.ControlWidth, Height: l.ControlHeight},
		Progress: Region{
			Top:    p.Y + l.ProgressOffsetY,
			Left:   p.X + l.ProgressOffsetX,
			Width:  l.ProgressWidth,
			Height: l.ProgressHeight,
		},
	}
	if !pair.Valid() {
		return Pair{}, fmt.Errorf("region: invalid layout at %v: control=%v progress=%v", p, pair.Control, pair.Progress)
	}
	return pair, nil
}

// FromCalibration rebuilds the region pair from a persisted calibration record.
func (l Layout) FromCalibration(c config.Calibration) (Pair, error) {
	return l.FromOrigin(image.Pt(c.X, c.Y))
}

// Calibration returns the persisted form of the pair.
func (p Pair) Calibration() config.Calibration {
	return config.Calibration{X: p.Control.Left, Y: p.Control.Top}
}

package capture

import (
	"errors"
	"fmt"
	"image"

	"github.com/vova616/screenshot"
)

var errNilFrame = errors.New("capture: nil frame")

// Grab returns a screen capture of the primary monitor.
func Grab() (*image.RGBA, error) {
	return screenshot.CaptureScreen()
}

// GrabSelection captures sel clipped to the screen bounds.
func GrabSelection(sel image.Rectangle) (*image.RGBA, error) {
	if sel.Empty() {
		return nil, errors.New("capture: empty selection")
	}
	screen, err := screenshot.ScreenRect()
	if err != nil {
		return nil, err
	}
	r := sel.Intersect(screen)
	if r.Empty() {
		return nil, fmt.Errorf("capture: selection out of bounds sel=%v screen=%v", sel, screen)
	}
	return screenshot.CaptureRect(r)
}

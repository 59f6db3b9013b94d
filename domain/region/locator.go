package region

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"
)

// Locator determines the control and progress regions.
type Locator interface {
	Locate(ctx context.Context) (Pair, error)
}

// ScreenSource captures the whole screen.
type ScreenSource interface {
	CaptureScreen() (*image.RGBA, error)
}

// AutoLocator scans full-screen captures for the control bar.
type AutoLocator struct {
	Screen   ScreenSource
	Layout   Layout
	Criteria BarCriteria
	Attempts int
	Interval time.Duration
	Logger   *slog.Logger

	// find is swapped in tests to avoid an OpenCV round trip.
	find func(*image.RGBA, BarCriteria) (image.Rectangle, bool, error)
}

// NewAutoLocator returns an AutoLocator with the given attempt budget.
func NewAutoLocator(screen ScreenSource, layout Layout, crit BarCriteria, attempts int, interval time.Duration, logger *slog.Logger) *AutoLocator {
	if attempts <= 0 {
		attempts = 1
	}
	return &AutoLocator{Screen: screen, Layout: layout, Criteria: crit, Attempts: attempts, Interval: interval, Logger: logger, find: FindBar}
}

// Scan performs a single detection attempt and returns the control bar's
// top-left corner in screen coordinates.
func (a *AutoLocator) Scan() (image.Point, bool, error) {
	if a.Screen == nil {
		return image.Point{}, false, fmt.Errorf("region: no screen source")
	}
	frame, err := a.Screen.CaptureScreen()
	if err != nil {
		return image.Point{}, false, err
	}
	find := a.find
	if find == nil {
		find = FindBar
	}
	bb, ok, err := find(frame, a.Criteria)
	if err != nil || !ok {
		return image.Point{}, false, err
	}
	// Only the position is trusted; detected width/height are noisy.
	return bb.Min.Add(frame.Bounds().Min), true, nil
}

// Locate retries Scan up to Attempts times, sleeping Interval between
// attempts. It fails with ErrNotFound when the budget is exhausted.
func (a *AutoLocator) Locate(ctx context.Context) (Pair, error) {
	attempts := a.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return Pair{}, err
		}
		origin, ok, err := a.Scan()
		if err != nil && a.Logger != nil {
			a.Logger.Debug("bar scan failed", "attempt", i+1, "error", err)
		}
		if ok {
			pair, err := a.Layout.FromOrigin(origin)
			if err != nil {
				return Pair{}, err
			}
			if a.Logger != nil {
				a.Logger.Info("control bar located", "attempt", i+1, "control", pair.Control.String(), "progress", pair.Progress.String())
			}
			return pair, nil
		}
		if i < attempts-1 && a.Interval > 0 {
			select {
			case <-ctx.Done():
				return Pair{}, ctx.Err()
			case <-time.After(a.Interval):
			}
		}
	}
	return Pair{}, fmt.Errorf("%w after %d attempts", ErrNotFound, attempts)
}

// PromptFunc asks the user to position a rectangle over the control bar and
// returns the confirmed top-left corner. It returns ErrUserCancelled when the
// user aborts.
type PromptFunc func(ctx context.Context, initial image.Rectangle) (image.Point, error)

// ManualLocator accepts a user-positioned rectangle sized to the fixed
// control bar dimensions.
type ManualLocator struct {
	Prompt  PromptFunc
	Layout  Layout
	Initial image.Point
}

// Locate blocks until the prompt returns.
func (m *ManualLocator) Locate(ctx context.Context) (Pair, error) {
	if m.Prompt == nil {
		return Pair{}, ErrUserCancelled
	}
	init := image.Rectangle{Min: m.Initial, Max: m.Initial.Add(image.Pt(m.Layout.ControlWidth, m.Layout.ControlHeight))}
	origin, err := m.Prompt(ctx, init)
	if err != nil {
		return Pair{}, err
	}
	return m.Layout.FromOrigin(origin)
}

// Recalibrate compares a freshly scanned control bar origin against the
// current pair and returns a replacement pair when the bar moved by more than
// threshold pixels on either axis.
func Recalibrate(current Pair, origin image.Point, layout Layout, threshold int) (Pair, bool) {
	dx := abs(origin.X - current.Control.Left)
	dy := abs(origin.Y - current.Control.Top)
	if dx <= threshold && dy <= threshold {
		return current, false
	}
	next, err := layout.FromOrigin(origin)
	if err != nil {
		return current, false
	}
	return next, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

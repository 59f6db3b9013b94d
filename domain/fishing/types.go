package fishing

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/soocke/reelbot-go/domain/control"
	"github.com/soocke/reelbot-go/domain/region"
	"github.com/soocke/reelbot-go/domain/vision"
)

// SessionState enumerates the states of a tracking session.
type SessionState int

const (
	StateUninitialized SessionState = iota
	StateCalibrating
	StateTracking
	StateSignalLost
	StateCompleted
)

func (s SessionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCalibrating:
		return "calibrating"
	case StateTracking:
		return "tracking"
	case StateSignalLost:
		return "signal_lost"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// StateListener is called on each successful state transition.
type StateListener func(prev, next SessionState)

var (
	ErrNotCalibrated = errors.New("session not calibrated")
	ErrCalibrating   = errors.New("calibration in progress")
	ErrRunning       = errors.New("session is running")
)

// FrameSource captures a screen rectangle.
type FrameSource interface {
	Capture(r image.Rectangle) (*image.RGBA, error)
}

// MarkerSource extracts marker positions from a control-bar frame.
type MarkerSource interface {
	Extract(*image.RGBA) vision.MarkerReading
}

// ProgressSource estimates completion from a progress-bar frame.
type ProgressSource interface {
	Estimate(*image.RGBA) float64
}

// Scanner performs a single control-bar detection pass.
type Scanner interface {
	Scan() (image.Point, bool, error)
}

// Actuator is the subset of the actuation driver the session needs.
type Actuator interface {
	Tick(cmd control.Command, now time.Time) error
	Release() error
	Click() error
	Pressed() bool
}

// Telemetry is a snapshot of the last loop iteration.
type Telemetry struct {
	State        SessionState
	Running      bool
	Focused      bool
	Reading      vision.MarkerReading
	Command      control.Command
	Progress     float64
	Pressed      bool
	FPS          float64
	Catches      int
	Regions      region.Pair
	ControlFrame *image.RGBA
	At           time.Time
}

// Status renders the telemetry as a single status line.
func (t Telemetry) Status() string {
	switch {
	case t.State == StateCalibrating:
		return "calibrating..."
	case !t.Running:
		return fmt.Sprintf("stopped | catches %d", t.Catches)
	case !t.Focused:
		return "waiting for game window"
	case t.State == StateTracking:
		return fmt.Sprintf("tracking | progress %.0f%% | %s", t.Progress, t.Command)
	default:
		return fmt.Sprintf("%s | catches %d", t.State, t.Catches)
	}
}

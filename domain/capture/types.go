package capture

import (
	"image"
	"time"
)

// Sampler captures raw pixel buffers from the live display.
type Sampler interface {
	// Capture grabs the given screen rectangle.
	Capture(r image.Rectangle) (*image.RGBA, error)
	// CaptureScreen grabs the full primary screen.
	CaptureScreen() (*image.RGBA, error)
	Stats() CaptureStats
}

// CaptureStats summarises sampler behaviour for instrumentation.
type CaptureStats struct {
	Captures         uint64
	Failures         uint64
	AvgCapture       time.Duration
	AvgCaptureMicros float64
	LastCapture      time.Time
}

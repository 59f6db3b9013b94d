package capture

import (
	"image"
	"log/slog"
	"sync/atomic"
	"time"
)

const captureStatsLogInterval = 5 * time.Second

type screenSampler struct {
	logger       *slog.Logger
	grab         func() (*image.RGBA, error)
	grabRect     func(image.Rectangle) (*image.RGBA, error)
	captures     atomic.Uint64
	failures     atomic.Uint64
	captureNanos atomic.Uint64
	lastNanos    atomic.Int64
	lastLog      atomic.Int64
}

// NewSampler returns a Sampler backed by the screenshot library.
func NewSampler(logger *slog.Logger) Sampler {
	return &screenSampler{logger: logger, grab: Grab, grabRect: GrabSelection}
}

func (s *screenSampler) Capture(r image.Rectangle) (*image.RGBA, error) {
	return s.measure(func() (*image.RGBA, error) { return s.grabRect(r) })
}

func (s *screenSampler) CaptureScreen() (*image.RGBA, error) {
	return s.measure(s.grab)
}

func (s *screenSampler) measure(fn func() (*image.RGBA, error)) (*image.RGBA, error) {
	start := time.Now()
	img, err := fn()
	if err != nil || img == nil {
		s.failures.Add(1)
		if err == nil {
			err = errNilFrame
		}
		return nil, err
	}
	s.captureNanos.Add(uint64(time.Since(start).Nanoseconds()))
	s.captures.Add(1)
	now := time.Now()
	s.lastNanos.Store(now.UnixNano())
	if last := s.lastLog.Load(); now.UnixNano()-last >= int64(captureStatsLogInterval) && s.lastLog.CompareAndSwap(last, now.UnixNano()) {
		s.logStats()
	}
	return img, nil
}

func (s *screenSampler) Stats() CaptureStats {
	captures := s.captures.Load()
	total := s.captureNanos.Load()
	var avg time.Duration
	avgMicros := 0.0
	if captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
		avgMicros = float64(avg) / float64(time.Microsecond)
	}
	var last time.Time
	if n := s.lastNanos.Load(); n > 0 {
		last = time.Unix(0, n)
	}
	return CaptureStats{
		Captures:         captures,
		Failures:         s.failures.Load(),
		AvgCapture:       avg,
		AvgCaptureMicros: avgMicros,
		LastCapture:      last,
	}
}

func (s *screenSampler) logStats() {
	if s.logger == nil {
		return
	}
	stats := s.Stats()
	s.logger.Debug("capture.stats",
		"captures", stats.Captures,
		"failures", stats.Failures,
		"avg_capture", stats.AvgCapture,
	)
}

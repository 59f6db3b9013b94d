package model

import (
	"sync/atomic"
	"time"
)

// PreviewModel tracks whether the control-bar preview is shown and throttles
// its refresh rate. The zero value is disabled and refreshes on every tick.
// The enabled flag is atomic because hotkey callbacks and presenter ticks may race.
type PreviewModel struct {
	enabled  atomic.Bool
	interval time.Duration
	last     time.Time
}

// NewPreviewModel returns an enabled model refreshing at most once per interval.
func NewPreviewModel(interval time.Duration) *PreviewModel {
	m := &PreviewModel{interval: interval}
	m.enabled.Store(true)
	return m
}

// Enabled reports whether the preview is shown.
func (m *PreviewModel) Enabled() bool {
	if m == nil {
		return false
	}
	return m.enabled.Load()
}

// SetEnabled stores the enabled flag.
func (m *PreviewModel) SetEnabled(b bool) {
	if m == nil {
		return
	}
	m.enabled.Store(b)
}

// Due reports whether a refresh should happen at now and records it if so.
// Only call from the UI thread.
func (m *PreviewModel) Due(now time.Time) bool {
	if !m.Enabled() {
		return false
	}
	if !m.last.IsZero() && now.Sub(m.last) < m.interval {
		return false
	}
	m.last = now
	return true
}

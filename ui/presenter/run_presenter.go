package presenter

import (
	"errors"
	"log/slog"

	"github.com/soocke/reelbot-go/domain/fishing"
)

// RunControl narrows what the presenter needs from the session.
type RunControl interface {
	Start() error
	Stop()
	Running() bool
}

// RunView updates UI elements affected by starting and stopping the session.
// State label updates are owned by StatePresenter.
type RunView interface {
	PreviewReset()
	ConfigEditable(bool)
	SetStatus(string)
}

// RunPresenter owns presentation logic for toggling the tracking session.
type RunPresenter struct {
	session RunControl
	view    RunView
	logger  *slog.Logger
}

func NewRunPresenter(session RunControl, view RunView, logger *slog.Logger) *RunPresenter {
	return &RunPresenter{session: session, view: view, logger: logger}
}

// Enable starts the session and locks the config panel. Idempotent.
func (p *RunPresenter) Enable() {
	if p == nil || p.session == nil || p.view == nil {
		return
	}
	if p.session.Running() {
		return
	}
	if err := p.session.Start(); err != nil {
		msg := "cannot start: " + err.Error()
		if errors.Is(err, fishing.ErrNotCalibrated) {
			msg = "calibrate first (auto or manual)"
		}
		p.view.SetStatus(msg)
		if p.logger != nil {
			p.logger.Warn("session start refused", "error", err)
		}
		return
	}
	p.view.ConfigEditable(false)
}

// Disable stops the session, resets the preview and unlocks the config panel. Idempotent.
func (p *RunPresenter) Disable() {
	if p == nil || p.session == nil || p.view == nil {
		return
	}
	if !p.session.Running() {
		return
	}
	p.session.Stop()
	p.view.PreviewReset()
	p.view.ConfigEditable(true)
}

// Toggle flips the running state delegating to Enable/Disable.
func (p *RunPresenter) Toggle() {
	if p == nil || p.session == nil {
		return
	}
	if p.session.Running() {
		p.Disable()
		return
	}
	p.Enable()
}

// Sync re-enables editing when the session stopped on its own (fault or
// calibration). Call from the UI tick.
func (p *RunPresenter) Sync(wasRunning bool) bool {
	if p == nil || p.session == nil || p.view == nil {
		return false
	}
	running := p.session.Running()
	if wasRunning && !running {
		p.view.ConfigEditable(true)
	}
	return running
}

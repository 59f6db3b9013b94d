package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It drains the inbox, calls Tick on the sub-presenters and invokes a
// scheduler callback. The zero value is usable (methods are nil-safe).
type Loop struct {
	Inbox       *Inbox
	Run         *RunPresenter
	Session     *SessionPresenter
	State       *StatePresenter
	Telemetry   *TelemetryPresenter
	Calibration *CalibrationPresenter
	Schedule    func()

	running bool
}

func NewLoop(inbox *Inbox, run *RunPresenter, sess *SessionPresenter, state *StatePresenter, tel *TelemetryPresenter, cal *CalibrationPresenter, schedule func()) *Loop {
	return &Loop{Inbox: inbox, Run: run, Session: sess, State: state, Telemetry: tel, Calibration: cal, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	l.Inbox.Drain()
	if l.Calibration != nil {
		l.Calibration.Tick()
	}
	if l.Run != nil {
		l.running = l.Run.Sync(l.running)
	}
	if l.State != nil {
		l.State.Tick(now)
	}
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.Telemetry != nil {
		l.Telemetry.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}

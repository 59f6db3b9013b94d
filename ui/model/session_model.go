package model

import (
	"time"
)

// SessionModel tracks the current run duration, the accumulated active time
// and the catches made during the current run.
// It is decoupled from the UI; presenters should poll Values() and update views.
// The zero value is ready to use.
type SessionModel struct {
	active              bool
	runStart            time.Time
	lastSessionDuration time.Duration
	accumulated         time.Duration
	catchesAtStart      int
	catches             int
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick updates the model from the running flag, the persisted catch count
// and the current timestamp. Call periodically (for example, from a presenter tick).
func (m *SessionModel) OnTick(running bool, catches int, now time.Time) {
	if m == nil {
		return
	}
	m.catches = catches
	if running {
		if !m.active { // off -> on
			m.active = true
			m.runStart = now
			m.lastSessionDuration = 0
			m.catchesAtStart = catches
		}
		m.lastSessionDuration = now.Sub(m.runStart)
	} else if m.active { // on -> off
		m.lastSessionDuration = now.Sub(m.runStart)
		m.accumulated += m.lastSessionDuration
		m.active = false
	}
}

// Values returns the current session duration and the total accumulated duration.
// The total includes the ongoing session when active.
func (m *SessionModel) Values() (session, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	session = m.lastSessionDuration
	total = m.accumulated
	if m.active {
		total += session
	}
	return
}

// Catches returns the catches of the last run and the all-time count.
func (m *SessionModel) Catches() (session, total int) {
	if m == nil {
		return 0, 0
	}
	session = m.catches - m.catchesAtStart
	if session < 0 {
		session = 0
	}
	return session, m.catches
}

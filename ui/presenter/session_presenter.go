package presenter

import (
	"time"

	"github.com/soocke/reelbot-go/ui/model"
)

// SessionSource reports whether the loop runs and the persisted catch count.
type SessionSource interface {
	Running() bool
	Catches() int
}

// SessionView displays formatted durations and catch counts.
type SessionView interface {
	SetSession(session, total time.Duration)
	SetCatches(session, total int)
}

// SessionPresenter pushes run durations and catches from the model to the view.
type SessionPresenter struct {
	sess *model.SessionModel
	src  SessionSource
	view SessionView
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(sess *model.SessionModel, src SessionSource, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, src: src, view: view}
}

// Tick advances the session model and pushes values to the view.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.src == nil || p.view == nil {
		return
	}
	p.sess.OnTick(p.src.Running(), p.src.Catches(), now)
	s, t := p.sess.Values()
	p.view.SetSession(s, t)
	sc, tc := p.sess.Catches()
	p.view.SetCatches(sc, tc)
}

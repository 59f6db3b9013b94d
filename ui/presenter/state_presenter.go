package presenter

import (
	"sync"
	"time"

	"github.com/soocke/reelbot-go/domain/fishing"
)

// StateView sets the state label in the view.
type StateView interface{ SetStateLabel(state fishing.SessionState) }

// StatePresenter receives session transitions from the loop goroutine and
// reflects the latest one on the next UI tick.
type StatePresenter struct {
	view StateView

	mu      sync.Mutex
	latest  fishing.SessionState
	shown   bool
	pending []fishing.SessionState
}

func NewStatePresenter(view StateView) *StatePresenter {
	return &StatePresenter{view: view}
}

// OnState is a fishing.StateListener. Safe to call from any goroutine.
func (p *StatePresenter) OnState(prev, next fishing.SessionState) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, next)
	p.mu.Unlock()
}

// Tick processes queued states and updates the view with the most recent state.
// It clears the pending queue after processing.
func (p *StatePresenter) Tick(now time.Time) {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	if len(p.pending) == 0 {
		p.mu.Unlock()
		return
	}
	last := p.pending[len(p.pending)-1]
	p.pending = p.pending[:0]
	p.mu.Unlock()
	if p.shown && last == p.latest {
		return
	}
	p.latest, p.shown = last, true
	p.view.SetStateLabel(last)
}

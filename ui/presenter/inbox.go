package presenter

// Inbox hands callbacks from background goroutines (global hotkeys) to the
// UI thread, where Drain runs them.
type Inbox struct{ ch chan func() }

func NewInbox(size int) *Inbox {
	if size < 1 {
		size = 1
	}
	return &Inbox{ch: make(chan func(), size)}
}

// Post queues fn without blocking. It reports false when the inbox is full.
func (i *Inbox) Post(fn func()) bool {
	if i == nil || fn == nil {
		return false
	}
	select {
	case i.ch <- fn:
		return true
	default:
		return false
	}
}

// Drain runs all queued callbacks.
func (i *Inbox) Drain() {
	if i == nil {
		return
	}
	for {
		select {
		case fn := <-i.ch:
			fn()
		default:
			return
		}
	}
}

// Package hotkey listens for global key combinations and forwards them to
// the session controls.
package hotkey

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	hook "github.com/robotn/gohook"
)

// Binding maps a key combination such as "f6" or "ctrl+f7" to an action.
type Binding struct {
	Keys   string
	Action func()
}

// Listener dispatches global key-down events to bindings. Auto-repeat of a
// held key is suppressed with a per-binding debounce.
type Listener struct {
	logger   *slog.Logger
	bindings []Binding
	debounce time.Duration

	mu   sync.Mutex
	last map[int]time.Time
}

// NewListener returns a listener for the given bindings. Bindings with an
// empty key or nil action are ignored.
func NewListener(logger *slog.Logger, bindings ...Binding) *Listener {
	l := &Listener{logger: logger, debounce: 300 * time.Millisecond, last: make(map[int]time.Time)}
	for _, b := range bindings {
		if len(Combo(b.Keys)) == 0 || b.Action == nil {
			continue
		}
		l.bindings = append(l.bindings, b)
	}
	return l
}

// Combo splits a "+"-separated key description into gohook key names.
func Combo(keys string) []string {
	var out []string
	for _, k := range strings.Split(keys, "+") {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Run registers the bindings and processes events until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) {
	if len(l.bindings) == 0 {
		return
	}
	for i, b := range l.bindings {
		i, b := i, b
		hook.Register(hook.KeyDown, Combo(b.Keys), func(hook.Event) {
			l.fire(i, time.Now())
		})
		if l.logger != nil {
			l.logger.Info("hotkey registered", "keys", b.Keys)
		}
	}
	s := hook.Start()
	go func() {
		<-ctx.Done()
		hook.End()
	}()
	<-hook.Process(s)
}

// fire runs binding i unless it fired within the debounce window.
func (l *Listener) fire(i int, now time.Time) bool {
	if i < 0 || i >= len(l.bindings) {
		return false
	}
	l.mu.Lock()
	if last, ok := l.last[i]; ok && now.Sub(last) < l.debounce {
		l.mu.Unlock()
		return false
	}
	l.last[i] = now
	l.mu.Unlock()
	defer func() {
		if r := recover(); r != nil && l.logger != nil {
			l.logger.Error("hotkey action panic", "keys", l.bindings[i].Keys, "error", r)
		}
	}()
	if l.logger != nil {
		l.logger.Debug("hotkey", "keys", l.bindings[i].Keys)
	}
	l.bindings[i].Action()
	return true
}

package hotkey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCombo(t *testing.T) {
	assert.Equal(t, []string{"f6"}, Combo("F6"))
	assert.Equal(t, []string{"ctrl", "shift", "r"}, Combo(" Ctrl + Shift+R "))
	assert.Empty(t, Combo(""))
	assert.Empty(t, Combo(" + "))
}

func TestNewListenerSkipsInvalidBindings(t *testing.T) {
	l := NewListener(nil,
		Binding{Keys: "f6", Action: func() {}},
		Binding{Keys: "", Action: func() {}},
		Binding{Keys: "f7"},
	)
	assert.Len(t, l.bindings, 1)
}

func TestFireDebouncesRepeats(t *testing.T) {
	var toggles, calibrations int
	l := NewListener(nil,
		Binding{Keys: "f6", Action: func() { toggles++ }},
		Binding{Keys: "f7", Action: func() { calibrations++ }},
	)
	base := time.Unix(0, 0)
	assert.True(t, l.fire(0, base))
	assert.False(t, l.fire(0, base.Add(100*time.Millisecond)), "auto-repeat suppressed")
	assert.True(t, l.fire(1, base.Add(100*time.Millisecond)), "bindings debounce independently")
	assert.True(t, l.fire(0, base.Add(400*time.Millisecond)))
	assert.False(t, l.fire(5, base))
	assert.Equal(t, 2, toggles)
	assert.Equal(t, 1, calibrations)
}

func TestFireRecoversPanics(t *testing.T) {
	l := NewListener(nil, Binding{Keys: "f6", Action: func() { panic("boom") }})
	assert.NotPanics(t, func() { l.fire(0, time.Unix(0, 0)) })
}

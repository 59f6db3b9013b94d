//go:build !windows

package action

import (
	"strings"

	"github.com/go-vgo/robotgo"
)

// MouseEffector drives the left mouse button through robotgo.
type MouseEffector struct{}

// NewEffector returns the platform effector.
func NewEffector() Effector { return MouseEffector{} }

func (MouseEffector) Press() error { return robotgo.Toggle("left") }

func (MouseEffector) Release() error { return robotgo.Toggle("left", "up") }

func (MouseEffector) Click() error {
	robotgo.Click("left")
	return nil
}

// ForegroundWindowTitle returns the title of the active window.
func ForegroundWindowTitle() (string, error) {
	return strings.TrimSpace(robotgo.GetTitle()), nil
}

// ScreenSize returns the primary display resolution.
func ScreenSize() (int, int) { return robotgo.GetScreenSize() }

//go:build windows

package action

import (
	"errors"
	"strings"
	"time"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	mouseEventLeftDown = 0x0002
	mouseEventLeftUp   = 0x0004
)

var (
	user32              = windows.NewLazySystemDLL("user32.dll")
	procMouseEvent      = user32.NewProc("mouse_event")
	getForegroundWindow = user32.NewProc("GetForegroundWindow")
	getWindowTextW      = user32.NewProc("GetWindowTextW")
	getSystemMetrics    = user32.NewProc("GetSystemMetrics")
)

// MouseEffector drives the left mouse button with the legacy mouse_event API.
type MouseEffector struct{}

// NewEffector returns the platform effector.
func NewEffector() Effector { return MouseEffector{} }

func mouseEvent(flags uintptr) error {
	if err := procMouseEvent.Find(); err != nil {
		return err
	}
	_, _, _ = procMouseEvent.Call(flags, 0, 0, 0, 0)
	return nil
}

// Press sends a left button down.
func (MouseEffector) Press() error { return mouseEvent(mouseEventLeftDown) }

// Release sends a left button up.
func (MouseEffector) Release() error { return mouseEvent(mouseEventLeftUp) }

// Click sends down then up with a short human-like hold.
func (MouseEffector) Click() error {
	if err := mouseEvent(mouseEventLeftDown); err != nil {
		return err
	}
	time.Sleep(30 * time.Millisecond)
	return mouseEvent(mouseEventLeftUp)
}

// ForegroundWindowTitle returns the title of the current foreground window.
// If no foreground window is available an error is returned.
func ForegroundWindowTitle() (string, error) {
	hwnd, _, _ := getForegroundWindow.Call()
	if hwnd == 0 {
		return "", errors.New("no foreground window")
	}
	buf := make([]uint16, 256)
	r, _, _ := getWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if r == 0 {
		return "", nil
	}
	end := int(r)
	for i, v := range buf {
		if v == 0 {
			end = i
			break
		}
	}
	return strings.TrimSpace(string(utf16.Decode(buf[:end]))), nil
}

// ScreenSize returns the primary display resolution.
func ScreenSize() (int, int) {
	cx, _, _ := getSystemMetrics.Call(uintptr(0)) // SM_CXSCREEN
	cy, _, _ := getSystemMetrics.Call(uintptr(1)) // SM_CYSCREEN
	return int(cx), int(cy)
}

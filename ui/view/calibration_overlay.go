package view

import (
	"fmt"
	"image"
	"log/slog"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

const overlayKey = "#008080"

// CalibrationOverlay is a see-through window the user drags over the control
// bar. Its client area has the control bar's size; confirming reports the
// client area's top-left corner.
type CalibrationOverlay struct {
	logger *slog.Logger
	win    *ToplevelWidget
	size   image.Point
	done   func(image.Point, bool)
}

// NewCalibrationOverlay returns an overlay manager. Nothing is shown until Open.
func NewCalibrationOverlay(logger *slog.Logger) *CalibrationOverlay {
	return &CalibrationOverlay{logger: logger}
}

// Open shows the overlay at initial. A second Open while one is showing
// cancels the first.
func (v *CalibrationOverlay) Open(initial image.Rectangle, done func(origin image.Point, ok bool)) {
	if v.win != nil {
		v.finish(image.Point{}, false)
	}
	v.done = done
	v.size = initial.Size()
	win := App.Toplevel(Borderwidth(2), Background(overlayKey))
	win.WmTitle("Place over the control bar")
	v.win = win
	WmGeometry(win.Window, fmt.Sprintf("%dx%d+%d+%d", v.size.X, v.size.Y, initial.Min.X, initial.Min.Y))
	WmAttributes(win.Window, "-topmost", 1)
	if runtime.GOOS == "windows" {
		WmAttributes(win.Window, "-toolwindow", true)
		WmAttributes(win.Window, "-transparentcolor", overlayKey)
	} else {
		WmAttributes(win.Window, "-alpha", 0.5)
	}
	GridRowConfigure(win.Window, 0, Weight(1))
	GridColumnConfigure(win.Window, 1, Weight(1))
	left := win.Frame(Width(2), Background("#FFFFFF"))
	Grid(left, Row(0), Column(0), Sticky("ns"))
	center := win.Frame(Background(overlayKey))
	Grid(center, Row(0), Column(1), Sticky("nsew"))
	right := win.Frame(Width(2), Background("#FFFFFF"))
	Grid(right, Row(0), Column(2), Sticky("ns"))
	Bind(win, "<Return>", Command(v.confirm))
	Bind(win, "<Escape>", Command(v.cancel))
	for key, d := range map[string]image.Point{
		"<Left>": {-1, 0}, "<Right>": {1, 0}, "<Up>": {0, -1}, "<Down>": {0, 1},
		"<Shift-Left>": {-10, 0}, "<Shift-Right>": {10, 0}, "<Shift-Up>": {0, -10}, "<Shift-Down>": {0, 10},
	} {
		Bind(win, key, Command(func() { v.nudge(d) }))
	}
	WmProtocol(win.Window, "WM_DELETE_WINDOW", v.cancel)
	// Key bindings only fire while the overlay has keyboard focus.
	Focus(win.Window)
}

func (v *CalibrationOverlay) nudge(d image.Point) {
	if v.win == nil {
		return
	}
	rect, ok := parseGeometry(WmGeometry(v.win.Window))
	if !ok {
		return
	}
	p := rect.Min.Add(d)
	WmGeometry(v.win.Window, fmt.Sprintf("%dx%d+%d+%d", v.size.X, v.size.Y, p.X, p.Y))
}

func (v *CalibrationOverlay) confirm() {
	if v.win == nil {
		return
	}
	geom := WmGeometry(v.win.Window)
	rect, ok := parseGeometry(geom)
	if !ok {
		if v.logger != nil {
			v.logger.Warn("overlay geometry unreadable", "geometry", geom)
		}
		v.finish(image.Point{}, false)
		return
	}
	v.finish(rect.Min, true)
}

func (v *CalibrationOverlay) cancel() { v.finish(image.Point{}, false) }

func (v *CalibrationOverlay) finish(origin image.Point, ok bool) {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
	}
	done := v.done
	v.done = nil
	if done != nil {
		done(origin, ok)
	}
}

// geomRe matches Tk geometry strings "WIDTHxHEIGHT+X+Y".
var geomRe = regexp.MustCompile(`^(\d+)x(\d+)([+-]-?\d+)([+-]-?\d+)$`)

// parseGeometry parses a Tk geometry string into a screen rectangle.
func parseGeometry(g string) (image.Rectangle, bool) {
	m := geomRe.FindStringSubmatch(strings.TrimSpace(g))
	if len(m) != 5 {
		return image.Rectangle{}, false
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	x, err1 := strconv.Atoi(strings.TrimPrefix(m[3], "+"))
	y, err2 := strconv.Atoi(strings.TrimPrefix(m[4], "+"))
	if w <= 0 || h <= 0 || err1 != nil || err2 != nil {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}

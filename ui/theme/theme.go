package theme

// Palette and ttk styles for the reel bot window. The state label switches
// between per-state styles so the session phase is readable at a glance.

import (
	"github.com/soocke/reelbot-go/domain/fishing"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Colors holds resolved colors for one mode.
type Colors struct {
	AppBg     string
	Surface   string
	Text      string
	TextMuted string
	Primary   string
	Danger    string
	Tracking  string
	Lost      string
	Completed string
	Idle      string
}

var (
	lightColors = Colors{
		AppBg:     "#f7f9fb",
		Surface:   "#ffffff",
		Text:      "#1e293b",
		TextMuted: "#64748b",
		Primary:   "#2563eb",
		Danger:    "#dc2626",
		Tracking:  "#10b981",
		Lost:      "#f59e0b",
		Completed: "#0ea5e9",
		Idle:      "#94a3b8",
	}
	darkColors = Colors{
		AppBg:     "#0f172a",
		Surface:   "#1e293b",
		Text:      "#f1f5f9",
		TextMuted: "#94a3b8",
		Primary:   "#3b82f6",
		Danger:    "#ef4444",
		Tracking:  "#059669",
		Lost:      "#d97706",
		Completed: "#0284c7",
		Idle:      "#475569",
	}
)

// Style names used with Style(...).
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleMutedLabel    = "muted.TLabel"
)

// StateStyle maps a session state to its label style name.
func StateStyle(s fishing.SessionState) string {
	switch s {
	case fishing.StateTracking:
		return "tracking.TLabel"
	case fishing.StateSignalLost:
		return "lost.TLabel"
	case fishing.StateCompleted:
		return "completed.TLabel"
	case fishing.StateCalibrating:
		return "calibrating.TLabel"
	default:
		return "idle.TLabel"
	}
}

// InitStyles activates the base theme and configures the styles for the
// light or dark palette.
func InitStyles(dark bool) {
	if dark {
		apply(darkColors)
		return
	}
	apply(lightColors)
}

func apply(p Colors) {
	_ = ActivateTheme("azure light")
	App.Configure(Background(p.AppBg))

	button := func(name, bg string) {
		StyleConfigure(name, Background(bg), Foreground("white"), Padding("4p 3p"), Borderwidth(1), Relief("ridge"))
	}
	button(StylePrimaryButton, p.Primary)
	button(StyleDangerButton, p.Danger)

	StyleConfigure(StyleMutedLabel, Foreground(p.TextMuted), Background(p.Surface), Padding("2p 1p"))

	states := map[fishing.SessionState]string{
		fishing.StateUninitialized: p.Idle,
		fishing.StateCalibrating:   p.Primary,
		fishing.StateTracking:      p.Tracking,
		fishing.StateSignalLost:    p.Lost,
		fishing.StateCompleted:     p.Completed,
	}
	for s, bg := range states {
		StyleConfigure(StateStyle(s), Foreground("white"), Background(bg), Padding("4p 2p"), Borderwidth(1), Relief("groove"))
	}
}

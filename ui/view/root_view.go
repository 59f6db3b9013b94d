package view

import (
	"image"
	"log/slog"
	"time"

	"github.com/soocke/reelbot-go/config"
	"github.com/soocke/reelbot-go/domain/fishing"
	"github.com/soocke/reelbot-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Handlers are the user actions wired by the application.
type Handlers struct {
	Toggle          func()
	CalibrateAuto   func()
	CalibrateManual func()
	Exit            func()
	// ConfigApplied receives the saved config. Optional.
	ConfigApplied func(*config.Config) error
}

// RootView composes the top-level layout. It implements the view contracts
// of the presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	Session     SessionStats
	ConfigPanel ConfigPanel
	Preview     BarPreview

	StateLabel     *TLabelWidget
	StatusLabel    *LabelWidget
	TelemetryLabel *LabelWidget
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	// Rows 0-1: session stats, state label, buttons
	rv.Session = NewSessionStats(nil, 0, 0)
	rv.StateLabel = TLabel(Txt(fishing.StateUninitialized.String()), Style(theme.StateStyle(fishing.StateUninitialized)))
	Grid(rv.StateLabel, Row(0), Column(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(3), Rowspan(2), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	buttons := []struct {
		label string
		style string
		fn    func()
	}{
		{"Start / Stop", theme.StylePrimaryButton, h.Toggle},
		{"Auto Calibrate", "", h.CalibrateAuto},
		{"Manual Calibrate", "", h.CalibrateManual},
		{"Exit", theme.StyleDangerButton, h.Exit},
	}
	for i, b := range buttons {
		if b.fn == nil {
			continue
		}
		opts := []Opt{Txt(b.label), Command(b.fn)}
		if b.style != "" {
			opts = append(opts, Style(b.style))
		}
		Grid(TButton(opts...), In(btnFrame), Row(i), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	}

	// Rows 2-3: status and marker readout
	rv.StatusLabel = Label(Txt("calibrate first (auto or manual)"), Anchor("w"))
	Grid(rv.StatusLabel, Row(2), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"))
	rv.TelemetryLabel = Label(Txt("target - | control - | progress -"), Anchor("w"))
	Grid(rv.TelemetryLabel, Row(3), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"))

	// Config form on the left, control-bar preview on the right
	const formRow = 4
	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger, h.ConfigApplied)
	end := rv.ConfigPanel.Build(formRow)
	rv.Preview = NewBarPreview(formRow, 3, end-formRow)
}

// SetStateLabel shows the session state with its style.
func (rv *RootView) SetStateLabel(s fishing.SessionState) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(s.String()), Style(theme.StateStyle(s)))
	}
}

// SetStatus shows the one-line status text.
func (rv *RootView) SetStatus(text string) {
	if rv != nil && rv.StatusLabel != nil {
		rv.StatusLabel.Configure(Txt(text))
	}
}

func (rv *RootView) SetTelemetry(text string) {
	if rv != nil && rv.TelemetryLabel != nil {
		rv.TelemetryLabel.Configure(Txt(text))
	}
}

func (rv *RootView) UpdatePreview(img image.Image) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.Update(img)
	}
}

func (rv *RootView) PreviewReset() {
	if rv != nil && rv.Preview != nil {
		rv.Preview.Reset()
	}
}

// ConfigEditable toggles config panel editability.
func (rv *RootView) ConfigEditable(enabled bool) {
	if rv != nil && rv.ConfigPanel != nil {
		rv.ConfigPanel.SetEditable(enabled)
	}
}

// SetSession updates both session and total run durations.
func (rv *RootView) SetSession(session, total time.Duration) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetSession(session)
	rv.Session.SetTotal(total)
}

func (rv *RootView) SetCatches(session, total int) {
	if rv != nil && rv.Session != nil {
		rv.Session.SetCatches(session, total)
	}
}

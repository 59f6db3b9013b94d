package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/reelbot-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel is the form for the session tunables. It is only editable
// while the session is stopped.
type ConfigPanel interface {
	Build(startRow int) (endRow int)
	SetEditable(enabled bool)
	ApplyChanges()
}

type configPanel struct {
	cfg       *config.Config
	cfgPath   string
	logger    *slog.Logger
	onApplied func(*config.Config) error
	applyBtn  *ButtonWidget
	widgets   map[string]*TextWidget
}

// NewConfigPanel creates the form bound to cfg. onApplied receives the
// validated config after it was saved.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger, onApplied func(*config.Config) error) ConfigPanel {
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, onApplied: onApplied, widgets: make(map[string]*TextWidget)}
}

func (v *configPanel) Build(startRow int) (row int) {
	c := v.cfg
	row = startRow
	makeRow := func(id, label, value string) {
		lbl := Label(Txt(label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(16))
		Grid(w, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		row++
	}
	makeRow("targetOffset", "Target Offset (px)", fmt.Sprintf("%d", c.TargetOffset))
	makeRow("prediction", "Prediction (true/false)", fmt.Sprintf("%t", c.Prediction))
	makeRow("controlIntervalMs", "Control Interval (ms)", fmt.Sprintf("%d", c.ControlIntervalMs))
	makeRow("completionPercent", "Completion (%)", fmt.Sprintf("%.0f", c.CompletionPercent))
	makeRow("cooldownSeconds", "Cooldown Seconds", fmt.Sprintf("%d", c.CooldownSeconds))
	makeRow("recoveryPolicy", "Recovery (cast/redetect)", c.RecoveryPolicy)
	makeRow("recoveryGraceMs", "Recovery Grace (ms)", fmt.Sprintf("%d", c.RecoveryGraceMs))
	makeRow("recoveryTimeoutSeconds", "Recovery Timeout Seconds", fmt.Sprintf("%d", c.RecoveryTimeoutSeconds))
	makeRow("windowTitle", "Game Window Title", c.WindowTitle)
	v.applyBtn = Button(Txt("Apply Changes"), Command(func() { v.ApplyChanges() }))
	Grid(v.applyBtn, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *configPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.widgets {
		if w != nil {
			w.Configure(State(state))
		}
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

func (v *configPanel) text(w *TextWidget) string {
	if w == nil {
		return ""
	}
	parts := w.Get("1.0", END)
	return strings.Join(parts, "")
}

func (v *configPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	cfg := *v.cfg // copy
	assignFloat := func(id string, dst *float64) {
		w := v.widgets[id]
		if w == nil {
			return
		}
		if f, ok := parseFloatField(strings.TrimSpace(v.text(w))); ok {
			*dst = f
		}
	}
	assignInt := func(id string, dst *int) {
		w := v.widgets[id]
		if w == nil {
			return
		}
		if i, ok := parseIntField(strings.TrimSpace(v.text(w))); ok {
			*dst = i
		}
	}
	assignBool := func(id string, dst *bool) {
		w := v.widgets[id]
		if w == nil {
			return
		}
		if b, ok := parseBoolLoose(strings.TrimSpace(v.text(w))); ok {
			*dst = b
		}
	}
	assignString := func(id string, dst *string, allowEmpty bool) {
		w := v.widgets[id]
		if w == nil {
			return
		}
		if val := strings.TrimSpace(v.text(w)); val != "" || allowEmpty {
			*dst = val
		}
	}
	assignInt("targetOffset", &cfg.TargetOffset)
	assignBool("prediction", &cfg.Prediction)
	assignInt("controlIntervalMs", &cfg.ControlIntervalMs)
	assignFloat("completionPercent", &cfg.CompletionPercent)
	assignInt("cooldownSeconds", &cfg.CooldownSeconds)
	assignString("recoveryPolicy", &cfg.RecoveryPolicy, false)
	assignInt("recoveryGraceMs", &cfg.RecoveryGraceMs)
	assignInt("recoveryTimeoutSeconds", &cfg.RecoveryTimeoutSeconds)
	assignString("windowTitle", &cfg.WindowTitle, true)
	if verr := cfg.Validate(); verr != nil {
		return
	}
	*v.cfg = cfg
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
	} else if v.logger != nil {
		v.logger.Info("config saved", "path", v.cfgPath)
	}
	if v.onApplied != nil {
		if err := v.onApplied(v.cfg); err != nil && v.logger != nil {
			v.logger.Warn("config not applied", "error", err)
		}
	}
}

// parsing helpers (unexported)
func parseFloatField(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
func parseIntField(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}
func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	default:
		return false, false
	}
}

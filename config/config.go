package config

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
)

// HSVRange is an inclusive colour band in OpenCV HSV scale
// (H 0-180, S 0-255, V 0-255).
type HSVRange struct {
	Lower [3]uint8 `json:"lower"`
	Upper [3]uint8 `json:"upper"`
}

// Contains reports whether h, s, v fall inside the band.
func (r HSVRange) Contains(h, s, v uint8) bool {
	return h >= r.Lower[0] && h <= r.Upper[0] &&
		s >= r.Lower[1] && s <= r.Upper[1] &&
		v >= r.Lower[2] && v <= r.Upper[2]
}

// Band is one step of the controller response table. A tracking distance
// at or above MinDistance maps to DutyCycle percent.
type Band struct {
	MinDistance int    `json:"min_distance"`
	DutyCycle   int    `json:"duty_cycle"`
	Label       string `json:"label"`
}

// Recovery policies applied while the bars are not readable.
const (
	RecoveryCast     = "cast"
	RecoveryRedetect = "redetect"
)

// Config holds runtime configuration for detection, control and app behavior.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug    bool `json:"debug"`
	DarkMode bool `json:"dark_mode"`

	// Fixed layout of the minigame. Only the control bar position is detected.
	ControlWidth    int `json:"control_width"`
	ControlHeight   int `json:"control_height"`
	ProgressOffsetX int `json:"progress_offset_x"`
	ProgressOffsetY int `json:"progress_offset_y"`
	ProgressWidth   int `json:"progress_width"`
	ProgressHeight  int `json:"progress_height"`

	// Region localisation
	DetectAttempts     int      `json:"detect_attempts"`
	DetectIntervalMs   int      `json:"detect_interval_ms"`
	BarHSV             HSVRange `json:"bar_hsv"`
	BarMinHeight       int      `json:"bar_min_height"`
	BarMinWidth        int      `json:"bar_min_width"`
	BarAspect          int      `json:"bar_aspect"`
	MorphKernel        int      `json:"morph_kernel"`
	RecalibrateShiftPx int      `json:"recalibrate_shift_px"`

	// Marker extraction
	TargetHSV       HSVRange `json:"target_hsv"`
	ControlRGBMin   uint8    `json:"control_rgb_min"`
	ControlRGBMax   uint8    `json:"control_rgb_max"`
	ControlMinWidth int      `json:"control_min_width"`
	ProgressHSV     HSVRange `json:"progress_hsv"`

	// Controller
	TargetOffset      int     `json:"target_offset"`
	Prediction        bool    `json:"prediction"`
	PredictTicks      int     `json:"predict_ticks"`
	PredictWeight     float64 `json:"predict_weight"`
	VelocitySmooth    float64 `json:"velocity_smooth"`
	Bands             []Band  `json:"bands"`
	ControlIntervalMs int     `json:"control_interval_ms"`

	// Session
	CompletionPercent      float64 `json:"completion_percent"`
	CooldownSeconds        int     `json:"cooldown_seconds"`
	RecoveryPolicy         string  `json:"recovery_policy"`
	RecoveryGraceMs        int     `json:"recovery_grace_ms"`
	RecoveryTimeoutSeconds int     `json:"recovery_timeout_seconds"`
	RedetectAttempts       int     `json:"redetect_attempts"`
	IdlePollMs             int     `json:"idle_poll_ms"`
	WindowTitle            string  `json:"window_title"`

	// Hotkeys (gohook key names)
	ToggleKey    string `json:"toggle_key"`
	CalibrateKey string `json:"calibrate_key"`

	// Persisted records
	CalibrationPath string `json:"calibration_path"`
	CounterPath     string `json:"counter_path"`
}

// DefaultBands is the response table used when none is configured.
// Distance 0 falls in the "hold" band (30%).
func DefaultBands() []Band {
	return []Band{
		{MinDistance: 40, DutyCycle: 100, Label: "full"},
		{MinDistance: 20, DutyCycle: 70, Label: "strong"},
		{MinDistance: 5, DutyCycle: 50, Label: "push"},
		{MinDistance: -10, DutyCycle: 30, Label: "hold"},
		{MinDistance: -25, DutyCycle: 10, Label: "ease"},
	}
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:                  false,
		ControlWidth:           27,
		ControlHeight:          423,
		ProgressOffsetX:        64,
		ProgressOffsetY:        52,
		ProgressWidth:          22,
		ProgressHeight:         319,
		DetectAttempts:         150,
		DetectIntervalMs:       50,
		BarHSV:                 HSVRange{Lower: [3]uint8{90, 60, 120}, Upper: [3]uint8{115, 255, 255}},
		BarMinHeight:           150,
		BarMinWidth:            10,
		BarAspect:              5,
		MorphKernel:            5,
		RecalibrateShiftPx:     3,
		TargetHSV:              HSVRange{Lower: [3]uint8{0, 0, 200}, Upper: [3]uint8{180, 50, 255}},
		ControlRGBMin:          15,
		ControlRGBMax:          35,
		ControlMinWidth:        15,
		ProgressHSV:            HSVRange{Lower: [3]uint8{30, 30, 30}, Upper: [3]uint8{90, 255, 255}},
		TargetOffset:           20,
		Prediction:             true,
		PredictTicks:           3,
		PredictWeight:          0.7,
		VelocitySmooth:         0.5,
		Bands:                  DefaultBands(),
		ControlIntervalMs:      100,
		CompletionPercent:      95,
		CooldownSeconds:        3,
		RecoveryPolicy:         RecoveryCast,
		RecoveryGraceMs:        1500,
		RecoveryTimeoutSeconds: 15,
		RedetectAttempts:       5,
		IdlePollMs:             50,
		ToggleKey:              "f6",
		CalibrateKey:           "f7",
		CalibrationPath:        "calibration.json",
		CounterPath:            "counter.json",
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	d := DefaultConfig()
	positive := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	positive(&c.ControlWidth, d.ControlWidth)
	positive(&c.ControlHeight, d.ControlHeight)
	positive(&c.ProgressWidth, d.ProgressWidth)
	positive(&c.ProgressHeight, d.ProgressHeight)
	positive(&c.DetectAttempts, d.DetectAttempts)
	positive(&c.DetectIntervalMs, d.DetectIntervalMs)
	positive(&c.BarMinHeight, d.BarMinHeight)
	positive(&c.BarMinWidth, d.BarMinWidth)
	positive(&c.BarAspect, d.BarAspect)
	positive(&c.MorphKernel, d.MorphKernel)
	positive(&c.ControlMinWidth, d.ControlMinWidth)
	positive(&c.ControlIntervalMs, d.ControlIntervalMs)
	positive(&c.RecoveryTimeoutSeconds, d.RecoveryTimeoutSeconds)
	positive(&c.RedetectAttempts, d.RedetectAttempts)
	positive(&c.IdlePollMs, d.IdlePollMs)
	if c.RecalibrateShiftPx < 0 {
		c.RecalibrateShiftPx = d.RecalibrateShiftPx
	}
	if c.RecoveryGraceMs < 0 {
		c.RecoveryGraceMs = d.RecoveryGraceMs
	}
	if c.CooldownSeconds < 0 {
		c.CooldownSeconds = d.CooldownSeconds
	}
	if c.ControlRGBMin > c.ControlRGBMax {
		c.ControlRGBMin, c.ControlRGBMax = c.ControlRGBMax, c.ControlRGBMin
	}
	if c.PredictTicks < 0 {
		c.PredictTicks = d.PredictTicks
	}
	if c.PredictWeight < 0 || c.PredictWeight > 1 {
		c.PredictWeight = d.PredictWeight
	}
	if c.VelocitySmooth <= 0 || c.VelocitySmooth > 1 {
		c.VelocitySmooth = d.VelocitySmooth
	}
	if c.CompletionPercent <= 0 || c.CompletionPercent > 100 {
		c.CompletionPercent = d.CompletionPercent
	}
	c.RecoveryPolicy = strings.ToLower(strings.TrimSpace(c.RecoveryPolicy))
	if c.RecoveryPolicy != RecoveryCast && c.RecoveryPolicy != RecoveryRedetect {
		c.RecoveryPolicy = RecoveryCast
	}
	if strings.TrimSpace(c.ToggleKey) == "" {
		c.ToggleKey = d.ToggleKey
	}
	if strings.TrimSpace(c.CalibrateKey) == "" {
		c.CalibrateKey = d.CalibrateKey
	}
	if c.CalibrationPath == "" {
		c.CalibrationPath = d.CalibrationPath
	}
	if c.CounterPath == "" {
		c.CounterPath = d.CounterPath
	}
	c.Bands = NormalizeBands(c.Bands)
	return nil
}

// NormalizeBands returns a copy of bands sorted by MinDistance descending with
// duty cycles clamped to [0,100] and made non-increasing down the table, so a
// larger distance never maps to a smaller duty cycle. An empty table yields
// DefaultBands.
func NormalizeBands(bands []Band) []Band {
	if len(bands) == 0 {
		return DefaultBands()
	}
	out := make([]Band, len(bands))
	copy(out, bands)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinDistance > out[j].MinDistance })
	for i := range out {
		if out[i].DutyCycle < 0 {
			out[i].DutyCycle = 0
		}
		if out[i].DutyCycle > 100 {
			out[i].DutyCycle = 100
		}
		if i > 0 && out[i].DutyCycle > out[i-1].DutyCycle {
			out[i].DutyCycle = out[i-1].DutyCycle
		}
	}
	return out
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	return writeJSON(path, c)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package app

import (
	"log/slog"
	"time"

	"github.com/soocke/reelbot-go/config"
	"github.com/soocke/reelbot-go/domain/action"
	"github.com/soocke/reelbot-go/domain/capture"
	"github.com/soocke/reelbot-go/domain/control"
	"github.com/soocke/reelbot-go/domain/fishing"
	"github.com/soocke/reelbot-go/domain/region"
	"github.com/soocke/reelbot-go/domain/vision"
)

// Container holds the services shared by the windowed and headless runners.
type Container struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger

	Sampler capture.Sampler
	Layout  region.Layout
	Auto    *region.AutoLocator
	Driver  *action.Driver
	Session *fishing.Session
}

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

// BuildContainer constructs all services and restores the persisted
// calibration and catch counter. Persistence errors are logged, not fatal.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger) *Container {
	c := &Container{Config: cfg, ConfigPath: cfgPath, Logger: logger}
	c.Sampler = capture.NewSampler(logger)
	c.Layout = region.LayoutFromConfig(cfg)
	c.Auto = region.NewAutoLocator(c.Sampler, c.Layout, region.CriteriaFromConfig(cfg), cfg.DetectAttempts, ms(cfg.DetectIntervalMs), logger)
	c.Driver = action.NewDriver(action.NewEffector(), ms(cfg.ControlIntervalMs), logger)

	counter, err := config.LoadCounter(cfg.CounterPath)
	if err != nil {
		logger.Warn("counter load failed", "path", cfg.CounterPath, "error", err)
	}
	c.Session = fishing.NewSession(logger, cfg, fishing.Deps{
		Frames:       c.Sampler,
		Markers:      vision.NewMarkerExtractor(cfg),
		Progress:     vision.NewProgressEstimator(cfg),
		Controller:   control.NewController(cfg),
		Actuator:     c.Driver,
		Scanner:      c.Auto,
		Foreground:   action.ForegroundWindowTitle,
		OnCalibrated: c.saveCalibration,
		OnCatch:      c.saveCounter,
		Catches:      counter.Catches,
	})
	c.restoreCalibration()
	return c
}

func (c *Container) restoreCalibration() {
	path := c.Config.CalibrationPath
	cal, ok, err := config.LoadCalibration(path)
	if err != nil {
		c.Logger.Warn("calibration load failed", "path", path, "error", err)
		return
	}
	if !ok {
		return
	}
	pair, err := c.Layout.FromCalibration(cal)
	if err != nil {
		c.Logger.Warn("stored calibration rejected", "error", err)
		return
	}
	c.Session.SetRegions(pair)
	c.Logger.Info("calibration restored", "control", pair.Control.String(), "progress", pair.Progress.String())
}

func (c *Container) saveCalibration(p region.Pair) {
	if err := p.Calibration().Save(c.Config.CalibrationPath); err != nil {
		c.Logger.Error("calibration save failed", "error", err)
	}
}

func (c *Container) saveCounter(catches int) {
	if err := (config.Counter{Catches: catches}).Save(c.Config.CounterPath); err != nil {
		c.Logger.Error("counter save failed", "error", err)
	}
}

// Reconfigure applies an edited config to the stopped session.
func (c *Container) Reconfigure(cfg *config.Config) error {
	return c.Session.Reconfigure(cfg)
}

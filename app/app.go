package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/soocke/reelbot-go/config"
	"github.com/soocke/reelbot-go/debug"
	"github.com/soocke/reelbot-go/domain/action"
	"github.com/soocke/reelbot-go/ui/hotkey"
	"github.com/soocke/reelbot-go/ui/model"
	"github.com/soocke/reelbot-go/ui/presenter"
	"github.com/soocke/reelbot-go/ui/theme"
	"github.com/soocke/reelbot-go/ui/view"

	tk "modernc.org/tk9.0"
)

const (
	tick            = 100 * time.Millisecond
	previewInterval = 250 * time.Millisecond
)

type app struct {
	c       *Container
	cancel  context.CancelFunc
	loop    *presenter.Loop
	afterID string
	closed  bool
}

// Run shows the status window and blocks until it is closed or ctx is done.
// The tracking loop runs on its own goroutine; every Tk call stays on the
// goroutine that called Run.
func Run(ctx context.Context, c *Container) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a := &app{c: c, cancel: cancel}
	cfg, logger, session := c.Config, c.Logger, c.Session

	tk.App.WmTitle("Reel Bot")
	tk.WmProtocol(tk.App, "WM_DELETE_WINDOW", a.exit)
	tk.WmGeometry(tk.App, "+100+100")
	theme.InitStyles(cfg.DarkMode)

	rv := view.NewRootView(cfg, c.ConfigPath, logger)
	inbox := presenter.NewInbox(8)
	runP := presenter.NewRunPresenter(session, rv, logger)
	stateP := presenter.NewStatePresenter(rv)
	session.AddListener(stateP.OnState)
	sessP := presenter.NewSessionPresenter(model.NewSessionModel(), session, rv)
	telP := presenter.NewTelemetryPresenter(session, rv, model.NewPreviewModel(previewInterval), cfg.TargetOffset)
	calP := presenter.NewCalibrationPresenter(ctx, session, c.Auto, c.Layout, view.NewCalibrationOverlay(logger), rv, logger)
	calP.ScreenSize = action.ScreenSize

	rv.Build(view.Handlers{
		Toggle:          runP.Toggle,
		CalibrateAuto:   calP.StartAuto,
		CalibrateManual: calP.StartManual,
		Exit:            a.exit,
		ConfigApplied: func(next *config.Config) error {
			if err := c.Reconfigure(next); err != nil {
				return err
			}
			telP.SetOffset(next.TargetOffset)
			return nil
		},
	})
	if session.Calibrated() {
		rv.SetStatus(presenter.CalibrationStatus(session.Regions(), nil))
	}

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("session loop exited", "error", err)
		}
	}()
	go hotkey.NewListener(logger,
		hotkey.Binding{Keys: cfg.ToggleKey, Action: func() { inbox.Post(runP.Toggle) }},
		hotkey.Binding{Keys: cfg.CalibrateKey, Action: func() { inbox.Post(calP.StartAuto) }},
	).Run(ctx)
	startDebug(ctx, cfg, logger)
	go func() {
		<-ctx.Done()
		inbox.Post(a.exit)
	}()

	a.loop = presenter.NewLoop(inbox, runP, sessP, stateP, telP, calP, a.schedule)
	a.schedule()
	tk.App.Wait()

	cancel()
	<-runDone
	return nil
}

func (a *app) schedule() {
	if a.closed {
		return
	}
	a.afterID = tk.TclAfter(tick, func() { a.loop.Tick() })
}

func (a *app) exit() {
	if a.closed {
		return
	}
	a.closed = true
	if a.afterID != "" {
		tk.TclAfterCancel(a.afterID)
		a.afterID = ""
	}
	a.cancel()
	tk.Destroy(tk.App)
}

// RunHeadless runs the tracking loop without a window. Hotkeys toggle the
// loop and rerun auto calibration; cancelling ctx releases the button and
// returns.
func RunHeadless(ctx context.Context, c *Container) error {
	session, logger := c.Session, c.Logger
	startDebug(ctx, c.Config, logger)
	if !session.Calibrated() {
		logger.Info("no stored calibration, scanning for the control bar")
		if _, err := session.Calibrate(ctx, c.Auto); err != nil {
			return fmt.Errorf("auto calibration: %w", err)
		}
	}

	var calibrating atomic.Bool
	recalibrate := func() {
		if !calibrating.CompareAndSwap(false, true) {
			return
		}
		go func() {
			defer calibrating.Store(false)
			if _, err := session.Calibrate(ctx, c.Auto); err != nil {
				logger.Warn("calibration failed", "error", err)
			}
		}()
	}
	toggle := func() {
		running, err := session.Toggle()
		if err != nil {
			logger.Warn("toggle refused", "error", err)
			return
		}
		logger.Info("session toggled", "running", running)
	}
	go hotkey.NewListener(logger,
		hotkey.Binding{Keys: c.Config.ToggleKey, Action: toggle},
		hotkey.Binding{Keys: c.Config.CalibrateKey, Action: recalibrate},
	).Run(ctx)

	if err := session.Start(); err != nil {
		return err
	}
	logger.Info("headless session started", "toggle_key", c.Config.ToggleKey, "calibrate_key", c.Config.CalibrateKey)
	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func startDebug(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	if !cfg.Debug {
		return
	}
	debug.StartGoroutineLogger(ctx, 5*time.Second, logger)
	debug.StartMemLogger(ctx, 10*time.Second, logger)
}

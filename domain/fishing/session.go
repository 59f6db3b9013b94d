package fishing

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soocke/reelbot-go/config"
	"github.com/soocke/reelbot-go/domain/control"
	"github.com/soocke/reelbot-go/domain/region"
	"github.com/soocke/reelbot-go/domain/vision"
)

// Deps are the collaborators driven by a Session.
type Deps struct {
	Frames     FrameSource
	Markers    MarkerSource
	Progress   ProgressSource
	Controller *control.Controller
	Actuator   Actuator
	// Scanner is used by the redetect recovery policy. Optional.
	Scanner Scanner
	// Foreground returns the active window title. Optional.
	Foreground func() (string, error)
	// OnCalibrated is called with every newly accepted region pair.
	OnCalibrated func(region.Pair)
	// OnCatch is called with the updated catch count.
	OnCatch func(catches int)
	// Catches seeds the counter.
	Catches int
	Now     func() time.Time
}

// Session owns the tracking loop: sample, extract, decide, actuate, then
// check completion and signal loss. The running flag and the region pair are
// the only values shared with other goroutines.
type Session struct {
	logger *slog.Logger
	layout region.Layout
	deps   Deps

	completion       float64
	cooldown         time.Duration
	policy           string
	grace            time.Duration
	recoveryTimeout  time.Duration
	redetectAttempts int
	shiftThreshold   int
	idlePoll         time.Duration
	windowTitle      string

	running atomic.Bool
	wake    chan struct{}
	stepMu  sync.Mutex

	mu         sync.Mutex
	state      SessionState
	regions    region.Pair
	calibrated bool
	catches    int
	listeners  []StateListener
	telemetry  Telemetry
	lastErr    error

	// Owned by the goroutine calling Step.
	velocity      control.VelocityState
	cooldownUntil time.Time
	episodeStart  time.Time
	clicked       bool
	redetectTries int
	frameCount    int
	fpsStart      time.Time
	fps           float64
}

// NewSession constructs an idle, uncalibrated session.
func NewSession(logger *slog.Logger, cfg *config.Config, deps Deps) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if deps.Controller == nil {
		deps.Controller = control.NewController(cfg)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &Session{
		logger:  logger,
		deps:    deps,
		wake:    make(chan struct{}, 1),
		catches: deps.Catches,
	}
	s.apply(cfg)
	return s
}

func (s *Session) apply(cfg *config.Config) {
	s.layout = region.LayoutFromConfig(cfg)
	s.completion = cfg.CompletionPercent
	s.cooldown = time.Duration(cfg.CooldownSeconds) * time.Second
	s.policy = cfg.RecoveryPolicy
	s.grace = time.Duration(cfg.RecoveryGraceMs) * time.Millisecond
	s.recoveryTimeout = time.Duration(cfg.RecoveryTimeoutSeconds) * time.Second
	s.redetectAttempts = cfg.RedetectAttempts
	s.shiftThreshold = cfg.RecalibrateShiftPx
	s.idlePoll = time.Duration(cfg.IdlePollMs) * time.Millisecond
	s.windowTitle = strings.TrimSpace(cfg.WindowTitle)
	if s.idlePoll <= 0 {
		s.idlePoll = 50 * time.Millisecond
	}
}

// Reconfigure swaps in new tunables and a controller built from cfg. It is
// refused while the loop runs.
func (s *Session) Reconfigure(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	if s.running.Load() {
		return ErrRunning
	}
	s.apply(cfg)
	s.deps.Controller = control.NewController(cfg)
	s.velocity = control.VelocityState{}
	if p, ok := s.deps.Actuator.(interface{ SetInterval(time.Duration) }); ok {
		p.SetInterval(time.Duration(cfg.ControlIntervalMs) * time.Millisecond)
	}
	return nil
}

// AddListener registers l for state transitions. Listeners run on the
// goroutine that caused the transition, often with the step lock held, so
// they must not call Start, Calibrate or Reconfigure.
func (s *Session) AddListener(l StateListener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Running reports whether the loop is active.
func (s *Session) Running() bool { return s.running.Load() }

// Calibrated reports whether a region pair is available.
func (s *Session) Calibrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calibrated
}

// Regions returns the active region pair.
func (s *Session) Regions() region.Pair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regions
}

// SetRegions replaces both regions atomically.
func (s *Session) SetRegions(p region.Pair) {
	s.mu.Lock()
	s.regions = p
	s.calibrated = p.Valid()
	s.mu.Unlock()
}

// Catches returns the number of completed rounds.
func (s *Session) Catches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catches
}

// LastError returns the error that stopped the session, if any.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// LastTelemetry returns a snapshot of the most recent iteration.
func (s *Session) LastTelemetry() Telemetry {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.telemetry
	t.State = s.state
	t.Running = s.running.Load()
	t.Catches = s.catches
	t.Regions = s.regions
	if !t.Running {
		t.Focused = true
	}
	return t
}

// Start enables the loop. It fails while calibrating or before a region pair
// is known.
func (s *Session) Start() error {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	if s.State() == StateCalibrating {
		return ErrCalibrating
	}
	if !s.Calibrated() {
		return ErrNotCalibrated
	}
	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()
	if !s.running.Swap(true) {
		s.logger.Info("session started", "regions", s.Regions().Control.String())
		s.notify()
	}
	return nil
}

// Stop disables the loop. The loop releases the actuator on its next pass.
func (s *Session) Stop() {
	if s.running.Swap(false) {
		s.logger.Info("session stopped")
		s.notify()
	}
}

// Toggle flips the running flag and returns the new value.
func (s *Session) Toggle() (bool, error) {
	if s.Running() {
		s.Stop()
		return false, nil
	}
	if err := s.Start(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Session) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Calibrate pauses the loop and blocks until loc returns. On success the new
// pair is installed and OnCalibrated is invoked. The session is left stopped.
func (s *Session) Calibrate(ctx context.Context, loc region.Locator) (region.Pair, error) {
	s.stepMu.Lock()
	if s.State() == StateCalibrating {
		s.stepMu.Unlock()
		return region.Pair{}, ErrCalibrating
	}
	s.Stop()
	if err := s.idle(); err != nil {
		s.logger.Error("release before calibration failed", "error", err)
	}
	s.transition(StateCalibrating)
	s.stepMu.Unlock()

	pair, err := loc.Locate(ctx)
	if err == nil && !pair.Valid() {
		err = fmt.Errorf("%w: invalid region pair", region.ErrNotFound)
	}
	if err != nil {
		s.logger.Warn("calibration failed", "error", err)
		s.transition(StateUninitialized)
		return region.Pair{}, err
	}
	s.SetRegions(pair)
	if s.deps.OnCalibrated != nil {
		s.deps.OnCalibrated(pair)
	}
	s.logger.Info("calibration complete", "control", pair.Control.String(), "progress", pair.Progress.String())
	s.transition(StateUninitialized)
	return pair, nil
}

// Run drives Step until ctx is cancelled. An actuation fault stops the
// session after one more release attempt; Run then waits for the next Start
// and does not retry a failing release in between. The actuator is released on
// every exit path, including panics.
func (s *Session) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("session loop panic", "error", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("session loop panic: %v", r)
		}
		s.running.Store(false)
		s.stepMu.Lock()
		defer s.stepMu.Unlock()
		if rerr := s.idle(); rerr != nil {
			s.logger.Error("release on exit failed", "error", rerr)
		}
	}()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		delay, err := s.iterate()
		if err != nil {
			if s.running.Load() {
				s.fail(err)
				s.settle()
			} else {
				s.logger.Warn("release while stopped failed", "error", err)
			}
		}
		if !s.running.Load() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.wake:
			}
			continue
		}
		if delay <= 0 {
			continue
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-s.wake:
			t.Stop()
		case <-t.C:
		}
	}
}

func (s *Session) iterate() (time.Duration, error) {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	return s.Step(s.deps.Now())
}

// settle makes one release attempt after a fault and drops back to
// Uninitialized.
func (s *Session) settle() {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	if err := s.idle(); err != nil {
		s.logger.Error("release after fault failed", "error", err)
	}
}

func (s *Session) fail(err error) {
	s.running.Store(false)
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	s.logger.Error("session stopped on error", "error", err)
}

// Step runs one loop iteration at time now and returns how long the caller
// should wait before the next one. It is the loop's only pacing point: the
// steady tracking state returns zero.
func (s *Session) Step(now time.Time) (time.Duration, error) {
	if !s.running.Load() {
		return s.idlePoll, s.idle()
	}
	if !s.focused() {
		s.mu.Lock()
		s.telemetry.Focused = false
		s.telemetry.At = now
		s.mu.Unlock()
		return s.idlePoll, s.deps.Actuator.Release()
	}

	switch s.State() {
	case StateCalibrating:
		return s.idlePoll, nil
	case StateUninitialized:
		s.velocity = control.VelocityState{}
		s.transition(StateTracking)
	case StateCompleted:
		if now.Before(s.cooldownUntil) {
			return s.cooldownUntil.Sub(now), nil
		}
		s.beginEpisode(now)
		s.transition(StateSignalLost)
	}

	reading, progress, frame := s.sample(s.Regions())
	cmd, vel := s.deps.Controller.Decide(reading, s.velocity)
	s.velocity = vel

	switch s.State() {
	case StateTracking:
		if progress >= s.completion {
			return s.complete(now, reading, progress, frame)
		}
		if !reading.Complete() {
			if err := s.deps.Actuator.Release(); err != nil {
				return 0, err
			}
			s.logger.Debug("signal lost", "target", reading.Target.String(), "control", reading.Control.String())
			s.beginEpisode(now)
			s.transition(StateSignalLost)
			s.record(now, reading, cmd, progress, frame)
			return 0, nil
		}
	case StateSignalLost:
		if !reading.Complete() {
			s.record(now, reading, cmd, progress, frame)
			return s.recoverSignal(now)
		}
		s.logger.Info("signal recovered", "lost_for", now.Sub(s.episodeStart).Round(time.Millisecond))
		s.transition(StateTracking)
	}

	if err := s.deps.Actuator.Tick(cmd, now); err != nil {
		return 0, err
	}
	s.record(now, reading, cmd, progress, frame)
	return 0, nil
}

func (s *Session) sample(pair region.Pair) (vision.MarkerReading, float64, *image.RGBA) {
	ctrl, err := s.deps.Frames.Capture(pair.Control.Rect())
	if err != nil {
		s.logger.Debug("control capture failed", "error", err)
		return vision.MarkerReading{}, 0, nil
	}
	reading := s.deps.Markers.Extract(ctrl)
	prog, err := s.deps.Frames.Capture(pair.Progress.Rect())
	if err != nil {
		s.logger.Debug("progress capture failed", "error", err)
		return reading, 0, ctrl
	}
	return reading, s.deps.Progress.Estimate(prog), ctrl
}

func (s *Session) complete(now time.Time, reading vision.MarkerReading, progress float64, frame *image.RGBA) (time.Duration, error) {
	if err := s.deps.Actuator.Release(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.catches++
	n := s.catches
	s.mu.Unlock()
	if s.deps.OnCatch != nil {
		s.deps.OnCatch(n)
	}
	s.velocity = control.VelocityState{}
	s.cooldownUntil = now.Add(s.cooldown)
	s.logger.Info("round completed", "progress", progress, "catches", n, "cooldown", s.cooldown)
	s.transition(StateCompleted)
	s.record(now, reading, control.Release, progress, frame)
	return s.cooldown, nil
}

// idle releases the actuator and drops back to Uninitialized. Caller holds stepMu.
func (s *Session) idle() error {
	err := s.deps.Actuator.Release()
	s.velocity = control.VelocityState{}
	switch s.State() {
	case StateTracking, StateSignalLost, StateCompleted:
		s.transition(StateUninitialized)
	}
	return err
}

func (s *Session) focused() bool {
	if s.windowTitle == "" || s.deps.Foreground == nil {
		return true
	}
	title, err := s.deps.Foreground()
	if err != nil {
		s.logger.Debug("foreground title error", "error", err)
		return false
	}
	return strings.EqualFold(strings.TrimSpace(title), s.windowTitle)
}

func (s *Session) record(now time.Time, reading vision.MarkerReading, cmd control.Command, progress float64, frame *image.RGBA) {
	s.frameCount++
	if s.fpsStart.IsZero() {
		s.fpsStart = now
	}
	if el := now.Sub(s.fpsStart); el >= time.Second {
		s.fps = float64(s.frameCount) / el.Seconds()
		s.logger.Debug("tracking telemetry",
			"fps", s.fps,
			"progress", progress,
			"engaged", s.deps.Actuator.Pressed(),
			"target", reading.Target.String(),
			"control", reading.Control.String(),
			"mode", cmd.Mode,
		)
		s.frameCount = 0
		s.fpsStart = now
	}
	s.mu.Lock()
	s.telemetry = Telemetry{
		Focused:      true,
		Reading:      reading,
		Command:      cmd,
		Progress:     progress,
		Pressed:      s.deps.Actuator.Pressed(),
		FPS:          s.fps,
		ControlFrame: frame,
		At:           now,
	}
	s.mu.Unlock()
}

func (s *Session) transition(next SessionState) {
	s.mu.Lock()
	prev := s.state
	if prev == next {
		s.mu.Unlock()
		return
	}
	s.state = next
	listeners := append([]StateListener(nil), s.listeners...)
	s.mu.Unlock()
	s.logger.Debug("session state transition", "from", prev.String(), "to", next.String())
	for _, l := range listeners {
		func() {
			defer recoverLog(s.logger, "state listener panic")
			l(prev, next)
		}()
	}
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		logger.Error(msg, "error", r)
	}
}

package presenter

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"

	"github.com/soocke/reelbot-go/domain/region"
)

// Calibrator runs a modal calibration with the given locator.
type Calibrator interface {
	Calibrate(ctx context.Context, loc region.Locator) (region.Pair, error)
	Regions() region.Pair
}

// Overlay is the draggable rectangle used for manual calibration. done is
// invoked exactly once on the UI thread.
type Overlay interface {
	Open(initial image.Rectangle, done func(origin image.Point, ok bool))
}

// CalibrationView shows calibration progress.
type CalibrationView interface{ SetStatus(string) }

type promptReply struct {
	origin image.Point
	err    error
}

type promptRequest struct {
	initial image.Rectangle
	reply   chan promptReply
}

type calibrationResult struct {
	pair region.Pair
	err  error
}

// CalibrationPresenter runs calibration on a background goroutine while the
// loop is paused. Manual prompts are handed to the UI thread through a
// channel and served on the next Tick, so the overlay is only touched there.
type CalibrationPresenter struct {
	ctx     context.Context
	session Calibrator
	auto    region.Locator
	layout  region.Layout
	overlay Overlay
	view    CalibrationView
	logger  *slog.Logger

	// ScreenSize keeps the manual overlay's initial position on screen.
	// Optional.
	ScreenSize func() (w, h int)

	busy     atomic.Bool
	requests chan promptRequest
	results  chan calibrationResult
}

func NewCalibrationPresenter(ctx context.Context, session Calibrator, auto region.Locator, layout region.Layout, overlay Overlay, view CalibrationView, logger *slog.Logger) *CalibrationPresenter {
	return &CalibrationPresenter{
		ctx:      ctx,
		session:  session,
		auto:     auto,
		layout:   layout,
		overlay:  overlay,
		view:     view,
		logger:   logger,
		requests: make(chan promptRequest, 1),
		results:  make(chan calibrationResult, 1),
	}
}

// Busy reports whether a calibration is in progress.
func (p *CalibrationPresenter) Busy() bool { return p != nil && p.busy.Load() }

// StartAuto scans the screen for the control bar.
func (p *CalibrationPresenter) StartAuto() {
	if p == nil || p.auto == nil {
		return
	}
	p.run(p.auto, "auto")
}

// StartManual opens the overlay at the current control region, or at a fixed
// position when uncalibrated.
func (p *CalibrationPresenter) StartManual() {
	if p == nil {
		return
	}
	initial := image.Pt(100, 100)
	if cur := p.session.Regions(); cur.Control.Valid() {
		initial = cur.Control.Origin()
	}
	if p.ScreenSize != nil {
		w, h := p.ScreenSize()
		initial = clampOrigin(initial, image.Pt(p.layout.ControlWidth, p.layout.ControlHeight), w, h)
	}
	p.run(&region.ManualLocator{Prompt: p.prompt, Layout: p.layout, Initial: initial}, "manual")
}

// clampOrigin moves p so a rectangle of the given size fits a w x h screen.
// Non-positive screen sizes leave p unchanged.
func clampOrigin(p, size image.Point, w, h int) image.Point {
	if w <= 0 || h <= 0 {
		return p
	}
	p.X = min(max(p.X, 0), max(w-size.X, 0))
	p.Y = min(max(p.Y, 0), max(h-size.Y, 0))
	return p
}

func (p *CalibrationPresenter) run(loc region.Locator, mode string) {
	if p.session == nil || !p.busy.CompareAndSwap(false, true) {
		return
	}
	if p.view != nil {
		p.view.SetStatus(fmt.Sprintf("calibrating (%s)...", mode))
	}
	go func() {
		defer p.busy.Store(false)
		pair, err := p.session.Calibrate(p.ctx, loc)
		p.results <- calibrationResult{pair: pair, err: err}
	}()
}

// prompt is the ManualLocator prompt; it blocks the calibration goroutine
// until the user confirms or cancels on the UI thread.
func (p *CalibrationPresenter) prompt(ctx context.Context, initial image.Rectangle) (image.Point, error) {
	req := promptRequest{initial: initial, reply: make(chan promptReply, 1)}
	select {
	case p.requests <- req:
	case <-ctx.Done():
		return image.Point{}, ctx.Err()
	}
	select {
	case r := <-req.reply:
		return r.origin, r.err
	case <-ctx.Done():
		return image.Point{}, ctx.Err()
	}
}

// Tick serves pending overlay requests and reports finished calibrations.
// Call on the UI thread.
func (p *CalibrationPresenter) Tick() {
	if p == nil {
		return
	}
	select {
	case req := <-p.requests:
		if p.overlay == nil {
			req.reply <- promptReply{err: region.ErrUserCancelled}
			break
		}
		p.overlay.Open(req.initial, func(origin image.Point, ok bool) {
			if !ok {
				req.reply <- promptReply{err: region.ErrUserCancelled}
				return
			}
			req.reply <- promptReply{origin: origin}
		})
	default:
	}
	select {
	case res := <-p.results:
		if p.view != nil {
			p.view.SetStatus(CalibrationStatus(res.pair, res.err))
		}
	default:
	}
}

// CalibrationStatus formats the outcome of a calibration.
func CalibrationStatus(pair region.Pair, err error) string {
	switch {
	case err == nil:
		return fmt.Sprintf("calibrated: control %s progress %s", pair.Control, pair.Progress)
	case errors.Is(err, region.ErrUserCancelled):
		return "calibration cancelled"
	case errors.Is(err, region.ErrNotFound):
		return "control bar not found, try manual calibration"
	case errors.Is(err, context.Canceled):
		return "calibration aborted"
	default:
		return "calibration failed: " + err.Error()
	}
}

package presenter

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/reelbot-go/domain/control"
	"github.com/soocke/reelbot-go/domain/fishing"
	"github.com/soocke/reelbot-go/domain/region"
	"github.com/soocke/reelbot-go/domain/vision"
	"github.com/soocke/reelbot-go/ui/model"
)

type mockSession struct {
	running  bool
	startErr error
	started  int
	stopped  int
}

func (s *mockSession) Start() error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started++
	s.running = true
	return nil
}
func (s *mockSession) Stop() { s.stopped++; s.running = false }
func (s *mockSession) Running() bool { return s.running }

type mockView struct {
	reset, editableCalls int
	lastEditable         bool
	status               []string
	telemetry            []string
	previews             int
	state                []fishing.SessionState
	session, total       time.Duration
	catchesS, catchesT   int
}

func (v *mockView) PreviewReset() { v.reset++ }
func (v *mockView) ConfigEditable(b bool) { v.editableCalls++; v.lastEditable = b }
func (v *mockView) SetStatus(s string) { v.status = append(v.status, s) }
func (v *mockView) SetTelemetry(s string) { v.telemetry = append(v.telemetry, s) }
func (v *mockView) UpdatePreview(image.Image) { v.previews++ }
func (v *mockView) SetStateLabel(s fishing.SessionState) { v.state = append(v.state, s) }
func (v *mockView) SetSession(session, total time.Duration) { v.session, v.total = session, total }
func (v *mockView) SetCatches(session, total int) { v.catchesS, v.catchesT = session, total }

func (v *mockView) lastStatus() string {
	if len(v.status) == 0 {
		return ""
	}
	return v.status[len(v.status)-1]
}

func TestRunPresenter_EnableDisable_Idempotent(t *testing.T) {
	s := &mockSession{}
	view := &mockView{}
	p := NewRunPresenter(s, view, nil)

	p.Enable()
	if !s.running || s.started != 1 || view.lastEditable || view.editableCalls != 1 {
		t.Fatalf("enable failed: running=%v started=%d editableCalls=%d lastEditable=%v", s.running, s.started, view.editableCalls, view.lastEditable)
	}
	p.Enable()
	if s.started != 1 {
		t.Fatalf("enable not idempotent: started=%d", s.started)
	}

	p.Disable()
	if s.running || s.stopped != 1 || view.reset != 1 || !view.lastEditable || view.editableCalls != 2 {
		t.Fatalf("disable failed: running=%v stopped=%d reset=%d editableCalls=%d lastEditable=%v", s.running, s.stopped, view.reset, view.editableCalls, view.lastEditable)
	}
	p.Disable()
	if s.stopped != 1 || view.reset != 1 {
		t.Fatalf("disable not idempotent: stopped=%d reset=%d", s.stopped, view.reset)
	}
}

func TestRunPresenter_Toggle(t *testing.T) {
	s := &mockSession{}
	view := &mockView{}
	p := NewRunPresenter(s, view, nil)
	p.Toggle()
	assert.True(t, s.running)
	p.Toggle()
	assert.False(t, s.running)
	assert.Equal(t, 1, view.reset)
}

func TestRunPresenter_StartRefused(t *testing.T) {
	s := &mockSession{startErr: fishing.ErrNotCalibrated}
	view := &mockView{}
	p := NewRunPresenter(s, view, nil)
	p.Enable()
	assert.False(t, s.running)
	assert.Zero(t, view.editableCalls)
	assert.Equal(t, "calibrate first (auto or manual)", view.lastStatus())
}

func TestRunPresenter_SyncUnlocksAfterFault(t *testing.T) {
	s := &mockSession{running: true}
	view := &mockView{}
	p := NewRunPresenter(s, view, nil)
	running := p.Sync(false)
	require.True(t, running)
	s.running = false
	assert.False(t, p.Sync(running))
	assert.True(t, view.lastEditable)
}

func TestStatePresenter_ShowsLatestOnly(t *testing.T) {
	view := &mockView{}
	p := NewStatePresenter(view)
	p.Tick(time.Now())
	assert.Empty(t, view.state)

	p.OnState(fishing.StateUninitialized, fishing.StateTracking)
	p.OnState(fishing.StateTracking, fishing.StateSignalLost)
	p.Tick(time.Now())
	assert.Equal(t, []fishing.SessionState{fishing.StateSignalLost}, view.state)

	p.OnState(fishing.StateTracking, fishing.StateSignalLost)
	p.Tick(time.Now())
	assert.Len(t, view.state, 1, "unchanged state is not re-rendered")
}

type fakeSource struct {
	running bool
	catches int
}

func (f *fakeSource) Running() bool { return f.running }
func (f *fakeSource) Catches() int  { return f.catches }

func TestSessionPresenter_PushesDurationsAndCatches(t *testing.T) {
	src := &fakeSource{running: true, catches: 4}
	view := &mockView{}
	p := NewSessionPresenter(model.NewSessionModel(), src, view)
	base := time.Unix(0, 0)
	p.Tick(base)
	src.catches = 6
	p.Tick(base.Add(10 * time.Second))
	assert.Equal(t, 10*time.Second, view.session)
	assert.Equal(t, 2, view.catchesS)
	assert.Equal(t, 6, view.catchesT)
}

type fakeTelemetry struct{ t fishing.Telemetry }

func (f *fakeTelemetry) LastTelemetry() fishing.Telemetry { return f.t }

func TestTelemetryPresenter_RendersOnChange(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 27, 423))
	src := &fakeTelemetry{t: fishing.Telemetry{
		State:        fishing.StateTracking,
		Running:      true,
		Focused:      true,
		Reading:      vision.MarkerReading{Target: vision.At(200), Control: vision.At(220)},
		Command:      control.Command{Engage: true, DutyCycle: 30, Mode: "hold"},
		Progress:     42,
		ControlFrame: frame,
		At:           time.Unix(1, 0),
	}}
	view := &mockView{}
	p := NewTelemetryPresenter(src, view, model.NewPreviewModel(0), 20)

	p.Tick(time.Unix(1, 0))
	require.Len(t, view.status, 1)
	assert.Contains(t, view.status[0], "tracking")
	require.Len(t, view.telemetry, 1)
	assert.Contains(t, view.telemetry[0], "target 200")
	assert.Contains(t, view.telemetry[0], "control 220")
	assert.Equal(t, 1, view.previews)

	// Same snapshot: nothing re-rendered.
	p.Tick(time.Unix(2, 0))
	assert.Len(t, view.status, 1)
	assert.Len(t, view.telemetry, 1)
	assert.Equal(t, 1, view.previews)

	src.t.At = time.Unix(3, 0)
	p.Tick(time.Unix(3, 0))
	assert.Equal(t, 2, view.previews)
}

func TestTelemetryPresenter_NoPreviewWhenStopped(t *testing.T) {
	src := &fakeTelemetry{t: fishing.Telemetry{ControlFrame: image.NewRGBA(image.Rect(0, 0, 1, 1)), At: time.Unix(1, 0)}}
	view := &mockView{}
	p := NewTelemetryPresenter(src, view, model.NewPreviewModel(0), 20)
	p.Tick(time.Unix(1, 0))
	assert.Zero(t, view.previews)
	assert.Equal(t, "target - | control - | progress -", view.telemetry[0])
}

type fakeCalibrator struct {
	mu      sync.Mutex
	regions region.Pair
	calls   int
}

func (f *fakeCalibrator) Calibrate(ctx context.Context, loc region.Locator) (region.Pair, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	pair, err := loc.Locate(ctx)
	if err == nil {
		f.mu.Lock()
		f.regions = pair
		f.mu.Unlock()
	}
	return pair, err
}

func (f *fakeCalibrator) Regions() region.Pair {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.regions
}

type fakeOverlay struct {
	mu      sync.Mutex
	initial image.Rectangle
	done    func(image.Point, bool)
}

func (o *fakeOverlay) Open(initial image.Rectangle, done func(image.Point, bool)) {
	o.mu.Lock()
	o.initial, o.done = initial, done
	o.mu.Unlock()
}

func (o *fakeOverlay) pending() func(image.Point, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.done
}

type fakeLocator struct{ err error }

func (f fakeLocator) Locate(context.Context) (region.Pair, error) { return region.Pair{}, f.err }

func tickUntil(t *testing.T, p *CalibrationPresenter, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		p.Tick()
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached")
}

func TestCalibrationPresenter_ManualConfirm(t *testing.T) {
	cal := &fakeCalibrator{}
	overlay := &fakeOverlay{}
	view := &mockView{}
	layout := region.LayoutFromConfig(nil)
	p := NewCalibrationPresenter(context.Background(), cal, nil, layout, overlay, view, nil)

	p.StartManual()
	assert.True(t, p.Busy())
	assert.Equal(t, "calibrating (manual)...", view.lastStatus())
	tickUntil(t, p, func() bool { return overlay.pending() != nil })
	assert.Equal(t, image.Rect(100, 100, 100+layout.ControlWidth, 100+layout.ControlHeight), overlay.initial)

	overlay.pending()(image.Pt(640, 300), true)
	tickUntil(t, p, func() bool { return len(view.status) == 2 })
	assert.Contains(t, view.lastStatus(), "calibrated")
	assert.Equal(t, 640, cal.Regions().Control.Left)
	assert.Eventually(t, func() bool { return !p.Busy() }, time.Second, time.Millisecond)
}

func TestCalibrationPresenter_ManualCancel(t *testing.T) {
	cal := &fakeCalibrator{}
	overlay := &fakeOverlay{}
	view := &mockView{}
	p := NewCalibrationPresenter(context.Background(), cal, nil, region.LayoutFromConfig(nil), overlay, view, nil)

	p.StartManual()
	p.StartManual() // ignored while busy
	tickUntil(t, p, func() bool { return overlay.pending() != nil })
	overlay.pending()(image.Point{}, false)
	tickUntil(t, p, func() bool { return len(view.status) == 2 })
	assert.Equal(t, "calibration cancelled", view.lastStatus())
	assert.Equal(t, 1, cal.calls)
}

func TestCalibrationPresenter_AutoNotFound(t *testing.T) {
	cal := &fakeCalibrator{}
	view := &mockView{}
	auto := fakeLocator{err: region.ErrNotFound}
	p := NewCalibrationPresenter(context.Background(), cal, auto, region.LayoutFromConfig(nil), nil, view, nil)
	p.StartAuto()
	tickUntil(t, p, func() bool { return len(view.status) == 2 })
	assert.Equal(t, "control bar not found, try manual calibration", view.lastStatus())
}

func TestCalibrationStatus(t *testing.T) {
	assert.Equal(t, "calibration aborted", CalibrationStatus(region.Pair{}, context.Canceled))
	assert.Equal(t, "calibration failed: boom", CalibrationStatus(region.Pair{}, errors.New("boom")))
}

func TestInbox(t *testing.T) {
	in := NewInbox(2)
	var n int
	assert.True(t, in.Post(func() { n++ }))
	assert.True(t, in.Post(func() { n++ }))
	assert.False(t, in.Post(func() { n++ }), "full inbox drops")
	assert.False(t, in.Post(nil))
	in.Drain()
	assert.Equal(t, 2, n)

	var nilInbox *Inbox
	assert.False(t, nilInbox.Post(func() {}))
	nilInbox.Drain()
}

func TestLoop_ZeroValue(t *testing.T) {
	var scheduled int
	l := &Loop{Schedule: func() { scheduled++ }}
	l.Tick()
	assert.Equal(t, 1, scheduled)
	var nilLoop *Loop
	nilLoop.Tick()
}

func TestCalibrationPresenter_ManualStartsOnScreen(t *testing.T) {
	layout := region.LayoutFromConfig(nil)
	offscreen, err := layout.FromOrigin(image.Pt(1900, 1000))
	require.NoError(t, err)
	cal := &fakeCalibrator{regions: offscreen}
	overlay := &fakeOverlay{}
	view := &mockView{}
	p := NewCalibrationPresenter(context.Background(), cal, nil, layout, overlay, view, nil)
	p.ScreenSize = func() (int, int) { return 1280, 720 }

	p.StartManual()
	tickUntil(t, p, func() bool { return overlay.pending() != nil })
	want := image.Pt(1280-layout.ControlWidth, 720-layout.ControlHeight)
	assert.Equal(t, want, overlay.initial.Min)
	overlay.pending()(image.Point{}, false)
	tickUntil(t, p, func() bool { return len(view.status) == 2 })
}

func TestClampOrigin(t *testing.T) {
	size := image.Pt(27, 423)
	assert.Equal(t, image.Pt(0, 0), clampOrigin(image.Pt(-5, -9), size, 800, 600))
	assert.Equal(t, image.Pt(40, 50), clampOrigin(image.Pt(40, 50), size, 800, 600))
	assert.Equal(t, image.Pt(773, 177), clampOrigin(image.Pt(900, 900), size, 800, 600))
	assert.Equal(t, image.Pt(900, 900), clampOrigin(image.Pt(900, 900), size, 0, 0))
}

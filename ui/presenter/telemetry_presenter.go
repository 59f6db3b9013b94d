package presenter

import (
	"fmt"
	"image"
	"time"

	"github.com/soocke/reelbot-go/domain/fishing"
	"github.com/soocke/reelbot-go/ui/images"
	"github.com/soocke/reelbot-go/ui/model"
)

// TelemetrySource exposes the latest loop snapshot.
type TelemetrySource interface {
	LastTelemetry() fishing.Telemetry
}

// TelemetryView describes the UI surface updated by the presenter.
type TelemetryView interface {
	SetStatus(string)
	SetTelemetry(string)
	UpdatePreview(img image.Image)
}

// TelemetryPresenter renders the status line, the marker readout and the
// annotated control-bar preview.
type TelemetryPresenter struct {
	src     TelemetrySource
	view    TelemetryView
	preview *model.PreviewModel
	offset  int

	lastStatus string
	lastDetail string
	lastFrame  time.Time
}

// NewTelemetryPresenter returns a presenter drawing the desired control row
// offset pixels below the target.
func NewTelemetryPresenter(src TelemetrySource, view TelemetryView, preview *model.PreviewModel, offset int) *TelemetryPresenter {
	return &TelemetryPresenter{src: src, view: view, preview: preview, offset: offset}
}

// SetOffset changes the desired-row offset drawn on the preview.
func (p *TelemetryPresenter) SetOffset(offset int) {
	if p != nil {
		p.offset = offset
	}
}

// Tick pulls the latest telemetry; the view is only touched when text changed
// or a new frame is due.
func (p *TelemetryPresenter) Tick(now time.Time) {
	if p == nil || p.src == nil || p.view == nil {
		return
	}
	t := p.src.LastTelemetry()
	if s := t.Status(); s != p.lastStatus {
		p.lastStatus = s
		p.view.SetStatus(s)
	}
	if d := Detail(t); d != p.lastDetail {
		p.lastDetail = d
		p.view.SetTelemetry(d)
	}
	if !t.Running || t.ControlFrame == nil || !t.At.After(p.lastFrame) {
		return
	}
	if !p.preview.Due(now) {
		return
	}
	p.lastFrame = t.At
	p.view.UpdatePreview(images.Annotate(t.ControlFrame, t.Reading, p.offset))
}

// Detail formats the marker readout for the telemetry label.
func Detail(t fishing.Telemetry) string {
	if !t.Running {
		return "target - | control - | progress -"
	}
	engaged := "up"
	if t.Pressed {
		engaged = "down"
	}
	return fmt.Sprintf("target %s | control %s | %s | progress %.0f%% | %.0f fps | button %s",
		t.Reading.Target, t.Reading.Control, t.Command, t.Progress, t.FPS, engaged)
}

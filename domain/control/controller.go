// Package control turns marker readings into actuation commands.
//
// The controller is piecewise proportional: the signed tracking distance is
// classified into a small table of duty-cycle bands because the effector is
// a single on/off button. Apart from the target velocity estimate it holds no
// state, so callers thread VelocityState through successive Decide calls.
package control

import (
	"fmt"

	"github.com/soocke/reelbot-go/config"
	"github.com/soocke/reelbot-go/domain/vision"
)

// ModeRelease labels a disengage command.
const ModeRelease = "release"

// Command is the decision for one control interval. Engage=false means the
// button is fully released. DutyCycle 100 is held continuously; anything
// lower is pulse-width modulated by the driver.
type Command struct {
	Engage    bool
	DutyCycle int
	Mode      string
	Distance  float64
}

// Release is the disengage command.
var Release = Command{Mode: ModeRelease}

// Continuous reports whether the command asks for an uninterrupted hold.
func (c Command) Continuous() bool { return c.Engage && c.DutyCycle >= 100 }

func (c Command) String() string {
	if !c.Engage {
		return fmt.Sprintf("%s d=%.1f", c.Mode, c.Distance)
	}
	return fmt.Sprintf("%s %d%% d=%.1f", c.Mode, c.DutyCycle, c.Distance)
}

// VelocityState is the rolling target velocity estimate.
type VelocityState struct {
	PrevTarget vision.Pos
	Velocity   float64
}

// Controller maps marker readings to commands.
type Controller struct {
	bands         []config.Band
	offset        float64
	prediction    bool
	predictTicks  float64
	predictWeight float64
	smooth        float64
}

// NewController builds a controller from the controller section of cfg.
// The band table is normalised so the mapping is monotone.
func NewController(cfg *config.Config) *Controller {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	smooth := cfg.VelocitySmooth
	if smooth <= 0 || smooth > 1 {
		smooth = 1
	}
	return &Controller{
		bands:         config.NormalizeBands(cfg.Bands),
		offset:        float64(cfg.TargetOffset),
		prediction:    cfg.Prediction,
		predictTicks:  float64(cfg.PredictTicks),
		predictWeight: cfg.PredictWeight,
		smooth:        smooth,
	}
}

// Bands returns a copy of the active band table.
func (c *Controller) Bands() []config.Band {
	out := make([]config.Band, len(c.bands))
	copy(out, c.bands)
	return out
}

// Decide computes the command for the current reading. A reading with either
// marker missing resets the velocity estimate and disengages.
func (c *Controller) Decide(r vision.MarkerReading, st VelocityState) (Command, VelocityState) {
	if !r.Complete() {
		return Release, VelocityState{}
	}
	target := float64(r.Target.Y)
	control := float64(r.Control.Y)

	next := VelocityState{PrevTarget: r.Target}
	if st.PrevTarget.OK {
		raw := target - float64(st.PrevTarget.Y)
		next.Velocity = c.smooth*raw + (1-c.smooth)*st.Velocity
	}

	distance := c.Distance(control, target)
	if c.prediction {
		predicted := c.Distance(control, target+next.Velocity*c.predictTicks)
		distance = c.predictWeight*distance + (1-c.predictWeight)*predicted
	}
	cmd := c.Command(distance)
	return cmd, next
}

// Distance is the signed tracking error against the desired point, which sits
// offset pixels below the target in screen coordinates. Positive means the
// control marker is below the desired point.
func (c *Controller) Distance(control, target float64) float64 {
	return control - (target + c.offset)
}

// Command classifies distance into a band.
func (c *Controller) Command(distance float64) Command {
	for _, b := range c.bands {
		if distance >= float64(b.MinDistance) {
			if b.DutyCycle <= 0 {
				break
			}
			return Command{Engage: true, DutyCycle: b.DutyCycle, Mode: b.Label, Distance: distance}
		}
	}
	return Command{Mode: ModeRelease, Distance: distance}
}

// DutyFor returns the duty cycle the table assigns to distance.
func (c *Controller) DutyFor(distance float64) int {
	cmd := c.Command(distance)
	if !cmd.Engage {
		return 0
	}
	return cmd.DutyCycle
}

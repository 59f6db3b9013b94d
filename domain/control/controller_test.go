package control

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soocke/reelbot-go/config"
	"github.com/soocke/reelbot-go/domain/vision"
)

func currentErrorController() *Controller {
	cfg := config.DefaultConfig()
	cfg.Prediction = false
	return NewController(cfg)
}

func reading(target, control int) vision.MarkerReading {
	return vision.MarkerReading{Target: vision.At(target), Control: vision.At(control)}
}

func TestDecideScenarios(t *testing.T) {
	c := currentErrorController()
	tests := []struct {
		name            string
		target, control int
		engage          bool
		duty            int
		distance        float64
	}{
		{"hold at desired gap", 200, 220, true, 30, 0},
		{"far below target", 100, 200, true, 100, 80},
		{"overshoot", 300, 270, false, 0, -50},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd, _ := c.Decide(reading(tc.target, tc.control), VelocityState{})
			assert.Equal(t, tc.engage, cmd.Engage)
			assert.Equal(t, tc.duty, c.DutyFor(cmd.Distance))
			assert.InDelta(t, tc.distance, cmd.Distance, 1e-9)
			if tc.engage {
				assert.Equal(t, tc.duty, cmd.DutyCycle)
			}
		})
	}
}

func TestDecideHoldLabelAndContinuous(t *testing.T) {
	c := currentErrorController()
	cmd, _ := c.Decide(reading(200, 220), VelocityState{})
	assert.Equal(t, "hold", cmd.Mode)
	assert.False(t, cmd.Continuous())

	cmd, _ = c.Decide(reading(100, 200), VelocityState{})
	assert.True(t, cmd.Continuous())

	cmd, _ = c.Decide(reading(300, 270), VelocityState{})
	assert.Equal(t, ModeRelease, cmd.Mode)
}

func TestDecideMissingMarkerResetsVelocity(t *testing.T) {
	c := NewController(config.DefaultConfig())
	st := VelocityState{PrevTarget: vision.At(190), Velocity: 4}
	cmd, next := c.Decide(vision.MarkerReading{Target: vision.At(200)}, st)
	assert.False(t, cmd.Engage)
	assert.Equal(t, VelocityState{}, next)

	cmd, next = c.Decide(vision.MarkerReading{Control: vision.At(200)}, st)
	assert.False(t, cmd.Engage)
	assert.Equal(t, VelocityState{}, next)
}

func TestDutyMonotonic(t *testing.T) {
	c := NewController(config.DefaultConfig())
	prev := -1
	for d := -200.0; d <= 200; d += 0.5 {
		duty := c.DutyFor(d)
		assert.GreaterOrEqual(t, duty, prev, "distance %.1f", d)
		prev = duty
	}
	assert.Equal(t, 0, c.DutyFor(-26))
	assert.Equal(t, 100, c.DutyFor(40))
}

func TestDutyMonotonicWithUnsortedTable(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Bands = []config.Band{
		{MinDistance: -10, DutyCycle: 60, Label: "a"},
		{MinDistance: 30, DutyCycle: 40, Label: "b"},
		{MinDistance: 10, DutyCycle: 120, Label: "c"},
	}
	c := NewController(cfg)
	prev := -1
	for d := -50.0; d <= 80; d++ {
		duty := c.DutyFor(d)
		assert.GreaterOrEqual(t, duty, prev, "distance %.1f", d)
		prev = duty
	}
}

func TestDecideVelocityPrediction(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Prediction = true
	cfg.PredictTicks = 3
	cfg.PredictWeight = 0.7
	cfg.VelocitySmooth = 1
	c := NewController(cfg)

	_, st := c.Decide(reading(200, 220), VelocityState{})
	assert.Equal(t, vision.At(200), st.PrevTarget)
	assert.Zero(t, st.Velocity)

	// Target moving down 10px per tick: current distance -10, predicted
	// target 240 gives -40, blended 0.7*(-10) + 0.3*(-40) = -19.
	cmd, st := c.Decide(reading(210, 220), st)
	assert.InDelta(t, 10.0, st.Velocity, 1e-9)
	assert.InDelta(t, -19.0, cmd.Distance, 1e-9)
	assert.Equal(t, "ease", cmd.Mode)
}

func TestDecideVelocitySmoothing(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.VelocitySmooth = 0.5
	c := NewController(cfg)
	st := VelocityState{PrevTarget: vision.At(100), Velocity: 4}
	_, next := c.Decide(reading(110, 150), st)
	assert.InDelta(t, 7.0, next.Velocity, 1e-9)
}

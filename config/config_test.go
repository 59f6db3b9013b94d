package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reelbot.json")
	cfg := DefaultConfig()
	cfg.TargetOffset = 12
	cfg.RecoveryPolicy = RecoveryRedetect
	cfg.WindowTitle = "Roblox"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, got.TargetOffset)
	assert.Equal(t, RecoveryRedetect, got.RecoveryPolicy)
	assert.Equal(t, "Roblox", got.WindowTitle)
	assert.Equal(t, cfg.Bands, got.Bands)
	assert.Equal(t, cfg.TargetHSV, got.TargetHSV)
}

func TestLoad_BadJSONReturnsDefaultsAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidate_ClampsInvalidValues(t *testing.T) {
	cfg := &Config{
		ControlRGBMin:     40,
		ControlRGBMax:     10,
		PredictWeight:     3,
		CompletionPercent: 250,
		RecoveryPolicy:    " REDETECT ",
	}
	require.NoError(t, cfg.Validate())
	d := DefaultConfig()
	assert.Equal(t, d.ControlWidth, cfg.ControlWidth)
	assert.Equal(t, d.ControlHeight, cfg.ControlHeight)
	assert.Equal(t, uint8(10), cfg.ControlRGBMin)
	assert.Equal(t, uint8(40), cfg.ControlRGBMax)
	assert.Equal(t, d.PredictWeight, cfg.PredictWeight)
	assert.Equal(t, d.CompletionPercent, cfg.CompletionPercent)
	assert.Equal(t, RecoveryRedetect, cfg.RecoveryPolicy)
	assert.Equal(t, DefaultBands(), cfg.Bands)
}

func TestNormalizeBands_SortsAndEnforcesMonotonicity(t *testing.T) {
	in := []Band{
		{MinDistance: -10, DutyCycle: 60, Label: "hold"},
		{MinDistance: 30, DutyCycle: 140, Label: "full"},
		{MinDistance: 10, DutyCycle: 40, Label: "push"},
	}
	out := NormalizeBands(in)
	require.Len(t, out, 3)
	assert.Equal(t, []int{30, 10, -10}, []int{out[0].MinDistance, out[1].MinDistance, out[2].MinDistance})
	assert.Equal(t, 100, out[0].DutyCycle)
	assert.Equal(t, 40, out[1].DutyCycle)
	assert.Equal(t, 40, out[2].DutyCycle, "lower band must not exceed the band above it")
	assert.Equal(t, -10, in[0].MinDistance, "input must not be mutated")
}

func TestHSVRange_Contains(t *testing.T) {
	r := HSVRange{Lower: [3]uint8{35, 50, 50}, Upper: [3]uint8{85, 255, 255}}
	assert.True(t, r.Contains(60, 200, 200))
	assert.False(t, r.Contains(20, 200, 200))
	assert.False(t, r.Contains(60, 10, 200))
}

func TestCalibration_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.json")
	_, ok, err := LoadCalibration(path)
	require.NoError(t, err)
	assert.False(t, ok, "absent record means uncalibrated")

	require.NoError(t, Calibration{X: 1136, Y: 416}.Save(path))
	cal, ok, err := LoadCalibration(path)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Calibration{X: 1136, Y: 416}, cal)
}

func TestCounter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter.json")
	c, err := LoadCounter(path)
	require.NoError(t, err)
	assert.Zero(t, c.Catches)

	require.NoError(t, Counter{Catches: 7}.Save(path))
	c, err = LoadCounter(path)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Catches)
}

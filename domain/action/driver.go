package action

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/reelbot-go/domain/control"
)

// ErrActuation marks a failed input injection. The driver has already tried
// to release the button when it returns an error wrapping ErrActuation.
var ErrActuation = errors.New("actuation failed")

// Effector injects a single binary input (the left mouse button).
type Effector interface {
	Press() error
	Release() error
	Click() error
}

// Driver turns controller commands into press/release transitions.
//
// Duty cycles below 100 are approximated by pulse-width modulation over a
// fixed interval. Transitions only happen when Tick is called, so the actual
// on/off durations are rounded up to the next loop iteration; a slow capture
// shows up as jitter in the produced duty cycle.
type Driver struct {
	eff        Effector
	interval   time.Duration
	logger     *slog.Logger
	pressed    bool
	lastChange time.Time
	presses    uint64
}

// NewDriver returns a driver using interval as the PWM period.
func NewDriver(eff Effector, interval time.Duration, logger *slog.Logger) *Driver {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Driver{eff: eff, interval: interval, logger: logger}
}

// SetInterval changes the PWM period. Values <= 0 are ignored.
func (d *Driver) SetInterval(interval time.Duration) {
	if interval > 0 {
		d.interval = interval
	}
}

// Pressed reports whether the driver currently holds the button down.
func (d *Driver) Pressed() bool { return d.pressed }

// Presses returns the number of press transitions issued so far.
func (d *Driver) Presses() uint64 { return d.presses }

// Tick applies cmd at time now.
func (d *Driver) Tick(cmd control.Command, now time.Time) error {
	if !cmd.Engage || cmd.DutyCycle <= 0 {
		if d.pressed {
			return d.release(now)
		}
		return nil
	}
	if cmd.Continuous() {
		if !d.pressed {
			return d.press(now)
		}
		return nil
	}
	on := d.interval * time.Duration(cmd.DutyCycle) / 100
	off := d.interval - on
	elapsed := now.Sub(d.lastChange)
	switch {
	case d.pressed && elapsed >= on:
		return d.release(now)
	case !d.pressed && elapsed >= off:
		return d.press(now)
	}
	return nil
}

// Release lets go of the button if it is held. Safe to call on every exit path.
func (d *Driver) Release() error {
	if !d.pressed {
		return nil
	}
	return d.release(time.Now())
}

// Click releases any hold and issues a single press+release.
func (d *Driver) Click() error {
	if err := d.Release(); err != nil {
		return err
	}
	if err := d.eff.Click(); err != nil {
		return d.fault("click", err)
	}
	if d.logger != nil {
		d.logger.Info("recovery click issued")
	}
	return nil
}

func (d *Driver) press(now time.Time) error {
	if err := d.eff.Press(); err != nil {
		return d.fault("press", err)
	}
	d.pressed = true
	d.lastChange = now
	d.presses++
	return nil
}

func (d *Driver) release(now time.Time) error {
	if err := d.eff.Release(); err != nil {
		return d.fault("release", err)
	}
	d.pressed = false
	d.lastChange = now
	return nil
}

// fault attempts a best-effort release before reporting err.
func (d *Driver) fault(op string, err error) error {
	if rerr := d.eff.Release(); rerr == nil {
		d.pressed = false
	} else if d.logger != nil {
		d.logger.Error("best-effort release failed", "op", op, "error", rerr)
	}
	return fmt.Errorf("%w: %s: %w", ErrActuation, op, err)
}

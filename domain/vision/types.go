package vision

import "fmt"

// Pos is an optional vertical offset inside a region (0 = top).
type Pos struct {
	Y  int
	OK bool
}

// At returns a present position.
func At(y int) Pos { return Pos{Y: y, OK: true} }

// None is the absent position.
var None = Pos{}

func (p Pos) String() string {
	if !p.OK {
		return "none"
	}
	return fmt.Sprintf("%d", p.Y)
}

// MarkerReading holds the marker positions extracted from one control-bar frame.
type MarkerReading struct {
	Target  Pos
	Control Pos
}

// Complete reports whether both markers were found.
func (m MarkerReading) Complete() bool { return m.Target.OK && m.Control.OK }

// Missing reports whether neither marker was found.
func (m MarkerReading) Missing() bool { return !m.Target.OK && !m.Control.OK }

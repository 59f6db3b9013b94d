package view

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows run durations and catch counts.
type SessionStats interface {
	SetSession(d time.Duration)
	SetTotal(d time.Duration)
	SetCatches(session, total int)
}

type sessionStats struct {
	sessionLbl *LabelWidget
	totalLbl   *LabelWidget
	catchesLbl *LabelWidget
}

// NewSessionStats grids the duration labels at (row, startCol) and
// (row, startCol+1) and the catches label below them.
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{sessionLbl: Label(Width(14)), totalLbl: Label(Width(14)), catchesLbl: Label(Width(28))}
	place := func(w *LabelWidget, r, c, span int) {
		if parent != nil {
			Grid(w, In(parent), Row(r), Column(c), Columnspan(span), Sticky("w"), Padx("0.2m"))
			return
		}
		Grid(w, Row(r), Column(c), Columnspan(span), Sticky("w"), Padx("0.2m"))
	}
	place(s.sessionLbl, row, startCol, 1)
	place(s.totalLbl, row, startCol+1, 1)
	place(s.catchesLbl, row+1, startCol, 2)
	s.sessionLbl.Configure(Txt("Session: 00:00"))
	s.totalLbl.Configure(Txt("Total: 00:00"))
	s.catchesLbl.Configure(Txt("Catches: 0 (all time 0)"))
	return s
}

func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	if h := seconds / 3600; h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, seconds/60%60, seconds%60)
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func (s *sessionStats) SetSession(d time.Duration) {
	if s == nil || s.sessionLbl == nil {
		return
	}
	s.sessionLbl.Configure(Txt("Session: " + clock(d)))
}

func (s *sessionStats) SetTotal(d time.Duration) {
	if s == nil || s.totalLbl == nil {
		return
	}
	s.totalLbl.Configure(Txt("Total: " + clock(d)))
}

func (s *sessionStats) SetCatches(session, total int) {
	if s == nil || s.catchesLbl == nil {
		return
	}
	s.catchesLbl.Configure(Txt(fmt.Sprintf("Catches: %d (all time %d)", session, total)))
}

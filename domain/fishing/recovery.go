package fishing

import (
	"time"

	"github.com/soocke/reelbot-go/config"
	"github.com/soocke/reelbot-go/domain/region"
)

// beginEpisode starts a new loss episode. Each episode allows at most one
// recovery click and a fresh re-detection budget.
func (s *Session) beginEpisode(now time.Time) {
	s.episodeStart = now
	s.clicked = false
	s.redetectTries = 0
}

// recoverSignal applies the configured recovery policy while markers are
// unreadable. The recovery timeout closes the current episode.
func (s *Session) recoverSignal(now time.Time) (time.Duration, error) {
	if s.episodeStart.IsZero() {
		s.beginEpisode(now)
	}
	if now.Sub(s.episodeStart) >= s.recoveryTimeout {
		s.logger.Info("recovery timeout, retrying", "timeout", s.recoveryTimeout, "policy", s.policy)
		s.beginEpisode(now)
	}
	switch s.policy {
	case config.RecoveryRedetect:
		s.redetect()
	default:
		if !s.clicked && now.Sub(s.episodeStart) >= s.grace {
			s.clicked = true
			if err := s.deps.Actuator.Click(); err != nil {
				return 0, err
			}
			s.logger.Info("cast retry issued", "after", now.Sub(s.episodeStart).Round(time.Millisecond))
		}
	}
	return s.idlePoll, nil
}

// redetect performs one bounded re-scan per call and swaps the regions when
// the bar moved beyond the shift threshold.
func (s *Session) redetect() {
	if s.deps.Scanner == nil || s.redetectTries >= s.redetectAttempts {
		return
	}
	s.redetectTries++
	origin, ok, err := s.deps.Scanner.Scan()
	if err != nil {
		s.logger.Debug("re-detection scan failed", "attempt", s.redetectTries, "error", err)
		return
	}
	if !ok {
		return
	}
	s.redetectTries = s.redetectAttempts
	next, moved := region.Recalibrate(s.Regions(), origin, s.layout, s.shiftThreshold)
	if !moved {
		return
	}
	s.SetRegions(next)
	if s.deps.OnCalibrated != nil {
		s.deps.OnCalibrated(next)
	}
	s.logger.Info("control bar moved, regions replaced", "control", next.Control.String(), "progress", next.Progress.String())
}

package guesswhat

import (
	"math/rand/v2"
	"time"

	"github.com/alexnjoya/mindlink/internal/scoring"
)

// Session drives one Guess What game from first level to end. The host calls
// its methods in response to ticks, selections and pause toggles; a nil State
// turns every event into a no-op so stray events after the end are harmless.
type Session struct {
	ID         string      `json:"sessionId"`
	Config     *Config     `json:"config"`
	State      *LevelState `json:"gameState"`
	Metrics    []Metric    `json:"metrics"`
	TotalScore int         `json:"totalScore"`
	Playing    bool        `json:"isPlaying"`
	Paused     bool        `json:"isPaused"`
	Ended      bool        `json:"gameEnded"`
	Complete   bool        `json:"complete"`
}

// NewSession starts a game on the configured first level
func NewSession(id string, cfg Config, rng *rand.Rand) *Session {
	cfg.ImageSet = append([]string(nil), cfg.ImageSet...)
	return &Session{
		ID:      id,
		Config:  &cfg,
		State:   InitLevel(cfg, cfg.firstLevel(), rng),
		Metrics: []Metric{},
		Playing: true,
	}
}

// Tick advances the memorization countdown by one second. A tick on an
// exhausted countdown ends the memorization phase and starts the level clock.
// It reports whether the cards were revealed.
func (s *Session) Tick(now time.Time) bool {
	if s.Paused || s.State == nil || !s.State.MemorizationPhase {
		return false
	}
	if s.State.TimeLeft > 0 {
		s.State.TimeLeft--
		return false
	}
	return s.Reveal(now)
}

// Reveal ends the memorization phase once the countdown reached zero
func (s *Session) Reveal(now time.Time) bool {
	if s.State == nil || !s.State.MemorizationPhase || s.State.TimeLeft != 0 {
		return false
	}
	s.State.MemorizationPhase = false
	s.State.LevelStartTime = now
	return true
}

// SetLevelStartTime overrides the level clock
func (s *Session) SetLevelStartTime(t time.Time) {
	if s.State == nil {
		return
	}
	s.State.LevelStartTime = t
}

// Select evaluates a card-select event
func (s *Session) Select(cardID int) Selection {
	if s.State == nil || s.Paused || s.Ended {
		return Selection{}
	}
	return EvaluateSelection(s.State, cardID)
}

// LevelComplete reports whether the current level is ready to be scored
func (s *Session) LevelComplete() bool {
	return s.State != nil && s.State.IsComplete()
}

// CompleteLevel scores the current level, records it and either moves to the
// next level or ends the game. It returns nil when there is no level to score.
func (s *Session) CompleteLevel(now time.Time, rng *rand.Rand) *Metric {
	if s.Config == nil || s.State == nil {
		return nil
	}

	s.State.LevelEndTime = now
	metric := ScoreLevel(s.State, now)
	s.Metrics = append(s.Metrics, metric)
	s.TotalScore += metric.LevelScore

	if metric.Level >= s.Config.MaxLevels {
		s.End()
		return &metric
	}

	s.State = InitLevel(*s.Config, metric.Level+1, rng)
	return &metric
}

// Pause stops the clock at now
func (s *Session) Pause(now time.Time) {
	if s.Paused || s.State == nil {
		return
	}
	s.Paused = true
	s.State.PauseStartTime = now
}

// Resume restarts the clock. The paused span is excluded from the level's
// response time and, during memorization, taken off the countdown.
func (s *Session) Resume(now time.Time) {
	if !s.Paused || s.State == nil || s.State.PauseStartTime.IsZero() {
		return
	}

	pausedFor := max(now.Sub(s.State.PauseStartTime), 0)

	if !s.State.LevelStartTime.IsZero() {
		s.State.LevelStartTime = s.State.LevelStartTime.Add(pausedFor)
	}

	if s.State.MemorizationPhase {
		s.State.TimeLeft -= int(pausedFor / time.Second)
		if s.State.TimeLeft < 0 {
			s.State.TimeLeft = 0
		}
	}

	s.Paused = false
	s.State.PauseStartTime = time.Time{}
}

// Restart throws away progress and starts again from the first level
func (s *Session) Restart(rng *rand.Rand) {
	if s.Config == nil {
		return
	}
	s.State = InitLevel(*s.Config, s.Config.firstLevel(), rng)
	s.Metrics = []Metric{}
	s.TotalScore = 0
	s.Paused = false
	s.Playing = true
	s.Ended = false
	s.Complete = false
}

// ForceEnd abandons the session. Progress is discarded and the session is
// never marked complete.
func (s *Session) ForceEnd() {
	s.ID = ""
	s.Config = nil
	s.State = nil
	s.Metrics = nil
	s.TotalScore = 0
	s.Paused = false
	s.Playing = false
	s.Ended = true
	s.Complete = false
}

// End finishes the session naturally, keeping metrics and score
func (s *Session) End() {
	s.Config = nil
	s.State = nil
	s.Paused = false
	s.Playing = false
	s.Ended = true
	s.Complete = true
}

// MMSE returns the normalized estimate of the session's total score
func (s *Session) MMSE() int {
	return scoring.NormalizeToMMSE(s.TotalScore)
}

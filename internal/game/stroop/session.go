package stroop

import (
	"time"

	"github.com/alexnjoya/mindlink/internal/scoring"
)

// Session drives one Stroop game. The host owns the countdown; the session
// only keeps the timestamps it needs to compute the remaining budget.
type Session struct {
	ID                  string        `json:"sessionId"`
	Config              *Config       `json:"config"`
	State               *LevelState   `json:"gameState"`
	Metrics             *Metrics      `json:"metrics"`
	TotalScore          int           `json:"totalScore"`
	Playing             bool          `json:"isPlaying"`
	Paused              bool          `json:"isPaused"`
	Ended               bool          `json:"gameEnded"`
	Complete            bool          `json:"complete"`
	StartedAt           time.Time     `json:"startedAt"`
	PauseStartTime      time.Time     `json:"pauseStartTime"`
	TotalPausedDuration time.Duration `json:"totalPausedDuration"`
}

// NewSession starts a game whose clock begins at now
func NewSession(id string, cfg Config, now time.Time) *Session {
	s := &Session{ID: id, Config: &cfg}
	s.reset(now)
	return s
}

func (s *Session) reset(now time.Time) {
	s.State = InitGame(*s.Config)
	s.Metrics = &Metrics{}
	s.TotalScore = 0
	s.Playing = true
	s.Paused = false
	s.Ended = false
	s.Complete = false
	s.StartedAt = now
	s.PauseStartTime = time.Time{}
	s.TotalPausedDuration = 0
}

// Answer judges the player's match/no-match call on the current question and
// records it. Answers while paused, after the end or past the last question
// are not accepted.
func (s *Session) Answer(saidMatch bool) Answer {
	if s.Paused || s.Ended || s.State == nil {
		return Answer{}
	}
	q, ok := s.State.Current()
	if !ok {
		return Answer{Done: true}
	}

	correct := IsUserCorrect(q, saidMatch)
	points := EvaluateAnswer(s.State, s.Metrics, correct, LevelBonus(s.State.Level))
	s.TotalScore += points

	return Answer{
		Accepted: true,
		Correct:  correct,
		Points:   points,
		Done:     s.State.Exhausted(),
	}
}

// Pause stops the clock at now
func (s *Session) Pause(now time.Time) {
	if s.Paused || s.Ended {
		return
	}
	s.Paused = true
	s.PauseStartTime = now
}

// Resume adds the paused span to the total and restarts the clock
func (s *Session) Resume(now time.Time) {
	if !s.Paused || s.Ended || !s.Playing || s.State == nil {
		return
	}
	if !s.PauseStartTime.IsZero() {
		s.TotalPausedDuration += max(now.Sub(s.PauseStartTime), 0)
	}
	s.Paused = false
	s.PauseStartTime = time.Time{}
}

// Remaining returns the duration budget left at now, never negative
func (s *Session) Remaining(now time.Time) time.Duration {
	if s.State == nil {
		return 0
	}
	elapsed := now.Sub(s.StartedAt) - s.TotalPausedDuration
	if s.Paused && !s.PauseStartTime.IsZero() {
		elapsed -= now.Sub(s.PauseStartTime)
	}
	budget := time.Duration(s.State.Duration) * time.Millisecond
	return max(budget-elapsed, 0)
}

// Expired reports whether the duration budget is spent
func (s *Session) Expired(now time.Time) bool {
	return s.State != nil && s.Remaining(now) == 0
}

// Restart throws away progress and starts again at now
func (s *Session) Restart(now time.Time) {
	if s.Config == nil {
		return
	}
	s.reset(now)
}

// ForceEnd abandons the session without marking it complete
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

// MMSE returns the session's MMSE estimate. Stroop has no normalizer of its
// own yet and reuses the Guess What scale.
func (s *Session) MMSE() int {
	return scoring.NormalizeToMMSE(s.TotalScore)
}

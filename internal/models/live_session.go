package models

import (
	"time"

	"github.com/alexnjoya/mindlink/internal/game/guesswhat"
	"github.com/alexnjoya/mindlink/internal/game/stroop"
)

// Engine names a game engine
type Engine string

const (
	EngineGuessWhat Engine = "guess-what"
	EngineStroop    Engine = "stroop"
)

// LiveSession is the in-play state of a session kept in the session store.
// Exactly one of GuessWhat and Stroop is set, matching Engine.
type LiveSession struct {
	ID        string             `json:"id"`
	UserID    string             `json:"userId"`
	Email     string             `json:"email,omitempty"`
	Name      string             `json:"name,omitempty"`
	GameKey   string             `json:"gameKey"`
	GameTitle string             `json:"gameTitle"`
	Engine    Engine             `json:"engine"`
	GuessWhat *guesswhat.Session `json:"guessWhat,omitempty"`
	Stroop    *stroop.Session    `json:"stroop,omitempty"`
	StartedAt time.Time          `json:"startedAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Ended reports whether the engine has finished, naturally or not
func (l *LiveSession) Ended() bool {
	switch {
	case l.GuessWhat != nil:
		return l.GuessWhat.Ended
	case l.Stroop != nil:
		return l.Stroop.Ended
	}
	return true
}

// Complete reports whether the engine finished naturally
func (l *LiveSession) Complete() bool {
	switch {
	case l.GuessWhat != nil:
		return l.GuessWhat.Complete
	case l.Stroop != nil:
		return l.Stroop.Complete
	}
	return false
}

// TotalScore returns the engine's running score
func (l *LiveSession) TotalScore() int {
	switch {
	case l.GuessWhat != nil:
		return l.GuessWhat.TotalScore
	case l.Stroop != nil:
		return l.Stroop.TotalScore
	}
	return 0
}

// MMSE returns the engine's MMSE estimate
func (l *LiveSession) MMSE() int {
	switch {
	case l.GuessWhat != nil:
		return l.GuessWhat.MMSE()
	case l.Stroop != nil:
		return l.Stroop.MMSE()
	}
	return 0
}

// MetricsValue returns the engine's metrics in the shape they are persisted
func (l *LiveSession) MetricsValue() any {
	switch {
	case l.GuessWhat != nil:
		if l.GuessWhat.Metrics == nil {
			return []guesswhat.Metric{}
		}
		return l.GuessWhat.Metrics
	case l.Stroop != nil:
		if l.Stroop.Metrics == nil {
			return stroop.Metrics{}
		}
		return l.Stroop.Metrics
	}
	return nil
}

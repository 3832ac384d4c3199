package models

import (
	"encoding/json"
	"time"
)

// SessionStatus is the lifecycle state of a persisted game session
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
	StatusAbandoned SessionStatus = "abandoned"
)

// Participant holds the details a research participant gives before playing
type Participant struct {
	Name           string `json:"participantName"`
	MMSEScore      string `json:"mmseScore,omitempty"` // clinician-reported, free form
	Consent        bool   `json:"consent"`
	Age            int    `json:"age"`
	EducationLevel string `json:"educationLevel,omitempty"`
}

// GameSession is the persisted record of one played game
type GameSession struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	GameKey     string          `json:"gameKey"`
	GameTitle   string          `json:"gameTitle"`
	GameType    string          `json:"gameType"`
	Status      SessionStatus   `json:"status"`
	InitConfig  json.RawMessage `json:"initConfig"`
	Metrics     json.RawMessage `json:"metrics"`
	Participant *Participant    `json:"participant,omitempty"`
	TotalScore  int             `json:"totalScore"`
	MMSEScore   int             `json:"mmseScore"`
	Complete    bool            `json:"complete"`
	SessionDate time.Time       `json:"sessionDate"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

// IsFinished reports whether the session can no longer be played
func (s *GameSession) IsFinished() bool {
	return s.Status == StatusCompleted || s.Status == StatusAbandoned
}

// SessionFilter narrows a session listing
type SessionFilter struct {
	UserID       string
	GameKey      string
	CompleteOnly bool
	Limit        int
}

package guesswhat

import "time"

// DefaultMaxAttempts is the number of wrong selections allowed per level
const DefaultMaxAttempts = 3

// defaultReductionPerLevel is how much memorization time (ms) each level removes
const defaultReductionPerLevel = 1000

// Config holds the parameters of a Guess What session. Times are milliseconds.
type Config struct {
	ID                                string   `json:"id" yaml:"id"`
	Type                              string   `json:"type" yaml:"type"`
	Title                             string   `json:"title" yaml:"title"`
	MaxLevels                         int      `json:"maxLevels" yaml:"maxLevels"`
	DefaultMemorizationTime           int      `json:"defaultMemorizationTime" yaml:"defaultMemorizationTime"`
	MemorizationTimeReductionPerLevel int      `json:"memorizationTimeReductionPerLevel" yaml:"memorizationTimeReductionPerLevel"`
	MinMemorizationTime               int      `json:"minMemorizationTime" yaml:"minMemorizationTime"`
	BasePairs                         int      `json:"basePairs" yaml:"basePairs"`
	StartLevel                        int      `json:"startLevel,omitempty" yaml:"startLevel"`
	ImageSet                          []string `json:"imageSet" yaml:"imageSet"`
}

// firstLevel returns the level a session starts on
func (c Config) firstLevel() int {
	if c.StartLevel > 0 {
		return c.StartLevel
	}
	return 1
}

func (c Config) reductionPerLevel() int {
	if c.MemorizationTimeReductionPerLevel > 0 {
		return c.MemorizationTimeReductionPerLevel
	}
	return defaultReductionPerLevel
}

// Card is one memorized image at a display position
type Card struct {
	ID      int    `json:"id"`
	Image   string `json:"image"`
	Matched bool   `json:"matched"`
}

// LevelState is the state of the level currently being played
type LevelState struct {
	Level             int       `json:"level"`
	Cards             []Card    `json:"cards"`
	ImagesToFind      []string  `json:"currentImagesToFind"`
	MemorizationPhase bool      `json:"isMemorizationPhase"`
	MemorizationTime  int       `json:"memorizationTime"` // ms
	TimeLeft          int       `json:"timeLeft"`         // seconds
	Attempts          int       `json:"attempts"`
	MaxAttempts       int       `json:"maxAttempts"`
	LevelStartTime    time.Time `json:"levelStartTime"`
	LevelEndTime      time.Time `json:"levelEndTime"`
	PauseStartTime    time.Time `json:"pauseStartTime"`
}

// IsComplete reports whether the find-set is exhausted or the attempts are used up
func (s *LevelState) IsComplete() bool {
	return len(s.ImagesToFind) == 0 || s.Attempts >= s.MaxAttempts
}

// CorrectMatches counts matched cards
func (s *LevelState) CorrectMatches() int {
	count := 0
	for _, c := range s.Cards {
		if c.Matched {
			count++
		}
	}
	return count
}

func (s *LevelState) card(id int) *Card {
	for i := range s.Cards {
		if s.Cards[i].ID == id {
			return &s.Cards[i]
		}
	}
	return nil
}

// Metric is the audit record of one completed level
type Metric struct {
	Level             int     `json:"level"`
	Attempt           int     `json:"attempt"`
	TotalResponseTime float64 `json:"totalResponseTime"` // seconds
	Accuracy          float64 `json:"accuracy"`
	LevelErrors       int     `json:"levelErrors"`
	LevelScore        int     `json:"levelScore"`
}

// Selection is the outcome of a card-select event
type Selection struct {
	Accepted bool `json:"accepted"`
	Matched  bool `json:"matched"`
}

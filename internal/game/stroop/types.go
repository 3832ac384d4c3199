package stroop

// Question is one color word rendered in a font color. IsCorrect holds when
// the word names its own font color.
type Question struct {
	Text      string `json:"text" yaml:"text"`
	FontColor string `json:"fontColor" yaml:"fontColor"`
	IsCorrect bool   `json:"isCorrect" yaml:"isCorrect"`
}

// Config holds the parameters of a Stroop session
type Config struct {
	ID        string     `json:"id" yaml:"id"`
	Type      string     `json:"type" yaml:"type"`
	Title     string     `json:"title" yaml:"title"`
	Duration  int        `json:"duration" yaml:"duration"` // ms
	Questions []Question `json:"questions" yaml:"questions"`
}

// LevelState tracks progress through the question list. Level only feeds the
// bonus, it does not scale difficulty.
type LevelState struct {
	Level        int        `json:"level"`
	Duration     int        `json:"duration"` // ms
	Questions    []Question `json:"questions"`
	CurrentIndex int        `json:"currentIndex"`
}

// Current returns the question being asked
func (s *LevelState) Current() (Question, bool) {
	if s == nil || s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// Exhausted reports whether every question has been answered
func (s *LevelState) Exhausted() bool {
	return s == nil || s.CurrentIndex >= len(s.Questions)
}

// Metrics is the running aggregate of a session, updated on every answer
type Metrics struct {
	Questions           int     `json:"questions"`
	Attempts            int     `json:"attempts"`
	AverageResponseTime float64 `json:"averageResponseTime"` // seconds
	Errors              int     `json:"errors"`
	Accuracy            int     `json:"accuracy"`
}

// Answer is the outcome of an answer event
type Answer struct {
	Accepted bool `json:"accepted"`
	Correct  bool `json:"correct"`
	Points   int  `json:"points"`
	Done     bool `json:"done"`
}

package stroop

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/alexnjoya/mindlink/internal/scoring"
)

const (
	pointsPerCorrect = 100
	bonusEvery       = 10
	bonusPoints      = 10
)

// InitGame builds the starting state from cfg
func InitGame(cfg Config) *LevelState {
	return &LevelState{
		Level:        1,
		Duration:     cfg.Duration,
		Questions:    slices.Clone(cfg.Questions),
		CurrentIndex: 0,
	}
}

// EvaluateAnswer records one answer into metrics and returns the points it
// earned. The level and question index advance whether or not the answer was
// correct.
func EvaluateAnswer(state *LevelState, metrics *Metrics, correct bool, bonus int) int {
	if state == nil || metrics == nil {
		return 0
	}

	metrics.Attempts++
	metrics.Questions++
	if !correct {
		metrics.Errors++
	}
	// Derived from the duration budget, not from measured latency
	metrics.AverageResponseTime = float64(state.Duration) / float64(metrics.Attempts) / 1000
	metrics.Accuracy = int(scoring.RoundHalfUp(scoring.Percent(metrics.Attempts-metrics.Errors, metrics.Attempts)))

	AdvanceLevel(state)

	if !correct {
		return 0
	}
	return pointsPerCorrect + bonus
}

// AdvanceLevel moves to the next question
func AdvanceLevel(state *LevelState) {
	if state == nil {
		return
	}
	state.Level++
	state.CurrentIndex++
}

// LevelBonus returns the extra points for answering on level
func LevelBonus(level int) int {
	if level > 0 && level%bonusEvery == 0 {
		return bonusPoints
	}
	return 0
}

// IsUserCorrect reports whether the player's match judgement is right
func IsUserCorrect(q Question, saidMatch bool) bool {
	return q.IsCorrect == saidMatch
}

// FeedbackDelay is how long the answer feedback stays up before the next
// question. It shortens as the level rises.
func FeedbackDelay(level int) time.Duration {
	return time.Duration(max(300, 1000-level*30)) * time.Millisecond
}

// GenerateQuestions builds n questions from a color palette. Roughly
// matchRatio of them show a word in its own color; the rest use a different
// color. A palette with fewer than two colors only yields matches.
func GenerateQuestions(colors []string, n int, matchRatio float64, rng *rand.Rand) []Question {
	if len(colors) == 0 || n <= 0 {
		return nil
	}

	questions := make([]Question, n)
	for i := range questions {
		ti := rng.IntN(len(colors))
		fi := ti
		if len(colors) > 1 && rng.Float64() >= matchRatio {
			// any index but ti
			fi = rng.IntN(len(colors) - 1)
			if fi >= ti {
				fi++
			}
		}
		text, font := colors[ti], colors[fi]
		questions[i] = Question{Text: text, FontColor: font, IsCorrect: text == font}
	}
	return questions
}

package guesswhat

import (
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/alexnjoya/mindlink/internal/scoring"
)

// InitLevel builds the state of a new level. The random source decides which
// images are drawn, where their cards sit and which ones must be found.
func InitLevel(cfg Config, level int, rng *rand.Rand) *LevelState {
	numImages := level + cfg.BasePairs
	numImages = min(max(numImages, 0), len(cfg.ImageSet))

	// Distinct image indices, drawn without replacement
	drawn := rng.Perm(len(cfg.ImageSet))[:numImages]

	memorizationTime := max(cfg.MinMemorizationTime, cfg.DefaultMemorizationTime-level*cfg.reductionPerLevel())

	return &LevelState{
		Level:             level,
		Cards:             generateCards(drawn, cfg.ImageSet, rng),
		ImagesToFind:      selectImagesToFind(drawn, cfg.ImageSet, imagesToFindCount(level), rng),
		MemorizationPhase: true,
		MemorizationTime:  memorizationTime,
		TimeLeft:          memorizationTime / 1000,
		MaxAttempts:       DefaultMaxAttempts,
	}
}

// imagesToFindCount grows the find-set with the level
func imagesToFindCount(level int) int {
	switch {
	case level <= 3:
		return 1
	case level <= 6:
		return 2
	default:
		return 3
	}
}

// generateCards creates one card per drawn image and shuffles their positions
func generateCards(drawn []int, imageSet []string, rng *rand.Rand) []Card {
	cards := make([]Card, len(drawn))
	for id, idx := range drawn {
		cards[id] = Card{ID: id, Image: imageSet[idx]}
	}
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return cards
}

func selectImagesToFind(drawn []int, imageSet []string, count int, rng *rand.Rand) []string {
	images := make([]string, len(drawn))
	for i, idx := range drawn {
		images[i] = imageSet[idx]
	}
	rng.Shuffle(len(images), func(i, j int) {
		images[i], images[j] = images[j], images[i]
	})
	return images[:min(count, len(images))]
}

// EvaluateSelection applies a card-select event to the level. Selections made
// during memorization, while paused, on matched or unknown cards, or after the
// attempts are used up are not accepted and leave the state untouched.
func EvaluateSelection(state *LevelState, cardID int) Selection {
	if state == nil || state.MemorizationPhase || !state.PauseStartTime.IsZero() {
		return Selection{}
	}
	if state.IsComplete() {
		return Selection{}
	}

	card := state.card(cardID)
	if card == nil || card.Matched {
		return Selection{}
	}

	idx := slices.Index(state.ImagesToFind, card.Image)
	if idx < 0 {
		state.Attempts++
		return Selection{Accepted: true}
	}

	card.Matched = true
	state.ImagesToFind = slices.Delete(slices.Clone(state.ImagesToFind), idx, idx+1)
	return Selection{Accepted: true, Matched: true}
}

// ScoreLevel computes the metric record of a level ending at end.
func ScoreLevel(state *LevelState, end time.Time) Metric {
	level := state.Level

	var totalTime float64
	if !state.LevelStartTime.IsZero() {
		totalTime = max(end.Sub(state.LevelStartTime).Seconds(), 0)
	}

	correctMatches := state.CorrectMatches()
	totalAttempts := state.Attempts + correctMatches
	accuracy := scoring.Percent(correctMatches, totalAttempts)
	levelErrors := totalAttempts - correctMatches
	errorRate := scoring.Percent(levelErrors, totalAttempts)

	difficulty := scoring.DifficultyMultiplier(level)
	var levelBonus, timeBonus float64
	if totalTime > 0 {
		levelBonus = float64(level) / totalTime * 55 * difficulty
		timeBonus = float64(level) / totalTime * 10
	}
	accuracyBonus := scoring.AccuracyBonus(accuracy)
	penaltyRate := scoring.PenaltyRate(errorRate)
	compensation := float64(level) * 0.25

	weighted := 3*levelBonus + 4*timeBonus + 6*accuracyBonus - 5*penaltyRate + compensation

	levelScore := 0
	if accuracy != 0 && !math.IsNaN(weighted) && !math.IsInf(weighted, 0) {
		levelScore = max(int(scoring.RoundHalfUp(weighted)), 0)
	}

	return Metric{
		Level:             level,
		Attempt:           totalAttempts,
		TotalResponseTime: totalTime,
		Accuracy:          accuracy,
		LevelErrors:       levelErrors,
		LevelScore:        levelScore,
	}
}

package stroop

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		ID:       "stroop",
		Type:     "attention",
		Title:    "stroop",
		Duration: 20000,
		Questions: []Question{
			{Text: "red", FontColor: "red", IsCorrect: true},
			{Text: "blue", FontColor: "green", IsCorrect: false},
			{Text: "green", FontColor: "green", IsCorrect: true},
			{Text: "yellow", FontColor: "red", IsCorrect: false},
		},
	}
}

func TestInitGame(t *testing.T) {
	cfg := testConfig()
	state := InitGame(cfg)

	assert.Equal(t, 1, state.Level)
	assert.Equal(t, 20000, state.Duration)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Equal(t, cfg.Questions, state.Questions)

	state.Questions[0].Text = "purple"
	assert.Equal(t, "red", cfg.Questions[0].Text, "state must not alias the config")
}

func TestEvaluateAnswerSingleCorrect(t *testing.T) {
	state := InitGame(testConfig())
	metrics := &Metrics{}

	points := EvaluateAnswer(state, metrics, true, 0)

	assert.Equal(t, 100, points)
	assert.Equal(t, Metrics{Questions: 1, Attempts: 1, AverageResponseTime: 20, Errors: 0, Accuracy: 100}, *metrics)
	assert.Equal(t, 2, state.Level)
	assert.Equal(t, 1, state.CurrentIndex)
}

func TestEvaluateAnswerIncorrect(t *testing.T) {
	state := InitGame(testConfig())
	metrics := &Metrics{}

	points := EvaluateAnswer(state, metrics, false, 10)

	assert.Equal(t, 0, points, "bonus is only paid on correct answers")
	assert.Equal(t, 1, metrics.Errors)
	assert.Equal(t, 0, metrics.Accuracy)
	assert.Equal(t, 1, state.CurrentIndex, "index advances regardless")
}

func TestEvaluateAnswerAccuracyInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	state := &LevelState{Level: 1, Duration: 45000}
	metrics := &Metrics{}

	for i := 0; i < 200; i++ {
		EvaluateAnswer(state, metrics, rng.IntN(3) > 0, 0)

		want := int(math.Floor(float64(metrics.Attempts-metrics.Errors)/float64(metrics.Attempts)*100 + 0.5))
		require.Equal(t, want, metrics.Accuracy, "after %d answers", metrics.Attempts)
		require.InDelta(t, 45.0/float64(metrics.Attempts), metrics.AverageResponseTime, 1e-9)
		require.Equal(t, metrics.Attempts, metrics.Questions)
	}
}

func TestEvaluateAnswerNilState(t *testing.T) {
	assert.Equal(t, 0, EvaluateAnswer(nil, &Metrics{}, true, 0))
	assert.Equal(t, 0, EvaluateAnswer(&LevelState{}, nil, true, 0))
}

func TestLevelBonus(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{0, 0}, {1, 0}, {9, 0}, {10, 10}, {11, 0}, {20, 10}, {30, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelBonus(tt.level), "level %d", tt.level)
	}
}

func TestIsUserCorrect(t *testing.T) {
	match := Question{Text: "red", FontColor: "red", IsCorrect: true}
	mismatch := Question{Text: "red", FontColor: "blue", IsCorrect: false}

	assert.True(t, IsUserCorrect(match, true))
	assert.False(t, IsUserCorrect(match, false))
	assert.True(t, IsUserCorrect(mismatch, false))
	assert.False(t, IsUserCorrect(mismatch, true))
}

func TestFeedbackDelay(t *testing.T) {
	assert.Equal(t, 970*time.Millisecond, FeedbackDelay(1))
	assert.Equal(t, 700*time.Millisecond, FeedbackDelay(10))
	assert.Equal(t, 300*time.Millisecond, FeedbackDelay(40))
}

func TestGenerateQuestions(t *testing.T) {
	colors := []string{"red", "blue", "green", "yellow"}
	rng := rand.New(rand.NewPCG(7, 8))

	questions := GenerateQuestions(colors, 400, 0.5, rng)
	require.Len(t, questions, 400)

	matches := 0
	for _, q := range questions {
		assert.Contains(t, colors, q.Text)
		assert.Contains(t, colors, q.FontColor)
		assert.Equal(t, q.Text == q.FontColor, q.IsCorrect)
		if q.IsCorrect {
			matches++
		}
	}
	assert.InDelta(t, 200, matches, 60)

	for _, q := range GenerateQuestions(colors, 50, 1, rng) {
		assert.True(t, q.IsCorrect)
	}
	for _, q := range GenerateQuestions(colors, 50, 0, rng) {
		assert.False(t, q.IsCorrect)
	}
	for _, q := range GenerateQuestions([]string{"red"}, 5, 0, rng) {
		assert.True(t, q.IsCorrect, "single color palette only matches")
	}

	assert.Nil(t, GenerateQuestions(nil, 5, 0.5, rng))
	assert.Nil(t, GenerateQuestions(colors, 0, 0.5, rng))
}

func TestSessionScenarioOneCorrectAnswer(t *testing.T) {
	s := NewSession("st-1", testConfig(), epoch)

	got := s.Answer(true)

	assert.Equal(t, Answer{Accepted: true, Correct: true, Points: 100}, got)
	assert.Equal(t, 1, s.Metrics.Attempts)
	assert.Equal(t, 0, s.Metrics.Errors)
	assert.Equal(t, 100, s.Metrics.Accuracy)
	assert.Equal(t, 100, s.TotalScore)
}

func TestSessionAnswersUntilExhausted(t *testing.T) {
	s := NewSession("st-2", testConfig(), epoch)

	// red/red match, blue/green no, green/green match, yellow/red said match
	answers := []bool{true, false, true, true}
	var last Answer
	for _, a := range answers {
		last = s.Answer(a)
		require.True(t, last.Accepted)
	}

	assert.True(t, last.Done)
	assert.False(t, last.Correct)
	assert.Equal(t, 300, s.TotalScore)
	assert.Equal(t, 4, s.Metrics.Attempts)
	assert.Equal(t, 1, s.Metrics.Errors)
	assert.Equal(t, 75, s.Metrics.Accuracy)

	assert.Equal(t, Answer{Done: true}, s.Answer(true))
	assert.Equal(t, 4, s.Metrics.Attempts)
}

func TestSessionBonusOnTenthLevel(t *testing.T) {
	cfg := testConfig()
	cfg.Questions = GenerateQuestions([]string{"red"}, 12, 1, rand.New(rand.NewPCG(1, 1)))
	s := NewSession("st-3", cfg, epoch)

	for i := 0; i < 10; i++ {
		s.Answer(true)
	}

	assert.Equal(t, 9*100+110, s.TotalScore)
}

func TestSessionPauseResume(t *testing.T) {
	s := NewSession("st-4", testConfig(), epoch)

	s.Pause(epoch.Add(2 * time.Second))
	assert.True(t, s.Paused)
	assert.Equal(t, Answer{}, s.Answer(true), "answers are ignored while paused")

	s.Pause(epoch.Add(3 * time.Second))
	assert.Equal(t, epoch.Add(2*time.Second), s.PauseStartTime, "second pause is a no-op")

	assert.Equal(t, 18*time.Second, s.Remaining(epoch.Add(7*time.Second)), "clock is frozen while paused")

	s.Resume(epoch.Add(7 * time.Second))
	assert.False(t, s.Paused)
	assert.True(t, s.PauseStartTime.IsZero())
	assert.Equal(t, 5*time.Second, s.TotalPausedDuration)
	assert.Equal(t, 15*time.Second, s.Remaining(epoch.Add(10*time.Second)))

	s.Resume(epoch.Add(8 * time.Second))
	assert.Equal(t, 5*time.Second, s.TotalPausedDuration, "resume without pause is a no-op")
}

func TestSessionPauseResumeZeroElapsed(t *testing.T) {
	s := NewSession("st-5", testConfig(), epoch)
	before := s.Remaining(epoch.Add(time.Second))

	s.Pause(epoch.Add(time.Second))
	s.Resume(epoch.Add(time.Second))

	assert.Equal(t, time.Duration(0), s.TotalPausedDuration)
	assert.Equal(t, before, s.Remaining(epoch.Add(time.Second)))
}

func TestSessionExpired(t *testing.T) {
	s := NewSession("st-6", testConfig(), epoch)

	assert.False(t, s.Expired(epoch.Add(19*time.Second)))
	assert.True(t, s.Expired(epoch.Add(20*time.Second)))
	assert.Equal(t, time.Duration(0), s.Remaining(epoch.Add(time.Hour)))
}

func TestSessionPauseAfterEnd(t *testing.T) {
	s := NewSession("st-7", testConfig(), epoch)
	s.End()

	s.Pause(epoch)
	assert.False(t, s.Paused)
	assert.False(t, s.Expired(epoch.Add(time.Hour)), "ended sessions have no clock")
}

func TestSessionRestart(t *testing.T) {
	s := NewSession("st-8", testConfig(), epoch)
	s.Answer(true)
	s.Pause(epoch.Add(time.Second))

	s.Restart(epoch.Add(time.Minute))

	assert.Equal(t, "st-8", s.ID)
	assert.Equal(t, 0, s.TotalScore)
	assert.Equal(t, &Metrics{}, s.Metrics)
	assert.Equal(t, 0, s.State.CurrentIndex)
	assert.Equal(t, 1, s.State.Level)
	assert.False(t, s.Paused)
	assert.Equal(t, 20*time.Second, s.Remaining(epoch.Add(time.Minute)))
}

func TestSessionForcedVersusNaturalEnd(t *testing.T) {
	forced := NewSession("st-9", testConfig(), epoch)
	forced.Answer(true)
	forced.ForceEnd()

	assert.True(t, forced.Ended)
	assert.False(t, forced.Complete)
	assert.Empty(t, forced.ID)
	assert.Nil(t, forced.State)
	assert.Nil(t, forced.Metrics)
	assert.Equal(t, 0, forced.TotalScore)
	assert.Equal(t, Answer{}, forced.Answer(true))
	forced.Restart(epoch)
	assert.True(t, forced.Ended, "a quit session cannot be restarted")

	natural := NewSession("st-10", testConfig(), epoch)
	natural.Answer(true)
	natural.End()

	assert.True(t, natural.Ended)
	assert.True(t, natural.Complete)
	assert.Equal(t, "st-10", natural.ID)
	require.NotNil(t, natural.Metrics)
	assert.Equal(t, 1, natural.Metrics.Attempts)
	assert.Equal(t, 100, natural.TotalScore)
}

func TestSessionMMSE(t *testing.T) {
	s := NewSession("st-11", testConfig(), epoch)
	s.TotalScore = 2110
	assert.Equal(t, 15, s.MMSE())
}

package guesswhat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alexnjoya/mindlink/internal/scoring"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// memorize ticks the session until its cards are revealed
func memorize(t *testing.T, s *Session, now time.Time) time.Time {
	t.Helper()
	for i := 0; i < 1000; i++ {
		now = now.Add(time.Second)
		if s.Tick(now) {
			return now
		}
	}
	t.Fatal("memorization phase never ended")
	return now
}

func TestSessionSingleLevelNaturalEnd(t *testing.T) {
	rng := newRand(1)
	s := NewSession("s-1", testConfig(), rng)

	require.NotNil(t, s.State)
	assert.Len(t, s.State.Cards, 9)
	assert.Len(t, s.State.ImagesToFind, 1)
	assert.True(t, s.Playing)

	revealed := memorize(t, s, epoch)
	assert.False(t, s.State.MemorizationPhase)
	assert.Equal(t, revealed, s.State.LevelStartTime)

	target := cardWithImage(s.State, s.State.ImagesToFind[0])
	sel := s.Select(target.ID)
	require.True(t, sel.Matched)
	require.True(t, s.LevelComplete())

	metric := s.CompleteLevel(revealed.Add(3*time.Second), rng)
	require.NotNil(t, metric)

	assert.Equal(t, 1, metric.Attempt)
	assert.Equal(t, 100.0, metric.Accuracy)
	assert.Equal(t, 0, metric.LevelErrors)
	assert.Greater(t, metric.LevelScore, 0)

	assert.True(t, s.Ended)
	assert.True(t, s.Complete)
	assert.False(t, s.Playing)
	assert.Nil(t, s.State)
	assert.Equal(t, []Metric{*metric}, s.Metrics)
	assert.Equal(t, metric.LevelScore, s.TotalScore)
}

func TestSessionTickCountdown(t *testing.T) {
	s := NewSession("s-1", testConfig(), newRand(2))
	start := s.State.TimeLeft

	assert.False(t, s.Tick(epoch))
	assert.Equal(t, start-1, s.State.TimeLeft)

	s.State.TimeLeft = 0
	assert.True(t, s.Tick(epoch))
	assert.False(t, s.State.MemorizationPhase)

	// ticks after reveal do nothing
	assert.False(t, s.Tick(epoch.Add(time.Second)))
	assert.Equal(t, epoch, s.State.LevelStartTime)
}

func TestSessionRevealRequiresExhaustedCountdown(t *testing.T) {
	s := NewSession("s-1", testConfig(), newRand(2))

	assert.False(t, s.Reveal(epoch))
	assert.True(t, s.State.MemorizationPhase)

	s.State.TimeLeft = 0
	assert.True(t, s.Reveal(epoch))
	assert.False(t, s.Reveal(epoch), "second reveal is a no-op")
}

func TestSessionMultiLevelProgression(t *testing.T) {
	cfg := testConfig()
	cfg.MaxLevels = 3
	cfg.BasePairs = 2
	cfg.ImageSet = imageSet(12)
	rng := newRand(3)
	s := NewSession("s-2", cfg, rng)

	now := epoch
	for level := 1; level <= 3; level++ {
		require.False(t, s.Ended)
		require.Equal(t, level, s.State.Level)
		assert.Len(t, s.State.Cards, level+2)

		now = memorize(t, s, now)
		for !s.LevelComplete() {
			target := cardWithImage(s.State, s.State.ImagesToFind[0])
			require.True(t, s.Select(target.ID).Matched)
		}
		now = now.Add(2 * time.Second)
		require.NotNil(t, s.CompleteLevel(now, rng))
	}

	assert.True(t, s.Ended)
	assert.True(t, s.Complete)
	require.Len(t, s.Metrics, 3)

	total := 0
	for i, m := range s.Metrics {
		assert.Equal(t, i+1, m.Level)
		total += m.LevelScore
	}
	assert.Equal(t, total, s.TotalScore)
	assert.Equal(t, scoring.NormalizeToMMSE(total), s.MMSE())
}

func TestSessionAttemptsExhausted(t *testing.T) {
	cfg := testConfig()
	cfg.MaxLevels = 2
	rng := newRand(4)
	s := NewSession("s-3", cfg, rng)
	now := memorize(t, s, epoch)

	for i := 0; i < DefaultMaxAttempts; i++ {
		miss := nonTargetCard(s.State)
		require.True(t, s.Select(miss.ID).Accepted)
	}
	require.True(t, s.LevelComplete())

	// further selections are ignored
	target := cardWithImage(s.State, s.State.ImagesToFind[0])
	assert.Equal(t, Selection{}, s.Select(target.ID))

	metric := s.CompleteLevel(now.Add(time.Second), rng)
	require.NotNil(t, metric)
	assert.Equal(t, 0.0, metric.Accuracy)
	assert.Equal(t, 0, metric.LevelScore)
	assert.Equal(t, DefaultMaxAttempts, metric.LevelErrors)

	require.NotNil(t, s.State)
	assert.Equal(t, 2, s.State.Level)
	assert.False(t, s.Ended)
}

func TestSessionPauseResumeZeroElapsed(t *testing.T) {
	s := NewSession("s-4", testConfig(), newRand(5))
	s.Tick(epoch)
	before := *s.State

	s.Pause(epoch)
	s.Resume(epoch)

	assert.False(t, s.Paused)
	if diff := cmp.Diff(before, *s.State); diff != "" {
		t.Fatalf("state changed across an empty pause (-before +after):\n%s", diff)
	}
}

func TestSessionPauseDuringMemorization(t *testing.T) {
	s := NewSession("s-4", testConfig(), newRand(5))
	start := s.State.TimeLeft

	s.Pause(epoch)
	assert.True(t, s.Paused)
	assert.Equal(t, epoch, s.State.PauseStartTime)

	assert.False(t, s.Tick(epoch.Add(time.Second)), "ticks are ignored while paused")
	assert.Equal(t, start, s.State.TimeLeft)

	s.Resume(epoch.Add(3500 * time.Millisecond))
	assert.Equal(t, start-3, s.State.TimeLeft)
	assert.True(t, s.State.LevelStartTime.IsZero())
	assert.True(t, s.State.PauseStartTime.IsZero())

	s.Pause(epoch.Add(4 * time.Second))
	s.Resume(epoch.Add(time.Hour))
	assert.Equal(t, 0, s.State.TimeLeft, "countdown never goes negative")
}

func TestSessionPauseShiftsLevelClock(t *testing.T) {
	rng := newRand(6)
	s := NewSession("s-5", testConfig(), rng)
	revealed := memorize(t, s, epoch)

	s.Pause(revealed.Add(time.Second))
	target := cardWithImage(s.State, s.State.ImagesToFind[0])
	assert.Equal(t, Selection{}, s.Select(target.ID), "selections are ignored while paused")

	s.Resume(revealed.Add(11 * time.Second))
	assert.Equal(t, revealed.Add(10*time.Second), s.State.LevelStartTime)

	require.True(t, s.Select(target.ID).Matched)
	metric := s.CompleteLevel(revealed.Add(12*time.Second), rng)
	require.NotNil(t, metric)
	assert.InDelta(t, 2.0, metric.TotalResponseTime, 1e-9)
}

func TestSessionPauseResumeIdempotent(t *testing.T) {
	s := NewSession("s-6", testConfig(), newRand(7))

	s.Resume(epoch)
	assert.False(t, s.Paused)

	s.Pause(epoch)
	s.Pause(epoch.Add(5 * time.Second))
	assert.Equal(t, epoch, s.State.PauseStartTime, "second pause keeps the first timestamp")
}

func TestSessionRestart(t *testing.T) {
	cfg := testConfig()
	cfg.MaxLevels = 2
	rng := newRand(8)
	s := NewSession("s-7", cfg, rng)
	memorize(t, s, epoch)
	target := cardWithImage(s.State, s.State.ImagesToFind[0])
	s.Select(target.ID)
	s.CompleteLevel(epoch.Add(time.Minute), rng)
	require.Len(t, s.Metrics, 1)

	s.Restart(rng)

	assert.Equal(t, "s-7", s.ID)
	assert.Equal(t, 1, s.State.Level)
	assert.True(t, s.State.MemorizationPhase)
	assert.Empty(t, s.Metrics)
	assert.Equal(t, 0, s.TotalScore)
	assert.True(t, s.Playing)
	assert.False(t, s.Ended)
}

func TestSessionStartLevel(t *testing.T) {
	cfg := testConfig()
	cfg.StartLevel = 4
	cfg.MaxLevels = 5
	cfg.ImageSet = imageSet(20)
	s := NewSession("s-8", cfg, newRand(9))

	assert.Equal(t, 4, s.State.Level)
	assert.Len(t, s.State.ImagesToFind, 2)
}

func TestSessionForcedVersusNaturalEnd(t *testing.T) {
	rng := newRand(10)
	forced := NewSession("s-9", testConfig(), rng)
	memorize(t, forced, epoch)
	target := cardWithImage(forced.State, forced.State.ImagesToFind[0])
	forced.Select(target.ID)

	forced.ForceEnd()

	assert.True(t, forced.Ended)
	assert.False(t, forced.Complete)
	assert.Empty(t, forced.ID)
	assert.Nil(t, forced.Config)
	assert.Nil(t, forced.State)
	assert.Empty(t, forced.Metrics)
	assert.Equal(t, 0, forced.TotalScore)

	// events after the end are no-ops
	assert.False(t, forced.Tick(epoch))
	assert.Equal(t, Selection{}, forced.Select(0))
	assert.Nil(t, forced.CompleteLevel(epoch, rng))
	forced.Pause(epoch)
	assert.False(t, forced.Paused)
	forced.Restart(rng)
	assert.True(t, forced.Ended)

	natural := NewSession("s-10", testConfig(), rng)
	memorize(t, natural, epoch)
	target = cardWithImage(natural.State, natural.State.ImagesToFind[0])
	natural.Select(target.ID)
	metric := natural.CompleteLevel(epoch.Add(time.Minute), rng)
	require.NotNil(t, metric)

	assert.True(t, natural.Ended)
	assert.True(t, natural.Complete)
	assert.Equal(t, "s-10", natural.ID)
	assert.Len(t, natural.Metrics, 1)
	assert.Equal(t, metric.LevelScore, natural.TotalScore)
}

func TestSessionJSONRoundTrip(t *testing.T) {
	s := NewSession("s-11", testConfig(), newRand(11))
	s.Tick(epoch)
	s.Pause(epoch.Add(time.Second))

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "gameState")
	assert.Contains(t, raw["gameState"], "currentImagesToFind")

	var restored Session
	require.NoError(t, json.Unmarshal(data, &restored))
	if diff := cmp.Diff(*s, restored); diff != "" {
		t.Fatalf("session changed across JSON (-want +got):\n%s", diff)
	}
}

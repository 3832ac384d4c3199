package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alexnjoya/mindlink/internal/game/guesswhat"
	"github.com/alexnjoya/mindlink/internal/game/stroop"
)

func TestGameSessionIsFinished(t *testing.T) {
	tests := []struct {
		status SessionStatus
		want   bool
	}{
		{StatusActive, false},
		{StatusCompleted, true},
		{StatusAbandoned, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			session := GameSession{ID: "s", Status: tt.status}
			if got := session.IsFinished(); got != tt.want {
				t.Errorf("IsFinished() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLiveSessionAccessors(t *testing.T) {
	gw := &guesswhat.Session{TotalScore: 2110, Ended: true, Complete: true}
	live := LiveSession{Engine: EngineGuessWhat, GuessWhat: gw}

	if !live.Ended() || !live.Complete() {
		t.Error("guess what session should report a natural end")
	}
	if live.TotalScore() != 2110 {
		t.Errorf("TotalScore() = %d, want 2110", live.TotalScore())
	}
	if live.MMSE() != 15 {
		t.Errorf("MMSE() = %d, want 15", live.MMSE())
	}
	if metrics, ok := live.MetricsValue().([]guesswhat.Metric); !ok || len(metrics) != 0 {
		t.Errorf("MetricsValue() = %#v, want an empty metric list", live.MetricsValue())
	}

	st := stroop.NewSession("st", stroop.Config{Duration: 1000}, time.Now())
	live = LiveSession{Engine: EngineStroop, Stroop: st}
	if live.Ended() || live.Complete() {
		t.Error("fresh stroop session should still be running")
	}
	if _, ok := live.MetricsValue().(*stroop.Metrics); !ok {
		t.Errorf("MetricsValue() = %T, want *stroop.Metrics", live.MetricsValue())
	}

	var empty LiveSession
	if !empty.Ended() || empty.Complete() || empty.MetricsValue() != nil {
		t.Error("a session without an engine counts as ended and incomplete")
	}
}

func TestLiveSessionJSON(t *testing.T) {
	live := LiveSession{
		ID:      "8f14e45f-ceea-467f-a5f4-3c4e1d2b9a10",
		Engine:  EngineStroop,
		GameKey: "stroop",
		Stroop:  stroop.NewSession("8f14e45f-ceea-467f-a5f4-3c4e1d2b9a10", stroop.Config{Duration: 20000}, time.Unix(1700000000, 0).UTC()),
	}

	data, err := json.Marshal(live)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := raw["guessWhat"]; ok {
		t.Error("unused engine should be omitted")
	}

	var decoded LiveSession
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Stroop == nil || decoded.Stroop.State.Duration != 20000 {
		t.Errorf("decoded stroop state = %#v", decoded.Stroop)
	}
}

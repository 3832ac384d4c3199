package guesswhat

import (
	"math"

	"github.com/alexnjoya/mindlink/internal/scoring"
)

// Averages summarizes a session's level metrics
type Averages struct {
	AvgResponseTime float64 `json:"avgResponseTime"`
	AvgAttempts     float64 `json:"avgAttempts"`
	AvgErrors       float64 `json:"avgErrors"`
	AvgAccuracy     float64 `json:"avgAccuracy"`
}

// CalculateAverages averages the per-level metrics
func CalculateAverages(metrics []Metric) Averages {
	if len(metrics) == 0 {
		return Averages{}
	}

	var totalTime, totalAccuracy float64
	var totalAttempts, totalErrors int
	for _, m := range metrics {
		totalTime += m.TotalResponseTime
		totalAttempts += m.Attempt
		totalErrors += m.LevelErrors
		totalAccuracy += m.Accuracy
	}

	n := float64(len(metrics))
	return Averages{
		AvgResponseTime: totalTime / n,
		AvgAttempts:     float64(totalAttempts) / n,
		AvgErrors:       float64(totalErrors) / n,
		AvgAccuracy:     totalAccuracy / n,
	}
}

// PerformanceMMSE estimates an MMSE-like score from the shape of the level
// metrics rather than the total score: response times and errors are min-max
// scaled, levels are log-weighted, and the weighted penalty is taken off 30.
// The result has two decimals. An empty metric list yields 0.
func PerformanceMMSE(metrics []Metric) float64 {
	if len(metrics) == 0 {
		return 0
	}

	responseTimes := make([]float64, len(metrics))
	errorCounts := make([]float64, len(metrics))
	maxLevel := 0
	for i, m := range metrics {
		responseTimes[i] = m.TotalResponseTime
		errorCounts[i] = float64(m.LevelErrors)
		maxLevel = max(maxLevel, m.Level)
	}

	timeScaled := minMaxNormalize(responseTimes)
	errorsScaled := minMaxNormalize(errorCounts)

	penalty := 0.0
	for i, m := range metrics {
		weight := 0.0
		if maxLevel > 0 {
			weight = math.Log1p(float64(m.Level)) / math.Log1p(float64(maxLevel))
		}
		penalty += weight * (timeScaled[i] + errorsScaled[i] - m.Accuracy/100)
	}

	score := math.Max(0, math.Min(scoring.MaxMMSE, scoring.MaxMMSE-penalty))
	return math.Round(score*100) / 100
}

func minMaxNormalize(values []float64) []float64 {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	out := make([]float64, len(values))
	if hi-lo == 0 {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

package scoring

import "math"

// MaxTheoreticalScore is the empirically chosen ceiling used to rescale a
// session's total score onto the 0-30 MMSE range.
const MaxTheoreticalScore = 4220

// MaxMMSE is the top of the MMSE scale
const MaxMMSE = 30

// Classification labels for an MMSE estimate
const (
	ClassNormal = "Normal"
	ClassOkay   = "Okay"
	ClassAtRisk = "At Risk"
)

// DifficultyMultiplier returns the level score multiplier for a level
func DifficultyMultiplier(level int) float64 {
	if level <= 3 {
		return 1 // Easy
	}
	if level <= 7 {
		return 1.5 // Medium
	}
	return 2 // Hard
}

// AccuracyBonus returns the bonus awarded for an accuracy percentage
func AccuracyBonus(accuracy float64) float64 {
	switch {
	case accuracy >= 80:
		return 20
	case accuracy >= 50:
		return 10
	case accuracy >= 10:
		return 5
	default:
		return 0
	}
}

// PenaltyRate returns the penalty applied for an error-rate percentage
func PenaltyRate(errorRate float64) float64 {
	switch {
	case errorRate >= 80:
		return 40
	case errorRate >= 50:
		return 10
	default:
		return 0
	}
}

// RoundHalfUp rounds to the nearest integer with halves going towards
// positive infinity, which is how browser clients round scores.
func RoundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// NormalizeToMMSE rescales a total score linearly onto [0, 30].
func NormalizeToMMSE(totalScore int) int {
	normalized := float64(totalScore) / MaxTheoreticalScore * MaxMMSE
	normalized = math.Min(normalized, MaxMMSE)
	if normalized < 0 {
		return 0
	}
	return int(RoundHalfUp(normalized))
}

// Classify buckets an MMSE estimate
func Classify(mmse float64) string {
	if mmse >= 24 {
		return ClassNormal
	}
	if mmse >= 18 {
		return ClassOkay
	}
	return ClassAtRisk
}

// Percent returns part/whole*100, or 0 when whole is zero.
func Percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

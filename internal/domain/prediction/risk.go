package prediction

import (
	"math"
	"sort"
)

const (
	MinConfidence = 0.15
	MaxConfidence = 0.95

	highThreshold   = 0.7
	mediumThreshold = 0.4

	// TopN is how many predictions a response carries.
	TopN = 3
)

// RiskFor maps a confidence to its risk tier.
// High: > 0.7, Medium: (0.4, 0.7], Low: otherwise.
func RiskFor(confidence float64) RiskLevel {
	switch {
	case confidence > highThreshold:
		return RiskHigh
	case confidence > mediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ClampConfidence clamps a raw score into [MinConfidence, MaxConfidence]
// and rounds it to two decimals.
func ClampConfidence(raw float64) float64 {
	c := math.Min(math.Max(raw, MinConfidence), MaxConfidence)
	return math.Round(c*100) / 100
}

// Rank sorts predictions by confidence (highest first) and keeps at most n.
// Ties keep their input order.
func Rank(preds []Prediction, n int) []Prediction {
	out := make([]Prediction, len(preds))
	copy(out, preds)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

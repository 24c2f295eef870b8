package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskFor(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		want       RiskLevel
	}{
		{name: "floor", confidence: 0.15, want: RiskLow},
		{name: "exactly 0.4 is low", confidence: 0.4, want: RiskLow},
		{name: "just above 0.4", confidence: 0.41, want: RiskMedium},
		{name: "exactly 0.7 is medium", confidence: 0.7, want: RiskMedium},
		{name: "just above 0.7", confidence: 0.71, want: RiskHigh},
		{name: "ceiling", confidence: 0.95, want: RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RiskFor(tt.confidence))
		})
	}
}

func TestClampConfidence(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{raw: 0, want: 0.15},
		{raw: 0.1499, want: 0.15},
		{raw: 0.5, want: 0.5},
		{raw: 0.634, want: 0.63},
		{raw: 0.636, want: 0.64},
		{raw: 0.96, want: 0.95},
		{raw: 1, want: 0.95},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, ClampConfidence(tt.raw), 1e-9, "raw=%v", tt.raw)
	}
}

func TestRank(t *testing.T) {
	in := []Prediction{
		{Condition: ConditionAlzheimers, Confidence: 0.2},
		{Condition: ConditionParkinsons, Confidence: 0.9},
		{Condition: ConditionEpilepsy, Confidence: 0.5},
		{Condition: ConditionMultipleSclerosis, Confidence: 0.5},
		{Condition: ConditionBrainTumor, Confidence: 0.1},
	}

	got := Rank(in, TopN)
	require.Len(t, got, TopN)
	assert.Equal(t, ConditionParkinsons, got[0].Condition)
	// stable on ties
	assert.Equal(t, ConditionEpilepsy, got[1].Condition)
	assert.Equal(t, ConditionMultipleSclerosis, got[2].Condition)

	// input untouched
	assert.Equal(t, ConditionAlzheimers, in[0].Condition)
}

func TestRankShortInput(t *testing.T) {
	got := Rank([]Prediction{{Confidence: 0.3}}, TopN)
	assert.Len(t, got, 1)
}

package prediction

const (
	urgentRecommendation  = "Urgent specialist consultation recommended"
	routineRecommendation = "Continue routine health monitoring"
)

var baseRecommendations = map[Condition][]string{
	ConditionAlzheimers: {
		"Cognitive behavioral therapy assessment",
		"Memory care specialist consultation",
		"Neuropsychological evaluation recommended",
	},
	ConditionParkinsons: {
		"Movement disorder specialist evaluation",
		"Physical therapy assessment",
		"Medication review with neurologist",
	},
	ConditionEpilepsy: {
		"EEG monitoring for seizure patterns",
		"Anti-epileptic medication review",
		"Lifestyle modifications counseling",
	},
	ConditionMultipleSclerosis: {
		"MRI monitoring every 6-12 months",
		"Physical and occupational therapy",
		"Disease-modifying therapy evaluation",
	},
	ConditionBrainTumor: {
		"Advanced imaging (contrast MRI)",
		"Neurosurgical consultation",
		"Biopsy consideration if indicated",
	},
}

var fallbackRecommendations = []string{
	"Follow-up with neurologist",
	"Additional diagnostic testing",
	"Regular monitoring recommended",
}

// Recommendations builds the follow-up list for a condition at a given risk tier.
// The returned slice is always a fresh copy.
func Recommendations(c Condition, risk RiskLevel) []string {
	base, ok := baseRecommendations[c]
	if !ok {
		base = fallbackRecommendations
	}

	out := make([]string, 0, len(base)+1)
	switch risk {
	case RiskHigh:
		out = append(out, urgentRecommendation)
		out = append(out, base...)
	case RiskLow:
		out = append(out, base...)
		out = append(out, routineRecommendation)
	default:
		out = append(out, base...)
	}
	return out
}

// Score builds a full Prediction from a raw sampled score.
func Score(c Condition, raw float64) Prediction {
	conf := ClampConfidence(raw)
	risk := RiskFor(conf)
	return Prediction{
		Condition:       c,
		Confidence:      conf,
		RiskLevel:       risk,
		Recommendations: Recommendations(c, risk),
	}
}

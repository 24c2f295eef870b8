package prediction

import "time"

// Condition nama kondisi neurologis yang diprediksi
type Condition string

const (
	ConditionAlzheimers        Condition = "Alzheimer's Disease"
	ConditionParkinsons        Condition = "Parkinson's Disease"
	ConditionEpilepsy          Condition = "Epilepsy"
	ConditionMultipleSclerosis Condition = "Multiple Sclerosis"
	ConditionBrainTumor        Condition = "Brain Tumor"
)

// Conditions returns the screened conditions in their fixed scoring order.
func Conditions() []Condition {
	return []Condition{
		ConditionAlzheimers,
		ConditionParkinsons,
		ConditionEpilepsy,
		ConditionMultipleSclerosis,
		ConditionBrainTumor,
	}
}

// RiskLevel enum
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Prediction is one scored condition returned to the client.
type Prediction struct {
	Condition       Condition `json:"condition"`
	Confidence      float64   `json:"confidence"`
	RiskLevel       RiskLevel `json:"riskLevel"`
	Recommendations []string  `json:"recommendations"`
}

const ModelType = "Late Fusion Multi-Modal"

// Modality labels reported in Metadata.ModalitiesProcessed.
const (
	ModalityMRI      = "MRI"
	ModalityEEG      = "EEG"
	ModalityClinical = "Clinical Notes"
)

// Metadata value object
type Metadata struct {
	ModelType           string    `json:"modelType"`
	Timestamp           time.Time `json:"timestamp"`
	ModalitiesProcessed []string  `json:"modalitiesProcessed"`
	RequestID           string    `json:"requestId,omitempty"`
	ModelLoaded         bool      `json:"modelLoaded"`
	ModelVersion        string    `json:"modelVersion,omitempty"`
	DurationMS          int64     `json:"durationMs"`
}

// Result is the full outcome of one predict call.
type Result struct {
	Predictions []Prediction `json:"predictions"`
	Metadata    Metadata     `json:"metadata"`
}

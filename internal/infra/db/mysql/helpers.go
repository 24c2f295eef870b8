package mysql

import (
	"encoding/json"
	"strings"

	"github.com/bryanwahyu/neuro-fusion/internal/domain/prediction"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// encodePredictions: kolom predictions_json wajib JSON valid
func encodePredictions(p []prediction.Prediction) (string, error) {
	if len(p) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodePredictions(raw string) ([]prediction.Prediction, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []prediction.Prediction
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

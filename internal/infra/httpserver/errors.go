package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bryanwahyu/neuro-fusion/internal/domain/analysis"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/fusionmodel"
)

const missingModalityMessage = "Missing required modality data. Please provide MRI, EEG, and clinical notes."

// apiError is an error with a fixed HTTP rendering.
type apiError struct {
	Status  int
	Err     string
	Message string
	Extra   map[string]any
	cause   error
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return e.Err + ": " + e.Message
	}
	return e.Err
}

func (e *apiError) Unwrap() error { return e.cause }

func (e *apiError) body() map[string]any {
	b := map[string]any{"error": e.Err}
	if e.Message != "" {
		b["message"] = e.Message
	}
	for k, v := range e.Extra {
		b[k] = v
	}
	return b
}

// toAPIError maps domain errors onto the HTTP error envelope.
func toAPIError(err error) *apiError {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, analysis.ErrMissingModality):
		return &apiError{Status: http.StatusBadRequest, Err: missingModalityMessage, cause: err}
	case errors.Is(err, analysis.ErrFileTooLarge):
		return &apiError{Status: http.StatusRequestEntityTooLarge, Err: "File too large", Message: err.Error(), cause: err}
	case errors.Is(err, fusionmodel.ErrInvalidPath):
		return &apiError{Status: http.StatusBadRequest, Err: "Invalid model path", Message: err.Error(), cause: err}
	default:
		return &apiError{Status: http.StatusInternalServerError, Err: "Internal server error", Message: err.Error(), cause: err}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

package analysis

import "errors"

var (
	// ErrMissingModality is returned when MRI, EEG or clinical notes are absent.
	ErrMissingModality = errors.New("missing required modality data")

	// ErrFileTooLarge is returned when an upload exceeds the configured limit.
	ErrFileTooLarge = errors.New("file too large")
)

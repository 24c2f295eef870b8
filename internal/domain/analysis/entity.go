package analysis

import (
	"strings"
	"time"

	"github.com/bryanwahyu/neuro-fusion/internal/domain/prediction"
)

// notesReadyLength is the trimmed length clinical notes must exceed to count as ready.
const notesReadyLength = 10

// Upload is one in-memory uploaded file.
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Data        []byte
}

// AnalysisData holds the three modalities of one request.
type AnalysisData struct {
	MRI           *Upload
	EEG           *Upload
	ClinicalNotes string
}

// Validate checks that all three modalities are present.
func (d AnalysisData) Validate() error {
	if d.MRI == nil || d.EEG == nil || d.ClinicalNotes == "" {
		return ErrMissingModality
	}
	return nil
}

// ModalityStatus tracks which inputs are ready for submission.
type ModalityStatus struct {
	MRI           bool `json:"mri"`
	EEG           bool `json:"eeg"`
	ClinicalNotes bool `json:"clinicalNotes"`
}

// StatusOf derives readiness from the current inputs.
func StatusOf(d AnalysisData) ModalityStatus {
	return ModalityStatus{
		MRI:           d.MRI != nil,
		EEG:           d.EEG != nil,
		ClinicalNotes: NotesReady(d.ClinicalNotes),
	}
}

// NotesReady reports whether notes are long enough to submit.
func NotesReady(notes string) bool {
	return len(strings.TrimSpace(notes)) > notesReadyLength
}

// Ready reports whether every modality is ready.
func (s ModalityStatus) Ready() bool {
	return s.MRI && s.EEG && s.ClinicalNotes
}

// RunID identifier type
type RunID string

// Status enum
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// FileRef describes a stored upload without its bytes.
type FileRef struct {
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ArtifactKey string `json:"artifactKey,omitempty"`
}

// Run is the audit record of one predict call.
type Run struct {
	ID           RunID                   `json:"id"`
	CreatedAt    time.Time               `json:"createdAt"`
	Status       Status                  `json:"status"`
	MRI          FileRef                 `json:"mri"`
	EEG          FileRef                 `json:"eeg"`
	NotesLength  int                     `json:"notesLength"`
	ModelVersion string                  `json:"modelVersion,omitempty"`
	Predictions  []prediction.Prediction `json:"predictions,omitempty"`
	Error        string                  `json:"error,omitempty"`
	DurationMS   int64                   `json:"durationMs"`
}

// Package wizard is the three-step analysis flow: collect inputs, show
// progress while the request runs, then show results.
package wizard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bryanwahyu/neuro-fusion/internal/domain/analysis"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/prediction"
)

type Step int

const (
	StepInput Step = iota
	StepProgress
	StepResults
)

func (s Step) String() string {
	switch s {
	case StepInput:
		return "input"
	case StepProgress:
		return "progress"
	case StepResults:
		return "results"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

var (
	ErrNotReady          = errors.New("wizard: inputs are not ready")
	ErrInvalidTransition = errors.New("wizard: invalid step transition")
)

// Wizard is safe for concurrent use.
type Wizard struct {
	mu       sync.Mutex
	step     Step
	data     analysis.AnalysisData
	results  []prediction.Prediction
	lastErr  error
	progress *Progress
}

func New() *Wizard {
	return &Wizard{step: StepInput}
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// SetMRI, SetEEG and SetNotes replace one input while on the input step.
func (w *Wizard) SetMRI(u *analysis.Upload) { w.edit(func(d *analysis.AnalysisData) { d.MRI = u }) }
func (w *Wizard) SetEEG(u *analysis.Upload) { w.edit(func(d *analysis.AnalysisData) { d.EEG = u }) }
func (w *Wizard) SetNotes(notes string) {
	w.edit(func(d *analysis.AnalysisData) { d.ClinicalNotes = notes })
}

func (w *Wizard) edit(fn func(*analysis.AnalysisData)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == StepInput {
		fn(&w.data)
	}
}

// Data returns the collected inputs.
func (w *Wizard) Data() analysis.AnalysisData {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.data
}

// Status reports which inputs are ready.
func (w *Wizard) Status() analysis.ModalityStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return analysis.StatusOf(w.data)
}

// Start moves from input to progress. Every modality must be ready.
func (w *Wizard) Start() (*Progress, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepInput {
		return nil, fmt.Errorf("%w: start from %s", ErrInvalidTransition, w.step)
	}
	if !analysis.StatusOf(w.data).Ready() {
		return nil, ErrNotReady
	}
	w.step = StepProgress
	w.lastErr = nil
	w.progress = NewProgress()
	return w.progress, nil
}

// Complete records the predictions and moves to results.
func (w *Wizard) Complete(preds []prediction.Prediction) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepProgress {
		return fmt.Errorf("%w: complete from %s", ErrInvalidTransition, w.step)
	}
	w.progress.Finish()
	w.results = append([]prediction.Prediction(nil), preds...)
	w.step = StepResults
	return nil
}

// Fail returns to input keeping the inputs, so the user can try again.
func (w *Wizard) Fail(err error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepProgress {
		return fmt.Errorf("%w: fail from %s", ErrInvalidTransition, w.step)
	}
	w.lastErr = err
	w.step = StepInput
	return nil
}

// Reset starts a new analysis from results, clearing inputs and results.
func (w *Wizard) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepResults {
		return fmt.Errorf("%w: reset from %s", ErrInvalidTransition, w.step)
	}
	w.step = StepInput
	w.data = analysis.AnalysisData{}
	w.results = nil
	w.progress = nil
	return nil
}

func (w *Wizard) Results() []prediction.Prediction {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]prediction.Prediction(nil), w.results...)
}

// Err is the error of the last failed attempt, cleared by Start.
func (w *Wizard) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

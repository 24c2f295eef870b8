package wizard

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is how long each cosmetic stage is shown.
const DefaultInterval = 2 * time.Second

type Stage struct {
	ID          string
	Title       string
	Description string
}

var stages = []Stage{
	{ID: "preprocessing", Title: "Preprocessing Data", Description: "Normalizing and preparing multimodal inputs"},
	{ID: "mri-analysis", Title: "MRI Analysis", Description: "CNN processing of structural brain images"},
	{ID: "eeg-analysis", Title: "EEG Analysis", Description: "CNN+LSTM processing of neural signals"},
	{ID: "clinical-analysis", Title: "Clinical Notes Analysis", Description: "Transformer processing of clinical text"},
	{ID: "fusion", Title: "Multimodal Fusion", Description: "Integrating results from all modalities"},
}

// Stages returns the five display stages in order.
func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages)
	return out
}

// Progress is the cosmetic stage indicator. It is not tied to the
// request: it only advances on a timer and jumps to the end on Finish.
type Progress struct {
	mu      sync.Mutex
	current int
}

func NewProgress() *Progress { return &Progress{} }

// Current is the index of the active stage.
func (p *Progress) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Advance moves one stage forward, stopping at the last one.
func (p *Progress) Advance() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current >= len(stages)-1 {
		return false
	}
	p.current++
	return true
}

// Finish jumps to the last stage.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = len(stages) - 1
}

// Run advances every interval until ctx is done. onChange, if set, gets
// the new stage index after each move.
func (p *Progress) Run(ctx context.Context, interval time.Duration, onChange func(int)) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if p.Advance() && onChange != nil {
				onChange(p.Current())
			}
		}
	}
}

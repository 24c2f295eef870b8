package memory

import (
	"context"
	"sync"

	domain "github.com/bryanwahyu/neuro-fusion/internal/domain/analysis"
)

// RunRepository keeps the most recent runs in memory, bounded by capacity.
type RunRepository struct {
	mu       sync.RWMutex
	capacity int
	runs     []*domain.Run // oldest first
}

func NewRunRepository(capacity int) *RunRepository {
	if capacity <= 0 {
		capacity = 100
	}
	return &RunRepository{capacity: capacity}
}

// Save inserts or replaces a run by ID.
func (r *RunRepository) Save(ctx context.Context, run *domain.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := *run

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.runs {
		if existing.ID == run.ID {
			r.runs[i] = &cp
			return nil
		}
	}
	r.runs = append(r.runs, &cp)
	if len(r.runs) > r.capacity {
		r.runs = r.runs[len(r.runs)-r.capacity:]
	}
	return nil
}

// Latest returns up to limit runs, newest first.
func (r *RunRepository) Latest(ctx context.Context, limit int) ([]*domain.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Run, 0, min(limit, len(r.runs)))
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *r.runs[i]
		out = append(out, &cp)
	}
	return out, nil
}

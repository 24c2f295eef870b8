package analysis

import "context"

// RunRepository port (persistence for prediction runs)
type RunRepository interface {
	Save(ctx context.Context, r *Run) error
	Latest(ctx context.Context, limit int) ([]*Run, error)
}

// ArtifactStore port (archive for raw uploads)
type ArtifactStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

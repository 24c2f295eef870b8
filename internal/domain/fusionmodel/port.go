package fusionmodel

import "context"

// Loader port (reads a model file)
type Loader interface {
	Load(ctx context.Context, path string) (*Model, error)
}

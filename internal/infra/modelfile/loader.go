package modelfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	domain "github.com/bryanwahyu/neuro-fusion/internal/domain/fusionmodel"
)

// Loader reads late-fusion model files from the local filesystem.
type Loader struct{}

func NewLoader() *Loader { return &Loader{} }

// Load implementasi fusionmodel.Loader
func (l *Loader) Load(ctx context.Context, path string) (*domain.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, path)
		}
		return nil, err
	}

	// json.Unmarshal accepts a bare null and leaves the struct empty
	if string(bytes.TrimSpace(data)) == "null" {
		return nil, fmt.Errorf("%w: document is null", domain.ErrInvalidModel)
	}

	var m domain.Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidModel, err)
	}
	return &m, nil
}

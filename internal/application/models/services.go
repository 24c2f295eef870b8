package models

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	domain "github.com/bryanwahyu/neuro-fusion/internal/domain/fusionmodel"
)

// Registry holds the currently loaded late-fusion model.
// Registry is safe for concurrent use.
type Registry struct {
	loader      domain.Loader
	baseDir     string
	defaultPath string
	log         *zap.Logger

	mu    sync.RWMutex
	model *domain.Model
}

func NewRegistry(loader domain.Loader, baseDir, defaultPath string, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		loader:      loader,
		baseDir:     baseDir,
		defaultPath: defaultPath,
		log:         log,
	}
}

// DefaultPath returns the full path of the default model file.
func (r *Registry) DefaultPath() string {
	return filepath.Join(r.baseDir, r.defaultPath)
}

// LoadDefault loads the default model file. A missing or unreadable file is
// not an error: it returns false and predictions stay mocked.
func (r *Registry) LoadDefault(ctx context.Context) bool {
	path := r.DefaultPath()
	m, err := r.loader.Load(ctx, path)
	if err != nil {
		if errors.Is(err, domain.ErrModelNotFound) {
			r.log.Warn("model file not found, using mock predictions",
				zap.String("path", path))
		} else {
			r.log.Error("error loading model, using mock predictions",
				zap.String("path", path), zap.Error(err))
		}
		return false
	}

	r.set(m)
	r.log.Info("model loaded",
		zap.String("path", path),
		zap.String("architecture", architectureOf(m)),
		zap.String("version", m.Version))
	return true
}

// LoadPath loads a model from a path relative to the base dir and makes it current.
func (r *Registry) LoadPath(ctx context.Context, rel string) (domain.Info, string, error) {
	if rel == "" || !filepath.IsLocal(rel) {
		return domain.Info{}, rel, fmt.Errorf("%w: %q", domain.ErrInvalidPath, rel)
	}
	full := filepath.Join(r.baseDir, rel)

	m, err := r.loader.Load(ctx, full)
	if err != nil {
		return domain.Info{}, full, err
	}

	r.set(m)
	r.log.Info("model loaded",
		zap.String("path", full),
		zap.String("architecture", architectureOf(m)),
		zap.String("version", m.Version))
	return m.Info(), full, nil
}

// Loaded reports whether any model is loaded.
func (r *Registry) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.model != nil
}

// Current returns the loaded model, or nil.
func (r *Registry) Current() *domain.Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.model
}

func (r *Registry) set(m *domain.Model) {
	r.mu.Lock()
	r.model = m
	r.mu.Unlock()
}

func architectureOf(m *domain.Model) string {
	if m.Architecture == "" {
		return domain.DefaultArchitecture
	}
	return m.Architecture
}

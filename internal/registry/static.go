package registry

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/turtacn/hestia/pkg/initializer"
)

// StaticLoader serves exports registered at compile time, keyed by source path.
// Programs that link their initializers in use it instead of manifests on disk.
type StaticLoader struct {
	mu      sync.RWMutex
	sources map[string][]initializer.Export
}

func NewStaticLoader() *StaticLoader {
	return &StaticLoader{sources: make(map[string][]initializer.Export)}
}

// Register binds exports to path, replacing any previous binding.
func (s *StaticLoader) Register(path string, exports ...initializer.Export) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[key(path)] = append([]initializer.Export(nil), exports...)
}

func (s *StaticLoader) LoadUnits(_ context.Context, path string) ([]initializer.Export, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exports, ok := s.sources[key(path)]
	if !ok {
		return nil, fmt.Errorf("no static source registered for %s", path)
	}
	return append([]initializer.Export(nil), exports...), nil
}

func key(path string) string {
	clean := filepath.Clean(path)
	if abs, err := filepath.Abs(clean); err == nil {
		return abs
	}
	return clean
}

// Personal.AI order the ending

// Package manifest loads initializer sources written as YAML manifests.
//
// A manifest either names its exports:
//
//	initializers:
//	  - export: Banner
//	    kind: log
//	    name: banner
//	    priorities: {load: 1}
//	    params:
//	      message: booting
//
// or is a single bare definition, which becomes the "default" export:
//
//	kind: log
//	name: banner
//	priorities: {start: 10}
//	params:
//	  message: ready
//
// The kind selects a constructor from a Catalog compiled into the binary. Manifests
// are read from disk on every load, so edits take effect on the next initialize.
package manifest

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/hestia/pkg/initializer"
)

// Spec is one initializer definition inside a manifest.
type Spec struct {
	Export     string                 `yaml:"export"`
	Kind       string                 `yaml:"kind"`
	Name       string                 `yaml:"name"`
	Priorities initializer.Priorities `yaml:"priorities"`
	Params     yaml.Node              `yaml:"params"`
}

// Decode decodes the params block into v. A missing block leaves v untouched.
func (s Spec) Decode(v any) error {
	if s.Params.Kind == 0 {
		return nil
	}
	if err := s.Params.Decode(v); err != nil {
		return fmt.Errorf("params of %q: %w", s.Name, err)
	}
	return nil
}

// Base returns the embeddable name and priorities for the spec.
func (s Spec) Base() initializer.Base {
	return initializer.Base{UnitName: s.Name, Order: s.Priorities}
}

type document struct {
	Initializers []Spec `yaml:"initializers"`
	Spec         `yaml:",inline"`
}

// Constructor builds an initializer of one kind from its spec.
type Constructor func(spec Spec) (initializer.Initializer, error)

// Catalog maps kind names to constructors.
type Catalog struct {
	mu    sync.RWMutex
	kinds map[string]Constructor
}

func NewCatalog() *Catalog {
	return &Catalog{kinds: make(map[string]Constructor)}
}

// Register binds kind to ctor. Registering a kind twice panics.
func (c *Catalog) Register(kind string, ctor Constructor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.kinds[kind]; dup {
		panic("manifest: kind registered twice: " + kind)
	}
	c.kinds[kind] = ctor
}

func (c *Catalog) Lookup(kind string) (Constructor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ctor, ok := c.kinds[kind]
	return ctor, ok
}

// Kinds lists the registered kinds in sorted order.
func (c *Catalog) Kinds() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.kinds))
	for k := range c.kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Loader reads manifests and resolves their kinds against a Catalog.
type Loader struct {
	catalog *Catalog
}

func NewLoader(catalog *Catalog) *Loader {
	return &Loader{catalog: catalog}
}

// LoadUnits parses the manifest at path. Construction is deferred to the returned
// factories so the registry can attribute failures to the source.
func (l *Loader) LoadUnits(_ context.Context, path string) ([]initializer.Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	specs := doc.Initializers
	if len(specs) == 0 && doc.Kind != "" {
		single := doc.Spec
		single.Export = initializer.DefaultExport
		specs = []Spec{single}
	}

	exports := make([]initializer.Export, 0, len(specs))
	for i, spec := range specs {
		if spec.Export == "" {
			spec.Export = fmt.Sprintf("export%d", i)
		}
		exports = append(exports, initializer.Export{Name: spec.Export, New: l.factory(spec)})
	}
	return exports, nil
}

func (l *Loader) factory(spec Spec) initializer.Factory {
	return func() (initializer.Initializer, error) {
		ctor, ok := l.catalog.Lookup(spec.Kind)
		if !ok {
			return nil, fmt.Errorf("unknown initializer kind %q", spec.Kind)
		}
		return ctor(spec)
	}
}

// Personal.AI order the ending

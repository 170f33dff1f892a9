package registry

import (
	"context"
	"fmt"
	"sync"

	herrors "github.com/turtacn/hestia/pkg/errors"
	"github.com/turtacn/hestia/pkg/initializer"
	"github.com/turtacn/hestia/pkg/logger"
)

// SourceLoader turns one discovered source into the constructors it exports.
// Implementations must read the source fresh on every call.
type SourceLoader interface {
	LoadUnits(ctx context.Context, path string) ([]initializer.Export, error)
}

// Entry is a registered initializer together with where it came from and which
// phase hooks it implements.
type Entry struct {
	Unit   initializer.Initializer
	Source string
	Export string
	Hooks  initializer.Hooks
}

func (e *Entry) Name() string { return e.Unit.Name() }

// Registry tracks initializers by name in registration order.
type Registry struct {
	mu      sync.RWMutex
	loader  SourceLoader
	log     logger.Logger
	entries map[string]*Entry
	order   []string
	// resolved holds, per export seen by the last Load, the entry it resolved
	// to. A colliding export resolves to the entry already registered.
	resolved []*Entry
}

// New creates an empty registry reading sources through loader.
func New(loader SourceLoader, log logger.Logger) *Registry {
	if log == nil {
		log = logger.Log
	}
	return &Registry{
		loader:  loader,
		log:     log,
		entries: make(map[string]*Entry),
	}
}

// Load loads every source in order and registers the initializers it exports.
// The first malformed source aborts the whole load; the returned error names it.
func (r *Registry) Load(ctx context.Context, sources []string) error {
	r.mu.Lock()
	r.resolved = nil
	r.mu.Unlock()

	for _, src := range sources {
		if err := r.loadSource(ctx, src); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) loadSource(ctx context.Context, src string) error {
	exports, err := r.loader.LoadUnits(ctx, src)
	if err != nil {
		return herrors.New(herrors.ErrCodeSourceLoadFailed, "registry", "cannot load "+src, err)
	}
	if len(exports) == 0 {
		return herrors.New(herrors.ErrCodeNoExports, "registry", "no exported initializers found in "+src, nil)
	}

	for _, exp := range exports {
		unit, err := construct(exp)
		if err != nil {
			return herrors.New(herrors.ErrCodeConstructFailed, "registry",
				fmt.Sprintf("cannot construct export %q of %s", exp.Name, src), err)
		}

		name := unit.Name()
		r.mu.RLock()
		existing, dup := r.entries[name]
		r.mu.RUnlock()
		if dup {
			// The first registration stays in place and is scheduled again here;
			// the warning text is historical.
			r.log.Warn("existing initializer overridden", "initializer", name,
				"source", src, "existing_source", existing.Source)
			r.mu.Lock()
			r.resolved = append(r.resolved, existing)
			r.mu.Unlock()
			continue
		}

		if err := unit.Validate(); err != nil {
			return herrors.New(herrors.ErrCodeValidationFailed, "registry",
				fmt.Sprintf("initializer %q from %s is invalid", name, src), err)
		}

		entry := &Entry{
			Unit:   unit,
			Source: src,
			Export: exp.Name,
			Hooks:  initializer.HooksOf(unit),
		}
		r.mu.Lock()
		r.entries[name] = entry
		r.order = append(r.order, name)
		r.resolved = append(r.resolved, entry)
		r.mu.Unlock()
		r.log.Debug("initializer registered", "initializer", name, "source", src, "export", exp.Name)
	}
	return nil
}

// construct runs the factory, turning a panic into an error.
func construct(exp initializer.Export) (unit initializer.Initializer, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("constructor panicked: %v", rec)
		}
	}()
	if exp.New == nil {
		return nil, fmt.Errorf("export has no constructor")
	}
	unit, err = exp.New()
	if err == nil && unit == nil {
		err = fmt.Errorf("constructor returned no initializer")
	}
	return unit, err
}

// Entries returns the registered initializers in registration order.
func (r *Registry) Entries() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}
	return out
}

// Resolved returns the entry every export of the last Load resolved to, in
// discovery order. An entry appears once per export naming it, so a name
// collision within one Load schedules the original entry again.
func (r *Registry) Resolved() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Entry(nil), r.resolved...)
}

func (r *Registry) Get(name string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Reset forgets every registration.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*Entry)
	r.order = nil
	r.resolved = nil
}

// Personal.AI order the ending

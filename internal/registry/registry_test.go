package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hestia/pkg/consts"
	herrors "github.com/turtacn/hestia/pkg/errors"
	"github.com/turtacn/hestia/pkg/initializer"
	"github.com/turtacn/hestia/pkg/logger"
)

type fakeUnit struct {
	initializer.Base
	tag      string
	startErr error
	calls    *[]string
}

func (f *fakeUnit) Initialize(ctx context.Context) error {
	*f.calls = append(*f.calls, "init:"+f.UnitName+":"+f.tag)
	return nil
}

func (f *fakeUnit) Start(ctx context.Context) error {
	*f.calls = append(*f.calls, "start:"+f.UnitName+":"+f.tag)
	return f.startErr
}

type loadOnly struct {
	initializer.Base
}

func (l *loadOnly) Initialize(ctx context.Context) error { return nil }

func export(name string, u initializer.Initializer) initializer.Export {
	return initializer.Export{Name: name, New: func() (initializer.Initializer, error) { return u, nil }}
}

func newFake(name, tag string, calls *[]string) *fakeUnit {
	return &fakeUnit{Base: initializer.Base{UnitName: name, Order: initializer.Priorities{Load: 1, Start: 1}}, tag: tag, calls: calls}
}

func TestRegistry_LoadRegistersInOrder(t *testing.T) {
	var calls []string
	sl := NewStaticLoader()
	sl.Register("/src/a.yaml", export("A", newFake("a", "1", &calls)), export("B", newFake("b", "1", &calls)))
	sl.Register("/src/c.yaml", export(initializer.DefaultExport, &loadOnly{initializer.Base{UnitName: "c"}}))

	r := New(sl, logger.NewRecorder())
	require.NoError(t, r.Load(context.Background(), []string{"/src/a.yaml", "/src/c.yaml"}))

	var names []string
	for _, e := range r.Entries() {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)

	c, ok := r.Get("c")
	require.True(t, ok)
	assert.Equal(t, initializer.Hooks{Load: true}, c.Hooks)
	assert.Equal(t, "/src/c.yaml", c.Source)
	assert.Equal(t, initializer.DefaultExport, c.Export)
}

func TestRegistry_DuplicateKeepsOriginal(t *testing.T) {
	var calls []string
	rec := logger.NewRecorder()
	sl := NewStaticLoader()
	first := newFake("db", "first", &calls)
	second := newFake("db", "second", &calls)
	sl.Register("/a.yaml", export("DB", first))
	sl.Register("/b.yaml", export("DB", second))

	r := New(sl, rec)
	require.NoError(t, r.Load(context.Background(), []string{"/a.yaml", "/b.yaml"}))

	assert.Equal(t, 1, r.Len())
	e, _ := r.Get("db")
	assert.Same(t, first, e.Unit)
	assert.Equal(t, "/a.yaml", e.Source)
	assert.Equal(t, 1, rec.Count(logger.SeverityWarning, "existing initializer overridden"))

	resolved := r.Resolved()
	require.Len(t, resolved, 2)
	assert.Same(t, e, resolved[0])
	assert.Same(t, e, resolved[1], "the colliding export resolves to the original entry")
}

func TestRegistry_ResolvedTracksLastLoad(t *testing.T) {
	var calls []string
	sl := NewStaticLoader()
	sl.Register("/a.yaml", export("A", newFake("a", "1", &calls)))

	r := New(sl, logger.NewRecorder())
	require.NoError(t, r.Load(context.Background(), []string{"/a.yaml"}))
	require.NoError(t, r.Load(context.Background(), []string{"/a.yaml"}))

	// a rebuild collides with every registration but lists each entry once
	assert.Len(t, r.Resolved(), 1)

	r.Reset()
	assert.Empty(t, r.Resolved())
}

func TestRegistry_NoExportsIsFatal(t *testing.T) {
	sl := NewStaticLoader()
	sl.Register("/empty.yaml")

	r := New(sl, logger.NewRecorder())
	err := r.Load(context.Background(), []string{"/empty.yaml"})
	require.Error(t, err)
	assert.Equal(t, herrors.ErrCodeNoExports, herrors.CodeOf(err))
	assert.Contains(t, err.Error(), "no exported initializers found in /empty.yaml")
}

func TestRegistry_ConstructionFailures(t *testing.T) {
	tests := []struct {
		name string
		exp  initializer.Export
	}{
		{
			name: "FactoryError",
			exp: initializer.Export{Name: "X", New: func() (initializer.Initializer, error) {
				return nil, errors.New("bad params")
			}},
		},
		{
			name: "FactoryPanic",
			exp: initializer.Export{Name: "X", New: func() (initializer.Initializer, error) {
				panic("nil map")
			}},
		},
		{
			name: "NilFactory",
			exp:  initializer.Export{Name: "X"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sl := NewStaticLoader()
			sl.Register("/broken.yaml", tt.exp)
			r := New(sl, logger.NewRecorder())

			err := r.Load(context.Background(), []string{"/broken.yaml"})
			require.Error(t, err)
			assert.Equal(t, herrors.ErrCodeConstructFailed, herrors.CodeOf(err))
			assert.Contains(t, err.Error(), "/broken.yaml")
			assert.Zero(t, r.Len())
		})
	}
}

func TestRegistry_ValidationFailureNamesSource(t *testing.T) {
	var calls []string
	sl := NewStaticLoader()
	sl.Register("/good.yaml", export("G", newFake("good", "", &calls)))
	sl.Register("/bad.yaml", export("B", newFake("", "", &calls)))

	r := New(sl, logger.NewRecorder())
	err := r.Load(context.Background(), []string{"/good.yaml", "/bad.yaml"})
	require.Error(t, err)
	assert.Equal(t, herrors.ErrCodeValidationFailed, herrors.CodeOf(err))
	assert.Contains(t, err.Error(), "/bad.yaml")
}

func TestRegistry_LoaderError(t *testing.T) {
	r := New(NewStaticLoader(), logger.NewRecorder())
	err := r.Load(context.Background(), []string{"/unknown.yaml"})
	require.Error(t, err)
	assert.Equal(t, herrors.ErrCodeSourceLoadFailed, herrors.CodeOf(err))
}

func TestRegistry_Reset(t *testing.T) {
	var calls []string
	sl := NewStaticLoader()
	sl.Register("/a.yaml", export("A", newFake("a", "", &calls)))
	rec := logger.NewRecorder()
	r := New(sl, rec)

	require.NoError(t, r.Load(context.Background(), []string{"/a.yaml"}))
	r.Reset()
	assert.Zero(t, r.Len())

	require.NoError(t, r.Load(context.Background(), []string{"/a.yaml"}))
	assert.Equal(t, 1, r.Len())
	assert.Zero(t, rec.Count(logger.SeverityWarning, "existing initializer overridden"))
}

func TestEntryStep(t *testing.T) {
	var calls []string
	rec := logger.NewRecorder()
	boom := errors.New("port in use")
	u := newFake("http", "", &calls)
	u.startErr = boom
	e := &Entry{Unit: u, Source: "/http.yaml", Hooks: initializer.HooksOf(u)}

	require.NoError(t, e.Step(consts.PhaseInitialize, rec).Run(context.Background()))
	assert.Equal(t, []string{"init:http:"}, calls)

	// no Stop hook: no-op without logging
	before := len(rec.Entries())
	require.NoError(t, e.Step(consts.PhaseStop, rec).Run(context.Background()))
	assert.Len(t, rec.Entries(), before)

	err := e.Step(consts.PhaseStart, rec).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, herrors.ErrCodeStepFailed, herrors.CodeOf(err))
	assert.Equal(t, 1, rec.Count(logger.SeverityEmerg, "phase step failed"))
}

func TestEntryStep_UsesRecordedHooks(t *testing.T) {
	var calls []string
	u := newFake("cache", "", &calls)
	e := &Entry{Unit: u, Source: "/cache.yaml", Hooks: initializer.Hooks{Start: true}}

	require.NoError(t, e.Step(consts.PhaseInitialize, logger.NewRecorder()).Run(context.Background()))
	assert.Empty(t, calls, "a hook not recorded at registration is not run")

	require.NoError(t, e.Step(consts.PhaseStart, logger.NewRecorder()).Run(context.Background()))
	assert.Equal(t, []string{"start:cache:"}, calls)
}

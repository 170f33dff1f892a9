package initializer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type startOnly struct {
	Base
}

func (s *startOnly) Start(ctx context.Context) error { return nil }

type full struct {
	Base
	Endpoint string `validate:"required,url"`
}

func (f *full) Initialize(ctx context.Context) error { return nil }
func (f *full) Start(ctx context.Context) error      { return nil }
func (f *full) Stop(ctx context.Context) error       { return nil }
func (f *full) Validate() error                      { return Struct(f) }

func TestHooksOf(t *testing.T) {
	s := &startOnly{Base{UnitName: "s"}}
	assert.Equal(t, Hooks{Start: true}, HooksOf(s))

	f := &full{Base: Base{UnitName: "f"}}
	assert.Equal(t, Hooks{Load: true, Start: true, Stop: true}, HooksOf(f))
}

func TestBase_Validate(t *testing.T) {
	tests := []struct {
		name    string
		unit    string
		wantErr bool
	}{
		{name: "ValidName", unit: "config", wantErr: false},
		{name: "EmptyName", unit: "", wantErr: true},
		{name: "NameWithSpace", unit: "bad name", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Base{UnitName: tt.unit, Order: Priorities{Load: 1}}
			err := b.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStruct_EmbeddedFields(t *testing.T) {
	f := &full{Base: Base{UnitName: "probe"}, Endpoint: "not a url"}
	err := f.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Endpoint")

	f.Endpoint = "http://localhost:8080/health"
	assert.NoError(t, f.Validate())
}

func TestBase_Accessors(t *testing.T) {
	b := &Base{UnitName: "router", Order: Priorities{Load: 3, Start: 0, Stop: -1}}
	assert.Equal(t, "router", b.Name())
	assert.Equal(t, Priorities{Load: 3, Stop: -1}, b.Priorities())
}

package units

import (
	"context"
	"os"
	"sort"

	"github.com/turtacn/hestia/internal/manifest"
	"github.com/turtacn/hestia/pkg/initializer"
)

type envParams struct {
	Vars map[string]string `yaml:"vars" validate:"required,min=1,dive,keys,required,endkeys"`
}

// envUnit exports variables on initialize and restores the previous values on stop.
type envUnit struct {
	initializer.Base
	Params envParams

	saved map[string]*string
}

func newEnv(spec manifest.Spec) (initializer.Initializer, error) {
	u := &envUnit{Base: spec.Base()}
	if err := decode(spec, &u.Params); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *envUnit) Validate() error { return initializer.Struct(u) }

func (u *envUnit) Initialize(ctx context.Context) error {
	keys := make([]string, 0, len(u.Params.Vars))
	for k := range u.Params.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	u.saved = make(map[string]*string, len(keys))
	for _, k := range keys {
		if prev, ok := os.LookupEnv(k); ok {
			u.saved[k] = &prev
		} else {
			u.saved[k] = nil
		}
		if err := os.Setenv(k, u.Params.Vars[k]); err != nil {
			return err
		}
	}
	return nil
}

func (u *envUnit) Stop(ctx context.Context) error {
	for k, prev := range u.saved {
		var err error
		if prev == nil {
			err = os.Unsetenv(k)
		} else {
			err = os.Setenv(k, *prev)
		}
		if err != nil {
			return err
		}
	}
	u.saved = nil
	return nil
}

// Personal.AI order the ending

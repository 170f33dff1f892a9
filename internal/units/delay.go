package units

import (
	"context"
	"time"

	"github.com/turtacn/hestia/internal/manifest"
	"github.com/turtacn/hestia/pkg/initializer"
)

type delayParams struct {
	Duration time.Duration `yaml:"duration" default:"1s" validate:"gte=0"`
}

// delayUnit holds the start phase for a fixed duration, e.g. to let a dependency warm up.
type delayUnit struct {
	initializer.Base
	Params delayParams
}

func newDelay(spec manifest.Spec) (initializer.Initializer, error) {
	u := &delayUnit{Base: spec.Base()}
	if err := decode(spec, &u.Params); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *delayUnit) Validate() error { return initializer.Struct(u) }

func (u *delayUnit) Start(ctx context.Context) error {
	t := time.NewTimer(u.Params.Duration)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Personal.AI order the ending

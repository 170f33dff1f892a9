package registry

import (
	"context"

	"github.com/turtacn/hestia/pkg/consts"
	herrors "github.com/turtacn/hestia/pkg/errors"
	"github.com/turtacn/hestia/pkg/initializer"
	"github.com/turtacn/hestia/pkg/logger"
)

// Step is one entry of a flattened phase list.
type Step struct {
	Name   string
	Source string
	Run    func(ctx context.Context) error
}

// Step builds the phase function of e for phase from the hooks recorded at
// registration. Absent hooks yield a no-op.
func (e *Entry) Step(phase consts.Phase, log logger.Logger) Step {
	name := e.Name()
	step := Step{Name: name, Source: e.Source}

	var hook func(context.Context) error
	switch {
	case phase == consts.PhaseInitialize && e.Hooks.Load:
		hook = e.Unit.(initializer.Loader).Initialize
	case phase == consts.PhaseStart && e.Hooks.Start:
		hook = e.Unit.(initializer.Starter).Start
	case phase == consts.PhaseStop && e.Hooks.Stop:
		hook = e.Unit.(initializer.Stopper).Stop
	}

	if hook == nil {
		step.Run = func(context.Context) error { return nil }
		return step
	}

	step.Run = func(ctx context.Context) error {
		log.Debug("phase step begin", "phase", phase, "initializer", name, "source", e.Source)
		if err := hook(ctx); err != nil {
			log.Emerg("phase step failed", "phase", phase, "initializer", name,
				"source", e.Source, "err", herrors.Detail(err))
			return herrors.New(herrors.ErrCodeStepFailed, string(phase),
				"initializer "+name+" failed", err)
		}
		log.Debug("phase step end", "phase", phase, "initializer", name, "source", e.Source)
		return nil
	}
	return step
}

// Personal.AI order the ending

package units

import (
	"context"

	"github.com/turtacn/hestia/internal/manifest"
	"github.com/turtacn/hestia/pkg/initializer"
	"github.com/turtacn/hestia/pkg/logger"
)

type logParams struct {
	Message  string `yaml:"message" validate:"required"`
	Severity string `yaml:"severity" default:"info" validate:"oneof=debug info notice warn warning error emerg"`
}

// logUnit writes its message in every phase it has a priority for.
type logUnit struct {
	initializer.Base
	Params logParams
}

func newLog(spec manifest.Spec) (initializer.Initializer, error) {
	u := &logUnit{Base: spec.Base()}
	if err := decode(spec, &u.Params); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *logUnit) Validate() error { return initializer.Struct(u) }

func (u *logUnit) emit(phase string) error {
	sev, err := logger.ParseSeverity(u.Params.Severity)
	if err != nil {
		return err
	}
	logger.Log.With("initializer", u.UnitName, "phase", phase).Log(u.Params.Message, sev, "")
	return nil
}

func (u *logUnit) Initialize(ctx context.Context) error { return u.emit("initialize") }
func (u *logUnit) Start(ctx context.Context) error      { return u.emit("start") }
func (u *logUnit) Stop(ctx context.Context) error       { return u.emit("stop") }

// Personal.AI order the ending

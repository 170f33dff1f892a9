package units

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/hestia/internal/manifest"
	"github.com/turtacn/hestia/internal/resource"
	"github.com/turtacn/hestia/internal/supervisor"
	"github.com/turtacn/hestia/pkg/consts"
	"github.com/turtacn/hestia/pkg/initializer"
)

type processParams struct {
	Command []string      `yaml:"command" validate:"required,min=1"`
	Env     []string      `yaml:"env"`
	Listen  []string      `yaml:"listen" validate:"dive,required"`
	Grace   time.Duration `yaml:"grace" default:"10s" validate:"gt=0"`
}

// processUnit runs a child process for as long as the server is running.
// Listen addresses are bound once by hestia and handed to every incarnation of
// the child, so a restart does not refuse connections.
type processUnit struct {
	initializer.Base
	Params processParams

	pm      *supervisor.ProcessManager
	sockets *resource.SocketManager
}

func newProcess(spec manifest.Spec) (initializer.Initializer, error) {
	u := &processUnit{Base: spec.Base(), pm: supervisor.New(), sockets: resource.Default}
	if err := decode(spec, &u.Params); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *processUnit) Validate() error { return initializer.Struct(u) }

func (u *processUnit) Start(ctx context.Context) error {
	env := u.Params.Env
	var files []*os.File
	if len(u.Params.Listen) > 0 {
		var err error
		if files, err = u.sockets.Files(u.Params.Listen...); err != nil {
			return err
		}
		env = append(env[:len(env):len(env)],
			consts.EnvListenFDs+"="+strconv.Itoa(len(files)),
			consts.EnvListenAddrs+"="+strings.Join(u.Params.Listen, ","),
		)
	}
	return u.pm.Start(u.Params.Command, env, files)
}

func (u *processUnit) Stop(ctx context.Context) error {
	return u.pm.Shutdown(ctx, u.Params.Grace)
}

// Personal.AI order the ending

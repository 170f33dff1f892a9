package units

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/turtacn/hestia/internal/manifest"
	"github.com/turtacn/hestia/pkg/initializer"
	"github.com/turtacn/hestia/pkg/logger"
)

type probeParams struct {
	URL      string        `yaml:"url" validate:"required,url"`
	Timeout  time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
	Interval time.Duration `yaml:"interval" default:"500ms" validate:"gt=0"`
}

// probeUnit blocks the start phase until an HTTP endpoint answers with a 2xx status.
type probeUnit struct {
	initializer.Base
	Params probeParams

	client *resty.Client
}

func newHTTPProbe(spec manifest.Spec) (initializer.Initializer, error) {
	u := &probeUnit{Base: spec.Base()}
	if err := decode(spec, &u.Params); err != nil {
		return nil, err
	}
	u.client = resty.New().SetTimeout(u.Params.Interval * 4)
	return u, nil
}

func (u *probeUnit) Validate() error { return initializer.Struct(u) }

func (u *probeUnit) Start(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, u.Params.Timeout)
	defer cancel()

	tick := time.NewTicker(u.Params.Interval)
	defer tick.Stop()

	var last string
	for {
		resp, err := u.client.R().SetContext(ctx).Get(u.Params.URL)
		switch {
		case err != nil:
			last = err.Error()
		case resp.IsSuccess():
			logger.Log.Debug("Probe succeeded", "initializer", u.UnitName, "url", u.Params.URL)
			return nil
		default:
			last = resp.Status()
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("probe %s not ready after %s: %s", u.Params.URL, u.Params.Timeout, last)
		case <-tick.C:
		}
	}
}

// Personal.AI order the ending

// Package units provides the initializer kinds compiled into hestia.
package units

import (
	"fmt"

	"github.com/creasty/defaults"

	"github.com/turtacn/hestia/internal/manifest"
)

// Kind names.
const (
	KindLog       = "log"
	KindEnv       = "env"
	KindDelay     = "delay"
	KindProcess   = "process"
	KindHTTPProbe = "http-probe"
)

// Register adds every built-in kind to cat.
func Register(cat *manifest.Catalog) {
	cat.Register(KindLog, newLog)
	cat.Register(KindEnv, newEnv)
	cat.Register(KindDelay, newDelay)
	cat.Register(KindProcess, newProcess)
	cat.Register(KindHTTPProbe, newHTTPProbe)
}

// DefaultCatalog returns a catalog holding the built-in kinds.
func DefaultCatalog() *manifest.Catalog {
	cat := manifest.NewCatalog()
	Register(cat)
	return cat
}

// decode applies `default` tags to params, then overlays the manifest's params block.
func decode(spec manifest.Spec, params any) error {
	if err := defaults.Set(params); err != nil {
		return fmt.Errorf("defaults for %q: %w", spec.Name, err)
	}
	return spec.Decode(params)
}

// Personal.AI order the ending

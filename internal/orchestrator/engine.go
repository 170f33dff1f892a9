// Package orchestrator wires configuration, the lifecycle controller, the status
// server and the source watcher into the long-running hestia process.
package orchestrator

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/turtacn/hestia/internal/lifecycle"
	"github.com/turtacn/hestia/internal/manifest"
	"github.com/turtacn/hestia/internal/monitor"
	"github.com/turtacn/hestia/internal/resource"
	"github.com/turtacn/hestia/internal/units"
	"github.com/turtacn/hestia/internal/watch"
	"github.com/turtacn/hestia/pkg/logger"
	"github.com/turtacn/hestia/pkg/protocol"
)

// NewController builds a lifecycle controller for cfg using the built-in kinds and
// registers every configured plugin. terminate may be nil.
func NewController(cfg *protocol.Config, metrics *monitor.Metrics, terminate func(int)) *lifecycle.Controller {
	ctl := lifecycle.New(lifecycle.Options{
		Loader:       manifest.NewLoader(units.DefaultCatalog()),
		BuiltinRoot:  cfg.Initializers.BuiltinRoot,
		ProjectPaths: cfg.Initializers.Paths,
		PIDFile:      cfg.PIDFile,
		Environment:  cfg.Environment,
		ServerID:     cfg.ServerID,
		SettleDelay:  cfg.Lifecycle.SettleDelay,
		FlushDelay:   cfg.Lifecycle.FlushDelay,
		Terminate:    terminate,
		Logger:       logger.Log,
		Metrics:      metrics,
	})
	for name, p := range cfg.Plugins {
		ctl.AddPlugin(name, protocol.Plugin{Path: p.Path, Metadata: p.Metadata})
	}
	return ctl
}

// Engine runs one controller until it is told to stop. Every lifecycle call goes
// through the Run loop, so signals and source changes never overlap a phase.
type Engine struct {
	cfg       *protocol.Config
	registry  *prometheus.Registry
	metrics   *monitor.Metrics
	ctl       *lifecycle.Controller
	signals   chan os.Signal
	notify    bool
	terminate func(int)
}

func NewEngine(cfg *protocol.Config) *Engine {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	e := &Engine{
		cfg:       cfg,
		registry:  reg,
		metrics:   monitor.NewMetrics(reg),
		signals:   make(chan os.Signal, 1),
		notify:    true,
		terminate: os.Exit,
	}
	e.ctl = NewController(cfg, e.metrics, func(code int) { e.terminate(code) })
	return e
}

// Controller exposes the engine's controller for status reporting.
func (e *Engine) Controller() *lifecycle.Controller { return e.ctl }

// WatchRoots lists every directory discovery reads from.
func WatchRoots(cfg *protocol.Config) []string {
	roots := []string{cfg.Initializers.BuiltinRoot}
	roots = append(roots, cfg.Initializers.Paths...)
	for _, p := range cfg.Plugins {
		roots = append(roots, p.Path)
	}
	return roots
}

// Run starts the server and blocks. SIGHUP and source changes restart it; SIGINT,
// SIGTERM or ctx cancellation stop it and make Run return.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer resource.Default.Close()

	if addr := e.cfg.Observability.StatusAddr; addr != "" {
		srv := monitor.StartServer(addr, monitor.NewRouter(e.ctl, e.registry))
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if e.notify {
		signal.Notify(e.signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(e.signals)
	}

	var changes <-chan string
	if e.cfg.Watch.Enabled {
		w, err := watch.New(WatchRoots(e.cfg), e.cfg.Watch.Debounce)
		if err != nil {
			return err
		}
		defer w.Close()
		go w.Run(ctx)
		changes = w.Changes()
		logger.Log.Info("Watching initializer sources", "dirs", len(w.Watched()))
	}

	if err := e.ctl.Start(ctx); err != nil {
		return err
	}

	for {
		select {
		case sig := <-e.signals:
			switch sig {
			case syscall.SIGHUP:
				logger.Log.Info("Signal: SIGHUP received, restarting")
				if err := e.ctl.Restart(ctx, "signal"); err != nil {
					return err
				}
			case syscall.SIGINT, syscall.SIGTERM:
				logger.Log.Info("Signal: stop received, shutting down", "signal", sig.String())
				return e.ctl.Stop(ctx)
			}
		case path := <-changes:
			logger.Log.Info("Initializer source changed, restarting", "path", path)
			if err := e.ctl.Restart(ctx, "watch"); err != nil {
				return err
			}
		case <-ctx.Done():
			logger.Log.Info("Context cancelled, shutting down")
			return e.ctl.Stop(context.Background())
		}
	}
}

// Personal.AI order the ending

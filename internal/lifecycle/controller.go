// Package lifecycle drives the server through its initialize, start, stop and
// restart phases.
//
// Calls to Initialize, Start, Stop and Restart must be serialised by the caller.
// The only concession to concurrency is Stop's duplicate-shutdown guard and the
// read-only Snapshot used for status reporting.
package lifecycle

import (
	"context"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/turtacn/hestia/internal/discovery"
	"github.com/turtacn/hestia/internal/monitor"
	"github.com/turtacn/hestia/internal/pidfile"
	"github.com/turtacn/hestia/internal/registry"
	"github.com/turtacn/hestia/internal/scheduler"
	"github.com/turtacn/hestia/pkg/consts"
	"github.com/turtacn/hestia/pkg/fsm"
	"github.com/turtacn/hestia/pkg/logger"
	"github.com/turtacn/hestia/pkg/protocol"
)

// Options configures a Controller.
type Options struct {
	Loader       registry.SourceLoader
	BuiltinRoot  string
	ProjectPaths []string
	PIDFile      string
	Environment  string
	ServerID     string
	// SettleDelay is paused before and after the stop phase so in-flight work drains.
	SettleDelay time.Duration
	// FlushDelay is paused before a fatal exit so diagnostics reach the log sink.
	FlushDelay time.Duration
	// Terminate ends the process. Defaults to os.Exit.
	Terminate func(code int)
	Logger    logger.Logger
	Metrics   *monitor.Metrics
}

type state struct {
	initialized  bool
	running      bool
	shuttingDown bool
	startCount   int
	bootTime     time.Time
}

// Controller owns the process-wide lifecycle state.
type Controller struct {
	opts      Options
	log       logger.Logger
	metrics   *monitor.Metrics
	registry  *registry.Registry
	pid       *pidfile.File
	fsm       *fsm.StateMachine
	terminate func(int)

	mu         sync.RWMutex
	st         state
	plan       *scheduler.Plan
	plugins    map[string]protocol.Plugin
	escalating bool
}

const (
	evInitialized fsm.Event = "initialized"
	evStarted     fsm.Event = "started"
	evStop        fsm.Event = "stop"
	evStopped     fsm.Event = "stopped"
)

// New creates a controller in the Unstarted state.
func New(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = logger.Log
	}
	if opts.Terminate == nil {
		opts.Terminate = os.Exit
	}
	if opts.PIDFile == "" {
		opts.PIDFile = consts.DefaultPIDFile
	}
	c := &Controller{
		opts:      opts,
		log:       opts.Logger,
		metrics:   opts.Metrics,
		registry:  registry.New(opts.Loader, opts.Logger),
		pid:       pidfile.New(opts.PIDFile),
		fsm:       fsm.New(fsm.State(consts.StateUnstarted)),
		terminate: opts.Terminate,
		plan:      &scheduler.Plan{},
		plugins:   make(map[string]protocol.Plugin),
	}
	c.setupFSM()
	return c
}

func (c *Controller) setupFSM() {
	st := func(s consts.LifecycleState) fsm.State { return fsm.State(s) }

	for _, from := range []consts.LifecycleState{consts.StateUnstarted, consts.StateStopped, consts.StateStopping, consts.StateInitialized} {
		c.fsm.AddTransition(st(from), st(consts.StateInitialized), evInitialized, c.onTransition)
	}
	// rebuilding the plan while running keeps the server running
	c.fsm.AddTransition(st(consts.StateRunning), st(consts.StateRunning), evInitialized, c.onTransition)

	c.fsm.AddTransition(st(consts.StateInitialized), st(consts.StateRunning), evStarted, c.onTransition)
	c.fsm.AddTransition(st(consts.StateRunning), st(consts.StateRunning), evStarted, c.onTransition)

	c.fsm.AddTransition(st(consts.StateRunning), st(consts.StateStopping), evStop, c.onTransition)
	c.fsm.AddTransition(st(consts.StateStopping), st(consts.StateStopped), evStopped, c.onTransition)
}

func (c *Controller) onTransition(from, to fsm.State, event fsm.Event) error {
	c.metrics.SetState(consts.LifecycleState(to))
	c.log.Debug("Lifecycle transition", "from", from, "to", to, "event", event)
	return nil
}

func (c *Controller) fire(ev fsm.Event) {
	if err := c.fsm.Fire(ev); err != nil {
		c.log.Warn("Lifecycle transition rejected", "event", ev, "err", err)
	}
}

// AddPlugin registers a plugin descriptor under name. Later calls for the same name
// replace earlier ones. Only Path is checked, and only at discovery time.
func (c *Controller) AddPlugin(name string, p protocol.Plugin) {
	p.Name = name
	c.mu.Lock()
	c.plugins[name] = p
	c.mu.Unlock()
	c.log.Debug("Plugin added", "plugin", name, "path", p.Path)
}

// Plugins returns the registered plugin descriptors sorted by name.
func (c *Controller) Plugins() []protocol.Plugin {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]protocol.Plugin, 0, len(c.plugins))
	for _, p := range c.plugins {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Build runs discovery, loads every source into the registry and schedules the
// phase lists. It does not execute anything and does not escalate.
func (c *Controller) Build(ctx context.Context) (*scheduler.Plan, error) {
	c.mu.RLock()
	plugins := make(map[string]protocol.Plugin, len(c.plugins))
	for k, v := range c.plugins {
		plugins[k] = v
	}
	c.mu.RUnlock()

	sources, err := discovery.Discover(ctx, discovery.Input{
		BuiltinRoot:  c.opts.BuiltinRoot,
		ProjectPaths: c.opts.ProjectPaths,
		Plugins:      plugins,
	})
	if err != nil {
		return nil, err
	}
	c.log.Debug("Initializer sources discovered", "count", len(sources))

	if err := c.registry.Load(ctx, sources); err != nil {
		return nil, err
	}
	c.metrics.SetInitializers(c.registry.Len())

	plan := scheduler.Build(c.registry.Resolved(), c.log)
	c.mu.Lock()
	c.plan = plan
	c.mu.Unlock()
	return plan, nil
}

// Initialize builds the phase lists and, unless already initialized, runs the load
// phase. Failures are escalated.
func (c *Controller) Initialize(ctx context.Context) error {
	plan, err := c.Build(ctx)
	if err != nil {
		return c.FatalError(ctx, consts.PhaseInitialize, err)
	}

	if c.Initialized() {
		c.log.Debug("Already initialized, phase lists rebuilt")
		c.fire(evInitialized)
		return nil
	}

	if err := c.run(ctx, consts.PhaseInitialize, plan.Load); err != nil {
		return c.FatalError(ctx, consts.PhaseInitialize, err)
	}

	c.mu.Lock()
	c.st.initialized = true
	c.mu.Unlock()
	c.fire(evInitialized)
	c.log.Info("Initialized", "initializers", c.registry.Len())
	return nil
}

// Start initializes if needed, writes the PID marker and runs the start phase.
// Failures are escalated.
func (c *Controller) Start(ctx context.Context) error {
	if !c.Initialized() {
		if err := c.Initialize(ctx); err != nil {
			return err
		}
	}

	if err := c.pid.Write(); err != nil {
		return c.FatalError(ctx, consts.PhaseStart, err)
	}

	c.mu.Lock()
	c.st.running = true
	plan := c.plan
	c.mu.Unlock()

	c.log.Info("Starting", "environment", c.opts.Environment, "server_id", c.opts.ServerID, "pid", os.Getpid())

	steps := make([]registry.Step, 0, len(plan.Start)+1)
	steps = append(steps, plan.Start...)
	steps = append(steps, registry.Step{Name: "boot-time", Run: c.stampBoot})

	if err := c.run(ctx, consts.PhaseStart, steps); err != nil {
		return c.FatalError(ctx, consts.PhaseStart, err)
	}
	c.fire(evStarted)
	return nil
}

func (c *Controller) stampBoot(context.Context) error {
	now := time.Now()
	c.mu.Lock()
	c.st.bootTime = now
	first := c.st.startCount == 0
	if first {
		c.st.startCount = 1
	}
	c.mu.Unlock()

	c.metrics.SetBootTime(now)
	msg := "Restarted"
	if first {
		msg = "Started"
	}
	c.log.Notice(msg, "environment", c.opts.Environment, "server_id", c.opts.ServerID, "pid", os.Getpid())
	return nil
}

// Stop runs the stop phase. A stop while another is in flight, or while the server
// is not running, is logged and ignored.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.st.shuttingDown {
		c.mu.Unlock()
		c.log.Notice("Stop already in progress, ignoring")
		return nil
	}
	if !c.st.running {
		c.mu.Unlock()
		c.log.Error("Stop requested but server is not running")
		return nil
	}
	c.st.shuttingDown = true
	c.st.running = false
	c.st.initialized = false
	plan := c.plan
	c.mu.Unlock()

	c.fire(evStop)
	c.log.Notice("Stopping", "environment", c.opts.Environment, "server_id", c.opts.ServerID)
	pause(ctx, c.opts.SettleDelay)

	steps := make([]registry.Step, 0, len(plan.Stop)+1)
	steps = append(steps, plan.Stop...)
	steps = append(steps, registry.Step{Name: "teardown", Run: c.teardown})

	if err := c.run(ctx, consts.PhaseStop, steps); err != nil {
		return c.FatalError(ctx, consts.PhaseStop, err)
	}
	c.fire(evStopped)
	logger.Safe(func() { c.log.Notice("Stopped") })
	return nil
}

// teardown is the terminal stop step: it releases the PID marker and wipes the
// registry so the next Initialize starts clean.
func (c *Controller) teardown(ctx context.Context) error {
	if err := c.pid.Clear(); err != nil {
		return err
	}
	c.mu.Lock()
	c.st.shuttingDown = false
	c.plan = &scheduler.Plan{}
	c.mu.Unlock()

	c.registry.Reset()
	c.metrics.SetInitializers(0)
	pause(ctx, c.opts.SettleDelay)
	return nil
}

// Restart stops a running server and starts it again; a server that is not running
// is simply started. reason labels the restart metric.
func (c *Controller) Restart(ctx context.Context, reason string) error {
	c.metrics.Restarted(reason)
	c.log.Info("Restart requested", "reason", reason)
	if c.Running() {
		if err := c.Stop(ctx); err != nil {
			return err
		}
	}
	return c.Start(ctx)
}

// run executes steps one at a time; the first failure aborts the rest.
func (c *Controller) run(ctx context.Context, phase consts.Phase, steps []registry.Step) error {
	begin := time.Now()
	defer func() { c.metrics.ObservePhase(phase, time.Since(begin)) }()

	c.log.Debug("Phase begin", "phase", phase, "steps", len(steps))
	for _, s := range steps {
		if err := s.Run(ctx); err != nil {
			return err
		}
	}
	c.log.Debug("Phase end", "phase", phase, "elapsed", time.Since(begin))
	return nil
}

func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// Personal.AI order the ending

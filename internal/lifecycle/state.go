package lifecycle

import (
	"time"

	"github.com/turtacn/hestia/internal/scheduler"
	"github.com/turtacn/hestia/pkg/consts"
)

// Snapshot is a point-in-time copy of the lifecycle state.
type Snapshot struct {
	Phase        consts.LifecycleState `json:"phase"`
	Initialized  bool                  `json:"initialized"`
	Running      bool                  `json:"running"`
	ShuttingDown bool                  `json:"shutting_down"`
	StartCount   int                   `json:"start_count"`
	BootTime     time.Time             `json:"boot_time,omitempty"`
	Environment  string                `json:"environment"`
	ServerID     string                `json:"server_id"`
	Initializers []string              `json:"initializers"`
	Plugins      []string              `json:"plugins"`
}

// PlanNames lists step names per phase.
type PlanNames struct {
	Load  []string `json:"load"`
	Start []string `json:"start"`
	Stop  []string `json:"stop"`
}

func (c *Controller) Snapshot() Snapshot {
	entries := c.registry.Entries()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	plugins := c.Plugins()
	pluginNames := make([]string, len(plugins))
	for i, p := range plugins {
		pluginNames[i] = p.Name
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Phase:        consts.LifecycleState(c.fsm.Current()),
		Initialized:  c.st.initialized,
		Running:      c.st.running,
		ShuttingDown: c.st.shuttingDown,
		StartCount:   c.st.startCount,
		BootTime:     c.st.bootTime,
		Environment:  c.opts.Environment,
		ServerID:     c.opts.ServerID,
		Initializers: names,
		Plugins:      pluginNames,
	}
}

func (c *Controller) Initialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.st.initialized
}

func (c *Controller) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.st.running
}

func (c *Controller) ShuttingDown() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.st.shuttingDown
}

func (c *Controller) StartCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.st.startCount
}

func (c *Controller) BootTime() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.st.bootTime
}

// Plan returns the step names of the current phase lists.
func (c *Controller) Plan() PlanNames {
	c.mu.RLock()
	plan := c.plan
	c.mu.RUnlock()
	return PlanNames{
		Load:  scheduler.Names(plan.Load),
		Start: scheduler.Names(plan.Start),
		Stop:  scheduler.Names(plan.Stop),
	}
}

// Ready implements monitor.StatusSource.
func (c *Controller) Ready() bool { return c.Running() }

// StatusReport implements monitor.StatusSource.
func (c *Controller) StatusReport() any { return c.Snapshot() }

// Personal.AI order the ending

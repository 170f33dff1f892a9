// Package scheduler orders phase steps by priority.
package scheduler

import (
	"sort"

	"github.com/turtacn/hestia/internal/registry"
	"github.com/turtacn/hestia/pkg/consts"
	"github.com/turtacn/hestia/pkg/logger"
)

// Buckets maps a priority to the steps registered at it, in insertion order.
type Buckets map[int][]registry.Step

// Add appends step to the bucket for priority. Priorities of zero or below opt the
// step out of the phase entirely.
func (b Buckets) Add(priority int, step registry.Step) {
	if priority <= 0 {
		return
	}
	b[priority] = append(b[priority], step)
}

// Flatten concatenates the buckets by ascending priority, keeping insertion order
// inside each bucket.
func (b Buckets) Flatten() []registry.Step {
	keys := make([]int, 0, len(b))
	n := 0
	for k, steps := range b {
		keys = append(keys, k)
		n += len(steps)
	}
	sort.Ints(keys)

	out := make([]registry.Step, 0, n)
	for _, k := range keys {
		out = append(out, b[k]...)
	}
	return out
}

// Plan holds the three flattened phase lists.
type Plan struct {
	Load  []registry.Step
	Start []registry.Step
	Stop  []registry.Step
}

// Steps returns the list for phase.
func (p *Plan) Steps(phase consts.Phase) []registry.Step {
	switch phase {
	case consts.PhaseInitialize:
		return p.Load
	case consts.PhaseStart:
		return p.Start
	case consts.PhaseStop:
		return p.Stop
	}
	return nil
}

// Build buckets every entry's phase functions by the entry's priorities and
// flattens each phase. Entries must be in discovery order; an entry listed twice
// contributes its steps twice.
func Build(entries []*registry.Entry, log logger.Logger) *Plan {
	load, start, stop := Buckets{}, Buckets{}, Buckets{}
	for _, e := range entries {
		pr := e.Unit.Priorities()
		load.Add(pr.Load, e.Step(consts.PhaseInitialize, log))
		start.Add(pr.Start, e.Step(consts.PhaseStart, log))
		stop.Add(pr.Stop, e.Step(consts.PhaseStop, log))
	}
	return &Plan{
		Load:  load.Flatten(),
		Start: start.Flatten(),
		Stop:  stop.Flatten(),
	}
}

// Names lists the step names of steps, for plan output and tests.
func Names(steps []registry.Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Name
	}
	return out
}

// Personal.AI order the ending

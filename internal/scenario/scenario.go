// Package scenario runs scripted end-to-end flights against a fresh engine
// and reports whether each one ended in the expected state.
package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/MRamiBalles/hullbreach/internal/engine"
	"github.com/MRamiBalles/hullbreach/internal/events"
	"github.com/MRamiBalles/hullbreach/internal/platform/config"
	"github.com/MRamiBalles/hullbreach/internal/platform/logger"
)

// Scenario is one scripted flight. Setup returns the ships to register,
// keyed by ID; Script drives the engine and returns an error describing
// the first expectation that did not hold.
type Scenario struct {
	Name        string
	Description string
	Setup       func() map[string]config.Simulation
	Script      func(h *Harness) error
}

// Result captures the outcome of each scenario.
type Result struct {
	Name        string
	Description string
	Passed      bool
	Reason      string
	Ticks       int64
	SimTime     float64
	Events      int
	Elapsed     time.Duration
}

// Harness is the engine and event log a single scenario runs against.
type Harness struct {
	Engine *engine.Engine
	Events *events.EventLog
}

// Step advances the engine n times by dt.
func (h *Harness) Step(dt float64, n int) error {
	for i := 0; i < n; i++ {
		if err := h.Engine.Advance(dt); err != nil {
			return err
		}
	}
	return nil
}

// Ship returns the current snapshot of a registered ship.
func (h *Harness) Ship(id string) (engine.ShipSnapshot, error) {
	s, ok := h.Engine.Snapshot(id)
	if !ok {
		return engine.ShipSnapshot{}, fmt.Errorf("ship %s is not registered", id)
	}
	return s, nil
}

// Count returns how many events of type t were logged.
func (h *Harness) Count(t events.EventType) int {
	return len(h.Events.GetByType(t))
}

// Runner executes scenarios in order, each on its own engine.
type Runner struct {
	scenarios []Scenario
	logger    *logger.Logger
	results   []Result
}

// NewRunner creates a runner over the given scenarios. With none given it
// runs the stock catalog.
func NewRunner(log *logger.Logger, scenarios ...Scenario) *Runner {
	if log == nil {
		log = logger.Discard()
	}
	if len(scenarios) == 0 {
		scenarios = Catalog()
	}
	return &Runner{scenarios: scenarios, logger: log}
}

// Run executes every scenario and returns the results. It stops early,
// without recording the remaining scenarios, if ctx is cancelled.
func (r *Runner) Run(ctx context.Context) []Result {
	r.results = make([]Result, 0, len(r.scenarios))
	for _, sc := range r.scenarios {
		if ctx.Err() != nil {
			r.logger.Warn("scenario run cancelled", "remaining", len(r.scenarios)-len(r.results))
			break
		}
		res := r.runOne(sc)
		if res.Passed {
			r.logger.Info("scenario passed", "name", res.Name, "ticks", res.Ticks)
		} else {
			r.logger.Warn("scenario failed", "name", res.Name, "reason", res.Reason)
		}
		r.results = append(r.results, res)
	}
	return r.results
}

// Results returns the results of the last Run.
func (r *Runner) Results() []Result {
	return r.results
}

func (r *Runner) runOne(sc Scenario) Result {
	start := time.Now()
	res := Result{Name: sc.Name, Description: sc.Description}

	el := events.NewEventLog(nil, 0)
	defer el.Close()
	h := &Harness{Engine: engine.NewEngine(el, r.logger), Events: el}

	var err error
	if sc.Setup != nil {
		for id, sim := range sc.Setup() {
			if err = h.Engine.RegisterShip(id, id, sim); err != nil {
				break
			}
		}
	}
	if err == nil {
		err = sc.Script(h)
	}

	res.Ticks, res.SimTime = h.Engine.Clock()
	res.Events = el.Len()
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Reason = err.Error()
		return res
	}
	res.Passed = true
	res.Reason = "all expectations held"
	return res
}

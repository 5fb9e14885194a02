package scenario

import (
	"context"
	"errors"
	"testing"

	"github.com/MRamiBalles/hullbreach/internal/platform/config"
)

func TestCatalogPasses(t *testing.T) {
	results := NewRunner(nil).Run(context.Background())
	if len(results) != len(Catalog()) {
		t.Fatalf("got %d results, want %d", len(results), len(Catalog()))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("%s failed: %s", r.Name, r.Reason)
		}
		if r.Events == 0 && r.Name != "warp_needs_fuel" {
			t.Errorf("%s logged no events", r.Name)
		}
	}
}

func TestFailureIsReported(t *testing.T) {
	failing := Scenario{
		Name:  "always_fails",
		Setup: single(config.DefaultSimulation()),
		Script: func(h *Harness) error {
			if err := h.Step(0.5, 4); err != nil {
				return err
			}
			return errors.New("expected failure")
		},
	}
	results := NewRunner(nil, failing).Run(context.Background())
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.Passed || r.Reason != "expected failure" {
		t.Errorf("got passed=%v reason=%q, want a failure", r.Passed, r.Reason)
	}
	if r.Ticks != 4 || r.SimTime != 2 {
		t.Errorf("got %d ticks over %vs, want 4 over 2s", r.Ticks, r.SimTime)
	}
}

func TestInvalidSetupFails(t *testing.T) {
	bad := config.DefaultSimulation()
	bad.Crew.MaxMorale = -1
	called := false
	sc := Scenario{
		Name:  "bad_setup",
		Setup: single(bad),
		Script: func(h *Harness) error {
			called = true
			return nil
		},
	}
	r := NewRunner(nil, sc).Run(context.Background())[0]
	if r.Passed || called {
		t.Errorf("got passed=%v script called=%v, want registration failure", r.Passed, called)
	}
}

func TestCancelledRunStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := NewRunner(nil).Run(ctx); len(got) != 0 {
		t.Errorf("got %d results, want 0", len(got))
	}
}

package scenario

import (
	"fmt"

	"github.com/MRamiBalles/hullbreach/internal/domain/combat"
	"github.com/MRamiBalles/hullbreach/internal/domain/item"
	"github.com/MRamiBalles/hullbreach/internal/domain/outcome"
	"github.com/MRamiBalles/hullbreach/internal/domain/propulsion"
	"github.com/MRamiBalles/hullbreach/internal/domain/resource"
	"github.com/MRamiBalles/hullbreach/internal/events"
	"github.com/MRamiBalles/hullbreach/internal/platform/config"
)

// Catalog is the stock scenario list run by the scenario-runner binary.
func Catalog() []Scenario {
	return []Scenario{
		warpExhaustion(),
		warpNeedsFuel(),
		chargeTickIndependence(),
		shieldBeforeHull(),
		destroyedFixedPoint(),
		strikeLifecycle(),
		boardingCapture(),
		researchIsAtomic(),
	}
}

func single(sim config.Simulation) func() map[string]config.Simulation {
	return func() map[string]config.Simulation {
		return map[string]config.Simulation{"ALPHA": sim}
	}
}

func expectRejected(r outcome.Result, want outcome.Reason) error {
	if r.Status != outcome.StatusRejected || r.Reason != want {
		return fmt.Errorf("got %s/%s, want rejected/%s", r.Status, r.Reason, want)
	}
	return nil
}

func warpExhaustion() Scenario {
	sim := config.DefaultSimulation()
	sim.Resources.Initial.Fuel = 10
	sim.Resources.FuelRate = 0
	sim.Propulsion.WarpFuelRate = 10
	sim.Propulsion.WarpChargeTime = 2

	return Scenario{
		Name:        "warp_exhaustion",
		Description: "10 fuel at 10/s after a 2s charge: cruise, then stop dry",
		Setup:       single(sim),
		Script: func(h *Harness) error {
			if r := h.Engine.StartWarp("ALPHA"); !r.OK() {
				return fmt.Errorf("StartWarp: %s", r.Detail)
			}
			if err := h.Step(0.1, 20); err != nil {
				return err
			}
			s, err := h.Ship("ALPHA")
			if err != nil {
				return err
			}
			if s.Propulsion.Phase != propulsion.PhaseCruising || s.Propulsion.Speed != sim.Propulsion.MaxWarpSpeed {
				return fmt.Errorf("after 2s got %s at %v, want cruising at %v",
					s.Propulsion.Phase, s.Propulsion.Speed, sim.Propulsion.MaxWarpSpeed)
			}

			if err := h.Step(0.1, 10); err != nil {
				return err
			}
			if s, err = h.Ship("ALPHA"); err != nil {
				return err
			}
			if s.Resources.Fuel != 0 || s.Propulsion.Speed != 0 || s.Propulsion.Phase != propulsion.PhaseIdle {
				return fmt.Errorf("after 3s got fuel %v speed %v phase %s, want 0, 0, idle",
					s.Resources.Fuel, s.Propulsion.Speed, s.Propulsion.Phase)
			}
			if n := h.Count(events.EventTypeWarpStopped); n != 1 {
				return fmt.Errorf("got %d WARP_STOPPED events, want 1", n)
			}
			return nil
		},
	}
}

func warpNeedsFuel() Scenario {
	sim := config.DefaultSimulation()
	sim.Resources.Initial.Fuel = 0

	return Scenario{
		Name:        "warp_needs_fuel",
		Description: "StartWarp on an empty tank is rejected and changes nothing",
		Setup:       single(sim),
		Script: func(h *Harness) error {
			before, err := h.Ship("ALPHA")
			if err != nil {
				return err
			}
			if err := expectRejected(h.Engine.StartWarp("ALPHA"), outcome.ReasonInsufficientResources); err != nil {
				return err
			}
			after, err := h.Ship("ALPHA")
			if err != nil {
				return err
			}
			if after.Propulsion != before.Propulsion {
				return fmt.Errorf("drive changed on rejection: %+v -> %+v", before.Propulsion, after.Propulsion)
			}
			return nil
		},
	}
}

func chargeTickIndependence() Scenario {
	sim := config.DefaultSimulation()

	return Scenario{
		Name:        "charge_tick_independence",
		Description: "500 ticks of 0.01s charge a 5s warp exactly like one 5s tick",
		Setup: func() map[string]config.Simulation {
			return map[string]config.Simulation{"FINE": sim, "COARSE": sim}
		},
		Script: func(h *Harness) error {
			h.Engine.StartWarp("FINE")
			if err := h.Step(0.01, 499); err != nil {
				return err
			}
			fine, err := h.Ship("FINE")
			if err != nil {
				return err
			}
			if fine.Propulsion.Phase != propulsion.PhaseCharging {
				return fmt.Errorf("after 4.99s got %s, want still charging", fine.Propulsion.Phase)
			}
			if err := h.Step(0.01, 1); err != nil {
				return err
			}
			if fine, err = h.Ship("FINE"); err != nil {
				return err
			}

			h.Engine.StartWarp("COARSE")
			if err := h.Step(5, 1); err != nil {
				return err
			}
			coarse, err := h.Ship("COARSE")
			if err != nil {
				return err
			}
			if fine.Propulsion.Phase != propulsion.PhaseCruising || coarse.Propulsion.Phase != propulsion.PhaseCruising {
				return fmt.Errorf("got phases %s and %s, want both cruising",
					fine.Propulsion.Phase, coarse.Propulsion.Phase)
			}
			return nil
		},
	}
}

func shieldBeforeHull() Scenario {
	sim := config.DefaultSimulation()
	sim.Combat.InitialShield = 30

	return Scenario{
		Name:        "shield_before_hull",
		Description: "shield 30, hull 100, 50 damage leaves 0 and 80",
		Setup:       single(sim),
		Script: func(h *Harness) error {
			if r := h.Engine.ReceiveDamage("ALPHA", 50, combat.DamageKinetic); !r.OK() {
				return fmt.Errorf("ReceiveDamage: %s", r.Detail)
			}
			s, err := h.Ship("ALPHA")
			if err != nil {
				return err
			}
			if s.Combat.Shield != 0 || s.Combat.Hull != 80 {
				return fmt.Errorf("got shield %v hull %v, want 0 and 80", s.Combat.Shield, s.Combat.Hull)
			}
			return nil
		},
	}
}

func destroyedFixedPoint() Scenario {
	return Scenario{
		Name:        "destroyed_fixed_point",
		Description: "hull at 0 is terminal and ignores further damage",
		Setup:       single(config.DefaultSimulation()),
		Script: func(h *Harness) error {
			h.Engine.EnterCombat("ALPHA")
			if r := h.Engine.ReceiveDamage("ALPHA", 500, combat.DamageMissile); !r.Terminal() {
				return fmt.Errorf("got %s, want terminal", r.Status)
			}
			if err := expectRejected(h.Engine.ReceiveDamage("ALPHA", 10, combat.DamageKinetic), outcome.ReasonDestroyed); err != nil {
				return err
			}
			if err := h.Step(1, 5); err != nil {
				return err
			}
			s, err := h.Ship("ALPHA")
			if err != nil {
				return err
			}
			if s.Combat.Hull != 0 || s.Combat.Shield != 0 || s.Combat.Active {
				return fmt.Errorf("got hull %v shield %v active %v, want 0, 0, false",
					s.Combat.Hull, s.Combat.Shield, s.Combat.Active)
			}
			if n := h.Count(events.EventTypeShipDestroyed); n != 1 {
				return fmt.Errorf("got %d SHIP_DESTROYED events, want 1", n)
			}
			return nil
		},
	}
}

func strikeLifecycle() Scenario {
	sim := config.DefaultSimulation()
	sim.Crew.InitialMorale = 1
	sim.Crew.DecrementRate = 1
	sim.Crew.StrikeDuration = 3

	return Scenario{
		Name:        "strike_lifecycle",
		Description: "morale bottoms out, areas go dark for 3s, then return at minimum morale",
		Setup:       single(sim),
		Script: func(h *Harness) error {
			if err := h.Step(1, 1); err != nil {
				return err
			}
			s, err := h.Ship("ALPHA")
			if err != nil {
				return err
			}
			if !s.Crew.OnStrike || len(s.Crew.DisabledAreas) != len(sim.Crew.StrikeAreas) {
				return fmt.Errorf("got strike=%v areas=%v, want a strike over %v",
					s.Crew.OnStrike, s.Crew.DisabledAreas, sim.Crew.StrikeAreas)
			}
			if err := expectRejected(h.Engine.StartWarp("ALPHA"), outcome.ReasonAreaDisabled); err != nil {
				return err
			}

			if err := h.Step(1, 3); err != nil {
				return err
			}
			if s, err = h.Ship("ALPHA"); err != nil {
				return err
			}
			if s.Crew.OnStrike || len(s.Crew.DisabledAreas) != 0 {
				return fmt.Errorf("got strike=%v areas=%v after 3s, want none", s.Crew.OnStrike, s.Crew.DisabledAreas)
			}
			if s.Crew.Morale != sim.Crew.MinMorale {
				return fmt.Errorf("got morale %v, want still at %v", s.Crew.Morale, sim.Crew.MinMorale)
			}
			if r := h.Engine.StartWarp("ALPHA"); !r.OK() {
				return fmt.Errorf("engine bay still disabled: %s", r.Detail)
			}
			if n := h.Count(events.EventTypeStrikeStarted); n != 1 {
				return fmt.Errorf("got %d STRIKE_STARTED events, want 1", n)
			}
			return nil
		},
	}
}

func boardingCapture() Scenario {
	return Scenario{
		Name:        "boarding_capture",
		Description: "a boarding party takes an engaged ship after the boarding time",
		Setup: func() map[string]config.Simulation {
			return map[string]config.Simulation{
				"ALPHA": config.DefaultSimulation(),
				"BRAVO": config.DefaultSimulation(),
			}
		},
		Script: func(h *Harness) error {
			if err := expectRejected(h.Engine.AttemptBoard("ALPHA", "BRAVO"), outcome.ReasonNotInCombat); err != nil {
				return err
			}
			if r := h.Engine.Engage("ALPHA", "BRAVO"); !r.OK() {
				return fmt.Errorf("Engage: %s", r.Detail)
			}
			if r := h.Engine.AttemptBoard("ALPHA", "BRAVO"); !r.OK() {
				return fmt.Errorf("AttemptBoard: %s", r.Detail)
			}
			if err := h.Step(1, 10); err != nil {
				return err
			}
			s, err := h.Ship("BRAVO")
			if err != nil {
				return err
			}
			if !s.Combat.Captured || s.Combat.Active {
				return fmt.Errorf("got captured=%v active=%v, want captured and inactive", s.Combat.Captured, s.Combat.Active)
			}
			return nil
		},
	}
}

func researchIsAtomic() Scenario {
	sim := config.DefaultSimulation()
	sim.Resources.Initial.RawMaterial = 100
	sim.Resources.RawDecay = 0

	return Scenario{
		Name:        "research_is_atomic",
		Description: "a research start that cannot pay both costs deducts neither",
		Setup:       single(sim),
		Script: func(h *Harness) error {
			if err := expectRejected(h.Engine.StartResearch("ALPHA", "shield_upgrades"), outcome.ReasonInsufficientResources); err != nil {
				return err
			}
			s, err := h.Ship("ALPHA")
			if err != nil {
				return err
			}
			if data := stackOf(s.Inventory, item.ItemResearchData); data != sim.Inventory[item.ItemResearchData] {
				return fmt.Errorf("got %d research data, want %d", data, sim.Inventory[item.ItemResearchData])
			}
			if s.Resources.RawMaterial != 100 {
				return fmt.Errorf("got raw material %v, want 100", s.Resources.RawMaterial)
			}

			h.Engine.AddResource("ALPHA", resource.KindRawMaterial, 400)
			if r := h.Engine.StartResearch("ALPHA", "shield_upgrades"); !r.OK() {
				return fmt.Errorf("StartResearch: %s", r.Detail)
			}
			if err := h.Step(10, 9); err != nil {
				return err
			}
			if s, err = h.Ship("ALPHA"); err != nil {
				return err
			}
			if s.Combat.MaxShield != sim.Combat.MaxShield+50 {
				return fmt.Errorf("got max shield %v, want %v", s.Combat.MaxShield, sim.Combat.MaxShield+50)
			}
			return nil
		},
	}
}

func stackOf(stacks []item.ItemStack, t item.ItemType) int {
	for _, st := range stacks {
		if st.Type == t {
			return st.Quantity
		}
	}
	return 0
}

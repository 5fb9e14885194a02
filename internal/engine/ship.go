package engine

import (
	"fmt"

	"github.com/MRamiBalles/hullbreach/internal/domain/combat"
	"github.com/MRamiBalles/hullbreach/internal/domain/crew"
	"github.com/MRamiBalles/hullbreach/internal/domain/item"
	"github.com/MRamiBalles/hullbreach/internal/domain/propulsion"
	"github.com/MRamiBalles/hullbreach/internal/domain/research"
	"github.com/MRamiBalles/hullbreach/internal/domain/resource"
	"github.com/MRamiBalles/hullbreach/internal/domain/stats"
	"github.com/MRamiBalles/hullbreach/internal/platform/config"
)

// Ship aggregates the five subsystems of one simulated vessel plus its cargo.
// Each block is owned by its subsystem; the engine only wires capabilities.
type Ship struct {
	ID   string
	Name string

	resources *resource.Pool
	crew      *crew.Crew
	drive     *propulsion.Drive
	combat    *combat.State
	research  *research.State
	cargo     *item.Inventory

	foodShort bool
}

func newShip(id, name string, sim config.Simulation) (*Ship, error) {
	if err := sim.Validate(); err != nil {
		return nil, err
	}
	cargo, err := item.NewInventory(sim.Inventory)
	if err != nil {
		return nil, err
	}
	tree, err := research.New(sim.Research)
	if err != nil {
		return nil, err
	}
	pool := resource.NewPool(sim.Resources)

	return &Ship{
		ID:        id,
		Name:      name,
		resources: pool,
		crew:      crew.New(sim.Crew),
		drive:     propulsion.NewDrive(sim.Propulsion, pool),
		combat:    combat.New(id, sim.Combat),
		research:  tree,
		cargo:     cargo,
	}, nil
}

// applyBenefits routes each research modifier to the subsystem owning the stat.
func (s *Ship) applyBenefits(mods []stats.Modifier) error {
	targets := []stats.Modifiable{s.drive, s.combat}
	for _, m := range mods {
		applied := false
		for _, t := range targets {
			if t.ApplyModifier(m) {
				applied = true
				break
			}
		}
		if !applied {
			return fmt.Errorf("no subsystem owns stat %q", m.Stat)
		}
	}
	return nil
}

// ShipSnapshot is the read-only view handed to presentation consumers.
type ShipSnapshot struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Tick       int64               `json:"tick"`
	SimTime    float64             `json:"sim_time"`
	Destroyed  bool                `json:"destroyed"`
	Resources  resource.Amounts    `json:"resources"`
	Crew       crew.Snapshot       `json:"crew"`
	Propulsion propulsion.Snapshot `json:"propulsion"`
	Combat     combat.Snapshot     `json:"combat"`
	Research   research.Snapshot   `json:"research"`
	Inventory  []item.ItemStack    `json:"inventory"`
}

func (s *Ship) snapshot(tick int64, simTime float64) ShipSnapshot {
	return ShipSnapshot{
		ID:         s.ID,
		Name:       s.Name,
		Tick:       tick,
		SimTime:    simTime,
		Destroyed:  s.combat.Destroyed(),
		Resources:  s.resources.Snapshot(),
		Crew:       s.crew.Snapshot(),
		Propulsion: s.drive.Snapshot(),
		Combat:     s.combat.Snapshot(),
		Research:   s.research.Snapshot(),
		Inventory:  s.cargo.Stacks(),
	}
}

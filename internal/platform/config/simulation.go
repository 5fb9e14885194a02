// Package config loads the immutable simulation record (YAML) and the
// server settings (environment, with .env support).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MRamiBalles/hullbreach/internal/domain/combat"
	"github.com/MRamiBalles/hullbreach/internal/domain/crew"
	"github.com/MRamiBalles/hullbreach/internal/domain/item"
	"github.com/MRamiBalles/hullbreach/internal/domain/propulsion"
	"github.com/MRamiBalles/hullbreach/internal/domain/research"
	"github.com/MRamiBalles/hullbreach/internal/domain/resource"
	"github.com/MRamiBalles/hullbreach/internal/domain/stats"
)

// Simulation is the complete tuning for one ship. It is built once at
// registration and never recomputed.
type Simulation struct {
	Resources  resource.Config       `yaml:"resources" json:"resources"`
	Crew       crew.Config           `yaml:"crew" json:"crew"`
	Propulsion propulsion.Config     `yaml:"propulsion" json:"propulsion"`
	Combat     combat.Config         `yaml:"combat" json:"combat"`
	Research   research.Config       `yaml:"research" json:"research"`
	Inventory  map[item.ItemType]int `yaml:"inventory" json:"inventory"`
}

// DefaultSimulation is the stock frigate preset.
func DefaultSimulation() Simulation {
	return Simulation{
		Resources: resource.Config{
			Initial:         resource.Amounts{Fuel: 1000, Food: 500, RawMaterial: 1000, Energy: 1000},
			FuelRate:        0.1,
			FoodPerCrew:     0.05,
			FoodSpoilage:    0.02,
			RawDecay:        0.1,
			FighterFuelRate: 0.3,
		},
		Crew: crew.Config{
			InitialCount:   20,
			InitialMorale:  100,
			MinMorale:      0,
			MaxMorale:      100,
			DecrementRate:  0.1,
			StrikeDuration: 10,
			StrikeAreas:    []crew.Area{crew.AreaEngineBay, crew.AreaWeaponsBay},
			EventImpacts: map[crew.MoraleEvent]float64{
				crew.EventCrewDeath:         -20,
				crew.EventFoodShortage:      -10,
				crew.EventEntertainment:     5,
				crew.EventSuccessfulMission: 15,
			},
		},
		Propulsion: propulsion.Config{
			MaxSpeed:       100,
			Acceleration:   5,
			Deceleration:   2,
			MaxWarpSpeed:   500,
			WarpChargeTime: 5,
			WarpFuelRate:   10,
		},
		Combat: combat.Config{
			MaxShield:          100,
			MaxHull:            100,
			InitialShield:      100,
			InitialHull:        100,
			ShieldRechargeRate: 5,
			MissileDamage:      50,
			LaserDamage:        25,
			LaserEnergyCost:    10,
			FighterDamage:      10,
			BomberDamage:       30,
			BoardingTime:       10,
			MaxFighters:        5,
			MaxBombers:         3,
			RepairCost:         2,
		},
		Research: research.Config{Nodes: []research.NodeConfig{
			{
				ID:           "advanced_engines",
				Name:         "Advanced Engines",
				Description:  "Improves engine efficiency and speed.",
				DataCost:     100,
				ResourceCost: 500,
				Duration:     120,
				Benefits: []stats.Modifier{
					{Stat: stats.StatMaxSpeed, Value: 20},
					{Stat: stats.StatMaxWarpSpeed, Value: 100},
				},
			},
			{
				ID:           "shield_upgrades",
				Name:         "Shield Upgrades",
				Description:  "Enhances shield strength and recharge rate.",
				DataCost:     50,
				ResourceCost: 300,
				Duration:     90,
				Benefits: []stats.Modifier{
					{Stat: stats.StatMaxShield, Value: 50},
					{Stat: stats.StatShieldRechargeRate, Value: 2},
				},
			},
			{
				ID:            "hardened_hull",
				Name:          "Hardened Hull",
				Description:   "Layered plating over the shield emitters.",
				DataCost:      80,
				ResourceCost:  400,
				Duration:      150,
				Prerequisites: []string{"shield_upgrades"},
				Benefits:      []stats.Modifier{{Stat: stats.StatMaxHull, Value: 50}},
			},
		}},
		Inventory: map[item.ItemType]int{
			item.ItemMissile:      10,
			item.ItemResearchData: 200,
		},
	}
}

// Validate checks every section and rejects unknown enum names.
func (s Simulation) Validate() error {
	if err := s.Resources.Validate(); err != nil {
		return err
	}
	if err := s.Crew.Validate(); err != nil {
		return err
	}
	if err := s.Propulsion.Validate(); err != nil {
		return err
	}
	if err := s.Combat.Validate(); err != nil {
		return err
	}
	if err := s.Research.Validate(); err != nil {
		return err
	}
	for t, n := range s.Inventory {
		if _, err := item.ParseItemType(string(t)); err != nil {
			return fmt.Errorf("inventory: %w", err)
		}
		if n < 0 {
			return fmt.Errorf("inventory: %s count must be non-negative", t)
		}
	}
	return nil
}

// ParseSimulation decodes YAML over the default preset and validates it.
// Sections the document omits keep their preset values.
func ParseSimulation(data []byte) (Simulation, error) {
	sim := DefaultSimulation()
	if err := yaml.Unmarshal(data, &sim); err != nil {
		return Simulation{}, fmt.Errorf("failed to parse simulation config: %w", err)
	}
	if err := sim.Validate(); err != nil {
		return Simulation{}, fmt.Errorf("invalid simulation config: %w", err)
	}
	return sim, nil
}

// LoadSimulation reads and validates a simulation file. An empty path
// yields the default preset.
func LoadSimulation(path string) (Simulation, error) {
	if path == "" {
		return DefaultSimulation(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Simulation{}, fmt.Errorf("failed to read simulation config: %w", err)
	}
	return ParseSimulation(data)
}

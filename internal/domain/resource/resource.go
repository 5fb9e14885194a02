// Package resource implements the ship's shared resource pool.
// This package is PURE and must NOT import any infrastructure packages.
//
// The pool is the single source of truth for fuel, food, raw material and
// energy. Every consumer calls Consume/Drain/Add instead of keeping a copy.
package resource

import (
	"fmt"

	"github.com/MRamiBalles/hullbreach/internal/domain/outcome"
	"github.com/MRamiBalles/hullbreach/internal/domain/rules"
)

// Kind is the closed set of pooled resources.
type Kind string

const (
	KindFuel        Kind = "fuel"
	KindFood        Kind = "food"
	KindRawMaterial Kind = "raw_material"
	KindEnergy      Kind = "energy"
)

// Kinds lists every resource in a stable order.
func Kinds() []Kind {
	return []Kind{KindFuel, KindFood, KindRawMaterial, KindEnergy}
}

// Valid reports whether k is a known resource.
func (k Kind) Valid() bool {
	switch k {
	case KindFuel, KindFood, KindRawMaterial, KindEnergy:
		return true
	}
	return false
}

// ParseKind validates a resource name coming from outside the core.
func ParseKind(name string) (Kind, error) {
	k := Kind(name)
	if !k.Valid() {
		return "", outcome.Errorf(outcome.ReasonUnknownKind, "unknown resource %q", name)
	}
	return k, nil
}

// Amounts is one value per resource.
type Amounts struct {
	Fuel        float64 `yaml:"fuel" json:"fuel"`
	Food        float64 `yaml:"food" json:"food"`
	RawMaterial float64 `yaml:"raw_material" json:"raw_material"`
	Energy      float64 `yaml:"energy" json:"energy"`
}

// Get returns the value for k.
func (a Amounts) Get(k Kind) float64 {
	switch k {
	case KindFuel:
		return a.Fuel
	case KindFood:
		return a.Food
	case KindRawMaterial:
		return a.RawMaterial
	case KindEnergy:
		return a.Energy
	}
	return 0
}

// Config holds the initial stock and the per-second decay rates.
type Config struct {
	Initial Amounts `yaml:"initial" json:"initial"`

	FuelRate        float64 `yaml:"fuel_rate" json:"fuel_rate"`                 // while the engine is active
	FoodPerCrew     float64 `yaml:"food_per_crew" json:"food_per_crew"`         // per crew member
	FoodSpoilage    float64 `yaml:"food_spoilage" json:"food_spoilage"`         // flat
	RawDecay        float64 `yaml:"raw_decay" json:"raw_decay"`                 // passive
	FighterFuelRate float64 `yaml:"fighter_fuel_rate" json:"fighter_fuel_rate"` // while fighters are out
}

// Validate rejects negative stock or rates.
func (c Config) Validate() error {
	for _, k := range Kinds() {
		if !rules.ValidAmount(c.Initial.Get(k)) {
			return fmt.Errorf("resources: initial %s must be non-negative", k)
		}
	}
	rates := map[string]float64{
		"fuel_rate":         c.FuelRate,
		"food_per_crew":     c.FoodPerCrew,
		"food_spoilage":     c.FoodSpoilage,
		"raw_decay":         c.RawDecay,
		"fighter_fuel_rate": c.FighterFuelRate,
	}
	for name, v := range rates {
		if !rules.ValidAmount(v) {
			return fmt.Errorf("resources: %s must be non-negative", name)
		}
	}
	return nil
}

// Pool holds the current quantity of each resource.
// Invariant: no quantity is ever negative after any operation.
type Pool struct {
	cfg     Config
	amounts map[Kind]float64
}

// NewPool creates a pool stocked with the configured initial amounts.
func NewPool(cfg Config) *Pool {
	p := &Pool{
		cfg:     cfg,
		amounts: make(map[Kind]float64, 4),
	}
	for _, k := range Kinds() {
		p.amounts[k] = rules.NonNegative(cfg.Initial.Get(k))
	}
	return p
}

// Amount returns the current quantity of k. Unknown kinds read as 0.
func (p *Pool) Amount(k Kind) float64 {
	return p.amounts[k]
}

// HasEnough reports whether at least amount of k is available.
func (p *Pool) HasEnough(k Kind, amount float64) bool {
	return k.Valid() && rules.ValidAmount(amount) && p.amounts[k]+rules.Epsilon >= amount
}

// Add increases k by amount.
func (p *Pool) Add(k Kind, amount float64) error {
	if !k.Valid() {
		return outcome.Errorf(outcome.ReasonUnknownKind, "unknown resource %q", k)
	}
	if !rules.ValidAmount(amount) {
		return outcome.Errorf(outcome.ReasonInvalidAmount, "cannot add %v %s", amount, k)
	}
	p.amounts[k] += amount
	return nil
}

// Consume removes amount of k only if it is fully available.
// On failure the pool is left untouched.
func (p *Pool) Consume(k Kind, amount float64) bool {
	if !p.HasEnough(k, amount) {
		return false
	}
	p.amounts[k] = rules.NonNegative(p.amounts[k] - amount)
	return true
}

// Drain removes up to amount of k and returns how much was actually removed.
func (p *Pool) Drain(k Kind, amount float64) float64 {
	if !k.Valid() || !rules.ValidAmount(amount) {
		return 0
	}
	drained := amount
	if drained > p.amounts[k] {
		drained = p.amounts[k]
	}
	p.amounts[k] -= drained
	if p.amounts[k] < rules.Epsilon {
		p.amounts[k] = 0
	}
	return drained
}

// ApplyDecay subtracts one tick of continuous consumption and then clamps
// every resource to zero, whichever term drove it negative.
func (p *Pool) ApplyDecay(dt float64, crewCount int, engineActive, fightersDeployed bool) {
	if dt <= 0 {
		return
	}
	if engineActive {
		p.amounts[KindFuel] -= p.cfg.FuelRate * dt
	}
	if fightersDeployed {
		p.amounts[KindFuel] -= p.cfg.FighterFuelRate * dt
	}
	if crewCount < 0 {
		crewCount = 0
	}
	p.amounts[KindFood] -= (p.cfg.FoodPerCrew*float64(crewCount) + p.cfg.FoodSpoilage) * dt
	p.amounts[KindRawMaterial] -= p.cfg.RawDecay * dt

	for _, k := range Kinds() {
		p.amounts[k] = rules.NonNegative(p.amounts[k])
	}
}

// Snapshot returns a read-only copy of the pool.
func (p *Pool) Snapshot() Amounts {
	return Amounts{
		Fuel:        p.amounts[KindFuel],
		Food:        p.amounts[KindFood],
		RawMaterial: p.amounts[KindRawMaterial],
		Energy:      p.amounts[KindEnergy],
	}
}

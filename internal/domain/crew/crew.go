// Package crew tracks crew headcount, morale and strikes.
// This package is PURE and must NOT import any infrastructure packages.
package crew

import (
	"fmt"
	"math"

	"github.com/zyedidia/generic/mapset"

	"github.com/MRamiBalles/hullbreach/internal/domain/outcome"
	"github.com/MRamiBalles/hullbreach/internal/domain/rules"
)

// Area is a named part of the ship a strike can shut down.
type Area string

const (
	AreaEngineBay   Area = "engine_bay"
	AreaWeaponsBay  Area = "weapons_bay"
	AreaHangarBay   Area = "hangar_bay"
	AreaResearchLab Area = "research_lab"
	AreaBridge      Area = "bridge"
)

// Valid reports whether a is a known ship area.
func (a Area) Valid() bool {
	switch a {
	case AreaEngineBay, AreaWeaponsBay, AreaHangarBay, AreaResearchLab, AreaBridge:
		return true
	}
	return false
}

// MoraleEvent is a discrete happening with a configured morale impact.
type MoraleEvent string

const (
	EventCrewDeath         MoraleEvent = "crew_death"
	EventFoodShortage      MoraleEvent = "food_shortage"
	EventEntertainment     MoraleEvent = "entertainment"
	EventSuccessfulMission MoraleEvent = "successful_mission"
)

// Valid reports whether e is a known morale event.
func (e MoraleEvent) Valid() bool {
	switch e {
	case EventCrewDeath, EventFoodShortage, EventEntertainment, EventSuccessfulMission:
		return true
	}
	return false
}

// Config is the immutable crew tuning.
type Config struct {
	InitialCount   int                     `yaml:"initial_count" json:"initial_count"`
	InitialMorale  float64                 `yaml:"initial_morale" json:"initial_morale"`
	MinMorale      float64                 `yaml:"min_morale" json:"min_morale"`
	MaxMorale      float64                 `yaml:"max_morale" json:"max_morale"`
	DecrementRate  float64                 `yaml:"decrement_rate" json:"decrement_rate"`
	StrikeDuration float64                 `yaml:"strike_duration" json:"strike_duration"`
	StrikeAreas    []Area                  `yaml:"strike_areas" json:"strike_areas"`
	EventImpacts   map[MoraleEvent]float64 `yaml:"event_impacts" json:"event_impacts"`
}

// Validate checks ranges and rejects unknown areas or events.
func (c Config) Validate() error {
	if c.InitialCount < 0 {
		return fmt.Errorf("crew: initial_count must be non-negative")
	}
	if c.MinMorale > c.MaxMorale {
		return fmt.Errorf("crew: min_morale %v exceeds max_morale %v", c.MinMorale, c.MaxMorale)
	}
	if c.InitialMorale < c.MinMorale || c.InitialMorale > c.MaxMorale {
		return fmt.Errorf("crew: initial_morale %v outside [%v, %v]", c.InitialMorale, c.MinMorale, c.MaxMorale)
	}
	if !rules.ValidAmount(c.DecrementRate) || !rules.ValidAmount(c.StrikeDuration) {
		return fmt.Errorf("crew: decrement_rate and strike_duration must be non-negative")
	}
	for _, a := range c.StrikeAreas {
		if !a.Valid() {
			return fmt.Errorf("crew: unknown strike area %q", a)
		}
	}
	for e := range c.EventImpacts {
		if !e.Valid() {
			return fmt.Errorf("crew: unknown morale event %q", e)
		}
	}
	return nil
}

// Transition reports strike changes produced by one Advance.
type Transition struct {
	StrikeStarted bool
	StrikeEnded   bool
}

// Crew owns headcount, morale and the strike timer.
//
// A strike starts the first time morale touches MinMorale and lasts exactly
// StrikeDuration of simulated time. It is latched: another strike can only
// start after morale has climbed back above the minimum.
type Crew struct {
	cfg Config

	count        int
	morale       float64
	onStrike     bool
	strikeTimer  float64
	strikeArmed  bool
	disabledArea mapset.Set[Area]
}

// New creates a crew at its configured initial state.
func New(cfg Config) *Crew {
	return &Crew{
		cfg:          cfg,
		count:        cfg.InitialCount,
		morale:       rules.Clamp(cfg.InitialMorale, cfg.MinMorale, cfg.MaxMorale),
		strikeArmed:  true,
		disabledArea: mapset.New[Area](),
	}
}

// Count returns the number of living crew.
func (c *Crew) Count() int { return c.count }

// Morale returns the current morale.
func (c *Crew) Morale() float64 { return c.morale }

// OnStrike reports whether a strike is in effect.
func (c *Crew) OnStrike() bool { return c.onStrike }

// StrikeRemaining returns the simulated seconds left on the strike, or 0.
func (c *Crew) StrikeRemaining() float64 {
	if !c.onStrike {
		return 0
	}
	return rules.NonNegative(c.cfg.StrikeDuration - c.strikeTimer)
}

// IsAreaDisabled is the read surface other subsystems gate on.
func (c *Crew) IsAreaDisabled(a Area) bool {
	return c.disabledArea.Has(a)
}

// DisabledAreas lists the areas currently shut down, in configured order.
func (c *Crew) DisabledAreas() []Area {
	out := make([]Area, 0, c.disabledArea.Size())
	for _, a := range c.cfg.StrikeAreas {
		if c.disabledArea.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

// ApplyMoraleEvent adds delta to morale, clamped into [MinMorale, MaxMorale].
func (c *Crew) ApplyMoraleEvent(delta float64) outcome.Result {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return outcome.Rejectf(outcome.ReasonInvalidAmount, "morale delta %v", delta)
	}
	raw := c.morale + delta
	c.morale = rules.Clamp(raw, c.cfg.MinMorale, c.cfg.MaxMorale)
	if c.morale > c.cfg.MinMorale+rules.Epsilon {
		c.strikeArmed = true
	}
	if raw != c.morale {
		return outcome.Clampf("morale clamped to %.2f", c.morale)
	}
	return outcome.Acceptf("morale %.2f", c.morale)
}

// ApplyEvent applies the configured impact of a named morale event.
func (c *Crew) ApplyEvent(e MoraleEvent) outcome.Result {
	if !e.Valid() {
		return outcome.Rejectf(outcome.ReasonUnknownKind, "unknown morale event %q", e)
	}
	return c.ApplyMoraleEvent(c.cfg.EventImpacts[e])
}

// LoseCrew removes up to n crew members and applies a CrewDeath impact for
// each one actually lost. It returns the number lost.
func (c *Crew) LoseCrew(n int) int {
	if n <= 0 {
		return 0
	}
	if n > c.count {
		n = c.count
	}
	c.count -= n
	for i := 0; i < n; i++ {
		c.ApplyEvent(EventCrewDeath)
	}
	return n
}

// Advance runs one tick: the strike timer, then morale decay, then the
// strike trigger.
func (c *Crew) Advance(dt float64) Transition {
	var tr Transition
	if dt < 0 {
		return tr
	}

	if c.onStrike {
		c.strikeTimer += dt
		if rules.Reached(c.strikeTimer, c.cfg.StrikeDuration) {
			c.endStrike()
			tr.StrikeEnded = true
		}
	}

	c.morale = rules.Clamp(c.morale-c.cfg.DecrementRate*dt, c.cfg.MinMorale, c.cfg.MaxMorale)

	atMinimum := c.morale <= c.cfg.MinMorale+rules.Epsilon
	if !atMinimum {
		c.strikeArmed = true
	}
	if atMinimum && !c.onStrike && c.strikeArmed {
		c.beginStrike()
		tr.StrikeStarted = true
	}
	return tr
}

func (c *Crew) beginStrike() {
	c.onStrike = true
	c.strikeTimer = 0
	c.strikeArmed = false
	for _, a := range c.cfg.StrikeAreas {
		c.disabledArea.Put(a)
	}
}

func (c *Crew) endStrike() {
	c.onStrike = false
	c.strikeTimer = 0
	c.disabledArea = mapset.New[Area]()
}

// Snapshot is the read-only view of the crew.
type Snapshot struct {
	Count           int     `json:"count"`
	Morale          float64 `json:"morale"`
	OnStrike        bool    `json:"on_strike"`
	StrikeRemaining float64 `json:"strike_remaining"`
	DisabledAreas   []Area  `json:"disabled_areas"`
}

// Snapshot returns a copy of the public crew state.
func (c *Crew) Snapshot() Snapshot {
	return Snapshot{
		Count:           c.count,
		Morale:          c.morale,
		OnStrike:        c.onStrike,
		StrikeRemaining: c.StrikeRemaining(),
		DisabledAreas:   c.DisabledAreas(),
	}
}

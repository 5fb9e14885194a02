// Package combat resolves damage, craft rosters and the timed combat actions
// (boarding and warp-away) of a single ship.
// This package is PURE and must NOT import any infrastructure packages.
package combat

import (
	"fmt"

	"github.com/MRamiBalles/hullbreach/internal/domain/item"
	"github.com/MRamiBalles/hullbreach/internal/domain/outcome"
	"github.com/MRamiBalles/hullbreach/internal/domain/resource"
	"github.com/MRamiBalles/hullbreach/internal/domain/rules"
	"github.com/MRamiBalles/hullbreach/internal/domain/stats"
)

// DamageKind is the source of a damage event. Resolution is identical for
// every kind; the kind is carried for reporting.
type DamageKind string

const (
	DamageMissile DamageKind = "missile"
	DamageLaser   DamageKind = "laser"
	DamageFighter DamageKind = "fighter"
	DamageBomber  DamageKind = "bomber"
	DamageKinetic DamageKind = "kinetic"
)

// Valid reports whether k is a known damage kind.
func (k DamageKind) Valid() bool {
	switch k {
	case DamageMissile, DamageLaser, DamageFighter, DamageBomber, DamageKinetic:
		return true
	}
	return false
}

// CraftKind distinguishes the two launchable rosters.
type CraftKind string

const (
	CraftFighter CraftKind = "fighter"
	CraftBomber  CraftKind = "bomber"
)

// Craft is one launched small craft.
type Craft struct {
	Serial int       `json:"serial"`
	Kind   CraftKind `json:"kind"`
}

// OrdnanceStore is the item capability used for missile fire.
type OrdnanceStore interface {
	TryConsume(t item.ItemType, n int) bool
}

// Supply is the resource capability used for laser energy and repairs.
type Supply interface {
	Consume(k resource.Kind, amount float64) bool
}

// Lookup resolves another ship's combat state by ID.
type Lookup func(id string) (*State, bool)

// Config is the immutable combat tuning.
type Config struct {
	MaxShield          float64 `yaml:"max_shield" json:"max_shield"`
	MaxHull            float64 `yaml:"max_hull" json:"max_hull"`
	InitialShield      float64 `yaml:"initial_shield" json:"initial_shield"`
	InitialHull        float64 `yaml:"initial_hull" json:"initial_hull"`
	ShieldRechargeRate float64 `yaml:"shield_recharge_rate" json:"shield_recharge_rate"`
	MissileDamage      float64 `yaml:"missile_damage" json:"missile_damage"`
	LaserDamage        float64 `yaml:"laser_damage" json:"laser_damage"`
	LaserEnergyCost    float64 `yaml:"laser_energy_cost" json:"laser_energy_cost"`
	FighterDamage      float64 `yaml:"fighter_damage" json:"fighter_damage"`
	BomberDamage       float64 `yaml:"bomber_damage" json:"bomber_damage"`
	BoardingTime       float64 `yaml:"boarding_time" json:"boarding_time"`
	MaxFighters        int     `yaml:"max_fighters" json:"max_fighters"`
	MaxBombers         int     `yaml:"max_bombers" json:"max_bombers"`
	RepairCost         float64 `yaml:"repair_cost" json:"repair_cost"` // raw material per hull point
}

// Validate checks ranges.
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"max_shield":           c.MaxShield,
		"max_hull":             c.MaxHull,
		"initial_shield":       c.InitialShield,
		"initial_hull":         c.InitialHull,
		"shield_recharge_rate": c.ShieldRechargeRate,
		"missile_damage":       c.MissileDamage,
		"laser_damage":         c.LaserDamage,
		"laser_energy_cost":    c.LaserEnergyCost,
		"fighter_damage":       c.FighterDamage,
		"bomber_damage":        c.BomberDamage,
		"boarding_time":        c.BoardingTime,
		"repair_cost":          c.RepairCost,
	} {
		if !rules.ValidAmount(v) {
			return fmt.Errorf("combat: %s must be non-negative", name)
		}
	}
	if c.MaxHull <= 0 {
		return fmt.Errorf("combat: max_hull must be positive")
	}
	if c.InitialShield > c.MaxShield || c.InitialHull > c.MaxHull {
		return fmt.Errorf("combat: initial values exceed maxima")
	}
	if c.InitialHull <= 0 {
		return fmt.Errorf("combat: initial_hull must be positive")
	}
	if c.MaxFighters < 0 || c.MaxBombers < 0 {
		return fmt.Errorf("combat: craft capacities must be non-negative")
	}
	return nil
}

// TaskKind names a timed combat action.
type TaskKind string

const (
	TaskBoarding TaskKind = "boarding"
	TaskWarpAway TaskKind = "warp_away"
)

// Task is a resumable timed action. Progress lives in Elapsed and is
// re-evaluated against Duration every tick.
type Task struct {
	Kind     TaskKind `json:"kind"`
	TargetID string   `json:"target_id,omitempty"`
	Elapsed  float64  `json:"elapsed"`
	Duration float64  `json:"duration"`
}

// Progress is the completed fraction in [0,1].
func (t Task) Progress() float64 {
	if t.Duration <= 0 {
		return 1
	}
	return rules.Clamp(t.Elapsed/t.Duration, 0, 1)
}

// DamageReport describes how one damage event was resolved.
type DamageReport struct {
	Kind      DamageKind `json:"kind"`
	Amount    float64    `json:"amount"`
	Absorbed  float64    `json:"absorbed"`
	HullLoss  float64    `json:"hull_loss"`
	Shield    float64    `json:"shield"`
	Hull      float64    `json:"hull"`
	Destroyed bool       `json:"destroyed"`
}

// EventKind labels what Advance produced.
type EventKind string

const (
	EventBoardingComplete  EventKind = "boarding_complete"
	EventBoardingCancelled EventKind = "boarding_cancelled"
	EventDisengaged        EventKind = "disengaged"
	EventWarpAwayCancelled EventKind = "warp_away_cancelled"
)

// Event is one task outcome from Advance.
type Event struct {
	Kind     EventKind
	TargetID string
}

// State is one ship's combat block.
// Invariant: shield in [0, MaxShield], hull in [0, MaxHull]; hull == 0 means
// destroyed, which is terminal.
type State struct {
	id  string
	cfg Config

	shield      float64
	hull        float64
	active      bool
	destroyed   bool
	captured    bool
	warpingAway bool

	boarding *Task
	warpAway *Task

	fighters []Craft
	bombers  []Craft
	serial   int
}

// New creates a combat block at its configured initial values.
func New(id string, cfg Config) *State {
	return &State{
		id:     id,
		cfg:    cfg,
		shield: rules.Clamp(cfg.InitialShield, 0, cfg.MaxShield),
		hull:   rules.Clamp(cfg.InitialHull, 0, cfg.MaxHull),
	}
}

// ID returns the owning ship's ID.
func (s *State) ID() string { return s.id }

// Shield returns the current shield.
func (s *State) Shield() float64 { return s.shield }

// Hull returns the current hull.
func (s *State) Hull() float64 { return s.hull }

// Active reports whether the ship is in active combat.
func (s *State) Active() bool { return s.active }

// Destroyed reports the terminal state.
func (s *State) Destroyed() bool { return s.destroyed }

// Captured reports whether the ship was taken by boarders.
func (s *State) Captured() bool { return s.captured }

// IsWarpingAway reports the warp-away flag, which sabotage can also raise.
func (s *State) IsWarpingAway() bool { return s.warpingAway }

// IsBoarding reports whether a boarding action is running.
func (s *State) IsBoarding() bool { return s.boarding != nil }

// FightersDeployed reports whether any fighter is out.
func (s *State) FightersDeployed() bool { return len(s.fighters) > 0 }

// Fighters returns a copy of the fighter roster.
func (s *State) Fighters() []Craft { return copyRoster(s.fighters) }

// Bombers returns a copy of the bomber roster.
func (s *State) Bombers() []Craft { return copyRoster(s.bombers) }

func copyRoster(r []Craft) []Craft {
	out := make([]Craft, len(r))
	copy(out, r)
	return out
}

func (s *State) unavailable() (outcome.Result, bool) {
	if s.destroyed {
		return outcome.Rejectf(outcome.ReasonDestroyed, "ship %s is destroyed", s.id), true
	}
	if s.captured {
		return outcome.Rejectf(outcome.ReasonCaptured, "ship %s was captured", s.id), true
	}
	return outcome.Result{}, false
}

// EnterCombat marks the ship as actively fighting. started is false when
// the ship was already in combat or cannot fight.
func (s *State) EnterCombat() (started bool, r outcome.Result) {
	if r, bad := s.unavailable(); bad {
		return false, r
	}
	if s.active {
		return false, outcome.Acceptf("already in combat")
	}
	s.active = true
	return true, outcome.Accept()
}

// ExitCombat ends combat and cancels every running task.
func (s *State) ExitCombat() outcome.Result {
	if !s.active {
		return outcome.Rejectf(outcome.ReasonNotInCombat, "ship %s is not in combat", s.id)
	}
	s.leaveCombat()
	return outcome.Accept()
}

func (s *State) leaveCombat() {
	s.active = false
	s.warpingAway = false
	s.boarding = nil
	s.warpAway = nil
}

// ReceiveDamage resolves one damage event atomically: the shield absorbs
// min(shield, amount) and the remainder comes off the hull. A destroyed ship
// is a fixed point and rejects further damage without change.
func (s *State) ReceiveDamage(amount float64, kind DamageKind) (DamageReport, outcome.Result) {
	report := DamageReport{Kind: kind, Amount: amount, Shield: s.shield, Hull: s.hull, Destroyed: s.destroyed}
	if s.destroyed {
		return report, outcome.Rejectf(outcome.ReasonDestroyed, "ship %s is destroyed", s.id)
	}
	if !kind.Valid() {
		return report, outcome.Rejectf(outcome.ReasonUnknownKind, "unknown damage kind %q", kind)
	}
	if !rules.ValidAmount(amount) {
		return report, outcome.Rejectf(outcome.ReasonInvalidAmount, "damage %v", amount)
	}

	absorbed, overflow := rules.Absorb(s.shield, amount)
	s.shield = rules.NonNegative(s.shield - absorbed)
	hullLoss := overflow
	if hullLoss > s.hull {
		hullLoss = s.hull
	}
	s.hull = rules.Clamp(s.hull-overflow, 0, s.cfg.MaxHull)

	report.Absorbed = absorbed
	report.HullLoss = hullLoss
	report.Shield = s.shield
	report.Hull = s.hull

	if s.hull <= 0 {
		s.destroy()
		report.Destroyed = true
		return report, outcome.Terminalf("ship %s destroyed", s.id)
	}
	return report, outcome.Acceptf("shield %.2f hull %.2f", s.shield, s.hull)
}

func (s *State) destroy() {
	s.hull = 0
	s.destroyed = true
	s.leaveCombat()
	s.fighters = nil
	s.bombers = nil
}

// Advance runs one tick of shield regeneration and timed tasks.
func (s *State) Advance(dt float64, lookup Lookup) []Event {
	if s.destroyed || dt < 0 {
		return nil
	}
	var out []Event

	if s.active {
		s.shield = rules.Clamp(s.shield+s.cfg.ShieldRechargeRate*dt, 0, s.cfg.MaxShield)
	}

	if s.boarding != nil {
		task := s.boarding
		target, ok := lookup(task.TargetID)
		if !s.active || !ok || !target.active || target.destroyed {
			s.boarding = nil
			out = append(out, Event{Kind: EventBoardingCancelled, TargetID: task.TargetID})
		} else {
			task.Elapsed += dt
			if rules.Reached(task.Elapsed, task.Duration) {
				s.boarding = nil
				target.captured = true
				target.leaveCombat()
				out = append(out, Event{Kind: EventBoardingComplete, TargetID: task.TargetID})
			}
		}
	}

	if s.warpAway != nil {
		if !s.active {
			s.warpAway = nil
			out = append(out, Event{Kind: EventWarpAwayCancelled})
		} else {
			s.warpAway.Elapsed += dt
			if rules.Reached(s.warpAway.Elapsed, s.warpAway.Duration) {
				s.leaveCombat()
				out = append(out, Event{Kind: EventDisengaged})
			}
		}
	}
	return out
}

func (s *State) checkAttack(target *State) (outcome.Result, bool) {
	if r, bad := s.unavailable(); bad {
		return r, true
	}
	if !s.active {
		return outcome.Rejectf(outcome.ReasonNotInCombat, "ship %s is not in combat", s.id), true
	}
	if target == nil || target == s {
		return outcome.Rejectf(outcome.ReasonInvalidTarget, "no valid target"), true
	}
	if target.destroyed {
		return outcome.Rejectf(outcome.ReasonInvalidTarget, "target %s is destroyed", target.id), true
	}
	return outcome.Result{}, false
}

// FireMissile spends one missile from store and hits target.
func (s *State) FireMissile(target *State, store OrdnanceStore) (DamageReport, outcome.Result) {
	if r, bad := s.checkAttack(target); bad {
		return DamageReport{}, r
	}
	if !store.TryConsume(item.ItemMissile, 1) {
		return DamageReport{}, outcome.Rejectf(outcome.ReasonInsufficientResources, "no missiles")
	}
	return target.ReceiveDamage(s.cfg.MissileDamage, DamageMissile)
}

// FireLaser spends the configured energy and hits target.
func (s *State) FireLaser(target *State, power Supply) (DamageReport, outcome.Result) {
	if r, bad := s.checkAttack(target); bad {
		return DamageReport{}, r
	}
	if s.cfg.LaserEnergyCost > 0 && !power.Consume(resource.KindEnergy, s.cfg.LaserEnergyCost) {
		return DamageReport{}, outcome.Rejectf(outcome.ReasonInsufficientResources, "not enough energy")
	}
	return target.ReceiveDamage(s.cfg.LaserDamage, DamageLaser)
}

// CraftStrike sends every launched craft at target as one damage event.
func (s *State) CraftStrike(target *State) (DamageReport, outcome.Result) {
	if r, bad := s.checkAttack(target); bad {
		return DamageReport{}, r
	}
	if len(s.fighters) == 0 && len(s.bombers) == 0 {
		return DamageReport{}, outcome.Rejectf(outcome.ReasonNoCraft, "no craft launched")
	}
	dmg := float64(len(s.fighters))*s.cfg.FighterDamage + float64(len(s.bombers))*s.cfg.BomberDamage
	kind := DamageFighter
	if len(s.bombers) > 0 {
		kind = DamageBomber
	}
	return target.ReceiveDamage(dmg, kind)
}

func (s *State) launch(kind CraftKind) outcome.Result {
	if r, bad := s.unavailable(); bad {
		return r
	}
	roster, capacity := &s.fighters, s.cfg.MaxFighters
	if kind == CraftBomber {
		roster, capacity = &s.bombers, s.cfg.MaxBombers
	}
	if len(*roster) >= capacity {
		return outcome.Rejectf(outcome.ReasonCapacityFull, "%s capacity %d reached", kind, capacity)
	}
	s.serial++
	*roster = append(*roster, Craft{Serial: s.serial, Kind: kind})
	return outcome.Acceptf("%s %d launched", kind, s.serial)
}

// LaunchFighter adds a fighter if the roster is under capacity.
func (s *State) LaunchFighter() outcome.Result { return s.launch(CraftFighter) }

// LaunchBomber adds a bomber if the roster is under capacity.
func (s *State) LaunchBomber() outcome.Result { return s.launch(CraftBomber) }

// RecallCraft empties both rosters and returns how many craft came home.
func (s *State) RecallCraft() int {
	n := len(s.fighters) + len(s.bombers)
	s.fighters = nil
	s.bombers = nil
	return n
}

// AttemptBoard starts a boarding action against target. Both ships must be
// in active combat.
func (s *State) AttemptBoard(target *State) outcome.Result {
	if r, bad := s.checkAttack(target); bad {
		return r
	}
	if !target.active {
		return outcome.Rejectf(outcome.ReasonInvalidTarget, "target %s is not in combat", target.id)
	}
	if s.boarding != nil {
		return outcome.Rejectf(outcome.ReasonAlreadyInProgress, "already boarding %s", s.boarding.TargetID)
	}
	s.boarding = &Task{Kind: TaskBoarding, TargetID: target.id, Duration: s.cfg.BoardingTime}
	return outcome.Acceptf("boarding %s for %.2fs", target.id, s.cfg.BoardingTime)
}

// AttemptWarpAway starts disengaging. duration comes from the ship's own
// drive. A raised warp-away flag, real or sabotaged, blocks a new attempt.
func (s *State) AttemptWarpAway(duration float64) outcome.Result {
	if r, bad := s.unavailable(); bad {
		return r
	}
	if !s.active {
		return outcome.Rejectf(outcome.ReasonNotInCombat, "ship %s is not in combat", s.id)
	}
	if s.warpAway != nil {
		return outcome.Rejectf(outcome.ReasonAlreadyInProgress, "warp-away already running")
	}
	if s.warpingAway {
		return outcome.Rejectf(outcome.ReasonWarpJammed, "warp-away flag already raised")
	}
	if !rules.ValidAmount(duration) {
		return outcome.Rejectf(outcome.ReasonInvalidAmount, "warp time %v", duration)
	}
	s.warpingAway = true
	s.warpAway = &Task{Kind: TaskWarpAway, Duration: duration}
	return outcome.Acceptf("disengaging in %.2fs", duration)
}

// SabotageWarp raises target's warp-away flag. It grants the target no
// disengage progress and leaves any running timer untouched.
func (s *State) SabotageWarp(target *State) outcome.Result {
	if r, bad := s.checkAttack(target); bad {
		return r
	}
	if !target.active {
		return outcome.Rejectf(outcome.ReasonInvalidTarget, "target %s is not in combat", target.id)
	}
	target.warpingAway = true
	return outcome.Acceptf("warp of %s jammed", target.id)
}

// Repair restores hull, paying RepairCost raw material per point.
// It is refused in combat and clamped at MaxHull.
func (s *State) Repair(amount float64, materials Supply) outcome.Result {
	if r, bad := s.unavailable(); bad {
		return r
	}
	if s.active {
		return outcome.Rejectf(outcome.ReasonInCombat, "cannot repair in combat")
	}
	if !rules.ValidAmount(amount) || amount == 0 {
		return outcome.Rejectf(outcome.ReasonInvalidAmount, "repair %v", amount)
	}
	needed := amount
	if room := s.cfg.MaxHull - s.hull; needed > room {
		needed = room
	}
	if needed > 0 && !materials.Consume(resource.KindRawMaterial, needed*s.cfg.RepairCost) {
		return outcome.Rejectf(outcome.ReasonInsufficientResources, "repair needs %.2f raw material", needed*s.cfg.RepairCost)
	}
	s.hull += needed
	if needed < amount {
		return outcome.Clampf("hull clamped to %.2f", s.hull)
	}
	return outcome.Acceptf("hull %.2f", s.hull)
}

// ApplyModifier adds a research benefit to a combat stat. A MaxHull
// modifier that leaves no hull destroys the ship.
func (s *State) ApplyModifier(m stats.Modifier) bool {
	switch m.Stat {
	case stats.StatMaxShield:
		s.cfg.MaxShield = rules.NonNegative(s.cfg.MaxShield + m.Value)
		s.shield = rules.Clamp(s.shield, 0, s.cfg.MaxShield)
	case stats.StatShieldRechargeRate:
		s.cfg.ShieldRechargeRate = rules.NonNegative(s.cfg.ShieldRechargeRate + m.Value)
	case stats.StatMaxHull:
		s.cfg.MaxHull = rules.NonNegative(s.cfg.MaxHull + m.Value)
		s.hull = rules.Clamp(s.hull, 0, s.cfg.MaxHull)
		if s.hull <= 0 && !s.destroyed {
			s.destroy()
		}
	case stats.StatMissileDamage:
		s.cfg.MissileDamage = rules.NonNegative(s.cfg.MissileDamage + m.Value)
	case stats.StatLaserDamage:
		s.cfg.LaserDamage = rules.NonNegative(s.cfg.LaserDamage + m.Value)
	default:
		return false
	}
	return true
}

// Snapshot is the read-only view of the combat block.
type Snapshot struct {
	Shield        float64 `json:"shield"`
	MaxShield     float64 `json:"max_shield"`
	Hull          float64 `json:"hull"`
	MaxHull       float64 `json:"max_hull"`
	Active        bool    `json:"is_combat_active"`
	Destroyed     bool    `json:"destroyed"`
	Captured      bool    `json:"captured"`
	IsBoarding    bool    `json:"is_boarding"`
	IsWarpingAway bool    `json:"is_warping_away"`
	Boarding      *Task   `json:"boarding,omitempty"`
	WarpAway      *Task   `json:"warp_away,omitempty"`
	Fighters      []Craft `json:"fighters"`
	Bombers       []Craft `json:"bombers"`
}

// Snapshot returns a copy of the public combat state.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Shield:        s.shield,
		MaxShield:     s.cfg.MaxShield,
		Hull:          s.hull,
		MaxHull:       s.cfg.MaxHull,
		Active:        s.active,
		Destroyed:     s.destroyed,
		Captured:      s.captured,
		IsBoarding:    s.boarding != nil,
		IsWarpingAway: s.warpingAway,
		Fighters:      s.Fighters(),
		Bombers:       s.Bombers(),
	}
	if s.boarding != nil {
		b := *s.boarding
		snap.Boarding = &b
	}
	if s.warpAway != nil {
		w := *s.warpAway
		snap.WarpAway = &w
	}
	return snap
}

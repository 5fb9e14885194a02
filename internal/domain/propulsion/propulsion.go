// Package propulsion models normal flight and the three-phase warp maneuver.
// This package is PURE and must NOT import any infrastructure packages.
//
// Warp runs Idle -> Charging -> Cruising -> Idle. Charge progress is
// accumulated simulated time, so it always needs the full configured
// duration no matter how the ticks are sliced.
package propulsion

import (
	"fmt"

	"github.com/MRamiBalles/hullbreach/internal/domain/outcome"
	"github.com/MRamiBalles/hullbreach/internal/domain/resource"
	"github.com/MRamiBalles/hullbreach/internal/domain/rules"
	"github.com/MRamiBalles/hullbreach/internal/domain/stats"
)

// Phase is the warp state.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseCharging Phase = "charging"
	PhaseCruising Phase = "cruising"
)

// Transition is a propulsion change worth surfacing to collaborators.
type Transition string

const (
	TransitionNone          Transition = ""
	TransitionWarpCruising  Transition = "warp_cruising"
	TransitionWarpExhausted Transition = "warp_exhausted"
	TransitionStalled       Transition = "stalled"
)

// FuelTank is the slice of the resource pool propulsion needs.
type FuelTank interface {
	Amount(k resource.Kind) float64
	Drain(k resource.Kind, amount float64) float64
}

// Config is the immutable drive tuning.
type Config struct {
	MaxSpeed       float64 `yaml:"max_speed" json:"max_speed"`
	Acceleration   float64 `yaml:"acceleration" json:"acceleration"`
	Deceleration   float64 `yaml:"deceleration" json:"deceleration"`
	MaxWarpSpeed   float64 `yaml:"max_warp_speed" json:"max_warp_speed"`
	WarpChargeTime float64 `yaml:"warp_charge_time" json:"warp_charge_time"`
	WarpFuelRate   float64 `yaml:"warp_fuel_rate" json:"warp_fuel_rate"`
}

// Validate rejects negative tuning values.
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"max_speed":        c.MaxSpeed,
		"acceleration":     c.Acceleration,
		"deceleration":     c.Deceleration,
		"max_warp_speed":   c.MaxWarpSpeed,
		"warp_charge_time": c.WarpChargeTime,
		"warp_fuel_rate":   c.WarpFuelRate,
	} {
		if !rules.ValidAmount(v) {
			return fmt.Errorf("propulsion: %s must be non-negative", name)
		}
	}
	return nil
}

// Drive is the ship's propulsion state.
type Drive struct {
	cfg  Config
	fuel FuelTank

	speed        float64
	phase        Phase
	charge       float64
	accelerating bool
	decelerating bool
	inCombat     bool
}

// NewDrive creates an idle drive drawing from fuel.
func NewDrive(cfg Config, fuel FuelTank) *Drive {
	return &Drive{
		cfg:   cfg,
		fuel:  fuel,
		phase: PhaseIdle,
	}
}

// Speed returns the current speed.
func (d *Drive) Speed() float64 { return d.speed }

// Phase returns the warp phase.
func (d *Drive) Phase() Phase { return d.phase }

// IsWarping is true while charging or cruising.
func (d *Drive) IsWarping() bool { return d.phase != PhaseIdle }

// InCombat reports whether movement is suspended for combat.
func (d *Drive) InCombat() bool { return d.inCombat }

// WarpTime is the time a warp jump needs before it takes effect.
// Combat uses it as the disengage duration.
func (d *Drive) WarpTime() float64 { return d.cfg.WarpChargeTime }

// EngineActive reports whether normal flight is burning fuel this tick.
// Warp fuel is drained by the drive itself.
func (d *Drive) EngineActive() bool {
	if d.IsWarping() || d.inCombat {
		return false
	}
	return d.accelerating || d.speed > 0
}

func (d *Drive) hasFuel() bool {
	return d.fuel.Amount(resource.KindFuel) > 0
}

// StartWarp begins charging. It is rejected, with no state change, while
// already warping, while in combat, or with an empty tank.
func (d *Drive) StartWarp() outcome.Result {
	switch {
	case d.IsWarping():
		return outcome.Rejectf(outcome.ReasonAlreadyInProgress, "warp already %s", d.phase)
	case d.inCombat:
		return outcome.Rejectf(outcome.ReasonInCombat, "cannot warp in combat")
	case !d.hasFuel():
		return outcome.Rejectf(outcome.ReasonInsufficientResources, "no fuel")
	}
	d.phase = PhaseCharging
	d.charge = 0
	d.accelerating = false
	d.decelerating = false
	return outcome.Acceptf("charging for %.2fs", d.cfg.WarpChargeTime)
}

// StopWarp aborts or ends a warp and returns the drive to a standstill.
func (d *Drive) StopWarp() outcome.Result {
	if !d.IsWarping() {
		return outcome.Rejectf(outcome.ReasonNotWarping, "drive is idle")
	}
	d.stopWarp()
	return outcome.Accept()
}

func (d *Drive) stopWarp() {
	d.phase = PhaseIdle
	d.charge = 0
	d.speed = 0
}

// EnterCombat suspends movement and cancels any warp in progress.
// It reports whether a warp was cancelled.
func (d *Drive) EnterCombat() bool {
	d.inCombat = true
	d.accelerating = false
	d.decelerating = false
	if d.IsWarping() {
		d.stopWarp()
		return true
	}
	return false
}

// ExitCombat restores normal flight eligibility.
func (d *Drive) ExitCombat() {
	d.inCombat = false
}

func (d *Drive) checkFlight() outcome.Result {
	if d.IsWarping() {
		return outcome.Rejectf(outcome.ReasonWarpActive, "drive is %s", d.phase)
	}
	if d.inCombat {
		return outcome.Rejectf(outcome.ReasonInCombat, "movement suspended in combat")
	}
	return outcome.Accept()
}

// Accelerate starts building speed under normal flight.
func (d *Drive) Accelerate() outcome.Result {
	if r := d.checkFlight(); !r.OK() {
		return r
	}
	if !d.hasFuel() {
		return outcome.Rejectf(outcome.ReasonInsufficientResources, "no fuel")
	}
	d.accelerating = true
	d.decelerating = false
	return outcome.Accept()
}

// Decelerate starts shedding speed under normal flight.
func (d *Drive) Decelerate() outcome.Result {
	if r := d.checkFlight(); !r.OK() {
		return r
	}
	d.decelerating = true
	d.accelerating = false
	return outcome.Accept()
}

// HoldThrust stops accelerating or decelerating and keeps the current speed.
func (d *Drive) HoldThrust() outcome.Result {
	d.accelerating = false
	d.decelerating = false
	return outcome.Accept()
}

// Advance integrates one tick.
func (d *Drive) Advance(dt float64) Transition {
	if dt < 0 {
		return TransitionNone
	}
	switch d.phase {
	case PhaseCharging:
		d.charge += dt
		if rules.Reached(d.charge, d.cfg.WarpChargeTime) {
			// Time past the charge point is not carried into cruise: cruise
			// fuel starts draining on the next tick, whatever dt was.
			d.phase = PhaseCruising
			d.speed = d.cfg.MaxWarpSpeed
			return TransitionWarpCruising
		}
		return TransitionNone

	case PhaseCruising:
		if d.hasFuel() {
			d.fuel.Drain(resource.KindFuel, d.cfg.WarpFuelRate*dt)
		}
		if !d.hasFuel() {
			d.stopWarp()
			return TransitionWarpExhausted
		}
		return TransitionNone
	}

	if d.inCombat {
		return TransitionNone
	}
	if (d.accelerating || d.speed > 0) && !d.hasFuel() {
		d.speed = 0
		d.accelerating = false
		d.decelerating = false
		return TransitionStalled
	}
	switch {
	case d.accelerating:
		d.speed = rules.Clamp(d.speed+d.cfg.Acceleration*dt, 0, d.cfg.MaxSpeed)
	case d.decelerating:
		d.speed = rules.Clamp(d.speed-d.cfg.Deceleration*dt, 0, d.cfg.MaxSpeed)
		if d.speed == 0 {
			d.decelerating = false
		}
	}
	return TransitionNone
}

// ChargeProgress is the charge fraction in [0,1] while charging.
func (d *Drive) ChargeProgress() float64 {
	if d.phase != PhaseCharging {
		if d.phase == PhaseCruising {
			return 1
		}
		return 0
	}
	if d.cfg.WarpChargeTime <= 0 {
		return 1
	}
	return rules.Clamp(d.charge/d.cfg.WarpChargeTime, 0, 1)
}

// ApplyModifier adds a research benefit to a drive stat.
func (d *Drive) ApplyModifier(m stats.Modifier) bool {
	switch m.Stat {
	case stats.StatMaxSpeed:
		d.cfg.MaxSpeed = rules.NonNegative(d.cfg.MaxSpeed + m.Value)
	case stats.StatAcceleration:
		d.cfg.Acceleration = rules.NonNegative(d.cfg.Acceleration + m.Value)
	case stats.StatMaxWarpSpeed:
		d.cfg.MaxWarpSpeed = rules.NonNegative(d.cfg.MaxWarpSpeed + m.Value)
		if d.phase == PhaseCruising {
			d.speed = d.cfg.MaxWarpSpeed
		}
	case stats.StatWarpFuelRate:
		d.cfg.WarpFuelRate = rules.NonNegative(d.cfg.WarpFuelRate + m.Value)
	default:
		return false
	}
	return true
}

// Snapshot is the read-only view of the drive.
type Snapshot struct {
	Speed          float64 `json:"speed"`
	MaxSpeed       float64 `json:"max_speed"`
	Phase          Phase   `json:"warp_phase"`
	IsWarping      bool    `json:"is_warping"`
	ChargeProgress float64 `json:"charge_progress"`
	Accelerating   bool    `json:"is_accelerating"`
	Decelerating   bool    `json:"is_decelerating"`
	InCombat       bool    `json:"is_in_combat"`
	Fuel           float64 `json:"fuel"`
}

// Snapshot returns a copy of the public drive state.
func (d *Drive) Snapshot() Snapshot {
	return Snapshot{
		Speed:          d.speed,
		MaxSpeed:       d.cfg.MaxSpeed,
		Phase:          d.phase,
		IsWarping:      d.IsWarping(),
		ChargeProgress: d.ChargeProgress(),
		Accelerating:   d.accelerating,
		Decelerating:   d.decelerating,
		InCombat:       d.inCombat,
		Fuel:           d.fuel.Amount(resource.KindFuel),
	}
}

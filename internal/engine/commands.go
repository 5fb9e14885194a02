package engine

import (
	"github.com/MRamiBalles/hullbreach/internal/domain/combat"
	"github.com/MRamiBalles/hullbreach/internal/domain/crew"
	"github.com/MRamiBalles/hullbreach/internal/domain/item"
	"github.com/MRamiBalles/hullbreach/internal/domain/outcome"
	"github.com/MRamiBalles/hullbreach/internal/domain/resource"
	"github.com/MRamiBalles/hullbreach/internal/events"
	"github.com/MRamiBalles/hullbreach/internal/platform/metrics"
)

// withShip runs fn against a live ship under the engine lock and records
// the outcome.
func (e *Engine) withShip(id string, fn func(s *Ship) outcome.Result) outcome.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	var r outcome.Result
	s, ok := e.ships[id]
	switch {
	case !ok:
		r = outcome.Rejectf(outcome.ReasonUnknownShip, "no ship %q", id)
	case s.combat.Destroyed():
		r = outcome.Rejectf(outcome.ReasonDestroyed, "ship %s is destroyed", id)
	default:
		r = fn(s)
	}
	metrics.Get().RecordCommand(r.OK())
	if !r.OK() {
		e.logger.Debug("command rejected", "ship", id, "reason", r.Reason, "detail", r.Detail)
	}
	return r
}

// withPair resolves an attacker and a target ship.
func (e *Engine) withPair(id, targetID string, fn func(s, t *Ship) outcome.Result) outcome.Result {
	return e.withShip(id, func(s *Ship) outcome.Result {
		t, ok := e.ships[targetID]
		if !ok {
			return outcome.Rejectf(outcome.ReasonInvalidTarget, "no ship %q", targetID)
		}
		return fn(s, t)
	})
}

func gate(s *Ship, area crew.Area) (outcome.Result, bool) {
	if s.crew.IsAreaDisabled(area) {
		return outcome.Rejectf(outcome.ReasonAreaDisabled, "%s is on strike", area), true
	}
	return outcome.Result{}, false
}

// StartWarp begins the warp charge.
func (e *Engine) StartWarp(id string) outcome.Result {
	return e.withShip(id, func(s *Ship) outcome.Result {
		if r, blocked := gate(s, crew.AreaEngineBay); blocked {
			return r
		}
		r := s.drive.StartWarp()
		if r.OK() {
			e.emit(events.EventTypeWarpCharging, s.ID, "", e.warpPayload(s, ""), false)
		}
		return r
	})
}

// StopWarp ends a warp at once.
func (e *Engine) StopWarp(id string) outcome.Result {
	return e.withShip(id, func(s *Ship) outcome.Result {
		r := s.drive.StopWarp()
		if r.OK() {
			e.emit(events.EventTypeWarpStopped, s.ID, "", e.warpPayload(s, "manual"), false)
		}
		return r
	})
}

// Accelerate starts normal-flight thrust.
func (e *Engine) Accelerate(id string) outcome.Result {
	return e.withShip(id, func(s *Ship) outcome.Result {
		if r, blocked := gate(s, crew.AreaEngineBay); blocked {
			return r
		}
		return s.drive.Accelerate()
	})
}

// Decelerate starts normal-flight braking.
func (e *Engine) Decelerate(id string) outcome.Result {
	return e.withShip(id, func(s *Ship) outcome.Result {
		if r, blocked := gate(s, crew.AreaEngineBay); blocked {
			return r
		}
		return s.drive.Decelerate()
	})
}

// HoldThrust keeps the current speed.
func (e *Engine) HoldThrust(id string) outcome.Result {
	return e.withShip(id, func(s *Ship) outcome.Result {
		return s.drive.HoldThrust()
	})
}

func (e *Engine) enterCombat(s *Ship, reason string) outcome.Result {
	started, r := s.combat.EnterCombat()
	if !r.OK() {
		return r
	}
	if s.drive.EnterCombat() {
		e.emit(events.EventTypeWarpStopped, s.ID, "", e.warpPayload(s, "combat"), false)
	}
	if started {
		e.emit(events.EventTypeCombatStarted, s.ID, "", CombatPayload{Reason: reason}, false)
	}
	return r
}

// EnterCombat puts a ship into active combat, cancelling any warp.
func (e *Engine) EnterCombat(id string) outcome.Result {
	return e.withShip(id, func(s *Ship) outcome.Result {
		return e.enterCombat(s, "manual")
	})
}

// Engage puts two ships into combat with each other.
func (e *Engine) Engage(id, targetID string) outcome.Result {
	return e.withPair(id, targetID, func(s, t *Ship) outcome.Result {
		if s == t {
			return outcome.Rejectf(outcome.ReasonInvalidTarget, "a ship cannot engage itself")
		}
		if t.combat.Destroyed() {
			return outcome.Rejectf(outcome.ReasonInvalidTarget, "target %s is destroyed", t.ID)
		}
		if t.combat.Captured() {
			return outcome.Rejectf(outcome.ReasonInvalidTarget, "target %s was captured", t.ID)
		}
		if r := e.enterCombat(s, "engaged "+t.ID); !r.OK() {
			return r
		}
		e.enterCombat(t, "engaged by "+s.ID)
		return outcome.Acceptf("%s engaged %s", s.ID, t.ID)
	})
}

// ExitCombat ends combat and cancels boarding and warp-away.
func (e *Engine) ExitCombat(id string) outcome.Result {
	return e.withShip(id, func(s *Ship) outcome.Result {
		r := s.combat.ExitCombat()
		if r.OK() {
			s.drive.ExitCombat()
			e.emit(events.EventTypeCombatEnded, s.ID, "", CombatPayload{Reason: "manual"}, false)
		}
		return r
	})
}

func (e *Engine) reportDamage(target *Ship, attacker string, report combat.DamageReport, r outcome.Result) {
	if !r.OK() {
		return
	}
	e.emit(events.EventTypeDamageReceived, target.ID, attacker, report, false)
	if r.Terminal() {
		e.emit(events.EventTypeShipDestroyed, target.ID, attacker, report, true)
	}
}

// ReceiveDamage applies external damage to a ship.
func (e *Engine) ReceiveDamage(id string, amount float64, kind combat.DamageKind) outcome.Result {
	return e.withShip(id, func(s *Ship) outcome.Result {
		report, r := s.combat.ReceiveDamage(amount, kind)
		e.reportDamage(s, "", report, r)
		return r
	})
}

// FireMissile spends one missile against the target.
func (e *Engine) FireMissile(id, targetID string) outcome.Result {
	return e.withPair(id, targetID, func(s, t *Ship) outcome.Result {
		if r, blocked := gate(s, crew.AreaWeaponsBay); blocked {
			return r
		}
		report, r := s.combat.FireMissile(t.combat, s.cargo)
		e.reportDamage(t, s.ID, report, r)
		return r
	})
}

// FireLaser spends energy against the target.
func (e *Engine) FireLaser(id, targetID string) outcome.Result {
	return e.withPair(id, targetID, func(s, t *Ship) outcome.Result {
		if r, blocked := gate(s, crew.AreaWeaponsBay); blocked {
			return r
		}
		report, r := s.combat.FireLaser(t.combat, s.resources)
		e.reportDamage(t, s.ID, report, r)
		return r
	})
}

// CraftStrike sends every launched craft at the target.
func (e *Engine) CraftStrike(id, targetID string) outcome.Result {
	return e.withPair(id, targetID, func(s, t *Ship) outcome.Result {
		if r, blocked := gate(s, crew.AreaHangarBay); blocked {
			return r
		}
		report, r := s.combat.CraftStrike(t.combat)
		e.reportDamage(t, s.ID, report, r)
		return r
	})
}

func (e *Engine) launch(id string, kind combat.CraftKind) outcome.Result {
	return e.withShip(id, func(s *Ship) outcome.Result {
		if r, blocked := gate(s, crew.AreaHangarBay); blocked {
			return r
		}
		var r outcome.Result
		if kind == combat.CraftBomber {
			r = s.combat.LaunchBomber()
		} else {
			r = s.combat.LaunchFighter()
		}
		if r.OK() {
			e.emit(events.EventTypeCraftLaunched, s.ID, "", CraftPayload{Kind: string(kind), Count: 1}, false)
		}
		return r
	})
}

// LaunchFighter adds a fighter to the roster.
func (e *Engine) LaunchFighter(id string) outcome.Result { return e.launch(id, combat.CraftFighter) }

// LaunchBomber adds a bomber to the roster.
func (e *Engine) LaunchBomber(id string) outcome.Result { return e.launch(id, combat.CraftBomber) }

// RecallCraft brings every craft home.
func (e *Engine) RecallCraft(id string) outcome.Result {
	return e.withShip(id, func(s *Ship) outcome.Result {
		n := s.combat.RecallCraft()
		if n > 0 {
			e.emit(events.EventTypeCraftRecalled, s.ID, "", CraftPayload{Count: n}, false)
		}
		return outcome.Acceptf("%d craft recalled", n)
	})
}

// AttemptBoard starts boarding the target.
func (e *Engine) AttemptBoard(id, targetID string) outcome.Result {
	return e.withPair(id, targetID, func(s, t *Ship) outcome.Result {
		r := s.combat.AttemptBoard(t.combat)
		if r.OK() {
			e.emit(events.EventTypeBoardingStarted, s.ID, t.ID, CombatPayload{Duration: s.combat.Snapshot().Boarding.Duration}, false)
		}
		return r
	})
}

// AttemptWarpAway starts disengaging; the duration is the ship's own warp time.
func (e *Engine) AttemptWarpAway(id string) outcome.Result {
	return e.withShip(id, func(s *Ship) outcome.Result {
		if r, blocked := gate(s, crew.AreaEngineBay); blocked {
			return r
		}
		duration := s.drive.WarpTime()
		r := s.combat.AttemptWarpAway(duration)
		if r.OK() {
			e.emit(events.EventTypeWarpAwayStarted, s.ID, "", CombatPayload{Duration: duration}, false)
		}
		return r
	})
}

// SabotageWarp raises the target's warp-away flag.
func (e *Engine) SabotageWarp(id, targetID string) outcome.Result {
	return e.withPair(id, targetID, func(s, t *Ship) outcome.Result {
		r := s.combat.SabotageWarp(t.combat)
		if r.OK() {
			e.emit(events.EventTypeWarpSabotaged, t.ID, s.ID, CombatPayload{}, false)
		}
		return r
	})
}

// ApplyMoraleEvent adds a raw delta to crew morale.
func (e *Engine) ApplyMoraleEvent(id string, delta float64) outcome.Result {
	return e.withShip(id, func(s *Ship) outcome.Result {
		r := s.crew.ApplyMoraleEvent(delta)
		if r.OK() {
			e.emit(events.EventTypeMoraleChanged, s.ID, "", MoralePayload{Delta: delta, Morale: s.crew.Morale()}, false)
		}
		return r
	})
}

// RaiseMoraleEvent applies a named morale event.
func (e *Engine) RaiseMoraleEvent(id string, ev crew.MoraleEvent) outcome.Result {
	return e.withShip(id, func(s *Ship) outcome.Result {
		before := s.crew.Morale()
		r := s.crew.ApplyEvent(ev)
		if r.OK() {
			e.emit(events.EventTypeMoraleChanged, s.ID, "", MoralePayload{
				Event:  ev,
				Delta:  s.crew.Morale() - before,
				Morale: s.crew.Morale(),
			}, false)
		}
		return r
	})
}

// LoseCrew removes crew members.
func (e *Engine) LoseCrew(id string, n int) outcome.Result {
	return e.withShip(id, func(s *Ship) outcome.Result {
		if n <= 0 {
			return outcome.Rejectf(outcome.ReasonInvalidAmount, "cannot lose %d crew", n)
		}
		lost := s.crew.LoseCrew(n)
		e.emit(events.EventTypeCrewLost, s.ID, "", map[string]interface{}{"lost": lost, "remaining": s.crew.Count()}, false)
		if lost < n {
			return outcome.Clampf("only %d crew were aboard", lost)
		}
		return outcome.Acceptf("%d crew lost", lost)
	})
}

// StartResearch pays for and starts a research node.
func (e *Engine) StartResearch(id, nodeID string) outcome.Result {
	return e.withShip(id, func(s *Ship) outcome.Result {
		if r, blocked := gate(s, crew.AreaResearchLab); blocked {
			return r
		}
		r := s.research.StartResearch(nodeID, s.cargo, s.resources)
		if r.OK() {
			node, _ := s.research.Node(nodeID)
			e.emit(events.EventTypeResearchStarted, s.ID, "", ResearchPayload{NodeID: node.ID, Name: node.Name}, false)
		}
		return r
	})
}

// Repair restores hull out of combat.
func (e *Engine) Repair(id string, amount float64) outcome.Result {
	return e.withShip(id, func(s *Ship) outcome.Result {
		r := s.combat.Repair(amount, s.resources)
		if r.OK() {
			e.emit(events.EventTypeHullRepaired, s.ID, "", RepairPayload{Requested: amount, Hull: s.combat.Hull()}, false)
		}
		return r
	})
}

// AddResource restocks the pool.
func (e *Engine) AddResource(id string, kind resource.Kind, amount float64) outcome.Result {
	return e.withShip(id, func(s *Ship) outcome.Result {
		if err := s.resources.Add(kind, amount); err != nil {
			return outcome.FromError(err)
		}
		return outcome.Acceptf("%s %.2f", kind, s.resources.Amount(kind))
	})
}

// AddItem restocks the cargo hold.
func (e *Engine) AddItem(id string, t item.ItemType, n int) outcome.Result {
	return e.withShip(id, func(s *Ship) outcome.Result {
		before := s.cargo.Count(t)
		if err := s.cargo.Add(t, n); err != nil {
			return outcome.FromError(err)
		}
		if got := s.cargo.Count(t) - before; got < n {
			return outcome.Clampf("%s stack full at %d", t, s.cargo.Count(t))
		}
		return outcome.Acceptf("%s %d", t, s.cargo.Count(t))
	})
}

package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/MRamiBalles/hullbreach/internal/domain/combat"
	"github.com/MRamiBalles/hullbreach/internal/domain/crew"
	"github.com/MRamiBalles/hullbreach/internal/domain/propulsion"
	"github.com/MRamiBalles/hullbreach/internal/domain/resource"
	"github.com/MRamiBalles/hullbreach/internal/events"
	"github.com/MRamiBalles/hullbreach/internal/platform/config"
	"github.com/MRamiBalles/hullbreach/internal/platform/logger"
	"github.com/MRamiBalles/hullbreach/internal/platform/metrics"
)

// Engine is the central orchestrator: it owns every ship and is the single
// "advance by dt" entry point.
type Engine struct {
	mu       sync.Mutex
	eventLog *events.EventLog
	logger   *logger.Logger

	ships map[string]*Ship
	order []string

	tick    int64
	simTime float64
}

// NewEngine creates an empty engine writing transitions to eventLog.
func NewEngine(eventLog *events.EventLog, log *logger.Logger) *Engine {
	return &Engine{
		eventLog: eventLog,
		logger:   log,
		ships:    make(map[string]*Ship),
	}
}

// Start spawns a real-time Ticker feeding Advance and returns it.
func (e *Engine) Start(ctx context.Context, rate time.Duration, timeScale float64) *Ticker {
	e.logger.Info("Starting ship simulation engine", "tick_rate", rate, "time_scale", timeScale)
	t := NewTicker(e, rate, timeScale, e.logger)
	go t.Start(ctx)
	return t
}

// RegisterShip creates a ship from an immutable simulation record.
func (e *Engine) RegisterShip(id, name string, sim config.Simulation) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if id == "" {
		return fmt.Errorf("ship id is required")
	}
	if _, exists := e.ships[id]; exists {
		return fmt.Errorf("ship %q already registered", id)
	}
	ship, err := newShip(id, name, sim)
	if err != nil {
		return fmt.Errorf("register ship %q: %w", id, err)
	}
	e.ships[id] = ship
	e.order = append(e.order, id)
	e.emit(events.EventTypeShipRegistered, id, "", map[string]string{"name": name}, false)
	return nil
}

// ShipIDs lists ships in registration order.
func (e *Engine) ShipIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.order...)
}

// Clock returns the tick counter and the simulated seconds elapsed.
func (e *Engine) Clock() (int64, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick, e.simTime
}

// Snapshot returns the read-only view of one ship.
func (e *Engine) Snapshot(id string) (ShipSnapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.ships[id]
	if !ok {
		return ShipSnapshot{}, false
	}
	return s.snapshot(e.tick, e.simTime), true
}

// Snapshots returns every ship in registration order.
func (e *Engine) Snapshots() []ShipSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ShipSnapshot, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.ships[id].snapshot(e.tick, e.simTime))
	}
	return out
}

// Advance moves the whole simulation forward by dt simulated seconds.
// Each ship runs resources, crew, propulsion, combat and research in that
// order; destroyed ships no longer advance.
func (e *Engine) Advance(dt float64) error {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return fmt.Errorf("invalid tick delta %v", dt)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tick++
	e.simTime += dt
	for _, id := range e.order {
		e.advanceShip(e.ships[id], dt)
	}
	return nil
}

func (e *Engine) advanceShip(s *Ship, dt float64) {
	if s.combat.Destroyed() {
		return
	}

	s.resources.ApplyDecay(dt, s.crew.Count(), s.drive.EngineActive(), s.combat.FightersDeployed())
	e.checkFoodShortage(s)

	tr := s.crew.Advance(dt)
	if tr.StrikeEnded {
		e.emit(events.EventTypeStrikeEnded, s.ID, "", StrikePayload{Areas: []crew.Area{}, Morale: s.crew.Morale()}, false)
	}
	if tr.StrikeStarted {
		e.emit(events.EventTypeStrikeStarted, s.ID, "", StrikePayload{
			Areas:    s.crew.DisabledAreas(),
			Morale:   s.crew.Morale(),
			Duration: s.crew.StrikeRemaining(),
		}, false)
	}

	switch s.drive.Advance(dt) {
	case propulsion.TransitionWarpCruising:
		e.emit(events.EventTypeWarpCruising, s.ID, "", e.warpPayload(s, ""), false)
	case propulsion.TransitionWarpExhausted:
		e.emit(events.EventTypeWarpStopped, s.ID, "", e.warpPayload(s, "fuel_exhausted"), false)
	case propulsion.TransitionStalled:
		e.emit(events.EventTypeFlightStalled, s.ID, "", e.warpPayload(s, "fuel_exhausted"), false)
	}

	for _, ev := range s.combat.Advance(dt, e.lookupCombat) {
		switch ev.Kind {
		case combat.EventBoardingComplete:
			if target, ok := e.ships[ev.TargetID]; ok {
				target.drive.ExitCombat()
				e.emit(events.EventTypeShipCaptured, ev.TargetID, s.ID, CombatPayload{Reason: "boarded"}, false)
			}
		case combat.EventBoardingCancelled:
			e.emit(events.EventTypeBoardingCancelled, s.ID, ev.TargetID, CombatPayload{}, false)
		case combat.EventDisengaged:
			e.emit(events.EventTypeDisengaged, s.ID, "", CombatPayload{Reason: "warp_away"}, false)
		case combat.EventWarpAwayCancelled:
			e.emit(events.EventTypeWarpAwayCancelled, s.ID, "", CombatPayload{}, false)
		}
	}
	if !s.combat.Active() && s.drive.InCombat() {
		s.drive.ExitCombat()
	}

	if done := s.research.Advance(dt); done != nil {
		if err := s.applyBenefits(done.Benefits); err != nil {
			e.logger.Warn("research benefit not applied", "ship", s.ID, "node", done.ID, "error", err)
		}
		e.emit(events.EventTypeResearchCompleted, s.ID, "", ResearchPayload{
			NodeID:   done.ID,
			Name:     done.Name,
			Benefits: done.Benefits,
		}, false)
		if s.combat.Destroyed() {
			e.emit(events.EventTypeShipDestroyed, s.ID, "", CombatPayload{Reason: "research:" + done.ID}, true)
		}
	}
}

// checkFoodShortage raises FoodShortage once each time food runs out.
func (e *Engine) checkFoodShortage(s *Ship) {
	empty := s.resources.Amount(resource.KindFood) <= 0
	if empty && !s.foodShort {
		s.crew.ApplyEvent(crew.EventFoodShortage)
		e.emit(events.EventTypeFoodShortage, s.ID, "", MoralePayload{
			Event:  crew.EventFoodShortage,
			Morale: s.crew.Morale(),
		}, false)
	}
	s.foodShort = empty
}

func (e *Engine) lookupCombat(id string) (*combat.State, bool) {
	s, ok := e.ships[id]
	if !ok {
		return nil, false
	}
	return s.combat, true
}

func (e *Engine) warpPayload(s *Ship, reason string) WarpPayload {
	return WarpPayload{
		Phase:  s.drive.Phase(),
		Reason: reason,
		Speed:  s.drive.Speed(),
		Fuel:   s.resources.Amount(resource.KindFuel),
	}
}

// emit appends a transition to the event log. Callers hold e.mu.
func (e *Engine) emit(t events.EventType, actor, target string, payload interface{}, terminal bool) {
	e.eventLog.Append(events.GameEvent{
		Type:     t,
		ActorID:  actor,
		TargetID: target,
		Payload:  payload,
		Tick:     e.tick,
		SimTime:  e.simTime,
		Terminal: terminal,
	})
	e.logger.Event(string(t), actor, fmt.Sprintf("target=%s %+v", target, payload))
	if terminal {
		metrics.Get().RecordShipDestroyed()
	}
}

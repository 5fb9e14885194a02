// Package events provides the append-only log of simulation transitions.
// Presentation consumers read it to learn about strikes, warp phases,
// destruction and research without polling every subsystem.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MRamiBalles/hullbreach/internal/platform/metrics"
)

// EventType defines the category of a simulation event.
type EventType string

const (
	EventTypeShipRegistered    EventType = "SHIP_REGISTERED"
	EventTypeWarpCharging      EventType = "WARP_CHARGING"
	EventTypeWarpCruising      EventType = "WARP_CRUISING"
	EventTypeWarpStopped       EventType = "WARP_STOPPED"
	EventTypeFlightStalled     EventType = "FLIGHT_STALLED"
	EventTypeStrikeStarted     EventType = "STRIKE_STARTED"
	EventTypeStrikeEnded       EventType = "STRIKE_ENDED"
	EventTypeMoraleChanged     EventType = "MORALE_CHANGED"
	EventTypeFoodShortage      EventType = "FOOD_SHORTAGE"
	EventTypeCrewLost          EventType = "CREW_LOST"
	EventTypeCombatStarted     EventType = "COMBAT_STARTED"
	EventTypeCombatEnded       EventType = "COMBAT_ENDED"
	EventTypeDamageReceived    EventType = "DAMAGE_RECEIVED"
	EventTypeShipDestroyed     EventType = "SHIP_DESTROYED"
	EventTypeCraftLaunched     EventType = "CRAFT_LAUNCHED"
	EventTypeCraftRecalled     EventType = "CRAFT_RECALLED"
	EventTypeBoardingStarted   EventType = "BOARDING_STARTED"
	EventTypeBoardingCancelled EventType = "BOARDING_CANCELLED"
	EventTypeShipCaptured      EventType = "SHIP_CAPTURED"
	EventTypeWarpAwayStarted   EventType = "WARP_AWAY_STARTED"
	EventTypeWarpAwayCancelled EventType = "WARP_AWAY_CANCELLED"
	EventTypeDisengaged        EventType = "DISENGAGED"
	EventTypeWarpSabotaged     EventType = "WARP_SABOTAGED"
	EventTypeHullRepaired      EventType = "HULL_REPAIRED"
	EventTypeResearchStarted   EventType = "RESEARCH_STARTED"
	EventTypeResearchCompleted EventType = "RESEARCH_COMPLETED"
)

// GameEvent represents an immutable record of a simulation transition.
type GameEvent struct {
	ID        string      `json:"id"`
	Seq       int64       `json:"seq"` // assigned by the log, 1-based
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`  // ship the event belongs to
	TargetID  string      `json:"target_id"` // other ship involved (optional)
	Payload   interface{} `json:"payload"`
	Tick      int64       `json:"tick"`
	SimTime   float64     `json:"sim_time"` // simulated seconds since start
	Terminal  bool        `json:"terminal"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event GameEvent) error
}

// EventLog is the in-memory append-only log of simulation events.
// Persistence is write-behind through a single writer goroutine so the
// journal keeps append order. When the queue is full, or after Close, the
// event stays in memory but is not journalled.
type EventLog struct {
	mu      sync.RWMutex
	events  []GameEvent
	nextSeq int64
	closed  bool

	persister EventPersister
	queue     chan GameEvent
	done      chan struct{}
	closeOnce sync.Once
}

// NewEventLog creates a new event log with an optional persister.
// bufferSize sizes the persistence queue; values below 1 default to 256.
func NewEventLog(persister EventPersister, bufferSize int) *EventLog {
	if bufferSize < 1 {
		bufferSize = 256
	}
	el := &EventLog{
		events:    make([]GameEvent, 0),
		nextSeq:   1,
		persister: persister,
		done:      make(chan struct{}),
	}
	if persister != nil {
		el.queue = make(chan GameEvent, bufferSize)
		go el.writeLoop()
	} else {
		close(el.done)
	}
	return el
}

func (el *EventLog) writeLoop() {
	defer close(el.done)
	for e := range el.queue {
		_ = el.persister.Append(e)
	}
}

// Append adds a new event to the log and returns it with ID and Seq filled.
// Events are immutable once appended.
func (el *EventLog) Append(event GameEvent) GameEvent {
	el.mu.Lock()
	if event.ID == "" {
		event.ID = GenerateEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Seq = el.nextSeq
	el.nextSeq++
	el.events = append(el.events, event)
	if el.queue != nil {
		if el.closed {
			metrics.Get().RecordEventDropped()
		} else {
			select {
			case el.queue <- event:
			default:
				metrics.Get().RecordEventDropped()
			}
		}
	}
	el.mu.Unlock()
	return event
}

// Close flushes pending writes and stops the writer. Later appends are
// kept in memory only.
func (el *EventLog) Close() {
	el.closeOnce.Do(func() {
		el.mu.Lock()
		el.closed = true
		el.mu.Unlock()
		if el.queue != nil {
			close(el.queue)
		}
	})
	<-el.done
}

// Len returns the number of events logged.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// GetByActor returns all events belonging to a specific ship.
func (el *EventLog) GetByActor(actorID string) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.ActorID == actorID {
			result = append(result, e)
		}
	}
	return result
}

// GetByType returns all events of one type.
func (el *EventLog) GetByType(t EventType) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// Since returns the events with Seq greater than seq.
func (el *EventLog) Since(seq int64) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	if seq < 0 {
		seq = 0
	}
	if seq >= int64(len(el.events)) {
		return nil
	}
	out := make([]GameEvent, int64(len(el.events))-seq)
	copy(out, el.events[seq:])
	return out
}

// Replay returns a copy of the full history.
func (el *EventLog) Replay() []GameEvent {
	return el.Since(0)
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.New().String()
}

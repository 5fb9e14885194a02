// Package storage provides the persistence layer for the ship server.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"encoding/json"
	"time"
)

// StoredEvent is the journal row for one simulation event.
type StoredEvent struct {
	ID        string          `json:"id" db:"id"`
	SessionID string          `json:"session_id" db:"session_id"`
	Seq       int64           `json:"seq" db:"seq"`
	Timestamp time.Time       `json:"timestamp" db:"timestamp"`
	EventType string          `json:"event_type" db:"event_type"`
	ActorID   string          `json:"actor_id" db:"actor_id"`
	TargetID  string          `json:"target_id" db:"target_id"`
	Payload   json.RawMessage `json:"payload" db:"payload"`
	Tick      int64           `json:"tick" db:"tick"`
	SimTime   float64         `json:"sim_time" db:"sim_time"`
	Terminal  bool            `json:"terminal" db:"terminal"`
}

// EventRepository defines the interface for event persistence.
// The engine never sees it; the journal writer adapts it to the event log.
type EventRepository interface {
	// Append adds a new event to the immutable journal.
	Append(ctx context.Context, event StoredEvent) error

	// GetBySession retrieves all events of one server session, in order.
	GetBySession(ctx context.Context, sessionID string) ([]StoredEvent, error)

	// GetByActorID retrieves all events belonging to one ship.
	GetByActorID(ctx context.Context, sessionID, actorID string) ([]StoredEvent, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, sessionID string, eventType string) ([]StoredEvent, error)

	// GetSince retrieves events with a sequence number above seq.
	GetSince(ctx context.Context, sessionID string, seq int64) ([]StoredEvent, error)
}

// ShipRecord is the read model of one ship for quick reads.
type ShipRecord struct {
	ShipID      string          `json:"ship_id" db:"ship_id"`
	SessionID   string          `json:"session_id" db:"session_id"`
	Name        string          `json:"name" db:"name"`
	Tick        int64           `json:"tick" db:"tick"`
	SimTime     float64         `json:"sim_time" db:"sim_time"`
	Destroyed   bool            `json:"destroyed" db:"destroyed"`
	Captured    bool            `json:"captured" db:"captured"`
	Hull        float64         `json:"hull" db:"hull"`
	Shield      float64         `json:"shield" db:"shield"`
	Fuel        float64         `json:"fuel" db:"fuel"`
	Morale      float64         `json:"morale" db:"morale"`
	State       json.RawMessage `json:"state" db:"state"` // full snapshot document
	LastUpdated time.Time       `json:"last_updated" db:"last_updated"`
}

// SnapshotRepository defines the interface for ship read models.
type SnapshotRepository interface {
	// Upsert updates or inserts a ship record.
	Upsert(ctx context.Context, record ShipRecord) error

	// GetByShipID retrieves one ship; nil when unknown.
	GetByShipID(ctx context.Context, sessionID, shipID string) (*ShipRecord, error)

	// GetBySession retrieves every ship of a session.
	GetBySession(ctx context.Context, sessionID string) ([]ShipRecord, error)
}

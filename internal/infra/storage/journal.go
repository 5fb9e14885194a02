package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MRamiBalles/hullbreach/internal/engine"
	"github.com/MRamiBalles/hullbreach/internal/events"
	"github.com/MRamiBalles/hullbreach/internal/platform/logger"
	"github.com/MRamiBalles/hullbreach/internal/platform/metrics"
)

// Journal adapts an EventRepository to the event log's persister hook.
type Journal struct {
	repo      EventRepository
	sessionID string
	timeout   time.Duration
	logger    *logger.Logger
}

// NewJournal scopes every journaled event to sessionID.
func NewJournal(repo EventRepository, sessionID string, log *logger.Logger) *Journal {
	return &Journal{repo: repo, sessionID: sessionID, timeout: 5 * time.Second, logger: log}
}

// Append converts and stores one event. Failures are logged and counted;
// the in-memory log stays authoritative.
func (j *Journal) Append(e events.GameEvent) error {
	start := time.Now()
	rec, err := ToStoredEvent(j.sessionID, e)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		err = j.repo.Append(ctx, rec)
		cancel()
	}
	metrics.Get().RecordEventWrite(time.Since(start), err)
	if err != nil {
		j.logger.Error("journal write failed", "event_id", e.ID, "seq", e.Seq, "error", err)
	}
	return err
}

// ToStoredEvent flattens an event for the journal.
func ToStoredEvent(sessionID string, e events.GameEvent) (StoredEvent, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return StoredEvent{}, fmt.Errorf("failed to marshal payload of %s: %w", e.ID, err)
	}
	return StoredEvent{
		ID:        e.ID,
		SessionID: sessionID,
		Seq:       e.Seq,
		Timestamp: e.Timestamp,
		EventType: string(e.Type),
		ActorID:   e.ActorID,
		TargetID:  e.TargetID,
		Payload:   payload,
		Tick:      e.Tick,
		SimTime:   e.SimTime,
		Terminal:  e.Terminal,
	}, nil
}

// ToShipRecord builds the read-model row for a ship snapshot.
func ToShipRecord(sessionID string, s engine.ShipSnapshot) (ShipRecord, error) {
	state, err := json.Marshal(s)
	if err != nil {
		return ShipRecord{}, fmt.Errorf("failed to marshal ship %s: %w", s.ID, err)
	}
	return ShipRecord{
		ShipID:      s.ID,
		SessionID:   sessionID,
		Name:        s.Name,
		Tick:        s.Tick,
		SimTime:     s.SimTime,
		Destroyed:   s.Destroyed,
		Captured:    s.Combat.Captured,
		Hull:        s.Combat.Hull,
		Shield:      s.Combat.Shield,
		Fuel:        s.Resources.Fuel,
		Morale:      s.Crew.Morale,
		State:       state,
		LastUpdated: time.Now(),
	}, nil
}

// SaveShips upserts every snapshot and stops at the first failure.
func SaveShips(ctx context.Context, repo SnapshotRepository, sessionID string, snaps []engine.ShipSnapshot) error {
	for _, s := range snaps {
		rec, err := ToShipRecord(sessionID, s)
		if err != nil {
			return err
		}
		if err := repo.Upsert(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

var _ events.EventPersister = (*Journal)(nil)

package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/MRamiBalles/hullbreach/internal/engine"
	"github.com/MRamiBalles/hullbreach/internal/events"
	"github.com/MRamiBalles/hullbreach/internal/platform/config"
	"github.com/MRamiBalles/hullbreach/internal/platform/logger"
)

func openTestDB(t *testing.T) (*SQLiteEventRepository, *SQLiteSnapshotRepository) {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "data", "ships.db"))
	if err != nil {
		t.Fatalf("InitSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteEventRepository(db), NewSQLiteSnapshotRepository(db)
}

func TestJournalRoundTrip(t *testing.T) {
	repo, _ := openTestDB(t)
	el := events.NewEventLog(NewJournal(repo, "run-1", logger.Discard()), 8)

	el.Append(events.GameEvent{Type: events.EventTypeWarpCharging, ActorID: "S1", Payload: map[string]int{"fuel": 10}})
	el.Append(events.GameEvent{Type: events.EventTypeDamageReceived, ActorID: "S2", TargetID: "S1"})
	el.Append(events.GameEvent{Type: events.EventTypeShipDestroyed, ActorID: "S2", TargetID: "S1", Terminal: true})
	el.Close()

	ctx := context.Background()
	all, err := repo.GetBySession(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetBySession: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
	for i, e := range all {
		if e.Seq != int64(i+1) {
			t.Errorf("event %d: got seq %d, want %d", i, e.Seq, i+1)
		}
	}
	var payload map[string]int
	if err := json.Unmarshal(all[0].Payload, &payload); err != nil || payload["fuel"] != 10 {
		t.Errorf("got payload %s, want fuel 10", all[0].Payload)
	}
	if !all[2].Terminal {
		t.Errorf("expected last event to be terminal")
	}

	since, err := repo.GetSince(ctx, "run-1", 1)
	if err != nil || len(since) != 2 {
		t.Errorf("GetSince: got %d events (err %v), want 2", len(since), err)
	}
	byActor, _ := repo.GetByActorID(ctx, "run-1", "S2")
	if len(byActor) != 2 {
		t.Errorf("GetByActorID: got %d, want 2", len(byActor))
	}
	byType, _ := repo.GetByEventType(ctx, "run-1", string(events.EventTypeShipDestroyed))
	if len(byType) != 1 {
		t.Errorf("GetByEventType: got %d, want 1", len(byType))
	}
	other, _ := repo.GetBySession(ctx, "run-2")
	if len(other) != 0 {
		t.Errorf("sessions leaked: got %d events for run-2", len(other))
	}
}

func TestAppendRejectsDuplicateID(t *testing.T) {
	repo, _ := openTestDB(t)
	ctx := context.Background()
	e := StoredEvent{ID: "evt-1", SessionID: "run-1", Seq: 1, Timestamp: time.Now(), EventType: "WARP_CHARGING", ActorID: "S1"}
	if err := repo.Append(ctx, e); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := repo.Append(ctx, e); err == nil {
		t.Errorf("expected the journal to refuse a duplicate id")
	}
}

func TestSaveShipsUpserts(t *testing.T) {
	_, snaps := openTestDB(t)
	ctx := context.Background()

	e := engine.NewEngine(events.NewEventLog(nil, 0), logger.Discard())
	if err := e.RegisterShip("S1", "Kestrel", config.DefaultSimulation()); err != nil {
		t.Fatalf("RegisterShip: %v", err)
	}
	if err := SaveShips(ctx, snaps, "run-1", e.Snapshots()); err != nil {
		t.Fatalf("SaveShips: %v", err)
	}
	e.ReceiveDamage("S1", 120, "kinetic")
	if err := SaveShips(ctx, snaps, "run-1", e.Snapshots()); err != nil {
		t.Fatalf("SaveShips: %v", err)
	}

	rec, err := snaps.GetByShipID(ctx, "run-1", "S1")
	if err != nil || rec == nil {
		t.Fatalf("GetByShipID: %v %v", rec, err)
	}
	if rec.Name != "Kestrel" || rec.Hull != 80 || rec.Shield != 0 {
		t.Errorf("got name %q hull %v shield %v, want Kestrel 80 0", rec.Name, rec.Hull, rec.Shield)
	}
	var state engine.ShipSnapshot
	if err := json.Unmarshal(rec.State, &state); err != nil {
		t.Fatalf("state is not a ship snapshot: %v", err)
	}
	if state.Combat.Hull != 80 {
		t.Errorf("got state hull %v, want 80", state.Combat.Hull)
	}

	all, _ := snaps.GetBySession(ctx, "run-1")
	if len(all) != 1 {
		t.Errorf("got %d rows, want 1 after two upserts", len(all))
	}
	missing, err := snaps.GetByShipID(ctx, "run-1", "S9")
	if err != nil || missing != nil {
		t.Errorf("got %v, %v for unknown ship, want nil, nil", missing, err)
	}
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const sqliteEventColumns = `id, session_id, seq, timestamp, event_type, actor_id, target_id, payload, tick, sim_time, terminal`

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event StoredEvent) error {
	payload := event.Payload
	if len(payload) == 0 {
		payload = []byte("null")
	}
	query := `INSERT INTO events (` + sqliteEventColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.SessionID, event.Seq, event.Timestamp, event.EventType, event.ActorID,
		event.TargetID, string(payload), event.Tick, event.SimTime, event.Terminal,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, where string, args ...interface{}) ([]StoredEvent, error) {
	query := `SELECT ` + sqliteEventColumns + ` FROM events WHERE ` + where + ` ORDER BY seq ASC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]StoredEvent, 0)
	for rows.Next() {
		var e StoredEvent
		var payload string
		err := rows.Scan(
			&e.ID, &e.SessionID, &e.Seq, &e.Timestamp, &e.EventType, &e.ActorID,
			&e.TargetID, &payload, &e.Tick, &e.SimTime, &e.Terminal,
		)
		if err != nil {
			return nil, err
		}
		e.Payload = []byte(payload)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteEventRepository) GetBySession(ctx context.Context, sessionID string) ([]StoredEvent, error) {
	return r.getMany(ctx, `session_id = ?`, sessionID)
}

func (r *SQLiteEventRepository) GetByActorID(ctx context.Context, sessionID, actorID string) ([]StoredEvent, error) {
	return r.getMany(ctx, `session_id = ? AND actor_id = ?`, sessionID, actorID)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, sessionID string, eventType string) ([]StoredEvent, error) {
	return r.getMany(ctx, `session_id = ? AND event_type = ?`, sessionID, eventType)
}

func (r *SQLiteEventRepository) GetSince(ctx context.Context, sessionID string, seq int64) ([]StoredEvent, error) {
	return r.getMany(ctx, `session_id = ? AND seq > ?`, sessionID, seq)
}

// ---------------------------------------------------------
// SQLiteSnapshotRepository
// ---------------------------------------------------------

const sqliteShipColumns = `ship_id, session_id, name, tick, sim_time, destroyed, captured, hull, shield, fuel, morale, state, last_updated`

type SQLiteSnapshotRepository struct {
	db *sql.DB
}

func NewSQLiteSnapshotRepository(db *sql.DB) *SQLiteSnapshotRepository {
	return &SQLiteSnapshotRepository{db: db}
}

func (r *SQLiteSnapshotRepository) Upsert(ctx context.Context, rec ShipRecord) error {
	if rec.LastUpdated.IsZero() {
		rec.LastUpdated = time.Now()
	}
	query := `
		INSERT INTO ships (` + sqliteShipColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, ship_id) DO UPDATE SET
			name=excluded.name,
			tick=excluded.tick,
			sim_time=excluded.sim_time,
			destroyed=excluded.destroyed,
			captured=excluded.captured,
			hull=excluded.hull,
			shield=excluded.shield,
			fuel=excluded.fuel,
			morale=excluded.morale,
			state=excluded.state,
			last_updated=excluded.last_updated
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ShipID, rec.SessionID, rec.Name, rec.Tick, rec.SimTime, rec.Destroyed, rec.Captured,
		rec.Hull, rec.Shield, rec.Fuel, rec.Morale, string(rec.State), rec.LastUpdated,
	)
	return err
}

func scanShip(row interface{ Scan(...interface{}) error }) (ShipRecord, error) {
	var rec ShipRecord
	var state string
	err := row.Scan(
		&rec.ShipID, &rec.SessionID, &rec.Name, &rec.Tick, &rec.SimTime, &rec.Destroyed, &rec.Captured,
		&rec.Hull, &rec.Shield, &rec.Fuel, &rec.Morale, &state, &rec.LastUpdated,
	)
	rec.State = []byte(state)
	return rec, err
}

func (r *SQLiteSnapshotRepository) GetByShipID(ctx context.Context, sessionID, shipID string) (*ShipRecord, error) {
	query := `SELECT ` + sqliteShipColumns + ` FROM ships WHERE session_id = ? AND ship_id = ?`
	rec, err := scanShip(r.db.QueryRowContext(ctx, query, sessionID, shipID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *SQLiteSnapshotRepository) GetBySession(ctx context.Context, sessionID string) ([]ShipRecord, error) {
	query := `SELECT ` + sqliteShipColumns + ` FROM ships WHERE session_id = ? ORDER BY ship_id`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []ShipRecord
	for rows.Next() {
		rec, err := scanShip(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

var (
	_ EventRepository    = (*SQLiteEventRepository)(nil)
	_ SnapshotRepository = (*SQLiteSnapshotRepository)(nil)
)

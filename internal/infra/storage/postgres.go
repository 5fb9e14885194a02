package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// ErrDuplicateEvent is returned when an event id or sequence is journaled twice.
var ErrDuplicateEvent = errors.New("event already journaled")

var postgresSchemas = []string{
	`CREATE TABLE IF NOT EXISTS event_log (
		id UUID PRIMARY KEY,
		session_id TEXT NOT NULL,
		seq BIGINT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL,
		event_type TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		target_id TEXT,
		payload JSONB NOT NULL,
		tick BIGINT NOT NULL,
		sim_time DOUBLE PRECISION NOT NULL,
		terminal BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE (session_id, seq)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_event_log_actor ON event_log(session_id, actor_id);`,
	`CREATE TABLE IF NOT EXISTS ship_snapshots (
		ship_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		name TEXT,
		tick BIGINT NOT NULL,
		sim_time DOUBLE PRECISION NOT NULL,
		destroyed BOOLEAN NOT NULL,
		captured BOOLEAN NOT NULL,
		hull DOUBLE PRECISION NOT NULL,
		shield DOUBLE PRECISION NOT NULL,
		fuel DOUBLE PRECISION NOT NULL,
		morale DOUBLE PRECISION NOT NULL,
		state JSONB NOT NULL,
		last_updated TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (session_id, ship_id)
	);`,
}

// InitPostgres opens a PostgreSQL pool and creates the journal schemas.
func InitPostgres(ctx context.Context, url string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if err := createSchemas(db, postgresSchemas); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}
	return db, nil
}

// PostgresEventRepository implements EventRepository using PostgreSQL.
type PostgresEventRepository struct {
	db *sql.DB
}

// NewPostgresEventRepository creates a new PostgreSQL event repository.
func NewPostgresEventRepository(db *sql.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

// Append inserts a new event into the immutable journal.
func (r *PostgresEventRepository) Append(ctx context.Context, event StoredEvent) error {
	payload := event.Payload
	if len(payload) == 0 {
		payload = []byte("null")
	}
	query := `
		INSERT INTO event_log (id, session_id, seq, timestamp, event_type, actor_id, target_id, payload, tick, sim_time, terminal)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.SessionID,
		event.Seq,
		event.Timestamp,
		event.EventType,
		event.ActorID,
		event.TargetID,
		[]byte(payload),
		event.Tick,
		event.SimTime,
		event.Terminal,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrDuplicateEvent, event.ID)
		}
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

const postgresEventSelect = `
	SELECT id, session_id, seq, timestamp, event_type, actor_id, target_id, payload, tick, sim_time, terminal
	FROM event_log
`

// GetBySession retrieves the full journal of a session.
func (r *PostgresEventRepository) GetBySession(ctx context.Context, sessionID string) ([]StoredEvent, error) {
	return r.queryEvents(ctx, postgresEventSelect+`WHERE session_id = $1 ORDER BY seq ASC`, sessionID)
}

// GetByActorID retrieves all events belonging to a ship.
func (r *PostgresEventRepository) GetByActorID(ctx context.Context, sessionID, actorID string) ([]StoredEvent, error) {
	return r.queryEvents(ctx, postgresEventSelect+`WHERE session_id = $1 AND actor_id = $2 ORDER BY seq ASC`, sessionID, actorID)
}

// GetByEventType retrieves all events of a specific type.
func (r *PostgresEventRepository) GetByEventType(ctx context.Context, sessionID string, eventType string) ([]StoredEvent, error) {
	return r.queryEvents(ctx, postgresEventSelect+`WHERE session_id = $1 AND event_type = $2 ORDER BY seq ASC`, sessionID, eventType)
}

// GetSince retrieves events after seq.
func (r *PostgresEventRepository) GetSince(ctx context.Context, sessionID string, seq int64) ([]StoredEvent, error) {
	return r.queryEvents(ctx, postgresEventSelect+`WHERE session_id = $1 AND seq > $2 ORDER BY seq ASC`, sessionID, seq)
}

func (r *PostgresEventRepository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]StoredEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]StoredEvent, 0)
	for rows.Next() {
		var e StoredEvent
		var targetID sql.NullString
		var payload []byte

		err := rows.Scan(
			&e.ID,
			&e.SessionID,
			&e.Seq,
			&e.Timestamp,
			&e.EventType,
			&e.ActorID,
			&targetID,
			&payload,
			&e.Tick,
			&e.SimTime,
			&e.Terminal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if targetID.Valid {
			e.TargetID = targetID.String
		}
		e.Payload = payload
		events = append(events, e)
	}
	return events, rows.Err()
}

// PostgresSnapshotRepository implements SnapshotRepository using PostgreSQL.
type PostgresSnapshotRepository struct {
	db *sql.DB
}

// NewPostgresSnapshotRepository creates a new PostgreSQL ship read model.
func NewPostgresSnapshotRepository(db *sql.DB) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{db: db}
}

// Upsert writes the latest record of a ship.
func (r *PostgresSnapshotRepository) Upsert(ctx context.Context, rec ShipRecord) error {
	if rec.LastUpdated.IsZero() {
		rec.LastUpdated = time.Now()
	}
	query := `
		INSERT INTO ship_snapshots (ship_id, session_id, name, tick, sim_time, destroyed, captured, hull, shield, fuel, morale, state, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (session_id, ship_id) DO UPDATE SET
			name = EXCLUDED.name,
			tick = EXCLUDED.tick,
			sim_time = EXCLUDED.sim_time,
			destroyed = EXCLUDED.destroyed,
			captured = EXCLUDED.captured,
			hull = EXCLUDED.hull,
			shield = EXCLUDED.shield,
			fuel = EXCLUDED.fuel,
			morale = EXCLUDED.morale,
			state = EXCLUDED.state,
			last_updated = EXCLUDED.last_updated
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ShipID, rec.SessionID, rec.Name, rec.Tick, rec.SimTime, rec.Destroyed, rec.Captured,
		rec.Hull, rec.Shield, rec.Fuel, rec.Morale, []byte(rec.State), rec.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert ship %s: %w", rec.ShipID, err)
	}
	return nil
}

const postgresShipSelect = `
	SELECT ship_id, session_id, name, tick, sim_time, destroyed, captured, hull, shield, fuel, morale, state, last_updated
	FROM ship_snapshots
`

func scanPostgresShip(row interface{ Scan(...interface{}) error }) (ShipRecord, error) {
	var rec ShipRecord
	var name sql.NullString
	var state []byte
	err := row.Scan(
		&rec.ShipID, &rec.SessionID, &name, &rec.Tick, &rec.SimTime, &rec.Destroyed, &rec.Captured,
		&rec.Hull, &rec.Shield, &rec.Fuel, &rec.Morale, &state, &rec.LastUpdated,
	)
	rec.Name = name.String
	rec.State = state
	return rec, err
}

// GetByShipID retrieves one ship; nil when unknown.
func (r *PostgresSnapshotRepository) GetByShipID(ctx context.Context, sessionID, shipID string) (*ShipRecord, error) {
	rec, err := scanPostgresShip(r.db.QueryRowContext(ctx, postgresShipSelect+`WHERE session_id = $1 AND ship_id = $2`, sessionID, shipID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// GetBySession retrieves every ship of a session.
func (r *PostgresSnapshotRepository) GetBySession(ctx context.Context, sessionID string) ([]ShipRecord, error) {
	rows, err := r.db.QueryContext(ctx, postgresShipSelect+`WHERE session_id = $1 ORDER BY ship_id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []ShipRecord
	for rows.Next() {
		rec, err := scanPostgresShip(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Ensure the PostgreSQL repositories implement the interfaces.
var (
	_ EventRepository    = (*PostgresEventRepository)(nil)
	_ SnapshotRepository = (*PostgresSnapshotRepository)(nil)
)

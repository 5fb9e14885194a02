// Package cache provides Redis-based caching for quick ship reads.
// The cache mirrors the engine; it is never the source of truth.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MRamiBalles/hullbreach/internal/engine"
)

// ErrMiss is returned when a key is not cached.
var ErrMiss = errors.New("cache miss")

// RedisClient is an interface for Redis operations.
// This allows for easy mocking in tests.
type RedisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key string, values ...interface{}) error
}

// ShipCache provides fast access to ship snapshots.
type ShipCache struct {
	client     RedisClient
	expiration time.Duration
}

// NewShipCache creates a new ship cache instance.
func NewShipCache(client RedisClient) *ShipCache {
	return &ShipCache{
		client:     client,
		expiration: 15 * time.Minute,
	}
}

// SetShip caches the snapshot of one ship.
func (c *ShipCache) SetShip(ctx context.Context, sessionID string, snap engine.ShipSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal ship %s: %w", snap.ID, err)
	}
	return c.client.Set(ctx, c.shipKey(sessionID, snap.ID), data, c.expiration)
}

// GetShip retrieves one cached ship. It returns ErrMiss when absent.
func (c *ShipCache) GetShip(ctx context.Context, sessionID, shipID string) (*engine.ShipSnapshot, error) {
	data, err := c.client.Get(ctx, c.shipKey(sessionID, shipID))
	if err != nil {
		return nil, err
	}

	var snap engine.ShipSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ship %s: %w", shipID, err)
	}
	return &snap, nil
}

// SetFleet caches every ship of a session in one hash.
func (c *ShipCache) SetFleet(ctx context.Context, sessionID string, snaps []engine.ShipSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(snaps)*2)
	for _, s := range snaps {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal ship %s: %w", s.ID, err)
		}
		values = append(values, s.ID, string(data))
	}
	return c.client.HSet(ctx, c.fleetKey(sessionID), values...)
}

// GetFleet retrieves every cached ship of a session keyed by id.
func (c *ShipCache) GetFleet(ctx context.Context, sessionID string) (map[string]engine.ShipSnapshot, error) {
	data, err := c.client.HGetAll(ctx, c.fleetKey(sessionID))
	if err != nil {
		return nil, err
	}

	fleet := make(map[string]engine.ShipSnapshot, len(data))
	for id, raw := range data {
		var s engine.ShipSnapshot
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ship %s: %w", id, err)
		}
		fleet[id] = s
	}
	return fleet, nil
}

// Mirror writes both the per-ship keys and the fleet hash.
func (c *ShipCache) Mirror(ctx context.Context, sessionID string, snaps []engine.ShipSnapshot) error {
	for _, s := range snaps {
		if err := c.SetShip(ctx, sessionID, s); err != nil {
			return err
		}
	}
	return c.SetFleet(ctx, sessionID, snaps)
}

// InvalidateFleet removes the fleet hash of a session.
func (c *ShipCache) InvalidateFleet(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, c.fleetKey(sessionID))
}

func (c *ShipCache) shipKey(sessionID, shipID string) string {
	return fmt.Sprintf("session:%s:ship:%s", sessionID, shipID)
}

func (c *ShipCache) fleetKey(sessionID string) string {
	return fmt.Sprintf("session:%s:ships", sessionID)
}

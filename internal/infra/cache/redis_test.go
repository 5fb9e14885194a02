package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/MRamiBalles/hullbreach/internal/engine"
)

type fakeRedis struct {
	kv     map[string]string
	hashes map[string]map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{kv: map[string]string{}, hashes: map[string]map[string]string{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	v, ok := f.kv[key]
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	switch v := value.(type) {
	case []byte:
		f.kv[key] = string(v)
	default:
		f.kv[key] = fmt.Sprint(v)
	}
	return nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.kv, k)
		delete(f.hashes, k)
	}
	return nil
}

func (f *fakeRedis) HGetAll(_ context.Context, key string) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeRedis) HSet(_ context.Context, key string, values ...interface{}) error {
	h, ok := f.hashes[key]
	if !ok {
		h = map[string]string{}
		f.hashes[key] = h
	}
	for i := 0; i+1 < len(values); i += 2 {
		h[fmt.Sprint(values[i])] = fmt.Sprint(values[i+1])
	}
	return nil
}

func TestMirrorAndRead(t *testing.T) {
	c := NewShipCache(newFakeRedis())
	ctx := context.Background()
	snaps := []engine.ShipSnapshot{
		{ID: "S1", Name: "Kestrel", Tick: 4},
		{ID: "S2", Name: "Heron", Destroyed: true},
	}

	if err := c.Mirror(ctx, "run-1", snaps); err != nil {
		t.Fatalf("Mirror: %v", err)
	}

	s1, err := c.GetShip(ctx, "run-1", "S1")
	if err != nil {
		t.Fatalf("GetShip: %v", err)
	}
	if s1.Name != "Kestrel" || s1.Tick != 4 {
		t.Errorf("got %+v, want Kestrel at tick 4", s1)
	}

	fleet, err := c.GetFleet(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetFleet: %v", err)
	}
	if len(fleet) != 2 || !fleet["S2"].Destroyed {
		t.Errorf("got fleet %+v, want two ships with S2 destroyed", fleet)
	}
}

func TestMissAndInvalidate(t *testing.T) {
	c := NewShipCache(newFakeRedis())
	ctx := context.Background()

	if _, err := c.GetShip(ctx, "run-1", "S1"); !errors.Is(err, ErrMiss) {
		t.Errorf("got %v, want ErrMiss", err)
	}

	c.SetFleet(ctx, "run-1", []engine.ShipSnapshot{{ID: "S1"}})
	if err := c.InvalidateFleet(ctx, "run-1"); err != nil {
		t.Fatalf("InvalidateFleet: %v", err)
	}
	fleet, _ := c.GetFleet(ctx, "run-1")
	if len(fleet) != 0 {
		t.Errorf("got %d ships after invalidation, want 0", len(fleet))
	}
}

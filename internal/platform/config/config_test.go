package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MRamiBalles/hullbreach/internal/domain/crew"
)

func TestDefaultSimulationIsValid(t *testing.T) {
	if err := DefaultSimulation().Validate(); err != nil {
		t.Fatalf("DefaultSimulation().Validate() = %v", err)
	}
}

func TestParseSimulationOverridesPreset(t *testing.T) {
	doc := []byte(`
propulsion:
  max_speed: 100
  acceleration: 5
  deceleration: 2
  max_warp_speed: 800
  warp_charge_time: 2
  warp_fuel_rate: 10
crew:
  initial_count: 4
  initial_morale: 50
  min_morale: 0
  max_morale: 100
  decrement_rate: 1
  strike_duration: 3
  strike_areas: [hangar_bay, research_lab]
`)
	sim, err := ParseSimulation(doc)
	if err != nil {
		t.Fatalf("ParseSimulation() error = %v", err)
	}
	if sim.Propulsion.MaxWarpSpeed != 800 {
		t.Errorf("max warp = %v, want 800", sim.Propulsion.MaxWarpSpeed)
	}
	if len(sim.Crew.StrikeAreas) != 2 || sim.Crew.StrikeAreas[0] != crew.AreaHangarBay {
		t.Errorf("strike areas = %v", sim.Crew.StrikeAreas)
	}
	if sim.Combat.MaxHull != 100 {
		t.Errorf("combat section lost its preset: max hull = %v", sim.Combat.MaxHull)
	}
}

func TestParseSimulationRejectsUnknownNames(t *testing.T) {
	cases := map[string]string{
		"area":  "crew:\n  strike_areas: [galley]\n",
		"item":  "inventory:\n  torpedo: 3\n",
		"stat":  "research:\n  nodes:\n    - id: x\n      duration: 1\n      benefits:\n        - stat: luck\n          value: 1\n",
		"event": "crew:\n  event_impacts:\n    party: 4\n",
	}
	for name, doc := range cases {
		if _, err := ParseSimulation([]byte(doc)); err == nil {
			t.Errorf("%s: ParseSimulation() error = nil, want rejection", name)
		}
	}
}

func TestLoadSimulationFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	if err := os.WriteFile(path, []byte("combat:\n  max_hull: 250\n  initial_hull: 250\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	sim, err := LoadSimulation(path)
	if err != nil {
		t.Fatalf("LoadSimulation() error = %v", err)
	}
	if sim.Combat.MaxHull != 250 {
		t.Errorf("max hull = %v, want 250", sim.Combat.MaxHull)
	}
	if _, err := LoadSimulation(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("LoadSimulation(missing) error = nil")
	}
}

func TestServerValidate(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	if err := loadServer().validate(); err == nil {
		t.Errorf("postgres without DATABASE_URL validated")
	}

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("TICK_RATE_MS", "250")
	t.Setenv("TIME_SCALE", "4")
	cfg := loadServer()
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate() = %v", err)
	}
	if cfg.TickDelta() != 1 {
		t.Errorf("TickDelta() = %v, want 1", cfg.TickDelta())
	}
	if len(cfg.ShipIDs) != 2 {
		t.Errorf("ShipIDs = %v, want default pair", cfg.ShipIDs)
	}
}

func TestServerSessionAndSnapshotInterval(t *testing.T) {
	t.Setenv("SESSION_ID", "")
	t.Setenv("SNAPSHOT_INTERVAL_SECONDS", "0")
	cfg := loadServer()
	if len(cfg.SessionID) <= len("session_") {
		t.Errorf("SessionID = %q, want a generated session", cfg.SessionID)
	}
	if err := cfg.validate(); err == nil {
		t.Errorf("zero snapshot interval validated")
	}

	t.Setenv("SESSION_ID", "replay_7")
	if got := loadServer().SessionID; got != "replay_7" {
		t.Errorf("SessionID = %q, want replay_7", got)
	}
}

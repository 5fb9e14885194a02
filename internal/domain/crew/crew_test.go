package crew

import (
	"testing"

	"github.com/MRamiBalles/hullbreach/internal/domain/outcome"
)

func testConfig() Config {
	return Config{
		InitialCount:   10,
		InitialMorale:  2,
		MinMorale:      0,
		MaxMorale:      100,
		DecrementRate:  1,
		StrikeDuration: 10,
		StrikeAreas:    []Area{AreaEngineBay, AreaWeaponsBay},
		EventImpacts: map[MoraleEvent]float64{
			EventCrewDeath:         -20,
			EventFoodShortage:      -10,
			EventEntertainment:     5,
			EventSuccessfulMission: 15,
		},
	}
}

func TestApplyMoraleEventClamps(t *testing.T) {
	c := New(testConfig())

	if r := c.ApplyMoraleEvent(500); r.Status != outcome.StatusClamped {
		t.Errorf("status = %q, want clamped", r.Status)
	}
	if c.Morale() != 100 {
		t.Errorf("morale = %v, want 100", c.Morale())
	}
	if r := c.ApplyMoraleEvent(-30); r.Status != outcome.StatusAccepted {
		t.Errorf("status = %q, want accepted", r.Status)
	}
	c.ApplyMoraleEvent(-1000)
	if c.Morale() != 0 {
		t.Errorf("morale = %v, want 0", c.Morale())
	}
}

func TestStrikeLifecycle(t *testing.T) {
	c := New(testConfig())

	c.Advance(1)
	if c.OnStrike() {
		t.Fatalf("strike started at morale %v", c.Morale())
	}

	tr := c.Advance(1)
	if !tr.StrikeStarted || !c.OnStrike() {
		t.Fatalf("expected strike once morale hit minimum, morale = %v", c.Morale())
	}
	if !c.IsAreaDisabled(AreaEngineBay) || !c.IsAreaDisabled(AreaWeaponsBay) {
		t.Errorf("strike areas not disabled: %v", c.DisabledAreas())
	}
	if c.IsAreaDisabled(AreaHangarBay) {
		t.Errorf("hangar bay disabled, want enabled")
	}

	for i := 0; i < 9; i++ {
		if tr := c.Advance(1); tr.StrikeEnded {
			t.Fatalf("strike ended early after %d ticks", i+1)
		}
	}
	tr = c.Advance(1)
	if !tr.StrikeEnded || c.OnStrike() {
		t.Fatalf("strike still active after full duration")
	}
	if c.IsAreaDisabled(AreaEngineBay) || c.IsAreaDisabled(AreaWeaponsBay) {
		t.Errorf("areas still disabled after strike: %v", c.DisabledAreas())
	}
	if c.Morale() != 0 {
		t.Errorf("morale = %v, want still at minimum", c.Morale())
	}
}

func TestStrikeTriggersOncePerDescent(t *testing.T) {
	c := New(testConfig())
	starts := 0
	for i := 0; i < 40; i++ {
		if c.Advance(1).StrikeStarted {
			starts++
		}
	}
	if starts != 1 {
		t.Errorf("strikes started = %d, want 1 while morale stays at minimum", starts)
	}

	c.ApplyMoraleEvent(3)
	for i := 0; i < 5; i++ {
		if c.Advance(1).StrikeStarted {
			starts++
		}
	}
	if starts != 2 {
		t.Errorf("strikes started = %d, want 2 after a second descent", starts)
	}
}

func TestReachingMinimumDuringStrikeHasNoEffect(t *testing.T) {
	c := New(testConfig())
	c.Advance(2)
	if !c.OnStrike() {
		t.Fatalf("expected strike")
	}
	remaining := c.StrikeRemaining()

	c.ApplyMoraleEvent(5)
	c.ApplyMoraleEvent(-50)
	tr := c.Advance(0)
	if tr.StrikeStarted {
		t.Errorf("second strike started during active strike")
	}
	if c.StrikeRemaining() != remaining {
		t.Errorf("remaining = %v, want %v", c.StrikeRemaining(), remaining)
	}
}

func TestLoseCrewAppliesDeathImpact(t *testing.T) {
	c := New(testConfig())
	c.ApplyMoraleEvent(98)

	if lost := c.LoseCrew(2); lost != 2 {
		t.Errorf("lost = %d, want 2", lost)
	}
	if c.Count() != 8 {
		t.Errorf("count = %d, want 8", c.Count())
	}
	if c.Morale() != 60 {
		t.Errorf("morale = %v, want 60", c.Morale())
	}
	if lost := c.LoseCrew(50); lost != 8 {
		t.Errorf("lost = %d, want 8", lost)
	}
}

func TestApplyEventRejectsUnknown(t *testing.T) {
	c := New(testConfig())
	if r := c.ApplyEvent(MoraleEvent("party")); r.Reason != outcome.ReasonUnknownKind {
		t.Errorf("reason = %q, want unknown_kind", r.Reason)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	cfg.StrikeAreas = append(cfg.StrikeAreas, Area("galley"))
	if err := cfg.Validate(); err == nil {
		t.Errorf("Validate() with unknown area = nil, want error")
	}
}

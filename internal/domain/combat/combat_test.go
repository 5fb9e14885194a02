package combat

import (
	"testing"

	"github.com/MRamiBalles/hullbreach/internal/domain/item"
	"github.com/MRamiBalles/hullbreach/internal/domain/outcome"
	"github.com/MRamiBalles/hullbreach/internal/domain/resource"
	"github.com/MRamiBalles/hullbreach/internal/domain/stats"
)

func testConfig() Config {
	return Config{
		MaxShield:          100,
		MaxHull:            100,
		InitialShield:      30,
		InitialHull:        100,
		ShieldRechargeRate: 5,
		MissileDamage:      50,
		LaserDamage:        25,
		LaserEnergyCost:    10,
		FighterDamage:      10,
		BomberDamage:       30,
		BoardingTime:       10,
		MaxFighters:        2,
		MaxBombers:         1,
		RepairCost:         2,
	}
}

type fleet map[string]*State

func (f fleet) lookup(id string) (*State, bool) {
	s, ok := f[id]
	return s, ok
}

func newPair(t *testing.T) (*State, *State, fleet) {
	t.Helper()
	a := New("alpha", testConfig())
	b := New("bravo", testConfig())
	a.EnterCombat()
	b.EnterCombat()
	return a, b, fleet{"alpha": a, "bravo": b}
}

func TestShieldAbsorbsBeforeHull(t *testing.T) {
	s := New("alpha", testConfig())

	report, r := s.ReceiveDamage(50, DamageMissile)
	if !r.OK() {
		t.Fatalf("ReceiveDamage() = %+v", r)
	}
	if s.Shield() != 0 || s.Hull() != 80 {
		t.Errorf("shield=%v hull=%v, want 0 and 80", s.Shield(), s.Hull())
	}
	if report.Absorbed != 30 || report.HullLoss != 20 {
		t.Errorf("absorbed=%v hull loss=%v, want 30 and 20", report.Absorbed, report.HullLoss)
	}
}

func TestAbsorptionProperty(t *testing.T) {
	for _, shield := range []float64{0, 10, 30, 100} {
		for _, d := range []float64{0, 5, 30, 75, 150, 400} {
			cfg := testConfig()
			cfg.InitialShield = shield
			s := New("x", cfg)
			s.ReceiveDamage(d, DamageLaser)

			wantShield := shield - d
			if wantShield < 0 {
				wantShield = 0
			}
			overflow := d - shield
			if overflow < 0 {
				overflow = 0
			}
			wantHull := 100 - overflow
			if wantHull < 0 {
				wantHull = 0
			}
			if s.Shield() != wantShield || s.Hull() != wantHull {
				t.Errorf("shield %v dmg %v: got (%v, %v), want (%v, %v)", shield, d, s.Shield(), s.Hull(), wantShield, wantHull)
			}
		}
	}
}

func TestDestroyedIsFixedPoint(t *testing.T) {
	s := New("alpha", testConfig())
	s.EnterCombat()
	s.LaunchFighter()

	_, r := s.ReceiveDamage(500, DamageBomber)
	if !r.Terminal() {
		t.Fatalf("status = %q, want terminal", r.Status)
	}
	if !s.Destroyed() || s.Active() || s.Hull() != 0 {
		t.Fatalf("destroyed=%v active=%v hull=%v", s.Destroyed(), s.Active(), s.Hull())
	}
	if s.FightersDeployed() {
		t.Errorf("fighters still deployed after destruction")
	}

	_, r = s.ReceiveDamage(10, DamageLaser)
	if r.Reason != outcome.ReasonDestroyed {
		t.Errorf("reason = %q, want destroyed", r.Reason)
	}
	if s.Hull() != 0 || s.Shield() != 0 || s.Active() {
		t.Errorf("state changed after destruction")
	}
	if started, r := s.EnterCombat(); started || r.OK() {
		t.Errorf("EnterCombat() on destroyed ship accepted")
	}
	s.Advance(10, fleet{}.lookup)
	if s.Shield() != 0 {
		t.Errorf("shield regenerated on destroyed ship: %v", s.Shield())
	}
}

func TestShieldRegenOnlyInCombat(t *testing.T) {
	s := New("alpha", testConfig())
	s.Advance(2, fleet{}.lookup)
	if s.Shield() != 30 {
		t.Errorf("shield = %v out of combat, want 30", s.Shield())
	}
	s.EnterCombat()
	s.Advance(2, fleet{}.lookup)
	if s.Shield() != 40 {
		t.Errorf("shield = %v, want 40", s.Shield())
	}
	s.Advance(100, fleet{}.lookup)
	if s.Shield() != 100 {
		t.Errorf("shield = %v, want capped at 100", s.Shield())
	}
}

func TestLaunchCapacity(t *testing.T) {
	s := New("alpha", testConfig())
	s.LaunchFighter()
	s.LaunchFighter()
	if r := s.LaunchFighter(); r.Reason != outcome.ReasonCapacityFull {
		t.Errorf("third fighter reason = %q, want capacity_full", r.Reason)
	}
	if r := s.LaunchBomber(); !r.OK() {
		t.Errorf("LaunchBomber() = %+v", r)
	}
	if r := s.LaunchBomber(); r.Reason != outcome.ReasonCapacityFull {
		t.Errorf("second bomber reason = %q, want capacity_full", r.Reason)
	}
	if got := len(s.Fighters()); got != 2 {
		t.Errorf("fighters = %d, want 2", got)
	}
	if n := s.RecallCraft(); n != 3 {
		t.Errorf("RecallCraft() = %d, want 3", n)
	}
}

func TestFireMissileSpendsOrdnance(t *testing.T) {
	a, b, _ := newPair(t)
	inv, _ := item.NewInventory(map[item.ItemType]int{item.ItemMissile: 1})

	if _, r := a.FireMissile(b, inv); !r.OK() {
		t.Fatalf("FireMissile() = %+v", r)
	}
	if b.Hull() != 80 {
		t.Errorf("target hull = %v, want 80", b.Hull())
	}
	_, r := a.FireMissile(b, inv)
	if r.Reason != outcome.ReasonInsufficientResources {
		t.Errorf("reason = %q, want insufficient_resources", r.Reason)
	}
	if b.Hull() != 80 {
		t.Errorf("target hull changed on failed fire: %v", b.Hull())
	}
}

func TestFireLaserNeedsEnergy(t *testing.T) {
	a, b, _ := newPair(t)
	pool := resource.NewPool(resource.Config{Initial: resource.Amounts{Energy: 15}})

	if _, r := a.FireLaser(b, pool); !r.OK() {
		t.Fatalf("FireLaser() = %+v", r)
	}
	if _, r := a.FireLaser(b, pool); r.Reason != outcome.ReasonInsufficientResources {
		t.Errorf("reason = %q, want insufficient_resources", r.Reason)
	}
	if b.Shield() != 5 {
		t.Errorf("target shield = %v, want 5", b.Shield())
	}
}

func TestCraftStrike(t *testing.T) {
	a, b, _ := newPair(t)
	if _, r := a.CraftStrike(b); r.Reason != outcome.ReasonNoCraft {
		t.Errorf("reason = %q, want no_craft_deployed", r.Reason)
	}
	a.LaunchFighter()
	a.LaunchBomber()
	report, _ := a.CraftStrike(b)
	if report.Amount != 40 {
		t.Errorf("strike damage = %v, want 40", report.Amount)
	}
}

func TestBoardingCompletesAndCaptures(t *testing.T) {
	a, b, f := newPair(t)

	if r := a.AttemptBoard(b); !r.OK() {
		t.Fatalf("AttemptBoard() = %+v", r)
	}
	if r := a.AttemptBoard(b); r.Reason != outcome.ReasonAlreadyInProgress {
		t.Errorf("second board reason = %q", r.Reason)
	}
	for i := 0; i < 999; i++ {
		a.Advance(0.01, f.lookup)
	}
	if !b.Active() {
		t.Fatalf("target captured before boarding time elapsed")
	}
	events := a.Advance(0.01, f.lookup)
	if len(events) != 1 || events[0].Kind != EventBoardingComplete {
		t.Fatalf("events = %+v, want boarding_complete", events)
	}
	if b.Active() || !b.Captured() {
		t.Errorf("target active=%v captured=%v, want captured", b.Active(), b.Captured())
	}
	if a.IsBoarding() {
		t.Errorf("boarding flag still set")
	}
}

func TestBoardingCancelledWhenCombatEnds(t *testing.T) {
	a, b, f := newPair(t)
	a.AttemptBoard(b)
	a.Advance(5, f.lookup)

	b.ExitCombat()
	events := a.Advance(1, f.lookup)
	if len(events) != 1 || events[0].Kind != EventBoardingCancelled {
		t.Fatalf("events = %+v, want boarding_cancelled", events)
	}
	if b.Captured() {
		t.Errorf("target captured after cancellation")
	}
}

func TestBoardingCancelledWhenBoarderDestroyed(t *testing.T) {
	a, b, f := newPair(t)
	a.AttemptBoard(b)
	a.ReceiveDamage(1000, DamageMissile)
	if a.IsBoarding() {
		t.Errorf("boarding survived destruction")
	}
	a.Advance(20, f.lookup)
	if b.Captured() {
		t.Errorf("destroyed boarder captured the target")
	}
}

func TestBoardRequiresActiveTarget(t *testing.T) {
	a, b, _ := newPair(t)
	b.ExitCombat()
	if r := a.AttemptBoard(b); r.Reason != outcome.ReasonInvalidTarget {
		t.Errorf("reason = %q, want invalid_target", r.Reason)
	}
	if r := a.AttemptBoard(a); r.Reason != outcome.ReasonInvalidTarget {
		t.Errorf("self board reason = %q, want invalid_target", r.Reason)
	}
}

func TestWarpAwayDisengages(t *testing.T) {
	a, _, f := newPair(t)
	if r := a.AttemptWarpAway(3); !r.OK() {
		t.Fatalf("AttemptWarpAway() = %+v", r)
	}
	if !a.IsWarpingAway() {
		t.Errorf("warp-away flag not raised")
	}
	a.Advance(2, f.lookup)
	if !a.Active() {
		t.Fatalf("disengaged early")
	}
	events := a.Advance(1, f.lookup)
	if len(events) != 1 || events[0].Kind != EventDisengaged {
		t.Fatalf("events = %+v, want disengaged", events)
	}
	if a.Active() || a.IsWarpingAway() {
		t.Errorf("active=%v warpingAway=%v after disengage", a.Active(), a.IsWarpingAway())
	}
}

func TestSabotageBlocksWithoutTimerEffect(t *testing.T) {
	a, b, f := newPair(t)

	if r := a.SabotageWarp(b); !r.OK() {
		t.Fatalf("SabotageWarp() = %+v", r)
	}
	if !b.IsWarpingAway() {
		t.Fatalf("target flag not raised")
	}
	if r := b.AttemptWarpAway(1); r.Reason != outcome.ReasonWarpJammed {
		t.Errorf("reason = %q, want warp_jammed", r.Reason)
	}
	b.Advance(50, f.lookup)
	if !b.Active() {
		t.Errorf("sabotage granted disengagement")
	}
	if a.IsWarpingAway() {
		t.Errorf("saboteur gained a warp-away flag")
	}

	a2, c, f2 := newPair(t)
	c.AttemptWarpAway(4)
	c.Advance(1, f2.lookup)
	a2.SabotageWarp(c)
	c.Advance(3, f2.lookup)
	if c.Active() {
		t.Errorf("running warp-away timer was altered by sabotage")
	}

	b.ExitCombat()
	if b.IsWarpingAway() {
		t.Errorf("flag survived the end of combat")
	}
}

func TestRepair(t *testing.T) {
	s := New("alpha", testConfig())
	s.ReceiveDamage(60, DamageKinetic)
	pool := resource.NewPool(resource.Config{Initial: resource.Amounts{RawMaterial: 100}})

	if r := s.Repair(10, pool); r.Status != outcome.StatusAccepted {
		t.Fatalf("Repair(10) = %+v", r)
	}
	if s.Hull() != 80 || pool.Amount(resource.KindRawMaterial) != 80 {
		t.Errorf("hull=%v raw=%v, want 80 and 80", s.Hull(), pool.Amount(resource.KindRawMaterial))
	}
	if r := s.Repair(50, pool); r.Status != outcome.StatusClamped {
		t.Errorf("Repair(50) status = %q, want clamped", r.Status)
	}
	if s.Hull() != 100 {
		t.Errorf("hull = %v, want 100", s.Hull())
	}
	s.EnterCombat()
	if r := s.Repair(1, pool); r.Reason != outcome.ReasonInCombat {
		t.Errorf("reason = %q, want in_combat", r.Reason)
	}
}

func TestEnterCombatReportsStart(t *testing.T) {
	s := New("alpha", testConfig())
	if started, r := s.EnterCombat(); !started || !r.OK() {
		t.Fatalf("got started=%v %+v, want a fresh start", started, r)
	}
	if started, r := s.EnterCombat(); started || !r.OK() {
		t.Errorf("got started=%v %+v on second entry, want accepted without start", started, r)
	}
}

func TestMaxHullModifierToZeroDestroys(t *testing.T) {
	s := New("alpha", testConfig())
	s.EnterCombat()
	if !s.ApplyModifier(stats.Modifier{Stat: stats.StatMaxHull, Value: -1000}) {
		t.Fatalf("ApplyModifier(max_hull) = false")
	}
	if s.Hull() != 0 || !s.Destroyed() || s.Active() {
		t.Errorf("got hull=%v destroyed=%v active=%v, want 0 true false", s.Hull(), s.Destroyed(), s.Active())
	}
	if _, r := s.ReceiveDamage(10, DamageLaser); r.Reason != outcome.ReasonDestroyed {
		t.Errorf("got %+v, want rejected/destroyed", r)
	}

	shrunk := New("bravo", testConfig())
	shrunk.ApplyModifier(stats.Modifier{Stat: stats.StatMaxHull, Value: -40})
	if shrunk.Hull() != 60 || shrunk.Destroyed() {
		t.Errorf("got hull=%v destroyed=%v, want 60 false", shrunk.Hull(), shrunk.Destroyed())
	}
}

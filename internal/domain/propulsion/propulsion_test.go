package propulsion

import (
	"testing"

	"github.com/MRamiBalles/hullbreach/internal/domain/outcome"
	"github.com/MRamiBalles/hullbreach/internal/domain/resource"
	"github.com/MRamiBalles/hullbreach/internal/domain/stats"
)

func newTestDrive(t *testing.T, fuel float64) (*Drive, *resource.Pool) {
	t.Helper()
	pool := resource.NewPool(resource.Config{Initial: resource.Amounts{Fuel: fuel}})
	d := NewDrive(Config{
		MaxSpeed:       100,
		Acceleration:   5,
		Deceleration:   2,
		MaxWarpSpeed:   500,
		WarpChargeTime: 2,
		WarpFuelRate:   10,
	}, pool)
	return d, pool
}

func TestWarpChargeCruiseExhaust(t *testing.T) {
	d, pool := newTestDrive(t, 10)

	if r := d.StartWarp(); !r.OK() {
		t.Fatalf("StartWarp() = %+v, want accepted", r)
	}
	d.Advance(1)
	if d.Phase() != PhaseCharging {
		t.Fatalf("phase = %q after 1s, want charging", d.Phase())
	}
	if tr := d.Advance(1); tr != TransitionWarpCruising {
		t.Fatalf("transition = %q after 2s, want warp_cruising", tr)
	}
	if d.Speed() != 500 {
		t.Errorf("speed = %v, want 500", d.Speed())
	}
	if pool.Amount(resource.KindFuel) != 10 {
		t.Errorf("fuel = %v, want 10 untouched while charging", pool.Amount(resource.KindFuel))
	}

	if tr := d.Advance(1); tr != TransitionWarpExhausted {
		t.Fatalf("transition = %q, want warp_exhausted", tr)
	}
	if d.Phase() != PhaseIdle || d.Speed() != 0 || d.IsWarping() {
		t.Errorf("after exhaustion phase=%q speed=%v, want idle and 0", d.Phase(), d.Speed())
	}
	if pool.Amount(resource.KindFuel) != 0 {
		t.Errorf("fuel = %v, want 0", pool.Amount(resource.KindFuel))
	}
}

func TestWarpChargeIsTickSizeIndependent(t *testing.T) {
	coarse, _ := newTestDrive(t, 100)
	fine, _ := newTestDrive(t, 100)
	coarse.cfg.WarpChargeTime = 5
	fine.cfg.WarpChargeTime = 5

	coarse.StartWarp()
	fine.StartWarp()

	coarse.Advance(5)
	for i := 0; i < 499; i++ {
		fine.Advance(0.01)
	}
	if fine.Phase() != PhaseCharging {
		t.Fatalf("fine phase = %q after 4.99s, want charging", fine.Phase())
	}
	fine.Advance(0.01)

	if coarse.Phase() != PhaseCruising || fine.Phase() != PhaseCruising {
		t.Errorf("coarse=%q fine=%q, want both cruising", coarse.Phase(), fine.Phase())
	}
}

func TestStartWarpRejections(t *testing.T) {
	d, _ := newTestDrive(t, 0)
	if r := d.StartWarp(); r.Reason != outcome.ReasonInsufficientResources {
		t.Errorf("empty tank reason = %q, want insufficient_resources", r.Reason)
	}
	if d.Phase() != PhaseIdle {
		t.Errorf("phase = %q, want idle", d.Phase())
	}

	d, _ = newTestDrive(t, 10)
	d.StartWarp()
	if r := d.StartWarp(); r.Reason != outcome.ReasonAlreadyInProgress {
		t.Errorf("double start reason = %q, want already_in_progress", r.Reason)
	}

	d, _ = newTestDrive(t, 10)
	d.EnterCombat()
	if r := d.StartWarp(); r.Reason != outcome.ReasonInCombat {
		t.Errorf("combat reason = %q, want in_combat", r.Reason)
	}
}

func TestEnterCombatCancelsWarp(t *testing.T) {
	d, _ := newTestDrive(t, 50)
	d.StartWarp()
	d.Advance(2)

	if cancelled := d.EnterCombat(); !cancelled {
		t.Fatalf("EnterCombat() cancelled = false, want true")
	}
	if d.IsWarping() || d.Speed() != 0 {
		t.Errorf("warping=%v speed=%v, want stopped", d.IsWarping(), d.Speed())
	}
	if r := d.Accelerate(); r.Reason != outcome.ReasonInCombat {
		t.Errorf("Accelerate in combat reason = %q, want in_combat", r.Reason)
	}
	d.ExitCombat()
	if r := d.Accelerate(); !r.OK() {
		t.Errorf("Accelerate after combat = %+v, want accepted", r)
	}
}

func TestStopWarp(t *testing.T) {
	d, _ := newTestDrive(t, 50)
	if r := d.StopWarp(); r.Reason != outcome.ReasonNotWarping {
		t.Errorf("idle StopWarp reason = %q, want not_warping", r.Reason)
	}
	d.StartWarp()
	d.Advance(3)
	if r := d.StopWarp(); !r.OK() {
		t.Fatalf("StopWarp() = %+v", r)
	}
	if d.Speed() != 0 || d.Phase() != PhaseIdle {
		t.Errorf("speed=%v phase=%q, want 0 idle", d.Speed(), d.Phase())
	}
}

func TestNormalFlight(t *testing.T) {
	d, _ := newTestDrive(t, 50)

	d.Accelerate()
	for i := 0; i < 30; i++ {
		d.Advance(1)
	}
	if d.Speed() != 100 {
		t.Errorf("speed = %v, want capped at 100", d.Speed())
	}
	if !d.EngineActive() {
		t.Errorf("EngineActive() = false while moving")
	}

	d.StartWarp()
	if r := d.Accelerate(); r.Reason != outcome.ReasonWarpActive {
		t.Errorf("Accelerate during warp reason = %q, want warp_active", r.Reason)
	}
	d.StopWarp()

	d.Accelerate()
	d.Advance(4)
	d.Decelerate()
	d.Advance(5)
	if d.Speed() != 10 {
		t.Errorf("speed = %v, want 10", d.Speed())
	}
	d.Advance(100)
	if d.Speed() != 0 {
		t.Errorf("speed = %v, want 0", d.Speed())
	}
}

func TestRunningDryStalls(t *testing.T) {
	d, pool := newTestDrive(t, 5)
	d.Accelerate()
	d.Advance(1)
	pool.Drain(resource.KindFuel, 5)

	if tr := d.Advance(1); tr != TransitionStalled {
		t.Errorf("transition = %q, want stalled", tr)
	}
	if d.Speed() != 0 {
		t.Errorf("speed = %v, want 0", d.Speed())
	}
}

func TestApplyModifier(t *testing.T) {
	d, _ := newTestDrive(t, 5)
	if !d.ApplyModifier(stats.Modifier{Stat: stats.StatMaxWarpSpeed, Value: 100}) {
		t.Fatalf("ApplyModifier(max_warp_speed) = false")
	}
	if d.cfg.MaxWarpSpeed != 600 {
		t.Errorf("max warp = %v, want 600", d.cfg.MaxWarpSpeed)
	}
	if d.ApplyModifier(stats.Modifier{Stat: stats.StatMaxShield, Value: 10}) {
		t.Errorf("drive accepted a shield modifier")
	}
}

func TestChargeOvershootDoesNotDrainFuel(t *testing.T) {
	d, pool := newTestDrive(t, 10)
	d.StartWarp()
	if tr := d.Advance(3); tr != TransitionWarpCruising {
		t.Fatalf("transition = %q, want warp_cruising", tr)
	}
	if pool.Amount(resource.KindFuel) != 10 {
		t.Errorf("fuel = %v on the crossing tick, want 10", pool.Amount(resource.KindFuel))
	}
}

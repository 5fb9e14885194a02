package rules

import "testing"

func TestReachedToleratesSmallTicks(t *testing.T) {
	var small float64
	for i := 0; i < 500; i++ {
		small += 0.01
	}
	if !Reached(small, 5) {
		t.Errorf("500 x 0.01 = %.15f, want it to reach 5", small)
	}
	if !Reached(5, 5) {
		t.Errorf("Reached(5, 5) = false, want true")
	}
	if Reached(4.99, 5) {
		t.Errorf("Reached(4.99, 5) = true, want false")
	}
}

func TestAbsorb(t *testing.T) {
	cases := []struct {
		shield, damage     float64
		absorbed, overflow float64
	}{
		{30, 50, 30, 20},
		{100, 50, 50, 0},
		{0, 25, 0, 25},
		{10, 0, 0, 0},
	}
	for _, c := range cases {
		a, o := Absorb(c.shield, c.damage)
		if a != c.absorbed || o != c.overflow {
			t.Errorf("Absorb(%v, %v) = (%v, %v), want (%v, %v)", c.shield, c.damage, a, o, c.absorbed, c.overflow)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(120, 0, 100); got != 100 {
		t.Errorf("Clamp(120) = %v, want 100", got)
	}
	if got := Clamp(-3, 0, 100); got != 0 {
		t.Errorf("Clamp(-3) = %v, want 0", got)
	}
	if got := NonNegative(-0.5); got != 0 {
		t.Errorf("NonNegative(-0.5) = %v, want 0", got)
	}
}

func TestValidAmount(t *testing.T) {
	if ValidAmount(-1) {
		t.Errorf("ValidAmount(-1) = true, want false")
	}
	if !ValidAmount(0) {
		t.Errorf("ValidAmount(0) = false, want true")
	}
}

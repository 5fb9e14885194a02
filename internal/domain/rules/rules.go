// Package rules contains the pure numeric rules shared by the ship subsystems.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import "math"

// Epsilon absorbs float drift when progress is accumulated over many small ticks.
// 500 ticks of 0.01s must reach a 5s target exactly like one tick of 5s.
const Epsilon = 1e-9

// Reached reports whether accumulated progress has crossed target.
func Reached(progress, target float64) bool {
	return progress+Epsilon >= target
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NonNegative clamps v to [0, +inf).
func NonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// ValidAmount reports whether v is a finite, non-negative quantity.
func ValidAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// Absorb splits an incoming damage value between the shield and the hull.
// The shield takes min(shield, damage); whatever is left overflows to the hull.
func Absorb(shield, damage float64) (absorbed, overflow float64) {
	absorbed = math.Min(shield, damage)
	if absorbed < 0 {
		absorbed = 0
	}
	return absorbed, damage - absorbed
}

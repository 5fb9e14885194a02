// Package stats defines the ship stats that research benefits can modify.
// This package is PURE and must NOT import any infrastructure packages.
package stats

import "fmt"

// Stat names a tunable ship value.
type Stat string

const (
	StatMaxSpeed           Stat = "max_speed"
	StatAcceleration       Stat = "acceleration"
	StatMaxWarpSpeed       Stat = "max_warp_speed"
	StatWarpFuelRate       Stat = "warp_fuel_rate"
	StatMaxShield          Stat = "max_shield"
	StatShieldRechargeRate Stat = "shield_recharge_rate"
	StatMaxHull            Stat = "max_hull"
	StatMissileDamage      Stat = "missile_damage"
	StatLaserDamage        Stat = "laser_damage"
)

var known = map[Stat]bool{
	StatMaxSpeed:           true,
	StatAcceleration:       true,
	StatMaxWarpSpeed:       true,
	StatWarpFuelRate:       true,
	StatMaxShield:          true,
	StatShieldRechargeRate: true,
	StatMaxHull:            true,
	StatMissileDamage:      true,
	StatLaserDamage:        true,
}

// Valid reports whether s is one of the known stats.
func (s Stat) Valid() bool {
	return known[s]
}

// ParseStat validates a stat name read from configuration.
func ParseStat(name string) (Stat, error) {
	s := Stat(name)
	if !s.Valid() {
		return "", fmt.Errorf("unknown stat %q", name)
	}
	return s, nil
}

// Modifier is an additive change to one stat.
type Modifier struct {
	Stat  Stat    `yaml:"stat" json:"stat"`
	Value float64 `yaml:"value" json:"value"`
}

// Modifiable is implemented by subsystems that accept stat modifiers.
// ApplyModifier returns false when the subsystem does not own the stat.
type Modifiable interface {
	ApplyModifier(m Modifier) bool
}

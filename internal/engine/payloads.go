package engine

import (
	"github.com/MRamiBalles/hullbreach/internal/domain/crew"
	"github.com/MRamiBalles/hullbreach/internal/domain/propulsion"
	"github.com/MRamiBalles/hullbreach/internal/domain/stats"
)

// WarpPayload accompanies warp phase events.
type WarpPayload struct {
	Phase  propulsion.Phase `json:"phase"`
	Reason string           `json:"reason,omitempty"` // manual, fuel_exhausted, combat
	Speed  float64          `json:"speed"`
	Fuel   float64          `json:"fuel"`
}

// StrikePayload accompanies strike start/end.
type StrikePayload struct {
	Areas    []crew.Area `json:"areas"`
	Morale   float64     `json:"morale"`
	Duration float64     `json:"duration,omitempty"`
}

// MoralePayload accompanies morale changes.
type MoralePayload struct {
	Event  crew.MoraleEvent `json:"event,omitempty"`
	Delta  float64          `json:"delta"`
	Morale float64          `json:"morale"`
}

// CraftPayload accompanies launches and recalls.
type CraftPayload struct {
	Kind  string `json:"kind,omitempty"`
	Count int    `json:"count"`
}

// ResearchPayload accompanies research start/completion.
type ResearchPayload struct {
	NodeID   string           `json:"node_id"`
	Name     string           `json:"name"`
	Benefits []stats.Modifier `json:"benefits,omitempty"`
}

// CombatPayload accompanies combat flag changes and timed actions.
type CombatPayload struct {
	Reason   string  `json:"reason,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// RepairPayload accompanies hull repairs.
type RepairPayload struct {
	Requested float64 `json:"requested"`
	Hull      float64 `json:"hull"`
}

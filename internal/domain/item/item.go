// Package item defines the ship's discrete cargo: ordnance and research data.
// This package is PURE and must NOT import any infrastructure packages.
package item

import (
	"fmt"

	"github.com/MRamiBalles/hullbreach/internal/domain/outcome"
)

// ItemType represents the kind of item.
type ItemType string

const (
	ItemMissile      ItemType = "missile"       // Ordnance spent by FireMissile
	ItemResearchData ItemType = "research_data" // Spent to start research
	ItemRepairKit    ItemType = "repair_kit"    // Salvage, tradeable
)

// ItemDefinition provides metadata about an item type.
type ItemDefinition struct {
	Name        string
	Description string
	IsOrdnance  bool
	MaxStack    int // 0 means unbounded
}

// Registry contains all known items and their properties.
var Registry = map[ItemType]ItemDefinition{
	ItemMissile: {
		Name:        "Missile",
		Description: "Guided warhead. One is consumed per launch.",
		IsOrdnance:  true,
		MaxStack:    50,
	},
	ItemResearchData: {
		Name:        "Research Data",
		Description: "Sensor logs and salvage scans used to unlock technology.",
	},
	ItemRepairKit: {
		Name:        "Repair Kit",
		Description: "Prefabricated hull plating.",
		MaxStack:    20,
	},
}

// GetItem returns the definition for an item type.
func GetItem(t ItemType) (ItemDefinition, bool) {
	def, ok := Registry[t]
	return def, ok
}

// ParseItemType validates an item name coming from outside the core.
func ParseItemType(name string) (ItemType, error) {
	t := ItemType(name)
	if _, ok := Registry[t]; !ok {
		return "", outcome.Errorf(outcome.ReasonUnknownKind, "unknown item %q", name)
	}
	return t, nil
}

// ItemStack represents a quantity of a specific item type.
type ItemStack struct {
	Type     ItemType `json:"type"`
	Quantity int      `json:"quantity"`
}

// Inventory is the ship's ordnance and data store.
type Inventory struct {
	counts map[ItemType]int
}

// NewInventory creates an inventory with the given starting stock.
// Unknown items are rejected.
func NewInventory(initial map[ItemType]int) (*Inventory, error) {
	inv := &Inventory{counts: make(map[ItemType]int, len(Registry))}
	for t, n := range initial {
		if err := inv.Add(t, n); err != nil {
			return nil, fmt.Errorf("inventory: %w", err)
		}
	}
	return inv, nil
}

// Count returns how many of t are held.
func (inv *Inventory) Count(t ItemType) int {
	return inv.counts[t]
}

// Add stores n more of t, clamped to the item's stack limit.
func (inv *Inventory) Add(t ItemType, n int) error {
	def, ok := Registry[t]
	if !ok {
		return outcome.Errorf(outcome.ReasonUnknownKind, "unknown item %q", t)
	}
	if n < 0 {
		return outcome.Errorf(outcome.ReasonInvalidAmount, "cannot add %d %s", n, t)
	}
	total := inv.counts[t] + n
	if def.MaxStack > 0 && total > def.MaxStack {
		total = def.MaxStack
	}
	inv.counts[t] = total
	return nil
}

// TryConsume removes n of t only if all n are available.
func (inv *Inventory) TryConsume(t ItemType, n int) bool {
	if n < 0 || inv.counts[t] < n {
		return false
	}
	inv.counts[t] -= n
	return true
}

// Stacks lists the held items in registry order.
func (inv *Inventory) Stacks() []ItemStack {
	out := make([]ItemStack, 0, len(inv.counts))
	for _, t := range []ItemType{ItemMissile, ItemResearchData, ItemRepairKit} {
		if n := inv.counts[t]; n > 0 {
			out = append(out, ItemStack{Type: t, Quantity: n})
		}
	}
	return out
}

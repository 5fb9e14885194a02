// Package research models the technology tree and the single research track.
// This package is PURE and must NOT import any infrastructure packages.
package research

import (
	"fmt"
	"math"

	"github.com/zyedidia/generic/mapset"

	"github.com/MRamiBalles/hullbreach/internal/domain/item"
	"github.com/MRamiBalles/hullbreach/internal/domain/outcome"
	"github.com/MRamiBalles/hullbreach/internal/domain/resource"
	"github.com/MRamiBalles/hullbreach/internal/domain/rules"
	"github.com/MRamiBalles/hullbreach/internal/domain/stats"
)

// NodeConfig describes one research node.
type NodeConfig struct {
	ID            string           `yaml:"id" json:"id"`
	Name          string           `yaml:"name" json:"name"`
	Description   string           `yaml:"description" json:"description"`
	DataCost      int              `yaml:"data_cost" json:"data_cost"`
	ResourceCost  float64          `yaml:"resource_cost" json:"resource_cost"`
	Duration      float64          `yaml:"duration" json:"duration"`
	Prerequisites []string         `yaml:"prerequisites" json:"prerequisites"`
	Benefits      []stats.Modifier `yaml:"benefits" json:"benefits"`
}

// Config is the research tree definition.
type Config struct {
	Nodes []NodeConfig `yaml:"nodes" json:"nodes"`
}

// Validate checks costs, benefit stats, prerequisite references and that
// prerequisites form a directed acyclic graph.
func (c Config) Validate() error {
	byID := make(map[string]NodeConfig, len(c.Nodes))
	for _, n := range c.Nodes {
		if n.ID == "" {
			return fmt.Errorf("research: node with empty id")
		}
		if _, dup := byID[n.ID]; dup {
			return fmt.Errorf("research: duplicate node %q", n.ID)
		}
		if n.DataCost < 0 || !rules.ValidAmount(n.ResourceCost) {
			return fmt.Errorf("research: node %q has a negative cost", n.ID)
		}
		if !rules.ValidAmount(n.Duration) || n.Duration == 0 {
			return fmt.Errorf("research: node %q needs a positive duration", n.ID)
		}
		for _, b := range n.Benefits {
			if !b.Stat.Valid() {
				return fmt.Errorf("research: node %q has unknown stat %q", n.ID, b.Stat)
			}
			if math.IsNaN(b.Value) || math.IsInf(b.Value, 0) {
				return fmt.Errorf("research: node %q has a non-finite %s benefit", n.ID, b.Stat)
			}
		}
		byID[n.ID] = n
	}

	const (
		unvisited = iota
		visiting
		done
	)
	mark := make(map[string]int, len(byID))
	var visit func(id string) error
	visit = func(id string) error {
		switch mark[id] {
		case visiting:
			return fmt.Errorf("research: prerequisite cycle through %q", id)
		case done:
			return nil
		}
		mark[id] = visiting
		for _, p := range byID[id].Prerequisites {
			if _, ok := byID[p]; !ok {
				return fmt.Errorf("research: node %q requires unknown node %q", id, p)
			}
			if err := visit(p); err != nil {
				return err
			}
		}
		mark[id] = done
		return nil
	}
	for _, n := range c.Nodes {
		if err := visit(n.ID); err != nil {
			return err
		}
	}
	return nil
}

// DataStore is the item capability research data is paid from.
type DataStore interface {
	Count(t item.ItemType) int
	TryConsume(t item.ItemType, n int) bool
	Add(t item.ItemType, n int) error
}

// MaterialStore is the resource capability the resource cost is paid from.
type MaterialStore interface {
	HasEnough(k resource.Kind, amount float64) bool
	Consume(k resource.Kind, amount float64) bool
}

// Node is a research node with its runtime flags.
type Node struct {
	NodeConfig
	Unlocked  bool `json:"unlocked"`
	Completed bool `json:"completed"`
}

// State owns the tree, the unlocked set and the single in-progress track.
type State struct {
	nodes    map[string]*Node
	order    []string
	unlocked mapset.Set[string]

	active   string
	progress float64
}

// New validates cfg and builds the research state.
func New(cfg Config) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &State{
		nodes:    make(map[string]*Node, len(cfg.Nodes)),
		order:    make([]string, 0, len(cfg.Nodes)),
		unlocked: mapset.New[string](),
	}
	for _, n := range cfg.Nodes {
		s.nodes[n.ID] = &Node{NodeConfig: n}
		s.order = append(s.order, n.ID)
	}
	return s, nil
}

// InProgress returns the active node ID, or "".
func (s *State) InProgress() string { return s.active }

// Progress is the active track's fraction in [0,1].
func (s *State) Progress() float64 { return s.progress }

// IsUnlocked reports whether id has been researched.
func (s *State) IsUnlocked(id string) bool { return s.unlocked.Has(id) }

// Node returns a copy of the node.
func (s *State) Node(id string) (Node, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// StartResearch pays the node's cost and makes it the active track.
// Data and resource costs are deducted together or not at all.
func (s *State) StartResearch(id string, data DataStore, materials MaterialStore) outcome.Result {
	n, ok := s.nodes[id]
	if !ok {
		return outcome.Rejectf(outcome.ReasonUnknownNode, "unknown research %q", id)
	}
	if n.Unlocked {
		return outcome.Rejectf(outcome.ReasonAlreadyUnlocked, "%s already unlocked", n.Name)
	}
	if s.active != "" {
		return outcome.Rejectf(outcome.ReasonAlreadyInProgress, "researching %s", s.active)
	}
	for _, p := range n.Prerequisites {
		if !s.unlocked.Has(p) {
			return outcome.Rejectf(outcome.ReasonPrerequisitesMissing, "%s requires %s", n.Name, p)
		}
	}
	if data.Count(item.ItemResearchData) < n.DataCost || !materials.HasEnough(resource.KindRawMaterial, n.ResourceCost) {
		return outcome.Rejectf(outcome.ReasonInsufficientResources,
			"%s needs %d data and %.0f raw material", n.Name, n.DataCost, n.ResourceCost)
	}
	if !data.TryConsume(item.ItemResearchData, n.DataCost) {
		return outcome.Rejectf(outcome.ReasonInsufficientResources, "data store refused %d", n.DataCost)
	}
	if !materials.Consume(resource.KindRawMaterial, n.ResourceCost) {
		if err := data.Add(item.ItemResearchData, n.DataCost); err != nil {
			return outcome.Rejectf(outcome.ReasonInsufficientResources,
				"material store refused %.0f; restoring %d data failed: %v", n.ResourceCost, n.DataCost, err)
		}
		return outcome.Rejectf(outcome.ReasonInsufficientResources, "material store refused %.0f", n.ResourceCost)
	}

	s.active = id
	s.progress = 0
	return outcome.Acceptf("researching %s for %.0fs", n.Name, n.Duration)
}

// Advance moves the active track forward. It returns the node that
// completed this tick, if any; the caller applies its benefits.
func (s *State) Advance(dt float64) *Node {
	if s.active == "" || dt < 0 {
		return nil
	}
	n := s.nodes[s.active]
	s.progress += dt / n.Duration
	if !rules.Reached(s.progress, 1) {
		return nil
	}
	n.Unlocked = true
	n.Completed = true
	s.unlocked.Put(n.ID)
	s.active = ""
	s.progress = 0
	done := *n
	return &done
}

// Snapshot is the read-only view of research.
type Snapshot struct {
	InProgress string   `json:"in_progress,omitempty"`
	Progress   float64  `json:"progress"`
	Unlocked   []string `json:"unlocked"`
	Available  []string `json:"available"`
}

// Snapshot returns a copy of the public research state.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		InProgress: s.active,
		Progress:   s.progress,
		Unlocked:   make([]string, 0, s.unlocked.Size()),
		Available:  make([]string, 0),
	}
	for _, id := range s.order {
		n := s.nodes[id]
		if n.Unlocked {
			snap.Unlocked = append(snap.Unlocked, id)
			continue
		}
		ready := true
		for _, p := range n.Prerequisites {
			if !s.unlocked.Has(p) {
				ready = false
				break
			}
		}
		if ready {
			snap.Available = append(snap.Available, id)
		}
	}
	return snap
}

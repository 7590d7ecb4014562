// Package scoring holds the pure score-derivation rules: tier thresholds and
// the level curve. Nothing here touches storage.
package scoring

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Tier is a named score band.
type Tier struct {
	Name      string `yaml:"name" json:"name"`
	MinPoints int    `yaml:"min_points" json:"min_points"`
}

// defaultTiers is the built-in ascending threshold table.
var defaultTiers = []Tier{
	{Name: "Bronze", MinPoints: 0},
	{Name: "Silver", MinPoints: 1000},
	{Name: "Gold", MinPoints: 5000},
	{Name: "Platinum", MinPoints: 15000},
	{Name: "Diamond", MinPoints: 50000},
}

// TierTable maps scores onto an ascending list of tiers.
type TierTable struct {
	tiers []Tier
}

// DefaultTierTable returns the built-in Bronze..Diamond table.
func DefaultTierTable() *TierTable {
	return &TierTable{tiers: defaultTiers}
}

// LoadTierTable reads a tier table from a YAML file. The file must contain at
// least one tier and the lowest tier must start at 0.
func LoadTierTable(path string) (*TierTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tier table: %w", err)
	}
	var tiers []Tier
	if err := yaml.Unmarshal(raw, &tiers); err != nil {
		return nil, fmt.Errorf("parse tier table: %w", err)
	}
	return NewTierTable(tiers)
}

// NewTierTable validates and normalizes a tier list into a table.
func NewTierTable(tiers []Tier) (*TierTable, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("tier table must contain at least one tier")
	}
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinPoints < sorted[j].MinPoints })
	if sorted[0].MinPoints != 0 {
		return nil, fmt.Errorf("lowest tier must start at 0 points, got %d", sorted[0].MinPoints)
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i].MinPoints == sorted[i-1].MinPoints {
			return nil, fmt.Errorf("duplicate tier threshold %d", sorted[i].MinPoints)
		}
	}
	return &TierTable{tiers: sorted}, nil
}

// ForScore returns the highest tier whose threshold is <= score. Negative
// scores are treated as 0, so the result is always the lowest tier or above.
func (t *TierTable) ForScore(score int) string {
	if score < 0 {
		score = 0
	}
	name := t.tiers[0].Name
	for _, tier := range t.tiers {
		if score >= tier.MinPoints {
			name = tier.Name
		}
	}
	return name
}

// Lowest returns the name of the lowest tier (the reset target).
func (t *TierTable) Lowest() string {
	return t.tiers[0].Name
}

// Index returns the ordinal position of the named tier, or -1 if unknown.
// Useful for asserting monotonicity.
func (t *TierTable) Index(name string) int {
	for i, tier := range t.tiers {
		if tier.Name == name {
			return i
		}
	}
	return -1
}

// Tiers returns a copy of the ascending tier list.
func (t *TierTable) Tiers() []Tier {
	out := make([]Tier, len(t.tiers))
	copy(out, t.tiers)
	return out
}

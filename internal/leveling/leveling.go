// Package leveling maps accumulated XP to levels and tiers.
//
// A threshold table is a strictly increasing slice of XP minimums where
// thresholds[i] is the XP needed to hold level i. The table is pure
// data: the same XP and table always give the same level, so ledger
// replays stay deterministic.
package leveling

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds is the XP minimum per level, index = level.
// thresholds[0] must be 0 so every capability starts at level 0.
type Thresholds []int

// Level returns the highest level whose minimum the XP meets. XP exactly
// on a boundary lands on the higher level.
func Level(totalXP int, t Thresholds) int {
	for i, min := range t {
		if totalXP < min {
			return i - 1
		}
	}
	return len(t) - 1
}

// Validate checks the table is usable: non-empty, starts at zero, and
// strictly increasing.
func (t Thresholds) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("threshold table is empty")
	}
	if t[0] != 0 {
		return fmt.Errorf("thresholds[0] = %d, must be 0", t[0])
	}
	for i := 1; i < len(t); i++ {
		if t[i] <= t[i-1] {
			return fmt.Errorf("thresholds not strictly increasing at level %d (%d <= %d)", i, t[i], t[i-1])
		}
	}
	return nil
}

// band describes one stretch of the default table: `count` levels whose
// XP increments start at `base` and grow by `delta` per level.
type band struct {
	count int
	base  int
	delta int
}

// defaultBands widen the XP gaps as levels climb, so early levels come
// fast and late ones are a grind.
var defaultBands = []band{
	{count: 9, base: 200, delta: 150},      // novice, levels 1-9
	{count: 20, base: 800, delta: 200},     // adept
	{count: 40, base: 2000, delta: 300},    // expert
	{count: 50, base: 8000, delta: 500},    // master
	{count: 80, base: 15000, delta: 1000},  // grandmaster
	{count: 100, base: 30000, delta: 2000}, // legend
}

// DefaultThresholds generates the built-in threshold table (300 levels).
func DefaultThresholds() Thresholds {
	t := Thresholds{0}
	xp := 0
	for _, b := range defaultBands {
		for i := 0; i < b.count; i++ {
			xp += b.base + i*b.delta
			t = append(t, xp)
		}
	}
	return t
}

// LoadFile reads a custom threshold table from a YAML file of the form
//
//	thresholds: [0, 200, 400, ...]
func LoadFile(path string) (Thresholds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read threshold file: %w", err)
	}
	var doc struct {
		Thresholds Thresholds `yaml:"thresholds"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse threshold file %s: %w", path, err)
	}
	if err := doc.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("threshold file %s: %w", path, err)
	}
	return doc.Thresholds, nil
}

// Tier is a named band of levels.
type Tier struct {
	Name string `json:"name"`
	Min  int    `json:"min_level"`
	Max  int    `json:"max_level"` // inclusive; -1 = unbounded
	Icon string `json:"icon"`
}

var tiers = []Tier{
	{Name: "Novice", Min: 0, Max: 10, Icon: "🌱"},
	{Name: "Adept", Min: 11, Max: 30, Icon: "⚔️"},
	{Name: "Expert", Min: 31, Max: 70, Icon: "🔥"},
	{Name: "Master", Min: 71, Max: 120, Icon: "💎"},
	{Name: "Grandmaster", Min: 121, Max: 200, Icon: "👑"},
	{Name: "Legend", Min: 201, Max: -1, Icon: "🌟"},
}

// TierFor returns the tier containing the given level.
func TierFor(level int) Tier {
	for _, t := range tiers {
		if level >= t.Min && (t.Max < 0 || level <= t.Max) {
			return t
		}
	}
	return tiers[len(tiers)-1]
}

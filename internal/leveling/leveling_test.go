package leveling_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arenahq/arena/internal/leveling"
)

func TestLevel_Boundaries(t *testing.T) {
	table := leveling.Thresholds{0, 100, 300, 600}

	tests := []struct {
		xp   int
		want int
	}{
		{0, 0},
		{99, 0},
		{100, 1}, // exact boundary lands on the higher level
		{299, 1},
		{300, 2},
		{600, 3},
		{10_000, 3}, // past the table caps at the top level
	}
	for _, tt := range tests {
		if got := leveling.Level(tt.xp, table); got != tt.want {
			t.Errorf("Level(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestLevel_Monotonic(t *testing.T) {
	table := leveling.DefaultThresholds()
	prev := 0
	for xp := 0; xp <= 100_000; xp += 37 {
		lvl := leveling.Level(xp, table)
		if lvl < prev {
			t.Fatalf("Level(%d) = %d dropped below previous %d", xp, lvl, prev)
		}
		prev = lvl
	}
}

func TestDefaultThresholds_Shape(t *testing.T) {
	table := leveling.DefaultThresholds()
	if err := table.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(table) != 300 {
		t.Errorf("len = %d, want 300", len(table))
	}
	if table[1] != 200 {
		t.Errorf("thresholds[1] = %d, want 200", table[1])
	}
	// Level 2 needs 200 + 350 XP: increments grow inside a band.
	if table[2] != 550 {
		t.Errorf("thresholds[2] = %d, want 550", table[2])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		table leveling.Thresholds
		ok    bool
	}{
		{"empty", leveling.Thresholds{}, false},
		{"nonzero start", leveling.Thresholds{100, 200}, false},
		{"not increasing", leveling.Thresholds{0, 200, 200}, false},
		{"valid", leveling.Thresholds{0, 100, 300}, true},
	}
	for _, tt := range tests {
		err := tt.table.Validate()
		if (err == nil) != tt.ok {
			t.Errorf("%s: Validate() = %v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "levels.yaml")
	if err := os.WriteFile(path, []byte("thresholds: [0, 50, 150, 400]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	table, err := leveling.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := leveling.Level(150, table); got != 2 {
		t.Errorf("Level(150) = %d, want 2", got)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("thresholds: [10, 20]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := leveling.LoadFile(bad); err == nil {
		t.Error("LoadFile accepted a table not starting at 0")
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{0, "Novice"},
		{10, "Novice"},
		{11, "Adept"},
		{70, "Expert"},
		{120, "Master"},
		{200, "Grandmaster"},
		{201, "Legend"},
		{999, "Legend"},
	}
	for _, tt := range tests {
		if got := leveling.TierFor(tt.level); got.Name != tt.want {
			t.Errorf("TierFor(%d) = %q, want %q", tt.level, got.Name, tt.want)
		}
	}
}

package registry_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arenahq/arena/internal/descriptor"
	"github.com/arenahq/arena/internal/registry"
)

func writeDescriptor(t *testing.T, root, rel, name, desc string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := "---\nname: " + name + "\ndescription: " + desc + "\n---\nbody\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestDiscover_ScanAndPrecedence(t *testing.T) {
	global := t.TempDir()
	project := t.TempDir()

	writeDescriptor(t, global, "development/builder.md", "builder", "the global builder")
	writeDescriptor(t, global, "security/auditor.md", "auditor", "security auditor")
	writeDescriptor(t, project, "development/builder.md", "builder", "the project builder")

	r := registry.New([]registry.Root{
		{Path: global, Label: "global"},
		{Path: project, Label: "project"},
	})

	snap, err := r.Discover(false)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if len(snap.Names) != 2 {
		t.Fatalf("Names = %v, want 2 capabilities", snap.Names)
	}
	b, ok := snap.Lookup("builder")
	if !ok {
		t.Fatal("builder not found")
	}
	if b.Summary != "the project builder" {
		t.Errorf("Summary = %q, want project root to win", b.Summary)
	}
	if b.SourceRoot != "project" {
		t.Errorf("SourceRoot = %q, want %q", b.SourceRoot, "project")
	}
}

func TestDiscover_CachesWithinTTL(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, root, "data/etl.md", "etl", "pipeline specialist")

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := registry.New(
		[]registry.Root{{Path: root, Label: "only"}},
		registry.WithClock(func() time.Time { return clock }),
	)

	first, err := r.Discover(false)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	// New file within the TTL window must not appear.
	writeDescriptor(t, root, "data/late.md", "late", "added after the scan")

	second, err := r.Discover(false)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if second != first {
		t.Error("second Discover within TTL returned a new snapshot")
	}

	// Past the TTL the rescan picks it up.
	clock = clock.Add(registry.DefaultTTL + time.Second)
	third, err := r.Discover(false)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if _, ok := third.Lookup("late"); !ok {
		t.Error("stale cache was not refreshed after TTL expiry")
	}
}

func TestDiscover_ForceBypassesCache(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, root, "quality/tester.md", "tester", "test specialist")

	r := registry.New([]registry.Root{{Path: root, Label: "only"}})
	if _, err := r.Discover(false); err != nil {
		t.Fatalf("Discover: %v", err)
	}

	writeDescriptor(t, root, "quality/linter.md", "linter", "style enforcer")

	snap, err := r.Discover(true)
	if err != nil {
		t.Fatalf("Discover(force): %v", err)
	}
	if _, ok := snap.Lookup("linter"); !ok {
		t.Error("forced refresh did not rescan")
	}
}

func TestDiscover_EmptyAndMissingRoots(t *testing.T) {
	r := registry.New([]registry.Root{
		{Path: filepath.Join(t.TempDir(), "does-not-exist"), Label: "missing"},
		{Path: t.TempDir(), Label: "empty"},
	})

	snap, err := r.Discover(false)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(snap.Names) != 0 {
		t.Errorf("Names = %v, want empty", snap.Names)
	}
	if len(snap.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none for absent roots", snap.Warnings)
	}
}

func TestDiscover_BadFileSkippedWithWarning(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, root, "development/good.md", "good", "valid descriptor")
	if err := os.WriteFile(filepath.Join(root, "development", "bad.md"),
		[]byte("---\ndescription: no name here\n---\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	snap, err := registry.New([]registry.Root{{Path: root, Label: "only"}}).Discover(false)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if _, ok := snap.Lookup("good"); !ok {
		t.Error("good descriptor missing: one bad file must not abort the scan")
	}
	if len(snap.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want exactly one", snap.Warnings)
	}
}

func TestSearch_Filters(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, root, "development/pyro.md", "pyro", "elite python and fastapi backend developer")
	writeDescriptor(t, root, "development/fronter.md", "fronter", "react frontend specialist")
	writeDescriptor(t, root, "security/guard.md", "guard", "simple security checks for beginners")

	snap, err := registry.New([]registry.Root{{Path: root, Label: "only"}}).Discover(false)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	got := registry.Search(snap, registry.Filters{Category: "development"})
	if len(got) != 2 {
		t.Errorf("category filter: got %d, want 2", len(got))
	}

	got = registry.Search(snap, registry.Filters{TechStack: []string{"python", "backend"}})
	if len(got) != 1 || got[0].Name != "pyro" {
		t.Errorf("tech filter: got %v, want [pyro]", names(got))
	}

	got = registry.Search(snap, registry.Filters{MaxDifficulty: "beginner"})
	if len(got) != 1 || got[0].Name != "guard" {
		t.Errorf("difficulty range: got %v, want [guard]", names(got))
	}

	got = registry.Search(snap, registry.Filters{Query: "react"})
	if len(got) == 0 || got[0].Name != "fronter" {
		t.Errorf("query: got %v, want fronter first", names(got))
	}

	got = registry.Search(snap, registry.Filters{Query: "python", Category: "security"})
	if len(got) != 0 {
		t.Errorf("conjunctive filters: got %v, want none", names(got))
	}
}

func names(ds []*descriptor.Descriptor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Name
	}
	return out
}

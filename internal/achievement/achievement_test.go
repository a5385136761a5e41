package achievement_test

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/arenahq/arena/internal/achievement"
)

func TestEvaluate_Builtins(t *testing.T) {
	e := achievement.NewEngine(nil, zerolog.Nop())

	stats := achievement.Stats{
		Capability:    "builder",
		EventCount:    5,
		SuccessCount:  5,
		CurrentStreak: 5,
	}

	unlocks := e.Evaluate(stats, map[string]bool{})
	got := map[string]bool{}
	for _, u := range unlocks {
		got[u.Key] = true
	}
	for _, want := range []string{"first-blood", "hot-streak"} {
		if !got[want] {
			t.Errorf("expected %s to unlock, got %v", want, unlocks)
		}
	}
	if got["veteran"] {
		t.Error("veteran unlocked at 5 events")
	}
	if got["flawless-ten"] {
		t.Error("flawless-ten unlocked at 5 successes")
	}
}

func TestEvaluate_ExactlyOnce(t *testing.T) {
	e := achievement.NewEngine(nil, zerolog.Nop())
	stats := achievement.Stats{SuccessCount: 1}

	first := e.Evaluate(stats, map[string]bool{})
	if len(first) != 1 || first[0].Key != "first-blood" {
		t.Fatalf("first pass = %v, want [first-blood]", first)
	}

	unlocked := map[string]bool{"first-blood": true}
	second := e.Evaluate(stats, unlocked)
	if len(second) != 0 {
		t.Errorf("second pass = %v, want none: predicate still true but already unlocked", second)
	}
}

func TestEvaluate_PanicIsolation(t *testing.T) {
	rules := []achievement.Rule{
		{Key: "broken", Name: "Broken", XPReward: 10,
			Predicate: func(achievement.Stats) bool { panic("boom") }},
		{Key: "fine", Name: "Fine", XPReward: 10,
			Predicate: func(s achievement.Stats) bool { return s.EventCount >= 1 }},
	}
	e := achievement.NewEngine(rules, zerolog.Nop())

	unlocks := e.Evaluate(achievement.Stats{EventCount: 1}, map[string]bool{})
	if len(unlocks) != 1 || unlocks[0].Key != "fine" {
		t.Fatalf("unlocks = %v, want the rule after the panicking one to still run", unlocks)
	}
}

func TestEvaluate_NilPredicateNeverFires(t *testing.T) {
	e := achievement.NewEngine([]achievement.Rule{{Key: "ghost"}}, zerolog.Nop())
	if got := e.Evaluate(achievement.Stats{EventCount: 100}, map[string]bool{}); len(got) != 0 {
		t.Errorf("nil predicate fired: %v", got)
	}
}

func TestEvaluate_FlawlessTenNeedsZeroFailures(t *testing.T) {
	e := achievement.NewEngine(nil, zerolog.Nop())
	stats := achievement.Stats{EventCount: 11, SuccessCount: 10, FailureCount: 1}

	for _, u := range e.Evaluate(stats, map[string]bool{}) {
		if u.Key == "flawless-ten" {
			t.Error("flawless-ten unlocked with a failure on record")
		}
	}
}

// Package achievement evaluates unlock rules against ledger-derived
// statistics.
//
// Rules are data plus a predicate. The engine guarantees exactly-once
// unlocks (the caller supplies the already-unlocked set) and isolates
// predicate panics to the single rule that raised them.
package achievement

import (
	"github.com/rs/zerolog"
)

// Stats is the snapshot of one capability's progression an evaluation
// pass runs against. Bonus events from earlier unlocks are excluded
// from the counters by the ledger, so predicates see only real usage.
type Stats struct {
	Capability    string
	TotalXP       int
	Level         int
	EventCount    int
	SuccessCount  int
	FailureCount  int
	CurrentStreak int
}

// Rule is one achievement: a stable key, display metadata, the XP the
// unlock is worth, and the predicate deciding it.
type Rule struct {
	Key         string
	Name        string
	Description string
	XPReward    int
	Predicate   func(Stats) bool
}

// Unlock is one newly earned achievement.
type Unlock struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	XPReward int    `json:"xp_reward"`
}

// Engine evaluates a fixed rule set.
type Engine struct {
	rules []Rule
	log   zerolog.Logger
}

// NewEngine creates an Engine. Nil rules means the built-in set.
func NewEngine(rules []Rule, log zerolog.Logger) *Engine {
	if rules == nil {
		rules = BuiltinRules()
	}
	return &Engine{rules: rules, log: log}
}

// Rules returns the engine's rule set in evaluation order.
func (e *Engine) Rules() []Rule { return e.rules }

// Evaluate returns the rules that newly trigger for the given stats.
// Already-unlocked keys are skipped, so repeated evaluation of a
// triggering rule yields it at most once across the ledger's lifetime.
func (e *Engine) Evaluate(stats Stats, unlocked map[string]bool) []Unlock {
	var out []Unlock
	for _, rule := range e.rules {
		if unlocked[rule.Key] {
			continue
		}
		if e.safeCheck(rule, stats) {
			out = append(out, Unlock{Key: rule.Key, Name: rule.Name, XPReward: rule.XPReward})
		}
	}
	return out
}

// safeCheck runs one predicate, converting a panic into a logged miss.
// A broken rule disables only itself for this pass.
func (e *Engine) safeCheck(rule Rule, stats Stats) (triggered bool) {
	defer func() {
		if r := recover(); r != nil {
			triggered = false
			e.log.Error().
				Str("achievement", rule.Key).
				Str("capability", stats.Capability).
				Interface("panic", r).
				Msg("achievement predicate panicked")
		}
	}()
	if rule.Predicate == nil {
		return false
	}
	return rule.Predicate(stats)
}

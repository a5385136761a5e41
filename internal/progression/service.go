// Package progression is the facade external surfaces go through. It
// owns the ledger, the achievement engine, the threshold table, and the
// notification hook, and enforces the invariants that tie them
// together: unknown capabilities are rejected, achievement bonuses land
// exactly once, and every state change emits a notification.
package progression

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/arenahq/arena/internal/achievement"
	"github.com/arenahq/arena/internal/ledger"
	"github.com/arenahq/arena/internal/leveling"
	"github.com/arenahq/arena/internal/notify"
	"github.com/arenahq/arena/internal/registry"
)

// ErrUnknownCapability rejects events against names never discovered
// and never recorded.
var ErrUnknownCapability = errors.New("unknown capability")

// Service wires discovery and progression together.
type Service struct {
	registry   *registry.Registry
	store      *ledger.Store
	engine     *achievement.Engine
	thresholds leveling.Thresholds
	emitter    notify.Emitter
	log        zerolog.Logger
}

// New creates the facade. A nil emitter discards notifications.
func New(reg *registry.Registry, store *ledger.Store, engine *achievement.Engine,
	thresholds leveling.Thresholds, emitter notify.Emitter, log zerolog.Logger) *Service {
	if emitter == nil {
		emitter = notify.NopEmitter{}
	}
	return &Service{
		registry:   reg,
		store:      store,
		engine:     engine,
		thresholds: thresholds,
		emitter:    emitter,
		log:        log,
	}
}

// Registry exposes the underlying registry for discovery surfaces.
func (s *Service) Registry() *registry.Registry { return s.registry }

// RecordResult is what one RecordEvent call produced.
type RecordResult struct {
	Event         *ledger.Event        `json:"event"`
	Progress      *ledger.Progress     `json:"progress"`
	PreviousLevel int                  `json:"previous_level"`
	LevelUp       bool                 `json:"level_up"`
	XPGained      int                  `json:"xp_gained"`
	Unlocks       []achievement.Unlock `json:"unlocks,omitempty"`
}

// RecordEvent appends one usage event and runs the full progression
// cycle: reject unknown names, accrue XP, evaluate achievements once,
// append their bonus events, and emit notifications. Bonus events never
// re-enter evaluation, so the pass is bounded.
func (s *Service) RecordEvent(ctx context.Context, capability, taskLabel, outcome string, baseXP int) (*RecordResult, error) {
	known, err := s.isKnown(capability)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, fmt.Errorf("%w: %q is not in any descriptor root and has no recorded history", ErrUnknownCapability, capability)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prev, err := s.store.ProgressFor(capability)
	if err != nil {
		return nil, err
	}
	prevLevel := 0
	if prev != nil {
		prevLevel = prev.Level
	}

	ev, prog, err := s.store.Append(ledger.AppendParams{
		Capability: capability,
		TaskLabel:  taskLabel,
		Outcome:    outcome,
		BaseXP:     baseXP,
	})
	if err != nil {
		return nil, err
	}

	result := &RecordResult{
		Event:         ev,
		Progress:      prog,
		PreviousLevel: prevLevel,
		XPGained:      baseXP,
	}

	unlocks, err := s.evaluateAchievements(capability, prog, ev.ID)
	if err != nil {
		return nil, err
	}
	result.Unlocks = unlocks
	for _, u := range unlocks {
		result.XPGained += u.XPReward
	}

	// Bonus events may have moved the summary; report the final state.
	final, err := s.store.ProgressFor(capability)
	if err != nil {
		return nil, err
	}
	result.Progress = final
	result.LevelUp = final.Level > prevLevel

	s.notify(capability, result)
	return result, nil
}

func (s *Service) isKnown(capability string) (bool, error) {
	if s.registry != nil {
		snap, err := s.registry.Discover(false)
		if err != nil {
			return false, err
		}
		if _, ok := snap.Lookup(capability); ok {
			return true, nil
		}
	}
	// Progression outlives descriptor files: once recorded, always known.
	return s.store.KnownCapability(capability)
}

// evaluateAchievements runs one pass over the rule set and appends a
// bonus event per new unlock. The unlocked set read before the pass
// plus the primary-keyed unlocks table makes re-unlocks impossible.
func (s *Service) evaluateAchievements(capability string, prog *ledger.Progress, eventID int64) ([]achievement.Unlock, error) {
	if s.engine == nil {
		return nil, nil
	}
	unlocked, err := s.store.UnlockedFor(capability)
	if err != nil {
		return nil, err
	}

	stats := achievement.Stats{
		Capability:    capability,
		TotalXP:       prog.TotalXP,
		Level:         prog.Level,
		EventCount:    prog.EventCount,
		SuccessCount:  prog.SuccessCount,
		FailureCount:  prog.FailureCount,
		CurrentStreak: prog.CurrentStreak,
	}

	unlocks := s.engine.Evaluate(stats, unlocked)
	for _, u := range unlocks {
		if err := s.store.RecordUnlock(capability, u.Key, u.XPReward, eventID); err != nil {
			return nil, err
		}
		if _, _, err := s.store.Append(ledger.AppendParams{
			Capability: capability,
			TaskLabel:  ledger.BonusLabelPrefix + u.Key,
			Outcome:    ledger.OutcomeSuccess,
			BonusXP:    u.XPReward,
		}); err != nil {
			return nil, err
		}
		s.log.Info().
			Str("capability", capability).
			Str("achievement", u.Key).
			Int("xp_reward", u.XPReward).
			Msg("achievement unlocked")
	}
	return unlocks, nil
}

func (s *Service) notify(capability string, r *RecordResult) {
	s.emitter.Emit(notify.New(notify.TypeXPGained, capability, map[string]any{
		"xp":       r.XPGained,
		"total_xp": r.Progress.TotalXP,
		"outcome":  r.Event.Outcome,
	}))
	if r.LevelUp {
		tier := leveling.TierFor(r.Progress.Level)
		s.emitter.Emit(notify.New(notify.TypeLevelUp, capability, map[string]any{
			"level":          r.Progress.Level,
			"previous_level": r.PreviousLevel,
			"tier":           tier.Name,
		}))
	}
	for _, u := range r.Unlocks {
		s.emitter.Emit(notify.New(notify.TypeAchievementUnlocked, capability, map[string]any{
			"key":       u.Key,
			"name":      u.Name,
			"xp_reward": u.XPReward,
		}))
	}
}

// ProgressView is the externally reported progression state.
type ProgressView struct {
	*ledger.Progress
	Tier     leveling.Tier         `json:"tier"`
	Unlocked []ledger.UnlockRecord `json:"unlocked,omitempty"`
}

// Progress returns the current state for one capability, or nil if it
// was never recorded.
func (s *Service) Progress(capability string) (*ProgressView, error) {
	prog, err := s.store.ProgressFor(capability)
	if err != nil {
		return nil, err
	}
	if prog == nil {
		return nil, nil
	}
	records, err := s.store.UnlockRecords(capability)
	if err != nil {
		return nil, err
	}
	return &ProgressView{
		Progress: prog,
		Tier:     leveling.TierFor(prog.Level),
		Unlocked: records,
	}, nil
}

// Leaderboard ranks recorded capabilities by total XP.
func (s *Service) Leaderboard(topN int) ([]ledger.LeaderboardEntry, error) {
	return s.store.Leaderboard(topN)
}

// Verify re-checks stored summaries against the raw event log.
func (s *Service) Verify() error { return s.store.Verify() }

// Rebuild regenerates summaries from events after corruption.
func (s *Service) Rebuild() error { return s.store.Rebuild() }

// History adapts the ledger to the recommendation engine's view.
type History struct {
	store *ledger.Store
}

// NewHistory wraps a ledger store for the scorer.
func NewHistory(store *ledger.Store) *History {
	return &History{store: store}
}

func (h *History) SuccessRate(name string) (float64, bool) {
	p, err := h.store.ProgressFor(name)
	if err != nil || p == nil || p.EventCount == 0 {
		return 0, false
	}
	return float64(p.SuccessCount) / float64(p.EventCount), true
}

func (h *History) Level(name string) int {
	p, err := h.store.ProgressFor(name)
	if err != nil || p == nil {
		return 0
	}
	return p.Level
}

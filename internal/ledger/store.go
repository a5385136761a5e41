// Package ledger is the append-only XP event store.
//
// Events are immutable: once appended they are never updated or
// deleted. A derived progress row per capability is maintained
// incrementally on each append and must always equal a fresh fold over
// the raw events; Verify checks that, Rebuild restores it.
package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// BonusLabelPrefix marks events appended by achievement unlocks. Bonus
// events add XP but are excluded from the usage counters, so replaying
// the log never re-triggers the unlocks that produced them.
const BonusLabelPrefix = "achievement:"

// Outcome of one recorded task event.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ValidateOutcome checks an outcome string.
func ValidateOutcome(o string) error {
	switch o {
	case OutcomeSuccess, OutcomeFailure:
		return nil
	default:
		return fmt.Errorf("invalid outcome %q: must be %q or %q", o, OutcomeSuccess, OutcomeFailure)
	}
}

// Event is one immutable XP ledger entry.
type Event struct {
	ID         int64  `json:"id"`
	Capability string `json:"capability"`
	TaskLabel  string `json:"task_label,omitempty"`
	Outcome    string `json:"outcome"`
	BaseXP     int    `json:"base_xp"`
	BonusXP    int    `json:"bonus_xp"`
	CreatedAt  string `json:"created_at"`
}

// IsBonus reports whether the event was appended by an achievement
// unlock rather than a real task.
func (e Event) IsBonus() bool {
	return strings.HasPrefix(e.TaskLabel, BonusLabelPrefix)
}

// Progress is the derived per-capability summary.
type Progress struct {
	Capability    string `json:"capability"`
	TotalXP       int    `json:"total_xp"`
	Level         int    `json:"level"`
	EventCount    int    `json:"event_count"`
	SuccessCount  int    `json:"success_count"`
	FailureCount  int    `json:"failure_count"`
	CurrentStreak int    `json:"current_streak"`
	FirstEventID  int64  `json:"first_event_id"`
	UpdatedAt     string `json:"updated_at"`
}

// UnlockRecord is one persisted achievement unlock.
type UnlockRecord struct {
	Capability  string `json:"capability"`
	Achievement string `json:"achievement"`
	XPReward    int    `json:"xp_reward"`
	EventID     int64  `json:"event_id"`
	UnlockedAt  string `json:"unlocked_at"`
}

// LeaderboardEntry is one row of the XP ranking.
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	Capability string `json:"capability"`
	TotalXP    int    `json:"total_xp"`
	Level      int    `json:"level"`
	EventCount int    `json:"event_count"`
}

// LevelFn maps total XP to a level. The store persists the level it is
// given so progress rows stay consistent with the active table.
type LevelFn func(totalXP int) int

// Config holds ledger store configuration.
type Config struct {
	DataDir string
	LevelFn LevelFn
}

// DefaultConfig returns the default configuration for the ledger store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir: filepath.Join(home, ".arena"),
	}
}

// Store is the XP ledger backed by SQLite.
type Store struct {
	db  *sql.DB
	cfg Config

	mu      sync.Mutex
	corrupt *CorruptLedgerError
}

// New opens (or creates) the ledger database, runs migrations, and
// verifies the derived summaries against the raw event log. A failed
// verification does not block opening: reads still work, writes are
// refused until Rebuild.
func New(cfg Config) (*Store, error) {
	if cfg.LevelFn == nil {
		return nil, fmt.Errorf("ledger: config needs a LevelFn")
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("ledger: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "ledger.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("ledger: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("ledger: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("ledger: migration: %w", err)
	}

	if verr := s.Verify(); verr != nil {
		var cerr *CorruptLedgerError
		if !asCorrupt(verr, &cerr) {
			return nil, verr
		}
		// Keep the store readable; Append refuses until Rebuild.
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			capability TEXT    NOT NULL,
			task_label TEXT    NOT NULL DEFAULT '',
			outcome    TEXT    NOT NULL CHECK (outcome IN ('success', 'failure')),
			base_xp    INTEGER NOT NULL DEFAULT 0,
			bonus_xp   INTEGER NOT NULL DEFAULT 0,
			created_at TEXT    NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_events_capability ON events(capability, id);

		CREATE TABLE IF NOT EXISTS progress (
			capability     TEXT PRIMARY KEY,
			total_xp       INTEGER NOT NULL DEFAULT 0,
			level          INTEGER NOT NULL DEFAULT 0,
			event_count    INTEGER NOT NULL DEFAULT 0,
			success_count  INTEGER NOT NULL DEFAULT 0,
			failure_count  INTEGER NOT NULL DEFAULT 0,
			current_streak INTEGER NOT NULL DEFAULT 0,
			first_event_id INTEGER NOT NULL,
			updated_at     TEXT    NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_progress_xp ON progress(total_xp DESC, first_event_id ASC);

		CREATE TABLE IF NOT EXISTS unlocks (
			capability  TEXT    NOT NULL,
			achievement TEXT    NOT NULL,
			xp_reward   INTEGER NOT NULL DEFAULT 0,
			event_id    INTEGER NOT NULL,
			unlocked_at TEXT    NOT NULL DEFAULT (datetime('now')),
			PRIMARY KEY (capability, achievement)
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AppendParams holds the input for one new event.
type AppendParams struct {
	Capability string
	TaskLabel  string
	Outcome    string
	BaseXP     int
	BonusXP    int
}

// Append records one immutable event and updates the derived progress
// row in the same transaction. It returns the stored event and the
// capability's updated progress.
func (s *Store) Append(p AppendParams) (*Event, *Progress, error) {
	if err := s.writable(); err != nil {
		return nil, nil, err
	}
	if err := ValidateOutcome(p.Outcome); err != nil {
		return nil, nil, err
	}
	if p.Capability == "" {
		return nil, nil, fmt.Errorf("ledger: capability name is empty")
	}
	if p.BaseXP < 0 || p.BonusXP < 0 {
		return nil, nil, fmt.Errorf("ledger: negative XP (base %d, bonus %d)", p.BaseXP, p.BonusXP)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("ledger: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(
		`INSERT INTO events (capability, task_label, outcome, base_xp, bonus_xp)
		 VALUES (?, ?, ?, ?, ?)`,
		p.Capability, p.TaskLabel, p.Outcome, p.BaseXP, p.BonusXP,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("ledger: insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, nil, fmt.Errorf("ledger: event id: %w", err)
	}

	isBonus := strings.HasPrefix(p.TaskLabel, BonusLabelPrefix)
	xp := p.BaseXP + p.BonusXP

	prog, err := s.progressTx(tx, p.Capability)
	if err != nil && err != sql.ErrNoRows {
		return nil, nil, fmt.Errorf("ledger: read progress: %w", err)
	}
	if err == sql.ErrNoRows {
		prog = &Progress{Capability: p.Capability, FirstEventID: id}
	}

	prog.TotalXP += xp
	if !isBonus {
		prog.EventCount++
		switch p.Outcome {
		case OutcomeSuccess:
			prog.SuccessCount++
			prog.CurrentStreak++
		case OutcomeFailure:
			prog.FailureCount++
			prog.CurrentStreak = 0
		}
	}
	prog.Level = s.cfg.LevelFn(prog.TotalXP)

	if _, err := tx.Exec(
		`INSERT INTO progress (capability, total_xp, level, event_count, success_count, failure_count, current_streak, first_event_id, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		 ON CONFLICT(capability) DO UPDATE SET
		   total_xp = excluded.total_xp,
		   level = excluded.level,
		   event_count = excluded.event_count,
		   success_count = excluded.success_count,
		   failure_count = excluded.failure_count,
		   current_streak = excluded.current_streak,
		   updated_at = excluded.updated_at`,
		prog.Capability, prog.TotalXP, prog.Level, prog.EventCount,
		prog.SuccessCount, prog.FailureCount, prog.CurrentStreak, prog.FirstEventID,
	); err != nil {
		return nil, nil, fmt.Errorf("ledger: update progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("ledger: commit: %w", err)
	}

	ev := &Event{
		ID:         id,
		Capability: p.Capability,
		TaskLabel:  p.TaskLabel,
		Outcome:    p.Outcome,
		BaseXP:     p.BaseXP,
		BonusXP:    p.BonusXP,
	}
	_ = s.db.QueryRow(`SELECT created_at FROM events WHERE id = ?`, id).Scan(&ev.CreatedAt)
	return ev, prog, nil
}

type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
}

func (s *Store) progressTx(q queryer, capability string) (*Progress, error) {
	row := q.QueryRow(
		`SELECT capability, total_xp, level, event_count, success_count, failure_count, current_streak, first_event_id, updated_at
		 FROM progress WHERE capability = ?`, capability,
	)
	var p Progress
	if err := row.Scan(
		&p.Capability, &p.TotalXP, &p.Level, &p.EventCount,
		&p.SuccessCount, &p.FailureCount, &p.CurrentStreak,
		&p.FirstEventID, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProgressFor returns the stored summary for a capability, or nil when
// the capability has never been recorded.
func (s *Store) ProgressFor(capability string) (*Progress, error) {
	p, err := s.progressTx(s.db, capability)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: progress for %s: %w", capability, err)
	}
	return p, nil
}

// EventsFor returns all events for a capability in eventId order.
func (s *Store) EventsFor(capability string) ([]Event, error) {
	rows, err := s.db.Query(
		`SELECT id, capability, task_label, outcome, base_xp, bonus_xp, created_at
		 FROM events WHERE capability = ? ORDER BY id ASC`, capability,
	)
	if err != nil {
		return nil, fmt.Errorf("ledger: events for %s: %w", capability, err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Capability, &e.TaskLabel, &e.Outcome, &e.BaseXP, &e.BonusXP, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Fold recomputes a capability's progress from its raw events. This is
// the source of truth the stored summary must agree with.
func (s *Store) Fold(capability string) (*Progress, error) {
	events, err := s.EventsFor(capability)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}

	p := &Progress{Capability: capability, FirstEventID: events[0].ID}
	for _, e := range events {
		p.TotalXP += e.BaseXP + e.BonusXP
		if e.IsBonus() {
			continue
		}
		p.EventCount++
		switch e.Outcome {
		case OutcomeSuccess:
			p.SuccessCount++
			p.CurrentStreak++
		default:
			p.FailureCount++
			p.CurrentStreak = 0
		}
	}
	p.Level = s.cfg.LevelFn(p.TotalXP)
	return p, nil
}

// KnownCapability reports whether the capability has ever been
// recorded. Progression outlives descriptor files on disk.
func (s *Store) KnownCapability(name string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM progress WHERE capability = ?`, name).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger: known capability: %w", err)
	}
	return true, nil
}

// Capabilities returns every capability with at least one event, sorted
// by name.
func (s *Store) Capabilities() ([]string, error) {
	rows, err := s.db.Query(`SELECT capability FROM progress ORDER BY capability ASC`)
	if err != nil {
		return nil, fmt.Errorf("ledger: capabilities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Leaderboard ranks capabilities by total XP descending; ties go to the
// capability whose first event is oldest.
func (s *Store) Leaderboard(topN int) ([]LeaderboardEntry, error) {
	if topN <= 0 {
		topN = 10
	}
	rows, err := s.db.Query(
		`SELECT capability, total_xp, level, event_count
		 FROM progress
		 ORDER BY total_xp DESC, first_event_id ASC
		 LIMIT ?`, topN,
	)
	if err != nil {
		return nil, fmt.Errorf("ledger: leaderboard: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Capability, &e.TotalXP, &e.Level, &e.EventCount); err != nil {
			return nil, err
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecordUnlock persists an achievement unlock. The (capability,
// achievement) primary key makes double unlocks impossible at the
// storage layer too.
func (s *Store) RecordUnlock(capability, achievement string, xpReward int, eventID int64) error {
	if err := s.writable(); err != nil {
		return err
	}
	_, err := s.db.Exec(
		`INSERT INTO unlocks (capability, achievement, xp_reward, event_id) VALUES (?, ?, ?, ?)`,
		capability, achievement, xpReward, eventID,
	)
	if err != nil {
		return fmt.Errorf("ledger: record unlock %s/%s: %w", capability, achievement, err)
	}
	return nil
}

// UnlockedFor returns the set of achievement keys already unlocked for
// a capability.
func (s *Store) UnlockedFor(capability string) (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT achievement FROM unlocks WHERE capability = ?`, capability)
	if err != nil {
		return nil, fmt.Errorf("ledger: unlocks for %s: %w", capability, err)
	}
	defer func() { _ = rows.Close() }()

	out := map[string]bool{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		out[key] = true
	}
	return out, rows.Err()
}

// UnlockRecords returns all persisted unlocks for a capability, oldest
// first.
func (s *Store) UnlockRecords(capability string) ([]UnlockRecord, error) {
	rows, err := s.db.Query(
		`SELECT capability, achievement, xp_reward, event_id, unlocked_at
		 FROM unlocks WHERE capability = ? ORDER BY event_id ASC`, capability,
	)
	if err != nil {
		return nil, fmt.Errorf("ledger: unlock records for %s: %w", capability, err)
	}
	defer func() { _ = rows.Close() }()

	var out []UnlockRecord
	for rows.Next() {
		var u UnlockRecord
		if err := rows.Scan(&u.Capability, &u.Achievement, &u.XPReward, &u.EventID, &u.UnlockedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

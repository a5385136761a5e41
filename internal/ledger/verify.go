package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// CorruptLedgerError reports stored summaries that disagree with a
// fresh fold over the raw events. It is fatal to the write path only:
// reads keep serving the last-known state until Rebuild runs.
type CorruptLedgerError struct {
	Details []string
}

func (e *CorruptLedgerError) Error() string {
	return fmt.Sprintf("ledger summaries inconsistent with event log (%d capabilities): %s",
		len(e.Details), strings.Join(e.Details, "; "))
}

func asCorrupt(err error, target **CorruptLedgerError) bool {
	return errors.As(err, target)
}

// writable returns the stored corruption error, if any. Append and
// RecordUnlock call this first so a corrupt ledger never silently
// grows further.
func (s *Store) writable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.corrupt != nil {
		return fmt.Errorf("ledger is corrupt, run rebuild before writing: %w", s.corrupt)
	}
	return nil
}

func (s *Store) setCorrupt(err *CorruptLedgerError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corrupt = err
}

// Verify compares every stored progress row against a fold of the raw
// event log. On mismatch it returns a *CorruptLedgerError naming each
// capability and check that failed, and marks the store read-only.
func (s *Store) Verify() error {
	caps, err := s.Capabilities()
	if err != nil {
		return err
	}

	var details []string
	for _, name := range caps {
		stored, err := s.ProgressFor(name)
		if err != nil {
			return err
		}
		fresh, err := s.Fold(name)
		if err != nil {
			return err
		}
		if fresh == nil {
			details = append(details, fmt.Sprintf("%s: summary exists but no events", name))
			continue
		}
		if d := diffProgress(name, stored, fresh); d != "" {
			details = append(details, d)
		}
	}

	if len(details) > 0 {
		cerr := &CorruptLedgerError{Details: details}
		s.setCorrupt(cerr)
		return cerr
	}
	s.setCorrupt(nil)
	return nil
}

func diffProgress(name string, stored, fresh *Progress) string {
	var bad []string
	if stored.TotalXP != fresh.TotalXP {
		bad = append(bad, fmt.Sprintf("total_xp %d != %d", stored.TotalXP, fresh.TotalXP))
	}
	if stored.Level != fresh.Level {
		bad = append(bad, fmt.Sprintf("level %d != %d", stored.Level, fresh.Level))
	}
	if stored.EventCount != fresh.EventCount {
		bad = append(bad, fmt.Sprintf("event_count %d != %d", stored.EventCount, fresh.EventCount))
	}
	if stored.SuccessCount != fresh.SuccessCount {
		bad = append(bad, fmt.Sprintf("success_count %d != %d", stored.SuccessCount, fresh.SuccessCount))
	}
	if stored.FailureCount != fresh.FailureCount {
		bad = append(bad, fmt.Sprintf("failure_count %d != %d", stored.FailureCount, fresh.FailureCount))
	}
	if stored.CurrentStreak != fresh.CurrentStreak {
		bad = append(bad, fmt.Sprintf("current_streak %d != %d", stored.CurrentStreak, fresh.CurrentStreak))
	}
	if stored.FirstEventID != fresh.FirstEventID {
		bad = append(bad, fmt.Sprintf("first_event_id %d != %d", stored.FirstEventID, fresh.FirstEventID))
	}
	if len(bad) == 0 {
		return ""
	}
	return name + ": " + strings.Join(bad, ", ")
}

// Rebuild regenerates every progress row from the raw event log and
// clears the corrupt flag. Events themselves are never touched.
func (s *Store) Rebuild() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("ledger: rebuild begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM progress`); err != nil {
		return fmt.Errorf("ledger: rebuild clear: %w", err)
	}

	rows, err := tx.Query(`SELECT DISTINCT capability FROM events ORDER BY capability`)
	if err != nil {
		return fmt.Errorf("ledger: rebuild scan: %w", err)
	}
	var caps []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return err
		}
		caps = append(caps, name)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for _, name := range caps {
		fresh, err := s.Fold(name)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			`INSERT INTO progress (capability, total_xp, level, event_count, success_count, failure_count, current_streak, first_event_id, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))`,
			fresh.Capability, fresh.TotalXP, fresh.Level, fresh.EventCount,
			fresh.SuccessCount, fresh.FailureCount, fresh.CurrentStreak, fresh.FirstEventID,
		); err != nil {
			return fmt.Errorf("ledger: rebuild %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ledger: rebuild commit: %w", err)
	}
	s.setCorrupt(nil)
	return nil
}

// Package notify emits progression notifications for external
// dashboards. The core only calls a synchronous Emit hook; delivery
// beyond that (sockets, web push) lives outside this process.
package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Notification types.
const (
	TypeXPGained            = "xp_gained"
	TypeLevelUp             = "level_up"
	TypeAchievementUnlocked = "achievement_unlocked"
)

// Notification is one structured progression event.
type Notification struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Capability string         `json:"capability"`
	Payload    map[string]any `json:"payload,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// New builds a notification with a fresh ID and the current time.
func New(typ, capability string, payload map[string]any) Notification {
	return Notification{
		ID:         uuid.NewString(),
		Type:       typ,
		Capability: capability,
		Payload:    payload,
		Timestamp:  time.Now().UTC(),
	}
}

// Emitter delivers notifications. Emit must not block on slow
// consumers; failures are the emitter's problem, never the caller's.
type Emitter interface {
	Emit(n Notification)
}

// LogEmitter writes notifications to a structured logger.
type LogEmitter struct {
	Log zerolog.Logger
}

func (e LogEmitter) Emit(n Notification) {
	e.Log.Info().
		Str("notification", n.Type).
		Str("capability", n.Capability).
		Interface("payload", n.Payload).
		Msg("progression event")
}

// FileEmitter appends notifications as JSON lines, one per event, to a
// file external dashboards can tail.
type FileEmitter struct {
	Path string
	Log  zerolog.Logger

	mu sync.Mutex
}

// NewFileEmitter creates a FileEmitter writing to path.
func NewFileEmitter(path string, log zerolog.Logger) *FileEmitter {
	return &FileEmitter{Path: path, Log: log}
}

func (e *FileEmitter) Emit(n Notification) {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := os.OpenFile(e.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		e.Log.Error().Err(err).Str("path", e.Path).Msg("notification file unavailable")
		return
	}
	defer f.Close()

	line, err := json.Marshal(n)
	if err != nil {
		e.Log.Error().Err(err).Msg("notification marshal failed")
		return
	}
	if _, err := fmt.Fprintf(f, "%s\n", line); err != nil {
		e.Log.Error().Err(err).Str("path", e.Path).Msg("notification write failed")
	}
}

// MultiEmitter fans one notification out to several emitters.
type MultiEmitter []Emitter

func (m MultiEmitter) Emit(n Notification) {
	for _, e := range m {
		e.Emit(n)
	}
}

// NopEmitter discards notifications.
type NopEmitter struct{}

func (NopEmitter) Emit(Notification) {}

// Package server wires all components and creates the MCP server
// instance.
//
// This is the composition root: it builds the registry, ledger,
// achievement engine, and progression facade, and registers every tool
// against them. No business logic lives here, only wiring.
package server

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/arenahq/arena/internal/achievement"
	"github.com/arenahq/arena/internal/ledger"
	"github.com/arenahq/arena/internal/leveling"
	"github.com/arenahq/arena/internal/logging"
	"github.com/arenahq/arena/internal/notify"
	"github.com/arenahq/arena/internal/progression"
	"github.com/arenahq/arena/internal/registry"
	"github.com/arenahq/arena/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// EnvThresholds points at a custom YAML level-threshold table.
const EnvThresholds = "ARENA_LEVEL_TABLE"

// New creates and configures the MCP server with all tools registered.
//
// The returned cleanup function closes the ledger's database connection
// and must be called on shutdown (typically via defer). It is always
// non-nil and safe to call.
func New() (*server.MCPServer, func(), error) {
	log := logging.New("server")

	// --- Level thresholds ---

	thresholds := leveling.DefaultThresholds()
	if path := os.Getenv(EnvThresholds); path != "" {
		custom, err := leveling.LoadFile(path)
		if err != nil {
			return nil, noop, fmt.Errorf("loading level table: %w", err)
		}
		thresholds = custom
	}

	// --- Discovery ---

	reg := registry.New(registry.DefaultRoots(),
		registry.WithLogger(logging.New("registry")),
	)

	// --- XP ledger ---

	cfg := ledger.DefaultConfig()
	cfg.LevelFn = func(xp int) int { return leveling.Level(xp, thresholds) }
	store, err := ledger.New(cfg)
	if err != nil {
		return nil, noop, fmt.Errorf("opening ledger: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("ledger close")
		}
	}

	// A corrupt ledger is not fatal at startup: reads work, writes are
	// refused until arena_verify rebuilds. Surface it loudly though.
	if err := store.Verify(); err != nil {
		log.Error().Err(err).Msg("ledger failed verification, writes disabled until rebuild")
	}

	// --- Progression facade ---

	emitter := notify.MultiEmitter{
		notify.LogEmitter{Log: logging.New("notify")},
		notify.NewFileEmitter(filepath.Join(cfg.DataDir, "events.jsonl"), logging.New("notify")),
	}

	engine := achievement.NewEngine(nil, logging.New("achievement"))
	svc := progression.New(reg, store, engine, thresholds, emitter, logging.New("progression"))

	// --- MCP server ---

	s := server.NewMCPServer(
		"arena",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Discovery tools ---

	discoverTool := tools.NewDiscoverTool(reg)
	s.AddTool(discoverTool.Definition(), discoverTool.Handle)

	searchTool := tools.NewSearchTool(reg)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	recommendTool := tools.NewRecommendTool(reg, progression.NewHistory(store))
	s.AddTool(recommendTool.Definition(), recommendTool.Handle)

	// --- Progression tools ---

	recordTool := tools.NewRecordTool(svc)
	s.AddTool(recordTool.Definition(), recordTool.Handle)

	progressTool := tools.NewProgressTool(svc)
	s.AddTool(progressTool.Definition(), progressTool.Handle)

	leaderboardTool := tools.NewLeaderboardTool(svc)
	s.AddTool(leaderboardTool.Definition(), leaderboardTool.Handle)

	verifyTool := tools.NewVerifyTool(svc)
	s.AddTool(verifyTool.Definition(), verifyTool.Handle)

	return s, cleanup, nil
}

// noop is the default cleanup when initialization fails early.
func noop() {}

// serverInstructions tells the AI client how to use the arena tools.
func serverInstructions() string {
	return `You have access to Arena, a capability registry and progression tracker.

## Capabilities

Capabilities are specialist descriptors: markdown files with a YAML
frontmatter header (name, description, optional category/color/tools)
discovered from the configured roots. Project-local descriptors override
global ones with the same name.

## Typical flow

1. arena_discover — see what capabilities are registered
2. arena_recommend — describe the task, get a ranked squad with roles
3. After a capability finishes a task, arena_record_event with the
   outcome and a base XP amount reflecting task complexity
4. arena_progress / arena_leaderboard — inspect progression state

## Recording events

- Base XP is YOUR estimate of task complexity; the ledger only sums.
  Suggested scale: trivial 10, routine 25, substantial 50, major 100.
- Record failures too — streaks and success rates only mean something
  when failures are logged honestly.
- Events are immutable. A mistaken event is corrected by recording a
  compensating one, never by editing history.

## Integrity

arena_verify checks that cached progress summaries match the raw event
log. If it reports corruption, writes are refused until you run
arena_verify with rebuild=true. Rebuilding recomputes summaries from
events; the event log itself is never modified.`
}

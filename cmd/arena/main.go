// Arena: capability registry and XP progression MCP server.
//
// Discovers specialist capability descriptors from the filesystem,
// recommends squads for tasks, and tracks usage as an append-only XP
// ledger driving levels and achievements.
//
// Usage:
//
//	arena serve    # Start MCP server (stdio transport)
package main

import (
	"fmt"
	"os"

	arenaserver "github.com/arenahq/arena/internal/server"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("arena v%s\n", arenaserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	s, cleanup, err := arenaserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Arena v%s — capability registry and progression MCP server

Usage:
  arena serve    Start the MCP server (stdio transport)

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "arena": {
        "command": "arena",
        "args": ["serve"]
      }
    }
  }

Environment:
  ARENA_AGENT_PATHS   Override descriptor search roots (path list)
  ARENA_LEVEL_TABLE   Custom YAML level-threshold table
`, arenaserver.Version)
}

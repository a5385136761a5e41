package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/arenahq/arena/internal/progression"
)

// LeaderboardTool handles the arena_leaderboard MCP tool: rank recorded
// capabilities by total XP.
type LeaderboardTool struct {
	service *progression.Service
}

// NewLeaderboardTool creates a LeaderboardTool over the progression facade.
func NewLeaderboardTool(svc *progression.Service) *LeaderboardTool {
	return &LeaderboardTool{service: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *LeaderboardTool) Definition() mcp.Tool {
	return mcp.NewTool("arena_leaderboard",
		mcp.WithDescription(
			"Rank all recorded capabilities by total XP, highest first. "+
				"Ties go to the capability that started earning first.",
		),
		mcp.WithNumber("top_n",
			mcp.Description("How many entries to return (default 10)"),
		),
	)
}

// Handle processes the arena_leaderboard tool call.
func (t *LeaderboardTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topN := int(req.GetFloat("top_n", 10))

	entries, err := t.service.Leaderboard(topN)
	if err != nil {
		return nil, fmt.Errorf("building leaderboard: %w", err)
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No events recorded yet — the leaderboard is empty."), nil
	}

	var b strings.Builder
	b.WriteString("# Leaderboard\n\n")
	b.WriteString("| # | Capability | XP | Level | Events |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "| %d | %s | %d | %d | %d |\n",
			e.Rank, e.Capability, e.TotalXP, e.Level, e.EventCount)
	}

	return mcp.NewToolResultText(b.String()), nil
}

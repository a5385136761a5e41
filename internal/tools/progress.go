package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/arenahq/arena/internal/progression"
)

// ProgressTool handles the arena_progress MCP tool: report one
// capability's XP, level, streak, and unlocked achievements.
type ProgressTool struct {
	service *progression.Service
}

// NewProgressTool creates a ProgressTool over the progression facade.
func NewProgressTool(svc *progression.Service) *ProgressTool {
	return &ProgressTool{service: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *ProgressTool) Definition() mcp.Tool {
	return mcp.NewTool("arena_progress",
		mcp.WithDescription(
			"Show a capability's progression: total XP, level and tier, event "+
				"counts, current streak, and unlocked achievements.",
		),
		mcp.WithString("capability",
			mcp.Required(),
			mcp.Description("Name of the capability to inspect"),
		),
	)
}

// Handle processes the arena_progress tool call.
func (t *ProgressTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	capability := strings.TrimSpace(req.GetString("capability", ""))
	if capability == "" {
		return mcp.NewToolResultError("'capability' is required"), nil
	}

	view, err := t.service.Progress(capability)
	if err != nil {
		return nil, fmt.Errorf("reading progress: %w", err)
	}
	if view == nil {
		return mcp.NewToolResultText(fmt.Sprintf(
			"No events recorded for %q yet.", capability)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", capability)
	fmt.Fprintf(&b, "**Level:** %d — %s %s\n", view.Level, view.Tier.Icon, view.Tier.Name)
	fmt.Fprintf(&b, "**Total XP:** %d\n", view.TotalXP)
	fmt.Fprintf(&b, "**Events:** %d (%d successes, %d failures)\n",
		view.EventCount, view.SuccessCount, view.FailureCount)
	fmt.Fprintf(&b, "**Current streak:** %d\n", view.CurrentStreak)

	if len(view.Unlocked) > 0 {
		fmt.Fprintf(&b, "\n## Achievements (%d)\n\n", len(view.Unlocked))
		for _, u := range view.Unlocked {
			fmt.Fprintf(&b, "- %s (+%d XP, %s)\n", u.Achievement, u.XPReward, u.UnlockedAt)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/arenahq/arena/internal/ledger"
	"github.com/arenahq/arena/internal/progression"
)

// RecordTool handles the arena_record_event MCP tool: append one usage
// event to the XP ledger and run the progression cycle.
type RecordTool struct {
	service *progression.Service
}

// NewRecordTool creates a RecordTool over the progression facade.
func NewRecordTool(svc *progression.Service) *RecordTool {
	return &RecordTool{service: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *RecordTool) Definition() mcp.Tool {
	return mcp.NewTool("arena_record_event",
		mcp.WithDescription(
			"Record one task outcome for a capability. Appends an immutable XP "+
				"event, updates level and streak, and unlocks any newly earned "+
				"achievements. The capability must be registered or have prior history. "+
				"Base XP is supplied by the caller; the ledger only accumulates.",
		),
		mcp.WithString("capability",
			mcp.Required(),
			mcp.Description("Name of the capability the event belongs to"),
		),
		mcp.WithString("outcome",
			mcp.Required(),
			mcp.Description("How the task ended"),
			mcp.Enum(ledger.OutcomeSuccess, ledger.OutcomeFailure),
		),
		mcp.WithNumber("base_xp",
			mcp.Required(),
			mcp.Description("XP for this task, complexity-dependent, non-negative"),
		),
		mcp.WithString("task_label",
			mcp.Description("Optional short label describing the task"),
		),
	)
}

// Handle processes the arena_record_event tool call.
func (t *RecordTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	capability := strings.TrimSpace(req.GetString("capability", ""))
	outcome := req.GetString("outcome", "")
	baseXP := int(req.GetFloat("base_xp", -1))
	taskLabel := strings.TrimSpace(req.GetString("task_label", ""))

	if capability == "" {
		return mcp.NewToolResultError("'capability' is required"), nil
	}
	if err := ledger.ValidateOutcome(outcome); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if baseXP < 0 {
		return mcp.NewToolResultError("'base_xp' is required and must be non-negative"), nil
	}
	if strings.HasPrefix(taskLabel, ledger.BonusLabelPrefix) {
		return mcp.NewToolResultError(fmt.Sprintf(
			"task_label prefix %q is reserved for achievement bonus events", ledger.BonusLabelPrefix)), nil
	}

	res, err := t.service.RecordEvent(ctx, capability, taskLabel, outcome, baseXP)
	if err != nil {
		if errors.Is(err, progression.ErrUnknownCapability) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("recording event: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Event Recorded\n\n")
	fmt.Fprintf(&b, "**Capability:** %s\n", capability)
	fmt.Fprintf(&b, "**Outcome:** %s\n", outcome)
	fmt.Fprintf(&b, "**XP gained:** %d\n", res.XPGained)
	fmt.Fprintf(&b, "**Total XP:** %d (level %d)\n", res.Progress.TotalXP, res.Progress.Level)
	fmt.Fprintf(&b, "**Streak:** %d\n", res.Progress.CurrentStreak)

	if res.LevelUp {
		fmt.Fprintf(&b, "\nLevel up! %d → %d\n", res.PreviousLevel, res.Progress.Level)
	}
	if len(res.Unlocks) > 0 {
		b.WriteString("\n## Achievements Unlocked\n\n")
		for _, u := range res.Unlocks {
			fmt.Fprintf(&b, "- **%s** (+%d XP)\n", u.Name, u.XPReward)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

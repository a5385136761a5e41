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

// VerifyTool handles the arena_verify MCP tool: check the derived XP
// summaries against the raw event log and optionally rebuild them.
type VerifyTool struct {
	service *progression.Service
}

// NewVerifyTool creates a VerifyTool over the progression facade.
func NewVerifyTool(svc *progression.Service) *VerifyTool {
	return &VerifyTool{service: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *VerifyTool) Definition() mcp.Tool {
	return mcp.NewTool("arena_verify",
		mcp.WithDescription(
			"Verify ledger integrity: every cached progress summary must equal a "+
				"fresh fold over the raw event log. On mismatch the ledger refuses "+
				"writes until rebuilt; set rebuild to recompute all summaries from "+
				"events (events themselves are never modified).",
		),
		mcp.WithBoolean("rebuild",
			mcp.Description("Rebuild summaries from the event log after (or instead of) verifying"),
		),
	)
}

// Handle processes the arena_verify tool call.
func (t *VerifyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rebuild := req.GetBool("rebuild", false)

	if rebuild {
		if err := t.service.Rebuild(); err != nil {
			return nil, fmt.Errorf("rebuilding ledger summaries: %w", err)
		}
		if err := t.service.Verify(); err != nil {
			return nil, fmt.Errorf("verification still failing after rebuild: %w", err)
		}
		return mcp.NewToolResultText(
			"Ledger summaries rebuilt from the raw event log and verified clean. Writes are enabled.",
		), nil
	}

	err := t.service.Verify()
	if err == nil {
		return mcp.NewToolResultText("Ledger verified: all summaries match the event log."), nil
	}

	var cerr *ledger.CorruptLedgerError
	if errors.As(err, &cerr) {
		var b strings.Builder
		b.WriteString("# Ledger Corrupt\n\n")
		b.WriteString("Cached summaries disagree with the raw event log. ")
		b.WriteString("Writes are refused until a rebuild; reads still serve the stored state.\n\n")
		for _, d := range cerr.Details {
			fmt.Fprintf(&b, "- %s\n", d)
		}
		b.WriteString("\nRun arena_verify with rebuild=true to recover.\n")
		return mcp.NewToolResultError(b.String()), nil
	}
	return nil, fmt.Errorf("verifying ledger: %w", err)
}

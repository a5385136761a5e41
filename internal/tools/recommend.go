package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/arenahq/arena/internal/recommend"
	"github.com/arenahq/arena/internal/registry"
)

// RecommendTool handles the arena_recommend MCP tool: infer a project
// signature from a task description and form a squad of top-scoring
// capabilities.
type RecommendTool struct {
	registry *registry.Registry
	history  recommend.History
}

// NewRecommendTool creates a RecommendTool. history may be nil; scoring
// then ignores track record.
func NewRecommendTool(reg *registry.Registry, history recommend.History) *RecommendTool {
	return &RecommendTool{registry: reg, history: history}
}

// Definition returns the MCP tool definition for registration.
func (t *RecommendTool) Definition() mcp.Tool {
	return mcp.NewTool("arena_recommend",
		mcp.WithDescription(
			"Recommend a squad of capabilities for a task. Infers tech stack, "+
				"project type, and complexity from the description, scores every "+
				"registered capability, and returns a bounded, category-diverse "+
				"squad with roles and a synergy bonus.",
		),
		mcp.WithString("request",
			mcp.Required(),
			mcp.Description("Free-text description of the task or project, "+
				"e.g. 'Build a Python FastAPI backend with PostgreSQL'"),
		),
	)
}

// Handle processes the arena_recommend tool call.
func (t *RecommendTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	request := strings.TrimSpace(req.GetString("request", ""))
	if request == "" {
		return mcp.NewToolResultError("'request' is required — describe the task to staff"), nil
	}

	snap, err := t.registry.Discover(false)
	if err != nil {
		return nil, fmt.Errorf("discovering capabilities: %w", err)
	}

	sig := recommend.InferSignature(request, t.registry.Loader().Classifier())

	candidates := registry.Search(snap, registry.Filters{})
	ranked := recommend.Rank(candidates, sig, t.history)
	squad := recommend.FormSquad(ranked, sig)

	var b strings.Builder
	b.WriteString("# Squad Recommendation\n\n")
	fmt.Fprintf(&b, "**Project type:** %s\n", sig.ProjectType)
	fmt.Fprintf(&b, "**Complexity:** %d/5\n", sig.Complexity)
	if len(sig.TechStack) > 0 {
		fmt.Fprintf(&b, "**Tech stack:** %s\n", strings.Join(sig.TechStack, ", "))
	}
	b.WriteString("\n")

	if len(squad.Members) == 0 {
		b.WriteString("No capabilities registered — nothing to recommend.\n")
		return mcp.NewToolResultText(b.String()), nil
	}

	fmt.Fprintf(&b, "## Members (%d)\n\n", len(squad.Members))
	for _, m := range squad.Members {
		fmt.Fprintf(&b, "- **%s** — %s (%s, score %.2f)\n  %s\n",
			m.Descriptor.Name, m.Role, m.Descriptor.Category, m.Score, m.Descriptor.Summary)
	}

	fmt.Fprintf(&b, "\n**Aggregate score:** %.2f\n", squad.AggregateScore)
	if squad.SynergyBonus > 0 {
		fmt.Fprintf(&b, "**Synergy bonus:** +%.0f%%\n", squad.SynergyBonus*100)
	}
	if squad.Undersized {
		b.WriteString("\nNote: fewer capabilities are registered than the minimum squad size; all of them are included.\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

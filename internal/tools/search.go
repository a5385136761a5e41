package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/arenahq/arena/internal/registry"
)

// SearchTool handles the arena_search MCP tool: filtered lookup over
// the discovered capabilities.
type SearchTool struct {
	registry *registry.Registry
}

// NewSearchTool creates a SearchTool over the given registry.
func NewSearchTool(reg *registry.Registry) *SearchTool {
	return &SearchTool{registry: reg}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("arena_search",
		mcp.WithDescription(
			"Search registered capabilities. All given filters must match: "+
				"query fuzzy-matches name and summary, category matches exactly, "+
				"tech_stack requires every listed tag, difficulty matches one level. "+
				"No filters returns everything.",
		),
		mcp.WithString("query",
			mcp.Description("Free-text fuzzy match against capability name and summary"),
		),
		mcp.WithString("category",
			mcp.Description("Exact category, e.g. development, security, quality, data"),
		),
		mcp.WithString("tech_stack",
			mcp.Description("Comma-separated tags the capability must all carry, e.g. 'python,sql'"),
		),
		mcp.WithString("difficulty",
			mcp.Description("Exact difficulty level"),
			mcp.Enum("beginner", "intermediate", "advanced", "expert"),
		),
	)
}

// Handle processes the arena_search tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := t.registry.Discover(false)
	if err != nil {
		return nil, fmt.Errorf("discovering capabilities: %w", err)
	}

	filters := registry.Filters{
		Query:      strings.TrimSpace(req.GetString("query", "")),
		Category:   strings.ToLower(strings.TrimSpace(req.GetString("category", ""))),
		TechStack:  splitCSV(req.GetString("tech_stack", "")),
		Difficulty: strings.ToLower(strings.TrimSpace(req.GetString("difficulty", ""))),
	}

	results := registry.Search(snap, filters)
	if len(results) == 0 {
		return mcp.NewToolResultText("No capabilities match the given filters."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Matches (%d)\n\n", len(results))
	for _, d := range results {
		b.WriteString(formatDescriptor(d))
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

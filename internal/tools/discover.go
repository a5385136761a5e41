package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/arenahq/arena/internal/registry"
)

// DiscoverTool handles the arena_discover MCP tool: scan the descriptor
// roots and report what's registered.
type DiscoverTool struct {
	registry *registry.Registry
}

// NewDiscoverTool creates a DiscoverTool over the given registry.
func NewDiscoverTool(reg *registry.Registry) *DiscoverTool {
	return &DiscoverTool{registry: reg}
}

// Definition returns the MCP tool definition for registration.
func (t *DiscoverTool) Definition() mcp.Tool {
	return mcp.NewTool("arena_discover",
		mcp.WithDescription(
			"Discover all registered capabilities by scanning the descriptor roots. "+
				"Results are cached for a few minutes; set refresh to force a rescan. "+
				"Per-file parse failures are reported as warnings, never as errors.",
		),
		mcp.WithBoolean("refresh",
			mcp.Description("Force a rescan even if the cached index is still fresh"),
		),
	)
}

// Handle processes the arena_discover tool call.
func (t *DiscoverTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	refresh := req.GetBool("refresh", false)

	snap, err := t.registry.Discover(refresh)
	if err != nil {
		return nil, fmt.Errorf("discovering capabilities: %w", err)
	}

	if len(snap.Names) == 0 {
		return mcp.NewToolResultText(
			"No capabilities registered. Add descriptor files (*.md with a YAML " +
				"frontmatter header) under one of the configured roots." +
				formatWarnings(snap.Warnings),
		), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Capabilities (%d)\n\n", len(snap.Names))

	for _, category := range snap.Categories() {
		var section []string
		for _, name := range snap.Names {
			d := snap.ByName[name]
			if d.Category == category {
				section = append(section, formatDescriptor(d))
			}
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", category, strings.Join(section, "\n"))
	}

	if tech := snap.TechStacks(); len(tech) > 0 {
		fmt.Fprintf(&b, "Tech stacks seen: %s\n", strings.Join(tech, ", "))
	}
	b.WriteString(formatWarnings(snap.Warnings))

	return mcp.NewToolResultText(b.String()), nil
}

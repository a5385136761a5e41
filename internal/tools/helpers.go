// Package tools implements the MCP tool handlers.
//
// Each tool is a struct holding its dependencies, with a Definition()
// for registration and a Handle() compatible with mcp-go's
// CallToolRequest signature. One file per tool.
package tools

import (
	"fmt"
	"strings"

	"github.com/arenahq/arena/internal/descriptor"
	"github.com/arenahq/arena/internal/registry"
)

// splitCSV turns a comma-separated argument into trimmed, lowercased,
// non-empty parts.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// formatDescriptor renders one capability as a markdown list item.
func formatDescriptor(d *descriptor.Descriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- **%s** (%s, %s)", d.Name, d.Category, d.Difficulty)
	if len(d.TechStack) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(d.TechStack, ", "))
	}
	fmt.Fprintf(&b, "\n  %s", d.Summary)
	return b.String()
}

// formatWarnings renders scan warnings as a markdown section, or ""
// when there are none.
func formatWarnings(warnings []registry.Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n## Warnings (%d)\n\n", len(warnings))
	for _, w := range warnings {
		if w.Path != "" {
			fmt.Fprintf(&b, "- `%s`: %s\n", w.Path, w.Message)
		} else {
			fmt.Fprintf(&b, "- root %s: %s\n", w.Root, w.Message)
		}
	}
	return b.String()
}

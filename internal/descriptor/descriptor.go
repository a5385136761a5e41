// Package descriptor parses capability descriptor files.
//
// A descriptor is a markdown file with a YAML frontmatter block holding
// structured metadata, followed by free-form instructions. The body is
// opaque to the rest of the system; only the metadata header and the
// tags extracted from the text are interpreted.
package descriptor

import (
	"fmt"
)

// Category values derived from the directory a descriptor lives under.
const (
	CategoryDevelopment    = "development"
	CategoryInfrastructure = "infrastructure"
	CategoryQuality        = "quality"
	CategorySecurity       = "security"
	CategoryData           = "data"
	CategoryProduct        = "product"
	CategoryBusiness       = "business"
	CategoryCoordination   = "coordination"
	CategoryUncategorized  = "uncategorized"
)

// categoryDirs maps directory names (first path element under a search
// root) to canonical categories. Unknown directories fall through to the
// directory name itself, lowercased.
var categoryDirs = map[string]string{
	"development":    CategoryDevelopment,
	"infrastructure": CategoryInfrastructure,
	"quality":        CategoryQuality,
	"security":       CategorySecurity,
	"data":           CategoryData,
	"product":        CategoryProduct,
	"business":       CategoryBusiness,
	"conductor":      CategoryCoordination,
	"coordination":   CategoryCoordination,
}

// Difficulty levels inferred from descriptor text.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
	DifficultyExpert       = "expert"
)

// Descriptor is one discovered capability: the parsed metadata header
// plus derived classification fields.
type Descriptor struct {
	Name       string            `json:"name"`
	Summary    string            `json:"summary"`
	Category   string            `json:"category"`
	TechStack  []string          `json:"tech_stack"`
	Difficulty string            `json:"difficulty"`
	Color      string            `json:"color,omitempty"`
	Tools      string            `json:"tools,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
	SourceRoot string            `json:"source_root"`
	Path       string            `json:"path"`
	Body       string            `json:"-"`
}

// HasTag reports whether the descriptor carries the given tech-stack tag.
func (d *Descriptor) HasTag(tag string) bool {
	for _, t := range d.TechStack {
		if t == tag {
			return true
		}
	}
	return false
}

// ParseReason classifies why a descriptor file was rejected.
type ParseReason string

const (
	ReasonUnreadable     ParseReason = "unreadable"
	ReasonBadFrontmatter ParseReason = "bad_frontmatter"
	ReasonMissingField   ParseReason = "missing_field"
)

// ParseError is a per-file parse failure. One bad file never aborts a
// scan. The registry collects these as warnings and moves on.
type ParseError struct {
	Path   string
	Reason ParseReason
	Field  string
	Err    error
}

func (e *ParseError) Error() string {
	switch e.Reason {
	case ReasonMissingField:
		return fmt.Sprintf("descriptor %s: missing required field %q", e.Path, e.Field)
	case ReasonBadFrontmatter:
		return fmt.Sprintf("descriptor %s: invalid frontmatter: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("descriptor %s: %v", e.Path, e.Err)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

// CategoryForDir resolves a directory name to its canonical category.
func CategoryForDir(dir string) string {
	if c, ok := categoryDirs[dir]; ok {
		return c
	}
	return dir
}

package descriptor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

// Loader turns descriptor files into Descriptors. It owns the classifier
// used for tag extraction so all loads in a process classify consistently.
type Loader struct {
	classifier Classifier
}

// NewLoader creates a Loader. A nil classifier falls back to the default
// keyword table.
func NewLoader(classifier Classifier) *Loader {
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	return &Loader{classifier: classifier}
}

// Classifier exposes the loader's classifier so other components (the
// recommendation engine) share the same tag taxonomy.
func (l *Loader) Classifier() Classifier { return l.classifier }

// ParseFile reads and parses one descriptor file found under root.
// It returns a *ParseError for any per-file failure; the caller decides
// whether to skip-and-warn or abort.
func (l *Loader) ParseFile(path, root string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Reason: ReasonUnreadable, Err: err}
	}

	meta, body, err := splitFrontmatter(string(data))
	if err != nil {
		return nil, &ParseError{Path: path, Reason: ReasonBadFrontmatter, Err: err}
	}

	d := &Descriptor{
		Extra:      map[string]string{},
		SourceRoot: root,
		Path:       path,
		Body:       body,
	}

	for key, val := range meta {
		switch key {
		case "name":
			d.Name = val
		case "description":
			d.Summary = val
		case "category":
			d.Category = strings.ToLower(val)
		case "color":
			d.Color = val
		case "tools":
			d.Tools = val
		default:
			// Unknown keys are preserved, not dropped; external tooling
			// may attach its own metadata to descriptor files.
			d.Extra[key] = val
		}
	}

	if strings.TrimSpace(d.Name) == "" {
		return nil, &ParseError{Path: path, Reason: ReasonMissingField, Field: "name"}
	}
	if strings.TrimSpace(d.Summary) == "" {
		return nil, &ParseError{Path: path, Reason: ReasonMissingField, Field: "description"}
	}

	if d.Category == "" {
		d.Category = categoryFromPath(path, root)
	}

	classText := d.Summary + " " + d.Body
	d.TechStack = l.classifier.Tags(classText)
	d.Difficulty = InferDifficulty(classText)

	return d, nil
}

// splitFrontmatter separates the leading YAML block from the body.
// Files without a frontmatter block yield empty metadata and the whole
// content as body; the required-field check rejects them downstream.
func splitFrontmatter(content string) (map[string]string, string, error) {
	if !strings.HasPrefix(content, frontmatterDelim) {
		return nil, content, nil
	}

	rest := content[len(frontmatterDelim):]
	idx := strings.Index(rest, "\n"+frontmatterDelim)
	if idx < 0 {
		return nil, "", fmt.Errorf("unterminated frontmatter block")
	}

	block := rest[:idx]
	body := rest[idx+len(frontmatterDelim)+1:]
	if cut := strings.IndexByte(body, '\n'); cut >= 0 {
		body = body[cut+1:]
	} else {
		body = ""
	}

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
		return nil, "", err
	}

	meta := make(map[string]string, len(raw))
	for k, v := range raw {
		meta[strings.ToLower(strings.TrimSpace(k))] = flattenValue(v)
	}
	return meta, strings.TrimSpace(body), nil
}

// flattenValue renders a YAML scalar or list as a single string. Lists
// become comma-joined values (the "tools" key commonly holds one).
func flattenValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, flattenValue(item))
		}
		return strings.Join(parts, ", ")
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}

// categoryFromPath derives the category from the first directory under
// the search root, e.g. <root>/security/auditor.md → security.
func categoryFromPath(path, root string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return CategoryUncategorized
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return CategoryUncategorized
	}
	return CategoryForDir(strings.ToLower(parts[0]))
}

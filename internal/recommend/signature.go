// Package recommend scores capabilities against a task description and
// assembles bounded, category-diverse squads from the top scorers.
//
// Everything here is pure: history arrives through an interface, the
// classifier is shared with the descriptor loader, and no function
// touches the filesystem or the ledger directly.
package recommend

import (
	"strings"

	"github.com/arenahq/arena/internal/descriptor"
)

// Project types a task description can resolve to.
const (
	ProjectWebApp       = "web-app"
	ProjectAPIService   = "api-service"
	ProjectDataPipeline = "data-pipeline"
	ProjectGeneric      = "generic"
)

// Signature is the inferred shape of a task request.
type Signature struct {
	TechStack   []string `json:"tech_stack"`
	ProjectType string   `json:"project_type"`
	Complexity  int      `json:"complexity"` // 1..5
}

// projectTypePatterns are checked in order; first hit wins.
var projectTypePatterns = []struct {
	projectType string
	keywords    []string
}{
	{ProjectWebApp, []string{"web app", "website", "frontend", "user interface", "dashboard", " ui "}},
	{ProjectAPIService, []string{"api", "rest", "endpoint", "microservice", "backend", "service"}},
	{ProjectDataPipeline, []string{"data", "pipeline", "etl", "analytics", "warehouse", "processing"}},
}

var complexityIndicators = map[int][]string{
	2: {"standard", "typical", "regular"},
	3: {"complex", "advanced", "multiple", "integration"},
	4: {"enterprise", "scalable", "distributed", "architecture"},
	5: {"mission-critical", "large-scale", "real-time", "high-performance"},
}

// InferSignature derives a project signature from a free-text request.
// Pure: the same text always yields the same signature.
func InferSignature(request string, classifier descriptor.Classifier) Signature {
	if classifier == nil {
		classifier = descriptor.NewKeywordClassifier()
	}
	lower := " " + strings.ToLower(request) + " "

	sig := Signature{
		TechStack:   classifier.Tags(request),
		ProjectType: ProjectGeneric,
		Complexity:  inferComplexity(lower),
	}

	for _, p := range projectTypePatterns {
		for _, kw := range p.keywords {
			if strings.Contains(lower, kw) {
				sig.ProjectType = p.projectType
				return sig
			}
		}
	}
	return sig
}

func inferComplexity(lower string) int {
	score := 1
	for level, words := range complexityIndicators {
		for _, w := range words {
			if strings.Contains(lower, w) && level > score {
				score = level
			}
		}
	}

	// Long, tech-dense requests trend harder.
	if len(strings.Fields(lower)) > 40 {
		score++
	}
	if score > 5 {
		score = 5
	}
	return score
}

package descriptor

import (
	"regexp"
	"sort"
	"strings"
)

// Classifier extracts tech-stack tags from free text. It is a
// best-effort keyword matcher, not an authoritative taxonomy; callers
// that need stricter classification can provide their own implementation.
type Classifier interface {
	Tags(text string) []string
}

type tagPattern struct {
	tag string
	re  *regexp.Regexp
}

// KeywordClassifier is the default Classifier: a fixed table of
// case-insensitive keyword patterns mapped to normalized tags.
type KeywordClassifier struct {
	patterns []tagPattern
}

// NewKeywordClassifier builds the default keyword table.
func NewKeywordClassifier() *KeywordClassifier {
	table := []struct{ tag, expr string }{
		{"python", `\b(?:python|django|fastapi|flask|pandas|numpy|pytorch)\b`},
		{"javascript", `\b(?:javascript|typescript|node\.?js|react|vue|angular|next\.?js)\b`},
		{"golang", `\b(?:go|golang|gin|echo|fiber)\b`},
		{"rust", `\b(?:rust|cargo|tokio|actix|warp)\b`},
		{"java", `\b(?:java|spring|maven|gradle|junit)\b`},
		{"sql", `\b(?:sql|postgresql|postgres|mysql|sqlite|mongodb|redis)\b`},
		{"cloud", `\b(?:aws|azure|gcp|docker|kubernetes|terraform)\b`},
		{"frontend", `\b(?:html|css|react|vue|angular|svelte|tailwind)\b`},
		{"backend", `\b(?:api|rest|graphql|microservices|backend|database)\b`},
		{"devops", `\b(?:devops|ci/cd|jenkins|github actions|deployment)\b`},
		{"testing", `\b(?:test|testing|jest|pytest|cypress|selenium)\b`},
	}

	patterns := make([]tagPattern, 0, len(table))
	for _, row := range table {
		patterns = append(patterns, tagPattern{
			tag: row.tag,
			re:  regexp.MustCompile(`(?i)` + row.expr),
		})
	}
	return &KeywordClassifier{patterns: patterns}
}

// Tags returns the sorted set of tags whose pattern matches the text.
func (c *KeywordClassifier) Tags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, p := range c.patterns {
		if p.re.MatchString(lower) {
			tags = append(tags, p.tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// difficultyIndicators, checked in order. The strongest signal wins.
var difficultyIndicators = []struct {
	level string
	words []string
}{
	{DifficultyExpert, []string{"elite", "battle-tested", "legendary", "guru"}},
	{DifficultyAdvanced, []string{"expert", "master", "senior", "architect"}},
	{DifficultyBeginner, []string{"simple", "basic", "getting started", "intro"}},
	{DifficultyIntermediate, []string{"experience", "skilled", "proficient"}},
}

// InferDifficulty guesses a difficulty level from descriptor text.
// Defaults to intermediate when nothing matches.
func InferDifficulty(text string) string {
	lower := strings.ToLower(text)
	for _, ind := range difficultyIndicators {
		for _, w := range ind.words {
			if strings.Contains(lower, w) {
				return ind.level
			}
		}
	}
	return DifficultyIntermediate
}

// DifficultyRank orders difficulty levels for range filtering.
// Unknown levels rank as intermediate.
func DifficultyRank(level string) int {
	switch level {
	case DifficultyBeginner:
		return 1
	case DifficultyAdvanced:
		return 3
	case DifficultyExpert:
		return 4
	default:
		return 2
	}
}

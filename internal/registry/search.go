package registry

import (
	"github.com/sahilm/fuzzy"

	"github.com/arenahq/arena/internal/descriptor"
)

// Filters narrows a snapshot down to matching capabilities. All set
// fields must match (conjunctive).
type Filters struct {
	// Query fuzzy-matches against name and summary.
	Query string
	// Category matches exactly.
	Category string
	// TechStack requires every listed tag to be present.
	TechStack []string
	// Difficulty matches one level exactly. Mutually exclusive with the
	// range fields below; when both are set, Difficulty wins.
	Difficulty string
	// MinDifficulty / MaxDifficulty bound the difficulty rank
	// (beginner=1 .. expert=4). Empty means unbounded.
	MinDifficulty string
	MaxDifficulty string
}

// searchCorpus adapts descriptors to fuzzy.Source. Matching runs over
// "name summary" so either field can hit.
type searchCorpus []*descriptor.Descriptor

func (c searchCorpus) String(i int) string {
	return c[i].Name + " " + c[i].Summary
}

func (c searchCorpus) Len() int { return len(c) }

// Search returns the descriptors matching the filters. Without a query
// the result is ordered by name; with a query it is ordered by match
// score, best first.
func Search(snap *Snapshot, f Filters) []*descriptor.Descriptor {
	candidates := make([]*descriptor.Descriptor, 0, len(snap.Names))
	for _, name := range snap.Names {
		d := snap.ByName[name]
		if matchesFilters(d, f) {
			candidates = append(candidates, d)
		}
	}

	if f.Query == "" {
		return candidates
	}

	matches := fuzzy.FindFrom(f.Query, searchCorpus(candidates))
	out := make([]*descriptor.Descriptor, 0, len(matches))
	for _, m := range matches {
		out = append(out, candidates[m.Index])
	}
	return out
}

func matchesFilters(d *descriptor.Descriptor, f Filters) bool {
	if f.Category != "" && d.Category != f.Category {
		return false
	}
	for _, tag := range f.TechStack {
		if !d.HasTag(tag) {
			return false
		}
	}
	if f.Difficulty != "" {
		return d.Difficulty == f.Difficulty
	}
	rank := descriptor.DifficultyRank(d.Difficulty)
	if f.MinDifficulty != "" && rank < descriptor.DifficultyRank(f.MinDifficulty) {
		return false
	}
	if f.MaxDifficulty != "" && rank > descriptor.DifficultyRank(f.MaxDifficulty) {
		return false
	}
	return true
}

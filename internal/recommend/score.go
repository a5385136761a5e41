package recommend

import (
	"sort"

	"github.com/arenahq/arena/internal/descriptor"
)

// Scoring weights: tech-stack overlap dominates, category affinity
// second, track record last.
const (
	weightTech     = 0.5
	weightCategory = 0.3
	weightHistory  = 0.2
)

// History supplies progression data to the scorer. A nil History zeroes
// the history term, keeping the engine usable without a ledger.
type History interface {
	// SuccessRate returns the capability's success ratio in [0,1] and
	// whether any events exist for it.
	SuccessRate(name string) (float64, bool)
	// Level returns the capability's current level, 0 if unrecorded.
	Level(name string) int
}

// Scored pairs a capability with its computed score.
type Scored struct {
	Descriptor *descriptor.Descriptor `json:"descriptor"`
	Score      float64                `json:"score"`
	Level      int                    `json:"level"`
}

// categoryAffinity maps (projectType, category) to how relevant the
// category is for that kind of project.
var categoryAffinity = map[string]map[string]float64{
	ProjectWebApp: {
		descriptor.CategoryDevelopment:    1.0,
		descriptor.CategoryQuality:        0.7,
		descriptor.CategorySecurity:       0.6,
		descriptor.CategoryInfrastructure: 0.5,
		descriptor.CategoryProduct:        0.4,
	},
	ProjectAPIService: {
		descriptor.CategoryDevelopment:    1.0,
		descriptor.CategorySecurity:       0.8,
		descriptor.CategoryQuality:        0.7,
		descriptor.CategoryInfrastructure: 0.5,
		descriptor.CategoryProduct:        0.3,
	},
	ProjectDataPipeline: {
		descriptor.CategoryData:           1.0,
		descriptor.CategoryDevelopment:    0.7,
		descriptor.CategoryInfrastructure: 0.7,
		descriptor.CategoryQuality:        0.5,
	},
	ProjectGeneric: {
		descriptor.CategoryDevelopment: 0.8,
		descriptor.CategoryQuality:     0.5,
	},
}

// Score computes one capability's fit for a signature.
func Score(d *descriptor.Descriptor, sig Signature, hist History) float64 {
	tech := techOverlap(d.TechStack, sig.TechStack)
	affinity := categoryAffinity[sig.ProjectType][d.Category]

	rate := 0.0
	if hist != nil {
		if r, ok := hist.SuccessRate(d.Name); ok {
			rate = r
		}
	}

	return tech*weightTech + affinity*weightCategory + rate*weightHistory
}

// techOverlap is the fraction of requested tags the capability covers.
// No requested tags means a neutral 0.5, so pure-category matches still
// surface.
func techOverlap(have, want []string) float64 {
	if len(want) == 0 {
		return 0.5
	}
	set := make(map[string]bool, len(have))
	for _, t := range have {
		set[t] = true
	}
	hits := 0
	for _, t := range want {
		if set[t] {
			hits++
		}
	}
	return float64(hits) / float64(len(want))
}

// Rank scores all candidates and sorts them best-first. Equal scores
// break toward the higher level, then lexicographic name, so output is
// deterministic.
func Rank(candidates []*descriptor.Descriptor, sig Signature, hist History) []Scored {
	out := make([]Scored, 0, len(candidates))
	for _, d := range candidates {
		lvl := 0
		if hist != nil {
			lvl = hist.Level(d.Name)
		}
		out = append(out, Scored{
			Descriptor: d,
			Score:      Score(d, sig, hist),
			Level:      lvl,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Level != out[j].Level {
			return out[i].Level > out[j].Level
		}
		return out[i].Descriptor.Name < out[j].Descriptor.Name
	})
	return out
}

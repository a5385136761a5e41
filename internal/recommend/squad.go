package recommend

import (
	"github.com/arenahq/arena/internal/descriptor"
)

// Squad bounds and diversity rules.
const (
	minSquadSize        = 3
	maxSquadSize        = 6
	maxPerCategory      = 2
	synergyBonusPerPair = 0.05
	synergyBonusCap     = 0.15
)

// Roles assigned by rank inside a squad.
const (
	RoleLead    = "lead"
	RoleCore    = "core"
	RoleSupport = "support"
)

// Member is one capability in a formed squad.
type Member struct {
	Descriptor *descriptor.Descriptor `json:"descriptor"`
	Score      float64                `json:"score"`
	Role       string                 `json:"role"`
}

// Squad is a bounded, category-diverse selection of top scorers. The
// synergy bonus is display-only: it never feeds back into scoring.
type Squad struct {
	Members        []Member `json:"members"`
	SynergyBonus   float64  `json:"synergy_bonus"`
	AggregateScore float64  `json:"aggregate_score"`
	Undersized     bool     `json:"undersized"`
}

// synergyPairs are combinations known to work well together. Each pair
// present in a squad adds a flat bonus, capped.
var synergyPairs = [][2]string{
	{"backend-architect", "test-engineer"},
	{"backend-architect", "frontend-developer"},
	{"python-elite", "data-engineer"},
	{"security-auditor", "backend-architect"},
	{"devops-engineer", "cloud-architect"},
	{"frontend-developer", "javascript-pro"},
}

// FormSquad selects a squad from ranked candidates. Target size grows
// with complexity but stays within [minSquadSize, maxSquadSize]. At
// most two members share a category, unless the registry itself has
// fewer than minSquadSize distinct categories; then the cap relaxes
// rather than starving the squad.
func FormSquad(ranked []Scored, sig Signature) Squad {
	if len(ranked) == 0 {
		return Squad{}
	}

	target := 2 + sig.Complexity
	if target < minSquadSize {
		target = minSquadSize
	}
	if target > maxSquadSize {
		target = maxSquadSize
	}

	enforceDiversity := distinctCategories(ranked) >= minSquadSize

	perCategory := map[string]int{}
	var picked []Scored
	for _, s := range ranked {
		if len(picked) == target {
			break
		}
		cat := s.Descriptor.Category
		if enforceDiversity && perCategory[cat] >= maxPerCategory {
			continue
		}
		perCategory[cat]++
		picked = append(picked, s)
	}

	// Diversity left slots empty but candidates remain: backfill from
	// the best skipped scorers.
	if len(picked) < target && len(picked) < len(ranked) {
		seen := map[string]bool{}
		for _, p := range picked {
			seen[p.Descriptor.Name] = true
		}
		for _, s := range ranked {
			if len(picked) == target {
				break
			}
			if !seen[s.Descriptor.Name] {
				picked = append(picked, s)
			}
		}
	}

	squad := Squad{
		Undersized: len(picked) < minSquadSize,
	}
	for i, s := range picked {
		squad.Members = append(squad.Members, Member{
			Descriptor: s.Descriptor,
			Score:      s.Score,
			Role:       roleForRank(i),
		})
		squad.AggregateScore += s.Score
	}
	squad.SynergyBonus = synergyBonus(squad.Members)
	return squad
}

func distinctCategories(ranked []Scored) int {
	seen := map[string]bool{}
	for _, s := range ranked {
		seen[s.Descriptor.Category] = true
	}
	return len(seen)
}

func roleForRank(rank int) string {
	switch {
	case rank == 0:
		return RoleLead
	case rank <= 2:
		return RoleCore
	default:
		return RoleSupport
	}
}

func synergyBonus(members []Member) float64 {
	present := map[string]bool{}
	for _, m := range members {
		present[m.Descriptor.Name] = true
	}

	bonus := 0.0
	for _, pair := range synergyPairs {
		if present[pair[0]] && present[pair[1]] {
			bonus += synergyBonusPerPair
		}
	}
	if bonus > synergyBonusCap {
		bonus = synergyBonusCap
	}
	return bonus
}

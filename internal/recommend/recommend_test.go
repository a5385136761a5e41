package recommend_test

import (
	"testing"

	"github.com/arenahq/arena/internal/descriptor"
	"github.com/arenahq/arena/internal/recommend"
)

func cap(name, category string, tags ...string) *descriptor.Descriptor {
	return &descriptor.Descriptor{Name: name, Category: category, TechStack: tags}
}

type fakeHistory struct {
	rates  map[string]float64
	levels map[string]int
}

func (f fakeHistory) SuccessRate(name string) (float64, bool) {
	r, ok := f.rates[name]
	return r, ok
}

func (f fakeHistory) Level(name string) int { return f.levels[name] }

func TestInferSignature(t *testing.T) {
	tests := []struct {
		request     string
		projectType string
		complexity  int
		wantTags    []string
	}{
		{
			request:     "Build a Python FastAPI backend with PostgreSQL",
			projectType: recommend.ProjectAPIService,
			complexity:  1,
			wantTags:    []string{"backend", "python", "sql"},
		},
		{
			request:     "Create a website dashboard with react",
			projectType: recommend.ProjectWebApp,
			complexity:  1,
			wantTags:    []string{"frontend", "javascript"},
		},
		{
			request:     "ETL data warehouse processing",
			projectType: recommend.ProjectDataPipeline,
			complexity:  1,
		},
		{
			request:     "fix a typo",
			projectType: recommend.ProjectGeneric,
			complexity:  1,
		},
		{
			request:     "enterprise distributed microservice architecture",
			projectType: recommend.ProjectAPIService,
			complexity:  4,
		},
	}

	for _, tt := range tests {
		sig := recommend.InferSignature(tt.request, nil)
		if sig.ProjectType != tt.projectType {
			t.Errorf("InferSignature(%q).ProjectType = %q, want %q", tt.request, sig.ProjectType, tt.projectType)
		}
		if sig.Complexity != tt.complexity {
			t.Errorf("InferSignature(%q).Complexity = %d, want %d", tt.request, sig.Complexity, tt.complexity)
		}
		if tt.wantTags != nil {
			if len(sig.TechStack) != len(tt.wantTags) {
				t.Errorf("InferSignature(%q).TechStack = %v, want %v", tt.request, sig.TechStack, tt.wantTags)
				continue
			}
			for i := range tt.wantTags {
				if sig.TechStack[i] != tt.wantTags[i] {
					t.Errorf("InferSignature(%q).TechStack = %v, want %v", tt.request, sig.TechStack, tt.wantTags)
					break
				}
			}
		}
	}
}

func TestInferSignature_Deterministic(t *testing.T) {
	const req = "complex scalable real-time analytics pipeline in python"
	a := recommend.InferSignature(req, nil)
	b := recommend.InferSignature(req, nil)
	if a.ProjectType != b.ProjectType || a.Complexity != b.Complexity || len(a.TechStack) != len(b.TechStack) {
		t.Errorf("two inferences differ: %+v vs %+v", a, b)
	}
}

func TestRank_TechOverlapDominates(t *testing.T) {
	sig := recommend.InferSignature("Build a Python FastAPI backend with PostgreSQL", nil)

	python := cap("python-elite", descriptor.CategoryDevelopment, "python", "backend", "sql")
	react := cap("frontend-developer", descriptor.CategoryDevelopment, "javascript", "frontend")

	// The frontend capability gets a perfect track record; tech match
	// must still win.
	hist := fakeHistory{rates: map[string]float64{"frontend-developer": 1.0}}

	ranked := recommend.Rank([]*descriptor.Descriptor{react, python}, sig, hist)
	if ranked[0].Descriptor.Name != "python-elite" {
		t.Errorf("top = %s, want python-elite (tech overlap outweighs history)", ranked[0].Descriptor.Name)
	}
}

func TestRank_TieBreaks(t *testing.T) {
	sig := recommend.Signature{ProjectType: recommend.ProjectGeneric}

	a := cap("alpha", descriptor.CategoryDevelopment)
	b := cap("beta", descriptor.CategoryDevelopment)
	c := cap("gamma", descriptor.CategoryDevelopment)

	hist := fakeHistory{levels: map[string]int{"gamma": 7}}

	ranked := recommend.Rank([]*descriptor.Descriptor{b, c, a}, sig, hist)
	want := []string{"gamma", "alpha", "beta"}
	for i, name := range want {
		if ranked[i].Descriptor.Name != name {
			t.Errorf("rank %d = %s, want %s (level desc then name asc)", i, ranked[i].Descriptor.Name, name)
		}
	}
}

func TestFormSquad_SizeAndDiversity(t *testing.T) {
	sig := recommend.Signature{ProjectType: recommend.ProjectWebApp, Complexity: 3}

	candidates := []*descriptor.Descriptor{
		cap("dev-1", descriptor.CategoryDevelopment, "javascript"),
		cap("dev-2", descriptor.CategoryDevelopment, "javascript"),
		cap("dev-3", descriptor.CategoryDevelopment, "javascript"),
		cap("sec-1", descriptor.CategorySecurity),
		cap("qa-1", descriptor.CategoryQuality),
		cap("infra-1", descriptor.CategoryInfrastructure),
		cap("data-1", descriptor.CategoryData),
	}

	squad := recommend.FormSquad(recommend.Rank(candidates, sig, nil), sig)

	if len(squad.Members) != 5 { // 2 + complexity
		t.Fatalf("size = %d, want 5", len(squad.Members))
	}
	perCategory := map[string]int{}
	for _, m := range squad.Members {
		perCategory[m.Descriptor.Category]++
	}
	if perCategory[descriptor.CategoryDevelopment] > 2 {
		t.Errorf("development members = %d, want at most 2", perCategory[descriptor.CategoryDevelopment])
	}
	if squad.Undersized {
		t.Error("squad flagged undersized at 5 members")
	}
	if squad.Members[0].Role != recommend.RoleLead {
		t.Errorf("first role = %q, want lead", squad.Members[0].Role)
	}
}

func TestFormSquad_RelaxesDiversityWhenFewCategories(t *testing.T) {
	sig := recommend.Signature{ProjectType: recommend.ProjectGeneric, Complexity: 2}

	// Only one category in the whole registry: the two-per-category cap
	// must relax instead of starving the squad.
	candidates := []*descriptor.Descriptor{
		cap("a", descriptor.CategoryDevelopment),
		cap("b", descriptor.CategoryDevelopment),
		cap("c", descriptor.CategoryDevelopment),
		cap("d", descriptor.CategoryDevelopment),
	}

	squad := recommend.FormSquad(recommend.Rank(candidates, sig, nil), sig)
	if len(squad.Members) != 4 {
		t.Errorf("size = %d, want 4", len(squad.Members))
	}
}

func TestFormSquad_UndersizedAndEmpty(t *testing.T) {
	sig := recommend.Signature{ProjectType: recommend.ProjectGeneric, Complexity: 3}

	small := recommend.FormSquad(recommend.Rank([]*descriptor.Descriptor{
		cap("only", descriptor.CategoryDevelopment),
	}, sig, nil), sig)
	if !small.Undersized || len(small.Members) != 1 {
		t.Errorf("squad = %d members, undersized=%v; want 1 member flagged undersized", len(small.Members), small.Undersized)
	}

	empty := recommend.FormSquad(nil, sig)
	if len(empty.Members) != 0 || empty.Undersized {
		t.Errorf("empty registry should give an empty, unflagged formation, got %+v", empty)
	}
}

func TestFormSquad_SynergyBonusCapped(t *testing.T) {
	sig := recommend.Signature{ProjectType: recommend.ProjectWebApp, Complexity: 4}

	candidates := []*descriptor.Descriptor{
		cap("backend-architect", descriptor.CategoryDevelopment),
		cap("test-engineer", descriptor.CategoryQuality),
		cap("frontend-developer", descriptor.CategoryDevelopment),
		cap("security-auditor", descriptor.CategorySecurity),
		cap("javascript-pro", descriptor.CategoryProduct),
		cap("cloud-architect", descriptor.CategoryInfrastructure),
	}

	squad := recommend.FormSquad(recommend.Rank(candidates, sig, nil), sig)
	// backend-architect+test-engineer, backend-architect+frontend-developer,
	// security-auditor+backend-architect, frontend-developer+javascript-pro:
	// four pairs at 5% each, capped at 15%.
	if squad.SynergyBonus != 0.15 {
		t.Errorf("SynergyBonus = %v, want capped 0.15", squad.SynergyBonus)
	}
}

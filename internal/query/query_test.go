package query_test

import (
	"slices"
	"testing"
	"time"

	"github.com/garnizeh/assessboard/internal/models"
	"github.com/garnizeh/assessboard/internal/query"
)

func names(es []models.Employee) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Name
	}
	return out
}

func twoRecords() []models.Employee {
	return []models.Employee{
		{Name: "Bob", Email: "b@x.com", Role: "Eng", Tags: []string{}},
		{Name: "Alice", Email: "a@x.com", Role: "Eng", Tags: []string{"ai"}},
	}
}

func TestApply_Scenarios(t *testing.T) {
	records := twoRecords()

	spec := query.DefaultSpec()
	spec.Role = "Eng"
	if got := names(query.Apply(records, spec)); !slices.Equal(got, []string{"Alice", "Bob"}) {
		t.Fatalf("role filter + name-asc: got %v", got)
	}

	spec = query.DefaultSpec()
	spec.Search = "ai"
	if got := names(query.Apply(records, spec)); !slices.Equal(got, []string{"Alice"}) {
		t.Fatalf("tag search: got %v", got)
	}

	spec.Search = "B@X"
	if got := names(query.Apply(records, spec)); !slices.Equal(got, []string{"Bob"}) {
		t.Fatalf("case-insensitive email search: got %v", got)
	}

	if names(records)[0] != "Bob" {
		t.Fatalf("Apply must not reorder its input")
	}
}

func TestFilter_Selectors(t *testing.T) {
	records := []models.Employee{
		{Name: "A", Role: "Eng", Interest: "ai-enthusiast", Goals: "technical", Culture: "healthy-culture", Learning: "active-learner"},
		{Name: "B", Role: "eng", Interest: "exploring", Goals: "technical", Culture: "salary-driven", Learning: "passive"},
		{Name: "C", Role: "Engineer", Interest: "ai-enthusiast", Goals: "unclear", Culture: "healthy-culture", Learning: "active-learner"},
		{Name: "D", Role: "Ops", Interest: "exploring", Learning: "passive"},
	}

	tests := []struct {
		name string
		mod  func(s *query.Spec)
		want []string
	}{
		{"AllSentinels", func(s *query.Spec) {}, []string{"A", "B", "C", "D"}},
		{"RoleExactCaseSensitive", func(s *query.Spec) { s.Role = "Eng" }, []string{"A"}},
		{"Interest", func(s *query.Spec) { s.Interest = "ai-enthusiast" }, []string{"A", "C"}},
		{"Goals", func(s *query.Spec) { s.Goals = "technical" }, []string{"A", "B"}},
		{"Culture", func(s *query.Spec) { s.Culture = "salary-driven" }, []string{"B"}},
		{"Learning", func(s *query.Spec) { s.Learning = "passive" }, []string{"B", "D"}},
		{"Anded", func(s *query.Spec) { s.Interest = "ai-enthusiast"; s.Goals = "unclear" }, []string{"C"}},
		{"NoMatch", func(s *query.Spec) { s.Role = "HR" }, []string{}},
		{"BlankCultureMatchesBlankOnly", func(s *query.Spec) { s.Culture = "" }, []string{"D"}},
		{"BlankGoalsAndedWithLearning", func(s *query.Spec) { s.Goals = ""; s.Learning = "passive" }, []string{"D"}},
		{"BlankRoleMatchesNone", func(s *query.Spec) { s.Role = "" }, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := query.DefaultSpec()
			tt.mod(&spec)
			got := names(query.Filter(records, spec))
			if !slices.Equal(got, tt.want) {
				t.Fatalf("want %v got %v", tt.want, got)
			}
		})
	}
}

func TestFilter_IsPure(t *testing.T) {
	records := twoRecords()
	spec := query.DefaultSpec()
	spec.Search = "a"
	first := names(query.Apply(records, spec))
	second := names(query.Apply(records, spec))
	if !slices.Equal(first, second) {
		t.Fatalf("repeat calls differ: %v vs %v", first, second)
	}
}

func TestSort_Modes(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []models.Employee{
		{Name: "carol", CreatedAt: t0.Add(2 * time.Hour), LearningScore: 5},
		{Name: "Bob", CreatedAt: t0, LearningScore: 9},
		{Name: "alice", LearningScore: 0},
		{Name: "Dave", CreatedAt: t0.Add(time.Hour), LearningScore: 5},
	}

	tests := []struct {
		option string
		want   []string
	}{
		{query.SortNameAsc, []string{"alice", "Bob", "carol", "Dave"}},
		{query.SortNameDesc, []string{"Dave", "carol", "Bob", "alice"}},
		{query.SortDateRecent, []string{"carol", "Dave", "Bob", "alice"}},
		{query.SortDateOldest, []string{"alice", "Bob", "Dave", "carol"}},
		{query.SortLearningHigh, []string{"Bob", "carol", "Dave", "alice"}},
		{query.SortLearningLow, []string{"alice", "carol", "Dave", "Bob"}},
		{"bogus", []string{"carol", "Bob", "alice", "Dave"}},
	}

	for _, tt := range tests {
		t.Run(tt.option, func(t *testing.T) {
			cp := slices.Clone(records)
			query.Sort(cp, tt.option)
			if got := names(cp); !slices.Equal(got, tt.want) {
				t.Fatalf("want %v got %v", tt.want, got)
			}
		})
	}
}

func TestSort_Stable(t *testing.T) {
	records := []models.Employee{
		{Name: "Same", Email: "1@x.com"},
		{Name: "Same", Email: "2@x.com"},
		{Name: "Same", Email: "3@x.com"},
	}
	for _, opt := range query.SortOptions {
		cp := slices.Clone(records)
		query.Sort(cp, opt)
		for i := range cp {
			if cp[i].Email != records[i].Email {
				t.Fatalf("%s: tie order changed: %v", opt, cp)
			}
		}
	}
}

func TestWithDefaults(t *testing.T) {
	s := query.Spec{Search: "x", Role: "Eng"}.WithDefaults()
	if s.Role != "Eng" || s.Interest != query.AllInterests || s.Learning != query.AllLearnings || s.SortOption != query.SortNameAsc {
		t.Fatalf("unexpected spec: %#v", s)
	}
	if s.Search != "x" {
		t.Fatalf("search must be kept")
	}
}

func TestOptions(t *testing.T) {
	empty := query.Options(nil)
	if !slices.Equal(empty.Roles, []string{query.AllRoles}) || !slices.Equal(empty.Learnings, []string{query.AllLearnings}) {
		t.Fatalf("empty set must only hold sentinels: %#v", empty)
	}

	records := []models.Employee{
		{Role: "Eng", Culture: "salary-driven"},
		{Role: "HR"},
		{Role: "Eng", Culture: "healthy-culture"},
		{Role: "All Roles"},
	}
	opts := query.Options(records)
	if !slices.Equal(opts.Roles, []string{query.AllRoles, "Eng", "HR"}) {
		t.Fatalf("unexpected roles: %v", opts.Roles)
	}
	if !slices.Equal(opts.Cultures, []string{query.AllCultures, "salary-driven", "", "healthy-culture"}) {
		t.Fatalf("unexpected cultures: %v", opts.Cultures)
	}
	if !slices.Equal(opts.Goals, []string{query.AllGoals, ""}) {
		t.Fatalf("a blank value must be offered once: %v", opts.Goals)
	}
}

package query

import "github.com/garnizeh/assessboard/internal/models"

// OptionSet holds the selectable values for each categorical field. Every
// list starts with its sentinel.
type OptionSet struct {
	Roles     []string `json:"roles"`
	Interests []string `json:"interests"`
	Goals     []string `json:"goals"`
	Cultures  []string `json:"cultures"`
	Learnings []string `json:"learnings"`
}

// Options derives the distinct values of every selector field across
// records, in first-seen order. A blank value is offered like any other.
func Options(records []models.Employee) OptionSet {
	return OptionSet{
		Roles:     distinct(records, AllRoles, func(e models.Employee) string { return e.Role }),
		Interests: distinct(records, AllInterests, func(e models.Employee) string { return e.Interest }),
		Goals:     distinct(records, AllGoals, func(e models.Employee) string { return e.Goals }),
		Cultures:  distinct(records, AllCultures, func(e models.Employee) string { return e.Culture }),
		Learnings: distinct(records, AllLearnings, func(e models.Employee) string { return e.Learning }),
	}
}

func distinct(records []models.Employee, all string, field func(models.Employee) string) []string {
	out := []string{all}
	seen := map[string]struct{}{all: {}}
	for _, e := range records {
		v := field(e)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

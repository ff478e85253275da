// Package query derives the visible employee list from the full record set:
// composable filters, a stable single-key sort and the distinct values that
// feed each selector.
package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/garnizeh/assessboard/internal/models"
)

// "All" sentinels, one per selector.
const (
	AllRoles     = "All Roles"
	AllInterests = "All Interests"
	AllGoals     = "All Goals"
	AllCultures  = "All Cultures"
	AllLearnings = "All Learnings"
)

// Sort modes.
const (
	SortNameAsc      = "name-asc"
	SortNameDesc     = "name-desc"
	SortDateRecent   = "date-recent"
	SortDateOldest   = "date-oldest"
	SortLearningHigh = "learning-high"
	SortLearningLow  = "learning-low"
)

// SortOptions lists the supported sort modes in display order.
var SortOptions = []string{SortNameAsc, SortNameDesc, SortDateRecent, SortDateOldest, SortLearningHigh, SortLearningLow}

// Spec is a filter plus sort specification.
type Spec struct {
	Search     string `json:"search"`
	Role       string `json:"role"`
	Interest   string `json:"interest"`
	Goals      string `json:"goals"`
	Culture    string `json:"culture"`
	Learning   string `json:"learning"`
	SortOption string `json:"sortOption"`
}

// DefaultSpec matches every record and sorts by name ascending.
func DefaultSpec() Spec {
	return Spec{
		Role:       AllRoles,
		Interest:   AllInterests,
		Goals:      AllGoals,
		Culture:    AllCultures,
		Learning:   AllLearnings,
		SortOption: SortNameAsc,
	}
}

// WithDefaults returns s with blank selectors set to their sentinel and a
// blank sort mode set to name-asc. Callers apply it where an absent value
// arrives, such as an omitted query parameter.
func (s Spec) WithDefaults() Spec {
	def := DefaultSpec()
	for _, f := range []struct{ v, d *string }{
		{&s.Role, &def.Role},
		{&s.Interest, &def.Interest},
		{&s.Goals, &def.Goals},
		{&s.Culture, &def.Culture},
		{&s.Learning, &def.Learning},
		{&s.SortOption, &def.SortOption},
	} {
		if *f.v == "" {
			*f.v = *f.d
		}
	}
	return s
}

// Matches reports whether e passes the search predicate and every selector.
// A selector matches its sentinel or the exact field value, so a blank
// selector only matches records whose field is blank.
func (s Spec) Matches(e models.Employee) bool {
	return matchesSearch(e, strings.ToLower(s.Search)) &&
		selected(s.Role, AllRoles, e.Role) &&
		selected(s.Interest, AllInterests, e.Interest) &&
		selected(s.Goals, AllGoals, e.Goals) &&
		selected(s.Culture, AllCultures, e.Culture) &&
		selected(s.Learning, AllLearnings, e.Learning)
}

func selected(sel, all, v string) bool {
	return sel == all || sel == v
}

func matchesSearch(e models.Employee, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(e.Name), needle) || strings.Contains(strings.ToLower(e.Email), needle) {
		return true
	}
	for _, t := range e.Tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

// Filter returns the records that match s, in input order. The input is
// never modified.
func Filter(records []models.Employee, s Spec) []models.Employee {
	out := make([]models.Employee, 0, len(records))
	for _, e := range records {
		if s.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Sort orders records in place by option. Ties keep their input order. An
// unknown option leaves the order untouched.
func Sort(records []models.Employee, option string) {
	var by func(a, b models.Employee) int
	switch option {
	case SortNameAsc, SortNameDesc:
		col := collate.New(language.English)
		by = func(a, b models.Employee) int { return col.CompareString(a.Name, b.Name) }
		if option == SortNameDesc {
			by = func(a, b models.Employee) int { return col.CompareString(b.Name, a.Name) }
		}
	case SortDateRecent:
		by = func(a, b models.Employee) int { return cmp.Compare(epochMillis(b.CreatedAt), epochMillis(a.CreatedAt)) }
	case SortDateOldest:
		by = func(a, b models.Employee) int { return cmp.Compare(epochMillis(a.CreatedAt), epochMillis(b.CreatedAt)) }
	case SortLearningHigh:
		by = func(a, b models.Employee) int { return cmp.Compare(b.LearningScore, a.LearningScore) }
	case SortLearningLow:
		by = func(a, b models.Employee) int { return cmp.Compare(a.LearningScore, b.LearningScore) }
	default:
		return
	}
	slices.SortStableFunc(records, by)
}

// Apply filters then sorts. The result is a new slice.
func Apply(records []models.Employee, s Spec) []models.Employee {
	out := Filter(records, s)
	Sort(out, s.SortOption)
	return out
}

// A zero time sorts as the Unix epoch.
func epochMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

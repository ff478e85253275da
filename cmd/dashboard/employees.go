package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/garnizeh/assessboard/internal/assessment"
	"github.com/garnizeh/assessboard/internal/models"
	"github.com/garnizeh/assessboard/internal/query"
)

// bindSpecFlags registers the filter and sort flags on fs.
func bindSpecFlags(fs *pflag.FlagSet, s *query.Spec) {
	fs.StringVar(&s.Search, "search", "", "Match name, email or any tag (case-insensitive)")
	fs.StringVar(&s.Role, "role", query.AllRoles, "Exact role")
	fs.StringVar(&s.Interest, "interest", query.AllInterests, "Exact interest")
	fs.StringVar(&s.Goals, "goals", query.AllGoals, "Exact goals")
	fs.StringVar(&s.Culture, "culture", query.AllCultures, "Exact culture")
	fs.StringVar(&s.Learning, "learning", query.AllLearnings, "Exact learning")
	fs.StringVar(&s.SortOption, "sort", query.SortNameAsc, "Sort mode: "+strings.Join(query.SortOptions, ", "))
}

func printEmployees(w io.Writer, list []models.Employee) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tSUBMITTED\tSCORE\tTAGS")
	for _, e := range list {
		submitted := "No"
		if e.AssessmentSubmitted {
			submitted = "Yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Email, e.Role, submitted,
			strconv.FormatFloat(e.LearningScore, 'f', -1, 64), strings.Join(e.Tags, ", "))
	}
	return tw.Flush()
}

func printEmployee(w io.Writer, e *models.Employee) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	row := func(k, v string) { fmt.Fprintf(tw, "%s:\t%s\n", k, v) }
	row("id", e.ID)
	row("name", e.Name)
	row("email", e.Email)
	row("role", e.Role)
	row("submitted", strconv.FormatBool(e.AssessmentSubmitted))
	row("has answers", strconv.FormatBool(assessment.HasAnswers(e.AssessmentAnswers)))
	row("tags", strings.Join(e.Tags, ", "))
	row("culture", e.Culture)
	row("learning", e.Learning)
	row("interest", e.Interest)
	row("goals", e.Goals)
	if e.SubmissionDate != nil {
		row("submitted at", e.SubmissionDate.Format(time.RFC3339))
	}
	row("learning score", strconv.FormatFloat(e.LearningScore, 'f', -1, 64))
	row("created", e.CreatedAt.Format(time.RFC3339))
	for i, key := range assessment.Keys() {
		if v := e.AssessmentAnswers[i]; v != "" {
			row(key, v)
		}
	}
	return tw.Flush()
}

func newListCmd(a *app) *cobra.Command {
	var spec query.Spec
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List employees matching the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.view(cmd.Context())
			if err != nil {
				return a.forgetExpired(err)
			}
			v.SetSpec(spec)
			return printEmployees(cmd.OutOrStdout(), v.Visible())
		},
	}
	bindSpecFlags(cmd.Flags(), &spec)
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one employee with their answers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.view(cmd.Context()); err != nil {
				return a.forgetExpired(err)
			}
			e, err := a.client.GetEmployee(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printEmployee(cmd.OutOrStdout(), e)
		},
	}
}

func newOptionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Show the values each filter accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.view(cmd.Context())
			if err != nil {
				return a.forgetExpired(err)
			}
			o := v.Options()
			w := cmd.OutOrStdout()
			for _, f := range []struct {
				flag   string
				values []string
			}{
				{"role", o.Roles},
				{"interest", o.Interests},
				{"goals", o.Goals},
				{"culture", o.Cultures},
				{"learning", o.Learnings},
				{"sort", query.SortOptions},
			} {
				shown := make([]string, len(f.values))
				for i, val := range f.values {
					if val == "" {
						val = `""`
					}
					shown[i] = val
				}
				fmt.Fprintf(w, "--%s: %s\n", f.flag, strings.Join(shown, " | "))
			}
			return nil
		},
	}
}

func newQuestionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "Print the assessment questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.client.Questions(cmd.Context())
			if err != nil {
				return a.forgetExpired(err)
			}
			for _, k := range assessment.Keys() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s. %s\n", k, cat.Questions[k])
			}
			return nil
		},
	}
}

// employeeFlags are the editable fields shared by add and update.
type employeeFlags struct {
	name, email, role                  string
	submitted                          bool
	answers, tags                      []string
	culture, learning, interest, goals string
	score                              string
}

func (f *employeeFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "Full name")
	fs.StringVar(&f.email, "email", "", "Email address")
	fs.StringVar(&f.role, "role", "", "Job role")
	fs.BoolVar(&f.submitted, "submitted", false, "Assessment submitted")
	fs.StringArrayVar(&f.answers, "answer", nil, "Answer as qN=text (repeatable)")
	fs.StringArrayVar(&f.tags, "tag", nil, "Tag (repeatable)")
	fs.StringVar(&f.culture, "culture", "", "Culture")
	fs.StringVar(&f.learning, "learning", "", "Learning")
	fs.StringVar(&f.interest, "interest", "", "Interest")
	fs.StringVar(&f.goals, "goals", "", "Goals")
	fs.StringVar(&f.score, "score", "", "Learning score")
}

// parseAnswers sets each qN=text pair onto base.
func parseAnswers(base assessment.Answers, pairs []string) (assessment.Answers, error) {
	for _, p := range pairs {
		key, text, ok := strings.Cut(p, "=")
		if !ok {
			return base, fmt.Errorf("answer %q: want qN=text", p)
		}
		if err := base.Set(strings.TrimSpace(key), text); err != nil {
			return base, err
		}
	}
	return base, nil
}

func addTags(tags, in []string) []string {
	for _, t := range in {
		tags = assessment.AddTag(tags, t)
	}
	return tags
}

func (f *employeeFlags) draft() (assessment.Draft, error) {
	answers, err := parseAnswers(assessment.Answers{}, f.answers)
	if err != nil {
		return assessment.Draft{}, err
	}
	return assessment.Draft{
		Name:                f.name,
		Email:               f.email,
		Role:                f.role,
		AssessmentSubmitted: f.submitted,
		AssessmentAnswers:   answers,
		Tags:                addTags([]string{}, f.tags),
		Culture:             f.culture,
		Learning:            f.learning,
		Interest:            f.interest,
		Goals:               f.goals,
		LearningScore:       assessment.Score(assessment.CoerceScore(f.score)),
	}, nil
}

// patch builds a partial update from the flags that were set. Answers and
// tags are merged into current.
func (f *employeeFlags) patch(fs *pflag.FlagSet, current *models.Employee) (assessment.Patch, error) {
	var p assessment.Patch
	str := func(flag string, v string) *string {
		if !fs.Changed(flag) {
			return nil
		}
		return &v
	}
	p.Name = str("name", f.name)
	p.Email = str("email", f.email)
	p.Role = str("role", f.role)
	p.Culture = str("culture", f.culture)
	p.Learning = str("learning", f.learning)
	p.Interest = str("interest", f.interest)
	p.Goals = str("goals", f.goals)
	if fs.Changed("submitted") {
		p.AssessmentSubmitted = &f.submitted
	}
	if fs.Changed("answer") {
		answers, err := parseAnswers(current.AssessmentAnswers, f.answers)
		if err != nil {
			return p, err
		}
		p.AssessmentAnswers = &answers
	}
	if fs.Changed("tag") {
		tags := addTags(append([]string{}, current.Tags...), f.tags)
		p.Tags = &tags
	}
	if fs.Changed("score") {
		s := assessment.Score(assessment.CoerceScore(f.score))
		p.LearningScore = &s
	}
	return p, nil
}

func newAddCmd(a *app) *cobra.Command {
	var f employeeFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an employee record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.view(cmd.Context())
			if err != nil {
				return a.forgetExpired(err)
			}
			d, err := f.draft()
			if err != nil {
				return err
			}
			e, err := v.Create(cmd.Context(), d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", e.ID)
			return nil
		},
	}
	f.bind(cmd.Flags())
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var (
		f      employeeFlags
		untags []string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an employee record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.view(cmd.Context())
			if err != nil {
				return a.forgetExpired(err)
			}
			current, err := a.client.GetEmployee(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p, err := f.patch(cmd.Flags(), current)
			if err != nil {
				return err
			}
			if len(untags) > 0 {
				tags := current.Tags
				if p.Tags != nil {
					tags = *p.Tags
				}
				for _, t := range untags {
					tags = assessment.RemoveTag(tags, t)
				}
				p.Tags = &tags
			}
			if p.Empty() {
				return fmt.Errorf("nothing to update")
			}
			e, err := v.Update(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", e.ID)
			return nil
		},
	}
	f.bind(cmd.Flags())
	cmd.Flags().StringArrayVar(&untags, "untag", nil, "Remove a tag (repeatable)")
	return cmd
}

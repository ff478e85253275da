package assessment

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Field error messages shown next to the offending input.
const (
	MsgNameRequired  = "Name is required"
	MsgEmailRequired = "Email is required"
	MsgEmailInvalid  = "Email format is invalid"
	MsgRoleRequired  = "Role is required"
)

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Score is a learning score that tolerates sloppy input. Numbers pass
// through; strings are coerced; null, empty and non-numeric input become 0.
type Score float64

// CoerceScore parses s as a number, returning 0 when it is not one.
func CoerceScore(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func (s *Score) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*s = 0
	case b[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Score(CoerceScore(str))
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			*s = 0
			return nil
		}
		*s = Score(f)
	}
	return nil
}

// Draft is the payload used to create an employee record.
type Draft struct {
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Role                string     `json:"role"`
	AssessmentSubmitted bool       `json:"assessment_submitted"`
	AssessmentAnswers   Answers    `json:"assessment_answers"`
	Tags                []string   `json:"tags"`
	Culture             string     `json:"culture"`
	Learning            string     `json:"learning"`
	Interest            string     `json:"interest"`
	Goals               string     `json:"goals"`
	SubmissionDate      *time.Time `json:"submission_date,omitempty"`
	LearningScore       Score      `json:"learning_score"`
}

// Validate checks the required fields after trimming.
func (d *Draft) Validate() error {
	var verr ValidationError
	if strings.TrimSpace(d.Name) == "" {
		verr.add("name", MsgNameRequired)
	}
	checkEmail(&verr, d.Email)
	if strings.TrimSpace(d.Role) == "" {
		verr.add("role", MsgRoleRequired)
	}
	return verr.orNil()
}

// Normalize trims the identity fields, fills the answer slots according to
// the submitted flag and cleans the tag list.
func (d *Draft) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.Role = strings.TrimSpace(d.Role)
	d.AssessmentAnswers = NormalizeAnswers(d.AssessmentSubmitted, d.AssessmentAnswers)
	d.Tags = Tags(d.Tags)
	if d.Tags == nil {
		d.Tags = []string{}
	}
}

// Patch is a partial update. Nil fields are left untouched. In JSON an
// explicit null learning_score sets the score to 0 and an explicit null
// submission_date clears the date.
type Patch struct {
	Name                *string    `json:"name,omitempty"`
	Email               *string    `json:"email,omitempty"`
	Role                *string    `json:"role,omitempty"`
	AssessmentSubmitted *bool      `json:"assessment_submitted,omitempty"`
	AssessmentAnswers   *Answers   `json:"assessment_answers,omitempty"`
	Tags                *[]string  `json:"tags,omitempty"`
	Culture             *string    `json:"culture,omitempty"`
	Learning            *string    `json:"learning,omitempty"`
	Interest            *string    `json:"interest,omitempty"`
	Goals               *string    `json:"goals,omitempty"`
	SubmissionDate      *time.Time `json:"submission_date,omitempty"`
	LearningScore       *Score     `json:"learning_score,omitempty"`
	ClearSubmissionDate bool       `json:"-"`
}

type plainPatch Patch

func (p *Patch) UnmarshalJSON(b []byte) error {
	var raw struct {
		plainPatch
		SubmissionDate json.RawMessage `json:"submission_date"`
		LearningScore  json.RawMessage `json:"learning_score"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = Patch(raw.plainPatch)

	if raw.SubmissionDate != nil {
		if isNull(raw.SubmissionDate) {
			p.ClearSubmissionDate = true
		} else {
			var t time.Time
			if err := json.Unmarshal(raw.SubmissionDate, &t); err != nil {
				return err
			}
			p.SubmissionDate = &t
		}
	}
	if raw.LearningScore != nil {
		var sc Score
		if err := sc.UnmarshalJSON(raw.LearningScore); err != nil {
			return err
		}
		p.LearningScore = &sc
	}
	return nil
}

func (p Patch) MarshalJSON() ([]byte, error) {
	if !p.ClearSubmissionDate || p.SubmissionDate != nil {
		return json.Marshal(plainPatch(p))
	}
	return json.Marshal(struct {
		plainPatch
		SubmissionDate *time.Time `json:"submission_date"`
	}{plainPatch: plainPatch(p)})
}

func isNull(b json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}

// Validate checks only the fields present in the patch.
func (p *Patch) Validate() error {
	var verr ValidationError
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		verr.add("name", MsgNameRequired)
	}
	if p.Email != nil {
		checkEmail(&verr, *p.Email)
	}
	if p.Role != nil && strings.TrimSpace(*p.Role) == "" {
		verr.add("role", MsgRoleRequired)
	}
	return verr.orNil()
}

// Normalize trims present identity fields and cleans a present tag list.
func (p *Patch) Normalize() {
	for _, f := range []*string{p.Name, p.Email, p.Role} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if p.Tags != nil {
		t := Tags(*p.Tags)
		if t == nil {
			t = []string{}
		}
		p.Tags = &t
	}
}

// TouchesAnswers reports whether applying p requires re-normalizing answers.
func (p *Patch) TouchesAnswers() bool {
	return p.AssessmentSubmitted != nil || p.AssessmentAnswers != nil
}

// Empty reports whether the patch changes nothing.
func (p *Patch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Role == nil &&
		p.AssessmentSubmitted == nil && p.AssessmentAnswers == nil && p.Tags == nil &&
		p.Culture == nil && p.Learning == nil && p.Interest == nil && p.Goals == nil &&
		p.SubmissionDate == nil && !p.ClearSubmissionDate && p.LearningScore == nil
}

func checkEmail(verr *ValidationError, email string) {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		verr.add("email", MsgEmailRequired)
	case !ValidEmail(email):
		verr.add("email", MsgEmailInvalid)
	}
}

// ValidEmail is a minimal local@domain.tld shape check.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

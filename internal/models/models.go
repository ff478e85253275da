package models

import (
	"time"

	"github.com/garnizeh/assessboard/internal/assessment"
)

// Roles known to the auth layer.
const (
	RoleAdmin    = "admin"
	RoleHR       = "HR"
	RoleEmployee = "employee"
)

// CanViewDashboard reports whether role may read or write employee records.
func CanViewDashboard(role string) bool {
	return role == RoleAdmin || role == RoleHR
}

type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

type Employee struct {
	ID                  string             `json:"id" db:"id"`
	Name                string             `json:"name" db:"name"`
	Email               string             `json:"email" db:"email"`
	Role                string             `json:"role" db:"role"`
	AssessmentSubmitted bool               `json:"assessment_submitted" db:"assessment_submitted"`
	AssessmentAnswers   assessment.Answers `json:"assessment_answers" db:"assessment_answers"`
	Tags                []string           `json:"tags" db:"tags"`
	Culture             string             `json:"culture" db:"culture"`
	Learning            string             `json:"learning" db:"learning"`
	Interest            string             `json:"interest" db:"interest"`
	Goals               string             `json:"goals" db:"goals"`
	SubmissionDate      *time.Time         `json:"submission_date,omitempty" db:"submission_date"`
	LearningScore       float64            `json:"learning_score" db:"learning_score"`
	CreatedAt           time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time          `json:"updatedAt" db:"updated_at"`
}

// NewEmployee builds an unsaved record from a normalized draft. The store
// assigns the id and audit timestamps.
func NewEmployee(d assessment.Draft) Employee {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return Employee{
		Name:                d.Name,
		Email:               d.Email,
		Role:                d.Role,
		AssessmentSubmitted: d.AssessmentSubmitted,
		AssessmentAnswers:   assessment.NormalizeAnswers(d.AssessmentSubmitted, d.AssessmentAnswers),
		Tags:                tags,
		Culture:             d.Culture,
		Learning:            d.Learning,
		Interest:            d.Interest,
		Goals:               d.Goals,
		SubmissionDate:      d.SubmissionDate,
		LearningScore:       float64(d.LearningScore),
	}
}

// Apply copies the fields present in p onto e. When the patch touches the
// submitted flag or the answers, the answers are re-normalized against the
// resulting flag.
func (e *Employee) Apply(p assessment.Patch) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Email != nil {
		e.Email = *p.Email
	}
	if p.Role != nil {
		e.Role = *p.Role
	}
	if p.AssessmentSubmitted != nil {
		e.AssessmentSubmitted = *p.AssessmentSubmitted
	}
	if p.AssessmentAnswers != nil {
		e.AssessmentAnswers = *p.AssessmentAnswers
	}
	if p.TouchesAnswers() {
		e.AssessmentAnswers = assessment.NormalizeAnswers(e.AssessmentSubmitted, e.AssessmentAnswers)
	}
	if p.Tags != nil {
		e.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.Culture != nil {
		e.Culture = *p.Culture
	}
	if p.Learning != nil {
		e.Learning = *p.Learning
	}
	if p.Interest != nil {
		e.Interest = *p.Interest
	}
	if p.Goals != nil {
		e.Goals = *p.Goals
	}
	if p.ClearSubmissionDate {
		e.SubmissionDate = nil
	}
	if p.SubmissionDate != nil {
		d := *p.SubmissionDate
		e.SubmissionDate = &d
	}
	if p.LearningScore != nil {
		e.LearningScore = float64(*p.LearningScore)
	}
}

// StampSubmission sets the submission date to now when the record is
// submitted and no date has been recorded yet.
func (e *Employee) StampSubmission(now time.Time) {
	if e.AssessmentSubmitted && e.SubmissionDate == nil {
		t := now
		e.SubmissionDate = &t
	}
}

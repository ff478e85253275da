// Package export turns an ordered employee view into downloadable tabular
// artifacts.
package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/garnizeh/assessboard/internal/assessment"
	"github.com/garnizeh/assessboard/internal/models"
)

// Field is one named cell of a flattened row.
type Field struct {
	Key   string
	Value string
}

// Row is a flattened record; column order is significant.
type Row []Field

// Timestamps are written like a JSON-encoded JavaScript Date.
const timeLayout = "2006-01-02T15:04:05.000Z"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

// Flatten maps e to a single-level row: identity, the submitted flag as
// Yes/No, the 20 answers inline, then tags and the remaining fields.
func Flatten(e models.Employee) Row {
	submitted := "No"
	if e.AssessmentSubmitted {
		submitted = "Yes"
	}
	var submission string
	if e.SubmissionDate != nil {
		submission = formatTime(*e.SubmissionDate)
	}

	row := make(Row, 0, 5+assessment.NumQuestions+10)
	row = append(row,
		Field{"id", e.ID},
		Field{"name", e.Name},
		Field{"email", e.Email},
		Field{"role", e.Role},
		Field{"assessment_submitted", submitted},
	)
	for i, a := range e.AssessmentAnswers {
		row = append(row, Field{assessment.Key(i), a})
	}
	return append(row,
		Field{"tags", strings.Join(e.Tags, ", ")},
		Field{"culture", e.Culture},
		Field{"learning", e.Learning},
		Field{"interest", e.Interest},
		Field{"goals", e.Goals},
		Field{"submission_date", submission},
		Field{"learning_score", strconv.FormatFloat(e.LearningScore, 'f', -1, 64)},
		Field{"createdAt", formatTime(e.CreatedAt)},
		Field{"updated_at", formatTime(e.UpdatedAt)},
	)
}

// Header returns the column names of r in order.
func (r Row) Header() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = f.Key
	}
	return out
}

// Values returns the cells of r in column order.
func (r Row) Values() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = f.Value
	}
	return out
}

// Filename names an export generated at t with the given extension.
func Filename(t time.Time, ext string) string {
	return fmt.Sprintf("employees_export_%d.%s", t.UnixMilli(), ext)
}

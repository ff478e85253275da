package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/garnizeh/assessboard/internal/assessment"
	"github.com/garnizeh/assessboard/internal/models"
	"github.com/garnizeh/assessboard/internal/repository"
)

const employeeColumns = `id, name, email, role, assessment_submitted, assessment_answers, tags,
	culture, learning, interest, goals, submission_date, learning_score, created_at, updated_at`

func (r *SQLiteRepo) CreateEmployee(ctx context.Context, e *models.Employee) (*models.Employee, error) {
	if e == nil {
		return nil, fmt.Errorf("employee is nil")
	}

	rec := *e
	rec.ID = uuid.NewString()
	rec.CreatedAt = r.now()
	rec.UpdatedAt = rec.CreatedAt
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	rec.StampSubmission(rec.CreatedAt)

	args, err := employeeArgs(&rec)
	if err != nil {
		return nil, err
	}
	_, err = r.conn.Exec(ctx, `INSERT INTO employees (`+employeeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert employee: %w", err)
	}

	r.logger.Debug("sqlite: employee created", slog.String("id", rec.ID))
	return &rec, nil
}

// UpdateEmployee reads, patches and writes the record in one transaction.
func (r *SQLiteRepo) UpdateEmployee(ctx context.Context, id string, p assessment.Patch) (*models.Employee, error) {
	var out *models.Employee
	err := r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
		rec, err := scanEmployee(row)
		if err != nil {
			return err
		}

		rec.Apply(p)
		rec.UpdatedAt = r.now()
		rec.StampSubmission(rec.UpdatedAt)

		args, err := employeeArgs(rec)
		if err != nil {
			return err
		}
		// id goes last for the WHERE clause
		args = append(args[1:], rec.ID)
		_, err = tx.ExecContext(ctx, `UPDATE employees SET name = ?, email = ?, role = ?,
			assessment_submitted = ?, assessment_answers = ?, tags = ?, culture = ?, learning = ?,
			interest = ?, goals = ?, submission_date = ?, learning_score = ?, created_at = ?, updated_at = ?
			WHERE id = ?`, args...)
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrDuplicateEmail
			}
			return fmt.Errorf("update employee: %w", err)
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SQLiteRepo) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	return scanEmployee(row)
}

func (r *SQLiteRepo) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	out := []models.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func employeeArgs(e *models.Employee) ([]any, error) {
	answers, err := json.Marshal(e.AssessmentAnswers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	var submitted sql.NullInt64
	if e.SubmissionDate != nil {
		submitted = sql.NullInt64{Int64: e.SubmissionDate.UTC().UnixMilli(), Valid: true}
	}

	return []any{
		e.ID, e.Name, e.Email, e.Role, e.AssessmentSubmitted, string(answers), string(tagsJSON),
		e.Culture, e.Learning, e.Interest, e.Goals, submitted, e.LearningScore,
		e.CreatedAt.UTC().UnixMilli(), e.UpdatedAt.UTC().UnixMilli(),
	}, nil
}

func scanEmployee(s scanner) (*models.Employee, error) {
	var (
		e                models.Employee
		answers, tags    string
		submitted        sql.NullInt64
		created, updated int64
	)
	err := s.Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.AssessmentSubmitted, &answers, &tags,
		&e.Culture, &e.Learning, &e.Interest, &e.Goals, &submitted, &e.LearningScore, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(answers), &e.AssessmentAnswers); err != nil {
		return nil, fmt.Errorf("decode answers for %s: %w", e.ID, err)
	}
	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		return nil, fmt.Errorf("decode tags for %s: %w", e.ID, err)
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if submitted.Valid {
		t := fromMillis(submitted.Int64)
		e.SubmissionDate = &t
	}
	e.CreatedAt = fromMillis(created)
	e.UpdatedAt = fromMillis(updated)

	return &e, nil
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/garnizeh/assessboard/internal/assessment"
	"github.com/garnizeh/assessboard/internal/models"
)

const employeeColumns = `id, name, email, role, assessment_submitted, assessment_answers, tags, culture, learning, interest, goals, submission_date, learning_score, created_at, updated_at`

const insertEmployeeSQL = `INSERT INTO employees (` + employeeColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING ` + employeeColumns

const selectEmployeeSQL = `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

const lockEmployeeSQL = selectEmployeeSQL + ` FOR UPDATE`

const updateEmployeeSQL = `UPDATE employees
   SET name = $2, email = $3, role = $4, assessment_submitted = $5, assessment_answers = $6, tags = $7,
       culture = $8, learning = $9, interest = $10, goals = $11, submission_date = $12, learning_score = $13,
       created_at = $14, updated_at = $15
 WHERE id = $1
RETURNING ` + employeeColumns

const listEmployeesSQL = `SELECT ` + employeeColumns + ` FROM employees ORDER BY created_at ASC, id ASC`

func (r *Repo) CreateEmployee(ctx context.Context, e *models.Employee) (*models.Employee, error) {
	if e == nil {
		return nil, fmt.Errorf("employee is nil")
	}

	rec := *e
	rec.ID = uuid.NewString()
	rec.CreatedAt = r.now()
	rec.UpdatedAt = rec.CreatedAt
	rec.StampSubmission(rec.CreatedAt)

	args, err := employeeArgs(&rec)
	if err != nil {
		return nil, err
	}
	created, err := scanEmployee(r.pool.QueryRow(ctx, insertEmployeeSQL, args...))
	if err != nil {
		return nil, translatePgError(err)
	}

	r.logger.Debug("postgres: employee created", slog.String("id", created.ID))
	return created, nil
}

func (r *Repo) UpdateEmployee(ctx context.Context, id string, p assessment.Patch) (*models.Employee, error) {
	var out *models.Employee
	err := r.withinTx(ctx, func(tx pgx.Tx) error {
		rec, err := scanEmployee(tx.QueryRow(ctx, lockEmployeeSQL, id))
		if err != nil {
			return translatePgError(err)
		}

		rec.Apply(p)
		rec.UpdatedAt = r.now()
		rec.StampSubmission(rec.UpdatedAt)

		args, err := employeeArgs(rec)
		if err != nil {
			return err
		}
		updated, err := scanEmployee(tx.QueryRow(ctx, updateEmployeeSQL, args...))
		if err != nil {
			return translatePgError(err)
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		// not a uuid, so it cannot exist
		return nil, translatePgError(pgx.ErrNoRows)
	}
	e, err := scanEmployee(r.pool.QueryRow(ctx, selectEmployeeSQL, id))
	if err != nil {
		return nil, translatePgError(err)
	}
	return e, nil
}

func (r *Repo) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	rows, err := r.pool.Query(ctx, listEmployeesSQL)
	if err != nil {
		return nil, fmt.Errorf("postgres: list employees: %w", err)
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
	return []any{
		e.ID, e.Name, e.Email, e.Role, e.AssessmentSubmitted, answers, tags,
		e.Culture, e.Learning, e.Interest, e.Goals, nullableTime(e.SubmissionDate), e.LearningScore,
		e.CreatedAt, e.UpdatedAt,
	}, nil
}

func scanEmployee(row pgx.Row) (*models.Employee, error) {
	var (
		e         models.Employee
		answers   []byte
		submitted sql.NullTime
	)
	err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.AssessmentSubmitted, &answers, &e.Tags,
		&e.Culture, &e.Learning, &e.Interest, &e.Goals, &submitted, &e.LearningScore, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &e.AssessmentAnswers); err != nil {
			return nil, fmt.Errorf("decode answers for %s: %w", e.ID, err)
		}
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if submitted.Valid {
		t := submitted.Time.UTC()
		e.SubmissionDate = &t
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return &e, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

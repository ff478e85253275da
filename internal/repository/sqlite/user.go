package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/garnizeh/assessboard/internal/models"
	"github.com/garnizeh/assessboard/internal/repository"
)

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	if u == nil {
		return nil, fmt.Errorf("user is nil")
	}

	rec := *u
	rec.ID = uuid.NewString()
	rec.CreatedAt = r.now()
	if rec.Role == "" {
		rec.Role = models.RoleEmployee
	}

	_, err := r.conn.Exec(ctx, `INSERT INTO users (id, name, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Email, rec.PasswordHash, rec.Role, rec.CreatedAt.UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &rec, nil
}

func (r *SQLiteRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = ?`, email)
	var (
		u       models.User
		created int64
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.CreatedAt = fromMillis(created)

	return &u, nil
}

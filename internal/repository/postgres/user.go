package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/garnizeh/assessboard/internal/models"
)

const insertUserSQL = `INSERT INTO users (id, name, email, password_hash, role, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, name, email, password_hash, role, created_at`

const selectUserByEmailSQL = `SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = $1`

func (r *Repo) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	if u == nil {
		return nil, fmt.Errorf("user is nil")
	}
	role := u.Role
	if role == "" {
		role = models.RoleEmployee
	}

	row := r.pool.QueryRow(ctx, insertUserSQL, uuid.NewString(), u.Name, u.Email, u.PasswordHash, role, r.now())
	created, err := scanUser(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return created, nil
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	found, err := scanUser(r.pool.QueryRow(ctx, selectUserByEmailSQL, email))
	if err != nil {
		return nil, translatePgError(err)
	}
	return found, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

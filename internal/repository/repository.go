package repository

import (
	"context"
	"errors"

	"github.com/garnizeh/assessboard/internal/assessment"
	"github.com/garnizeh/assessboard/internal/models"
)

// Record Store contracts. Concrete backends live in the sqlite, postgres and
// mongo subpackages.

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateEmail   = errors.New("email already exists")
	ErrStoreUnavailable = errors.New("record store unavailable")
	ErrUnauthorized     = errors.New("not authorized")
)

type EmployeeRepo interface {
	// CreateEmployee assigns id and audit timestamps and returns the stored record.
	CreateEmployee(ctx context.Context, e *models.Employee) (*models.Employee, error)
	// UpdateEmployee applies p to the record with id and returns the result.
	UpdateEmployee(ctx context.Context, id string, p assessment.Patch) (*models.Employee, error)
	GetEmployee(ctx context.Context, id string) (*models.Employee, error)
	// ListEmployees returns every record in creation order.
	ListEmployees(ctx context.Context) ([]models.Employee, error)
}

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

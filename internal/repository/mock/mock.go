package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/garnizeh/assessboard/internal/assessment"
	"github.com/garnizeh/assessboard/internal/models"
	"github.com/garnizeh/assessboard/internal/repository"
)

// Test helpers and mocks
type Mocks struct {
	EmpRepo  *mockEmployeeRepo
	UserRepo *mockUserRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		EmpRepo:  &mockEmployeeRepo{},
		UserRepo: &mockUserRepo{},
	}
}

var _ repository.EmployeeRepo = (*mockEmployeeRepo)(nil)
var _ repository.UserRepo = (*mockUserRepo)(nil)

// mockEmployeeRepo keeps records in memory and enforces email uniqueness.
// The *Err fields force the matching call to fail.
type mockEmployeeRepo struct {
	mu        sync.Mutex
	Stored    []models.Employee
	CreateErr error
	UpdateErr error
	GetErr    error
	ListErr   error
	Now       func() time.Time
	nextID    int
}

func (m *mockEmployeeRepo) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

func (m *mockEmployeeRepo) emailTaken(email, exceptID string) bool {
	for _, e := range m.Stored {
		if e.Email == email && e.ID != exceptID {
			return true
		}
	}
	return false
}

func (m *mockEmployeeRepo) CreateEmployee(ctx context.Context, e *models.Employee) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.emailTaken(e.Email, "") {
		return nil, repository.ErrDuplicateEmail
	}
	m.nextID++
	rec := *e
	rec.ID = fmt.Sprintf("emp-%d", m.nextID)
	rec.CreatedAt = m.now()
	rec.UpdatedAt = rec.CreatedAt
	rec.StampSubmission(rec.CreatedAt)
	m.Stored = append(m.Stored, rec)
	return &rec, nil
}

func (m *mockEmployeeRepo) UpdateEmployee(ctx context.Context, id string, p assessment.Patch) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	for i := range m.Stored {
		if m.Stored[i].ID != id {
			continue
		}
		rec := m.Stored[i]
		rec.Apply(p)
		if m.emailTaken(rec.Email, id) {
			return nil, repository.ErrDuplicateEmail
		}
		rec.UpdatedAt = m.now()
		rec.StampSubmission(rec.UpdatedAt)
		m.Stored[i] = rec
		return &rec, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockEmployeeRepo) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, e := range m.Stored {
		if e.ID == id {
			rec := e
			return &rec, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockEmployeeRepo) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return append([]models.Employee{}, m.Stored...), nil
}

type mockUserRepo struct {
	Stored    *models.User
	CreateErr error
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.Stored != nil && m.Stored.Email == u.Email {
		return nil, repository.ErrDuplicateEmail
	}
	rec := *u
	rec.ID = "user-1"
	rec.CreatedAt = time.Now().UTC()
	m.Stored = &rec
	return &rec, nil
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.Stored != nil && m.Stored.Email == email {
		return m.Stored, nil
	}
	return nil, repository.ErrNotFound
}

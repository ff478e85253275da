package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/garnizeh/assessboard/api"
	"github.com/garnizeh/assessboard/internal/assessment"
	"github.com/garnizeh/assessboard/internal/client"
	"github.com/garnizeh/assessboard/internal/config"
	"github.com/garnizeh/assessboard/internal/models"
	"github.com/garnizeh/assessboard/internal/query"
	"github.com/garnizeh/assessboard/internal/repository"
	"github.com/garnizeh/assessboard/internal/repository/mock"
)

const secret = "client-test-secret"

func testConfig(url string) config.ClientConfig {
	return config.ClientConfig{
		BaseURL:                 url,
		Timeout:                 2 * time.Second,
		Retries:                 2,
		Backoff:                 time.Millisecond,
		CircuitFailureThreshold: 5,
		CircuitReset:            time.Minute,
	}
}

// startAPI serves the real router over the in-memory mocks.
func startAPI(t *testing.T, m *mock.Mocks) (*httptest.Server, *client.Client) {
	t.Helper()
	schemas, err := assessment.LoadSchemas()
	if err != nil {
		t.Fatalf("LoadSchemas: %v", err)
	}
	cfg := &config.Config{JWTSecret: secret, TokenDuration: time.Hour}
	srv := httptest.NewServer(api.SetupRoutes(cfg, "test", "now", m.EmpRepo, m.UserRepo, schemas))

	c, err := client.NewClient(testConfig(srv.URL), srv.Client())
	if err != nil {
		srv.Close()
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
		srv.Close()
	})
	return srv, c
}

func signAs(t *testing.T, c *client.Client, role string) {
	t.Helper()
	tok, err := api.SignToken(secret, &models.User{ID: "user-1", Email: "u@x.com", Role: role}, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	c.SetToken(tok)
}

func TestClient_SignUpSignIn(t *testing.T) {
	_, c := startAPI(t, mock.NewMocks())
	ctx := context.Background()

	s, err := c.SignUp(ctx, "Ann", "ann@x.com", "pw")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if s.Role != models.RoleEmployee || s.Token == "" || c.Token() != s.Token {
		t.Fatalf("unexpected session %+v", s)
	}

	if _, err := c.SignUp(ctx, "Ann", "ann@x.com", "pw"); !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
	if _, err := c.SignIn(ctx, "ann@x.com", "wrong"); !errors.Is(err, client.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if _, err := c.SignIn(ctx, "ann@x.com", "pw"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	// employees may not read the dashboard
	if _, err := c.ListEmployees(ctx); !errors.Is(err, repository.ErrUnauthorized) {
		t.Fatalf("expected not authorized, got %v", err)
	}

	if err := c.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if c.Token() != "" {
		t.Fatalf("token must be dropped on sign out")
	}
	if _, err := c.ListEmployees(ctx); !errors.Is(err, client.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestClient_EmployeeLifecycle(t *testing.T) {
	m := mock.NewMocks()
	_, c := startAPI(t, m)
	signAs(t, c, models.RoleHR)
	ctx := context.Background()

	in := &models.Employee{Name: "Zed", Email: "zed@x.com", Role: "Engineer", Interest: "ai", LearningScore: 4}
	created, err := c.CreateEmployee(ctx, in)
	if err != nil {
		t.Fatalf("CreateEmployee: %v", err)
	}
	if created.ID == "" || created.Name != "Zed" || created.LearningScore != 4 {
		t.Fatalf("unexpected record %+v", created)
	}

	if _, err := c.CreateEmployee(ctx, in); !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}

	var verr *assessment.ValidationError
	if _, err := c.CreateEmployee(ctx, &models.Employee{Email: "bad"}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	} else if verr.Fields["name"] == "" || verr.Fields["email"] == "" {
		t.Fatalf("unexpected fields %v", verr.Fields)
	}

	name := "Zed Two"
	updated, err := c.UpdateEmployee(ctx, created.ID, assessment.Patch{Name: &name})
	if err != nil {
		t.Fatalf("UpdateEmployee: %v", err)
	}
	if updated.Name != name || updated.Email != "zed@x.com" {
		t.Fatalf("unexpected update %+v", updated)
	}

	got, err := c.GetEmployee(ctx, created.ID)
	if err != nil || got.Name != name {
		t.Fatalf("GetEmployee: %+v %v", got, err)
	}
	if _, err := c.GetEmployee(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	list, err := c.ListEmployees(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListEmployees: %v %v", list, err)
	}

	opts, err := c.Options(ctx)
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if len(opts.Roles) == 0 || opts.Roles[0] != query.AllRoles {
		t.Fatalf("unexpected options %+v", opts)
	}

	cat, err := c.Questions(ctx)
	if err != nil || len(cat.Questions) != assessment.NumQuestions {
		t.Fatalf("Questions: %d %v", len(cat.Questions), err)
	}
}

func TestClient_Export(t *testing.T) {
	m := mock.NewMocks()
	m.EmpRepo.Stored = []models.Employee{
		{ID: "emp-a", Name: "Zed", Role: "Engineer", Tags: []string{}},
		{ID: "emp-b", Name: "Amy", Role: "Designer", Tags: []string{}},
	}
	_, c := startAPI(t, m)
	signAs(t, c, models.RoleAdmin)
	ctx := context.Background()

	_, _, ok, err := c.Export(ctx, "csv", query.Spec{Role: "Nobody"})
	if err != nil || ok {
		t.Fatalf("empty export: ok=%v err=%v", ok, err)
	}

	name, data, ok, err := c.Export(ctx, "csv", query.Spec{Role: "Designer"})
	if err != nil || !ok {
		t.Fatalf("Export: ok=%v err=%v", ok, err)
	}
	if !strings.HasPrefix(name, "employees_export_") || !strings.HasSuffix(name, ".csv") {
		t.Fatalf("unexpected filename %q", name)
	}
	lines := strings.Split(string(data), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], `"Amy"`) {
		t.Fatalf("unexpected export %q", data)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, err := client.NewClient(testConfig(srv.URL), srv.Client())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()

	list, err := c.ListEmployees(context.Background())
	if err != nil {
		t.Fatalf("ListEmployees: %v", err)
	}
	if len(list) != 0 || atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits)
	}
}

func TestClient_PostIsNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := client.NewClient(testConfig(srv.URL), srv.Client())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()

	_, err = c.CreateEmployee(context.Background(), &models.Employee{Name: "A", Email: "a@x.com", Role: "r"})
	if !errors.Is(err, repository.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("POST must be sent once, got %d", hits)
	}
}

func TestClient_CircuitOpens(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Retries = 0
	cfg.CircuitFailureThreshold = 1
	c, err := client.NewClient(cfg, srv.Client())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Health(ctx); !errors.Is(err, repository.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
	if err := c.Health(ctx); !errors.Is(err, client.ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("open circuit must not reach the server, got %d hits", hits)
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := testConfig(url)
	cfg.Retries = 0
	c, err := client.NewClient(cfg, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()

	if _, err := c.ListEmployees(context.Background()); !errors.Is(err, repository.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
}

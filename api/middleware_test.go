package api_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/garnizeh/assessboard/api"
	"github.com/garnizeh/assessboard/internal/models"
)

func TestLoggingMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("ok"))
	})

	handler := api.LoggingMiddleware(next)
	req := httptest.NewRequest(http.MethodGet, "/log", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	res := w.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusTeapot {
		t.Fatalf("expected status to pass through, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if string(b) != "ok" {
		t.Fatalf("unexpected body: %q", string(b))
	}
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := api.CORSMiddleware(next)

	// OPTIONS should return 204 and not call next
	reqOpt := httptest.NewRequest(http.MethodOptions, "/cors", nil)
	wOpt := httptest.NewRecorder()
	handler.ServeHTTP(wOpt, reqOpt)
	resOpt := wOpt.Result()
	defer resOpt.Body.Close()
	if resOpt.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 for OPTIONS, got %d", resOpt.StatusCode)
	}
	if got := resOpt.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected CORS header set, got %q", got)
	}

	// GET should pass through and set headers
	reqGet := httptest.NewRequest(http.MethodGet, "/cors", nil)
	wGet := httptest.NewRecorder()
	handler.ServeHTTP(wGet, reqGet)
	resGet := wGet.Result()
	defer resGet.Body.Close()
	if resGet.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for GET, got %d", resGet.StatusCode)
	}
	if got := resGet.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, "PUT") {
		t.Fatalf("expected Allow-Methods to include PUT, got %q", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	// handler that panics
	pan := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := api.RecoveryMiddleware(pan)
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	res := w.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 from panic recovery, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "Internal Server Error") {
		t.Fatalf("unexpected body for recovery: %s", string(b))
	}
}

func TestJWTAuthMiddlewareWithSecret(t *testing.T) {
	secret := "s3cr3t"
	var gotRole, gotID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole = api.RoleFromContext(r.Context())
		gotID = api.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := api.JWTAuthMiddlewareWithSecret(secret)(next)

	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte(secret))
	wrongKey, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("other"))

	cases := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "MissingHeader", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "EmptyBearer", authHeader: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "BadToken", authHeader: "Bearer bad.token.here", wantStatus: http.StatusUnauthorized},
		{name: "Expired", authHeader: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "WrongKey", authHeader: "Bearer " + wrongKey, wantStatus: http.StatusUnauthorized},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/jwt", nil)
			if c.authHeader != "" {
				req.Header.Set("Authorization", c.authHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Result().StatusCode != c.wantStatus {
				t.Fatalf("%s: want %d got %d", c.name, c.wantStatus, w.Result().StatusCode)
			}
		})
	}

	// now test valid token
	tokStr, err := api.SignToken(secret, &models.User{ID: "user-7", Email: "a@b.c", Role: models.RoleHR}, time.Hour)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/jwt", nil)
	req.Header.Set("Authorization", "Bearer "+tokStr)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("valid token: expected 200 got %d", w.Result().StatusCode)
	}
	if gotRole != models.RoleHR || gotID != "user-7" {
		t.Fatalf("claims not propagated: role=%q id=%q", gotRole, gotID)
	}
}

func TestRequireRole(t *testing.T) {
	secret := "s3cr3t"
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := api.JWTAuthMiddlewareWithSecret(secret)(api.RequireRole(models.RoleAdmin, models.RoleHR)(next))

	cases := []struct {
		role       string
		wantStatus int
	}{
		{role: models.RoleAdmin, wantStatus: http.StatusOK},
		{role: models.RoleHR, wantStatus: http.StatusOK},
		{role: models.RoleEmployee, wantStatus: http.StatusForbidden},
		{role: "", wantStatus: http.StatusForbidden},
		{role: "hr", wantStatus: http.StatusForbidden},
	}
	for _, c := range cases {
		t.Run("role="+c.role, func(t *testing.T) {
			tok, err := api.SignToken(secret, &models.User{ID: "u", Role: c.role}, time.Hour)
			if err != nil {
				t.Fatalf("sign: %v", err)
			}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tok)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != c.wantStatus {
				t.Fatalf("want %d got %d", c.wantStatus, w.Code)
			}
			if c.wantStatus == http.StatusForbidden && !strings.Contains(w.Body.String(), "not authorized") {
				t.Fatalf("unexpected body %s", w.Body.String())
			}
		})
	}
}

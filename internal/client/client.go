// Package client talks to the Record Store HTTP service. It adds retries,
// a per-request timeout and a simple circuit breaker, and maps HTTP status
// codes back onto the repository sentinel errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/garnizeh/assessboard/internal/assessment"
	"github.com/garnizeh/assessboard/internal/config"
	"github.com/garnizeh/assessboard/internal/models"
	"github.com/garnizeh/assessboard/internal/query"
	"github.com/garnizeh/assessboard/internal/repository"
)

var (
	ErrCircuitOpen = errors.New("record store circuit open")
	// ErrUnauthenticated is returned for a missing or expired session.
	ErrUnauthenticated = errors.New("not signed in")
)

// Client is an HTTP implementation of repository.EmployeeRepo.
type Client struct {
	cfg    config.ClientConfig
	base   *url.URL
	client *http.Client

	mu    sync.RWMutex
	token string

	// simple circuit breaker state
	failures  int32
	openUntil int64 // unix nano
	closed    int32 // atomic flag for Close()
}

var _ repository.EmployeeRepo = (*Client)(nil)

// package-level logger for the client package; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by the client package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// NewClient creates a client for the service at cfg.BaseURL.
func NewClient(cfg config.ClientConfig, httpClient *http.Client) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	u, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	logger.Debug("client: created", slog.String("base_url", cfg.BaseURL), slog.Duration("timeout", cfg.Timeout))
	return &Client{cfg: cfg, base: u, client: httpClient}, nil
}

func NewDefaultClient(cfg config.ClientConfig) (*Client, error) {
	defaultClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 15 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          20,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	return NewClient(cfg, defaultClient)
}

// SetToken installs the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.failures) < int32(c.cfg.CircuitFailureThreshold) {
		return false
	}

	if time.Now().UnixNano() < atomic.LoadInt64(&c.openUntil) {
		return true
	}

	// attempt half-open: reset failures and allow a request
	atomic.StoreInt32(&c.failures, 0)
	return false
}

func (c *Client) recordFailure() {
	v := atomic.AddInt32(&c.failures, 1)
	if v >= int32(c.cfg.CircuitFailureThreshold) {
		atomic.StoreInt64(&c.openUntil, time.Now().Add(c.cfg.CircuitReset).UnixNano())
	}
}

// Close releases idle connections on the underlying transport. Close is
// idempotent and safe to call multiple times.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.client != nil && c.client.Transport != nil {
		if tr, ok := c.client.Transport.(interface{ CloseIdleConnections() }); ok {
			tr.CloseIdleConnections()
			logger.Debug("client: Close() called - CloseIdleConnections invoked")
		}
	}
	return nil
}

type apiError struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

// response is a successful reply with its body fully read.
type response struct {
	status int
	header http.Header
	body   []byte
}

// do sends one logical request. GET and PUT are retried on transport
// failures and 5xx replies; POST is sent once.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, in any) (*response, error) {
	if c.isCircuitOpen() {
		return nil, ErrCircuitOpen
	}

	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		payload = b
	}

	u := c.base.ResolveReference(&url.URL{Path: strings.TrimSuffix(c.base.Path, "/") + path})
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	attempts := 1
	if method != http.MethodPost {
		attempts += c.cfg.Retries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		resp, err := c.once(ctx, method, u.String(), payload)
		if err == nil {
			atomic.StoreInt32(&c.failures, 0)
			return resp, nil
		}
		if !errors.Is(err, repository.ErrStoreUnavailable) {
			// the service answered; it is reachable
			atomic.StoreInt32(&c.failures, 0)
			return nil, err
		}

		lastErr = err
		c.recordFailure()
		logger.Warn("client: request failed", slog.String("method", method), slog.String("path", path),
			slog.Int("attempt", attempt+1), slog.Any("err", err))

		if attempt+1 == attempts {
			break
		}
		if c.isCircuitOpen() {
			return nil, ErrCircuitOpen
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.cfg.Backoff * time.Duration(attempt+1)):
		}
	}

	return nil, lastErr
}

func (c *Client) once(ctx context.Context, method, target string, payload []byte) (*response, error) {
	ctxReq, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctxReq, method, target, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", repository.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", repository.ErrStoreUnavailable, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
	}
	return nil, statusError(resp.StatusCode, data)
}

// statusError maps a non-2xx reply onto the sentinel errors.
func statusError(status int, body []byte) error {
	var ae apiError
	_ = json.Unmarshal(body, &ae)

	switch {
	case status == http.StatusBadRequest:
		if len(ae.Fields) > 0 {
			return &assessment.ValidationError{Fields: ae.Fields}
		}
		return &assessment.ValidationError{Fields: map[string]string{"body": ae.Message}}
	case status == http.StatusUnauthorized:
		return ErrUnauthenticated
	case status == http.StatusForbidden:
		return repository.ErrUnauthorized
	case status == http.StatusNotFound:
		return repository.ErrNotFound
	case status == http.StatusConflict:
		return repository.ErrDuplicateEmail
	case status >= 500:
		return fmt.Errorf("%w: status %d", repository.ErrStoreUnavailable, status)
	}
	return fmt.Errorf("unexpected status %d: %s", status, ae.Message)
}

func decode(resp *response, out any) error {
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Health checks that the service answers.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil, nil)
	return err
}

// draftOf converts an unsaved record into the create payload.
func draftOf(e *models.Employee) assessment.Draft {
	return assessment.Draft{
		Name:                e.Name,
		Email:               e.Email,
		Role:                e.Role,
		AssessmentSubmitted: e.AssessmentSubmitted,
		AssessmentAnswers:   e.AssessmentAnswers,
		Tags:                e.Tags,
		Culture:             e.Culture,
		Learning:            e.Learning,
		Interest:            e.Interest,
		Goals:               e.Goals,
		SubmissionDate:      e.SubmissionDate,
		LearningScore:       assessment.Score(e.LearningScore),
	}
}

func (c *Client) CreateEmployee(ctx context.Context, e *models.Employee) (*models.Employee, error) {
	if e == nil {
		return nil, fmt.Errorf("employee is nil")
	}
	resp, err := c.do(ctx, http.MethodPost, "/v1/employees", nil, draftOf(e))
	if err != nil {
		return nil, err
	}
	var out models.Employee
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateEmployee(ctx context.Context, id string, p assessment.Patch) (*models.Employee, error) {
	resp, err := c.do(ctx, http.MethodPut, "/v1/employees/"+url.PathEscape(id), nil, p)
	if err != nil {
		return nil, err
	}
	var out models.Employee
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v1/employees/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	var out models.Employee
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v1/employees", nil, nil)
	if err != nil {
		return nil, err
	}
	out := []models.Employee{}
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Options fetches the server-side distinct selector values.
func (c *Client) Options(ctx context.Context) (query.OptionSet, error) {
	var out query.OptionSet
	resp, err := c.do(ctx, http.MethodGet, "/v1/employees/options", nil, nil)
	if err != nil {
		return out, err
	}
	err = decode(resp, &out)
	return out, err
}

func (c *Client) Questions(ctx context.Context) (assessment.Catalog, error) {
	var out assessment.Catalog
	resp, err := c.do(ctx, http.MethodGet, "/v1/assessment/questions", nil, nil)
	if err != nil {
		return out, err
	}
	err = decode(resp, &out)
	return out, err
}

// Export downloads the server-rendered export of the records matching spec.
// ok is false when nothing matched.
func (c *Client) Export(ctx context.Context, format string, spec query.Spec) (filename string, data []byte, ok bool, err error) {
	params := url.Values{"format": {format}}
	for k, v := range map[string]string{
		"search": spec.Search, "role": spec.Role, "interest": spec.Interest, "goals": spec.Goals,
		"culture": spec.Culture, "learning": spec.Learning, "sort": spec.SortOption,
	} {
		if v != "" {
			params.Set(k, v)
		}
	}

	resp, err := c.do(ctx, http.MethodGet, "/v1/employees/export", params, nil)
	if err != nil {
		return "", nil, false, err
	}
	if resp.status == http.StatusNoContent {
		return "", nil, false, nil
	}
	return dispositionFilename(resp.header.Get("Content-Disposition")), resp.body, true, nil
}

func dispositionFilename(cd string) string {
	const marker = "filename="
	i := strings.Index(cd, marker)
	if i < 0 {
		return ""
	}
	return strings.Trim(cd[i+len(marker):], `"`)
}

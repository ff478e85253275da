// Package dashboard is the view model behind the employee dashboard. It
// holds the last fetched record set and the active filter spec, and derives
// the visible list and selector options on demand.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/garnizeh/assessboard/internal/assessment"
	"github.com/garnizeh/assessboard/internal/export"
	"github.com/garnizeh/assessboard/internal/models"
	"github.com/garnizeh/assessboard/internal/preset"
	"github.com/garnizeh/assessboard/internal/query"
	"github.com/garnizeh/assessboard/internal/repository"
)

// ErrBusy is returned when a write is started while another is in flight.
var ErrBusy = errors.New("another write is in progress")

var logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))

// SetLogger sets the logger used by the dashboard. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

type View struct {
	store repository.EmployeeRepo

	mu      sync.Mutex
	records []models.Employee
	version uint64
	spec    query.Spec

	// memoized derived views
	visible        []models.Employee
	visibleVersion uint64
	visibleSpec    query.Spec
	visibleOK      bool
	options        query.OptionSet
	optionsVersion uint64
	optionsOK      bool

	writing atomic.Bool
}

// New opens a view for role. Only admin and HR may see the dashboard.
func New(store repository.EmployeeRepo, role string) (*View, error) {
	if !models.CanViewDashboard(role) {
		return nil, repository.ErrUnauthorized
	}
	return &View{store: store, records: []models.Employee{}, spec: query.DefaultSpec()}, nil
}

// Refresh replaces the record set with the store's current list. On failure
// the previous list stays in place.
func (v *View) Refresh(ctx context.Context) error {
	list, err := v.store.ListEmployees(ctx)
	if err != nil {
		logger.Warn("dashboard: refresh failed, keeping previous list", slog.Any("err", err))
		return fmt.Errorf("refresh: %w", err)
	}
	if list == nil {
		list = []models.Employee{}
	}

	v.mu.Lock()
	v.records = list
	v.version++
	v.mu.Unlock()
	return nil
}

// Records returns the full record set in store order.
func (v *View) Records() []models.Employee {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.Employee(nil), v.records...)
}

func (v *View) Spec() query.Spec {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.spec
}

// SetSpec installs s as given.
func (v *View) SetSpec(s query.Spec) {
	v.mu.Lock()
	v.spec = s
	v.mu.Unlock()
}

// ApplyPreset replaces every filter field and the sort mode at once.
func (v *View) ApplyPreset(p preset.Preset) {
	v.SetSpec(p.Apply())
}

// SavePreset stores the active spec under name.
func (v *View) SavePreset(store *preset.Store, name string) (preset.Preset, error) {
	return store.Save(name, v.Spec())
}

// Visible returns the filtered and sorted view of the record set.
func (v *View) Visible() []models.Employee {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.visibleOK || v.visibleVersion != v.version || v.visibleSpec != v.spec {
		v.visible = query.Apply(v.records, v.spec)
		v.visibleVersion, v.visibleSpec, v.visibleOK = v.version, v.spec, true
	}
	return append([]models.Employee(nil), v.visible...)
}

// Options returns the selector values derived from the whole record set.
func (v *View) Options() query.OptionSet {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.optionsOK || v.optionsVersion != v.version {
		v.options = query.Options(v.records)
		v.optionsVersion, v.optionsOK = v.version, true
	}
	return v.options
}

// Create validates d, writes it and refreshes the list. A refresh failure
// after a successful write is logged, not returned.
func (v *View) Create(ctx context.Context, d assessment.Draft) (*models.Employee, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d.Normalize()

	if !v.writing.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer v.writing.Store(false)

	e := models.NewEmployee(d)
	rec, err := v.store.CreateEmployee(ctx, &e)
	if err != nil {
		return nil, err
	}
	v.refreshAfterWrite(ctx)
	return rec, nil
}

// Update validates and applies p to the record with id.
func (v *View) Update(ctx context.Context, id string, p assessment.Patch) (*models.Employee, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.Normalize()

	if !v.writing.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer v.writing.Store(false)

	rec, err := v.store.UpdateEmployee(ctx, id, p)
	if err != nil {
		return nil, err
	}
	v.refreshAfterWrite(ctx)
	return rec, nil
}

func (v *View) refreshAfterWrite(ctx context.Context) {
	if err := v.Refresh(ctx); err != nil {
		logger.Warn("dashboard: list is stale after write", slog.Any("err", err))
	}
}

// ExportCSV renders the visible view. ok is false when it is empty.
func (v *View) ExportCSV(now time.Time) (filename, content string, ok bool) {
	content, ok = export.CSV(v.Visible())
	if !ok {
		return "", "", false
	}
	return export.Filename(now, "csv"), content, true
}

// ExportXLSX writes the visible view as a workbook to w.
func (v *View) ExportXLSX(now time.Time, w io.Writer) (filename string, ok bool, err error) {
	ok, err = export.WriteXLSX(w, v.Visible())
	if err != nil || !ok {
		return "", ok, err
	}
	return export.Filename(now, "xlsx"), true, nil
}

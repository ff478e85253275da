package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/garnizeh/assessboard/internal/assessment"
	"github.com/garnizeh/assessboard/internal/export"
	"github.com/garnizeh/assessboard/internal/models"
	"github.com/garnizeh/assessboard/internal/query"
	"github.com/garnizeh/assessboard/internal/repository"
)

const (
	maxBodyBytes = 1 << 20

	contentTypeCSV  = "text/csv;charset=utf-8;"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type EmployeesHandler struct {
	repo    repository.EmployeeRepo
	schemas *assessment.Schemas
	now     func() time.Time
}

func NewEmployeesHandler(repo repository.EmployeeRepo, schemas *assessment.Schemas) *EmployeesHandler {
	return &EmployeesHandler{repo: repo, schemas: schemas, now: time.Now}
}

// decodeChecked validates body against schema before decoding it into v.
func (h *EmployeesHandler) decodeChecked(r *http.Request, schema string, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return &assessment.ValidationError{Fields: map[string]string{"body": "unreadable body"}}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return &assessment.ValidationError{Fields: map[string]string{"body": "empty body"}}
	}
	if err := h.schemas.Check(r.Context(), schema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &assessment.ValidationError{Fields: map[string]string{"body": err.Error()}}
	}
	return nil
}

func (h *EmployeesHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var d assessment.Draft
	if err := h.decodeChecked(r, assessment.SchemaCreate, &d); err != nil {
		writeStoreError(w, err)
		return
	}
	if err := d.Validate(); err != nil {
		writeStoreError(w, err)
		return
	}
	d.Normalize()

	e := models.NewEmployee(d)
	created, err := h.repo.CreateEmployee(r.Context(), &e)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	logger.Info("employee created", slog.String("id", created.ID), slog.String("by", UserIDFromContext(r.Context())))
	writeJSON(w, http.StatusCreated, created)
}

func (h *EmployeesHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var p assessment.Patch
	if err := h.decodeChecked(r, assessment.SchemaUpdate, &p); err != nil {
		writeStoreError(w, err)
		return
	}
	if p.Empty() {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}
	if err := p.Validate(); err != nil {
		writeStoreError(w, err)
		return
	}
	p.Normalize()

	updated, err := h.repo.UpdateEmployee(r.Context(), id, p)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *EmployeesHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := h.repo.GetEmployee(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// ListEmployees returns every record in creation order. When any filter or
// sort parameter is present the query engine is applied first.
func (h *EmployeesHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	records, ok := h.visible(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *EmployeesHandler) ListOptions(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.ListEmployees(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, query.Options(records))
}

// Export streams the visible records as CSV or XLSX. An empty result is a 204.
func (h *EmployeesHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: "validation failed",
			Fields:  map[string]string{"format": "format must be csv or xlsx"},
		})
		return
	}

	records, ok := h.visible(w, r)
	if !ok {
		return
	}
	if len(records) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	filename := export.Filename(h.now(), format)
	switch format {
	case "xlsx":
		var buf bytes.Buffer
		if _, err := export.WriteXLSX(&buf, records); err != nil {
			logger.Error("export: xlsx", slog.Any("err", err))
			writeError(w, http.StatusInternalServerError, "export failed")
			return
		}
		w.Header().Set("Content-Type", contentTypeXLSX)
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	default:
		content, _ := export.CSV(records)
		w.Header().Set("Content-Type", contentTypeCSV)
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, content)
	}
}

func (h *EmployeesHandler) visible(w http.ResponseWriter, r *http.Request) ([]models.Employee, bool) {
	records, err := h.repo.ListEmployees(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return nil, false
	}
	if spec, ok := specFromQuery(r); ok {
		records = query.Apply(records, spec.WithDefaults())
	}
	return records, true
}

// specFromQuery reads filter parameters. ok is false when none are present.
func specFromQuery(r *http.Request) (query.Spec, bool) {
	q := r.URL.Query()
	spec := query.Spec{
		Search:     q.Get("search"),
		Role:       q.Get("role"),
		Interest:   q.Get("interest"),
		Goals:      q.Get("goals"),
		Culture:    q.Get("culture"),
		Learning:   q.Get("learning"),
		SortOption: q.Get("sort"),
	}
	return spec, spec != (query.Spec{})
}

package assessment

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/qri-io/jsonschema"
)

// Payload schema names.
const (
	SchemaCreate = "employee_create"
	SchemaUpdate = "employee_update"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// Schemas caches compiled JSON schemas for incoming payloads.
type Schemas struct {
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

// LoadSchemas compiles the embedded payload schemas.
func LoadSchemas() (*Schemas, error) {
	s := &Schemas{cache: make(map[string]*jsonschema.Schema)}
	if err := s.Reload(schemaFiles, "schemas"); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload compiles every *.json file in dir, keyed by file name without
// extension, and swaps the cache.
func (s *Schemas) Reload(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}

	newCache := make(map[string]*jsonschema.Schema)
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".json" {
			continue
		}
		b, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("read schema %s: %w", e.Name(), err)
		}
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(b, rs); err != nil {
			return fmt.Errorf("compile schema %s: %w", e.Name(), err)
		}
		newCache[strings.TrimSuffix(e.Name(), ".json")] = rs
	}

	s.mu.Lock()
	s.cache = newCache
	s.mu.Unlock()
	return nil
}

// Get returns the compiled schema registered under name.
func (s *Schemas) Get(name string) (*jsonschema.Schema, bool) {
	s.mu.RLock()
	rs, ok := s.cache[name]
	s.mu.RUnlock()
	return rs, ok
}

// Check validates data against the named schema. Violations come back as a
// *ValidationError keyed by the top-level field they concern.
func (s *Schemas) Check(ctx context.Context, name string, data []byte) error {
	rs, ok := s.Get(name)
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	verrs, err := rs.ValidateBytes(ctx, data)
	if err != nil {
		return &ValidationError{Fields: map[string]string{"body": "malformed JSON"}}
	}
	if len(verrs) == 0 {
		return nil
	}

	var verr ValidationError
	for _, v := range verrs {
		field := strings.TrimPrefix(v.PropertyPath, "/")
		if i := strings.Index(field, "/"); i >= 0 {
			field = field[:i]
		}
		if field == "" {
			field = "body"
		}
		if _, seen := verr.Fields[field]; !seen {
			verr.add(field, v.Message)
		}
	}
	return &verr
}

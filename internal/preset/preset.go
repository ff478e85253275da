// Package preset stores named filter and sort configurations in client-local
// storage. The whole list lives under one key and is rewritten on every
// change.
package preset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"

	"github.com/garnizeh/assessboard/internal/query"
)

// StorageKey is the key holding the serialized preset list.
const StorageKey = "employeeFilterPresets"

var ErrNameRequired = errors.New("preset name is required")

const listSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["name", "filters"],
    "properties": {
      "name": {"type": "string"},
      "filters": {
        "type": "object",
        "properties": {
          "search": {"type": "string"},
          "role": {"type": "string"},
          "interest": {"type": "string"},
          "goals": {"type": "string"},
          "culture": {"type": "string"},
          "learning": {"type": "string"},
          "sortOption": {"type": "string"}
        }
      }
    }
  }
}`

// Preset is a named filter and sort configuration.
type Preset struct {
	Name    string     `json:"name"`
	Filters query.Spec `json:"filters"`
}

// Store holds the preset list loaded from Storage.
type Store struct {
	storage Storage
	schema  *jsonschema.Schema
	presets []Preset
}

// Load reads the persisted list once. A missing key yields an empty store.
func Load(ctx context.Context, storage Storage) (*Store, error) {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(listSchema), rs); err != nil {
		return nil, fmt.Errorf("compile preset schema: %w", err)
	}
	s := &Store{storage: storage, schema: rs, presets: []Preset{}}

	blob, ok, err := storage.GetItem(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load presets: %w", err)
	}
	if !ok || strings.TrimSpace(blob) == "" {
		return s, nil
	}

	verrs, err := rs.ValidateBytes(ctx, []byte(blob))
	if err != nil {
		return nil, fmt.Errorf("decode presets: %w", err)
	}
	if len(verrs) > 0 {
		return nil, fmt.Errorf("invalid presets blob: %s", verrs[0].Message)
	}
	if err := json.Unmarshal([]byte(blob), &s.presets); err != nil {
		return nil, fmt.Errorf("decode presets: %w", err)
	}
	if s.presets == nil {
		s.presets = []Preset{}
	}
	return s, nil
}

// List returns a copy of the presets in save order.
func (s *Store) List() []Preset {
	return append([]Preset(nil), s.presets...)
}

// Save appends a preset named name (trimmed) holding spec. Duplicate names
// are allowed.
func (s *Store) Save(name string, spec query.Spec) (Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Preset{}, ErrNameRequired
	}
	p := Preset{Name: name, Filters: spec}
	updated := append(s.List(), p)
	if err := s.persist(updated); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// Remove deletes every preset named name and returns how many were dropped.
func (s *Store) Remove(name string) (int, error) {
	updated := make([]Preset, 0, len(s.presets))
	for _, p := range s.presets {
		if p.Name != name {
			updated = append(updated, p)
		}
	}
	removed := len(s.presets) - len(updated)
	if err := s.persist(updated); err != nil {
		return 0, err
	}
	return removed, nil
}

// Find returns the first preset named name.
func (s *Store) Find(name string) (Preset, bool) {
	for _, p := range s.presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Apply returns the spec to install: all six filter fields and the sort
// mode are replaced together.
func (p Preset) Apply() query.Spec {
	return p.Filters
}

func (s *Store) persist(updated []Preset) error {
	b, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("encode presets: %w", err)
	}
	if err := s.storage.SetItem(StorageKey, string(b)); err != nil {
		return fmt.Errorf("persist presets: %w", err)
	}
	s.presets = updated
	return nil
}

// Package seed loads demo employee records from JSON files and writes them
// through a Record Store.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/garnizeh/assessboard/internal/assessment"
	"github.com/garnizeh/assessboard/internal/models"
	"github.com/garnizeh/assessboard/internal/repository"
)

const seedDir = "seed"

// Drafts reads every .json file under seed/ in fsys, in lexical order. Each
// file holds an array of employee drafts.
func Drafts(fsys fs.FS) ([]assessment.Draft, error) {
	entries, err := fs.ReadDir(fsys, seedDir)
	if err != nil {
		return nil, fmt.Errorf("read seed dir: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	var out []assessment.Draft
	for _, name := range files {
		b, err := fs.ReadFile(fsys, path.Join(seedDir, name))
		if err != nil {
			return nil, fmt.Errorf("read seed %s: %w", name, err)
		}
		var drafts []assessment.Draft
		if err := json.Unmarshal(b, &drafts); err != nil {
			return nil, fmt.Errorf("decode seed %s: %w", name, err)
		}
		for i := range drafts {
			if err := drafts[i].Validate(); err != nil {
				return nil, fmt.Errorf("seed %s entry %d: %w", name, i, err)
			}
			drafts[i].Normalize()
		}
		out = append(out, drafts...)
	}
	return out, nil
}

// Employees creates a record per draft. Drafts whose email is already stored
// are skipped, so seeding twice is harmless.
func Employees(ctx context.Context, repo repository.EmployeeRepo, drafts []assessment.Draft) (int, error) {
	created := 0
	for _, d := range drafts {
		e := models.NewEmployee(d)
		if _, err := repo.CreateEmployee(ctx, &e); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				continue
			}
			return created, fmt.Errorf("seed %s: %w", d.Email, err)
		}
		created++
	}
	return created, nil
}

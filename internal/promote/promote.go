// Package promote copies modules between environments.
//
// Promotion is a copy keyed on name, not a move: a module is a candidate
// when no module in the target environment carries the same name, and the
// copy starts from scratch as In Progress regardless of the source state.
package promote

import (
	"fmt"

	"github.com/fentz26/qatrack/internal/models"
	"github.com/fentz26/qatrack/internal/registry"
)

// ErrEmptySelection indicates an apply call with nothing selected.
var ErrEmptySelection = fmt.Errorf("no modules selected for promotion")

// Candidates returns the modules in src whose name (case-sensitive) does
// not appear on any module in tgt.
func Candidates(mods []models.Module, src, tgt models.Environment) []models.Module {
	taken := make(map[string]bool)
	for _, m := range mods {
		if m.Environment == tgt {
			taken[m.Name] = true
		}
	}

	var out []models.Module
	for _, m := range mods {
		if m.Environment == src && !taken[m.Name] {
			out = append(out, m.Clone())
		}
	}
	return out
}

// Apply creates one fresh In Progress module in tgt per selected name,
// copying nothing but the name. It returns the number created. An empty
// selection is rejected before anything is created.
func Apply(reg *registry.Registry, tgt models.Environment, names []string) (int, error) {
	if len(names) == 0 {
		return 0, ErrEmptySelection
	}

	created := 0
	for _, name := range names {
		if _, err := reg.Add(tgt, registry.Draft{
			Name:   name,
			Status: models.StatusInProgress,
		}); err != nil {
			return created, fmt.Errorf("promote %q: %w", name, err)
		}
		created++
	}
	return created, nil
}

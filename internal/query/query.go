// Package query derives filtered, sorted views of the module collection.
package query

import (
	"sort"
	"strings"

	"github.com/fentz26/qatrack/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort keys accepted by Filter. Any other value leaves the filtered order
// untouched.
const (
	SortNameAsc      = "name_asc"
	SortNameDesc     = "name_desc"
	SortStatus       = "status"
	SortFailuresDesc = "failures_desc"
)

// SortKeys lists the recognized sort keys in display order.
var SortKeys = []string{SortNameAsc, SortNameDesc, SortStatus, SortFailuresDesc}

// StatusAll is the wildcard status filter.
const StatusAll = "All"

// Options selects and orders one environment's view of the collection.
type Options struct {
	Environment models.Environment
	// Status keeps only modules with this exact status label. Empty or
	// StatusAll keeps everything.
	Status string
	// Search keeps only modules whose name contains this text,
	// case-insensitively.
	Search string
	// Sort is one of the Sort* keys.
	Sort string
}

// Filter returns a fresh, ordered slice of the modules matching opts.
// The input is never mutated.
func Filter(mods []models.Module, opts Options) []models.Module {
	search := strings.ToLower(opts.Search)

	out := make([]models.Module, 0, len(mods))
	for _, m := range mods {
		if m.Environment != opts.Environment {
			continue
		}
		if opts.Status != "" && opts.Status != StatusAll && string(m.Status) != opts.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(m.Name), search) {
			continue
		}
		out = append(out, m.Clone())
	}

	switch opts.Sort {
	case SortNameAsc:
		c := collate.New(language.Und)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Name, out[j].Name) < 0
		})
	case SortNameDesc:
		c := collate.New(language.Und)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[j].Name, out[i].Name) < 0
		})
	case SortStatus:
		// Lexicographic on the label, not business priority. Inherited
		// behavior; kept on purpose.
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Status < out[j].Status
		})
	case SortFailuresDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Failures > out[j].Failures
		})
	}

	return out
}

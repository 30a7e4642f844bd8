// Package filter implements the category filter engine: given a record and
// the user's current selection it decides inclusion, honoring the subgroup
// "everything selected means no filter" semantics of the dashboard UI.
package filter

import (
	"strings"
	"time"

	"github.com/sind-data/insecurity-dashboard/internal/taxonomy"
)

// Selection is the value object derived from UI state on every interaction:
// an inclusive date range plus the set of selected filter-tree leaves.
// The zero value selects nothing.
type Selection struct {
	Start  time.Time
	End    time.Time
	Leaves map[string]bool
}

// NewSelection builds a Selection from a leaf list. Duplicate leaves collapse
// by set semantics; ordering carries no meaning.
func NewSelection(start, end time.Time, leaves []string) Selection {
	set := make(map[string]bool, len(leaves))
	for _, l := range leaves {
		if l = strings.TrimSpace(l); l != "" {
			set[l] = true
		}
	}
	return Selection{Start: start, End: end, Leaves: set}
}

// DefaultSelection selects every leaf in the taxonomy over the given range.
// This is the state a freshly opened dashboard is in.
func DefaultSelection(start, end time.Time) Selection {
	return NewSelection(start, end, taxonomy.Leaves())
}

// Has reports whether the leaf is selected.
func (s Selection) Has(leaf string) bool {
	return s.Leaves[leaf]
}

// InRange reports whether the date falls inside the selection's inclusive
// bounds.
func (s Selection) InRange(date time.Time) bool {
	return !date.Before(s.Start) && !date.After(s.End)
}

// selectedIn returns the selected leaves within the given subgroup leaf list,
// preserving subgroup order.
func (s Selection) selectedIn(leaves []string) []string {
	var out []string
	for _, l := range leaves {
		if s.Leaves[l] {
			out = append(out, l)
		}
	}
	return out
}

// anySelected reports whether at least one of the leaves is selected.
func (s Selection) anySelected(leaves []string) bool {
	for _, l := range leaves {
		if s.Leaves[l] {
			return true
		}
	}
	return false
}

package filter

import (
	"strings"

	"github.com/sind-data/insecurity-dashboard/internal/model"
	"github.com/sind-data/insecurity-dashboard/internal/taxonomy"
)

// Engine decides record inclusion for a selection. It precomputes the
// taxonomy's leaf sets once; Match is a pure function of (record, selection).
type Engine struct {
	allLeaves    []string
	aidLeaves    []string
	sectorLeaves []string
	launchLeaves []string
	crsvLeaves   []string
	typeLeaves   []string
	sexLeaves    []string
	ageLeaves    []string
}

// NewEngine builds an Engine over the fixed filter taxonomy.
func NewEngine() *Engine {
	return &Engine{
		allLeaves:    taxonomy.Leaves(),
		aidLeaves:    taxonomy.SubgroupLeaves(taxonomy.SubgroupIncidentType),
		sectorLeaves: taxonomy.SubgroupLeaves(taxonomy.SubgroupSector),
		launchLeaves: taxonomy.SubgroupLeaves(taxonomy.SubgroupLaunch),
		crsvLeaves:   taxonomy.CategoryLeaves(model.CategoryCRSV),
		typeLeaves:   taxonomy.SubgroupLeaves(taxonomy.SubgroupTypeOfSV),
		sexLeaves:    taxonomy.SubgroupLeaves(taxonomy.SubgroupSurvivorSex),
		ageLeaves:    taxonomy.SubgroupLeaves(taxonomy.SubgroupAgeGroup),
	}
}

// Match reports whether the record is included under the selection.
//
// When every leaf in the taxonomy is selected, only the date predicate
// applies — no category predicate at all, even for records whose category
// set is empty. Otherwise the record must be in range and satisfy at least
// one of the three per-category rules; the categories OR together.
func (e *Engine) Match(rec model.IncidentRecord, sel Selection) bool {
	// Inverted bounds are undefined in the source; treat as empty.
	if sel.Start.After(sel.End) {
		return false
	}
	if !sel.InRange(rec.Date) {
		return false
	}

	if e.fullSelection(sel) {
		return true
	}

	return e.matchAidWorkers(rec, sel) ||
		e.matchWeapons(rec, sel) ||
		e.matchCRSV(rec, sel)
}

// Filter returns the records included under the selection, preserving input
// order. The result is a fresh slice the caller may hand off to renderers.
func (e *Engine) Filter(records []model.IncidentRecord, sel Selection) []model.IncidentRecord {
	out := make([]model.IncidentRecord, 0, len(records))
	for _, rec := range records {
		if e.Match(rec, sel) {
			out = append(out, rec)
		}
	}
	return out
}

// CountInRange counts records passing only the date predicate. The chart
// header reports this alongside the fully filtered count.
func (e *Engine) CountInRange(records []model.IncidentRecord, sel Selection) int {
	if sel.Start.After(sel.End) {
		return 0
	}
	n := 0
	for _, rec := range records {
		if sel.InRange(rec.Date) {
			n++
		}
	}
	return n
}

// fullSelection reports whether every taxonomy leaf is selected.
func (e *Engine) fullSelection(sel Selection) bool {
	n := 0
	for _, l := range e.allLeaves {
		if sel.Leaves[l] {
			n++
		}
	}
	return n == len(e.allLeaves)
}

// matchAidWorkers includes a record when it carries the aid_workers tag and
// at least one selected incident-type leaf has a strictly positive count.
func (e *Engine) matchAidWorkers(rec model.IncidentRecord, sel Selection) bool {
	if !rec.HasCategory(model.CategoryAidWorkers) || !sel.anySelected(e.aidLeaves) {
		return false
	}
	if rec.AidWorkers == nil {
		return false
	}
	c := rec.AidWorkers
	return (sel.Has(taxonomy.LeafKilled) && c.Killed > 0) ||
		(sel.Has(taxonomy.LeafInjured) && c.Injured > 0) ||
		(sel.Has(taxonomy.LeafKidnapped) && c.Kidnapped > 0) ||
		(sel.Has(taxonomy.LeafArrested) && c.Arrested > 0)
}

// matchWeapons applies the two weapons subgroups independently. A subgroup is
// active only when the user deselected at least one of its leaves; an active
// subgroup requires at least one selected leaf to appear in the record's
// corresponding list. All active subgroups must match; with no active
// subgroup, any weapons record matches.
func (e *Engine) matchWeapons(rec model.IncidentRecord, sel Selection) bool {
	if !rec.HasCategory(model.CategoryWeapons) {
		return false
	}
	if !sel.anySelected(e.sectorLeaves) && !sel.anySelected(e.launchLeaves) {
		return false
	}

	var sectors, launches []string
	if rec.Weapons != nil {
		sectors = lowerAll(rec.Weapons.Sectors)
		launches = lowerAll(rec.Weapons.LaunchMethods)
	}

	activeSectors := activeSubgroup(sel, e.sectorLeaves)
	activeLaunches := activeSubgroup(sel, e.launchLeaves)
	if len(activeSectors) == 0 && len(activeLaunches) == 0 {
		return true
	}

	if len(activeSectors) > 0 && !matchAnySector(activeSectors, sectors) {
		return false
	}
	if len(activeLaunches) > 0 && !matchAnyLaunch(activeLaunches, launches) {
		return false
	}
	return true
}

// matchCRSV applies the three CRSV subgroups. Unlike weapons, inclusion
// requires at least one subgroup to be active AND every active subgroup to
// find a match; matching is exact membership rather than substring.
func (e *Engine) matchCRSV(rec model.IncidentRecord, sel Selection) bool {
	if !rec.HasCategory(model.CategoryCRSV) || !sel.anySelected(e.crsvLeaves) {
		return false
	}

	var types, sexes, ages []string
	if rec.CRSV != nil {
		types = lowerAll(rec.CRSV.Types)
		sexes = lowerAll(rec.CRSV.Sexes)
		ages = lowerAll(rec.CRSV.AgeGroups)
	}

	activeTypes := activeSubgroup(sel, e.typeLeaves)
	activeSexes := activeSubgroup(sel, e.sexLeaves)
	activeAges := activeSubgroup(sel, e.ageLeaves)
	if len(activeTypes) == 0 && len(activeSexes) == 0 && len(activeAges) == 0 {
		return false
	}

	if len(activeTypes) > 0 && !anyMembership(activeTypes, types, svLabel) {
		return false
	}
	if len(activeSexes) > 0 && !anyMembership(activeSexes, sexes, identityLabel) {
		return false
	}
	if len(activeAges) > 0 && !anyMembership(activeAges, ages, identityLabel) {
		return false
	}
	return true
}

// activeSubgroup returns the selected leaves of a subgroup when the selection
// is a strict subset of it; a fully selected subgroup imposes no constraint
// and yields nil.
func activeSubgroup(sel Selection, subgroup []string) []string {
	selected := sel.selectedIn(subgroup)
	if len(selected) == len(subgroup) {
		return nil
	}
	return selected
}

// matchAnySector reports whether any selected sector leaf appears in the
// record's sector list. The compound "idp_refugee_protection" leaf matches
// any entry containing "protection"; other leaves match the
// underscores-to-spaces form exactly.
func matchAnySector(leaves, sectors []string) bool {
	for _, leaf := range leaves {
		if leaf == "idp_refugee_protection" {
			for _, s := range sectors {
				if strings.Contains(s, "protection") {
					return true
				}
			}
			continue
		}
		key := strings.ReplaceAll(leaf, "_", " ")
		for _, s := range sectors {
			if s == key {
				return true
			}
		}
	}
	return false
}

// launchNeedles maps launch-type leaves to the substring each matches
// against. Entries are compared colon-stripped so "Air-launched: Drone" and
// "Air-launched Drone" both match.
var launchNeedles = map[string]string{
	"air_launched":              "air-launched",
	"air_launched_plane":        "air-launched plane",
	"air_launched_drone":        "air-launched drone",
	"air_launched_helicopter":   "air-launched helicopter",
	"ground_launched":           "ground-launched",
	"directly_emplaced":         "directly emplaced",
	"unspecified_launch_method": "unspecified launch method",
}

// matchAnyLaunch reports whether any selected launch leaf's needle appears as
// a substring of any entry in the record's launch list.
func matchAnyLaunch(leaves, launches []string) bool {
	for _, leaf := range leaves {
		needle, ok := launchNeedles[leaf]
		if !ok {
			continue
		}
		for _, l := range launches {
			if strings.Contains(strings.ReplaceAll(l, ":", ""), needle) {
				return true
			}
		}
	}
	return false
}

// svLabel maps a CRSV type leaf to the label found in the data; the only
// divergence is the two-word "sexual slavery".
func svLabel(leaf string) string {
	if leaf == "sexual_slavery" {
		return "sexual slavery"
	}
	return leaf
}

// identityLabel is for subgroups whose leaf IDs equal their data labels.
func identityLabel(leaf string) string {
	return leaf
}

// anyMembership reports whether any leaf's mapped label is an exact member of
// the record's value list.
func anyMembership(leaves, values []string, label func(string) string) bool {
	for _, leaf := range leaves {
		want := label(leaf)
		for _, v := range values {
			if v == want {
				return true
			}
		}
	}
	return false
}

// lowerAll lowercases and trims every entry of a value list for matching.
func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}

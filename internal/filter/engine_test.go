package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sind-data/insecurity-dashboard/internal/model"
	"github.com/sind-data/insecurity-dashboard/internal/taxonomy"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func aidRecord(date string, counts model.AidWorkerCounts) model.IncidentRecord {
	return model.IncidentRecord{
		EventID:    "aid-1",
		Date:       day(date),
		Categories: []model.CategoryTag{model.CategoryAidWorkers},
		AidWorkers: &counts,
	}
}

func weaponsRecord(date string, sectors, launches []string) model.IncidentRecord {
	return model.IncidentRecord{
		EventID:    "wpn-1",
		Date:       day(date),
		Categories: []model.CategoryTag{model.CategoryWeapons},
		Weapons:    &model.WeaponsDetail{Sectors: sectors, LaunchMethods: launches},
	}
}

func crsvRecord(date string, types, sexes, ages []string) model.IncidentRecord {
	return model.IncidentRecord{
		EventID:    "sv-1",
		Date:       day(date),
		Categories: []model.CategoryTag{model.CategoryCRSV},
		CRSV:       &model.CRSVDetail{Types: types, Sexes: sexes, AgeGroups: ages},
	}
}

// without returns the full leaf set minus the given leaves.
func without(drop ...string) []string {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	var out []string
	for _, l := range taxonomy.Leaves() {
		if !skip[l] {
			out = append(out, l)
		}
	}
	return out
}

func TestMatchFullSelectionIsDateOnly(t *testing.T) {
	e := NewEngine()
	sel := DefaultSelection(day("2024-01-01"), day("2024-12-31"))

	// A record with an empty category set still matches when every leaf is
	// selected; only the date range applies.
	inert := model.IncidentRecord{EventID: "x", Date: day("2024-06-15")}
	assert.True(t, e.Match(inert, sel))

	outOfRange := model.IncidentRecord{EventID: "y", Date: day("2025-01-01")}
	assert.False(t, e.Match(outOfRange, sel))
}

func TestMatchDateRangeInclusive(t *testing.T) {
	e := NewEngine()
	sel := DefaultSelection(day("2024-03-01"), day("2024-03-31"))

	rec := aidRecord("2024-03-01", model.AidWorkerCounts{Killed: 1})
	assert.True(t, e.Match(rec, sel), "start boundary is inclusive")

	rec.Date = day("2024-03-31")
	assert.True(t, e.Match(rec, sel), "end boundary is inclusive")

	rec.Date = day("2024-02-29")
	assert.False(t, e.Match(rec, sel))
}

func TestMatchInvertedRangeMatchesNothing(t *testing.T) {
	e := NewEngine()
	sel := DefaultSelection(day("2024-12-31"), day("2024-01-01"))

	rec := aidRecord("2024-06-15", model.AidWorkerCounts{Killed: 1})
	assert.False(t, e.Match(rec, sel))
	assert.Zero(t, e.CountInRange([]model.IncidentRecord{rec}, sel))
}

func TestMatchAidWorkers(t *testing.T) {
	e := NewEngine()
	start, end := day("2024-01-01"), day("2024-12-31")

	tests := []struct {
		name   string
		leaves []string
		counts model.AidWorkerCounts
		want   bool
	}{
		{
			name:   "selected leaf with positive count",
			leaves: []string{taxonomy.LeafKilled},
			counts: model.AidWorkerCounts{Killed: 2},
			want:   true,
		},
		{
			name:   "selected leaf with zero count",
			leaves: []string{taxonomy.LeafKilled},
			counts: model.AidWorkerCounts{Injured: 3},
			want:   false,
		},
		{
			name:   "any selected leaf suffices",
			leaves: []string{taxonomy.LeafKilled, taxonomy.LeafKidnapped},
			counts: model.AidWorkerCounts{Kidnapped: 1},
			want:   true,
		},
		{
			name:   "no incident-type leaf selected",
			leaves: []string{"rape"},
			counts: model.AidWorkerCounts{Killed: 5},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := NewSelection(start, end, tt.leaves)
			got := e.Match(aidRecord("2024-06-01", tt.counts), sel)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchWeaponsSectorSubgroup(t *testing.T) {
	e := NewEngine()
	start, end := day("2024-01-01"), day("2024-12-31")
	rec := weaponsRecord("2024-06-01", []string{"Health Care"}, []string{"Ground-launched"})

	// Deselecting one sector leaf activates the subgroup; the record's sector
	// must then be among the selected ones.
	sel := NewSelection(start, end, without("education"))
	assert.True(t, e.Match(rec, sel))

	sel = NewSelection(start, end, without("health_care"))
	assert.False(t, e.Match(rec, sel))
}

func TestMatchWeaponsProtectionSubstring(t *testing.T) {
	e := NewEngine()
	start, end := day("2024-01-01"), day("2024-12-31")

	rec := weaponsRecord("2024-06-01", []string{"IDP/Refugee Protection Site"}, nil)
	sel := NewSelection(start, end, without("education", "health_care", "food_security", "aid_operations"))
	assert.True(t, e.Match(rec, sel), "idp_refugee_protection matches any sector containing \"protection\"")

	rec = weaponsRecord("2024-06-01", []string{"Food Security"}, nil)
	assert.False(t, e.Match(rec, sel))
}

func TestMatchWeaponsLaunchSubstring(t *testing.T) {
	e := NewEngine()
	start, end := day("2024-01-01"), day("2024-12-31")

	// Colons in the data are stripped before comparison, so both spellings of
	// a drone strike match the air_launched_drone leaf.
	sel := NewSelection(start, end, without(
		"air_launched", "air_launched_plane", "air_launched_helicopter",
		"ground_launched", "directly_emplaced", "unspecified_launch_method",
	))

	for _, launch := range []string{"Air-launched: Drone", "Air-launched Drone"} {
		rec := weaponsRecord("2024-06-01", nil, []string{launch})
		assert.True(t, e.Match(rec, sel), launch)
	}

	rec := weaponsRecord("2024-06-01", nil, []string{"Ground-launched"})
	assert.False(t, e.Match(rec, sel))
}

func TestMatchWeaponsBothSubgroupsActive(t *testing.T) {
	e := NewEngine()
	start, end := day("2024-01-01"), day("2024-12-31")

	// When both subgroups are active, both must match.
	sel := NewSelection(start, end, without("education", "ground_launched"))

	rec := weaponsRecord("2024-06-01", []string{"Health care"}, []string{"Air-launched: Plane"})
	assert.True(t, e.Match(rec, sel))

	rec = weaponsRecord("2024-06-01", []string{"Education"}, []string{"Air-launched: Plane"})
	assert.False(t, e.Match(rec, sel), "active sector subgroup fails")

	rec = weaponsRecord("2024-06-01", []string{"Health care"}, []string{"Ground-launched"})
	assert.False(t, e.Match(rec, sel), "active launch subgroup fails")
}

func TestMatchWeaponsNoActiveSubgroup(t *testing.T) {
	e := NewEngine()
	start, end := day("2024-01-01"), day("2024-12-31")

	// Every weapons leaf selected but a CRSV leaf dropped: the weapons
	// subgroups impose no constraint, so any weapons record matches.
	sel := NewSelection(start, end, without("rape"))
	rec := weaponsRecord("2024-06-01", nil, nil)
	assert.True(t, e.Match(rec, sel))
}

func TestMatchCRSV(t *testing.T) {
	e := NewEngine()
	start, end := day("2024-01-01"), day("2024-12-31")
	rec := crsvRecord("2024-06-01", []string{"Rape", "Sexual Slavery"}, []string{"Female"}, []string{"Adult"})

	tests := []struct {
		name string
		sel  Selection
		want bool
	}{
		{
			// Unlike weapons, fully selected CRSV subgroups do NOT admit every
			// record: at least one subgroup must be narrowed.
			name: "no active subgroup excludes",
			sel:  NewSelection(start, end, without("killed")),
			want: false,
		},
		{
			name: "active type subgroup matches",
			sel:  NewSelection(start, end, without("forced_prostitution")),
			want: true,
		},
		{
			name: "sexual_slavery maps to two-word label",
			sel:  NewSelection(start, end, without("rape", "forced_prostitution")),
			want: true,
		},
		{
			name: "active sex subgroup fails",
			sel:  NewSelection(start, end, without("female")),
			want: false,
		},
		{
			// Both narrowed subgroups must match; the age group here does not.
			name: "all active subgroups must match",
			sel:  NewSelection(start, end, without("forced_prostitution", "adult")),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Match(rec, tt.sel))
		})
	}
}

func TestMatchCategoriesOrTogether(t *testing.T) {
	e := NewEngine()
	start, end := day("2024-01-01"), day("2024-12-31")

	// Narrow the aid worker subgroup only; a weapons record still matches
	// because its own subgroups are unconstrained.
	sel := NewSelection(start, end, without("arrested"))

	wpn := weaponsRecord("2024-06-01", []string{"Education"}, nil)
	assert.True(t, e.Match(wpn, sel))

	aid := aidRecord("2024-06-01", model.AidWorkerCounts{Arrested: 1})
	assert.False(t, e.Match(aid, sel))

	aid = aidRecord("2024-06-01", model.AidWorkerCounts{Killed: 1})
	assert.True(t, e.Match(aid, sel))
}

func TestMatchMultiCategoryRecord(t *testing.T) {
	e := NewEngine()
	start, end := day("2024-01-01"), day("2024-12-31")

	rec := model.IncidentRecord{
		EventID:    "both",
		Date:       day("2024-06-01"),
		Categories: []model.CategoryTag{model.CategoryAidWorkers, model.CategoryWeapons},
		AidWorkers: &model.AidWorkerCounts{},
		Weapons:    &model.WeaponsDetail{Sectors: []string{"Education"}},
	}

	// The aid worker rule rejects (all counts zero) but the weapons rule
	// accepts; one passing category is enough.
	sel := NewSelection(start, end, without("rape"))
	assert.True(t, e.Match(rec, sel))
}

func TestFilterPreservesOrder(t *testing.T) {
	e := NewEngine()
	sel := DefaultSelection(day("2024-01-01"), day("2024-12-31"))

	records := []model.IncidentRecord{
		aidRecord("2024-03-01", model.AidWorkerCounts{Killed: 1}),
		aidRecord("2025-03-01", model.AidWorkerCounts{Killed: 1}), // out of range
		weaponsRecord("2024-01-05", []string{"Education"}, nil),
	}
	records[0].EventID = "a"
	records[1].EventID = "b"
	records[2].EventID = "c"

	got := e.Filter(records, sel)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].EventID)
	assert.Equal(t, "c", got[1].EventID)
}

func TestCountInRangeIgnoresCategories(t *testing.T) {
	e := NewEngine()
	// Nothing selected: Match rejects everything, but the in-range count
	// still reflects the date predicate alone.
	sel := NewSelection(day("2024-01-01"), day("2024-12-31"), nil)

	records := []model.IncidentRecord{
		aidRecord("2024-03-01", model.AidWorkerCounts{Killed: 1}),
		aidRecord("2023-03-01", model.AidWorkerCounts{Killed: 1}),
		{EventID: "inert", Date: day("2024-07-04")},
	}

	assert.Empty(t, e.Filter(records, sel))
	assert.Equal(t, 2, e.CountInRange(records, sel))
}

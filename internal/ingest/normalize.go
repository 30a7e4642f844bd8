// Package ingest loads the merged dashboard dataset and normalizes its rows
// into uniform incident records. Normalization is best-effort: malformed
// fields degrade to zero values or empty lists, and only rows without a
// usable date or geolocation are dropped (with a count reported for display).
package ingest

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sind-data/insecurity-dashboard/internal/model"
)

// Source column names. Matching is case-insensitive, ignores surrounding
// whitespace, and strips parentheses, so "Survivor or Victim (Sex)" and
// "Survivor Or Victim Sex" resolve to the same column, and the observed
// "Adult or Minor " header (trailing space) still matches.
const (
	colDate        = "Date"
	colCountry     = "Country"
	colDescription = "Event Description"
	colEventID     = "SiND Event ID"
	colLatitude    = "Latitude"
	colLongitude   = "Longitude"
	colKilled      = "Aid Workers Killed"
	colInjured     = "Aid Workers Injured"
	colKidnapped   = "Aid Workers Kidnapped"
	colArrested    = "Aid Workers Arrested"
	colSector      = "Sector Affected"
	colLaunch      = "Launch Type"
	colWeaponType  = "Explosive Weapon Type"
	colTypeOfSV    = "Type of SV"
	colSurvivorSex = "Survivor or Victim (Sex)"
	colAgeGroup    = "Adult or Minor"
	colDataset     = "dataset"
)

// RowOutcome classifies what Normalize did with a raw row.
type RowOutcome int

const (
	// RowOK means the row produced a usable record.
	RowOK RowOutcome = iota
	// RowDroppedNoLocation means latitude or longitude was blank or
	// unparseable; these rows are censored upstream (HDX) and excluded.
	RowDroppedNoLocation
	// RowDroppedBadDate means the date could not be parsed, so the record
	// could never satisfy the date predicate.
	RowDroppedBadDate
)

// Report summarizes one ingest run for header display and diagnostics.
type Report struct {
	RunID                  string `json:"run_id"`
	Loaded                 int    `json:"loaded"`
	DroppedNoLocation      int    `json:"dropped_no_location"`
	DroppedBadDate         int    `json:"dropped_bad_date"`
	EmptyCategorySet       int    `json:"empty_category_set"`
	CRSVMissingDescription int    `json:"crsv_missing_description"`
}

// newReport creates a Report with a fresh run ID.
func newReport() Report {
	return Report{RunID: uuid.NewString()}
}

// observe updates the report counters for one normalized row.
func (rep *Report) observe(rec model.IncidentRecord, outcome RowOutcome) {
	switch outcome {
	case RowDroppedNoLocation:
		rep.DroppedNoLocation++
		return
	case RowDroppedBadDate:
		rep.DroppedBadDate++
		return
	}
	rep.Loaded++
	if len(rec.Categories) == 0 {
		rep.EmptyCategorySet++
	}
	if rec.HasCategory(model.CategoryCRSV) && strings.TrimSpace(rec.Description) == "" {
		rep.CRSVMissingDescription++
	}
}

// dateLayouts are tried in order against the calendar-date portion of the
// Date field (anything after a 'T' is a time component and is ignored).
var dateLayouts = []string{"2006-01-02", "2006/01/02", "01/02/2006"}

// parseDate extracts the calendar date from a possibly timestamped field.
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, 'T'); i >= 0 {
		raw = raw[:i]
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeKey canonicalizes a header name for lookup.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "(", "")
	s = strings.ReplaceAll(s, ")", "")
	return strings.Join(strings.Fields(s), " ")
}

// row is a raw record with normalized-key access.
type row map[string]string

// newRow builds a row from header and field slices, tolerating ragged rows.
func newRow(header, fields []string) row {
	r := make(row, len(header))
	for i, h := range header {
		if i >= len(fields) {
			break
		}
		r[normalizeKey(h)] = fields[i]
	}
	return r
}

func (r row) get(col string) string {
	return strings.TrimSpace(r[normalizeKey(col)])
}

// Normalize converts one raw row into an IncidentRecord. It never fails: the
// outcome says whether the record is usable, and all parse errors inside the
// row degrade to zero values or empty lists.
func Normalize(r row) (model.IncidentRecord, RowOutcome) {
	lat, okLat := parseFloat64(r.get(colLatitude))
	lon, okLon := parseFloat64(r.get(colLongitude))
	if !okLat || !okLon {
		return model.IncidentRecord{}, RowDroppedNoLocation
	}

	date, ok := parseDate(r.get(colDate))
	if !ok {
		return model.IncidentRecord{}, RowDroppedBadDate
	}

	rec := model.IncidentRecord{
		EventID:     r.get(colEventID),
		Date:        date,
		Country:     r.get(colCountry),
		Description: r.get(colDescription),
		Latitude:    lat,
		Longitude:   lon,
	}
	if rec.EventID == "" {
		rec.EventID = uuid.NewString()
	}

	for _, tag := range ParseTagList(r.get(colDataset)) {
		t := model.CategoryTag(tag)
		if model.KnownCategory(t) && !rec.HasCategory(t) {
			rec.Categories = append(rec.Categories, t)
		}
	}

	if rec.HasCategory(model.CategoryAidWorkers) {
		rec.AidWorkers = &model.AidWorkerCounts{
			Killed:    parseIntOr(r.get(colKilled), 0),
			Injured:   parseIntOr(r.get(colInjured), 0),
			Kidnapped: parseIntOr(r.get(colKidnapped), 0),
			Arrested:  parseIntOr(r.get(colArrested), 0),
		}
	}
	if rec.HasCategory(model.CategoryWeapons) {
		rec.Weapons = &model.WeaponsDetail{
			Sectors:       ParsePermissiveList(r.get(colSector)),
			LaunchMethods: ParsePermissiveList(r.get(colLaunch)),
			WeaponTypes:   ParsePermissiveList(r.get(colWeaponType)),
		}
	}
	if rec.HasCategory(model.CategoryCRSV) {
		rec.CRSV = &model.CRSVDetail{
			Types:     ParsePermissiveList(r.get(colTypeOfSV)),
			Sexes:     ParsePermissiveList(r.get(colSurvivorSex)),
			AgeGroups: ParsePermissiveList(r.get(colAgeGroup)),
		}
	}

	return rec, RowOK
}

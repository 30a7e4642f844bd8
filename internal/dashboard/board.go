// Package dashboard owns the loaded record set and recomputes the filtered
// view and chart aggregation for each incoming selection. Recomputation is a
// short synchronous pass over the in-memory records; results are disposable
// copies handed to the renderers.
package dashboard

import (
	"sync/atomic"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sind-data/insecurity-dashboard/internal/filter"
	"github.com/sind-data/insecurity-dashboard/internal/ingest"
	"github.com/sind-data/insecurity-dashboard/internal/model"
	"github.com/sind-data/insecurity-dashboard/internal/taxonomy"
	"github.com/sind-data/insecurity-dashboard/internal/timeseries"
)

// Snapshot is one immutable loaded dataset plus its ingest report and the
// precomputed date bounds used to seed default selections.
type Snapshot struct {
	Records []model.IncidentRecord
	Report  ingest.Report
	MinDate time.Time
	MaxDate time.Time
}

// Board is the dashboard orchestrator. Serving swaps between snapshots
// atomically, so a refresh never tears an in-flight recompute.
type Board struct {
	engine  *filter.Engine
	printer *message.Printer
	snap    atomic.Pointer[Snapshot]
}

// New creates a Board over the given records.
func New(records []model.IncidentRecord, report ingest.Report) *Board {
	b := &Board{
		engine:  filter.NewEngine(),
		printer: message.NewPrinter(language.English),
	}
	b.Swap(records, report)
	return b
}

// Swap replaces the dataset. In-flight recomputes keep the snapshot they
// started with.
func (b *Board) Swap(records []model.IncidentRecord, report ingest.Report) {
	snap := &Snapshot{Records: records, Report: report}
	snap.MinDate, snap.MaxDate = dateBounds(records)
	b.snap.Store(snap)
}

// Snapshot returns the current dataset.
func (b *Board) Snapshot() *Snapshot {
	return b.snap.Load()
}

// DefaultSelection is the selection a fresh dashboard opens with: the full
// dataset date range with every leaf selected.
func (b *Board) DefaultSelection() filter.Selection {
	snap := b.Snapshot()
	return filter.DefaultSelection(snap.MinDate, snap.MaxDate)
}

// Marker is the per-record shape the map renderer consumes.
type Marker struct {
	Latitude    float64             `json:"latitude"`
	Longitude   float64             `json:"longitude"`
	Country     string              `json:"country"`
	Description string              `json:"description"`
	EventID     string              `json:"event_id"`
	Categories  []model.CategoryTag `json:"categories"`

	AidWorkers *model.AidWorkerCounts `json:"aid_workers,omitempty"`
	Weapons    *model.WeaponsDetail   `json:"weapons,omitempty"`
	CRSV       *model.CRSVDetail      `json:"crsv,omitempty"`
}

// Summary carries the header counts for the chart renderer.
type Summary struct {
	FilteredCount int    `json:"filtered_count"`
	TotalInRange  int    `json:"total_in_range"`
	TotalRecords  int    `json:"total_records"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Headline      string `json:"headline"`

	ExcludedNoLocation int `json:"excluded_no_location"`
	CRSVNoDescription  int `json:"crsv_no_description"`
}

// Result is one full recompute: everything the external renderers need.
type Result struct {
	Markers          []Marker               `json:"markers"`
	Buckets          []timeseries.Bucket    `json:"buckets"`
	Granularity      timeseries.Granularity `json:"granularity"`
	ActiveCategories []model.CategoryTag    `json:"active_categories"`
	Summary          Summary                `json:"summary"`
}

// Recompute runs the filter engine and aggregator for one selection. It is
// invoked synchronously per request; there is no cached aggregation state.
func (b *Board) Recompute(sel filter.Selection) Result {
	snap := b.Snapshot()

	filtered := b.engine.Filter(snap.Records, sel)
	active := activeCategories(sel)
	g := timeseries.ChooseGranularity(sel.Start, sel.End)
	buckets := timeseries.Aggregate(filtered, active, g)

	return Result{
		Markers:          markers(filtered),
		Buckets:          buckets,
		Granularity:      g,
		ActiveCategories: active,
		Summary:          b.summary(snap, sel, len(filtered)),
	}
}

// Markers recomputes only the filtered marker list for the map renderer.
func (b *Board) Markers(sel filter.Selection) []Marker {
	snap := b.Snapshot()
	return markers(b.engine.Filter(snap.Records, sel))
}

func (b *Board) summary(snap *Snapshot, sel filter.Selection, filteredCount int) Summary {
	inRange := b.engine.CountInRange(snap.Records, sel)
	start := sel.Start.Format("01/02/2006")
	end := sel.End.Format("01/02/2006")
	return Summary{
		FilteredCount: filteredCount,
		TotalInRange:  inRange,
		TotalRecords:  len(snap.Records),
		StartDate:     start,
		EndDate:       end,
		Headline: b.printer.Sprintf("%d of %d total incidents happened between %s and %s",
			filteredCount, len(snap.Records), start, end),
		ExcludedNoLocation: snap.Report.DroppedNoLocation,
		CRSVNoDescription:  snap.Report.CRSVMissingDescription,
	}
}

// activeCategories returns the categories with at least one selected leaf,
// in display order. The aggregator only counts tags in this set.
func activeCategories(sel filter.Selection) []model.CategoryTag {
	var out []model.CategoryTag
	for _, tag := range model.AllCategories {
		for _, leaf := range taxonomy.CategoryLeaves(tag) {
			if sel.Has(leaf) {
				out = append(out, tag)
				break
			}
		}
	}
	return out
}

func markers(records []model.IncidentRecord) []Marker {
	out := make([]Marker, len(records))
	for i, rec := range records {
		out[i] = Marker{
			Latitude:    rec.Latitude,
			Longitude:   rec.Longitude,
			Country:     rec.Country,
			Description: rec.Description,
			EventID:     rec.EventID,
			Categories:  rec.Categories,
			AidWorkers:  rec.AidWorkers,
			Weapons:     rec.Weapons,
			CRSV:        rec.CRSV,
		}
	}
	return out
}

// dateBounds computes the dataset's min and max dates to seed default
// selection bounds.
func dateBounds(records []model.IncidentRecord) (time.Time, time.Time) {
	var minDate, maxDate time.Time
	for _, rec := range records {
		if minDate.IsZero() || rec.Date.Before(minDate) {
			minDate = rec.Date
		}
		if maxDate.IsZero() || rec.Date.After(maxDate) {
			maxDate = rec.Date
		}
	}
	return minDate, maxDate
}

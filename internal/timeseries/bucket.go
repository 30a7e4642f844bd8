// Package timeseries groups filtered incident records into calendar buckets
// for the dashboard chart. Granularity adapts to the selected date span; the
// bucket sequence is sparse — periods no record touches are not emitted.
package timeseries

import (
	"sort"
	"time"

	"github.com/sind-data/insecurity-dashboard/internal/model"
)

// Granularity is the calendar period records are grouped by.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// ChooseGranularity picks the bucket size from the span of the selection:
// over 90 days aggregates monthly, over 30 weekly, otherwise daily.
func ChooseGranularity(start, end time.Time) Granularity {
	days := end.Sub(start).Hours() / 24
	switch {
	case days > 90:
		return Month
	case days > 30:
		return Week
	default:
		return Day
	}
}

// BucketStart returns the canonical start of the period containing date.
// Weeks start on Sunday, matching the chart's time axis.
func BucketStart(date time.Time, g Granularity) time.Time {
	y, m, d := date.Date()
	switch g {
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	case Week:
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return day.AddDate(0, 0, -int(day.Weekday()))
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
}

// Bucket is one aggregated period: per-category incident counts plus their
// sum.
type Bucket struct {
	Start  time.Time                 `json:"start"`
	Counts map[model.CategoryTag]int `json:"counts"`
	Total  int                       `json:"total"`
}

// Aggregate groups records into buckets at the given granularity. Each record
// increments one counter per category it carries that is also in the active
// set; buckets are created lazily and returned sorted ascending by start.
// Totals are the sum of the active categories' counts per bucket.
func Aggregate(records []model.IncidentRecord, active []model.CategoryTag, g Granularity) []Bucket {
	activeSet := make(map[model.CategoryTag]bool, len(active))
	for _, tag := range active {
		activeSet[tag] = true
	}

	byStart := make(map[time.Time]*Bucket)
	for _, rec := range records {
		for _, tag := range rec.Categories {
			if !activeSet[tag] {
				continue
			}
			start := BucketStart(rec.Date, g)
			b, ok := byStart[start]
			if !ok {
				b = &Bucket{Start: start, Counts: make(map[model.CategoryTag]int)}
				byStart[start] = b
			}
			b.Counts[tag]++
		}
	}

	out := make([]Bucket, 0, len(byStart))
	for _, b := range byStart {
		for _, tag := range active {
			b.Total += b.Counts[tag]
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// Package model defines the in-memory incident record shape shared by the
// ingest, filter, and aggregation layers.
package model

import "time"

// CategoryTag identifies which incident dataset a record belongs to.
type CategoryTag string

const (
	CategoryAidWorkers CategoryTag = "aid_workers"
	CategoryWeapons    CategoryTag = "weapons"
	CategoryCRSV       CategoryTag = "crsv"
)

// AllCategories lists the known category tags in display order.
var AllCategories = []CategoryTag{CategoryAidWorkers, CategoryWeapons, CategoryCRSV}

// KnownCategory reports whether tag is one of the three dashboard datasets.
func KnownCategory(tag CategoryTag) bool {
	switch tag {
	case CategoryAidWorkers, CategoryWeapons, CategoryCRSV:
		return true
	}
	return false
}

// AidWorkerCounts holds the per-incident casualty counts from the aid worker
// KIKA dataset. All counts are non-negative; unparseable source fields are
// coerced to zero at ingest.
type AidWorkerCounts struct {
	Killed    int `json:"killed"`
	Injured   int `json:"injured"`
	Kidnapped int `json:"kidnapped"`
	Arrested  int `json:"arrested"`
}

// Total returns the sum of all four counts.
func (c AidWorkerCounts) Total() int {
	return c.Killed + c.Injured + c.Kidnapped + c.Arrested
}

// WeaponsDetail holds the multi-valued attributes of an explosive weapons
// incident. Values keep their source casing; matching normalizes lazily.
type WeaponsDetail struct {
	Sectors       []string `json:"sectors"`
	LaunchMethods []string `json:"launch_methods"`
	WeaponTypes   []string `json:"weapon_types,omitempty"`
}

// CRSVDetail holds the multi-valued attributes of a conflict-related sexual
// violence incident.
type CRSVDetail struct {
	Types     []string `json:"types"`
	Sexes     []string `json:"sexes"`
	AgeGroups []string `json:"age_groups"`
}

// IncidentRecord is one normalized incident. Records are created once at load
// time and never mutated; category payloads are present exactly when the
// matching tag is set.
type IncidentRecord struct {
	EventID     string        `json:"event_id"`
	Date        time.Time     `json:"date"`
	Country     string        `json:"country"`
	Description string        `json:"description"`
	Latitude    float64       `json:"latitude"`
	Longitude   float64       `json:"longitude"`
	Categories  []CategoryTag `json:"categories"`

	AidWorkers *AidWorkerCounts `json:"aid_workers,omitempty"`
	Weapons    *WeaponsDetail   `json:"weapons,omitempty"`
	CRSV       *CRSVDetail      `json:"crsv,omitempty"`
}

// HasCategory reports whether the record carries the given tag.
func (r IncidentRecord) HasCategory(tag CategoryTag) bool {
	for _, t := range r.Categories {
		if t == tag {
			return true
		}
	}
	return false
}

package ingest

import (
	"encoding/json"
	"strconv"
	"strings"
)

// parseIntOr parses a string as a non-negative count, returning def if the
// field is blank or not numeric. Some source rows carry floats ("1.0").
func parseIntOr(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return def
}

// parseFloat64 parses a coordinate field. ok is false for blank or
// unparseable input.
func parseFloat64(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParsePermissiveList parses a multi-valued string field with the two-stage
// strategy the source data requires: first a strict list parse (a JSON array,
// tolerating single-quoted elements), then a comma split. Entries are
// trimmed; blank entries are dropped. Unparseable input degrades to an empty
// list, never an error.
func ParsePermissiveList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		if items, ok := parseQuotedList(raw); ok {
			return items
		}
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseTagList parses the `dataset` column, a quoted-list-like string such as
// "['aid_workers']" or `["weapons", "crsv"]`. On parse failure it yields an
// empty set: the record stays in memory but can never match a category
// predicate.
func ParseTagList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items, ok := parseQuotedList(raw)
	if !ok {
		return nil
	}
	return items
}

// parseQuotedList decodes a JSON-style array of strings, converting single
// quotes to double quotes first (the source CSV mixes both).
func parseQuotedList(raw string) ([]string, bool) {
	normalized := strings.ReplaceAll(raw, "'", `"`)
	var items []string
	if err := json.Unmarshal([]byte(normalized), &items); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out, true
}

package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntOr(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"3", 3},
		{" 12 ", 12},
		{"1.0", 1},
		{"2.7", 2},
		{"", 0},
		{"unknown", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseIntOr(tt.in, 0), "%q", tt.in)
	}
}

func TestParseFloat64(t *testing.T) {
	v, ok := parseFloat64(" 12.75 ")
	assert.True(t, ok)
	assert.Equal(t, 12.75, v)

	_, ok = parseFloat64("")
	assert.False(t, ok)

	_, ok = parseFloat64("n/a")
	assert.False(t, ok)
}

func TestParsePermissiveList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single-quoted list", "['Health care', 'Education']", []string{"Health care", "Education"}},
		{"double-quoted list", `["Rape", "Sexual Slavery"]`, []string{"Rape", "Sexual Slavery"}},
		{"bare comma list", "Health care, Education", []string{"Health care", "Education"}},
		{"single value", "Ground-launched", []string{"Ground-launched"}},
		{"blank entries dropped", "a, , b,", []string{"a", "b"}},
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
		// A malformed bracket list falls back to the comma split, brackets
		// and all.
		{"broken list falls back", "[Health care", []string{"[Health care"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePermissiveList(tt.in))
		})
	}
}

func TestParseTagList(t *testing.T) {
	assert.Equal(t, []string{"aid_workers"}, ParseTagList("['aid_workers']"))
	assert.Equal(t, []string{"weapons", "crsv"}, ParseTagList(`["weapons", "crsv"]`))

	// Unlike the value lists, the dataset column never falls back to comma
	// splitting: a broken entry yields no tags at all.
	assert.Nil(t, ParseTagList("aid_workers"))
	assert.Nil(t, ParseTagList("['aid_workers'"))
	assert.Nil(t, ParseTagList(""))
}

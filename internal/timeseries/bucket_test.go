package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sind-data/insecurity-dashboard/internal/model"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func rec(date string, tags ...model.CategoryTag) model.IncidentRecord {
	return model.IncidentRecord{Date: day(date), Categories: tags}
}

func TestChooseGranularity(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       Granularity
	}{
		{"two weeks", "2024-01-01", "2024-01-15", Day},
		{"exactly 30 days", "2024-01-01", "2024-01-31", Day},
		{"31 days", "2024-01-01", "2024-02-01", Week},
		{"exactly 90 days", "2024-01-01", "2024-03-31", Week},
		{"91 days", "2024-01-01", "2024-04-01", Month},
		{"full year", "2024-01-01", "2024-12-31", Month},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChooseGranularity(day(tt.start), day(tt.end)))
		})
	}
}

func TestBucketStart(t *testing.T) {
	// 2024-06-19 is a Wednesday; its week starts Sunday 2024-06-16.
	d := day("2024-06-19")

	assert.Equal(t, day("2024-06-19"), BucketStart(d, Day))
	assert.Equal(t, day("2024-06-16"), BucketStart(d, Week))
	assert.Equal(t, day("2024-06-01"), BucketStart(d, Month))

	// A Sunday is its own week start.
	sun := day("2024-06-16")
	assert.Equal(t, sun, BucketStart(sun, Week))
}

func TestAggregateMonthly(t *testing.T) {
	// 120-day span with incidents in three of the four months: the August gap
	// yields no bucket.
	records := []model.IncidentRecord{
		rec("2024-05-03", model.CategoryAidWorkers),
		rec("2024-05-20", model.CategoryWeapons),
		rec("2024-06-11", model.CategoryWeapons),
		rec("2024-07-30", model.CategoryCRSV),
	}

	buckets := Aggregate(records, model.AllCategories, Month)
	require.Len(t, buckets, 3)

	assert.Equal(t, day("2024-05-01"), buckets[0].Start)
	assert.Equal(t, day("2024-06-01"), buckets[1].Start)
	assert.Equal(t, day("2024-07-01"), buckets[2].Start)

	assert.Equal(t, 1, buckets[0].Counts[model.CategoryAidWorkers])
	assert.Equal(t, 1, buckets[0].Counts[model.CategoryWeapons])
	assert.Equal(t, 2, buckets[0].Total)
	assert.Equal(t, 1, buckets[2].Counts[model.CategoryCRSV])
}

func TestAggregateSortedAscending(t *testing.T) {
	records := []model.IncidentRecord{
		rec("2024-09-01", model.CategoryWeapons),
		rec("2024-01-01", model.CategoryWeapons),
		rec("2024-05-01", model.CategoryWeapons),
	}

	buckets := Aggregate(records, model.AllCategories, Month)
	require.Len(t, buckets, 3)
	for i := 1; i < len(buckets); i++ {
		assert.True(t, buckets[i-1].Start.Before(buckets[i].Start))
	}
}

func TestAggregateInactiveCategoryExcluded(t *testing.T) {
	records := []model.IncidentRecord{
		rec("2024-05-03", model.CategoryAidWorkers),
		rec("2024-05-04", model.CategoryCRSV),
	}

	buckets := Aggregate(records, []model.CategoryTag{model.CategoryAidWorkers}, Month)
	require.Len(t, buckets, 1)
	assert.Equal(t, 1, buckets[0].Counts[model.CategoryAidWorkers])
	assert.Zero(t, buckets[0].Counts[model.CategoryCRSV])
	assert.Equal(t, 1, buckets[0].Total)
}

func TestAggregateMultiCategoryRecordCountsPerCategory(t *testing.T) {
	// A record carrying two tags contributes to both category counters, so
	// the bucket total exceeds the record count.
	records := []model.IncidentRecord{
		rec("2024-05-03", model.CategoryAidWorkers, model.CategoryWeapons),
	}

	buckets := Aggregate(records, model.AllCategories, Month)
	require.Len(t, buckets, 1)
	assert.Equal(t, 1, buckets[0].Counts[model.CategoryAidWorkers])
	assert.Equal(t, 1, buckets[0].Counts[model.CategoryWeapons])
	assert.Equal(t, 2, buckets[0].Total)
}

func TestAggregateConservesCounts(t *testing.T) {
	records := []model.IncidentRecord{
		rec("2024-05-03", model.CategoryWeapons),
		rec("2024-05-10", model.CategoryWeapons),
		rec("2024-06-02", model.CategoryWeapons),
		rec("2024-06-30", model.CategoryAidWorkers),
	}

	for _, g := range []Granularity{Day, Week, Month} {
		total := 0
		for _, b := range Aggregate(records, model.AllCategories, g) {
			total += b.Total
		}
		assert.Equal(t, len(records), total, string(g))
	}
}

func TestAggregateWeeklySplitsAtSunday(t *testing.T) {
	// Saturday 2024-06-15 and Sunday 2024-06-16 fall in different weeks.
	records := []model.IncidentRecord{
		rec("2024-06-15", model.CategoryWeapons),
		rec("2024-06-16", model.CategoryWeapons),
	}

	buckets := Aggregate(records, model.AllCategories, Week)
	require.Len(t, buckets, 2)
	assert.Equal(t, day("2024-06-09"), buckets[0].Start)
	assert.Equal(t, day("2024-06-16"), buckets[1].Start)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil, model.AllCategories, Month))
	assert.Empty(t, Aggregate([]model.IncidentRecord{rec("2024-05-03", model.CategoryCRSV)}, nil, Month))
}

package ingest

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sind-data/insecurity-dashboard/internal/model"
)

// LoadCSV reads the merged dashboard CSV and normalizes every row. The first
// row is the header. Ragged rows and lazy quoting are tolerated; only an
// unreadable stream is an error.
func LoadCSV(ctx context.Context, r io.Reader) ([]model.IncidentRecord, Report, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, newReport(), nil
	}
	if err != nil {
		return nil, Report{}, eris.Wrap(err, "ingest: read csv header")
	}

	report := newReport()
	var records []model.IncidentRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, Report{}, eris.Wrap(err, "ingest: context cancelled")
		}

		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, Report{}, eris.Wrap(err, "ingest: read csv row")
		}

		rec, outcome := Normalize(newRow(header, fields))
		report.observe(rec, outcome)
		if outcome == RowOK {
			records = append(records, rec)
		}
	}

	zap.L().Info("dataset loaded",
		zap.String("run_id", report.RunID),
		zap.Int("loaded", report.Loaded),
		zap.Int("dropped_no_location", report.DroppedNoLocation),
		zap.Int("dropped_bad_date", report.DroppedBadDate),
		zap.Int("empty_category_set", report.EmptyCategorySet),
	)
	return records, report, nil
}

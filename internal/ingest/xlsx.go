package ingest

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sind-data/insecurity-dashboard/internal/model"
)

// LoadXLSX reads the dataset from the first sheet of an XLSX workbook.
// HDX publishes the source datasets in both CSV and XLSX form; the XLSX
// variant carries the same columns.
func LoadXLSX(ctx context.Context, path string) ([]model.IncidentRecord, Report, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, Report{}, eris.Wrap(err, "ingest: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, Report{}, eris.New("ingest: xlsx has no sheets")
	}
	sheet := f.Sheets[0]

	report := newReport()
	var header []string
	var records []model.IncidentRecord
	for i, sheetRow := range sheet.Rows {
		if err := ctx.Err(); err != nil {
			return nil, Report{}, eris.Wrap(err, "ingest: context cancelled")
		}

		fields := make([]string, len(sheetRow.Cells))
		for j, cell := range sheetRow.Cells {
			fields[j] = cell.String()
		}

		if i == 0 {
			header = fields
			continue
		}

		rec, outcome := Normalize(newRow(header, fields))
		report.observe(rec, outcome)
		if outcome == RowOK {
			records = append(records, rec)
		}
	}

	zap.L().Info("dataset loaded",
		zap.String("run_id", report.RunID),
		zap.String("sheet", sheet.Name),
		zap.Int("loaded", report.Loaded),
		zap.Int("dropped_no_location", report.DroppedNoLocation),
		zap.Int("dropped_bad_date", report.DroppedBadDate),
	)
	return records, report, nil
}

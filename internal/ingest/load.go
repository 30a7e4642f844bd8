package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sind-data/insecurity-dashboard/internal/model"
)

// LoadFile loads the dataset from a local path, dispatching on extension.
// ".xlsx" opens a workbook; anything else is treated as CSV.
func LoadFile(ctx context.Context, path string) ([]model.IncidentRecord, Report, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadXLSX(ctx, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, Report{}, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return LoadCSV(ctx, f)
}

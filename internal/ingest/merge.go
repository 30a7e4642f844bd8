package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sind-data/insecurity-dashboard/internal/model"
)

// MergeInput is one per-dataset source file to fold into the merged CSV.
type MergeInput struct {
	Path string
	Tag  model.CategoryTag
}

// MergeStats summarizes a merge run.
type MergeStats struct {
	Rows      int
	PerSource map[model.CategoryTag]int
}

// mergedColumns is the canonical column order of the merged dashboard CSV.
var mergedColumns = []string{
	colDate, colCountry, colDescription, colEventID,
	colLatitude, colLongitude,
	colKilled, colInjured, colKidnapped, colArrested,
	colSector, colLaunch, colWeaponType,
	colTypeOfSV, colSurvivorSex, colAgeGroup,
	colDataset,
}

// MergeSources reads the per-dataset source CSVs concurrently and writes the
// merged dashboard CSV: one canonical header, each row tagged with its
// source dataset. Rows pass through untouched otherwise — normalization
// happens at load time, not merge time.
func MergeSources(ctx context.Context, inputs []MergeInput, w io.Writer) (MergeStats, error) {
	type sourceRows struct {
		tag  model.CategoryTag
		rows []row
	}

	results := make([]sourceRows, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	for i, in := range inputs {
		g.Go(func() error {
			rows, err := readRawCSV(gctx, in.Path)
			if err != nil {
				return eris.Wrapf(err, "ingest: read source %s", in.Path)
			}
			results[i] = sourceRows{tag: in.Tag, rows: rows}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return MergeStats{}, err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(mergedColumns); err != nil {
		return MergeStats{}, eris.Wrap(err, "ingest: write merged header")
	}

	stats := MergeStats{PerSource: make(map[model.CategoryTag]int)}
	for _, src := range results {
		for _, r := range src.rows {
			out := make([]string, len(mergedColumns))
			for j, col := range mergedColumns {
				out[j] = r.get(col)
			}
			// The dataset column is the merge's own contribution.
			out[len(out)-1] = `['` + string(src.tag) + `']`
			if err := writer.Write(out); err != nil {
				return MergeStats{}, eris.Wrap(err, "ingest: write merged row")
			}
			stats.Rows++
			stats.PerSource[src.tag]++
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return MergeStats{}, eris.Wrap(err, "ingest: flush merged csv")
	}

	zap.L().Info("sources merged",
		zap.Int("rows", stats.Rows),
		zap.Int("sources", len(inputs)),
	)
	return stats, nil
}

// readRawCSV reads a source CSV into keyed rows without normalizing values.
func readRawCSV(ctx context.Context, path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open")
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "read header")
	}

	var rows []row
	for {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "context cancelled")
		}
		fields, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "read row")
		}
		rows = append(rows, newRow(header, fields))
	}
}

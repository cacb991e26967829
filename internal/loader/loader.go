// Package loader provides incident batch sources: CSV exports and a
// deterministic sample generator for tests and demos, plus schema and
// data-quality validation over loaded batches. Retrieval from a ticketing
// API lives behind the Source interface and is supplied by callers; this
// package has no network I/O.
package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/incidentops/snowmetrics/internal/frame"
)

// Source produces a raw incident table. Implementations outside this
// package wrap ticketing-system APIs; in-repo implementations read files
// and generate samples.
type Source interface {
	Load(ctx context.Context) (*frame.Table, error)
}

// CSVSource loads incidents from a CSV export on disk.
type CSVSource struct {
	Path string
}

// Load reads and parses the file.
func (s CSVSource) Load(ctx context.Context) (*frame.Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.Path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}
	slog.Info("loaded incidents from CSV", "path", s.Path, "rows", t.Len(), "columns", len(t.Columns()))
	return t, nil
}

// ReadCSV parses CSV content into a table. The first record is the
// header; cells are kept as text for the temporal parser to handle, and
// empty cells become absent rather than empty strings.
func ReadCSV(r io.Reader) (*frame.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return frame.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	t := frame.New(header...)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		row := make(frame.Row, len(header))
		for i, cell := range record {
			if i >= len(header) || cell == "" {
				continue
			}
			row[header[i]] = cell
		}
		t.Append(row)
	}
	return t, nil
}

package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/WessleyAI/sportscar-dash/engine/domain"
	"github.com/WessleyAI/sportscar-dash/pkg/fn"
)

// Column names of the source CSV.
const (
	ColMake       = "Car Make"
	ColModel      = "Car Model"
	ColYear       = "Year"
	ColHorsepower = "Horsepower"
	ColPrice      = "Price (in USD)"
	ColAccelTime  = "0-60 MPH Time (seconds)"
)

// RequiredColumns lists the columns a source must carry, in canonical order.
var RequiredColumns = []string{ColMake, ColModel, ColYear, ColHorsepower, ColPrice, ColAccelTime}

// table is the raw CSV after header resolution. Cells are untrimmed strings.
type table struct {
	header []string
	index  map[string]int
	rows   [][]string
}

func (t *table) cell(row []string, col string) string {
	i := t.index[col]
	if i >= len(row) {
		return ""
	}
	return row[i]
}

// Load reads src once and returns the normalized Dataset. Any malformed year,
// price, make or model aborts the load with a *domain.MalformedDatasetError.
func Load(ctx context.Context, src Source) (*Dataset, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src, err)
	}
	defer rc.Close()

	ds, err := parse(ctx, rc)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src, err)
	}
	slog.InfoContext(ctx, "dataset loaded", "source", src.String(), "rows", ds.Len(), "makes", len(ds.Makes()), "years", len(ds.Years()))
	return ds, nil
}

// Parse normalizes CSV data from r.
func Parse(r io.Reader) (*Dataset, error) {
	return parse(context.Background(), r)
}

func parse(ctx context.Context, r io.Reader) (*Dataset, error) {
	pipeline := fn.Then(
		fn.Then(
			fn.TracedStage("dataset.read", fn.TryStage(readTable)),
			fn.TracedStage("dataset.forward_fill", fn.MapStage(forwardFill)),
		),
		fn.Then(
			fn.TracedStage("dataset.coerce", fn.TryStage(coerce)),
			fn.TracedStage("dataset.sort", fn.MapStage(FromRecords)),
		),
	)
	return fn.Run(ctx, pipeline, r)
}

func readTable(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.NewMalformedDatasetError(0, ColMake, "", domain.ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := &table{header: header, index: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	for _, col := range RequiredColumns {
		if _, ok := t.index[col]; !ok {
			return nil, domain.NewMalformedDatasetError(0, col, "", domain.ErrMissingColumn)
		}
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.rows)+1, err)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// forwardFill replaces each blank cell with the value of the same column in
// the previous row (after that row was itself filled).
func forwardFill(t *table) *table {
	width := len(t.header)
	var prev []string
	for i, row := range t.rows {
		if len(row) < width {
			row = append(row, make([]string, width-len(row))...)
		}
		if prev != nil {
			for c := range row {
				if strings.TrimSpace(row[c]) == "" && c < len(prev) {
					row[c] = prev[c]
				}
			}
		}
		t.rows[i] = row
		prev = row
	}
	return t
}

func coerce(t *table) ([]domain.CarRecord, error) {
	records := make([]domain.CarRecord, 0, len(t.rows))
	for i, row := range t.rows {
		n := i + 1

		mk := strings.TrimSpace(t.cell(row, ColMake))
		if mk == "" {
			return nil, domain.NewMalformedDatasetError(n, ColMake, "", domain.ErrEmptyValue)
		}
		md := strings.TrimSpace(t.cell(row, ColModel))
		if md == "" {
			return nil, domain.NewMalformedDatasetError(n, ColModel, "", domain.ErrEmptyValue)
		}

		rawYear := t.cell(row, ColYear)
		year, ok := domain.ParseYear(rawYear)
		if !ok {
			return nil, domain.NewMalformedDatasetError(n, ColYear, rawYear, domain.ErrInvalidYear)
		}

		rawPrice := t.cell(row, ColPrice)
		price, ok := domain.ParsePrice(rawPrice)
		if !ok {
			return nil, domain.NewMalformedDatasetError(n, ColPrice, rawPrice, domain.ErrInvalidPrice)
		}

		records = append(records, domain.CarRecord{
			Make:         domain.Make(mk),
			Model:        domain.Model(md),
			Year:         year,
			Horsepower:   domain.ParseHorsepower(t.cell(row, ColHorsepower)),
			PriceUSD:     price,
			AccelTimeSec: domain.ParseAccelTime(t.cell(row, ColAccelTime)),
		})
	}
	return records, nil
}

// Package filter derives dropdown options, filtered rows and chart aggregates
// from a loaded dataset and a selection. Every operation is a pure read of the
// dataset; results are freshly allocated and safe to hand to callers.
package filter

import (
	"context"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/WessleyAI/sportscar-dash/engine/dataset"
	"github.com/WessleyAI/sportscar-dash/engine/domain"
	"github.com/WessleyAI/sportscar-dash/pkg/fn"
)

const tracerName = "github.com/WessleyAI/sportscar-dash/engine/filter"

// Engine answers option and view queries over one immutable Dataset.
type Engine struct {
	ds *dataset.Dataset
}

// New returns an Engine over ds.
func New(ds *dataset.Dataset) *Engine {
	return &Engine{ds: ds}
}

// Dataset returns the underlying dataset.
func (e *Engine) Dataset() *dataset.Dataset { return e.ds }

// Catalog returns the make/model catalog of the dataset.
func (e *Engine) Catalog() *domain.Catalog { return e.ds.Catalog() }

// MakeOptions returns every make in dataset order.
func (e *Engine) MakeOptions() []domain.Make {
	return e.ds.Makes()
}

// ModelOptions returns the distinct models of rows matching mk, in first-seen
// order. An unset make considers every row; an unknown make yields none.
func (e *Engine) ModelOptions(mk domain.Make) []domain.Model {
	rows := e.match(mk, "", nil)
	return nonNil(fn.UniqueBy(rows, func(r domain.CarRecord) domain.Model { return r.Model }))
}

// YearOptions returns the distinct years, ascending, of rows matching mk and
// md. The current year selection is deliberately not an input.
func (e *Engine) YearOptions(mk domain.Make, md domain.Model) []int {
	rows := e.match(mk, md, nil)
	years := fn.UniqueBy(rows, func(r domain.CarRecord) int { return r.Year })
	slices.Sort(years)
	return nonNil(years)
}

// FilteredRows returns the rows matching mk, md and years, in dataset order.
// Unset make or model and an empty year set impose no constraint.
func (e *Engine) FilteredRows(mk domain.Make, md domain.Model, years []int) []domain.CarRecord {
	return e.match(mk, md, years)
}

func (e *Engine) match(mk domain.Make, md domain.Model, years []int) []domain.CarRecord {
	var yearSet map[int]struct{}
	if len(years) > 0 {
		yearSet = make(map[int]struct{}, len(years))
		for _, y := range years {
			yearSet[y] = struct{}{}
		}
	}
	out := make([]domain.CarRecord, 0)
	for r := range e.ds.All() {
		if mk.IsSet() && r.Make != mk {
			continue
		}
		if md.IsSet() && r.Model != md {
			continue
		}
		if yearSet != nil {
			if _, ok := yearSet[r.Year]; !ok {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// View is everything the dashboard renders for one selection.
type View struct {
	Selection   Selection          `json:"selection"`
	Makes       []domain.Make      `json:"makes"`
	Models      []domain.Model     `json:"models"`
	Years       []int              `json:"years"`
	Rows        []domain.CarRecord `json:"rows"`
	MakeCounts  []Count            `json:"make_counts"`
	ModelCounts []Count            `json:"model_counts"`
	Horsepower  []HorsepowerPoint  `json:"horsepower"`
	PriceVsTime []Point            `json:"price_vs_time"`
	PriceVsYear []Point            `json:"price_vs_year"`
}

// Compute runs the full option, filter and aggregate pass for sel.
func (e *Engine) Compute(ctx context.Context, sel Selection) View {
	_, span := otel.Tracer(tracerName).Start(ctx, "filter.Compute")
	defer span.End()

	rows := e.FilteredRows(sel.Make, sel.Model, sel.Years)
	byPrice := PriceVsTime(rows)

	span.SetAttributes(
		attribute.String("make", string(sel.Make)),
		attribute.String("model", string(sel.Model)),
		attribute.Int("years", len(sel.Years)),
		attribute.Int("rows", len(rows)),
	)

	return View{
		Selection:   sel.Clone(),
		Makes:       nonNil(e.MakeOptions()),
		Models:      e.ModelOptions(sel.Make),
		Years:       e.YearOptions(sel.Make, sel.Model),
		Rows:        rows,
		MakeCounts:  MakeCounts(rows),
		ModelCounts: ModelCounts(rows),
		Horsepower:  HorsepowerPoints(rows),
		PriceVsTime: PriceTimePoints(byPrice),
		PriceVsYear: PriceVsYear(byPrice),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

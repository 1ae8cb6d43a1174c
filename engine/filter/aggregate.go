package filter

import (
	"cmp"
	"slices"

	"github.com/WessleyAI/sportscar-dash/engine/domain"
	"github.com/WessleyAI/sportscar-dash/pkg/fn"
)

// Count is one bar of a count chart.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Point is one marker of a numeric scatter chart.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// HorsepowerPoint is one marker of the horsepower-by-model chart.
type HorsepowerPoint struct {
	Model      domain.Model `json:"model"`
	Horsepower float64      `json:"horsepower"`
	Label      string       `json:"label"`
}

func counts[K ~string](rows []domain.CarRecord, key func(domain.CarRecord) K) []Count {
	grouped := fn.CountBy(rows, key)
	return fn.Map(grouped, func(c fn.Counted[K]) Count {
		return Count{Key: string(c.Key), Count: c.Count}
	})
}

// MakeCounts counts rows per make, makes in first-seen order.
func MakeCounts(rows []domain.CarRecord) []Count {
	return counts(rows, func(r domain.CarRecord) domain.Make { return r.Make })
}

// ModelCounts counts rows per model, models in first-seen order.
func ModelCounts(rows []domain.CarRecord) []Count {
	return counts(rows, func(r domain.CarRecord) domain.Model { return r.Model })
}

// HorsepowerPoints returns one point per row with a horsepower value. Rows
// without one are left out rather than plotted at zero.
func HorsepowerPoints(rows []domain.CarRecord) []HorsepowerPoint {
	return nonNil(fn.FilterMap(rows, func(r domain.CarRecord) (HorsepowerPoint, bool) {
		if !r.HasHorsepower() {
			return HorsepowerPoint{}, false
		}
		return HorsepowerPoint{Model: r.Model, Horsepower: *r.Horsepower, Label: r.DisplayLabel()}, true
	}))
}

// PriceVsTime returns a copy of rows ordered by price descending, then by
// acceleration time descending. Equal rows keep their input order.
func PriceVsTime(rows []domain.CarRecord) []domain.CarRecord {
	out := slices.Clone(rows)
	if out == nil {
		out = []domain.CarRecord{}
	}
	slices.SortStableFunc(out, func(a, b domain.CarRecord) int {
		if c := cmp.Compare(b.PriceUSD, a.PriceUSD); c != 0 {
			return c
		}
		return cmp.Compare(b.AccelTimeSec, a.AccelTimeSec)
	})
	return out
}

// PriceTimePoints plots rows by price (x) and acceleration time (y).
func PriceTimePoints(rows []domain.CarRecord) []Point {
	return fn.Map(rows, func(r domain.CarRecord) Point {
		return Point{X: r.PriceUSD, Y: r.AccelTimeSec, Label: r.DisplayLabel()}
	})
}

// PriceVsYear plots rows by year (x) and price (y), keeping the order of
// sorted, which is normally the output of PriceVsTime.
func PriceVsYear(sorted []domain.CarRecord) []Point {
	return fn.Map(sorted, func(r domain.CarRecord) Point {
		return Point{X: float64(r.Year), Y: r.PriceUSD, Label: r.DisplayLabel()}
	})
}

// Package dataset loads the sports-car CSV into an immutable, make-sorted
// table that is shared read-only by every request for the process lifetime.
package dataset

import (
	"cmp"
	"iter"
	"slices"

	"github.com/WessleyAI/sportscar-dash/engine/domain"
)

// Dataset is the normalized car table, sorted ascending by make with ties in
// source order. It is never mutated after construction.
type Dataset struct {
	records []domain.CarRecord
	catalog *domain.Catalog
	years   []int
}

// FromRecords stable-sorts a copy of records by make and builds a Dataset.
func FromRecords(records []domain.CarRecord) *Dataset {
	rs := slices.Clone(records)
	slices.SortStableFunc(rs, func(a, b domain.CarRecord) int {
		return cmp.Compare(a.Make, b.Make)
	})

	seen := make(map[int]struct{})
	var years []int
	for _, r := range rs {
		if _, ok := seen[r.Year]; !ok {
			seen[r.Year] = struct{}{}
			years = append(years, r.Year)
		}
	}
	slices.Sort(years)

	return &Dataset{
		records: rs,
		catalog: domain.NewCatalog(rs),
		years:   years,
	}
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.records) }

// At returns the i-th row in dataset order.
func (d *Dataset) At(i int) domain.CarRecord { return d.records[i] }

// All iterates rows in dataset order.
func (d *Dataset) All() iter.Seq[domain.CarRecord] {
	return func(yield func(domain.CarRecord) bool) {
		for _, r := range d.records {
			if !yield(r) {
				return
			}
		}
	}
}

// Records returns a copy of all rows in dataset order.
func (d *Dataset) Records() []domain.CarRecord { return slices.Clone(d.records) }

// Catalog returns the make/model enumerations of the dataset.
func (d *Dataset) Catalog() *domain.Catalog { return d.catalog }

// Makes returns the distinct makes in dataset (ascending) order.
func (d *Dataset) Makes() []domain.Make { return d.catalog.Makes() }

// Years returns the distinct years, ascending.
func (d *Dataset) Years() []int { return slices.Clone(d.years) }

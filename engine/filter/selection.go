package filter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/WessleyAI/sportscar-dash/engine/domain"
)

// Selection is the filter state of one dashboard session. The zero value
// selects everything. Years are kept sorted and distinct.
type Selection struct {
	Make  domain.Make  `json:"make,omitempty"`
	Model domain.Model `json:"model,omitempty"`
	Years []int        `json:"years,omitempty"`
}

// DefaultSelection is the state a new session starts in: mk (possibly unset)
// and every year of the dataset checked.
func (e *Engine) DefaultSelection(mk domain.Make) Selection {
	return Selection{Make: mk, Years: e.ds.Years()}
}

// SelectMake sets the make filter. The model and years are left as they are;
// call Reconcile to drop a model the new make no longer offers.
func (s *Selection) SelectMake(mk domain.Make) { s.Make = mk }

// SelectModel sets the model filter.
func (s *Selection) SelectModel(md domain.Model) { s.Model = md }

// SelectYears replaces the year set. Duplicates are removed.
func (s *Selection) SelectYears(years []int) {
	ys := slices.Clone(years)
	slices.Sort(ys)
	s.Years = slices.Compact(ys)
}

// Reconcile clears a model that is not offered for the selected make. The
// year set is left alone: a year the new make does not offer simply matches
// no rows.
func (s *Selection) Reconcile(e *Engine) {
	if s.Model.IsSet() && !slices.Contains(e.ModelOptions(s.Make), s.Model) {
		s.Model = ""
	}
}

// AllYears reports whether the year set imposes no constraint given the
// offered years: either it is empty or it covers every offered year.
func (s Selection) AllYears(offered []int) bool {
	if len(s.Years) == 0 {
		return true
	}
	for _, y := range offered {
		if _, ok := slices.BinarySearch(s.Years, y); !ok {
			return false
		}
	}
	return true
}

// Equal reports whether s and o select the same make, model and years.
func (s Selection) Equal(o Selection) bool {
	return s.Make == o.Make && s.Model == o.Model && slices.Equal(s.Years, o.Years)
}

// Clone returns a deep copy.
func (s Selection) Clone() Selection {
	s.Years = slices.Clone(s.Years)
	return s
}

// ParseSelection builds a Selection from free-form make, model and year
// strings. Make and model are resolved against the catalog; unknown values are
// kept verbatim so they match no rows. A year that is not an integer is an
// error.
func ParseSelection(c *domain.Catalog, mk, md string, years []string) (Selection, error) {
	var sel Selection
	sel.Make, _ = c.ParseMake(mk)
	sel.Model, _ = c.ParseModel(md)

	ys := make([]int, 0, len(years))
	for _, raw := range years {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			y, err := strconv.Atoi(part)
			if err != nil {
				return Selection{}, fmt.Errorf("invalid year %q: %w", part, err)
			}
			ys = append(ys, y)
		}
	}
	sel.SelectYears(ys)
	return sel, nil
}

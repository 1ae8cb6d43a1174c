package domain

import "strings"

// Catalog holds the makes and models seen when a dataset was loaded.
// Free-form filter input is resolved against it; unknown values stay
// representable and simply match nothing.
type Catalog struct {
	makes  []Make
	models map[Make][]Model
	known  map[string]Make
	modelK map[string]Model
}

// NewCatalog builds a catalog from records in dataset order.
func NewCatalog(records []CarRecord) *Catalog {
	c := &Catalog{
		models: make(map[Make][]Model),
		known:  make(map[string]Make),
		modelK: make(map[string]Model),
	}
	seenModel := make(map[Make]map[Model]struct{})
	for _, r := range records {
		if _, ok := c.models[r.Make]; !ok {
			c.makes = append(c.makes, r.Make)
			c.models[r.Make] = nil
			seenModel[r.Make] = make(map[Model]struct{})
			c.known[strings.ToLower(string(r.Make))] = r.Make
		}
		if _, ok := seenModel[r.Make][r.Model]; !ok {
			seenModel[r.Make][r.Model] = struct{}{}
			c.models[r.Make] = append(c.models[r.Make], r.Model)
		}
		if _, ok := c.modelK[strings.ToLower(string(r.Model))]; !ok {
			c.modelK[strings.ToLower(string(r.Model))] = r.Model
		}
	}
	return c
}

// Makes returns all makes in first-seen order.
func (c *Catalog) Makes() []Make {
	out := make([]Make, len(c.makes))
	copy(out, c.makes)
	return out
}

// ModelsOf returns the models of a make in first-seen order.
func (c *Catalog) ModelsOf(m Make) []Model {
	out := make([]Model, len(c.models[m]))
	copy(out, c.models[m])
	return out
}

// ParseMake resolves user input to a Make. Matching is case-insensitive and
// returns the canonical spelling. Empty input yields the unset make.
func (c *Catalog) ParseMake(s string) (Make, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	if m, ok := c.known[strings.ToLower(s)]; ok {
		return m, true
	}
	return Make(s), false
}

// ParseModel resolves user input to a Model, like ParseMake.
func (c *Catalog) ParseModel(s string) (Model, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	if m, ok := c.modelK[strings.ToLower(s)]; ok {
		return m, true
	}
	return Model(s), false
}

// HasModel reports whether model belongs to make.
func (c *Catalog) HasModel(mk Make, md Model) bool {
	for _, m := range c.models[mk] {
		if m == md {
			return true
		}
	}
	return false
}

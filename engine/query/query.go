// Package query turns a free-text search such as "2021 lambo huracan" or
// "porsche 911 '19-'22" into a filter.Selection. Makes, models and years are
// matched against the catalog of the loaded dataset, so only values that can
// select rows are ever recognized.
package query

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/WessleyAI/sportscar-dash/engine/domain"
	"github.com/WessleyAI/sportscar-dash/engine/filter"
)

// makeAliases maps nicknames to canonical make names. An alias is only
// active when its make is in the catalog.
var makeAliases = map[string]string{
	"chevy":    "Chevrolet",
	"merc":     "Mercedes-Benz",
	"benz":     "Mercedes-Benz",
	"mercedes": "Mercedes-Benz",
	"lambo":    "Lamborghini",
	"bimmer":   "BMW",
	"beemer":   "BMW",
	"vw":       "Volkswagen",
	"alfa":     "Alfa Romeo",
	"aston":    "Aston Martin",
	"rolls":    "Rolls-Royce",
}

var (
	yearRangeRe = regexp.MustCompile(`(\b(?:19|20)\d{2}|'\d{2})\s*(?:-|to)\s*(\b(?:19|20)\d{2}|'\d{2})\b`)
	yearFullRe  = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	yearAbbrRe  = regexp.MustCompile(`'(\d{2})\b`)
)

// maxYearSpan bounds how many years one range may expand to.
const maxYearSpan = 100

// Result is a parsed query.
type Result struct {
	Selection filter.Selection `json:"selection"`
	// Confidence is 0 when nothing was recognized.
	Confidence float64 `json:"confidence"`
	// Inferred is set when the make was derived from a model unique to it.
	Inferred bool `json:"inferred,omitempty"`
}

// Parser matches queries against one catalog. It is safe for concurrent use.
type Parser struct {
	makes   map[string]domain.Make  // lower name or alias -> make
	models  map[string]domain.Model // lower name -> model
	makesOf map[domain.Model][]domain.Make
	makeRe  *regexp.Regexp
	modelRe *regexp.Regexp
	catalog *domain.Catalog
}

// NewParser indexes c.
func NewParser(c *domain.Catalog) *Parser {
	p := &Parser{
		makes:   make(map[string]domain.Make),
		models:  make(map[string]domain.Model),
		makesOf: make(map[domain.Model][]domain.Make),
		catalog: c,
	}
	for _, mk := range c.Makes() {
		p.makes[strings.ToLower(string(mk))] = mk
		for _, md := range c.ModelsOf(mk) {
			p.models[strings.ToLower(string(md))] = md
			p.makesOf[md] = append(p.makesOf[md], mk)
		}
	}
	for alias, canonical := range makeAliases {
		if mk, ok := p.makes[strings.ToLower(canonical)]; ok {
			if _, taken := p.makes[alias]; !taken {
				p.makes[alias] = mk
			}
		}
	}
	p.makeRe = alternation(keys(p.makes))
	p.modelRe = alternation(keys(p.models))
	return p
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// alternation builds a case-insensitive regexp matching any of names as a
// whole token, longest name first. Group 1 is the name. It returns nil for no
// names.
func alternation(names []string) *regexp.Regexp {
	if len(names) == 0 {
		return nil
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return regexp.MustCompile(`(?i)(?:^|[^\pL\pN])(` + strings.Join(quoted, "|") + `)(?:'s)?(?:[^\pL\pN]|$)`)
}

// findAll returns every match of re in text, masking each one so adjacent
// tokens are still found. text is modified in place.
func findAll(re *regexp.Regexp, text []byte) []string {
	if re == nil {
		return nil
	}
	var out []string
	for {
		loc := re.FindSubmatchIndex(text)
		if loc == nil {
			return out
		}
		out = append(out, string(text[loc[2]:loc[3]]))
		mask(text, loc[2], loc[3])
	}
}

func mask(text []byte, from, to int) {
	for i := from; i < to; i++ {
		text[i] = ' '
	}
}

// Parse extracts a Selection from text. The first recognized make wins. A
// model is kept only when it belongs to that make; with no make, a model
// offered by a single make also sets the make. Years may be written as
// 2021, '21 or ranges such as 2019-2021.
func (p *Parser) Parse(text string) Result {
	buf := []byte(strings.TrimSpace(text))
	var res Result
	if len(buf) == 0 {
		return res
	}

	var mk domain.Make
	if found := findAll(p.makeRe, buf); len(found) > 0 {
		mk = p.makes[strings.ToLower(found[0])]
	}

	var md domain.Model
	for _, name := range findAll(p.modelRe, buf) {
		cand := p.models[strings.ToLower(name)]
		if mk.IsSet() {
			if p.catalog.HasModel(mk, cand) {
				md = cand
				break
			}
			continue
		}
		md = cand
		if owners := p.makesOf[cand]; len(owners) == 1 {
			mk = owners[0]
			res.Inferred = true
		}
		break
	}

	years := parseYears(buf)

	res.Selection.SelectMake(mk)
	res.Selection.SelectModel(md)
	res.Selection.SelectYears(years)
	res.Confidence = confidence(mk.IsSet(), md.IsSet(), len(years) > 0)
	return res
}

func confidence(hasMake, hasModel, hasYear bool) float64 {
	switch {
	case hasModel && hasYear:
		return 0.95
	case hasModel:
		return 0.80
	case hasMake && hasYear:
		return 0.70
	case hasMake:
		return 0.60
	case hasYear:
		return 0.50
	default:
		return 0
	}
}

// parseYears reads ranges first, then full and abbreviated years. buf is
// masked as matches are consumed.
func parseYears(buf []byte) []int {
	var years []int
	for {
		loc := yearRangeRe.FindSubmatchIndex(buf)
		if loc == nil {
			break
		}
		from := year(string(buf[loc[2]:loc[3]]))
		to := year(string(buf[loc[4]:loc[5]]))
		if from > to {
			from, to = to, from
		}
		if to-from < maxYearSpan {
			for y := from; y <= to; y++ {
				years = append(years, y)
			}
		}
		mask(buf, loc[0], loc[1])
	}
	for _, m := range yearFullRe.FindAllSubmatch(buf, -1) {
		years = append(years, year(string(m[1])))
	}
	for _, m := range yearAbbrRe.FindAllSubmatch(buf, -1) {
		years = append(years, year("'"+string(m[1])))
	}
	return years
}

// year parses "2021" or "'21". Two-digit years up to 50 are 20xx.
func year(s string) int {
	if yy, ok := strings.CutPrefix(s, "'"); ok {
		n, _ := strconv.Atoi(yy)
		if n <= 50 {
			return 2000 + n
		}
		return 1900 + n
	}
	n, _ := strconv.Atoi(s)
	return n
}

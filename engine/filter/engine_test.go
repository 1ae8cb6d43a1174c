package filter

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WessleyAI/sportscar-dash/engine/dataset"
	"github.com/WessleyAI/sportscar-dash/engine/domain"
)

// scenario is the three-row dataset used throughout: two Audis and a BMW,
// with the TT missing its horsepower and acceleration time.
func scenario() *Engine {
	return New(dataset.FromRecords([]domain.CarRecord{
		{Make: "BMW", Model: "M3", Year: 2021, Horsepower: domain.HP(470), PriceUSD: 70000, AccelTimeSec: 3.8},
		{Make: "Audi", Model: "R8", Year: 2020, Horsepower: domain.HP(540), PriceUSD: 150000, AccelTimeSec: 3.2},
		{Make: "Audi", Model: "TT", Year: 2019, PriceUSD: 50000},
	}))
}

func labels(rows []domain.CarRecord) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = string(r.Make) + " " + r.DisplayLabel()
	}
	return out
}

func testdataEngine(t *testing.T) *Engine {
	t.Helper()
	ds, err := dataset.Load(context.Background(), dataset.FileSource{Path: filepath.Join("..", "dataset", "testdata", "sport_car_price.csv")})
	require.NoError(t, err)
	return New(ds)
}

func TestScenario(t *testing.T) {
	e := scenario()

	assert.Equal(t, []domain.Model{"R8", "TT"}, e.ModelOptions("Audi"))
	assert.Equal(t, []int{2019, 2020}, e.YearOptions("Audi", ""))
	assert.Equal(t, []string{"Audi R8 (2020)", "Audi TT (2019)"}, labels(e.FilteredRows("Audi", "", nil)))

	hp := HorsepowerPoints(e.FilteredRows("Audi", "", nil))
	require.Len(t, hp, 1)
	assert.Equal(t, HorsepowerPoint{Model: "R8", Horsepower: 540, Label: "R8 (2020)"}, hp[0])

	byPrice := PriceVsTime(e.FilteredRows("", "", nil))
	assert.Equal(t, []string{"Audi R8 (2020)", "BMW M3 (2021)", "Audi TT (2019)"}, labels(byPrice))
}

func TestModelOptions(t *testing.T) {
	e := scenario()
	assert.Equal(t, []domain.Model{"R8", "TT", "M3"}, e.ModelOptions(""))
	assert.Equal(t, []domain.Model{"M3"}, e.ModelOptions("BMW"))
	assert.Empty(t, e.ModelOptions("Lada"))
	assert.NotNil(t, e.ModelOptions("Lada"))
}

func TestYearOptions(t *testing.T) {
	e := scenario()
	assert.Equal(t, []int{2019, 2020, 2021}, e.YearOptions("", ""))
	assert.Equal(t, []int{2020}, e.YearOptions("Audi", "R8"))
	assert.Equal(t, []int{2021}, e.YearOptions("", "M3"))
	assert.Empty(t, e.YearOptions("BMW", "R8"), "inconsistent pair narrows to nothing")
}

func TestYearOptions_IgnoreSelectedYears(t *testing.T) {
	e := scenario()
	before := e.YearOptions("Audi", "")

	sel := Selection{Make: "Audi"}
	sel.SelectYears([]int{2019})
	view := e.Compute(context.Background(), sel)

	assert.Equal(t, before, view.Years)
	assert.Equal(t, []int{2019, 2020}, view.Years)
	assert.Len(t, view.Rows, 1)
}

func TestFilteredRows_SortStability(t *testing.T) {
	e := testdataEngine(t)
	rows := e.FilteredRows("", "", nil)
	require.Len(t, rows, e.Dataset().Len())
	assert.Equal(t, e.Dataset().Records(), rows)
	for i := 1; i < len(rows); i++ {
		assert.LessOrEqual(t, string(rows[i-1].Make), string(rows[i].Make))
	}
}

func TestFilteredRows_EmptyYearsMeansAll(t *testing.T) {
	e := testdataEngine(t)
	for _, mk := range append(e.MakeOptions(), "", "Lada") {
		empty := e.FilteredRows(mk, "", nil)
		all := e.FilteredRows(mk, "", e.YearOptions(mk, ""))
		assert.Equal(t, empty, all, "make %q", mk)
	}
}

func TestFilteredRows_Constraints(t *testing.T) {
	e := scenario()

	tests := []struct {
		name  string
		mk    domain.Make
		md    domain.Model
		years []int
		want  []string
	}{
		{"model only", "", "M3", nil, []string{"BMW M3 (2021)"}},
		{"make and year", "Audi", "", []int{2020}, []string{"Audi R8 (2020)"}},
		{"inconsistent pair", "BMW", "R8", nil, []string{}},
		{"stale year", "Audi", "", []int{1999}, []string{}},
		{"unknown make", "Lada", "", nil, []string{}},
		{"year only", "", "", []int{2019, 2021}, []string{"Audi TT (2019)", "BMW M3 (2021)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, labels(e.FilteredRows(tt.mk, tt.md, tt.years)))
		})
	}
}

func TestFilteredRows_ReturnsFreshSlice(t *testing.T) {
	e := scenario()
	rows := e.FilteredRows("", "", nil)
	rows[0].Make = "changed"
	assert.Equal(t, domain.Make("Audi"), e.FilteredRows("", "", nil)[0].Make)
}

func TestCompute(t *testing.T) {
	e := scenario()
	v := e.Compute(context.Background(), Selection{})

	assert.Equal(t, []domain.Make{"Audi", "BMW"}, v.Makes)
	assert.Equal(t, []domain.Model{"R8", "TT", "M3"}, v.Models)
	assert.Equal(t, []int{2019, 2020, 2021}, v.Years)
	assert.Len(t, v.Rows, 3)
	assert.Equal(t, []Count{{"Audi", 2}, {"BMW", 1}}, v.MakeCounts)
	assert.Len(t, v.ModelCounts, 3)
	assert.Len(t, v.Horsepower, 2)
	require.Len(t, v.PriceVsTime, 3)
	assert.Equal(t, Point{X: 150000, Y: 3.2, Label: "R8 (2020)"}, v.PriceVsTime[0])
	require.Len(t, v.PriceVsYear, 3)
	assert.Equal(t, Point{X: 2021, Y: 70000, Label: "M3 (2021)"}, v.PriceVsYear[1])
}

func TestCompute_NoMatches(t *testing.T) {
	v := scenario().Compute(context.Background(), Selection{Make: "Lada"})
	assert.NotNil(t, v.Rows)
	assert.Empty(t, v.Rows)
	assert.Empty(t, v.MakeCounts)
	assert.Empty(t, v.Horsepower)
	assert.Empty(t, v.PriceVsTime)
	assert.Empty(t, v.Models)
	assert.Empty(t, v.Years)
}

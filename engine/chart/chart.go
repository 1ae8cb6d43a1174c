// Package chart turns a filter.View into render-ready chart definitions:
// chart type, title, axis labels and series of points.
package chart

import (
	"fmt"
	"strconv"

	"github.com/WessleyAI/sportscar-dash/engine/domain"
	"github.com/WessleyAI/sportscar-dash/engine/filter"
)

// Chart types.
const (
	TypeBar     = "bar"
	TypeScatter = "scatter"
)

// Chart IDs, in page order.
const (
	IDMakes       = "graph-car-makes"
	IDModels      = "graph-models"
	IDHorsepower  = "graph-horsepower"
	IDPriceTime   = "graph-price-time"
	IDPriceYear   = "graph-price-year"
	allMakesLabel = "All"
)

// Config describes one chart.
type Config struct {
	ID         string   `json:"id"`
	ChartType  string   `json:"chartType"`
	Title      string   `json:"title"`
	XAxis      string   `json:"xAxis"`
	YAxis      string   `json:"yAxis"`
	Series     []Series `json:"series"`
	ShowLegend bool     `json:"showLegend"`
}

// Series is a named list of points.
type Series struct {
	Name string  `json:"name"`
	Data []Point `json:"data"`
}

// Point is one bar or marker. Bar charts and the horsepower chart use
// Category on the x axis; the other scatter charts use X.
type Point struct {
	Category string  `json:"category,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Text     string  `json:"text,omitempty"`
}

// Scope returns the title suffix for a make filter: the make, or "All".
func Scope(mk domain.Make) string {
	if mk.IsSet() {
		return string(mk)
	}
	return allMakesLabel
}

// Build returns the five dashboard charts for v, in page order.
func Build(v filter.View) []Config {
	scope := Scope(v.Selection.Make)
	return []Config{
		Makes(v.MakeCounts),
		Models(v.ModelCounts),
		Horsepower(v.Horsepower, scope),
		PriceTime(v.PriceVsTime, scope),
		PriceYear(v.PriceVsYear, scope),
	}
}

// Makes is the bar chart of vehicles per make.
func Makes(counts []filter.Count) Config {
	return Config{
		ID:        IDMakes,
		ChartType: TypeBar,
		Title:     "Vehicles by make",
		XAxis:     "Make",
		YAxis:     "Vehicles",
		Series:    []Series{{Name: "Vehicles", Data: countPoints(counts)}},
	}
}

// Models is the bar chart of vehicles per model.
func Models(counts []filter.Count) Config {
	return Config{
		ID:        IDModels,
		ChartType: TypeBar,
		Title:     "Vehicles by model",
		XAxis:     "Model",
		YAxis:     "Vehicles",
		Series:    []Series{{Name: "Vehicles", Data: countPoints(counts)}},
	}
}

// Horsepower is the scatter of horsepower per model.
func Horsepower(points []filter.HorsepowerPoint, scope string) Config {
	data := make([]Point, len(points))
	for i, p := range points {
		data[i] = Point{Category: string(p.Model), Y: p.Horsepower, Text: p.Label}
	}
	return Config{
		ID:        IDHorsepower,
		ChartType: TypeScatter,
		Title:     fmt.Sprintf("Horsepower by model (%s)", scope),
		XAxis:     "Model",
		YAxis:     "Horsepower (HP)",
		Series:    []Series{{Name: "Horsepower", Data: data}},
	}
}

// PriceTime is the scatter of price against 0-60 mph time.
func PriceTime(points []filter.Point, scope string) Config {
	return Config{
		ID:        IDPriceTime,
		ChartType: TypeScatter,
		Title:     fmt.Sprintf("Price vs 0-60 mph time (%s)", scope),
		XAxis:     "Price (USD)",
		YAxis:     "0-60 mph (seconds)",
		Series:    []Series{{Name: "Price", Data: scatterPoints(points)}},
	}
}

// PriceYear is the scatter of price by model year.
func PriceYear(points []filter.Point, scope string) Config {
	return Config{
		ID:        IDPriceYear,
		ChartType: TypeScatter,
		Title:     fmt.Sprintf("Price by year (%s)", scope),
		XAxis:     "Year",
		YAxis:     "Price (USD)",
		Series:    []Series{{Name: "Price", Data: scatterPoints(points)}},
	}
}

func countPoints(counts []filter.Count) []Point {
	data := make([]Point, len(counts))
	for i, c := range counts {
		data[i] = Point{Category: c.Key, Y: float64(c.Count), Text: strconv.Itoa(c.Count)}
	}
	return data
}

func scatterPoints(points []filter.Point) []Point {
	data := make([]Point, len(points))
	for i, p := range points {
		data[i] = Point{X: p.X, Y: p.Y, Text: p.Label}
	}
	return data
}

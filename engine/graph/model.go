// Package graph exports the dataset's make/model/year catalog to Neo4j as
// Make -> VehicleModel <- ModelYear nodes.
package graph

import (
	"fmt"
	"math"
	"strings"

	"github.com/WessleyAI/sportscar-dash/engine/dataset"
)

// Make is a manufacturer node.
type Make struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Models []VehicleModel `json:"models"`
}

// VehicleModel is a model node, linked from its Make by HAS_MODEL.
type VehicleModel struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	MakeID string      `json:"make_id"`
	Years  []ModelYear `json:"years"`
}

// ModelYear is one model year, linked to its VehicleModel by OF_MODEL. The
// figures summarize every dataset row for that make, model and year.
type ModelYear struct {
	ID            string  `json:"id"`
	Year          int     `json:"year"`
	Make          string  `json:"make"`
	Model         string  `json:"model"`
	Listings      int     `json:"listings"`
	MinPriceUSD   float64 `json:"min_price_usd"`
	MaxPriceUSD   float64 `json:"max_price_usd"`
	MaxHorsepower float64 `json:"max_horsepower"` // 0 when no row has horsepower
	BestAccelSec  float64 `json:"best_accel_sec"` // 0 when no row has a time
}

func slug(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), "-"))
}

// MakeID, ModelID and ModelYearID build the node IDs.
func MakeID(mk string) string { return slug(mk) }

func ModelID(mk, md string) string { return MakeID(mk) + "-" + slug(md) }

func ModelYearID(mk, md string, year int) string {
	return fmt.Sprintf("%s-%d", ModelID(mk, md), year)
}

// BuildCatalog folds ds into the node hierarchy. Makes and models keep
// dataset order; years within a model keep first-seen order.
func BuildCatalog(ds *dataset.Dataset) []Make {
	var makes []Make
	makeIdx := map[string]int{}
	modelIdx := map[string]int{}
	yearIdx := map[string]int{}

	for r := range ds.All() {
		mk, md := string(r.Make), string(r.Model)

		mi, ok := makeIdx[mk]
		if !ok {
			mi = len(makes)
			makeIdx[mk] = mi
			makes = append(makes, Make{ID: MakeID(mk), Name: mk})
		}
		m := &makes[mi]

		modelKey := mk + "\x00" + md
		vi, ok := modelIdx[modelKey]
		if !ok {
			vi = len(m.Models)
			modelIdx[modelKey] = vi
			m.Models = append(m.Models, VehicleModel{ID: ModelID(mk, md), Name: md, MakeID: m.ID})
		}
		vm := &m.Models[vi]

		yearKey := fmt.Sprintf("%s\x00%d", modelKey, r.Year)
		yi, ok := yearIdx[yearKey]
		if !ok {
			yi = len(vm.Years)
			yearIdx[yearKey] = yi
			vm.Years = append(vm.Years, ModelYear{
				ID:          ModelYearID(mk, md, r.Year),
				Year:        r.Year,
				Make:        mk,
				Model:       md,
				MinPriceUSD: math.Inf(1),
			})
		}
		my := &vm.Years[yi]

		my.Listings++
		my.MinPriceUSD = min(my.MinPriceUSD, r.PriceUSD)
		my.MaxPriceUSD = max(my.MaxPriceUSD, r.PriceUSD)
		if r.HasHorsepower() {
			my.MaxHorsepower = max(my.MaxHorsepower, *r.Horsepower)
		}
		if r.AccelTimeSec > 0 && (my.BestAccelSec == 0 || r.AccelTimeSec < my.BestAccelSec) {
			my.BestAccelSec = r.AccelTimeSec
		}
	}
	return makes
}

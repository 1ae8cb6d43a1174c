package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphStore writes and inspects the catalog graph.
type GraphStore struct {
	opener SessionOpener
}

// New creates a GraphStore on a real driver.
func New(driver neo4j.DriverWithContext) *GraphStore {
	return NewWithOpener(DriverOpener{Driver: driver})
}

// NewWithOpener creates a GraphStore on any session opener.
func NewWithOpener(o SessionOpener) *GraphStore {
	return &GraphStore{opener: o}
}

var schema = []string{
	`CREATE CONSTRAINT make_id IF NOT EXISTS FOR (n:Make) REQUIRE n.id IS UNIQUE`,
	`CREATE CONSTRAINT vehicle_model_id IF NOT EXISTS FOR (n:VehicleModel) REQUIRE n.id IS UNIQUE`,
	`CREATE CONSTRAINT model_year_id IF NOT EXISTS FOR (n:ModelYear) REQUIRE n.id IS UNIQUE`,
}

// EnsureSchema creates the uniqueness constraints the MERGEs rely on.
func (g *GraphStore) EnsureSchema(ctx context.Context) error {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	for _, stmt := range schema {
		if _, err := sess.Run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	return nil
}

const (
	mergeMake = `MERGE (mk:Make {id: $id}) SET mk.name = $name`

	mergeModels = `UNWIND $models AS model
	               MERGE (m:VehicleModel {id: model.id}) SET m.name = model.name, m.make_id = $makeID
	               WITH m
	               MATCH (mk:Make {id: $makeID})
	               MERGE (mk)-[:HAS_MODEL]->(m)`

	mergeYears = `UNWIND $years AS y
	              MERGE (my:ModelYear {id: y.id})
	              SET my.year = y.year, my.make = y.make, my.model = y.model,
	                  my.listings = y.listings, my.min_price_usd = y.min_price_usd,
	                  my.max_price_usd = y.max_price_usd, my.max_horsepower = y.max_horsepower,
	                  my.best_accel_sec = y.best_accel_sec
	              WITH my, y
	              MATCH (m:VehicleModel {id: y.model_id})
	              MERGE (my)-[:OF_MODEL]->(m)`
)

// SyncStats reports what SyncCatalog wrote.
type SyncStats struct {
	Makes      int `json:"makes"`
	Models     int `json:"models"`
	ModelYears int `json:"model_years"`
}

// SyncCatalog merges every make with its models and years, one write
// transaction per make. Re-running it is idempotent.
func (g *GraphStore) SyncCatalog(ctx context.Context, makes []Make) (SyncStats, error) {
	var st SyncStats
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	for _, mk := range makes {
		models := make([]map[string]any, 0, len(mk.Models))
		var years []map[string]any
		for _, vm := range mk.Models {
			models = append(models, map[string]any{"id": vm.ID, "name": vm.Name})
			for _, y := range vm.Years {
				years = append(years, yearParams(y, vm.ID))
			}
		}

		_, err := sess.ExecuteWrite(ctx, func(tx CypherRunner) (any, error) {
			if _, err := tx.Run(ctx, mergeMake, map[string]any{"id": mk.ID, "name": mk.Name}); err != nil {
				return nil, err
			}
			if _, err := tx.Run(ctx, mergeModels, map[string]any{"makeID": mk.ID, "models": models}); err != nil {
				return nil, err
			}
			if _, err := tx.Run(ctx, mergeYears, map[string]any{"years": years}); err != nil {
				return nil, err
			}
			return nil, nil
		})
		if err != nil {
			return st, fmt.Errorf("sync make %s: %w", mk.Name, err)
		}
		st.Makes++
		st.Models += len(models)
		st.ModelYears += len(years)
		slog.DebugContext(ctx, "graph make synced", "make", mk.Name, "models", len(models), "years", len(years))
	}
	return st, nil
}

func yearParams(y ModelYear, modelID string) map[string]any {
	return map[string]any{
		"id":             y.ID,
		"year":           int64(y.Year),
		"make":           y.Make,
		"model":          y.Model,
		"model_id":       modelID,
		"listings":       int64(y.Listings),
		"min_price_usd":  y.MinPriceUSD,
		"max_price_usd":  y.MaxPriceUSD,
		"max_horsepower": y.MaxHorsepower,
		"best_accel_sec": y.BestAccelSec,
	}
}

// NodeCounts returns catalog node counts grouped by label.
func (g *GraphStore) NodeCounts(ctx context.Context) (map[string]int64, error) {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (n) WHERE n:Make OR n:VehicleModel OR n:ModelYear
	           RETURN labels(n)[0] AS type, count(*) AS count`
	result, err := sess.Run(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64)
	for result.Next(ctx) {
		rec := result.Record()
		typ, _ := rec.Get("type")
		cnt, _ := rec.Get("count")
		if t, ok := typ.(string); ok {
			if c, ok := cnt.(int64); ok {
				counts[t] = c
			}
		}
	}
	return counts, result.Err()
}

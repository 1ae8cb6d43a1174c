package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/WessleyAI/sportscar-dash/engine/graph"
)

var graphSyncDryRun bool

var graphSyncCmd = &cobra.Command{
	Use:   "graph-sync",
	Short: "Export the make/model/year catalog to Neo4j",
	Long: `graph-sync loads the dataset, folds it into Make, VehicleModel and
ModelYear nodes and merges them into Neo4j. Re-running it is idempotent.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		logger := slog.Default()

		ds, err := loadDataset(ctx, cfg, logger)
		if err != nil {
			return err
		}
		makes := graph.BuildCatalog(ds)

		if graphSyncDryRun {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(makes)
		}

		driver, err := graph.Connect(ctx, cfg.Neo4j.URL, cfg.Neo4j.User, cfg.Neo4j.Pass)
		if err != nil {
			return fmt.Errorf("neo4j connect %s: %w", cfg.Neo4j.URL, err)
		}
		defer driver.Close(ctx)

		store := graph.New(driver)
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		st, err := store.SyncCatalog(ctx, makes)
		if err != nil {
			return err
		}
		logger.Info("graph synced", "makes", st.Makes, "models", st.Models, "model_years", st.ModelYears)

		counts, err := store.NodeCounts(ctx)
		if err != nil {
			return fmt.Errorf("node counts: %w", err)
		}
		printNodeCounts(cmd.OutOrStdout(), st, counts)
		return nil
	},
}

func init() {
	graphSyncCmd.Flags().BoolVar(&graphSyncDryRun, "dry-run", false, "print the catalog as JSON instead of writing it")
}

func printNodeCounts(w io.Writer, st graph.SyncStats, counts map[string]int64) {
	colorBold.Fprintf(w, "synced %d makes, %d models, %d model years\n", st.Makes, st.Models, st.ModelYears)
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Fprintf(w, "  %-14s %d\n", l, counts[l])
	}
}

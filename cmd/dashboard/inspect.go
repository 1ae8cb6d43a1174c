package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/WessleyAI/sportscar-dash/engine/filter"
	"github.com/WessleyAI/sportscar-dash/engine/query"
)

var (
	inspectMake  string
	inspectModel string
	inspectYears []string
	inspectQuery string
	inspectJSON  bool
)

var (
	colorBold  = color.New(color.Bold)
	colorCyan  = color.New(color.FgCyan)
	colorFaint = color.New(color.Faint)
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print options and aggregates for a selection",
	Long: `inspect loads the dataset and prints what the dashboard would show
for the given make, model and years: the dropdown options, the matching rows
and every chart series.`,
	Example: `  dashboard inspect --make Audi
  dashboard inspect --make BMW --model M3 --year 2020,2021 --json
  dashboard inspect --query "2021 lambo huracan"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := loadDataset(cmd.Context(), cfg, slog.Default())
		if err != nil {
			return err
		}
		e := filter.New(ds)
		var sel filter.Selection
		if inspectQuery != "" {
			res := query.NewParser(e.Catalog()).Parse(inspectQuery)
			if res.Confidence == 0 {
				return withExitCode(ExitInvalidArgs, fmt.Errorf("query %q matches no make, model or year", inspectQuery))
			}
			sel = res.Selection
		} else {
			sel, err = filter.ParseSelection(e.Catalog(), inspectMake, inspectModel, inspectYears)
			if err != nil {
				return withExitCode(ExitInvalidArgs, err)
			}
		}
		v := e.Compute(cmd.Context(), sel)
		if inspectJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		}
		return printView(cmd.OutOrStdout(), v)
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectMake, "make", "", "make to select (case-insensitive)")
	inspectCmd.Flags().StringVar(&inspectModel, "model", "", "model to select (case-insensitive)")
	inspectCmd.Flags().StringSliceVar(&inspectYears, "year", nil, "years to select; empty selects all")
	inspectCmd.Flags().StringVar(&inspectQuery, "query", "", "free-text selection, e.g. \"porsche 911 2021\"; overrides --make, --model and --year")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the view as JSON")
}

func printView(w io.Writer, v filter.View) error {
	scope := "all makes"
	if v.Selection.Make.IsSet() {
		scope = string(v.Selection.Make)
	}
	if v.Selection.Model.IsSet() {
		scope += " " + string(v.Selection.Model)
	}
	colorBold.Fprintf(w, "%s: %d vehicles\n", scope, len(v.Rows))
	fmt.Fprintf(w, "%s %v\n", colorFaint.Sprint("models:"), v.Models)
	fmt.Fprintf(w, "%s %v\n\n", colorFaint.Sprint("years: "), v.Years)

	section(w, "Vehicles by make")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range v.MakeCounts {
		fmt.Fprintf(tw, "  %s\t%d\n", c.Key, c.Count)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	section(w, "Vehicles by model")
	for _, c := range v.ModelCounts {
		fmt.Fprintf(tw, "  %s\t%d\n", c.Key, c.Count)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	section(w, "Horsepower")
	for _, p := range v.Horsepower {
		fmt.Fprintf(tw, "  %s\t%s hp\n", p.Label, strconv.FormatFloat(p.Horsepower, 'f', -1, 64))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	section(w, "Price vs 0-60 mph")
	for _, p := range v.PriceVsTime {
		fmt.Fprintf(tw, "  %s\t$%s\t%ss\n", p.Label, strconv.FormatFloat(p.X, 'f', 0, 64), strconv.FormatFloat(p.Y, 'f', -1, 64))
	}
	return tw.Flush()
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w)
	colorCyan.Fprintln(w, title)
}

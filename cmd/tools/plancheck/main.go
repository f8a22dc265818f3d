package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/choosepower/plan-finder/internal/filter"
	"github.com/choosepower/plan-finder/internal/plandata"
	"github.com/choosepower/plan-finder/internal/urlstate"
)

// plancheck prints a city's plan table as the filter engine sees it,
// optionally narrowed by a query string in the listing URL format.
func main() {
	dir := flag.String("plans", "data/plans", "directory of per-city plan JSON files")
	city := flag.String("city", "", "city slug (required)")
	query := flag.String("query", "", "filter query string, e.g. contract=12&type=f")
	flag.Parse()

	if *city == "" {
		log.Fatal("usage: plancheck -city <slug> [-query <filters>]")
	}

	ctx := context.Background()
	src := plandata.NewFileSource(*dir)

	plans, err := src.PlansForCity(ctx, *city)
	if err != nil {
		log.Fatalf("Loading plans for %s: %v", *city, err)
	}

	state := urlstate.Parse(*query, *city)
	result := filter.NewEngine().Apply(plans, state)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Plan", "Provider", "Rate ¢/kWh", "Type", "Term", "Fee", "Green %", "ETF"})

	for _, p := range result.Plans {
		t.AppendRow(table.Row{
			p.ID,
			p.Name,
			p.Provider,
			fmt.Sprintf("%.1f", p.BaseRate),
			p.RateType,
			fmt.Sprintf("%dmo", p.ContractLength),
			fmt.Sprintf("$%.2f", p.MonthlyFee),
			fmt.Sprintf("%.0f", p.GreenEnergyPercentage),
			fmt.Sprintf("$%.0f", p.EarlyTerminationFee),
		})
	}
	t.Render()

	fmt.Printf("%d of %d plans match (%.2fms)\n", result.FilteredCount, result.TotalCount, result.DurationMS)
}

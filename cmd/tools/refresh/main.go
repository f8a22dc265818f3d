package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/choosepower/plan-finder/internal/config"
	"github.com/choosepower/plan-finder/internal/ingest"
	"github.com/choosepower/plan-finder/internal/plandata"
)

// refresh runs the ingest pipeline for one city from the command line,
// without going through the admin endpoint.
func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	city := flag.String("city", "", "city slug to refresh (required)")
	flag.Parse()

	if *city == "" {
		log.Fatal("usage: refresh -city <slug> [-config <file>]")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	slug := plandata.NormalizeSlug(*city)
	sources := cfg.Ingest.Sources[slug]
	if len(sources) == 0 {
		sources = cfg.Ingest.Sources[*city]
	}
	if len(sources) == 0 {
		logger.Fatal("no ingest sources configured for city", zap.String("city", *city))
	}

	publisher := &ingest.FilePublisher{Dir: cfg.Data.PlansDir}
	pipeline := ingest.NewPipeline(ingest.NewCollyFetcher(logger), ingest.NewHTTPFetcher(), publisher, logger)

	stats, err := pipeline.RefreshCity(context.Background(), slug, sources)
	if err != nil {
		logger.Fatal("refresh failed", zap.String("city", slug), zap.Error(err))
	}

	logger.Info("refresh complete",
		zap.String("city", stats.City),
		zap.Int("sources", stats.SourcesTried),
		zap.Int("plans", stats.PlansKept),
		zap.Int("errors", stats.Errors),
		zap.Duration("took", stats.Duration),
	)
}

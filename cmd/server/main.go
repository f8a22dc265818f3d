package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/choosepower/plan-finder/internal/api"
	"github.com/choosepower/plan-finder/internal/auth"
	"github.com/choosepower/plan-finder/internal/config"
	"github.com/choosepower/plan-finder/internal/db"
	"github.com/choosepower/plan-finder/internal/ingest"
	"github.com/choosepower/plan-finder/internal/plandata"
	"github.com/choosepower/plan-finder/internal/ziprouter"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	var source plandata.Source
	var authSvc *auth.Service
	if cfg.Data.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.Data.DatabaseURL)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		defer pool.Close()

		if err := db.ApplyMigrations(ctx, pool); err != nil {
			logger.Fatal("migration failed", zap.Error(err))
		}

		source = plandata.NewPGSource(pool)
		authSvc = auth.NewService(pool)
		logger.Info("plan data source: postgres")
	} else {
		source = plandata.NewFileSource(cfg.Data.PlansDir)
		logger.Info("plan data source: files", zap.String("dir", cfg.Data.PlansDir))
	}

	zips, err := ziprouter.LoadZipTable(cfg.Data.ZipTable)
	if err != nil {
		logger.Fatal("loading zip table", zap.Error(err))
	}
	cities, err := ziprouter.LoadCityTable(cfg.Data.CityTable)
	if err != nil {
		logger.Fatal("loading city table", zap.Error(err))
	}
	router := ziprouter.NewRouter(zips, cities, plandata.Counter{Source: source})

	var pipeline *ingest.Pipeline
	if len(cfg.Ingest.Sources) > 0 {
		var publisher ingest.Publisher
		switch src := source.(type) {
		case *plandata.PGSource:
			publisher = &ingest.PGPublisher{Store: src}
		case *plandata.FileSource:
			publisher = &ingest.FilePublisher{Dir: cfg.Data.PlansDir, Source: src}
		default:
			publisher = &ingest.FilePublisher{Dir: cfg.Data.PlansDir}
		}
		pipeline = ingest.NewPipeline(ingest.NewCollyFetcher(logger), ingest.NewHTTPFetcher(), publisher, logger)
	}

	srv := api.NewServer(api.Options{
		Config:   cfg,
		Source:   source,
		Zip:      router,
		Auth:     authSvc,
		Pipeline: pipeline,
		Log:      logger,
	})

	logger.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := srv.Start(cfg.Server.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

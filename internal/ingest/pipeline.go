package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/choosepower/plan-finder/internal/models"
	"github.com/choosepower/plan-finder/internal/plandata"
)

// Publisher receives a city's freshly-ingested plan snapshot.
type Publisher interface {
	Publish(ctx context.Context, citySlug string, plans []models.PlanRecord) error
}

// Pipeline runs fetch → parse → sanitize → publish for one city at a
// time. Refreshes are admin-triggered, so no scheduling lives here.
type Pipeline struct {
	fetcher   Fetcher
	fallback  Fetcher
	publisher Publisher
	log       *zap.Logger
}

func NewPipeline(fetcher Fetcher, fallback Fetcher, publisher Publisher, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{fetcher: fetcher, fallback: fallback, publisher: publisher, log: log}
}

// RefreshCity ingests every configured source for a city and publishes
// the combined snapshot. Individual source failures are logged and
// counted; the refresh only fails when no source yields plans.
func (p *Pipeline) RefreshCity(ctx context.Context, citySlug string, sources []SourceConfig) (RefreshStats, error) {
	start := time.Now()
	stats := RefreshStats{City: citySlug}

	var combined []models.PlanRecord
	for _, src := range sources {
		stats.SourcesTried++

		plans, err := p.ingestSource(ctx, src)
		if err != nil {
			stats.Errors++
			p.log.Warn("source ingest failed",
				zap.String("city", citySlug),
				zap.String("source", src.Name),
				zap.Error(err),
			)
			continue
		}

		stats.PlansFound += len(plans)
		combined = append(combined, plans...)
	}

	combined = dedupe(combined)
	stats.PlansKept = len(combined)
	stats.Duration = time.Since(start)

	if len(combined) == 0 {
		return stats, fmt.Errorf("refresh for %q produced no plans", citySlug)
	}

	if err := p.publisher.Publish(ctx, citySlug, combined); err != nil {
		return stats, fmt.Errorf("publishing %q snapshot: %w", citySlug, err)
	}

	p.log.Info("city refreshed",
		zap.String("city", citySlug),
		zap.Int("plans", stats.PlansKept),
		zap.Duration("took", stats.Duration),
	)
	return stats, nil
}

func (p *Pipeline) ingestSource(ctx context.Context, src SourceConfig) ([]models.PlanRecord, error) {
	doc, err := p.fetcher.Fetch(ctx, src.URL)
	if err != nil && p.fallback != nil {
		p.log.Debug("falling back to plain HTTP fetch", zap.String("url", src.URL))
		doc, err = p.fallback.Fetch(ctx, src.URL)
	}
	if err != nil {
		return nil, err
	}
	defer doc.Body.Close()

	return ParseListing(doc.Body, src)
}

func dedupe(plans []models.PlanRecord) []models.PlanRecord {
	seen := map[string]bool{}
	out := make([]models.PlanRecord, 0, len(plans))
	for _, p := range plans {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BaseRate != out[j].BaseRate {
			return out[i].BaseRate < out[j].BaseRate
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// FilePublisher writes snapshots as the per-city JSON files the file
// source reads, via temp-file rename so readers never see a partial
// write.
type FilePublisher struct {
	Dir    string
	Source *plandata.FileSource
}

func (f *FilePublisher) Publish(ctx context.Context, citySlug string, plans []models.PlanRecord) error {
	key := plandata.NormalizeSlug(citySlug)

	raw, err := json.MarshalIndent(plans, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %q snapshot: %w", citySlug, err)
	}

	tmp, err := os.CreateTemp(f.Dir, key+"-*.json.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing snapshot: %w", err)
	}

	final := filepath.Join(f.Dir, key+".json")
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publishing snapshot: %w", err)
	}

	if f.Source != nil {
		f.Source.Invalidate(citySlug)
	}
	return nil
}

// PGPublisher replaces a city's plan rows in Postgres.
type PGPublisher struct {
	Store *plandata.PGSource
}

func (p *PGPublisher) Publish(ctx context.Context, citySlug string, plans []models.PlanRecord) error {
	return p.Store.ReplaceCity(ctx, plandata.NormalizeSlug(citySlug), plans)
}

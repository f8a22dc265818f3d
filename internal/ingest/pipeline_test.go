package ingest

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/choosepower/plan-finder/internal/plandata"
)

type staticFetcher struct {
	pages map[string]string
}

func (s *staticFetcher) Fetch(_ context.Context, url string) (*FetchedDocument, error) {
	page, ok := s.pages[url]
	if !ok {
		return nil, errors.New("unreachable")
	}
	return &FetchedDocument{
		URL:        url,
		StatusCode: 200,
		Body:       io.NopCloser(strings.NewReader(page)),
		FetchedAt:  time.Now(),
	}, nil
}

func TestRefreshCityPublishesSnapshot(t *testing.T) {
	dir := t.TempDir()
	src := plandata.NewFileSource(dir)

	fetcher := &staticFetcher{pages: map[string]string{
		"https://example.com/plans": listingHTML,
	}}
	pipeline := NewPipeline(fetcher, nil, &FilePublisher{Dir: dir, Source: src}, nil)

	stats, err := pipeline.RefreshCity(context.Background(), "tyler-tx", []SourceConfig{testSource()})
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if stats.PlansKept != 2 {
		t.Errorf("plans kept = %d, want 2", stats.PlansKept)
	}

	// Snapshot lands under the normalized slug.
	if _, err := os.Stat(filepath.Join(dir, "tyler.json")); err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}

	plans, err := src.PlansForCity(context.Background(), "tyler-tx")
	if err != nil {
		t.Fatalf("file source cannot read snapshot: %v", err)
	}
	if len(plans) != 2 {
		t.Errorf("loaded %d plans, want 2", len(plans))
	}
	// Snapshot is rate-sorted.
	if plans[0].BaseRate > plans[1].BaseRate {
		t.Errorf("snapshot not sorted by rate: %v, %v", plans[0].BaseRate, plans[1].BaseRate)
	}
}

func TestRefreshCityUsesFallbackFetcher(t *testing.T) {
	dir := t.TempDir()

	primary := &staticFetcher{pages: map[string]string{}} // always fails
	fallback := &staticFetcher{pages: map[string]string{
		"https://example.com/plans": listingHTML,
	}}
	pipeline := NewPipeline(primary, fallback, &FilePublisher{Dir: dir}, nil)

	stats, err := pipeline.RefreshCity(context.Background(), "waco", []SourceConfig{testSource()})
	if err != nil {
		t.Fatalf("refresh with fallback failed: %v", err)
	}
	if stats.PlansKept == 0 {
		t.Error("fallback fetch produced no plans")
	}
}

func TestRefreshCityFailsWhenNothingParses(t *testing.T) {
	pipeline := NewPipeline(&staticFetcher{}, nil, &FilePublisher{Dir: t.TempDir()}, nil)

	stats, err := pipeline.RefreshCity(context.Background(), "waco", []SourceConfig{testSource()})
	if err == nil {
		t.Fatal("expected error when no source yields plans")
	}
	if stats.Errors != 1 {
		t.Errorf("errors = %d, want 1", stats.Errors)
	}
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	plans, err := ParseListing(strings.NewReader(listingHTML), testSource())
	if err != nil {
		t.Fatal(err)
	}

	combined := dedupe(append(plans, plans...))
	if len(combined) != len(plans) {
		t.Errorf("dedupe kept %d plans, want %d", len(combined), len(plans))
	}
}

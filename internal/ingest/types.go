// Package ingest refreshes per-city plan data from provider listing
// pages. It fetches, extracts plan offers, sanitizes them, and publishes
// a new JSON snapshot for the file source (or a plans-table snapshot
// when Postgres is configured).
package ingest

import (
	"context"
	"io"
	"time"
)

// FetchedDocument is one retrieved listing page.
type FetchedDocument struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        io.ReadCloser
	FetchedAt   time.Time
}

// Fetcher retrieves a listing page. CollyFetcher is the default; the
// plain HTTP fetcher is the fallback for hosts that reject crawlers.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchedDocument, error)
}

// SourceConfig describes one provider listing page and the CSS
// selectors that locate plan offers on it.
type SourceConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	URL         string `yaml:"url" mapstructure:"url"`
	Provider    string `yaml:"provider" mapstructure:"provider"`
	CardSel     string `yaml:"card_selector" mapstructure:"card_selector"`
	NameSel     string `yaml:"name_selector" mapstructure:"name_selector"`
	RateSel     string `yaml:"rate_selector" mapstructure:"rate_selector"`
	ContractSel string `yaml:"contract_selector" mapstructure:"contract_selector"`
	GreenSel    string `yaml:"green_selector" mapstructure:"green_selector"`
	DescSel     string `yaml:"description_selector" mapstructure:"description_selector"`
}

// RefreshStats summarizes one city refresh.
type RefreshStats struct {
	City         string        `json:"city"`
	SourcesTried int           `json:"sources_tried"`
	PlansFound   int           `json:"plans_found"`
	PlansKept    int           `json:"plans_kept"`
	Errors       int           `json:"errors"`
	Duration     time.Duration `json:"duration"`
}

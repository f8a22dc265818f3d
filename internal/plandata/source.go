// Package plandata supplies the read-only plan record arrays the filter
// engine operates on, from per-city JSON files or Postgres.
package plandata

import (
	"context"
	"strings"

	"github.com/choosepower/plan-finder/internal/models"
)

// Source loads the plan array for a city. Implementations are safe for
// concurrent use; returned slices must not be mutated by callers.
type Source interface {
	PlansForCity(ctx context.Context, citySlug string) ([]models.PlanRecord, error)
	Cities(ctx context.Context) ([]string, error)
}

// NormalizeSlug strips the "-tx" suffix that ZIP-mapping keys carry but
// plan data keys do not. Every lookup into plan data goes through this
// boundary; see the routing contract for why the mismatch is preserved
// rather than fixed in the tables.
func NormalizeSlug(slug string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(slug)), "-tx")
}

// Counter adapts a Source to the ziprouter's plan-count dependency.
type Counter struct {
	Source Source
}

func (c Counter) PlanCount(ctx context.Context, citySlug string) (int, error) {
	plans, err := c.Source.PlansForCity(ctx, citySlug)
	if err != nil {
		return 0, err
	}
	return len(plans), nil
}

// Package ziprouter classifies a ZIP code and routes it to the matching
// city page. Every lookup walks format check, state check, coverage
// check, and terminates in exactly one resolution or typed rejection.
package ziprouter

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/choosepower/plan-finder/internal/models"
)

// fallbackPlanCount is the documented estimate reported when the plan
// data for a resolved city cannot be loaded. Resolution must not fail on
// a missing data file.
const fallbackPlanCount = 25

const (
	confidenceDirectHit = 0.95
	confidenceEstimated = 0.70
)

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// PlanCounter resolves how many plans a city currently offers. The
// plandata source satisfies this; it applies slug normalization at the
// lookup boundary.
type PlanCounter interface {
	PlanCount(ctx context.Context, citySlug string) (int, error)
}

// Router holds the static ZIP and city tables, loaded once at startup
// and read-only afterwards.
type Router struct {
	zips   map[string]models.ZipMappingEntry
	cities map[string]models.CityInfo
	counts PlanCounter
}

func NewRouter(entries []models.ZipMappingEntry, cities []models.CityInfo, counts PlanCounter) *Router {
	r := &Router{
		zips:   make(map[string]models.ZipMappingEntry, len(entries)),
		cities: make(map[string]models.CityInfo, len(cities)),
		counts: counts,
	}
	for _, e := range entries {
		r.zips[e.Zip] = e
	}
	for _, c := range cities {
		r.cities[c.Slug] = c
	}
	return r
}

// Resolve classifies a ZIP code. Exactly one of the return values is
// non-nil.
func (r *Router) Resolve(ctx context.Context, zip string) (*models.ZipResolution, *models.ZipError) {
	zip = strings.TrimSpace(zip)

	// Format check. 00000 is never assigned, so it is rejected here
	// without consulting the coverage table.
	if !zipPattern.MatchString(zip) || zip == "00000" {
		return nil, &models.ZipError{
			Zip:     zip,
			Code:    models.ZipErrInvalidFormat,
			Message: "Please enter a valid 5-digit ZIP code.",
		}
	}

	// State check: Texas ZIPs fall in 75000-79999 plus the 885xx range
	// around El Paso.
	if !isTexasZip(zip) {
		return nil, &models.ZipError{
			Zip:     zip,
			Code:    models.ZipErrNotTexas,
			Message: "That ZIP code is outside Texas. We only compare Texas electricity plans.",
		}
	}

	// Coverage check.
	entry, ok := r.zips[zip]
	if !ok {
		return nil, &models.ZipError{
			Zip:     zip,
			Code:    models.ZipErrNotFound,
			Message: "We don't have coverage data for that ZIP code yet.",
		}
	}

	if !entry.Deregulated {
		return nil, &models.ZipError{
			Zip:         zip,
			Code:        models.ZipErrCooperative,
			Message:     "This area is served by an electric cooperative, so plans can't be compared here.",
			Cooperative: entry.Cooperative,
			CoopPhone:   entry.CoopPhone,
		}
	}

	res := &models.ZipResolution{
		Zip:        zip,
		CitySlug:   entry.CitySlug,
		TDSPName:   entry.TDSPName,
		TDSPDuns:   entry.TDSPDuns,
		RoutingURL: fmt.Sprintf("/electricity-plans/%s/", entry.CitySlug),
		Confidence: confidenceDirectHit,
	}
	if city, ok := r.cities[entry.CitySlug]; ok {
		res.CityName = city.Name
	}

	res.PlanCount = fallbackPlanCount
	if r.counts != nil {
		if n, err := r.counts.PlanCount(ctx, entry.CitySlug); err == nil {
			res.PlanCount = n
		} else {
			res.Confidence = confidenceEstimated
		}
	}

	return res, nil
}

// City returns the static metadata for a slug.
func (r *Router) City(slug string) (models.CityInfo, bool) {
	c, ok := r.cities[slug]
	return c, ok
}

// Cities lists all known city slugs.
func (r *Router) Cities() []models.CityInfo {
	out := make([]models.CityInfo, 0, len(r.cities))
	for _, c := range r.cities {
		out = append(out, c)
	}
	return out
}

func isTexasZip(zip string) bool {
	switch zip[0] {
	case '7':
		return zip[1] >= '5' && zip[1] <= '9'
	case '8':
		return strings.HasPrefix(zip, "885")
	default:
		return false
	}
}

package urlstate

import (
	"fmt"

	"github.com/choosepower/plan-finder/internal/models"
)

const pathPrefix = "/electricity-plans/"

// BuildSEOPath renders a human-readable path segment for the common
// single-filter pages (contract length, rate type, fully green). Any
// richer combination falls back to the city-only path; the query string
// remains the source of truth for those.
func BuildSEOPath(f models.FilterState) string {
	base := pathPrefix + f.City + "/"
	if f.City == "" {
		base = pathPrefix
	}

	segment := ""
	segments := 0

	if len(f.ContractLengths) == 1 {
		segment = fmt.Sprintf("%d-month", f.ContractLengths[0])
		segments++
	}
	if len(f.RateTypes) == 1 {
		segment = string(f.RateTypes[0]) + "-rate"
		segments++
	}
	if f.MinGreenEnergy != nil && *f.MinGreenEnergy >= 100 {
		segment = "green-energy"
		segments++
	}

	// Only a lone filter gets a pretty segment. Anything else would
	// multiply crawlable URL variants without ranking value.
	if segments != 1 || hasOtherFilters(f) {
		return base
	}
	return base + segment + "/"
}

// hasOtherFilters reports whether the state carries constraints beyond
// the three the SEO path can express.
func hasOtherFilters(f models.FilterState) bool {
	return f.MinRate != nil ||
		f.MaxRate != nil ||
		f.MaxMonthlyFee != nil ||
		(f.MinGreenEnergy != nil && *f.MinGreenEnergy < 100) ||
		len(f.SelectedProviders) > 0 ||
		f.MinProviderRating != nil ||
		len(f.RequiredFeatures) > 0 ||
		f.IncludePromotions ||
		f.ExcludeEarlyTerminationFee
}

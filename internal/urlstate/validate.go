package urlstate

import (
	"github.com/choosepower/plan-finder/internal/models"
)

// CombinationReport annotates an internally-inconsistent or overly
// restrictive selection for UI display. It never blocks processing.
type CombinationReport struct {
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// ValidateCombination runs a small rule set over the state. Violations
// surface as warnings, not errors: the filter engine still processes the
// state as given.
func ValidateCombination(f models.FilterState) CombinationReport {
	var report CombinationReport

	if f.MinRate != nil && f.MaxRate != nil && *f.MinRate > *f.MaxRate {
		report.Warnings = append(report.Warnings,
			"minimum rate is above maximum rate; no plan can match")
		report.Suggestions = append(report.Suggestions,
			"swap or widen the rate bounds")
	}

	if f.MinGreenEnergy != nil && *f.MinGreenEnergy >= 80 &&
		f.MaxRate != nil && *f.MaxRate <= 10 {
		report.Warnings = append(report.Warnings,
			"high green energy minimums rarely combine with rates under 10¢/kWh")
		report.Suggestions = append(report.Suggestions,
			"raise the maximum rate or lower the green energy minimum")
	}

	if f.MinProviderRating != nil && *f.MinProviderRating >= 4.8 {
		report.Warnings = append(report.Warnings,
			"very few providers carry a rating of 4.8 or higher")
		report.Suggestions = append(report.Suggestions,
			"lower the minimum provider rating")
	}

	return report
}

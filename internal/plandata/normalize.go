package plandata

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/choosepower/plan-finder/internal/models"
)

var descriptionPolicy = bluemonday.StrictPolicy()

// SanitizeDescription strips markup from a plan's marketing description
// and collapses whitespace. Provider feeds ship HTML fragments; the API
// serves plain text only.
func SanitizeDescription(raw string) string {
	if raw == "" {
		return ""
	}

	text := raw
	if strings.Contains(raw, "<") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
			text = doc.Text()
		}
	}

	text = descriptionPolicy.Sanitize(text)
	return cleanText(text)
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizeRecord clamps obviously-invalid values on a loaded record so
// the filter engine can assume its invariants.
func normalizeRecord(p models.PlanRecord) models.PlanRecord {
	if p.BaseRate < 0 {
		p.BaseRate = 0
	}
	if p.GreenEnergyPercentage < 0 {
		p.GreenEnergyPercentage = 0
	}
	if p.GreenEnergyPercentage > 100 {
		p.GreenEnergyPercentage = 100
	}
	if p.RateType == "" {
		p.RateType = models.RateFixed
	}
	if p.ProviderSlug == "" {
		p.ProviderSlug = Slugify(p.Provider)
	}
	p.Description = SanitizeDescription(p.Description)
	return p
}

// Slugify lowercases a provider name into a URL-safe slug.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

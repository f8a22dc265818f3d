package ingest

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/choosepower/plan-finder/internal/models"
	"github.com/choosepower/plan-finder/internal/plandata"
)

var (
	ratePattern     = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:¢|c|cents?)`)
	contractPattern = regexp.MustCompile(`(\d+)\s*[- ]?\s*month`)
	greenPattern    = regexp.MustCompile(`(\d+)\s*%`)
)

// ParseListing extracts plan offers from a provider listing page using
// the source's CSS selectors. Cards missing a name or rate are skipped;
// a page that yields nothing is an error so a layout change is noticed.
func ParseListing(body io.Reader, src SourceConfig) ([]models.PlanRecord, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s listing: %w", src.Name, err)
	}

	var plans []models.PlanRecord
	doc.Find(src.CardSel).Each(func(_ int, card *goquery.Selection) {
		name := strings.TrimSpace(card.Find(src.NameSel).First().Text())
		rate, rateOK := parseRate(card.Find(src.RateSel).First().Text())
		if name == "" || !rateOK {
			return
		}

		p := models.PlanRecord{
			ID:           plandata.Slugify(src.Provider + "-" + name),
			Name:         name,
			Provider:     src.Provider,
			ProviderSlug: plandata.Slugify(src.Provider),
			BaseRate:     rate,
			RateType:     models.RateFixed,
		}

		if src.ContractSel != "" {
			if m := contractPattern.FindStringSubmatch(card.Find(src.ContractSel).First().Text()); m != nil {
				if months, err := strconv.Atoi(m[1]); err == nil {
					p.ContractLength = months
				}
			}
		}
		if src.GreenSel != "" {
			if m := greenPattern.FindStringSubmatch(card.Find(src.GreenSel).First().Text()); m != nil {
				if pct, err := strconv.ParseFloat(m[1], 64); err == nil {
					p.GreenEnergyPercentage = pct
				}
			}
		}
		if src.DescSel != "" {
			if html, err := card.Find(src.DescSel).First().Html(); err == nil {
				p.Description = plandata.SanitizeDescription(html)
			}
		}

		lowered := strings.ToLower(card.Text())
		if strings.Contains(lowered, "promo") || strings.Contains(lowered, "bonus") {
			p.HasPromotion = true
		}

		plans = append(plans, p)
	})

	if len(plans) == 0 {
		return nil, fmt.Errorf("no plan cards matched %q on %s", src.CardSel, src.URL)
	}
	return plans, nil
}

// parseRate reads a cents-per-kWh figure out of display text like
// "10.5¢ per kWh" or "10.5 cents/kWh".
func parseRate(text string) (float64, bool) {
	m := ratePattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

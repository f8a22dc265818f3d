// Package urlstate maps a FilterState to and from its compact query
// string representation. The query string is the source of truth for the
// full filter selection; the SEO path rendering in seopath.go is a lossy
// companion for the common single-filter pages.
package urlstate

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/choosepower/plan-finder/internal/models"
)

// Short parameter keys, 1:1 with FilterState fields.
const (
	paramCity      = "city"
	paramContract  = "contract"
	paramRateType  = "type"
	paramMinRate   = "min"
	paramMaxRate   = "max"
	paramFee       = "fee"
	paramGreen     = "green"
	paramProviders = "providers"
	paramRating    = "rating"
	paramFeatures  = "features"
	paramPromo     = "promo"
	paramNoETF     = "no-etf"
	paramSort      = "sort"
	paramOrder     = "order"
)

var rateTypeCodes = map[models.RateType]string{
	models.RateFixed:    "f",
	models.RateVariable: "v",
	models.RateIndexed:  "i",
}

var rateTypeFromCode = map[string]models.RateType{
	"f": models.RateFixed,
	"v": models.RateVariable,
	"i": models.RateIndexed,
}

var featureCodes = map[string]string{
	"autopay-discount":       "ap",
	"bill-credit":            "bc",
	"free-nights":            "fn",
	"free-weekends":          "fw",
	"no-deposit":             "nd",
	"prepaid":                "pp",
	"satisfaction-guarantee": "sg",
	"smart-thermostat":       "st",
	"solar-buyback":          "sb",
	"time-of-use":            "tou",
}

var featureFromCode = invert(featureCodes)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

var validSortKeys = map[models.SortKey]bool{
	models.SortPrice:    true,
	models.SortRating:   true,
	models.SortContract: true,
	models.SortProvider: true,
	models.SortGreen:    true,
}

// Serialize encodes every non-default field of the state using the short
// parameter table. Fields at their default value are dropped and
// reconstructed as defaults on parse, so Parse(Serialize(f)) == f for
// any well-formed state.
func Serialize(f models.FilterState) string {
	q := url.Values{}

	if f.City != "" {
		q.Set(paramCity, f.City)
	}
	if len(f.ContractLengths) > 0 {
		parts := make([]string, 0, len(f.ContractLengths))
		for _, c := range f.ContractLengths {
			parts = append(parts, strconv.Itoa(c))
		}
		q.Set(paramContract, strings.Join(parts, ","))
	}
	if len(f.RateTypes) > 0 {
		parts := make([]string, 0, len(f.RateTypes))
		for _, rt := range f.RateTypes {
			if code, ok := rateTypeCodes[rt]; ok {
				parts = append(parts, code)
			}
		}
		if len(parts) > 0 {
			q.Set(paramRateType, strings.Join(parts, ","))
		}
	}
	if f.MinRate != nil {
		q.Set(paramMinRate, strconv.FormatFloat(*f.MinRate, 'f', 1, 64))
	}
	if f.MaxRate != nil {
		q.Set(paramMaxRate, strconv.FormatFloat(*f.MaxRate, 'f', 1, 64))
	}
	if f.MaxMonthlyFee != nil {
		q.Set(paramFee, trimFloat(*f.MaxMonthlyFee))
	}
	if f.MinGreenEnergy != nil {
		q.Set(paramGreen, strconv.Itoa(int(*f.MinGreenEnergy)))
	}
	if len(f.SelectedProviders) > 0 {
		q.Set(paramProviders, strings.Join(f.SelectedProviders, ","))
	}
	if f.MinProviderRating != nil {
		q.Set(paramRating, trimFloat(*f.MinProviderRating))
	}
	if len(f.RequiredFeatures) > 0 {
		parts := make([]string, 0, len(f.RequiredFeatures))
		for _, feat := range f.RequiredFeatures {
			if code, ok := featureCodes[feat]; ok {
				parts = append(parts, code)
			}
		}
		if len(parts) > 0 {
			q.Set(paramFeatures, strings.Join(parts, ","))
		}
	}
	if f.IncludePromotions {
		q.Set(paramPromo, "1")
	}
	if f.ExcludeEarlyTerminationFee {
		q.Set(paramNoETF, "1")
	}
	if f.SortBy != "" && f.SortBy != models.SortPrice {
		q.Set(paramSort, string(f.SortBy))
	}
	if f.SortOrder != "" && f.SortOrder != models.OrderAsc {
		q.Set(paramOrder, string(f.SortOrder))
	}

	return q.Encode()
}

// Parse is the inverse of Serialize. Unknown or malformed values are
// discarded silently and replaced with defaults per field; garbage input
// never fails, it degrades.
func Parse(query string, defaultCity string) models.FilterState {
	f := models.DefaultFilterState(defaultCity)

	q, err := url.ParseQuery(query)
	if err != nil {
		return f
	}

	if city := strings.TrimSpace(q.Get(paramCity)); city != "" {
		f.City = city
	}

	if raw := q.Get(paramContract); raw != "" {
		for _, part := range splitCSV(raw) {
			if months, err := strconv.Atoi(part); err == nil && onLadder(months) {
				f.ContractLengths = append(f.ContractLengths, months)
			}
		}
	}

	if raw := q.Get(paramRateType); raw != "" {
		for _, part := range splitCSV(raw) {
			if rt, ok := rateTypeFromCode[part]; ok {
				f.RateTypes = append(f.RateTypes, rt)
			}
		}
	}

	if v, ok := parseFloatIn(q.Get(paramMinRate), 0, 100); ok {
		f.MinRate = &v
	}
	if v, ok := parseFloatIn(q.Get(paramMaxRate), 0, 100); ok {
		f.MaxRate = &v
	}
	if v, ok := parseFloatIn(q.Get(paramFee), 0, 100); ok {
		f.MaxMonthlyFee = &v
	}
	// Green is encoded as an integer percentage, so fractional input is
	// malformed and dropped rather than truncated.
	if raw := q.Get(paramGreen); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 && n <= 100 {
			v := float64(n)
			f.MinGreenEnergy = &v
		}
	}

	if raw := q.Get(paramProviders); raw != "" {
		f.SelectedProviders = splitCSV(raw)
	}

	if v, ok := parseFloatIn(q.Get(paramRating), 1, 5); ok {
		f.MinProviderRating = &v
	}

	if raw := q.Get(paramFeatures); raw != "" {
		for _, part := range splitCSV(raw) {
			if name, ok := featureFromCode[part]; ok {
				f.RequiredFeatures = append(f.RequiredFeatures, name)
			} else if _, known := featureCodes[part]; known {
				f.RequiredFeatures = append(f.RequiredFeatures, part)
			}
		}
	}

	f.IncludePromotions = q.Get(paramPromo) == "1"
	f.ExcludeEarlyTerminationFee = q.Get(paramNoETF) == "1"

	if key := models.SortKey(q.Get(paramSort)); validSortKeys[key] {
		f.SortBy = key
	}
	if q.Get(paramOrder) == string(models.OrderDesc) {
		f.SortOrder = models.OrderDesc
	}

	return f
}

func splitCSV(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

// parseFloatIn parses a decimal and rejects values outside [lo, hi];
// out-of-range values are treated as absent.
func parseFloatIn(raw string, lo, hi float64) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < lo || v > hi {
		return 0, false
	}
	return v, true
}

func onLadder(months int) bool {
	for _, rung := range models.ContractLadder {
		if rung == months {
			return true
		}
	}
	return false
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

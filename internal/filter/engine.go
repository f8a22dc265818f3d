package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/choosepower/plan-finder/internal/models"
)

// Engine applies a FilterState to a city's plan records. It holds no
// state across invocations, so concurrent use needs no locking.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// stage is one narrowing step. An inactive stage is a no-op: absence of
// a constraint means "no constraint", never "exclude everything".
type stage struct {
	name   string
	active bool
	keep   func(models.PlanRecord) bool
}

func stages(f models.FilterState) []stage {
	return []stage{
		{
			name:   "contract_length",
			active: len(f.ContractLengths) > 0,
			keep: func(p models.PlanRecord) bool {
				return containsInt(f.ContractLengths, p.ContractLength)
			},
		},
		{
			name:   "rate_type",
			active: len(f.RateTypes) > 0,
			keep: func(p models.PlanRecord) bool {
				for _, rt := range f.RateTypes {
					if p.RateType == rt {
						return true
					}
				}
				return false
			},
		},
		{
			name:   "price_range",
			active: f.MinRate != nil || f.MaxRate != nil,
			keep: func(p models.PlanRecord) bool {
				if f.MinRate != nil && p.BaseRate < *f.MinRate {
					return false
				}
				if f.MaxRate != nil && p.BaseRate > *f.MaxRate {
					return false
				}
				return true
			},
		},
		{
			name:   "monthly_fee",
			active: f.MaxMonthlyFee != nil,
			keep: func(p models.PlanRecord) bool {
				return p.MonthlyFee <= *f.MaxMonthlyFee
			},
		},
		{
			name:   "green_energy",
			active: f.MinGreenEnergy != nil,
			keep: func(p models.PlanRecord) bool {
				return p.GreenEnergyPercentage >= *f.MinGreenEnergy
			},
		},
		{
			name:   "provider",
			active: len(f.SelectedProviders) > 0,
			keep: func(p models.PlanRecord) bool {
				for _, slug := range f.SelectedProviders {
					if p.ProviderSlug == slug {
						return true
					}
				}
				return false
			},
		},
		{
			name:   "provider_rating",
			active: f.MinProviderRating != nil,
			keep: func(p models.PlanRecord) bool {
				return p.ProviderRating >= *f.MinProviderRating
			},
		},
		{
			// AND semantics: the plan must carry every requested feature.
			name:   "features",
			active: len(f.RequiredFeatures) > 0,
			keep: func(p models.PlanRecord) bool {
				for _, tag := range f.RequiredFeatures {
					if !p.HasFeature(tag) {
						return false
					}
				}
				return true
			},
		},
		{
			name:   "promotions",
			active: f.IncludePromotions,
			keep: func(p models.PlanRecord) bool {
				return p.HasPromotion
			},
		},
		{
			name:   "no_etf",
			active: f.ExcludeEarlyTerminationFee,
			keep: func(p models.PlanRecord) bool {
				return p.EarlyTerminationFee == 0
			},
		},
	}
}

// Apply runs every active filter stage over the plan list, sorts the
// survivors, and computes facet counts against the unfiltered input.
// It assumes a validated FilterState and never panics on empty input.
func (e *Engine) Apply(plans []models.PlanRecord, f models.FilterState) models.FilterResult {
	start := time.Now()

	candidates := plans
	for _, st := range stages(f) {
		if !st.active {
			continue
		}
		next := make([]models.PlanRecord, 0, len(candidates))
		for _, p := range candidates {
			if st.keep(p) {
				next = append(next, p)
			}
		}
		candidates = next
	}

	sorted := make([]models.PlanRecord, len(candidates))
	copy(sorted, candidates)
	sortPlans(sorted, f.SortBy, f.SortOrder)

	return models.FilterResult{
		Plans:         sorted,
		TotalCount:    len(plans),
		FilteredCount: len(sorted),
		Facets:        FacetCountsFor(plans),
		DurationMS:    float64(time.Since(start).Microseconds()) / 1000.0,
	}
}

// sortPlans orders plans by the requested key with a deterministic
// lexicographic plan-name tiebreak, so identical inputs always produce
// byte-identical ordering.
func sortPlans(plans []models.PlanRecord, key models.SortKey, order models.SortOrder) {
	dir := 1.0
	if order == models.OrderDesc {
		dir = -1.0
	}

	sort.SliceStable(plans, func(i, j int) bool {
		a, b := plans[i], plans[j]
		var cmp float64
		switch key {
		case models.SortRating:
			cmp = a.ProviderRating - b.ProviderRating
		case models.SortContract:
			cmp = float64(a.ContractLength - b.ContractLength)
		case models.SortProvider:
			cmp = float64(strings.Compare(a.Provider, b.Provider))
		case models.SortGreen:
			cmp = a.GreenEnergyPercentage - b.GreenEnergyPercentage
		default: // models.SortPrice
			cmp = a.BaseRate - b.BaseRate
		}
		cmp *= dir
		if cmp != 0 {
			return cmp < 0
		}
		return a.Name < b.Name
	})
}

// FacetCountsFor counts option availability over the unfiltered plan
// set. Counts only change when the underlying plan array changes, not
// when the user narrows the selection.
func FacetCountsFor(plans []models.PlanRecord) models.FacetCounts {
	fc := models.FacetCounts{
		ContractLengths: map[int]int{},
		RateTypes:       map[string]int{},
		Providers:       map[string]int{},
		Features:        map[string]int{},
		GreenTiers:      map[string]int{},
	}

	for _, p := range plans {
		fc.ContractLengths[p.ContractLength]++
		fc.RateTypes[string(p.RateType)]++
		fc.Providers[p.ProviderSlug]++
		for _, tag := range p.Features {
			fc.Features[tag]++
		}
		if p.GreenEnergyPercentage > 0 {
			fc.GreenTiers["any"]++
		}
		if p.GreenEnergyPercentage >= 50 {
			fc.GreenTiers["50"]++
		}
		if p.GreenEnergyPercentage >= 100 {
			fc.GreenTiers["100"]++
		}
		if p.HasPromotion {
			fc.Promotions++
		}
		if p.EarlyTerminationFee == 0 {
			fc.NoETF++
		}
		if p.HasFeature("no-deposit") {
			fc.NoDeposit++
		}
	}

	return fc
}

func containsInt(haystack []int, needle int) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

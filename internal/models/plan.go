package models

// RateType is the pricing structure of a plan.
type RateType string

const (
	RateFixed    RateType = "fixed"
	RateVariable RateType = "variable"
	RateIndexed  RateType = "indexed"
)

// ContractLadder is the fixed set of contract lengths (months) offered in
// the Texas retail market. Nearby-plan relaxation walks adjacent rungs.
var ContractLadder = []int{1, 6, 12, 24, 36}

// PlanRecord is one electricity plan offer for a city. Records are loaded
// read-only per request and never mutated by the filtering core.
type PlanRecord struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	Provider              string   `json:"provider"`
	ProviderSlug          string   `json:"provider_slug"`
	ProviderRating        float64  `json:"provider_rating"` // 1-5
	BaseRate              float64  `json:"base_rate"`       // cents per kWh
	RateType              RateType `json:"rate_type"`
	ContractLength        int      `json:"contract_length"` // months, one of ContractLadder
	MonthlyFee            float64  `json:"monthly_fee"`
	GreenEnergyPercentage float64  `json:"green_energy_percentage"` // 0-100
	EarlyTerminationFee   float64  `json:"early_termination_fee"`
	Features              []string `json:"features"`
	HasPromotion          bool     `json:"has_promotion"`
	Description           string   `json:"description,omitempty"`
}

// HasFeature reports whether the plan carries the given feature tag.
func (p PlanRecord) HasFeature(tag string) bool {
	for _, f := range p.Features {
		if f == tag {
			return true
		}
	}
	return false
}

// SortKey selects the comparison field for result ordering.
type SortKey string

const (
	SortPrice    SortKey = "price"
	SortRating   SortKey = "rating"
	SortContract SortKey = "contract"
	SortProvider SortKey = "provider"
	SortGreen    SortKey = "green"
)

// SortOrder is the direction applied to the sort key.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// FilterState is the user's current filter and sort selection. It is an
// immutable value: every filter change builds a fresh state, nothing
// mutates one in place across requests.
type FilterState struct {
	City  string `json:"city"`
	State string `json:"state"`

	ContractLengths []int      `json:"contract_lengths,omitempty"`
	RateTypes       []RateType `json:"rate_types,omitempty"`
	MinRate         *float64   `json:"min_rate,omitempty"`
	MaxRate         *float64   `json:"max_rate,omitempty"`
	MaxMonthlyFee   *float64   `json:"max_monthly_fee,omitempty"`
	MinGreenEnergy  *float64   `json:"min_green_energy,omitempty"`

	SelectedProviders []string `json:"selected_providers,omitempty"`
	MinProviderRating *float64 `json:"min_provider_rating,omitempty"`
	RequiredFeatures  []string `json:"required_features,omitempty"`

	IncludePromotions          bool `json:"include_promotions,omitempty"`
	ExcludeEarlyTerminationFee bool `json:"exclude_early_termination_fee,omitempty"`

	SortBy    SortKey   `json:"sort_by"`
	SortOrder SortOrder `json:"sort_order"`
}

// DefaultFilterState returns the empty selection for a city: no
// constraints, cheapest-first ordering.
func DefaultFilterState(city string) FilterState {
	return FilterState{
		City:      city,
		State:     "texas",
		SortBy:    SortPrice,
		SortOrder: OrderAsc,
	}
}

// HasActiveFilters reports whether any narrowing criterion is set.
// Sort selection alone does not count.
func (f FilterState) HasActiveFilters() bool {
	return len(f.ContractLengths) > 0 ||
		len(f.RateTypes) > 0 ||
		f.MinRate != nil ||
		f.MaxRate != nil ||
		f.MaxMonthlyFee != nil ||
		f.MinGreenEnergy != nil ||
		len(f.SelectedProviders) > 0 ||
		f.MinProviderRating != nil ||
		len(f.RequiredFeatures) > 0 ||
		f.IncludePromotions ||
		f.ExcludeEarlyTerminationFee
}

// FacetCounts holds per-option match counts computed against the
// unfiltered plan set, so option badges show availability before the
// current selection is applied.
type FacetCounts struct {
	ContractLengths map[int]int    `json:"contract_lengths"`
	RateTypes       map[string]int `json:"rate_types"`
	Providers       map[string]int `json:"providers"`
	Features        map[string]int `json:"features"`
	GreenTiers      map[string]int `json:"green_tiers"` // "any", "50", "100"
	Promotions      int            `json:"promotions"`
	NoDeposit       int            `json:"no_deposit"`
	NoETF           int            `json:"no_etf"`
}

// FilterResult is the output of one filter application.
type FilterResult struct {
	Plans         []PlanRecord `json:"plans"`
	TotalCount    int          `json:"total_count"`
	FilteredCount int          `json:"filtered_count"`
	Facets        FacetCounts  `json:"facets"`
	DurationMS    float64      `json:"duration_ms"`
}

// SuggestionPriority ranks relaxation suggestions for display.
type SuggestionPriority string

const (
	PriorityHigh   SuggestionPriority = "high"
	PriorityMedium SuggestionPriority = "medium"
	PriorityLow    SuggestionPriority = "low"
)

// Suggestion describes one "relax this filter" probe and the result
// count it would unlock.
type Suggestion struct {
	Filter          string             `json:"filter"`
	Message         string             `json:"message"`
	Priority        SuggestionPriority `json:"priority"`
	ExpectedResults int                `json:"expected_results"`
}

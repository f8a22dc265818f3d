package filter

import (
	"fmt"
	"math"
	"sort"

	"github.com/choosepower/plan-finder/internal/models"
)

// greenRelaxPoints is how far the green-energy minimum is lowered when
// probing for nearby plans.
const greenRelaxPoints = 25.0

// Suggestions probes a fixed set of relaxation candidates: for each
// currently-active restrictive filter it re-applies the state with that
// one filter relaxed and reports the count it would unlock. This is a
// what-if exploration over a small candidate list, not a search.
func (e *Engine) Suggestions(plans []models.PlanRecord, f models.FilterState) []models.Suggestion {
	var out []models.Suggestion

	probe := func(relaxed models.FilterState, name, message string, prio models.SuggestionPriority) {
		n := e.Apply(plans, relaxed).FilteredCount
		if n > 0 {
			out = append(out, models.Suggestion{
				Filter:          name,
				Message:         message,
				Priority:        prio,
				ExpectedResults: n,
			})
		}
	}

	if len(f.ContractLengths) > 0 {
		relaxed := f
		relaxed.ContractLengths = nil
		probe(relaxed, "contract_length",
			"Remove the contract length filter to see more plans",
			models.PriorityHigh)
	}

	if f.MinRate != nil || f.MaxRate != nil {
		relaxed := f
		relaxed.MinRate = nil
		relaxed.MaxRate = nil
		probe(relaxed, "price_range",
			"Widen your price range to see more plans",
			models.PriorityHigh)
	}

	if f.MinGreenEnergy != nil {
		relaxed := f
		relaxed.MinGreenEnergy = nil
		probe(relaxed, "green_energy",
			"Lower the minimum green energy percentage to see more plans",
			models.PriorityMedium)
	}

	if len(f.SelectedProviders) == 1 {
		relaxed := f
		relaxed.SelectedProviders = nil
		probe(relaxed, "provider",
			fmt.Sprintf("Include providers other than %s", f.SelectedProviders[0]),
			models.PriorityMedium)
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := priorityRank(out[i].Priority), priorityRank(out[j].Priority)
		if pi != pj {
			return pi < pj
		}
		return out[i].ExpectedResults > out[j].ExpectedResults
	})

	return out
}

func priorityRank(p models.SuggestionPriority) int {
	switch p {
	case models.PriorityHigh:
		return 0
	case models.PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Nearby is the zero-results fallback: it widens price bounds by 20%,
// lowers the green minimum by 25 points, admits adjacent contract ladder
// rungs, then returns up to max plans ordered by distance from the
// original max-rate bound.
func (e *Engine) Nearby(plans []models.PlanRecord, f models.FilterState, max int) []models.PlanRecord {
	relaxed := f

	if f.MinRate != nil {
		v := *f.MinRate * 0.8
		relaxed.MinRate = &v
	}
	if f.MaxRate != nil {
		v := *f.MaxRate * 1.2
		relaxed.MaxRate = &v
	}
	if f.MinGreenEnergy != nil {
		v := *f.MinGreenEnergy - greenRelaxPoints
		if v <= 0 {
			relaxed.MinGreenEnergy = nil
		} else {
			relaxed.MinGreenEnergy = &v
		}
	}
	if len(f.ContractLengths) > 0 {
		relaxed.ContractLengths = widenLadder(f.ContractLengths)
	}

	result := e.Apply(plans, relaxed)
	nearby := result.Plans

	if f.MaxRate != nil {
		anchor := *f.MaxRate
		sort.SliceStable(nearby, func(i, j int) bool {
			di := math.Abs(nearby[i].BaseRate - anchor)
			dj := math.Abs(nearby[j].BaseRate - anchor)
			if di != dj {
				return di < dj
			}
			return nearby[i].Name < nearby[j].Name
		})
	}

	if max > 0 && len(nearby) > max {
		nearby = nearby[:max]
	}
	return nearby
}

// widenLadder adds the rungs adjacent to each selected contract length
// from the fixed ladder {1,6,12,24,36}.
func widenLadder(selected []int) []int {
	want := map[int]bool{}
	for _, v := range selected {
		want[v] = true
		for i, rung := range models.ContractLadder {
			if rung != v {
				continue
			}
			if i > 0 {
				want[models.ContractLadder[i-1]] = true
			}
			if i < len(models.ContractLadder)-1 {
				want[models.ContractLadder[i+1]] = true
			}
		}
	}

	out := make([]int, 0, len(want))
	for _, rung := range models.ContractLadder {
		if want[rung] {
			out = append(out, rung)
		}
	}
	// Preserve selections outside the ladder as-is.
	for _, v := range selected {
		if !containsInt(models.ContractLadder, v) {
			out = append(out, v)
		}
	}
	return out
}

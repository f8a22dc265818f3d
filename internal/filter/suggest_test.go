package filter

import (
	"reflect"
	"testing"

	"github.com/choosepower/plan-finder/internal/models"
)

func TestSuggestionsForImpossiblePriceFloor(t *testing.T) {
	e := NewEngine()
	plans := []models.PlanRecord{
		{ID: "a", Name: "Plan A", BaseRate: 9.5, ContractLength: 12, RateType: models.RateFixed},
		{ID: "b", Name: "Plan B", BaseRate: 14.0, ContractLength: 24, RateType: models.RateVariable},
	}

	f := models.DefaultFilterState("houston")
	f.MinRate = fptr(20)

	if n := e.Apply(plans, f).FilteredCount; n != 0 {
		t.Fatalf("expected zero results, got %d", n)
	}

	suggestions := e.Suggestions(plans, f)
	if len(suggestions) == 0 {
		t.Fatal("expected a price-range relaxation suggestion")
	}

	found := false
	for _, s := range suggestions {
		if s.Filter == "price_range" {
			found = true
			if s.ExpectedResults <= 0 {
				t.Errorf("price suggestion must unlock results, got %d", s.ExpectedResults)
			}
			if s.Priority != models.PriorityHigh {
				t.Errorf("price relaxation should be high priority, got %s", s.Priority)
			}
		}
	}
	if !found {
		t.Errorf("no price_range suggestion in %+v", suggestions)
	}
}

func TestSuggestionsSkipInactiveFilters(t *testing.T) {
	e := NewEngine()
	if got := e.Suggestions(testPlans(), models.DefaultFilterState("houston")); len(got) != 0 {
		t.Errorf("no active filters should yield no suggestions, got %+v", got)
	}
}

func TestSuggestionsRankedByPriorityThenCount(t *testing.T) {
	e := NewEngine()
	plans := testPlans()

	f := models.DefaultFilterState("houston")
	f.ContractLengths = []int{6}  // relaxing unlocks the 100% green plan
	f.MinGreenEnergy = fptr(50)   // relaxing unlocks the 6-month plan

	suggestions := e.Suggestions(plans, f)
	if len(suggestions) < 2 {
		t.Fatalf("expected multiple suggestions, got %+v", suggestions)
	}

	for i := 1; i < len(suggestions); i++ {
		prev, cur := suggestions[i-1], suggestions[i]
		if priorityRank(prev.Priority) > priorityRank(cur.Priority) {
			t.Fatalf("suggestions out of priority order: %+v", suggestions)
		}
		if prev.Priority == cur.Priority && prev.ExpectedResults < cur.ExpectedResults {
			t.Fatalf("within a tier, suggestions must sort by count desc: %+v", suggestions)
		}
	}
}

func TestNearbyWidensBoundsAndOrdersByRateDistance(t *testing.T) {
	e := NewEngine()
	plans := []models.PlanRecord{
		{ID: "a", Name: "Near Miss", BaseRate: 10.5, ContractLength: 12},
		{ID: "b", Name: "Far Miss", BaseRate: 11.8, ContractLength: 12},
		{ID: "c", Name: "Way Out", BaseRate: 20.0, ContractLength: 12},
	}

	// Max rate of 10 matches nothing; +20% widens to 12.
	f := models.DefaultFilterState("houston")
	f.MaxRate = fptr(10)

	if n := e.Apply(plans, f).FilteredCount; n != 0 {
		t.Fatalf("expected no direct matches, got %d", n)
	}

	nearby := e.Nearby(plans, f, 10)
	var got []string
	for _, p := range nearby {
		got = append(got, p.ID)
	}
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("nearby = %v, want [a b] ordered by distance from the max bound", got)
	}
}

func TestNearbyRespectsMaxResults(t *testing.T) {
	e := NewEngine()
	f := models.DefaultFilterState("houston")
	if got := e.Nearby(testPlans(), f, 2); len(got) != 2 {
		t.Errorf("maxResults cap not applied, got %d plans", len(got))
	}
}

func TestWidenLadderAddsAdjacentRungs(t *testing.T) {
	tests := []struct {
		name     string
		selected []int
		want     []int
	}{
		{"middle rung", []int{12}, []int{6, 12, 24}},
		{"bottom rung", []int{1}, []int{1, 6}},
		{"top rung", []int{36}, []int{24, 36}},
		{"two rungs", []int{6, 24}, []int{1, 6, 12, 24, 36}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := widenLadder(tt.selected); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("widenLadder(%v) = %v, want %v", tt.selected, got, tt.want)
			}
		})
	}
}

func TestNearbyLowersGreenMinimum(t *testing.T) {
	e := NewEngine()
	plans := []models.PlanRecord{
		{ID: "g", Name: "Mostly Green", GreenEnergyPercentage: 80, BaseRate: 12},
	}

	f := models.DefaultFilterState("houston")
	f.MinGreenEnergy = fptr(100)

	if n := e.Apply(plans, f).FilteredCount; n != 0 {
		t.Fatalf("expected no direct matches")
	}
	if got := e.Nearby(plans, f, 5); len(got) != 1 {
		t.Errorf("green minimum should relax by 25 points, got %d plans", len(got))
	}
}

package urlstate

import (
	"testing"

	"github.com/choosepower/plan-finder/internal/models"
)

func TestBuildSEOPath(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.FilterState)
		want   string
	}{
		{
			name:   "no filters yields city path",
			mutate: func(f *models.FilterState) {},
			want:   "/electricity-plans/houston/",
		},
		{
			name:   "single contract length",
			mutate: func(f *models.FilterState) { f.ContractLengths = []int{12} },
			want:   "/electricity-plans/houston/12-month/",
		},
		{
			name:   "single rate type",
			mutate: func(f *models.FilterState) { f.RateTypes = []models.RateType{models.RateFixed} },
			want:   "/electricity-plans/houston/fixed-rate/",
		},
		{
			name:   "fully green",
			mutate: func(f *models.FilterState) { f.MinGreenEnergy = fptr(100) },
			want:   "/electricity-plans/houston/green-energy/",
		},
		{
			name: "two pretty filters fall back to city path",
			mutate: func(f *models.FilterState) {
				f.ContractLengths = []int{12}
				f.RateTypes = []models.RateType{models.RateFixed}
			},
			want: "/electricity-plans/houston/",
		},
		{
			name: "pretty filter with extra constraint falls back",
			mutate: func(f *models.FilterState) {
				f.ContractLengths = []int{12}
				f.MaxRate = fptr(11)
			},
			want: "/electricity-plans/houston/",
		},
		{
			name:   "partial green minimum is not a pretty page",
			mutate: func(f *models.FilterState) { f.MinGreenEnergy = fptr(50) },
			want:   "/electricity-plans/houston/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := models.DefaultFilterState("houston")
			tt.mutate(&f)
			if got := BuildSEOPath(f); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateCombination(t *testing.T) {
	t.Run("inverted rate bounds flagged", func(t *testing.T) {
		f := models.DefaultFilterState("houston")
		f.MinRate = fptr(15)
		f.MaxRate = fptr(10)

		report := ValidateCombination(f)
		if len(report.Warnings) == 0 || len(report.Suggestions) == 0 {
			t.Fatalf("expected warning for min>max, got %+v", report)
		}
	})

	t.Run("restrictive green plus cheap rate flagged", func(t *testing.T) {
		f := models.DefaultFilterState("houston")
		f.MinGreenEnergy = fptr(90)
		f.MaxRate = fptr(9)

		report := ValidateCombination(f)
		if len(report.Warnings) == 0 {
			t.Fatalf("expected restrictive-combination warning, got %+v", report)
		}
	})

	t.Run("clean state produces no warnings", func(t *testing.T) {
		f := models.DefaultFilterState("houston")
		f.ContractLengths = []int{12}

		report := ValidateCombination(f)
		if len(report.Warnings) != 0 {
			t.Fatalf("unexpected warnings: %+v", report)
		}
	})
}

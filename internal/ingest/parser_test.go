package ingest

import (
	"strings"
	"testing"
)

const listingHTML = `
<html><body>
  <div class="plan-card">
    <h3 class="plan-name">Texas Saver 12</h3>
    <span class="rate">10.5¢ per kWh</span>
    <span class="term">12-month contract</span>
    <span class="green">6% renewable</span>
    <div class="desc"><p>Lock in a <b>low</b> rate.</p></div>
  </div>
  <div class="plan-card">
    <h3 class="plan-name">Free Nights Promo</h3>
    <span class="rate">13.2 cents/kWh</span>
    <span class="term">24 month</span>
    <span class="green">100% renewable</span>
  </div>
  <div class="plan-card">
    <h3 class="plan-name">Broken Card</h3>
    <span class="rate">call for pricing</span>
  </div>
</body></html>`

func testSource() SourceConfig {
	return SourceConfig{
		Name:        "acme-listing",
		URL:         "https://example.com/plans",
		Provider:    "Acme Power",
		CardSel:     ".plan-card",
		NameSel:     ".plan-name",
		RateSel:     ".rate",
		ContractSel: ".term",
		GreenSel:    ".green",
		DescSel:     ".desc",
	}
}

func TestParseListing(t *testing.T) {
	plans, err := ParseListing(strings.NewReader(listingHTML), testSource())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("expected 2 parseable cards, got %d", len(plans))
	}

	first := plans[0]
	if first.Name != "Texas Saver 12" {
		t.Errorf("name = %q", first.Name)
	}
	if first.BaseRate != 10.5 {
		t.Errorf("rate = %v, want 10.5", first.BaseRate)
	}
	if first.ContractLength != 12 {
		t.Errorf("contract = %d, want 12", first.ContractLength)
	}
	if first.GreenEnergyPercentage != 6 {
		t.Errorf("green = %v, want 6", first.GreenEnergyPercentage)
	}
	if first.Description != "Lock in a low rate." {
		t.Errorf("description = %q", first.Description)
	}
	if first.ProviderSlug != "acme-power" {
		t.Errorf("provider slug = %q", first.ProviderSlug)
	}

	second := plans[1]
	if second.GreenEnergyPercentage != 100 {
		t.Errorf("green = %v, want 100", second.GreenEnergyPercentage)
	}
	if !second.HasPromotion {
		t.Errorf("promo keyword should flag the plan")
	}
}

func TestParseListingRejectsEmptyPage(t *testing.T) {
	if _, err := ParseListing(strings.NewReader("<html><body></body></html>"), testSource()); err == nil {
		t.Fatal("a page with no matching cards must error")
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"10.5¢ per kWh", 10.5, true},
		{"9 cents/kWh", 9, true},
		{"12.9c", 12.9, true},
		{"call for pricing", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseRate(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("parseRate(%q) = %v,%v want %v,%v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

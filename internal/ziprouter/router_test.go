package ziprouter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/choosepower/plan-finder/internal/models"
)

type fakeCounter struct {
	counts map[string]int
	calls  []string
}

func (f *fakeCounter) PlanCount(_ context.Context, slug string) (int, error) {
	f.calls = append(f.calls, slug)
	if n, ok := f.counts[slug]; ok {
		return n, nil
	}
	return 0, errors.New("no plan data")
}

func testRouter(counter PlanCounter) *Router {
	entries := []models.ZipMappingEntry{
		{Zip: "75701", CitySlug: "tyler-tx", TDSPName: "Oncor", TDSPDuns: "1039940674000", Deregulated: true},
		{Zip: "77001", CitySlug: "houston-tx", TDSPName: "CenterPoint Energy", TDSPDuns: "957877905", Deregulated: true},
		{Zip: "78617", CitySlug: "del-valle-tx", TDSPName: "Bluebonnet Electric", Deregulated: false,
			Cooperative: "Bluebonnet Electric Cooperative", CoopPhone: "800-842-7708"},
	}
	cities := []models.CityInfo{
		{Slug: "tyler-tx", Name: "Tyler", TDSPName: "Oncor"},
		{Slug: "houston-tx", Name: "Houston", TDSPName: "CenterPoint Energy"},
	}
	return NewRouter(entries, cities, counter)
}

func TestResolveDeregulatedZip(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int{"tyler-tx": 38}}
	r := testRouter(counter)

	res, zerr := r.Resolve(context.Background(), "75701")
	if zerr != nil {
		t.Fatalf("unexpected error: %+v", zerr)
	}
	if res.CitySlug != "tyler-tx" {
		t.Errorf("city = %q, want tyler-tx", res.CitySlug)
	}
	if res.TDSPName != "Oncor" {
		t.Errorf("tdsp = %q, want Oncor", res.TDSPName)
	}
	if res.RoutingURL != "/electricity-plans/tyler-tx/" {
		t.Errorf("routing url = %q", res.RoutingURL)
	}
	if res.PlanCount != 38 {
		t.Errorf("plan count = %d, want 38", res.PlanCount)
	}
	if res.CityName != "Tyler" {
		t.Errorf("city name = %q, want Tyler", res.CityName)
	}
}

func TestResolveRejections(t *testing.T) {
	counter := &fakeCounter{}
	r := testRouter(counter)

	tests := []struct {
		name     string
		zip      string
		wantCode string
		wantErr  error
	}{
		{"too short", "7570", models.ZipErrInvalidFormat, models.ErrInvalidZipFormat},
		{"letters", "75a01", models.ZipErrInvalidFormat, models.ErrInvalidZipFormat},
		{"all zeros", "00000", models.ZipErrInvalidFormat, models.ErrInvalidZipFormat},
		{"california", "90210", models.ZipErrNotTexas, models.ErrNotTexas},
		{"oklahoma", "73008", models.ZipErrNotTexas, models.ErrNotTexas},
		{"texas but unknown", "79999", models.ZipErrNotFound, models.ErrZipNotFound},
		{"cooperative area", "78617", models.ZipErrCooperative, models.ErrCooperative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, zerr := r.Resolve(context.Background(), tt.zip)
			if res != nil {
				t.Fatalf("expected rejection, got %+v", res)
			}
			if zerr == nil || zerr.Code != tt.wantCode {
				t.Fatalf("code = %+v, want %s", zerr, tt.wantCode)
			}
			if !errors.Is(zerr, tt.wantErr) {
				t.Errorf("rejection %s does not unwrap to its sentinel", zerr.Code)
			}
		})
	}

	// Format and state rejections must never touch the plan counter.
	if len(counter.calls) != 0 {
		t.Errorf("rejections should not look up plan counts, got calls %v", counter.calls)
	}
}

func TestResolveCooperativeCarriesContactInfo(t *testing.T) {
	r := testRouter(nil)

	_, zerr := r.Resolve(context.Background(), "78617")
	if zerr == nil || zerr.Code != models.ZipErrCooperative {
		t.Fatalf("expected cooperative rejection, got %+v", zerr)
	}
	if zerr.Cooperative == "" || zerr.CoopPhone == "" {
		t.Errorf("cooperative rejection must carry contact info, got %+v", zerr)
	}
}

func TestResolveFallsBackToEstimateOnMissingPlanData(t *testing.T) {
	counter := &fakeCounter{} // knows no cities
	r := testRouter(counter)

	res, zerr := r.Resolve(context.Background(), "77001")
	if zerr != nil {
		t.Fatalf("unexpected error: %+v", zerr)
	}
	if res.PlanCount != fallbackPlanCount {
		t.Errorf("plan count = %d, want fallback %d", res.PlanCount, fallbackPlanCount)
	}
	if res.Confidence >= confidenceDirectHit {
		t.Errorf("estimated count should lower confidence, got %v", res.Confidence)
	}
}

func TestResolveElPasoRange(t *testing.T) {
	entries := []models.ZipMappingEntry{
		{Zip: "88501", CitySlug: "el-paso-tx", TDSPName: "El Paso Electric", Deregulated: true},
	}
	r := NewRouter(entries, nil, nil)

	res, zerr := r.Resolve(context.Background(), "88501")
	if zerr != nil {
		t.Fatalf("885xx should pass the Texas check, got %+v", zerr)
	}
	if res.CitySlug != "el-paso-tx" {
		t.Errorf("city = %q", res.CitySlug)
	}
}

func TestLoadZipTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zips.yaml")
	content := `zips:
  - zip: "75701"
    city: tyler-tx
    tdsp: Oncor
    tdsp_duns: "1039940674000"
    deregulated: true
  - zip: "78617"
    city: del-valle-tx
    tdsp: Bluebonnet Electric
    deregulated: false
    cooperative: Bluebonnet Electric Cooperative
    coop_phone: 800-842-7708
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := LoadZipTable(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Zip != "75701" || !entries[0].Deregulated {
		t.Errorf("first entry mismatch: %+v", entries[0])
	}
	if entries[1].Cooperative == "" {
		t.Errorf("cooperative metadata not parsed: %+v", entries[1])
	}

	if _, err := LoadZipTable(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Errorf("missing file must error")
	}
}

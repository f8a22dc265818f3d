package plandata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/choosepower/plan-finder/internal/models"
)

// FileSource serves plan arrays from per-city JSON files named by the
// normalized city slug (data/plans/tyler.json for tyler-tx). Files are
// parsed once and held read-only.
type FileSource struct {
	dir string

	mu     sync.RWMutex
	loaded map[string][]models.PlanRecord
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{
		dir:    dir,
		loaded: make(map[string][]models.PlanRecord),
	}
}

func (s *FileSource) PlansForCity(ctx context.Context, citySlug string) ([]models.PlanRecord, error) {
	key := NormalizeSlug(citySlug)
	if key == "" {
		return nil, fmt.Errorf("empty city slug")
	}

	s.mu.RLock()
	plans, ok := s.loaded[key]
	s.mu.RUnlock()
	if ok {
		return plans, nil
	}

	path := filepath.Join(s.dir, key+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("no plan data for city %q: %w", citySlug, err)
	}

	var records []models.PlanRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parsing plan data %s: %w", path, err)
	}

	for i := range records {
		records[i] = normalizeRecord(records[i])
	}

	s.mu.Lock()
	s.loaded[key] = records
	s.mu.Unlock()

	return records, nil
}

func (s *FileSource) Cities(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing plan data dir: %w", err)
	}

	var cities []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		cities = append(cities, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(cities)
	return cities, nil
}

// Invalidate drops the cached records for a city, forcing a re-read on
// the next request. Used after an ingest refresh.
func (s *FileSource) Invalidate(citySlug string) {
	key := NormalizeSlug(citySlug)
	s.mu.Lock()
	delete(s.loaded, key)
	s.mu.Unlock()
}

package ziprouter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/choosepower/plan-finder/internal/models"
)

type zipTableFile struct {
	Zips []models.ZipMappingEntry `yaml:"zips"`
}

type cityTableFile struct {
	Cities []models.CityInfo `yaml:"cities"`
}

// LoadZipTable reads the static ZIP-to-city mapping from a YAML file.
func LoadZipTable(path string) ([]models.ZipMappingEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading zip table: %w", err)
	}

	var file zipTableFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing zip table %s: %w", path, err)
	}
	return file.Zips, nil
}

// LoadCityTable reads the static city/TDSP metadata from a YAML file.
func LoadCityTable(path string) ([]models.CityInfo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading city table: %w", err)
	}

	var file cityTableFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing city table %s: %w", path, err)
	}
	return file.Cities, nil
}

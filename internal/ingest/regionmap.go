package ingest

import (
	"os"

	"github.com/goccy/go-yaml"
)

// defaultRegionMap maps the cleaned region names used in the visitation
// exports to region codes. An override file can extend or replace entries
// when an export uses different spellings.
var defaultRegionMap = map[string]string{
	"Alaska":           "AKR",
	"Intermountain":    "IMR",
	"Midwest":          "MWR",
	"National Capital": "NCR",
	"Northeast":        "NER",
	"Pacific West":     "PWR",
	"Southeast":        "SER",
}

// LoadRegionMap returns the region-name → region-code map, merging a YAML
// override file (flat string map) over the defaults when path is non-empty.
func LoadRegionMap(path string) (map[string]string, error) {
	m := make(map[string]string, len(defaultRegionMap))
	for k, v := range defaultRegionMap {
		m[k] = v
	}
	if path == "" {
		return m, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var override map[string]string
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return nil, err
	}
	for k, v := range override {
		m[cleanRegionName(k)] = v
	}
	return m, nil
}

// Package alias broadens place names typed by users into the set of spellings
// and codes that appear in the rate sheets, and maps origin countries to the
// coarse regions used by the courier tariff.
package alias

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"freightquote/internal/textnorm"
)

// Region is one of the four courier pricing regions.
type Region string

const (
	RegionSouthAmerica Region = "america sur"
	RegionUSACanada    Region = "usa canada"
	RegionEurope       Region = "europa"
	RegionAsia         Region = "asia"
)

// Regions lists the courier regions in sheet column order.
var Regions = []Region{RegionSouthAmerica, RegionUSACanada, RegionEurope, RegionAsia}

//go:embed data/aliases.yaml
var defaultData []byte

type fileFormat struct {
	Places  [][]string          `yaml:"places"`
	Regions map[string][]string `yaml:"regions"`
}

// Resolver holds the normalized alias and region tables.
type Resolver struct {
	places  [][]string
	regions map[string]Region
}

// Default returns a Resolver built from the embedded tables.
func Default() *Resolver {
	r, err := Parse(defaultData)
	if err != nil {
		panic(fmt.Sprintf("alias: embedded data: %v", err))
	}
	return r
}

// Load reads alias tables from a YAML file. An empty path yields Default().
func Load(path string) (*Resolver, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read aliases: %w", err)
	}
	return Parse(b)
}

// Parse builds a Resolver from YAML bytes.
func Parse(b []byte) (*Resolver, error) {
	var f fileFormat
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse aliases: %w", err)
	}
	r := &Resolver{regions: make(map[string]Region)}
	for _, entry := range f.Places {
		var parts []string
		for _, p := range entry {
			if n := textnorm.Normalize(p); n != "" {
				parts = append(parts, n)
			}
		}
		if len(parts) > 0 {
			r.places = append(r.places, parts)
		}
	}
	for region, countries := range f.Regions {
		reg := Region(textnorm.Normalize(region))
		for _, c := range countries {
			r.regions[textnorm.Normalize(c)] = reg
		}
	}
	return r, nil
}

// Expand returns the normalized place plus every variant of each alias entry
// that matches it. A part matches when it contains the query or the query
// contains it. The result has no duplicates and keeps the query first.
func (r *Resolver) Expand(place string) []string {
	q := textnorm.Normalize(place)
	if q == "" {
		return nil
	}
	out := []string{q}
	seen := map[string]bool{q: true}
	for _, entry := range r.places {
		if !entryMatches(entry, q) {
			continue
		}
		for _, p := range entry {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

func entryMatches(entry []string, q string) bool {
	for _, p := range entry {
		if strings.Contains(p, q) || strings.Contains(q, p) {
			return true
		}
	}
	return false
}

// RegionOf maps a country name to its courier region. Unknown countries are
// priced as europa.
func (r *Resolver) RegionOf(country string) Region {
	if reg, ok := r.regions[textnorm.Normalize(country)]; ok {
		return reg
	}
	return RegionEurope
}

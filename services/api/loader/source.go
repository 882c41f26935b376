package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

// Source pairs a location with the country its rows are stamped with.
type Source struct {
	Country  solar.Country `yaml:"country" json:"country"`
	Location string        `yaml:"location" json:"location"`
}

// Default remote locations of the cleaned per-country datasets.
const (
	DefaultBeninURL       = "https://drive.google.com/uc?export=download&id=14P7X9d7TPNMsnUliGy3CmWtW5yb-FYEq"
	DefaultSierraLeoneURL = "https://drive.google.com/uc?export=download&id=1j65ix7VopeFT1uxtD6-YA3icHzofUd-D"
	DefaultTogoURL        = "https://drive.google.com/uc?export=download&id=1V1rqrXynBK0p7HKO4L_aLxab_9fbLQZg"
)

// DefaultSources returns the three remote datasets in load order.
func DefaultSources() []Source {
	return []Source{
		{Country: solar.Benin, Location: DefaultBeninURL},
		{Country: solar.SierraLeone, Location: DefaultSierraLeoneURL},
		{Country: solar.Togo, Location: DefaultTogoURL},
	}
}

type manifest struct {
	Sources []manifestEntry `yaml:"sources"`
}

type manifestEntry struct {
	Country  string `yaml:"country"`
	Location string `yaml:"location"`
}

// ReadManifest loads a YAML list of sources:
//
//	sources:
//	  - country: Benin
//	    location: data/benin_clean.csv
func ReadManifest(path string) ([]Source, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return parseSources(m.Sources)
}

// WriteManifest saves sources in the format ReadManifest understands.
func WriteManifest(path string, sources []Source) error {
	m := manifest{Sources: make([]manifestEntry, 0, len(sources))}
	for _, s := range sources {
		m.Sources = append(m.Sources, manifestEntry{Country: string(s.Country), Location: s.Location})
	}
	b, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// parseSources validates raw country/location pairs.
func parseSources(entries []manifestEntry) ([]Source, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no sources configured", solar.ErrSchema)
	}
	out := make([]Source, 0, len(entries))
	for i, e := range entries {
		c, err := solar.ParseCountry(e.Country)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		if e.Location == "" {
			return nil, fmt.Errorf("%w: source %d (%s) has no location", solar.ErrSchema, i, c)
		}
		out = append(out, Source{Country: c, Location: e.Location})
	}
	return out, nil
}

// Package render turns the loaded table and a set of filter controls into
// everything the dashboard shows: tables, key observations and charts.
package render

import (
	"fmt"
	"math"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

// Range slider bounds and defaults offered to clients. Only the defaults are
// applied; the bounds are advisory and never clamp a request.
const (
	SliderMin  = 50.0
	SliderMax  = 300.0
	DefaultMin = 75.0
	DefaultMax = 250.0
)

// State is the set of filter controls.
type State struct {
	Countries []solar.Country `json:"countries"`
	Metric    solar.Metric    `json:"metric"`
	Min       float64         `json:"min"`
	Max       float64         `json:"max"`
}

// DefaultState selects every country, GHI and the default range.
func DefaultState() State {
	return State{
		Countries: solar.Countries(),
		Metric:    solar.GHI,
		Min:       DefaultMin,
		Max:       DefaultMax,
	}
}

// Validate returns a normalized copy of s: countries are resolved to their
// canonical names and deduplicated in order. An empty country list is valid
// and selects nothing. Non-finite bounds and unknown names fail with
// solar.ErrSchema.
func (s State) Validate() (State, error) {
	if !s.Metric.Valid() {
		return State{}, fmt.Errorf("%w: unknown metric %d", solar.ErrSchema, int(s.Metric))
	}
	if !finite(s.Min) || !finite(s.Max) {
		return State{}, fmt.Errorf("%w: range bounds must be finite numbers", solar.ErrSchema)
	}

	out := State{Metric: s.Metric, Min: s.Min, Max: s.Max, Countries: make([]solar.Country, 0, len(s.Countries))}
	seen := make(map[solar.Country]bool, len(s.Countries))
	for _, c := range s.Countries {
		canonical, err := solar.ParseCountry(string(c))
		if err != nil {
			return State{}, err
		}
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		out.Countries = append(out.Countries, canonical)
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

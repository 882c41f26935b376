// Package solar holds the domain types shared by the loader, the analysis
// pipeline and the presentation layer.
package solar

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// ErrDataAccess marks a source that could not be fetched or decoded.
	ErrDataAccess = errors.New("data access error")
	// ErrSchema marks a missing column or an unknown metric/country name.
	ErrSchema = errors.New("schema error")
	// ErrEmptySummary is returned when ranking is asked for on zero rows.
	ErrEmptySummary = errors.New("empty summary")
	// ErrUndefined is returned when a statistic is NaN for every row.
	ErrUndefined = errors.New("statistic undefined for every country")
	// ErrInsufficientData is returned by tests that need more groups or variance.
	ErrInsufficientData = errors.New("insufficient data")
)

// Country is one of the fixed set of countries the dashboard covers.
type Country string

const (
	Benin       Country = "Benin"
	SierraLeone Country = "Sierra Leone"
	Togo        Country = "Togo"
)

var countries = []Country{Benin, SierraLeone, Togo}

// Countries returns the enumerated countries in display order.
func Countries() []Country {
	out := make([]Country, len(countries))
	copy(out, countries)
	return out
}

// ParseCountry maps a label to a Country. Matching ignores case, spaces,
// dashes and underscores so "sierra_leone" and "SierraLeone" both resolve.
func ParseCountry(s string) (Country, error) {
	key := countryKey(s)
	for _, c := range countries {
		if countryKey(string(c)) == key {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown country %q", ErrSchema, s)
}

// Slug is a filesystem-friendly form of the country name.
func (c Country) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(c)), " ", "_")
}

func countryKey(s string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

// Metric is a closed enum of the irradiance columns the dashboard reads.
type Metric int

const (
	GHI Metric = iota
	DNI
	DHI
)

var metricNames = [...]string{GHI: "GHI", DNI: "DNI", DHI: "DHI"}

// Metrics returns all supported metrics.
func Metrics() []Metric {
	return []Metric{GHI, DNI, DHI}
}

func (m Metric) String() string {
	if m < 0 || int(m) >= len(metricNames) {
		return fmt.Sprintf("Metric(%d)", int(m))
	}
	return metricNames[m]
}

// Valid reports whether m is one of the enumerated metrics.
func (m Metric) Valid() bool {
	return m >= 0 && int(m) < len(metricNames)
}

// Unit is the measurement unit for every supported metric.
func (m Metric) Unit() string { return "W/m²" }

// Value reads the metric from an observation.
func (m Metric) Value(o Observation) float64 {
	switch m {
	case GHI:
		return o.GHI
	case DNI:
		return o.DNI
	case DHI:
		return o.DHI
	}
	return math.NaN()
}

// ParseMetric resolves a column name. Unknown names fail with ErrSchema so
// they are rejected at the boundary instead of deep in the pipeline.
func ParseMetric(s string) (Metric, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range metricNames {
		if n == name {
			return Metric(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown metric %q", ErrSchema, s)
}

func (m Metric) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Metric) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseMetric(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Observation is one timestamped measurement row. Missing values are NaN.
type Observation struct {
	Country   Country
	Timestamp time.Time
	GHI       float64
	DNI       float64
	DHI       float64
}

func (o Observation) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"Country": o.Country,
		"GHI":     JSONFloat(o.GHI),
		"DNI":     JSONFloat(o.DNI),
		"DHI":     JSONFloat(o.DHI),
	}
	if !o.Timestamp.IsZero() {
		out["Timestamp"] = o.Timestamp.Format(time.RFC3339)
	}
	return json.Marshal(out)
}

// JSONFloat converts NaN and infinities to nil, which encodes as null.
func JSONFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

package analysis

import (
	"encoding/json"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

// BoxStats describes one box of a boxplot. Whiskers reach the most extreme
// values within 1.5 IQR of the quartiles; anything beyond is an outlier.
type BoxStats struct {
	Country      solar.Country
	N            int
	Min          float64
	Q1           float64
	Median       float64
	Q3           float64
	Max          float64
	LowerWhisker float64
	UpperWhisker float64
	Outliers     int
}

func (b BoxStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"Country":      b.Country,
		"N":            b.N,
		"Min":          solar.JSONFloat(b.Min),
		"Q1":           solar.JSONFloat(b.Q1),
		"Median":       solar.JSONFloat(b.Median),
		"Q3":           solar.JSONFloat(b.Q3),
		"Max":          solar.JSONFloat(b.Max),
		"LowerWhisker": solar.JSONFloat(b.LowerWhisker),
		"UpperWhisker": solar.JSONFloat(b.UpperWhisker),
		"Outliers":     b.Outliers,
	})
}

// Boxes computes box statistics per country in first-appearance order.
// Countries with no values are skipped.
func Boxes(t *solar.Table, metric solar.Metric) []BoxStats {
	groups := groupByCountry(t, metric)
	out := make([]BoxStats, 0, len(groups))
	for _, g := range groups {
		if len(g.values) == 0 {
			continue
		}
		s := sorted(g.values)
		b := BoxStats{
			Country: g.country,
			N:       len(s),
			Min:     s[0],
			Q1:      quantile(s, 0.25),
			Median:  quantile(s, 0.5),
			Q3:      quantile(s, 0.75),
			Max:     s[len(s)-1],
		}
		iqr := b.Q3 - b.Q1
		lo, hi := b.Q1-1.5*iqr, b.Q3+1.5*iqr
		b.LowerWhisker, b.UpperWhisker = b.Max, b.Min
		for _, v := range s {
			if v < lo || v > hi {
				b.Outliers++
				continue
			}
			if v < b.LowerWhisker {
				b.LowerWhisker = v
			}
			if v > b.UpperWhisker {
				b.UpperWhisker = v
			}
		}
		out = append(out, b)
	}
	return out
}

// CountryValues are the non-NaN values of one metric for one country.
type CountryValues struct {
	Country solar.Country
	Values  []float64
}

// Values groups metric values by country in first-appearance order,
// skipping countries with no values.
func Values(t *solar.Table, metric solar.Metric) []CountryValues {
	groups := groupByCountry(t, metric)
	out := make([]CountryValues, 0, len(groups))
	for _, g := range groups {
		if len(g.values) == 0 {
			continue
		}
		out = append(out, CountryValues{Country: g.country, Values: g.values})
	}
	return out
}

package analysis

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

// KPI is the mean of one metric for one country.
type KPI struct {
	Country solar.Country `json:"Country"`
	Mean    float64       `json:"Mean"`
}

func (k KPI) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"Country": k.Country,
		"Mean":    solar.JSONFloat(k.Mean),
	})
}

// Stats are the descriptive statistics of one metric for one country.
type Stats struct {
	Count  int
	Mean   float64
	Median float64
	Std    float64
}

// SummaryRow carries Stats per requested metric for one country.
type SummaryRow struct {
	Country solar.Country
	Metrics []solar.Metric
	Stats   map[solar.Metric]Stats
}

// MarshalJSON flattens the row to Country, <M>_Mean, <M>_Median, <M>_Std.
func (r SummaryRow) MarshalJSON() ([]byte, error) {
	out := map[string]any{"Country": r.Country}
	for _, m := range r.Metrics {
		s := r.Stats[m]
		out[m.String()+"_Mean"] = solar.JSONFloat(s.Mean)
		out[m.String()+"_Median"] = solar.JSONFloat(s.Median)
		out[m.String()+"_Std"] = solar.JSONFloat(s.Std)
	}
	return json.Marshal(out)
}

// group is one country's non-NaN values for a metric.
type group struct {
	country solar.Country
	values  []float64
}

// groupByCountry buckets metric values by country in first-appearance
// order. A country whose values are all NaN still gets a (empty) group.
func groupByCountry(t *solar.Table, metric solar.Metric) []group {
	index := make(map[solar.Country]int)
	groups := make([]group, 0, 3)
	for i := 0; i < t.Len(); i++ {
		o := t.At(i)
		idx, ok := index[o.Country]
		if !ok {
			idx = len(groups)
			index[o.Country] = idx
			groups = append(groups, group{country: o.Country})
		}
		if v := metric.Value(o); !math.IsNaN(v) {
			groups[idx].values = append(groups[idx].values, v)
		}
	}
	return groups
}

// CalculateKPIs returns the per-country mean of metric, ascending. Ties keep
// first-appearance order and a NaN mean sorts last. Countries absent from
// the table produce no row.
func CalculateKPIs(t *solar.Table, metric solar.Metric) []KPI {
	groups := groupByCountry(t, metric)
	out := make([]KPI, 0, len(groups))
	for _, g := range groups {
		out = append(out, KPI{Country: g.country, Mean: mean(g.values)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lessNaNLast(out[i].Mean, out[j].Mean)
	})
	return out
}

// BarMeans returns the same means ordered for the bar chart: descending,
// ties in first-appearance order, NaN last.
func BarMeans(t *solar.Table, metric solar.Metric) []KPI {
	groups := groupByCountry(t, metric)
	out := make([]KPI, 0, len(groups))
	for _, g := range groups {
		out = append(out, KPI{Country: g.country, Mean: mean(g.values)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lessNaNLast(-out[i].Mean, -out[j].Mean)
	})
	return out
}

// Summarize computes mean, median and sample standard deviation for every
// requested metric, one row per country in first-appearance order. Std is
// NaN for a country with fewer than two values.
func Summarize(t *solar.Table, metrics []solar.Metric) []SummaryRow {
	countries := t.Countries()
	rows := make([]SummaryRow, len(countries))
	pos := make(map[solar.Country]int, len(countries))
	for i, c := range countries {
		pos[c] = i
		rows[i] = SummaryRow{
			Country: c,
			Metrics: append([]solar.Metric(nil), metrics...),
			Stats:   make(map[solar.Metric]Stats, len(metrics)),
		}
	}
	for _, m := range metrics {
		for _, g := range groupByCountry(t, m) {
			rows[pos[g.country]].Stats[m] = describe(g.values)
		}
	}
	return rows
}

func describe(values []float64) Stats {
	return Stats{
		Count:  len(values),
		Mean:   mean(values),
		Median: median(values),
		Std:    sampleStd(values),
	}
}

func lessNaNLast(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a < b
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return quantile(sorted(values), 0.5)
}

// sampleStd uses Welford's update and the n-1 denominator.
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	var m, m2 float64
	for i, x := range values {
		delta := x - m
		m += delta / float64(i+1)
		m2 += delta * (x - m)
	}
	return math.Sqrt(m2 / float64(len(values)-1))
}

func sorted(values []float64) []float64 {
	cp := make([]float64, len(values))
	copy(cp, values)
	sort.Float64s(cp)
	return cp
}

// quantile interpolates linearly between the closest ranks of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

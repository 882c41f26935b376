// Package analysis implements the filter and aggregation pipeline behind the
// dashboard: row selection, per-country KPIs and summaries, the ranked
// key observations and the Kruskal-Wallis comparison.
package analysis

import (
	"fmt"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

// Filter returns the rows whose country is in countries and whose metric
// value lies in [min, max], both ends inclusive. An empty country set or an
// interval that matches nothing yields an empty table. NaN values never
// match. The input table is not modified. A metric outside the known set
// fails with solar.ErrSchema.
func Filter(t *solar.Table, countries []solar.Country, metric solar.Metric, min, max float64) (*solar.Table, error) {
	if !metric.Valid() {
		return nil, fmt.Errorf("%w: unknown metric %d", solar.ErrSchema, int(metric))
	}
	if len(countries) == 0 {
		return solar.NewTable(nil), nil
	}
	allowed := make(map[solar.Country]bool, len(countries))
	for _, c := range countries {
		allowed[c] = true
	}
	return t.Select(func(o solar.Observation) bool {
		if !allowed[o.Country] {
			return false
		}
		v := metric.Value(o)
		return v >= min && v <= max
	}), nil
}

package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

// Highlights are the three superlatives behind the key observations.
type Highlights struct {
	Metric       solar.Metric  `json:"metric"`
	HighestMean  solar.Country `json:"highest_mean"`
	LowestMedian solar.Country `json:"lowest_median"`
	HighestStd   solar.Country `json:"highest_std"`
}

// Rank picks the country with the highest mean, the lowest median and the
// highest standard deviation of metric. Comparison is strict over the row
// order, so ties go to the first row; NaN entries are skipped. Callers must
// not pass an empty summary: that fails with solar.ErrEmptySummary.
func Rank(rows []SummaryRow, metric solar.Metric) (Highlights, error) {
	if len(rows) == 0 {
		return Highlights{}, fmt.Errorf("%w: no countries to rank for %s", solar.ErrEmptySummary, metric)
	}
	h := Highlights{Metric: metric}
	var err error
	if h.HighestMean, err = pick(rows, metric, "mean", func(s Stats) float64 { return s.Mean }, true); err != nil {
		return Highlights{}, err
	}
	if h.LowestMedian, err = pick(rows, metric, "median", func(s Stats) float64 { return s.Median }, false); err != nil {
		return Highlights{}, err
	}
	if h.HighestStd, err = pick(rows, metric, "std", func(s Stats) float64 { return s.Std }, true); err != nil {
		return Highlights{}, err
	}
	return h, nil
}

func pick(rows []SummaryRow, metric solar.Metric, name string, field func(Stats) float64, highest bool) (solar.Country, error) {
	var (
		best  solar.Country
		value float64
		found bool
	)
	for _, r := range rows {
		s, ok := r.Stats[metric]
		if !ok {
			continue
		}
		v := field(s)
		if math.IsNaN(v) {
			continue
		}
		if !found || (highest && v > value) || (!highest && v < value) {
			best, value, found = r.Country, v, true
		}
	}
	if !found {
		return "", fmt.Errorf("%w: %s %s", solar.ErrUndefined, metric, name)
	}
	return best, nil
}

// Sentences renders the fixed three-sentence template. No numbers appear.
func (h Highlights) Sentences() []string {
	m := h.Metric.String()
	return []string{
		fmt.Sprintf("%s has the highest average %s, indicating strong solar potential.", h.HighestMean, m),
		fmt.Sprintf("%s shows the lowest median %s values, suggesting inconsistencies or lower availability.", h.LowestMedian, m),
		fmt.Sprintf("%s has the highest variability in %s, indicating unstable solar conditions.", h.HighestStd, m),
	}
}

// Narrate ranks rows and renders the key observations as one text block.
func Narrate(rows []SummaryRow, metric solar.Metric) (string, error) {
	h, err := Rank(rows, metric)
	if err != nil {
		return "", err
	}
	return strings.Join(h.Sentences(), "\n\n"), nil
}

package analysis

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

// KruskalResult is the outcome of a Kruskal-Wallis H-test across countries.
type KruskalResult struct {
	Metric solar.Metric    `json:"metric"`
	H      float64         `json:"h"`
	DF     int             `json:"df"`
	PValue float64         `json:"p_value"`
	Groups []solar.Country `json:"groups"`
	N      int             `json:"n"`
}

// KruskalWallis compares the distribution of metric across countries. NaN
// values are dropped and countries without values are ignored. At least two
// groups and some variation in the pooled values are required.
func KruskalWallis(t *solar.Table, metric solar.Metric) (KruskalResult, error) {
	groups := make([]group, 0, 3)
	for _, g := range groupByCountry(t, metric) {
		if len(g.values) > 0 {
			groups = append(groups, g)
		}
	}
	if len(groups) < 2 {
		return KruskalResult{}, fmt.Errorf("%w: kruskal-wallis needs at least two groups, got %d", solar.ErrInsufficientData, len(groups))
	}

	type obs struct {
		value float64
		group int
	}
	var pooled []obs
	for gi, g := range groups {
		for _, v := range g.values {
			pooled = append(pooled, obs{value: v, group: gi})
		}
	}
	sort.Slice(pooled, func(i, j int) bool { return pooled[i].value < pooled[j].value })

	n := len(pooled)
	rankSums := make([]float64, len(groups))
	var tieTerm float64
	for i := 0; i < n; {
		j := i
		for j+1 < n && pooled[j+1].value == pooled[i].value {
			j++
		}
		// ranks are 1-based; tied values share the average rank
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			rankSums[pooled[k].group] += avg
		}
		if ties := float64(j - i + 1); ties > 1 {
			tieTerm += ties*ties*ties - ties
		}
		i = j + 1
	}

	nf := float64(n)
	correction := 1 - tieTerm/(nf*nf*nf-nf)
	if correction <= 0 {
		return KruskalResult{}, fmt.Errorf("%w: all %s values are identical", solar.ErrInsufficientData, metric)
	}

	var sum float64
	for gi, g := range groups {
		sum += rankSums[gi] * rankSums[gi] / float64(len(g.values))
	}
	h := (12/(nf*(nf+1))*sum - 3*(nf+1)) / correction

	df := len(groups) - 1
	res := KruskalResult{
		Metric: metric,
		H:      h,
		DF:     df,
		PValue: distuv.ChiSquared{K: float64(df)}.Survival(h),
		N:      n,
	}
	for _, g := range groups {
		res.Groups = append(res.Groups, g.country)
	}
	return res, nil
}

package render

import (
	"errors"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/analysis"
	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

// View is one rendered dashboard.
type View struct {
	State        State                 `json:"state"`
	Rows         int                   `json:"rows"`
	KPIs         []analysis.KPI        `json:"kpis"`
	Bars         []analysis.KPI        `json:"bars"`
	Summary      []analysis.SummaryRow `json:"summary"`
	Boxes        []analysis.BoxStats   `json:"boxes"`
	Highlights   *analysis.Highlights  `json:"highlights,omitempty"`
	Observations []string              `json:"observations,omitempty"`
}

// Render filters t by s and computes every dashboard section. Highlights
// and observations are left out when nothing matches the filters, or when
// a statistic is undefined for every country (one row each, say).
func Render(t *solar.Table, s State) (View, error) {
	s, err := s.Validate()
	if err != nil {
		return View{}, err
	}

	subset, err := analysis.Filter(t, s.Countries, s.Metric, s.Min, s.Max)
	if err != nil {
		return View{}, err
	}
	v := View{
		State:   s,
		Rows:    subset.Len(),
		KPIs:    analysis.CalculateKPIs(subset, s.Metric),
		Bars:    analysis.BarMeans(subset, s.Metric),
		Summary: analysis.Summarize(subset, []solar.Metric{s.Metric}),
		Boxes:   analysis.Boxes(subset, s.Metric),
	}
	if subset.Len() == 0 {
		return v, nil
	}

	h, err := analysis.Rank(v.Summary, s.Metric)
	switch {
	case errors.Is(err, solar.ErrUndefined):
		return v, nil
	case err != nil:
		return View{}, err
	}
	v.Highlights = &h
	v.Observations = h.Sentences()
	return v, nil
}

// Subset is the filtered table behind a state, for callers that need rows
// rather than a full view.
func Subset(t *solar.Table, s State) (*solar.Table, State, error) {
	s, err := s.Validate()
	if err != nil {
		return nil, State{}, err
	}
	subset, err := analysis.Filter(t, s.Countries, s.Metric, s.Min, s.Max)
	if err != nil {
		return nil, State{}, err
	}
	return subset, s, nil
}

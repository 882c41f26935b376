package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/render"
	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

// maxLimit caps how many rows one observations request may return.
const maxLimit = 5000

// parseState reads countries, metric, min and max. countries may repeat or
// hold a comma separated list; leaving it out selects every country while
// an empty value selects none.
func parseState(c *gin.Context) (render.State, error) {
	s := render.DefaultState()

	if raw, ok := c.GetQueryArray("countries"); ok {
		s.Countries = []solar.Country{}
		for _, name := range splitList(raw) {
			country, err := solar.ParseCountry(name)
			if err != nil {
				return render.State{}, err
			}
			s.Countries = append(s.Countries, country)
		}
	}

	if v := c.Query("metric"); v != "" {
		m, err := solar.ParseMetric(v)
		if err != nil {
			return render.State{}, err
		}
		s.Metric = m
	}

	var err error
	if s.Min, err = floatParam(c, "min", s.Min); err != nil {
		return render.State{}, err
	}
	if s.Max, err = floatParam(c, "max", s.Max); err != nil {
		return render.State{}, err
	}
	return s.Validate()
}

// parseMetrics reads a metrics list, defaulting to fallback.
func parseMetrics(c *gin.Context, fallback solar.Metric) ([]solar.Metric, error) {
	raw, ok := c.GetQueryArray("metrics")
	names := splitList(raw)
	if !ok || len(names) == 0 {
		return []solar.Metric{fallback}, nil
	}
	out := make([]solar.Metric, 0, len(names))
	seen := make(map[solar.Metric]bool, len(names))
	for _, name := range names {
		m, err := solar.ParseMetric(name)
		if err != nil {
			return nil, err
		}
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out, nil
}

func parseLimit(c *gin.Context, fallback int) (int, error) {
	v := c.Query("limit")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: invalid limit %q", solar.ErrSchema, v)
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n, nil
}

func floatParam(c *gin.Context, name string, fallback float64) (float64, error) {
	v := c.Query(name)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", solar.ErrSchema, name, v)
	}
	return f, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

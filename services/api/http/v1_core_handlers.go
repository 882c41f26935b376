package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/analysis"
	"github.com/02loveslollipop/solar-potential-dashboard/services/api/render"
	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

// handleV1Countries returns the enumerated countries
// GET /api/v1/core/countries
func (s *Server) handleV1Countries(c *gin.Context) {
	countries := solar.Countries()
	c.JSON(http.StatusOK, gin.H{
		"data": countries,
		"meta": gin.H{
			"count": len(countries),
		},
	})
}

// handleV1Metrics returns the enumerated metrics and the range control
// defaults
// GET /api/v1/core/metrics
func (s *Server) handleV1Metrics(c *gin.Context) {
	metrics := solar.Metrics()
	data := make([]gin.H, 0, len(metrics))
	for _, m := range metrics {
		data = append(data, gin.H{"name": m, "unit": m.Unit()})
	}
	c.JSON(http.StatusOK, gin.H{
		"data": data,
		"meta": gin.H{
			"default": solar.GHI,
			"range":   gin.H{"min": render.DefaultMin, "max": render.DefaultMax},
			"bounds":  gin.H{"min": render.SliderMin, "max": render.SliderMax},
		},
	})
}

// handleV1Observations returns the filtered rows, in load order
// GET /api/v1/core/observations?countries=Benin,Togo&metric=GHI&min=75&max=250&limit=100
func (s *Server) handleV1Observations(c *gin.Context) {
	state, err := parseState(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	limit, err := parseLimit(c, s.cfg.DefaultLimit)
	if err != nil {
		s.fail(c, err)
		return
	}

	table, err := s.table(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	subset, err := analysis.Filter(table, state.Countries, state.Metric, state.Min, state.Max)
	if err != nil {
		s.fail(c, err)
		return
	}
	rows := subset.Rows()
	if len(rows) > limit {
		rows = rows[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"data": rows,
		"meta": gin.H{
			"count": len(rows),
			"total": subset.Len(),
			"limit": limit,
			"state": state,
		},
	})
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/analysis"
	"github.com/02loveslollipop/solar-potential-dashboard/services/api/render"
)

// handleV1Boxplot draws the metric distribution per selected country
// GET /api/v1/charts/boxplot.png?metric=GHI
func (s *Server) handleV1Boxplot(c *gin.Context) {
	subset, state, ok := s.subset(c)
	if !ok {
		return
	}
	img, err := render.BoxplotPNG(subset, state.Metric)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

// handleV1Bars draws the per-country means, highest first
// GET /api/v1/charts/bars.png?metric=GHI
func (s *Server) handleV1Bars(c *gin.Context) {
	subset, state, ok := s.subset(c)
	if !ok {
		return
	}
	img, err := render.BarChartPNG(analysis.BarMeans(subset, state.Metric), state.Metric)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

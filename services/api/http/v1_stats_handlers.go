package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/analysis"
)

// handleV1Kruskal compares the selected countries' distributions of one
// metric with the Kruskal-Wallis H test
// GET /api/v1/stats/kruskal?metric=GHI&min=0&max=2000
func (s *Server) handleV1Kruskal(c *gin.Context) {
	subset, state, ok := s.subset(c)
	if !ok {
		return
	}
	result, err := analysis.KruskalWallis(subset, state.Metric)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": result,
		"meta": gin.H{
			"state": state,
		},
	})
}

package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// handleV1Reload drops the cached dataset and loads it again
// POST /api/v1/admin/reload
func (s *Server) handleV1Reload(c *gin.Context) {
	s.cache.Invalidate()
	table, err := s.table(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"rows":      table.Len(),
			"countries": table.Countries(),
		},
		"meta": gin.H{
			"loaded_at": s.cache.LoadedAt().Format(time.RFC3339),
		},
	})
}

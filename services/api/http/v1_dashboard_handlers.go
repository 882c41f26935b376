package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/analysis"
	"github.com/02loveslollipop/solar-potential-dashboard/services/api/render"
	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

// view parses the filter controls and renders the dashboard.
func (s *Server) view(c *gin.Context) (render.View, bool) {
	state, err := parseState(c)
	if err != nil {
		s.fail(c, err)
		return render.View{}, false
	}
	table, err := s.table(c)
	if err != nil {
		s.fail(c, err)
		return render.View{}, false
	}
	v, err := render.Render(table, state)
	if err != nil {
		s.fail(c, err)
		return render.View{}, false
	}
	return v, true
}

// subset parses the filter controls and returns the matching rows.
func (s *Server) subset(c *gin.Context) (*solar.Table, render.State, bool) {
	state, err := parseState(c)
	if err != nil {
		s.fail(c, err)
		return nil, render.State{}, false
	}
	table, err := s.table(c)
	if err != nil {
		s.fail(c, err)
		return nil, render.State{}, false
	}
	subset, err := analysis.Filter(table, state.Countries, state.Metric, state.Min, state.Max)
	if err != nil {
		s.fail(c, err)
		return nil, render.State{}, false
	}
	return subset, state, true
}

// handleV1Dashboard returns the full rendered view
// GET /api/v1/dashboard?countries=Benin&countries=Togo&metric=DNI&min=50&max=300
func (s *Server) handleV1Dashboard(c *gin.Context) {
	v, ok := s.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": v,
		"meta": gin.H{
			"loaded_at":    s.cache.LoadedAt().Format(time.RFC3339),
			"generated_at": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// handleV1DashboardMarkdown returns the view as a Markdown document
// GET /api/v1/dashboard/markdown
func (s *Server) handleV1DashboardMarkdown(c *gin.Context) {
	v, ok := s.view(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(v.Markdown()))
}

// handleV1DashboardKPIs returns per-country means, ascending
// GET /api/v1/dashboard/kpis
func (s *Server) handleV1DashboardKPIs(c *gin.Context) {
	subset, state, ok := s.subset(c)
	if !ok {
		return
	}
	kpis := analysis.CalculateKPIs(subset, state.Metric)
	c.JSON(http.StatusOK, gin.H{
		"data": kpis,
		"meta": gin.H{
			"count":  len(kpis),
			"metric": state.Metric,
		},
	})
}

// handleV1DashboardSummary returns mean, median and std per country
// GET /api/v1/dashboard/summary?metrics=GHI,DNI,DHI
func (s *Server) handleV1DashboardSummary(c *gin.Context) {
	subset, state, ok := s.subset(c)
	if !ok {
		return
	}
	metrics, err := parseMetrics(c, state.Metric)
	if err != nil {
		s.fail(c, err)
		return
	}
	rows := analysis.Summarize(subset, metrics)
	c.JSON(http.StatusOK, gin.H{
		"data": rows,
		"meta": gin.H{
			"count":   len(rows),
			"metrics": metrics,
		},
	})
}

// handleV1DashboardObservations returns the key observations. An empty
// selection is an error here rather than an omitted section.
// GET /api/v1/dashboard/observations
func (s *Server) handleV1DashboardObservations(c *gin.Context) {
	subset, state, ok := s.subset(c)
	if !ok {
		return
	}
	rows := analysis.Summarize(subset, []solar.Metric{state.Metric})
	h, err := analysis.Rank(rows, state.Metric)
	if err != nil {
		s.fail(c, err)
		return
	}
	sentences := h.Sentences()
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"highlights":   h,
			"observations": sentences,
			"text":         strings.Join(sentences, "\n\n"),
		},
	})
}

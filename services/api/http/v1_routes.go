package http

// registerV1Routes sets up the v1 API structure
// Groups: /api/v1/core, /api/v1/dashboard, /api/v1/charts, /api/v1/stats, /api/v1/admin
func (s *Server) registerV1Routes() {
	v1 := s.engine.Group("/api/v1")
	v1.Use(apiVersionMiddleware()) // Add X-API-Version: v1 header

	// Core endpoints - enumerations and filtered rows
	core := v1.Group("/core")
	{
		core.GET("/countries", s.handleV1Countries)
		core.GET("/metrics", s.handleV1Metrics)
		core.GET("/observations", s.handleV1Observations)
	}

	// Dashboard endpoints - the rendered view and its sections
	dashboard := v1.Group("/dashboard")
	{
		dashboard.GET("", s.handleV1Dashboard)
		dashboard.GET("/markdown", s.handleV1DashboardMarkdown)
		dashboard.GET("/kpis", s.handleV1DashboardKPIs)
		dashboard.GET("/summary", s.handleV1DashboardSummary)
		dashboard.GET("/observations", s.handleV1DashboardObservations)
	}

	charts := v1.Group("/charts")
	{
		charts.GET("/boxplot.png", s.handleV1Boxplot)
		charts.GET("/bars.png", s.handleV1Bars)
	}

	stats := v1.Group("/stats")
	{
		stats.GET("/kruskal", s.handleV1Kruskal)
	}

	admin := v1.Group("/admin")
	{
		admin.POST("/reload", s.handleV1Reload)
	}
}

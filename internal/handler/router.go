package handler

import "github.com/gin-gonic/gin"

// Handlers groups every API handler mounted under the API prefix.
type Handlers struct {
	Reports    *ReportHandler
	CellGroups *CellGroupHandler
	Analytics  *AnalyticsHandler
	Visitors   *VisitorHandler
	Dashboard  *DashboardHandler
}

// Register mounts the API routes on api.
func Register(api *gin.RouterGroup, h Handlers) {
	reports := api.Group("/reports")
	reports.GET("", h.Reports.List)
	reports.POST("", h.Reports.Create)
	reports.GET("/:id", h.Reports.Get)
	reports.PUT("/:id", h.Reports.Update)
	reports.DELETE("/:id", h.Reports.Delete)

	groups := api.Group("/cell-groups/:id")
	groups.GET("/analytics", h.CellGroups.Analytics)
	groups.GET("/streaks", h.CellGroups.Streaks)
	groups.GET("/visitor-recurrence", h.CellGroups.VisitorRecurrence)
	groups.GET("/health-history", h.CellGroups.HealthHistory)
	groups.POST("/health-history", h.CellGroups.RecordHealth)
	groups.GET("/health-summary", h.CellGroups.HealthSummary)

	analytics := api.Group("/analytics")
	analytics.GET("/weeks", h.Analytics.Weeks)
	analytics.GET("/weekly-ranking", h.Analytics.WeeklyRanking)
	analytics.GET("/system", h.Analytics.System)

	visitors := api.Group("/visitors")
	visitors.GET("", h.Visitors.List)
	visitors.POST("", h.Visitors.Create)
	visitors.GET("/:id", h.Visitors.Get)
	visitors.POST("/:id/follow-up/advance", h.Visitors.AdvanceFollowUp)
	visitors.POST("/:id/convert", h.Visitors.Convert)

	api.GET("/dashboard", h.Dashboard.Summary)
}

package routes

import (
	"civicreport-be/controllers"

	"github.com/gin-gonic/gin"
)

// ReportRoutes sets up the report routes. Static paths are registered before /:id.
func ReportRoutes(r *gin.Engine, rc *controllers.ReportController, auth, rateLimit gin.HandlerFunc) {
	reports := r.Group("/api/reports")
	{
		reports.POST("", auth, rateLimit, rc.CreateReport)
		reports.GET("", rc.GetReports)
		reports.GET("/nearby", rc.GetNearbyReports)
		reports.GET("/my-reports", auth, rc.GetMyReports)
		reports.GET("/stats", rc.GetStats)
		reports.GET("/:id", rc.GetReport)
		reports.GET("/:id/verifications", rc.GetVerifications)
		reports.PUT("/:id/status", auth, rc.UpdateStatus)
		reports.DELETE("/:id", auth, rc.DeleteReport)
	}
}

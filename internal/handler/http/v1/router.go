package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Публичные маршруты
	incidents := api.Group("/incidents")
	{
		incidents.GET("/public", h.listPublicIncidents)
		incidents.GET("/markers", h.listMarkers)
	}

	reports := api.Group("/reports")
	{
		reports.POST("", h.submitReport)
		reports.GET("/:id/status", h.reportStatus)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)

	// Admin-маршруты, защищенные API-ключом
	admin := api.Group("/admin")
	admin.Use(APIKeyAuthMiddleware(h.cfg, h.logger))
	{
		admin.GET("/incidents", h.listAdminIncidents)
		admin.GET("/incidents/:id/reports", h.listIncidentReports)
		admin.POST("/incidents/:id/resolution", h.toggleResolution)

		admin.GET("/reports/flagged", h.listFlaggedReports)
		admin.GET("/reports/unlinked", h.listUnlinkedReports)
		admin.GET("/reports/:id/candidates", h.listMergeCandidates)
		admin.POST("/reports/:id/approve", h.approveReport)
		admin.POST("/reports/:id/reject", h.rejectReport)
		admin.POST("/reports/:id/merge", h.mergeReport)
	}
}

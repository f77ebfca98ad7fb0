package main

import (
	"database/sql"
	"net/http"
	"time"

	"ivr-gateway/internal/httpapi"
	"ivr-gateway/internal/rbac"
	"ivr-gateway/internal/telephony"
	"ivr-gateway/pkg/utils"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, webhooks *telephony.WebhookHandlers, admin httpapi.Handlers, authMW gin.HandlerFunc, db *sql.DB) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Voice webhooks (public). The telephony platform authenticates by
	// configuration, not by request credentials; these endpoints never
	// return an error status.
	r.POST("/answer", webhooks.Answer)
	r.POST("/answer/digits", webhooks.CollectDigits)
	r.POST("/answer/id", webhooks.CollectID)
	r.GET("/answer/audio", webhooks.AudioFile)
	r.POST("/answer/audio", webhooks.AudioFile)

	// Admin console API.
	v1 := r.Group("/v1")
	v1.POST("/auth/login", admin.Login)
	v1.POST("/auth/refresh", admin.Refresh)

	protected := v1.Group("")
	protected.Use(authMW)
	{
		// Read endpoints: any authenticated operator.
		ro := protected.Group("")
		ro.Use(rbac.RequireAnyRole(rbac.RoleAdmin, rbac.RoleAnalyst))
		{
			ro.GET("/messages", admin.ListMessages)
			ro.GET("/hours", admin.GetHours)
			ro.GET("/ignored", admin.ListIgnored)
			ro.GET("/analytics", admin.GetAnalytics)
			ro.GET("/registry", admin.GetRegistryCount)
		}

		// Mutations: admin only.
		rw := protected.Group("")
		rw.Use(rbac.RequireAnyRole(rbac.RoleAdmin))
		{
			rw.PUT("/messages/text", admin.SetMessageText)
			rw.POST("/messages/audio", admin.SetMessageAudio)
			rw.DELETE("/messages/:code", admin.DeleteMessage)
			rw.PUT("/hours", admin.ReplaceHours)
			rw.POST("/ignored", admin.ToggleIgnored)
			rw.PUT("/settings", admin.UpdateSettings)
		}
	}
}

package main

import (
	"net/http"

	"memorial-backend/internal/shared/middleware"
	"memorial-backend/pkg/container"

	"github.com/gin-gonic/gin"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupObituaryRoutes(v1, c)
	}

	return router
}

// ========================================
// OBITUARY ROUTES
// ========================================
func setupObituaryRoutes(v1 *gin.RouterGroup, c *container.Container) {
	obituaries := v1.Group("/obituaries")
	{
		obituaries.POST("", c.ObituaryHandler.Create)
		obituaries.GET("/:slug", c.ObituaryHandler.GetBySlug)
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checks := gin.H{}
		healthy := true

		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			checks["database"] = err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}

		if err := c.Redis.HealthCheck(ctx.Request.Context()); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}

		ctx.JSON(status, gin.H{
			"success": healthy,
			"data": gin.H{
				"version": c.Config.App.Version,
				"checks":  checks,
			},
		})
	}
}

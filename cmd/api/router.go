package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"book-records-api/internal/shared/middleware"
	"book-records-api/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = c.Config.Upload.MaxBytes

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	// Ảnh đã upload, vd: /img/<name>
	router.Static(strings.TrimSuffix(c.Config.Upload.URLPrefix, "/"), c.Images.Dir())

	router.GET("/health", healthCheckHandler(c))

	setupBookRoutes(router, c)

	return router
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(router *gin.Engine, c *container.Container) {
	upload := middleware.UploadInterceptor(c.Images, c.Config.Upload.Field, c.Config.Upload.MaxBytes)
	c.BookHandler.RegisterRoutes(router.Group("/book"), upload)
}

// ========================================
// HEALTH
// ========================================

// componentCheck: critical=false thì lỗi chỉ làm status "degraded", vẫn 200
type componentCheck struct {
	name     string
	critical bool
	check    func(ctx context.Context) error
}

func healthChecks(c *container.Container) []componentCheck {
	checks := []componentCheck{
		{"database", true, c.DB.Ping},
		// Redis down thì list đọc thẳng DB
		{"cache", false, c.Cache.Ping},
		{"upload_dir", true, func(context.Context) error { return c.Images.Writable() }},
	}
	if c.Mirror != nil {
		checks = append(checks, componentCheck{"minio", false, c.Mirror.Ping})
	}
	return checks
}

// evaluateHealth chạy mọi check; critical lỗi -> 503 "unhealthy", non-critical lỗi -> 200 "degraded"
func evaluateHealth(ctx context.Context, checks []componentCheck) (string, int, gin.H) {
	status, code := "ok", http.StatusOK
	services := gin.H{}

	for _, chk := range checks {
		if err := chk.check(ctx); err != nil {
			services[chk.name] = gin.H{"status": "error", "error": err.Error()}
			if chk.critical {
				status, code = "unhealthy", http.StatusServiceUnavailable
			} else if status == "ok" {
				status = "degraded"
			}
			continue
		}
		services[chk.name] = gin.H{"status": "ok"}
	}
	return status, code, services
}

func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	checks := healthChecks(appCtx)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code, services := evaluateHealth(ctx, checks)

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services":  services,
		})
	}
}

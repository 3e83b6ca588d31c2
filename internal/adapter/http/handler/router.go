package handler

import (
	"webhook-outbox/internal/adapter/http/middleware"
	"webhook-outbox/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	OutboxRepo     ports.OutboxRepository
	TokenSvc       ports.TokenService
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/healthz", HealthCheck(deps.HealthCheckers...))

	// Operator routes (JWT-authenticated)
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	adminHandler := NewAdminHandler(deps.OutboxRepo)

	outbox := r.Group("/api/v1/outbox", jwtAuth)
	{
		outbox.GET("/stats", adminHandler.GetStats)
		outbox.GET("/items/:id", adminHandler.GetItem)
		outbox.POST("/items/:id/requeue", adminHandler.RequeueItem)
		outbox.POST("/requeue", adminHandler.RequeueBatch)
		outbox.POST("/purge", adminHandler.Purge)
	}

	return r
}

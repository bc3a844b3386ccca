package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xxxsen/fieldorder/internal/middleware"
	"github.com/xxxsen/fieldorder/internal/model"
)

type RouterDeps struct {
	Auth            *AuthHandler
	Properties      *PropertiesHandler
	Shares          *ShareHandler
	PublicShares    *PublicShareHandler
	JWTSecret       []byte
	PublicRateLimit time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/login", deps.Auth.Login)
	api.GET("/properties", deps.Properties.Get)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	authGroup.POST("/orders/:id/shares", deps.Shares.IssueForOrder)
	authGroup.GET("/orders/:id/shares", deps.Shares.ListForOrder)
	authGroup.POST("/collections/:id/shares", deps.Shares.IssueForCollection)
	authGroup.GET("/collections/:id/shares", deps.Shares.ListForCollection)
	authGroup.DELETE("/shares/:id", deps.Shares.Revoke)

	adminGroup := authGroup.Group("")
	adminGroup.Use(middleware.RequireRole(model.RoleAdmin))
	adminGroup.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// a share page pulls all of its file references at once, so only the
	// page and archive routes are throttled
	limit := middleware.RateLimit(deps.PublicRateLimit)
	publicGroup := api.Group("/public/share")
	publicGroup.GET("/:token", limit, deps.PublicShares.Get)
	publicGroup.GET("/:token/archive", limit, deps.PublicShares.Archive)
	publicGroup.GET("/:token/files/:key", deps.PublicShares.File)
}

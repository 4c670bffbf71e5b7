package router

import (
	"github.com/gin-gonic/gin"
	"github.com/glowday/api/config"
	"github.com/glowday/api/internal/handler"
	"github.com/glowday/api/internal/middleware"
)

type Router struct {
	userHandler   *handler.UserHandler
	roleHandler   *handler.RoleHandler
	healthHandler *handler.HealthHandler

	authMw gin.HandlerFunc
	rateMw gin.HandlerFunc
	cfg    *config.Config
}

func NewRouter(
	user *handler.UserHandler,
	role *handler.RoleHandler,
	health *handler.HealthHandler,
	authMw gin.HandlerFunc,
	rateMw gin.HandlerFunc,
	cfg *config.Config,
) *Router {
	return &Router{
		userHandler:   user,
		roleHandler:   role,
		healthHandler: health,
		authMw:        authMw,
		rateMw:        rateMw,
		cfg:           cfg,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if r.cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORS())

	if r.cfg.Storage.Mode == "local" || r.cfg.Storage.Mode == "" {
		dir := r.cfg.Storage.LocalDir
		if dir == "" {
			dir = "uploads"
		}
		router.Static("/uploads", dir)
	}

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.Health)

		if r.rateMw != nil {
			api.Use(r.rateMw)
		}

		r.userRoutes(api)
		r.roleRoutes(api)
	}

	return router
}

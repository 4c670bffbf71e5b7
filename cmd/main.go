package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	configs "github.com/glowday/api/config"
	"github.com/glowday/api/internal/handler"
	"github.com/glowday/api/internal/middleware"
	"github.com/glowday/api/internal/repository"
	"github.com/glowday/api/internal/router"
	"github.com/glowday/api/internal/service"
	"github.com/glowday/api/pkg/database"
	"github.com/glowday/api/pkg/logger"
	"github.com/glowday/api/pkg/redis"
	"github.com/glowday/api/pkg/storage"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
	)

	db, err := database.NewPostgresDB(config.Database)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.Migrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	if err := database.Seed(db, config); err != nil {
		// Don't fail; seed data may already exist
		logger.GetLogger().Error("Failed to seed database", zap.Error(err))
	}

	redisClient, err := redis.NewClient(config.Redis)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	fileStorage, err := storage.New(config.Storage)
	if err != nil {
		logger.GetLogger().Fatal("Failed to initialize storage", zap.Error(err))
	}

	// Repositories and services
	userRepo := repository.NewUserRepository(db)
	jwtService := service.NewJWTService(config.JWT)
	userService := service.NewUserService(userRepo, jwtService, config)
	roleService := service.NewRoleService(db)

	// Handlers
	userHandler := handler.NewUserHandler(userService, fileStorage, config)
	roleHandler := handler.NewRoleHandler(roleService)
	healthHandler := handler.NewHealthHandler(db)

	// Middleware
	authMw := middleware.AuthMiddleware(jwtService, userRepo, config)
	var rateMw gin.HandlerFunc
	if config.RateLimit.Request > 0 {
		rateMw = middleware.RateLimit(
			config.RateLimit.Request,
			time.Duration(config.RateLimit.Duration)*time.Second,
			redisClient,
		)
	}

	engine := router.NewRouter(
		userHandler,
		roleHandler,
		healthHandler,
		authMw,
		rateMw,
		config,
	).SetupRoutes()

	go func() {
		logger.GetLogger().Info("Server starting", zap.String("port", config.App.Port))
		if err := engine.Run(":" + config.App.Port); err != nil {
			logger.GetLogger().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")
}

package app

import (
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "learnbox/docs"
	"learnbox/internal/config"
	"learnbox/internal/handlers"
	"learnbox/internal/logger"
	"learnbox/internal/repositories"
	"learnbox/internal/routes"
	"learnbox/internal/services"
)

func Run() {
	cfg := config.LoadConfig()

	if err := logger.Init(cfg.Logging.Level); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", zap.Error(err))
		}
	}()
	if err := db.Ping(); err != nil {
		log.Fatal("failed to reach database", zap.Error(err))
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewTokenRepository(db)

	// === Services ===
	emailService := services.NewEmailService(cfg.Email)
	authService := services.NewAuthService(userRepo, cfg.JWT, logger.Named("auth"))
	userService := services.NewUserService(userRepo, authService, logger.Named("users"))
	tokenService := services.NewTokenService(
		userRepo,
		tokenRepo,
		emailService,
		authService,
		cfg.Tokens,
		cfg.Frontend.URL,
		logger.Named("tokens"),
	)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService, tokenService, logger.Named("http"))
	verifyHandler := handlers.NewVerifyHandler(tokenService, logger.Named("http"))

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, authHandler, verifyHandler, authService)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("server listening", zap.String("addr", listenAddr))
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

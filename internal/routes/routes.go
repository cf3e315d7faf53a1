package routes

import (
	"github.com/gin-gonic/gin"

	"learnbox/internal/handlers"
	"learnbox/internal/middleware"
	"learnbox/internal/services"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	verifyHandler *handlers.VerifyHandler,
	authService services.AuthService,
) *gin.Engine {

	auth := r.Group("/auth")
	{
		// ---- public
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/token/refresh", authHandler.Refresh)
		auth.POST("/verify-email", verifyHandler.VerifyEmail)
		auth.POST("/verify-email/resend", verifyHandler.ResendVerification)
		auth.POST("/password-reset", verifyHandler.RequestPasswordReset)
		auth.POST("/password-reset/confirm", verifyHandler.ConfirmPasswordReset)

		// ---- protected
		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(authService))
		protected.GET("/me", authHandler.Me)
	}

	return r
}

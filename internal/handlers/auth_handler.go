package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"learnbox/internal/middleware"
	"learnbox/internal/models"
	"learnbox/internal/services"
)

type AuthHandler struct {
	userService  services.UserService
	authService  services.AuthService
	tokenService services.TokenService
	log          *zap.Logger
}

func NewAuthHandler(userService services.UserService, authService services.AuthService, tokenService services.TokenService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		authService:  authService,
		tokenService: tokenService,
		log:          log,
	}
}

// @Summary      Register a new account
// @Description  Creates the user, emails a verification code and returns a session token pair
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RegisterRequest  true  "Registration fields"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Register(services.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Password2:   req.Password2,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		FirebaseUID: req.FirebaseUID,
	})
	if err != nil {
		if fields, ok := registerFieldErrors(err); ok {
			c.JSON(http.StatusBadRequest, fields)
			return
		}
		h.log.Error("register failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	// The account exists either way; a failed send is logged and the user
	// can request a new code via the resend endpoint.
	if _, err := h.tokenService.IssueEmailVerification(user); err != nil {
		h.log.Error("verification email not delivered", zap.Int("user_id", user.ID), zap.Error(err))
	}

	pair, err := h.authService.IssueTokenPair(user)
	if err != nil {
		h.log.Error("issue token pair failed", zap.Int("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful! Check your email for a verification code.",
		"tokens":  pair,
		"user":    user,
	})
}

func registerFieldErrors(err error) (gin.H, bool) {
	switch {
	case errors.Is(err, services.ErrPasswordMismatch):
		return gin.H{"password": "Password fields didn't match."}, true
	case errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrPasswordAllDigits):
		return gin.H{"password": capitalized(err.Error())}, true
	case errors.Is(err, services.ErrDuplicateEmail):
		return gin.H{"email": "A user with this email already exists."}, true
	case errors.Is(err, services.ErrDuplicateUsername):
		return gin.H{"username": "A user with this username already exists."}, true
	}
	return nil, false
}

// @Summary      Log in
// @Description  Verifies credentials and returns a session token pair
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.LoginRequest  true  "Credentials"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, pair, err := h.authService.Authenticate(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password."})
		case errors.Is(err, services.ErrAccountDisabled):
			c.JSON(http.StatusBadRequest, gin.H{"error": "User account is disabled."})
		default:
			h.log.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful!",
		"tokens":  pair,
		"user":    user,
	})
}

// @Summary      Refresh the access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      object{refresh_token=string}  true  "Refresh token"
// @Success      200   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/token/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	access, err := h.authService.RefreshAccess(req.RefreshToken)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRefresh) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
			return
		}
		h.log.Error("refresh failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	user, err := h.userService.GetUserByID(id)
	if err != nil || user == nil {
		h.log.Error("load current user failed", zap.Int("user_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

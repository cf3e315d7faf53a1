package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"learnbox/internal/services"
)

type VerifyHandler struct {
	tokens services.TokenService
	log    *zap.Logger
}

func NewVerifyHandler(tokens services.TokenService, log *zap.Logger) *VerifyHandler {
	return &VerifyHandler{tokens: tokens, log: log}
}

// @Summary      Confirm an email verification code
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      object{code=string}  true  "6-digit code"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Router       /auth/verify-email [post]
func (h *VerifyHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.tokens.ConfirmEmail(req.Code); err != nil {
		switch {
		case errors.Is(err, services.ErrTokenUsed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "This verification code has already been used."})
		case errors.Is(err, services.ErrTokenExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "This verification code has expired."})
		case errors.Is(err, services.ErrInvalidToken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification token."})
		default:
			h.log.Error("email verification failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully!"})
}

// @Summary      Resend the verification code
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      object{email=string}  true  "Account email"
// @Success      200   {object}  map[string]string
// @Router       /auth/verify-email/resend [post]
func (h *VerifyHandler) ResendVerification(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.tokens.ResendVerification(req.Email); err != nil {
		h.log.Error("verification resend failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification email"})
		return
	}

	// same body whether or not the account exists
	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a verification code has been sent."})
}

// @Summary      Request a password reset link
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      object{email=string}  true  "Account email"
// @Success      200   {object}  map[string]string
// @Router       /auth/password-reset [post]
func (h *VerifyHandler) RequestPasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.tokens.RequestReset(req.Email); err != nil {
		h.log.Error("password reset request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send password reset email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a password reset link has been sent."})
}

// @Summary      Reset the password with a token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      object{token=string,password=string,password2=string}  true  "Reset token and new password"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Router       /auth/password-reset/confirm [post]
func (h *VerifyHandler) ConfirmPasswordReset(c *gin.Context) {
	var req struct {
		Token     string `json:"token" binding:"required"`
		Password  string `json:"password" binding:"required"`
		Password2 string `json:"password2" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Password != req.Password2 {
		c.JSON(http.StatusBadRequest, gin.H{"password": "Password fields didn't match."})
		return
	}

	if err := h.tokens.ResetPassword(req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrPasswordTooShort),
			errors.Is(err, services.ErrPasswordAllDigits):
			c.JSON(http.StatusBadRequest, gin.H{"password": capitalized(err.Error())})
		case errors.Is(err, services.ErrTokenUsed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "This password reset link has already been used."})
		case errors.Is(err, services.ErrTokenExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "This password reset link has expired."})
		case errors.Is(err, services.ErrInvalidToken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid password reset token."})
		default:
			h.log.Error("password reset failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Password reset failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully."})
}

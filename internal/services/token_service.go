package services

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"learnbox/internal/config"
	"learnbox/internal/models"
	"learnbox/internal/repositories"
	"learnbox/internal/utils"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenUsed    = errors.New("token already used")
	ErrTokenExpired = errors.New("token expired")
)

// TokenService owns the verification-token lifecycle: issuance (persist,
// then notify) and single-use consumption for both token kinds.
type TokenService interface {
	IssueEmailVerification(user *models.User) (*models.VerificationToken, error)
	IssuePasswordReset(user *models.User) (*models.VerificationToken, error)

	// ConfirmEmail consumes a verification code and marks the owner verified.
	ConfirmEmail(code string) (*models.User, error)
	// ResetPassword consumes a reset token and stores the new password hash.
	ResetPassword(token, newPassword string) error

	// ResendVerification and RequestReset look the account up by email and
	// never report whether it exists.
	ResendVerification(email string) error
	RequestReset(email string) error
}

type tokenService struct {
	users  repositories.UserRepository
	tokens repositories.TokenRepository
	emails EmailService
	auth   AuthService

	verificationTTL    time.Duration
	resetTTL           time.Duration
	invalidatePrevious bool
	frontendURL        string

	log *zap.Logger
	now func() time.Time
}

func NewTokenService(
	users repositories.UserRepository,
	tokens repositories.TokenRepository,
	emails EmailService,
	auth AuthService,
	cfg config.TokensConfig,
	frontendURL string,
	log *zap.Logger,
) TokenService {
	return &tokenService{
		users:              users,
		tokens:             tokens,
		emails:             emails,
		auth:               auth,
		verificationTTL:    cfg.VerificationTTL.Std(),
		resetTTL:           cfg.ResetTTL.Std(),
		invalidatePrevious: cfg.InvalidatePrevious,
		frontendURL:        frontendURL,
		log:                log,
		now:                time.Now,
	}
}

// IssueEmailVerification persists a fresh 6-digit code and emails it.
// The record stays persisted even when the email fails; the error is
// returned so the caller knows delivery did not happen.
func (s *tokenService) IssueEmailVerification(user *models.User) (*models.VerificationToken, error) {
	code, err := utils.NewVerificationCode()
	if err != nil {
		return nil, fmt.Errorf("generate verification code: %w", err)
	}

	rec, err := s.persist(user.ID, models.TokenKindEmailVerification, code, s.verificationTTL)
	if err != nil {
		return nil, err
	}

	if err := s.emails.SendVerificationCode(user.Email, user.Username, code); err != nil {
		s.log.Error("verification email dispatch failed",
			zap.Int("user_id", user.ID), zap.Error(err))
		return rec, err
	}
	return rec, nil
}

// IssuePasswordReset persists an opaque reset token and emails the link.
func (s *tokenService) IssuePasswordReset(user *models.User) (*models.VerificationToken, error) {
	token := utils.NewResetToken()

	rec, err := s.persist(user.ID, models.TokenKindPasswordReset, token, s.resetTTL)
	if err != nil {
		return nil, err
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)
	if err := s.emails.SendPasswordReset(user.Email, user.Username, resetLink); err != nil {
		s.log.Error("password reset email dispatch failed",
			zap.Int("user_id", user.ID), zap.Error(err))
		return rec, err
	}
	return rec, nil
}

func (s *tokenService) persist(userID int, kind models.TokenKind, value string, ttl time.Duration) (*models.VerificationToken, error) {
	if s.invalidatePrevious {
		if err := s.tokens.InvalidatePending(userID, kind); err != nil {
			return nil, err
		}
	}

	now := s.now()
	rec := &models.VerificationToken{
		UserID:    userID,
		Kind:      kind,
		Token:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.tokens.Create(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *tokenService) ConfirmEmail(code string) (*models.User, error) {
	rec, err := s.validateAndConsume(code, models.TokenKindEmailVerification)
	if err != nil {
		return nil, err
	}

	if err := s.users.MarkEmailVerified(rec.UserID); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(rec.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	s.log.Info("email verified", zap.Int("user_id", rec.UserID))
	return user, nil
}

func (s *tokenService) ResetPassword(token, newPassword string) error {
	// Password is checked before the token is consumed so a rejected
	// password does not burn the single use.
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	rec, err := s.validateAndConsume(token, models.TokenKindPasswordReset)
	if err != nil {
		return err
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(rec.UserID, hash); err != nil {
		return err
	}
	s.log.Info("password reset", zap.Int("user_id", rec.UserID))
	return nil
}

// validateAndConsume enforces the error order: unknown value, then already
// used, then expired. "Already used" wins over "expired" when both hold,
// since it is the more informative message for the user.
func (s *tokenService) validateAndConsume(value string, kind models.TokenKind) (*models.VerificationToken, error) {
	rec, err := s.tokens.GetByValue(value, kind)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrInvalidToken
	}
	if rec.Used {
		return nil, ErrTokenUsed
	}
	if !s.now().Before(rec.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	ok, err := s.tokens.Consume(rec.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// lost the race with a concurrent validation
		return nil, ErrTokenUsed
	}
	return rec, nil
}

func (s *tokenService) ResendVerification(email string) error {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil || user.EmailVerified {
		s.log.Debug("verification resend skipped", zap.Bool("known", user != nil))
		return nil
	}
	_, err = s.IssueEmailVerification(user)
	return err
}

func (s *tokenService) RequestReset(email string) error {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		// never reveal whether the address is registered
		s.log.Debug("password reset requested for unknown email")
		return nil
	}
	_, err = s.IssuePasswordReset(user)
	return err
}

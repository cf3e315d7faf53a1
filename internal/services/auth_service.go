package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"learnbox/internal/config"
	"learnbox/internal/models"
	"learnbox/internal/repositories"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses never reveal whether the account exists.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("user account is disabled")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type Claims struct {
	UserID    int    `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is the stateless session pair. Neither half is persisted;
// both are derived from the signing secret with independent expiries.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	HashPassword(plain string) (string, error)
	Authenticate(email, password string) (*models.User, *TokenPair, error)
	IssueTokenPair(user *models.User) (*TokenPair, error)
	// RefreshAccess mints a new access token from a valid refresh token.
	RefreshAccess(refreshToken string) (string, error)
	ParseAccess(token string) (*Claims, error)
}

type authService struct {
	users      repositories.UserRepository
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        *zap.Logger
	now        func() time.Time
}

func NewAuthService(users repositories.UserRepository, cfg config.JWTConfig, log *zap.Logger) AuthService {
	return &authService{
		users:      users,
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL.Std(),
		refreshTTL: cfg.RefreshTTL.Std(),
		log:        log,
		now:        time.Now,
	}
}

func (s *authService) HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *authService) Authenticate(email, password string) (*models.User, *TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("authenticate: %w", err)
	}
	if user == nil {
		s.log.Debug("login attempt for unknown email")
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Debug("password mismatch", zap.Int("user_id", user.ID))
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	pair, err := s.IssueTokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *authService) IssueTokenPair(user *models.User) (*TokenPair, error) {
	access, err := s.sign(user.ID, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.sign(user.ID, tokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) RefreshAccess(refreshToken string) (string, error) {
	claims, err := s.parse(refreshToken)
	if err != nil || claims.TokenType != tokenTypeRefresh {
		return "", ErrInvalidRefresh
	}

	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		return "", fmt.Errorf("refresh: %w", err)
	}
	if user == nil || !user.IsActive {
		return "", ErrInvalidRefresh
	}

	access, err := s.sign(user.ID, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return access, nil
}

func (s *authService) ParseAccess(token string) (*Claims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (s *authService) sign(userID int, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *authService) parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		// HMAC only; reject alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

package services

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"learnbox/internal/models"
	"learnbox/internal/repositories"
)

var (
	ErrPasswordMismatch  = errors.New("password fields didn't match")
	ErrDuplicateEmail    = errors.New("a user with this email already exists")
	ErrDuplicateUsername = errors.New("a user with this username already exists")
)

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	Password2   string
	FirstName   string
	LastName    string
	FirebaseUID string
}

type UserService interface {
	Register(in RegisterInput) (*models.User, error)
	GetUserByID(id int) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
}

type userService struct {
	repo repositories.UserRepository
	auth AuthService
	log  *zap.Logger
}

func NewUserService(repo repositories.UserRepository, auth AuthService, log *zap.Logger) UserService {
	return &userService{repo: repo, auth: auth, log: log}
}

// Register validates the submitted fields and persists the user with a
// bcrypt hash. Plaintext is never stored. Nothing is written when any
// check fails.
func (s *userService) Register(in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if username == "" || email == "" {
		return nil, fmt.Errorf("username and email are required")
	}

	if in.Password != in.Password2 {
		return nil, ErrPasswordMismatch
	}
	if err := ValidatePasswordStrength(in.Password); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}
	exists, err = s.repo.ExistsByUsername(username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateUsername
	}

	hash, err := s.auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
	}
	if uid := strings.TrimSpace(in.FirebaseUID); uid != "" {
		// opaque external-identity reference; not verified here
		user.FirebaseUID = &uid
	}

	if err := s.repo.Create(user); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.Int("user_id", user.ID))
	return user, nil
}

func (s *userService) GetUserByID(id int) (*models.User, error) {
	return s.repo.GetByID(id)
}

func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	return s.repo.GetByEmail(strings.TrimSpace(strings.ToLower(email)))
}

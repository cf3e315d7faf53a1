package repositories

import (
	"database/sql"
	"fmt"

	"learnbox/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	ExistsByEmail(email string) (bool, error)
	ExistsByUsername(username string) (bool, error)
	UpdatePassword(userID int, passwordHash string) error
	MarkEmailVerified(userID int) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, username, email, first_name, last_name, password_hash,
	firebase_uid, is_active, email_verified, created_at, updated_at
`

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (
			username, email, first_name, last_name, password_hash,
			firebase_uid, is_active, email_verified
		)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, FALSE)
		RETURNING id, is_active, email_verified, created_at, updated_at
	`
	var firebaseUID sql.NullString
	if user.FirebaseUID != nil {
		firebaseUID = sql.NullString{String: *user.FirebaseUID, Valid: true}
	}
	err := r.DB.QueryRow(q,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		firebaseUID,
	).Scan(&user.ID, &user.IsActive, &user.EmailVerified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepository) scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var firebaseUID sql.NullString
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&firebaseUID, &u.IsActive, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if firebaseUID.Valid {
		s := firebaseUID.String
		u.FirebaseUID = &s
	}
	return u, nil
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := r.scanUser(r.DB.QueryRow(q, id))
	if err != nil {
		return nil, fmt.Errorf("user by id: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := r.scanUser(r.DB.QueryRow(q, email))
	if err != nil {
		return nil, fmt.Errorf("user by email: %w", err)
	}
	return u, nil
}

func (r *userRepository) ExistsByEmail(email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`
	var exists bool
	if err := r.DB.QueryRow(q, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("user exists by email: %w", err)
	}
	return exists, nil
}

func (r *userRepository) ExistsByUsername(username string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`
	var exists bool
	if err := r.DB.QueryRow(q, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("user exists by username: %w", err)
	}
	return exists, nil
}

func (r *userRepository) UpdatePassword(userID int, passwordHash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.DB.Exec(q, userID, passwordHash); err != nil {
		return fmt.Errorf("user update password: %w", err)
	}
	return nil
}

func (r *userRepository) MarkEmailVerified(userID int) error {
	const q = `UPDATE users SET email_verified = TRUE, updated_at = NOW() WHERE id = $1`
	if _, err := r.DB.Exec(q, userID); err != nil {
		return fmt.Errorf("user mark verified: %w", err)
	}
	return nil
}

package repositories

import (
	"database/sql"
	"fmt"

	"learnbox/internal/models"
)

type TokenRepository interface {
	Create(token *models.VerificationToken) error
	GetByValue(value string, kind models.TokenKind) (*models.VerificationToken, error)
	// Consume marks the token used. Returns false if it was already used;
	// the check and the write are a single conditional UPDATE so two racing
	// validations can never both succeed.
	Consume(id int64) (bool, error)
	// InvalidatePending marks every unused token of the kind as used.
	InvalidatePending(userID int, kind models.TokenKind) error
}

type tokenRepository struct {
	DB *sql.DB
}

func NewTokenRepository(db *sql.DB) TokenRepository {
	return &tokenRepository{DB: db}
}

func (r *tokenRepository) Create(token *models.VerificationToken) error {
	const q = `
		INSERT INTO verification_tokens (user_id, kind, token, created_at, expires_at, used)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING id
	`
	err := r.DB.QueryRow(q,
		token.UserID,
		token.Kind,
		token.Token,
		token.CreatedAt,
		token.ExpiresAt,
	).Scan(&token.ID)
	if err != nil {
		return fmt.Errorf("token create: %w", err)
	}
	return nil
}

func (r *tokenRepository) GetByValue(value string, kind models.TokenKind) (*models.VerificationToken, error) {
	const q = `
		SELECT id, user_id, kind, token, created_at, expires_at, used
		FROM verification_tokens
		WHERE token = $1 AND kind = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	t := &models.VerificationToken{}
	err := r.DB.QueryRow(q, value, kind).Scan(
		&t.ID, &t.UserID, &t.Kind, &t.Token, &t.CreatedAt, &t.ExpiresAt, &t.Used,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("token by value: %w", err)
	}
	return t, nil
}

func (r *tokenRepository) Consume(id int64) (bool, error) {
	const q = `UPDATE verification_tokens SET used = TRUE WHERE id = $1 AND used = FALSE`
	res, err := r.DB.Exec(q, id)
	if err != nil {
		return false, fmt.Errorf("token consume: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("token consume: %w", err)
	}
	return n > 0, nil
}

func (r *tokenRepository) InvalidatePending(userID int, kind models.TokenKind) error {
	const q = `
		UPDATE verification_tokens SET used = TRUE
		WHERE user_id = $1 AND kind = $2 AND used = FALSE
	`
	if _, err := r.DB.Exec(q, userID, kind); err != nil {
		return fmt.Errorf("token invalidate pending: %w", err)
	}
	return nil
}

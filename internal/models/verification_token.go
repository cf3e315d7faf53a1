package models

import "time"

type TokenKind string

const (
	TokenKindEmailVerification TokenKind = "email_verification"
	TokenKindPasswordReset     TokenKind = "password_reset"
)

// VerificationToken is a single-use code or link token tied to one user.
// Each issuance is a new row; deleting the user cascades to its tokens.
type VerificationToken struct {
	ID        int64     `json:"id"`
	UserID    int       `json:"user_id"`
	Kind      TokenKind `json:"kind"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
}

// ValidAt reports whether the token may still be consumed at the given
// instant. The boundary is strict: at exactly ExpiresAt the token is expired.
func (t *VerificationToken) ValidAt(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}

package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// NewVerificationCode returns a uniform 6-digit code in [100000, 999999].
// Collisions across users are acceptable: lookup is by value and kind.
func NewVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}

// NewResetToken returns a globally-unique opaque token (128-bit, printable).
func NewResetToken() string {
	return uuid.NewString()
}

package services

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"learnbox/internal/models"
)

type tokenServiceFixture struct {
	svc    *tokenService
	users  *stubUserRepo
	tokens *stubTokenRepo
	mail   *stubMailer
	now    time.Time
}

func newTokenServiceFixture(t *testing.T, invalidatePrevious bool) *tokenServiceFixture {
	t.Helper()
	f := &tokenServiceFixture{
		users:  newStubUserRepo(),
		tokens: newStubTokenRepo(),
		mail:   &stubMailer{},
		now:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = &tokenService{
		users:              f.users,
		tokens:             f.tokens,
		emails:             f.mail,
		auth:               newTestAuthService(f.users),
		verificationTTL:    15 * time.Minute,
		resetTTL:           time.Hour,
		invalidatePrevious: invalidatePrevious,
		frontendURL:        "http://localhost:5173",
		log:                zap.NewNop(),
		now:                func() time.Time { return f.now },
	}
	return f
}

func (f *tokenServiceFixture) addUser(t *testing.T, username, email string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: email, PasswordHash: "$2a$10$x"}
	require.NoError(t, f.users.Create(u))
	return u
}

func (f *tokenServiceFixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func TestIssueEmailVerification(t *testing.T) {
	f := newTokenServiceFixture(t, false)
	alice := f.addUser(t, "alice", "alice@example.com")

	rec, err := f.svc.IssueEmailVerification(alice)
	require.NoError(t, err)

	code, convErr := strconv.Atoi(rec.Token)
	require.NoError(t, convErr)
	assert.GreaterOrEqual(t, code, 100000)
	assert.LessOrEqual(t, code, 999999)

	assert.Equal(t, f.now.Add(15*time.Minute), rec.ExpiresAt)
	assert.False(t, rec.Used)
	assert.NotNil(t, f.tokens.get(rec.ID))

	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "alice@example.com", f.mail.sent[0].to)
	assert.Equal(t, rec.Token, f.mail.sent[0].body)
}

func TestIssueEmailVerification_DispatchFailureKeepsRecord(t *testing.T) {
	f := newTokenServiceFixture(t, false)
	f.mail.fail = errors.New("smtp down")
	alice := f.addUser(t, "alice", "alice@example.com")

	rec, err := f.svc.IssueEmailVerification(alice)
	require.Error(t, err)
	require.NotNil(t, rec)
	assert.NotNil(t, f.tokens.get(rec.ID), "token must stay persisted when the email fails")
}

func TestConfirmEmail_SingleUse(t *testing.T) {
	f := newTokenServiceFixture(t, false)
	alice := f.addUser(t, "alice", "alice@example.com")
	rec, err := f.svc.IssueEmailVerification(alice)
	require.NoError(t, err)

	user, err := f.svc.ConfirmEmail(rec.Token)
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)

	_, err = f.svc.ConfirmEmail(rec.Token)
	assert.ErrorIs(t, err, ErrTokenUsed)
}

func TestConfirmEmail_UnknownCode(t *testing.T) {
	f := newTokenServiceFixture(t, false)
	_, err := f.svc.ConfirmEmail("000000")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConfirmEmail_ExpiryBoundary(t *testing.T) {
	f := newTokenServiceFixture(t, false)
	alice := f.addUser(t, "alice", "alice@example.com")
	rec, err := f.svc.IssueEmailVerification(alice)
	require.NoError(t, err)

	// exactly at expires_at the token is already expired
	f.advance(15 * time.Minute)
	_, err = f.svc.ConfirmEmail(rec.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestConfirmEmail_ExpiredAfterWindow(t *testing.T) {
	f := newTokenServiceFixture(t, false)
	alice := f.addUser(t, "alice", "alice@example.com")
	rec, err := f.svc.IssueEmailVerification(alice)
	require.NoError(t, err)

	f.advance(16 * time.Minute)
	_, err = f.svc.ConfirmEmail(rec.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestConfirmEmail_UsedWinsOverExpired(t *testing.T) {
	f := newTokenServiceFixture(t, false)
	alice := f.addUser(t, "alice", "alice@example.com")
	rec, err := f.svc.IssueEmailVerification(alice)
	require.NoError(t, err)

	_, err = f.svc.ConfirmEmail(rec.Token)
	require.NoError(t, err)

	f.advance(time.Hour)
	_, err = f.svc.ConfirmEmail(rec.Token)
	assert.ErrorIs(t, err, ErrTokenUsed, "already-used is the more informative message")
}

func TestIssue_InvalidatePrevious(t *testing.T) {
	f := newTokenServiceFixture(t, true)
	alice := f.addUser(t, "alice", "alice@example.com")

	first, err := f.svc.IssueEmailVerification(alice)
	require.NoError(t, err)
	second, err := f.svc.IssueEmailVerification(alice)
	require.NoError(t, err)

	assert.True(t, f.tokens.get(first.ID).Used, "older token is invalidated on reissue")
	assert.False(t, f.tokens.get(second.ID).Used)
}

func TestIssue_MultipleOutstandingByDefault(t *testing.T) {
	f := newTokenServiceFixture(t, false)
	alice := f.addUser(t, "alice", "alice@example.com")

	first, err := f.svc.IssueEmailVerification(alice)
	require.NoError(t, err)
	_, err = f.svc.IssueEmailVerification(alice)
	require.NoError(t, err)

	assert.False(t, f.tokens.get(first.ID).Used, "resent codes keep working by default")
}

func TestPasswordResetFlow(t *testing.T) {
	f := newTokenServiceFixture(t, false)
	bob := f.addUser(t, "bob", "bob@example.com")

	require.NoError(t, f.svc.RequestReset("bob@example.com"))
	require.Len(t, f.mail.sent, 1)
	assert.Contains(t, f.mail.sent[0].body, "http://localhost:5173/reset-password?token=")

	rec, err := f.tokens.GetByValue(lastToken(t, f.tokens), models.TokenKindPasswordReset)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, f.now.Add(time.Hour), rec.ExpiresAt)

	require.NoError(t, f.svc.ResetPassword(rec.Token, "brand-new-pass"))

	updated, err := f.users.GetByID(bob.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("brand-new-pass")))

	err = f.svc.ResetPassword(rec.Token, "another-new-pass")
	assert.ErrorIs(t, err, ErrTokenUsed)
}

func TestResetPassword_WeakPasswordDoesNotConsume(t *testing.T) {
	f := newTokenServiceFixture(t, false)
	bob := f.addUser(t, "bob", "bob@example.com")
	rec, err := f.svc.IssuePasswordReset(bob)
	require.NoError(t, err)

	err = f.svc.ResetPassword(rec.Token, "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	assert.False(t, f.tokens.get(rec.ID).Used, "rejected password must not burn the token")
}

func TestRequestReset_UnknownEmailIsSilent(t *testing.T) {
	f := newTokenServiceFixture(t, false)

	require.NoError(t, f.svc.RequestReset("nobody@example.com"))
	assert.Empty(t, f.mail.sent)
}

func TestResendVerification_VerifiedOrUnknownIsSilent(t *testing.T) {
	f := newTokenServiceFixture(t, false)
	alice := f.addUser(t, "alice", "alice@example.com")
	require.NoError(t, f.users.MarkEmailVerified(alice.ID))

	require.NoError(t, f.svc.ResendVerification("alice@example.com"))
	require.NoError(t, f.svc.ResendVerification("nobody@example.com"))
	assert.Empty(t, f.mail.sent)
}

func lastToken(t *testing.T, repo *stubTokenRepo) string {
	t.Helper()
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var value string
	var maxID int64
	for id, tok := range repo.tokens {
		if id >= maxID {
			maxID = id
			value = tok.Token
		}
	}
	require.NotEmpty(t, value)
	return value
}

package services

import (
	"strings"
	"sync"

	"learnbox/internal/models"
)

// in-memory repositories and mailer shared by the service tests

type stubUserRepo struct {
	mu     sync.Mutex
	users  map[int]*models.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[int]*models.User{}, nextID: 1}
}

func (r *stubUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	user.IsActive = true
	cpy := *user
	r.users[user.ID] = &cpy
	return nil
}

func (r *stubUserRepo) GetByID(id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cpy := *u
	return &cpy, nil
}

func (r *stubUserRepo) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cpy := *u
			return &cpy, nil
		}
	}
	return nil, nil
}

func (r *stubUserRepo) ExistsByEmail(email string) (bool, error) {
	u, _ := r.GetByEmail(email)
	return u != nil, nil
}

func (r *stubUserRepo) ExistsByUsername(username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) UpdatePassword(userID int, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (r *stubUserRepo) MarkEmailVerified(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.EmailVerified = true
	}
	return nil
}

type stubTokenRepo struct {
	mu     sync.Mutex
	tokens map[int64]*models.VerificationToken
	nextID int64
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{tokens: map[int64]*models.VerificationToken{}, nextID: 1}
}

func (r *stubTokenRepo) Create(token *models.VerificationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = r.nextID
	r.nextID++
	cpy := *token
	r.tokens[token.ID] = &cpy
	return nil
}

func (r *stubTokenRepo) GetByValue(value string, kind models.TokenKind) (*models.VerificationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.VerificationToken
	for _, t := range r.tokens {
		if t.Token == value && t.Kind == kind {
			if latest == nil || t.CreatedAt.After(latest.CreatedAt) {
				latest = t
			}
		}
	}
	if latest == nil {
		return nil, nil
	}
	cpy := *latest
	return &cpy, nil
}

func (r *stubTokenRepo) Consume(id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok || t.Used {
		return false, nil
	}
	t.Used = true
	return true, nil
}

func (r *stubTokenRepo) InvalidatePending(userID int, kind models.TokenKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == userID && t.Kind == kind && !t.Used {
			t.Used = true
		}
	}
	return nil
}

func (r *stubTokenRepo) get(id int64) *models.VerificationToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[id]; ok {
		cpy := *t
		return &cpy
	}
	return nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type stubMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

func (m *stubMailer) SendVerificationCode(email, username, code string) error {
	if m.fail != nil {
		return m.fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: email, subject: "verification", body: code})
	return nil
}

func (m *stubMailer) SendPasswordReset(email, username, resetLink string) error {
	if m.fail != nil {
		return m.fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: email, subject: "reset", body: resetLink})
	return nil
}

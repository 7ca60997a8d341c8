package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/accountkit/accountkit/internal/model"
	"github.com/accountkit/accountkit/internal/validation"
)

// Memory is an in-process UserRepository. It enforces the same
// contract as the SQL implementation, including authoritative
// uniqueness at the persist boundary, and is what tests inject
// instead of branching on a global test flag.
type Memory struct {
	mu     sync.Mutex
	users  map[string]model.User  // by ID, stored by value
	tokens map[string]model.Token // by token string
}

func NewMemory() *Memory {
	return &Memory{
		users:  make(map[string]model.User),
		tokens: make(map[string]model.Token),
	}
}

func (m *Memory) Persist(ctx context.Context, user *model.User, rules validation.RuleSet) error {
	err := validation.Validate(ctx, user, rules, m)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Re-check uniqueness under the lock; this is the authoritative
	// check, mirroring a database unique constraint.
	for _, field := range []string{validation.FieldUsername, validation.FieldEmail} {
		if !m.uniqueLocked(field, fieldOf(user, field), user.ID) {
			return validation.Errors{{Field: field, Rule: validation.RuleUnique}}
		}
	}

	if user.IsNew() {
		user.ID = uuid.New().String()
		user.CreatedAt = time.Now()
	} else if _, ok := m.users[user.ID]; !ok {
		return ErrUserNotFound
	}

	stored := *user
	stored.Password = ""
	stored.PasswordConfirmation = ""
	m.users[user.ID] = stored
	return nil
}

func (m *Memory) ByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (m *Memory) ByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *Memory) ByConfirmationCode(_ context.Context, code string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ConfirmationCode == code {
			u := u
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *Memory) MarkConfirmed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Confirmed = true
	m.users[id] = u
	return nil
}

func (m *Memory) SetResetToken(_ context.Context, id, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}

	for key, t := range m.tokens {
		if t.UserID == id && !t.IsUsed() {
			delete(m.tokens, key)
		}
	}
	m.tokens[token] = model.Token{
		ID:        uuid.New().String(),
		UserID:    id,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (m *Memory) ConsumeResetToken(_ context.Context, token string) (*model.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tokens[token]
	if !ok || !t.IsValid() {
		return nil, ErrTokenNotFound
	}
	now := time.Now()
	t.UsedAt = &now
	m.tokens[token] = t
	return &t, nil
}

func (m *Memory) SetPasswordHash(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	m.users[id] = u

	for key, t := range m.tokens {
		if t.UserID == id && !t.IsUsed() {
			delete(m.tokens, key)
		}
	}
	return nil
}

func (m *Memory) OriginalPasswordHash(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return "", ErrUserNotFound
	}
	return u.PasswordHash, nil
}

func (m *Memory) IsUnique(_ context.Context, field, value, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.uniqueLocked(field, value, excludeID), nil
}

func (m *Memory) uniqueLocked(field, value, excludeID string) bool {
	if value == "" {
		return true
	}
	for _, u := range m.users {
		if u.ID != excludeID && fieldOf(&u, field) == value {
			return false
		}
	}
	return true
}

func fieldOf(u *model.User, field string) string {
	switch field {
	case validation.FieldUsername:
		return u.Username
	case validation.FieldEmail:
		return u.Email
	default:
		return ""
	}
}

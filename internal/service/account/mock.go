package account

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type mockAccount struct {
	id       string
	password string
}

// MockService implements Service in memory.
type MockService struct {
	mu       sync.Mutex
	accounts map[string]*mockAccount
	signOuts []string
	emails   []string
	updates  []string

	// Err, when set, is returned by every call except CurrentUser.
	Err error
	// UpdateCredentialErr, when set, is returned by UpdateCredential.
	UpdateCredentialErr error
}

// NewMockService creates an empty mock.
func NewMockService() *MockService {
	return &MockService{accounts: make(map[string]*mockAccount)}
}

func (m *MockService) SignUp(ctx context.Context, email, password string, seed ProfileSeed) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	email = normalizeEmail(email)
	if _, exists := m.accounts[email]; exists {
		return nil, ErrEmailTaken
	}
	acc := &mockAccount{id: uuid.NewString(), password: password}
	m.accounts[email] = acc
	return mockSession(acc.id, email), nil
}

func (m *MockService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	email = normalizeEmail(email)
	acc, ok := m.accounts[email]
	if !ok || acc.password != password {
		return nil, ErrInvalidCredentials
	}
	return mockSession(acc.id, email), nil
}

func (m *MockService) SignOut(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.signOuts = append(m.signOuts, userID)
	return nil
}

func (m *MockService) SendMagicLink(ctx context.Context, email string) error {
	return m.recordEmail("magic_link:" + normalizeEmail(email))
}

func (m *MockService) ResetPassword(ctx context.Context, email string) error {
	return m.recordEmail("password_reset:" + normalizeEmail(email))
}

func (m *MockService) recordEmail(entry string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.emails = append(m.emails, entry)
	return nil
}

func (m *MockService) UpdateCredential(ctx context.Context, userID, newPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updates = append(m.updates, userID)
	if m.UpdateCredentialErr != nil {
		return m.UpdateCredentialErr
	}
	if m.Err != nil {
		return m.Err
	}
	for _, acc := range m.accounts {
		if acc.id == userID {
			acc.password = newPassword
		}
	}
	return nil
}

func (m *MockService) CurrentUser(ctx context.Context) (*User, error) {
	return CurrentUser(ctx)
}

// CredentialUpdates returns the user IDs passed to UpdateCredential.
func (m *MockService) CredentialUpdates() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.updates...)
}

// SignOuts returns the user IDs passed to SignOut.
func (m *MockService) SignOuts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.signOuts...)
}

// Emails returns the recorded email requests as "kind:address".
func (m *MockService) Emails() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.emails...)
}

func mockSession(id, email string) *Session {
	return &Session{
		IDToken:      "mock-id-token-" + id,
		RefreshToken: "mock-refresh-token-" + id,
		ExpiresIn:    3600,
		User:         User{ID: id, Email: email},
	}
}

// Compile-time interface check
var _ Service = (*MockService)(nil)

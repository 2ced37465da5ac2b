package auth

import (
	"context"
)

// MockVerifier returns a fixed user or error.
type MockVerifier struct {
	User  *User
	Error error
}

// Verify returns the configured user or error.
func (m *MockVerifier) Verify(_ context.Context, _ string) (*User, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	return m.User, nil
}

// TestUser returns a standard test user.
func TestUser() *User {
	return &User{
		UID:           "test-user-123",
		Email:         "jane@example.com",
		EmailVerified: true,
	}
}

var _ Verifier = (*MockVerifier)(nil)

package profile

import (
	"context"
	"sync"
	"time"
)

// MockProfileService implements Service for unit tests and the in-memory backend.
type MockProfileService struct {
	mu       sync.RWMutex
	profiles map[string]*Profile

	// Err, when set, is returned by every call.
	Err error

	getCalls    int
	updateCalls int
	lastUpdate  UpdateParams
}

// NewMockProfileService creates a new mock service.
func NewMockProfileService() *MockProfileService {
	return &MockProfileService{
		profiles: make(map[string]*Profile),
	}
}

func (m *MockProfileService) Create(ctx context.Context, userID string, params CreateParams) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if _, exists := m.profiles[userID]; exists {
		return nil, ErrAlreadyExists
	}

	p := newProfile(userID, params, time.Now().UTC())
	m.profiles[userID] = p
	return p.clone(), nil
}

func (m *MockProfileService) Get(ctx context.Context, userID string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.getCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	p, exists := m.profiles[userID]
	if !exists {
		return nil, ErrNotFound
	}
	return p.clone(), nil
}

func (m *MockProfileService) Update(ctx context.Context, userID string, params UpdateParams) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateCalls++
	m.lastUpdate = params
	if m.Err != nil {
		return nil, m.Err
	}
	p, exists := m.profiles[userID]
	if !exists {
		return nil, ErrNotFound
	}

	next := p.clone()
	params.apply(next, time.Now().UTC())
	m.profiles[userID] = next
	return next.clone(), nil
}

func (m *MockProfileService) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if _, exists := m.profiles[userID]; !exists {
		return ErrNotFound
	}
	delete(m.profiles, userID)
	return nil
}

// GetCalls returns how many times Get was called.
func (m *MockProfileService) GetCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getCalls
}

// UpdateCalls returns how many times Update was called.
func (m *MockProfileService) UpdateCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.updateCalls
}

// LastUpdate returns the params of the most recent Update call.
func (m *MockProfileService) LastUpdate() UpdateParams {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUpdate
}

// Clear removes all profiles (useful for test cleanup).
func (m *MockProfileService) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = make(map[string]*Profile)
}

// Compile-time interface check
var _ Service = (*MockProfileService)(nil)

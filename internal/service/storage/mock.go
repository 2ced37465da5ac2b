package storage

import (
	"context"
	"sync"
)

// Object is an uploaded object held by MockStore.
type Object struct {
	Path        string
	Data        []byte
	ContentType string
}

// UploadCall records one Upload invocation.
type UploadCall struct {
	Path      string
	Size      int
	Overwrite bool
}

// MockStore implements Store in memory.
type MockStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Object
	calls   []UploadCall

	// Err, when set, is returned by Upload.
	Err error
}

// NewMockStore creates an empty store whose public URLs start with baseURL.
func NewMockStore(baseURL string) *MockStore {
	if baseURL == "" {
		baseURL = "http://localhost:8080/files"
	}
	return &MockStore{baseURL: baseURL, objects: make(map[string]Object)}
}

func (m *MockStore) Upload(ctx context.Context, path string, data []byte, contentType string, opts UploadOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, UploadCall{Path: path, Size: len(data), Overwrite: opts.Overwrite})
	if m.Err != nil {
		return m.Err
	}
	if err := validatePath(path); err != nil {
		return err
	}
	if _, exists := m.objects[path]; exists && !opts.Overwrite {
		return ErrAlreadyExists
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[path] = Object{Path: path, Data: buf, ContentType: contentType}
	return nil
}

func (m *MockStore) PublicURL(path string) string {
	return joinURL(m.baseURL, path)
}

// Object returns the stored object at path.
func (m *MockStore) Object(path string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[path]
	return o, ok
}

// Calls returns the recorded Upload calls.
func (m *MockStore) Calls() []UploadCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]UploadCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Compile-time interface check
var _ Store = (*MockStore)(nil)

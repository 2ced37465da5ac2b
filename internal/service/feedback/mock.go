package feedback

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockFeedbackService implements Service in memory.
type MockFeedbackService struct {
	mu    sync.RWMutex
	items []*Feedback

	// Err, when set, is returned by Insert and List.
	Err error
}

// NewMockFeedbackService creates an empty mock.
func NewMockFeedbackService() *MockFeedbackService {
	return &MockFeedbackService{}
}

func (m *MockFeedbackService) Insert(ctx context.Context, userID string, params InsertParams) (*Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	f := newFeedback(userID, params, time.Now().UTC())
	m.items = append(m.items, f)
	c := *f
	return &c, nil
}

func (m *MockFeedbackService) List(ctx context.Context, userID string, params ListParams) ([]Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]Feedback, 0)
	for _, f := range m.items {
		if f.UserID == userID && params.After.Before(f.CreatedAt, f.ID) {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

// Items returns a copy of the stored feedback in insertion order.
func (m *MockFeedbackService) Items() []Feedback {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Feedback, len(m.items))
	for i, f := range m.items {
		out[i] = *f
	}
	return out
}

// Compile-time interface check
var _ Service = (*MockFeedbackService)(nil)

package upload

import "sync"

// Selection tracks the persisted value of a file field, the pending file and
// its preview. A rejected file never replaces what is displayed.
type Selection struct {
	mu        sync.Mutex
	policy    Policy
	persisted string
	pending   *File
	preview   *Preview
	gen       uint64
}

// NewSelection creates a selection showing persisted (may be empty).
func NewSelection(policy Policy, persisted string) *Selection {
	return &Selection{policy: policy, persisted: persisted}
}

// Select validates f. On rejection the pending file and its preview are
// dropped and the error is returned. On acceptance the preview is decoded in
// the background and delivered on the returned channel.
func (s *Selection) Select(f *File) (<-chan Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if err := s.policy.Check(f); err != nil {
		s.pending = nil
		s.preview = nil
		return nil, err
	}
	s.pending = f
	s.preview = nil

	gen := s.gen
	out := make(chan Preview, 1)
	go func() {
		p := BuildPreview(f)
		s.mu.Lock()
		if s.gen == gen {
			s.preview = &p
		}
		s.mu.Unlock()
		out <- p
		close(out)
	}()
	return out, nil
}

// Clear drops the pending file and preview.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.pending = nil
	s.preview = nil
}

// Pending returns the accepted file awaiting upload, or nil.
func (s *Selection) Pending() *File {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Preview returns the decoded preview once available.
func (s *Selection) Preview() (Preview, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preview == nil {
		return Preview{}, false
	}
	return *s.preview, true
}

// Displayed returns the preview payload when ready, otherwise the persisted value.
func (s *Selection) Displayed() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preview != nil && s.preview.Payload != "" {
		return s.preview.Payload
	}
	return s.persisted
}

// Commit records url as the persisted value and clears the pending selection.
func (s *Selection) Commit(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.persisted = url
	s.pending = nil
	s.preview = nil
}

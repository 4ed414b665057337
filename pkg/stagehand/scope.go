package stagehand

import (
	"io"
	"sync"
)

// Scope collects cleanup handles a view acquires while it is on screen:
// event subscriptions, extra resource loads, timers. Drain releases them in
// reverse order of registration. A Scope can be reused after Drain.
type Scope struct {
	mu      sync.Mutex
	handles []func()
}

// Add registers a cleanup function.
func (s *Scope) Add(release func()) {
	if release == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handles = append(s.handles, release)
}

// AddCloser registers an io.Closer. Close errors are ignored.
func (s *Scope) AddCloser(c io.Closer) {
	if c == nil {
		return
	}
	s.Add(func() { _ = c.Close() })
}

// Len returns the number of pending handles.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Drain runs and forgets every registered handle, last first.
func (s *Scope) Drain() {
	s.mu.Lock()
	handles := s.handles
	s.handles = nil
	s.mu.Unlock()

	for i := len(handles) - 1; i >= 0; i-- {
		handles[i]()
	}
}

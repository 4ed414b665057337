package router

// Stack is the back-navigation history of one group. The last element is
// the current top, the only entry that may be attached.
type Stack[T comparable] struct {
	entries []T
}

// NewStack creates a new empty navigation stack.
func NewStack[T comparable]() *Stack[T] {
	return &Stack[T]{
		entries: make([]T, 0),
	}
}

// Push adds a new entry on top.
func (s *Stack[T]) Push(entry T) {
	s.entries = append(s.entries, entry)
}

// Pop removes and returns the top entry. ok is false if the stack is empty.
func (s *Stack[T]) Pop() (entry T, ok bool) {
	if len(s.entries) == 0 {
		return entry, false
	}
	entry = s.entries[len(s.entries)-1]
	var zero T
	s.entries[len(s.entries)-1] = zero
	s.entries = s.entries[:len(s.entries)-1]
	return entry, true
}

// Peek returns the top entry without removing it.
func (s *Stack[T]) Peek() (entry T, ok bool) {
	if len(s.entries) == 0 {
		return entry, false
	}
	return s.entries[len(s.entries)-1], true
}

// Contains reports whether entry is anywhere on the stack.
func (s *Stack[T]) Contains(entry T) bool {
	for _, e := range s.entries {
		if e == entry {
			return true
		}
	}
	return false
}

// Remove deletes every occurrence of entry and reports whether any was found.
func (s *Stack[T]) Remove(entry T) bool {
	found := false
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e == entry {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	var zero T
	for i := len(kept); i < len(s.entries); i++ {
		s.entries[i] = zero
	}
	s.entries = kept
	return found
}

// Entries returns a copy of the stack, bottom first.
func (s *Stack[T]) Entries() []T {
	out := make([]T, len(s.entries))
	copy(out, s.entries)
	return out
}

// IsEmpty returns true if the stack has no entries.
func (s *Stack[T]) IsEmpty() bool {
	return len(s.entries) == 0
}

// Len returns the number of entries in the stack.
func (s *Stack[T]) Len() int {
	return len(s.entries)
}

// Clear removes all entries from the stack.
func (s *Stack[T]) Clear() {
	clear(s.entries)
	s.entries = s.entries[:0]
}

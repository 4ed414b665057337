package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack(t *testing.T) {
	s := NewStack[int]()
	_, ok := s.Pop()
	assert.False(t, ok)
	_, ok = s.Peek()
	assert.False(t, ok)
	assert.True(t, s.IsEmpty())

	s.Push(1)
	s.Push(2)
	s.Push(3)
	s.Push(2)

	assert.True(t, s.Remove(2))
	assert.False(t, s.Remove(9))
	assert.Equal(t, []int{1, 3}, s.Entries())

	top, ok := s.Pop()
	assert.True(t, ok)
	assert.Equal(t, 3, top)
	assert.Equal(t, 1, s.Len())

	s.Clear()
	assert.True(t, s.IsEmpty())
}

func TestGroupsEnsureAndReset(t *testing.T) {
	g := NewGroups[string]()
	_, ok := g.Get("x")
	assert.False(t, ok)

	s := g.Ensure("x")
	assert.Same(t, s, g.Ensure("x"))
	assert.Equal(t, 1, g.Len())

	g.Reset()
	assert.Equal(t, 0, g.Len())
}

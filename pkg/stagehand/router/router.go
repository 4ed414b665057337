package router

import "sort"

// Groups holds one Stack per named group. A group's stack is created on the
// first push and lives until it is deleted; groups are never evicted.
//
// Groups is not safe for concurrent use; the owner serializes access.
type Groups[T comparable] struct {
	stacks map[string]*Stack[T]
}

// NewGroups creates an empty group registry.
func NewGroups[T comparable]() *Groups[T] {
	return &Groups[T]{
		stacks: make(map[string]*Stack[T]),
	}
}

// Get returns the stack for group, or nil when the group was never used.
func (g *Groups[T]) Get(group string) (*Stack[T], bool) {
	s, ok := g.stacks[group]
	return s, ok
}

// Ensure returns the stack for group, creating it if needed.
func (g *Groups[T]) Ensure(group string) *Stack[T] {
	s, ok := g.stacks[group]
	if !ok {
		s = NewStack[T]()
		g.stacks[group] = s
	}
	return s
}

// Push adds entry on top of group's stack and returns the previous top.
func (g *Groups[T]) Push(group string, entry T) (prev T, hadPrev bool) {
	s := g.Ensure(group)
	prev, hadPrev = s.Peek()
	s.Push(entry)
	return prev, hadPrev
}

// GroupOf returns the first group whose stack holds entry.
func (g *Groups[T]) GroupOf(entry T) (string, bool) {
	for _, name := range g.Names() {
		if g.stacks[name].Contains(entry) {
			return name, true
		}
	}
	return "", false
}

// Delete removes a group and its stack.
func (g *Groups[T]) Delete(group string) {
	delete(g.stacks, group)
}

// Names returns every group name in sorted order.
func (g *Groups[T]) Names() []string {
	names := make([]string, 0, len(g.stacks))
	for name := range g.stacks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of groups.
func (g *Groups[T]) Len() int {
	return len(g.stacks)
}

// Reset drops every group.
func (g *Groups[T]) Reset() {
	g.stacks = make(map[string]*Stack[T])
}

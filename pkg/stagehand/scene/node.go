// Package scene provides the minimal retained node tree that views, layers,
// the mask and the loading overlay are placed into.
//
// A Node has at most one parent. Children are ordered by attach order and
// the last child is drawn on top of its siblings.
package scene

import "go.uber.org/atomic"

// Rect is a node's bounds in screen coordinates.
type Rect struct {
	X, Y, W, H int32
}

// Contains reports whether the point lies inside the rect.
func (r Rect) Contains(x, y int32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// IsZero reports whether the rect has no area.
func (r Rect) IsZero() bool {
	return r.W <= 0 || r.H <= 0
}

// Node is a single element of the tree.
type Node struct {
	Name    string
	Bounds  Rect
	Payload any // host specific data, e.g. a texture

	parent    *Node
	children  []*Node
	active    atomic.Bool // flipped outside the layer lock
	destroyed bool
}

// New creates an active, detached node.
func New(name string) *Node {
	n := &Node{Name: name}
	n.active.Store(true)
	return n
}

// Parent returns the node's parent, or nil when detached.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the child list, bottom to top.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// LastChild returns the topmost child, or nil.
func (n *Node) LastChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1]
}

// AddChild attaches kid as the topmost child, detaching it from any previous parent.
func (n *Node) AddChild(kid *Node) {
	n.InsertChild(kid, len(n.children))
}

// InsertChild attaches kid at the given sibling index. Out of range indexes
// are clamped.
func (n *Node) InsertChild(kid *Node, at int) {
	if kid == nil || kid == n {
		return
	}
	kid.RemoveFromParent()
	if at < 0 {
		at = 0
	}
	if at > len(n.children) {
		at = len(n.children)
	}
	n.children = append(n.children, nil)
	copy(n.children[at+1:], n.children[at:])
	n.children[at] = kid
	kid.parent = n
}

// RemoveFromParent detaches the node. It is a no-op for detached nodes.
func (n *Node) RemoveFromParent() {
	if n.parent == nil {
		return
	}
	p := n.parent
	if i := p.IndexOf(n); i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	n.parent = nil
}

// IndexOf returns the sibling index of kid, or -1.
func (n *Node) IndexOf(kid *Node) int {
	for i, c := range n.children {
		if c == kid {
			return i
		}
	}
	return -1
}

// SiblingIndex returns the node's index under its parent, or -1 when detached.
func (n *Node) SiblingIndex() int {
	if n.parent == nil {
		return -1
	}
	return n.parent.IndexOf(n)
}

// SetSiblingIndex moves the node to index i among its siblings.
func (n *Node) SetSiblingIndex(i int) {
	if n.parent == nil {
		return
	}
	n.parent.InsertChild(n, i)
}

// FindChild returns the first direct child with the given name.
func (n *Node) FindChild(name string) *Node {
	for _, c := range n.children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Active reports whether the node is shown.
func (n *Node) Active() bool {
	return n.active.Load()
}

// SetActive shows or hides the node.
func (n *Node) SetActive(active bool) {
	n.active.Store(active)
}

// Destroyed reports whether Destroy has been called.
func (n *Node) Destroyed() bool {
	return n.destroyed
}

// Destroy detaches the node and marks it and its subtree as destroyed.
func (n *Node) Destroy() {
	if n.destroyed {
		return
	}
	n.RemoveFromParent()
	n.destroyed = true
	n.active.Store(false)
	for _, c := range n.children {
		c.parent = nil
		c.Destroy()
	}
	n.children = nil
}

// Walk visits n and its descendants depth first, bottom to top. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		c.Walk(fn)
	}
}

package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeChildren(t *testing.T) {
	t.Run("last attached child is topmost", func(t *testing.T) {
		root := New("root")
		a, b := New("a"), New("b")
		root.AddChild(a)
		root.AddChild(b)

		assert.Equal(t, b, root.LastChild())
		assert.Equal(t, 1, b.SiblingIndex())
		assert.Equal(t, root, a.Parent())
	})

	t.Run("reparenting detaches from the old parent", func(t *testing.T) {
		p1, p2 := New("p1"), New("p2")
		kid := New("kid")
		p1.AddChild(kid)
		p2.AddChild(kid)

		assert.Equal(t, 0, p1.ChildCount())
		assert.Equal(t, p2, kid.Parent())
	})

	t.Run("insert clamps index", func(t *testing.T) {
		root := New("root")
		a, b, c := New("a"), New("b"), New("c")
		root.AddChild(a)
		root.InsertChild(b, 99)
		root.InsertChild(c, -4)

		names := []string{}
		for _, n := range root.Children() {
			names = append(names, n.Name)
		}
		assert.Equal(t, []string{"c", "a", "b"}, names)
	})

	t.Run("set sibling index moves below a sibling", func(t *testing.T) {
		root := New("root")
		a, b, mask := New("a"), New("b"), New("mask")
		root.AddChild(a)
		root.AddChild(b)
		root.AddChild(mask)

		mask.SetSiblingIndex(root.IndexOf(b))
		assert.Equal(t, []*Node{a, mask, b}, root.Children())
	})
}

func TestNodeDestroy(t *testing.T) {
	root := New("root")
	parent := New("parent")
	kid := New("kid")
	root.AddChild(parent)
	parent.AddChild(kid)

	parent.Destroy()

	assert.True(t, parent.Destroyed())
	assert.True(t, kid.Destroyed())
	assert.Nil(t, parent.Parent())
	assert.Equal(t, 0, root.ChildCount())
	assert.False(t, parent.Active())

	// second call is harmless
	parent.Destroy()
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#10203040")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 0x10, G: 0x20, B: 0x30, A: 0x40}, c)

	c, err = ParseColor("ff8000")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 0xFF, G: 0x80, B: 0x00, A: 0xFF}, c)
	assert.Equal(t, "#FF8000FF", c.String())

	_, err = ParseColor("#12")
	assert.Error(t, err)
	_, err = ParseColor("#zzzzzz")
	assert.Error(t, err)
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 5, H: 5}
	assert.True(t, r.Contains(10, 10))
	assert.True(t, r.Contains(14, 14))
	assert.False(t, r.Contains(15, 10))
	assert.True(t, Rect{}.IsZero())
}

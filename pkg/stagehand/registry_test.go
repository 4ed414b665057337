package stagehand

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newView() View { return &BaseView{} }

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry().
		Register("Dialog", "common/dialog", newView).
		Extend("ConfirmDialog", "Dialog", newView).
		Extend("DangerDialog", "ConfirmDialog", newView).
		Register("Shop", "shop/main", newView)

	reg, err := r.Resolve("DangerDialog")
	require.NoError(t, err)
	assert.Equal(t, "DangerDialog", reg.Key)
	assert.Equal(t, "common/dialog", reg.TemplatePath)
	assert.NotNil(t, reg.Factory)

	reg, err = r.Resolve("Shop")
	require.NoError(t, err)
	assert.Equal(t, "shop/main", reg.TemplatePath)

	assert.Equal(t, []string{"ConfirmDialog", "DangerDialog", "Dialog", "Shop"}, r.Keys())
	assert.NoError(t, r.Validate())
}

func TestRegistryOverride(t *testing.T) {
	r := NewRegistry().
		Register("Dialog", "common/dialog", newView).
		Extend("Wide", "Dialog", newView)
	r.Register("Wide", "common/wide", newView)

	reg, err := r.Resolve("Wide")
	require.NoError(t, err)
	assert.Equal(t, "common/wide", reg.TemplatePath)
}

func TestRegistryExtendBeforeParent(t *testing.T) {
	r := NewRegistry().Extend("Child", "Parent", newView)

	_, err := r.Resolve("Child")
	assert.True(t, IsTemplatePathError(err))

	r.Register("Parent", "p", newView)
	reg, err := r.Resolve("Child")
	require.NoError(t, err)
	assert.Equal(t, "p", reg.TemplatePath)
}

func TestRegistryErrors(t *testing.T) {
	r := NewRegistry().
		Register("NoPath", "", newView).
		Extend("Orphan", "Missing", newView).
		Extend("LoopA", "LoopB", newView).
		Extend("LoopB", "LoopA", newView).
		Register("NoFactory", "x", nil)

	_, err := r.Resolve("Unknown")
	assert.ErrorIs(t, err, ErrUnknownView)

	_, err = r.Resolve("NoPath")
	var pathErr *TemplatePathError
	require.True(t, errors.As(err, &pathErr))
	assert.Equal(t, "NoPath", pathErr.Key)

	_, err = r.Resolve("Orphan")
	require.True(t, errors.As(err, &pathErr))
	assert.Equal(t, []string{"Orphan", "Missing"}, pathErr.Chain)

	_, err = r.Resolve("LoopA")
	assert.True(t, IsTemplatePathError(err))

	_, err = r.Resolve("NoFactory")
	assert.Error(t, err)
	assert.False(t, IsTemplatePathError(err))

	assert.Error(t, r.Validate())
}

func TestScopeDrainsInReverse(t *testing.T) {
	var s Scope
	var order []int

	s.Add(func() { order = append(order, 1) })
	s.Add(func() { order = append(order, 2) })
	s.Add(nil)
	s.AddCloser(closerFunc(func() error { order = append(order, 3); return errors.New("ignored") }))
	assert.Equal(t, 3, s.Len())

	s.Drain()
	assert.Equal(t, []int{3, 2, 1}, order)
	assert.Equal(t, 0, s.Len())

	s.Drain()
	assert.Len(t, order, 3)

	s.Add(func() { order = append(order, 4) })
	s.Drain()
	assert.Equal(t, []int{3, 2, 1, 4}, order)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestLoadErrorWraps(t *testing.T) {
	cause := errors.New("disk on fire")
	err := NewLoadError("load", "Shop", cause)

	assert.Equal(t, "stagehand: load Shop: disk on fire", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsLoadError(err))
	assert.False(t, IsLoadError(cause))
	assert.Equal(t, "stagehand: create Shop", NewLoadError("create", "Shop", nil).Error())
}

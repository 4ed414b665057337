package stagehand

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"

	"github.com/BrandonKowalski/stagehand/pkg/stagehand/constants"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/internal"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/layer"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/router"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/scene"
)

// entry is the single owner of a view instance and its node.
type entry struct {
	key  string
	path string
	view View
	node *scene.Node

	// guarded by Manager.mu
	holds  int  // callers between acquire and attach; not evictable
	doomed bool // closed with destroy while held; the last holder destroys it
}

// Manager opens, closes, stacks and caches views.
//
// Every view key has at most one live instance, owned by the cache. Group
// stacks hold references to cached views and never destroy them on their
// own. Loads of the same key share one loader call; loads of different keys
// run independently.
//
// Manager is safe for concurrent use. Lifecycle callbacks, animations and
// loader calls run without any Manager lock held.
type Manager struct {
	loader   Loader
	registry *Registry
	gate     InputGate
	root     *layer.Root
	logger   *slog.Logger

	mu      sync.Mutex
	cache   map[string]*entry
	lru     *internal.LRU
	groups  *router.Groups[View]
	pending map[string]int // callers waiting on an in-flight load
	loads   singleflight.Group

	gateMu     sync.Mutex
	blockDepth atomic.Int32

	loading loadingState

	maxSize             int
	enableLRU           bool
	defaultLayer        string
	clickToCloseDefault bool
	preloadKeys         []string
	preloadDelay        time.Duration
}

// NewManager wires a Manager to its collaborators. A nil gate is replaced
// by NopGate.
func NewManager(loader Loader, registry *Registry, gate InputGate, root *layer.Root, opts ...ManagerOption) (*Manager, error) {
	if loader == nil {
		return nil, ErrNilLoader
	}
	if registry == nil {
		return nil, errors.New("stagehand: nil registry")
	}
	if root == nil {
		return nil, errors.New("stagehand: nil layer root")
	}
	if gate == nil {
		gate = NopGate{}
	}

	m := &Manager{
		loader:       loader,
		registry:     registry,
		gate:         gate,
		root:         root,
		logger:       internal.GetLogger(),
		cache:        make(map[string]*entry),
		lru:          internal.NewLRU(),
		groups:       router.NewGroups[View](),
		pending:      make(map[string]int),
		maxSize:      constants.DefaultCacheSize,
		enableLRU:    true,
		defaultLayer: constants.DefaultLayer,
		preloadDelay: constants.DefaultPreloadDelay,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Root returns the layer root the manager places views into.
func (m *Manager) Root() *layer.Root {
	return m.root
}

func (m *Manager) resolveOptions(opts []OpenOption) OpenOptions {
	o := OpenOptions{
		Layer:            m.defaultLayer,
		ClickToCloseMask: m.clickToCloseDefault,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Layer == "" {
		o.Layer = m.defaultLayer
	}
	return o
}

// Open shows the view for key in its layer, loading it first if it is not
// cached. Input is blocked until OnEnter and the enter animation finish.
//
// A view paused below the top of a group stack leaves that stack and is
// shown on its own; the group's top is not touched. Opening the top of a
// group keeps it on the stack.
func (m *Manager) Open(ctx context.Context, key string, opts ...OpenOption) (View, error) {
	m.blockInput()
	defer m.unblockInput()

	o := m.resolveOptions(opts)
	e, err := m.acquireWithLoading(ctx, key, o)
	if err != nil {
		return nil, err
	}
	defer m.unhold(e)

	m.mu.Lock()
	if group, ok := m.groups.GroupOf(e.view); ok {
		s, _ := m.groups.Get(group)
		if top, _ := s.Peek(); top != e.view {
			s.Remove(e.view)
			e.view.Base().setGroup("")
			m.logger.Debug("View left its group to open on its own", "key", key, "group", group)
		}
	}
	m.mu.Unlock()

	if err := m.show(ctx, e, o); err != nil {
		return nil, err
	}
	return e.view, nil
}

// OpenAndPush opens the view for key on top of group's stack. The previous
// top plays its exit animation, is paused and detached, and stays on the
// stack for CloseAndPop.
func (m *Manager) OpenAndPush(ctx context.Context, key, group string, opts ...OpenOption) (View, error) {
	m.blockInput()
	defer m.unblockInput()

	o := m.resolveOptions(opts)
	e, err := m.acquireWithLoading(ctx, key, o)
	if err != nil {
		return nil, err
	}
	defer m.unhold(e)

	m.mu.Lock()
	if e.doomed {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotCached, key)
	}
	if old, ok := m.groups.GroupOf(e.view); ok {
		// a view lives on one stack at most; pushing again moves it
		s, _ := m.groups.Get(old)
		s.Remove(e.view)
	}
	prev, hadPrev := m.groups.Push(group, e.view)
	m.mu.Unlock()

	if hadPrev && prev != e.view {
		m.pause(ctx, prev)
	}

	e.view.Base().setGroup(group)
	if err := m.show(ctx, e, o); err != nil {
		return nil, err
	}
	return e.view, nil
}

// show attaches the view and runs its enter sequence. A view closed with
// destroy since it was acquired is not shown.
func (m *Manager) show(ctx context.Context, e *entry, o OpenOptions) error {
	m.mu.Lock()
	doomed := e.doomed
	m.mu.Unlock()
	if doomed {
		m.logger.Debug("View closed before it was shown", "key", e.key)
		return fmt.Errorf("%w: %s", ErrNotCached, e.key)
	}

	base := e.view.Base()

	if err := m.root.AddViewNode(e.node, o.Layer); err != nil {
		m.logger.Warn("View opened without a layer", "key", e.key, "layer", o.Layer, "error", err)
	}
	e.node.SetActive(true)
	base.setOptions(o)
	base.setState(stateActive)

	e.view.OnEnter(o.Args)
	m.animateEnter(ctx, e.view)
	return nil
}

// pause runs the exit animation of a stacked view, pauses it and detaches it
// without touching its cache entry.
func (m *Manager) pause(ctx context.Context, v View) {
	base := v.Base()
	if base.getState() != stateActive {
		return
	}
	m.animateExit(ctx, v)
	v.OnPause()
	base.setState(statePaused)
	m.root.RemoveViewNode(base.Node())
	base.Node().SetActive(false)
}

// resume re-attaches a paused view to the layer it was opened in.
func (m *Manager) resume(ctx context.Context, v View) {
	base := v.Base()
	o := base.Options()
	if err := m.root.AddViewNode(base.Node(), o.Layer); err != nil {
		m.logger.Warn("Cannot resume view", "key", base.Key(), "layer", o.Layer, "error", err)
	}
	base.Node().SetActive(true)

	if base.getState() == statePaused {
		v.OnResume()
	} else {
		v.OnEnter(o.Args)
	}
	base.setState(stateActive)
	m.animateEnter(ctx, v)
}

func (m *Manager) animateEnter(ctx context.Context, v View) {
	anim, ok := v.(EnterAnimator)
	if !ok {
		return
	}
	if err := anim.EnterAnimation(ctx); err != nil {
		m.logger.Warn("Enter animation failed", "key", v.Base().Key(), "error", err)
	}
}

func (m *Manager) animateExit(ctx context.Context, v View) {
	anim, ok := v.(ExitAnimator)
	if !ok {
		return
	}
	if err := anim.ExitAnimation(ctx); err != nil {
		m.logger.Warn("Exit animation failed", "key", v.Base().Key(), "error", err)
	}
}

// Close hides a view given by key or instance. With destroy, the view is
// also dropped from the cache, its node destroyed and its template
// released. Unknown views are logged and ignored.
//
// Closing the top of a group behaves like CloseAndPop for that group.
func (m *Manager) Close(ctx context.Context, target any, destroy bool) {
	e, ok := m.lookup(target)
	if !ok {
		m.logger.Warn("Close of a view that is not cached", "target", describe(target))
		return
	}

	if group := e.view.Base().Group(); group != "" {
		m.mu.Lock()
		s, found := m.groups.Get(group)
		var top View
		if found {
			top, _ = s.Peek()
		}
		m.mu.Unlock()

		if found && top == e.view {
			m.CloseAndPop(ctx, group, destroy)
			return
		}
		m.mu.Lock()
		if found {
			s.Remove(e.view)
		}
		m.mu.Unlock()
		e.view.Base().setGroup("")
	}

	m.blockInput()
	defer m.unblockInput()
	m.closeEntry(ctx, e, destroy, true)
}

// CloseAndPop closes the top of group's stack and resumes the view below
// it, if any.
func (m *Manager) CloseAndPop(ctx context.Context, group string, destroy bool) {
	m.mu.Lock()
	s, ok := m.groups.Get(group)
	if !ok || s.IsEmpty() {
		m.mu.Unlock()
		m.logger.Warn("Pop on a missing or empty group", "group", group)
		return
	}
	top, _ := s.Pop()
	next, hasNext := s.Peek()
	e := m.cache[top.Base().Key()]
	m.mu.Unlock()

	m.blockInput()
	defer m.unblockInput()

	top.Base().setGroup("")
	if e != nil && e.view == top {
		m.closeEntry(ctx, e, destroy, true)
	} else {
		m.closeDetached(ctx, top, true)
	}

	if hasNext {
		m.resume(ctx, next)
	}
}

// ClearStack closes every view on group's stack without animations and
// forgets the group.
func (m *Manager) ClearStack(group string, destroy bool) {
	m.mu.Lock()
	s, ok := m.groups.Get(group)
	if !ok {
		m.mu.Unlock()
		m.logger.Warn("Clear of an unknown group", "group", group)
		return
	}
	views := s.Entries()
	s.Clear()
	m.groups.Delete(group)
	m.mu.Unlock()

	ctx := context.Background()
	for i := len(views) - 1; i >= 0; i-- {
		v := views[i]
		v.Base().setGroup("")
		if e, ok := m.lookup(v); ok {
			m.closeEntry(ctx, e, destroy, false)
		} else {
			m.closeDetached(ctx, v, false)
		}
	}
}

// CloseAll closes every attached view without animations and clears every
// group stack.
func (m *Manager) CloseAll(destroy bool) {
	nodes := m.root.AttachedViews()

	m.mu.Lock()
	byNode := make(map[*scene.Node]*entry, len(m.cache))
	for _, e := range m.cache {
		byNode[e.node] = e
	}
	var stacked []View
	for _, name := range m.groups.Names() {
		s, _ := m.groups.Get(name)
		stacked = append(stacked, s.Entries()...)
	}
	m.groups.Reset()
	m.mu.Unlock()

	for _, v := range stacked {
		v.Base().setGroup("")
	}

	ctx := context.Background()
	for i := len(nodes) - 1; i >= 0; i-- {
		if e, ok := byNode[nodes[i]]; ok {
			m.closeEntry(ctx, e, destroy, false)
			continue
		}
		m.root.RemoveViewNode(nodes[i])
	}

	// paused views below the stack tops were never attached above
	for _, v := range stacked {
		if v.Base().getState() != statePaused {
			continue
		}
		if e, ok := m.lookup(v); ok {
			m.closeEntry(ctx, e, destroy, false)
		}
	}
}

// closeEntry runs the exit sequence for a cached view and optionally
// destroys it. An entry still held by an open in progress leaves the cache
// at once and is destroyed when the last hold is dropped.
func (m *Manager) closeEntry(ctx context.Context, e *entry, destroy, animate bool) {
	m.closeDetached(ctx, e.view, animate)

	if !destroy {
		return
	}

	m.mu.Lock()
	owned := m.cache[e.key] == e
	if owned {
		delete(m.cache, e.key)
		m.lru.Remove(e.key)
		if e.holds > 0 {
			e.doomed = true
			owned = false
		}
	}
	m.mu.Unlock()

	if owned {
		m.destroyEntry(e)
	}
}

// closeDetached runs the exit sequence of a view and detaches its node.
func (m *Manager) closeDetached(ctx context.Context, v View, animate bool) {
	base := v.Base()
	st := base.getState()

	if st == stateActive && animate {
		m.animateExit(ctx, v)
	}
	if st != stateClosed {
		v.OnExit()
		base.setState(stateClosed)
	}
	base.Scope().Drain()

	m.root.RemoveViewNode(base.Node())
	base.Node().SetActive(false)
}

func (m *Manager) destroyEntry(e *entry) {
	e.node.Destroy()
	m.loader.Release(e.path, false)
	m.logger.Debug("View destroyed", "key", e.key, "id", e.view.Base().ID())
}

// Preload instantiates and caches views without showing them. Every key is
// attempted; the failures are joined into the returned error.
func (m *Manager) Preload(ctx context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		e, err := m.acquire(ctx, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		m.unhold(e)
	}
	return errors.Join(errs...)
}

// StartPreload preloads the configured keys in the background after the
// configured delay. Failures are logged. It returns immediately.
func (m *Manager) StartPreload(ctx context.Context) {
	if len(m.preloadKeys) == 0 {
		return
	}
	keys := append([]string(nil), m.preloadKeys...)
	delay := m.preloadDelay

	go func() {
		if delay > 0 {
			t := time.NewTimer(delay)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
		if err := m.Preload(ctx, keys...); err != nil {
			m.logger.Error("Preload failed", "keys", keys, "error", err)
			return
		}
		m.logger.Debug("Preload finished", "keys", keys)
	}()
}

// Contains reports whether key is cached and currently attached to a layer.
func (m *Manager) Contains(key string) bool {
	m.mu.Lock()
	e, ok := m.cache[key]
	m.mu.Unlock()
	return ok && m.root.IsAttached(e.node)
}

// IsCached reports whether key has a live instance, attached or not.
func (m *Manager) IsCached(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.cache[key]
	return ok
}

// IsLoading reports whether a load for key is in flight.
func (m *Manager) IsLoading(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending[key] > 0
}

// Get returns the cached view for key without showing it.
func (m *Manager) Get(key string) (View, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.cache[key]
	if !ok {
		return nil, false
	}
	return e.view, true
}

// CachedKeys returns cached keys, least recently used first.
func (m *Manager) CachedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Keys()
}

// Stack returns the views on group's stack, bottom first.
func (m *Manager) Stack(group string) []View {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.groups.Get(group)
	if !ok {
		return nil
	}
	return s.Entries()
}

// Topmost returns the view that owns the topmost node in the layer tree.
func (m *Manager) Topmost() (View, bool) {
	node, _, ok := m.root.TopmostView()
	if !ok {
		return nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.cache {
		if e.node == node {
			return e.view, true
		}
	}
	return nil, false
}

// HandleMaskClick applies the mask tap policy to the topmost view: a
// grouped view is popped, any other view is closed. Views that did not opt
// in with WithClickToCloseMask are left alone.
func (m *Manager) HandleMaskClick(ctx context.Context) {
	if m.InputBlocked() {
		return
	}
	v, ok := m.Topmost()
	if !ok {
		return
	}
	base := v.Base()
	if !base.Options().ClickToCloseMask {
		m.logger.Debug("Mask click ignored", "key", base.Key())
		return
	}

	if group := base.Group(); group != "" {
		m.CloseAndPop(ctx, group, false)
		return
	}
	m.Close(ctx, v, false)
}

// InputBlocked reports whether a transition currently blocks input.
func (m *Manager) InputBlocked() bool {
	return m.blockDepth.Load() > 0
}

func (m *Manager) blockInput() {
	m.gateMu.Lock()
	defer m.gateMu.Unlock()
	if m.blockDepth.Inc() == 1 {
		m.gate.BlockAllPointerInput(true)
	}
}

func (m *Manager) unblockInput() {
	m.gateMu.Lock()
	defer m.gateMu.Unlock()
	if m.blockDepth.Dec() == 0 {
		m.gate.BlockAllPointerInput(false)
	}
}

// lookup finds the cache entry for a key or a view instance.
func (m *Manager) lookup(target any) (*entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch t := target.(type) {
	case string:
		e, ok := m.cache[t]
		return e, ok
	case View:
		e, ok := m.cache[t.Base().Key()]
		if !ok || e.view != t {
			return nil, false
		}
		return e, true
	default:
		return nil, false
	}
}

func describe(target any) string {
	switch t := target.(type) {
	case string:
		return t
	case View:
		return t.Base().Key()
	default:
		return fmt.Sprintf("%T", target)
	}
}

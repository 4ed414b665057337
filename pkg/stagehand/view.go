package stagehand

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/BrandonKowalski/stagehand/pkg/stagehand/scene"
)

// Lifecycle is the contract every view implements. The manager calls these
// without holding any lock, so implementations may call back into the
// manager.
type Lifecycle interface {
	OnEnter(args any)
	OnExit()
	OnPause()
	OnResume()
}

// View is a lifecycle-managed UI unit. Implementations embed BaseView and
// override the lifecycle methods they care about:
//
//	type ShopView struct {
//		stagehand.BaseView
//	}
//
//	func (v *ShopView) OnEnter(args any) { ... }
type View interface {
	Lifecycle
	Base() *BaseView
}

// EnterAnimator is implemented by views that animate in. The manager waits
// for it to return before releasing the input block.
type EnterAnimator interface {
	EnterAnimation(ctx context.Context) error
}

// ExitAnimator is implemented by views that animate out. It runs before
// OnExit and before the node is detached.
type ExitAnimator interface {
	ExitAnimation(ctx context.Context) error
}

type viewState int

const (
	stateClosed viewState = iota // not on screen, OnExit already ran or OnEnter never did
	stateActive                  // attached and entered
	statePaused                  // entered, then paused and detached by a push
)

// BaseView carries the state the manager keeps on each view. Its lifecycle
// methods do nothing.
type BaseView struct {
	mu      sync.Mutex
	key     string
	id      string
	node    *scene.Node
	options OpenOptions
	group   string
	state   viewState
	scope   Scope
}

// Base returns the embedded BaseView.
func (b *BaseView) Base() *BaseView {
	return b
}

func (b *BaseView) OnEnter(args any) {}
func (b *BaseView) OnExit()          {}
func (b *BaseView) OnPause()         {}
func (b *BaseView) OnResume()        {}

// Key returns the registry key the view was created for.
func (b *BaseView) Key() string {
	return b.key
}

// ID returns a unique identifier for this instance, used in logs.
func (b *BaseView) ID() string {
	return b.id
}

// Node returns the instantiated template node.
func (b *BaseView) Node() *scene.Node {
	return b.node
}

// Options returns the configuration the view was last opened with.
func (b *BaseView) Options() OpenOptions {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.options
}

// Group returns the group the view was pushed onto, or "" for views opened
// with Open.
func (b *BaseView) Group() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.group
}

// Scope returns the view's cleanup scope. Handles added to it are released
// when the view exits.
func (b *BaseView) Scope() *Scope {
	return &b.scope
}

func (b *BaseView) bind(key string, node *scene.Node) {
	b.key = key
	b.node = node
	b.id = uuid.NewString()
}

func (b *BaseView) setOptions(o OpenOptions) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.options = o
}

func (b *BaseView) setGroup(group string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.group = group
}

func (b *BaseView) setState(st viewState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = st
}

func (b *BaseView) getState() viewState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Package layer owns the fixed tree of named layers under a single root,
// the shared dimming mask and the loading overlay.
//
// Layers are direct children of the root in creation order, so a layer
// created later draws above every layer created before it. Inside a layer
// the last attached view is topmost. The mask always sits directly below
// the topmost view, in that view's layer, unless the layer opts out.
package layer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BrandonKowalski/stagehand/pkg/stagehand/constants"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/internal"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/scene"
)

// ErrUnknownLayer is returned when a layer name was never created.
var ErrUnknownLayer = errors.New("layer: unknown layer")

// Config describes one layer.
type Config struct {
	Name     string
	NeedMask bool // show the mask below this layer's topmost view
}

// Masked returns a Config for a layer that shows the mask.
func Masked(name string) Config {
	return Config{Name: name, NeedMask: true}
}

// Unmasked returns a Config for a layer that never shows the mask.
func Unmasked(name string) Config {
	return Config{Name: name}
}

// OverlayFactory materializes the loading overlay node.
type OverlayFactory func(ctx context.Context) (*scene.Node, error)

type layerEntry struct {
	name     string
	node     *scene.Node
	needMask bool
}

// Root is the layer tree. It is safe for concurrent use.
type Root struct {
	mu     sync.Mutex
	root   *scene.Node
	layers []*layerEntry
	byName map[string]*layerEntry

	mask *scene.Node

	overlayMu      sync.Mutex // serializes overlay creation
	overlay        *scene.Node
	overlayFactory OverlayFactory

	logger *slog.Logger
}

// Option configures a Root.
type Option func(*Root)

// WithLogger sets the logger used for warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Root) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMaskColor sets the mask's fill color.
func WithMaskColor(c scene.Color) Option {
	return func(r *Root) {
		r.mask.Payload = c
	}
}

// WithScreen sets the bounds used for the mask, which covers the screen.
func WithScreen(bounds scene.Rect) Option {
	return func(r *Root) {
		r.root.Bounds = bounds
		r.mask.Bounds = bounds
	}
}

// WithOverlayFactory sets how the loading overlay is created.
func WithOverlayFactory(f OverlayFactory) Option {
	return func(r *Root) {
		r.overlayFactory = f
	}
}

// New creates a Root on top of the given scene node. A nil node creates a
// fresh root.
func New(root *scene.Node, opts ...Option) *Root {
	if root == nil {
		root = scene.New("root")
	}

	mask := scene.New(constants.MaskNodeName)
	mask.Payload = scene.DefaultMaskColor
	mask.Bounds = root.Bounds
	mask.SetActive(false)

	r := &Root{
		root:   root,
		byName: make(map[string]*layerEntry),
		mask:   mask,
		logger: internal.GetLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Node returns the scene node all layers hang off.
func (r *Root) Node() *scene.Node {
	return r.root
}

// Mask returns the shared mask node.
func (r *Root) Mask() *scene.Node {
	return r.mask
}

// SetOverlayFactory replaces the loading overlay factory. An overlay that
// was already created is kept.
func (r *Root) SetOverlayFactory(f OverlayFactory) {
	r.overlayMu.Lock()
	defer r.overlayMu.Unlock()
	r.overlayFactory = f
}

// CreateLayers creates every layer not already present, in order. Calling it
// again with an existing name leaves that layer untouched.
func (r *Root) CreateLayers(configs ...Config) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cfg := range configs {
		if cfg.Name == "" {
			r.logger.Warn("Skipping layer with empty name")
			continue
		}
		if _, exists := r.byName[cfg.Name]; exists {
			continue
		}

		node := scene.New(cfg.Name)
		node.Bounds = r.root.Bounds
		entry := &layerEntry{name: cfg.Name, node: node, needMask: cfg.NeedMask}

		// keep the loading overlay above every layer when it lives on the root
		if r.overlay != nil && r.overlay.Parent() == r.root {
			r.root.InsertChild(node, r.root.IndexOf(r.overlay))
		} else {
			r.root.AddChild(node)
		}

		r.layers = append(r.layers, entry)
		r.byName[cfg.Name] = entry
		r.logger.Debug("Layer created", "layer", cfg.Name, "need_mask", cfg.NeedMask)
	}
}

// HasLayer reports whether a layer with the given name exists.
func (r *Root) HasLayer(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byName[name]
	return ok
}

// LayerNames returns the layer names bottom to top.
func (r *Root) LayerNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.layers))
	for _, l := range r.layers {
		names = append(names, l.name)
	}
	return names
}

// LayerNode returns the container node of a layer.
func (r *Root) LayerNode(name string) (*scene.Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return l.node, true
}

// AddViewNode attaches node as the topmost view of the named layer and
// repositions the mask. An unknown layer is logged and nothing changes.
func (r *Root) AddViewNode(node *scene.Node, layerName string) error {
	if node == nil {
		return fmt.Errorf("layer: nil node for layer %q", layerName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.byName[layerName]
	if !ok {
		r.logger.Warn("Cannot add view to unknown layer", "layer", layerName, "node", node.Name)
		return fmt.Errorf("%w: %q", ErrUnknownLayer, layerName)
	}

	l.node.AddChild(node)
	r.adjustMaskLocked()
	return nil
}

// RemoveViewNode detaches node from whatever layer holds it and repositions
// the mask.
func (r *Root) RemoveViewNode(node *scene.Node) {
	if node == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	node.RemoveFromParent()
	r.adjustMaskLocked()
}

// LayerOf returns the name of the layer node is attached to.
func (r *Root) LayerOf(node *scene.Node) (string, bool) {
	if node == nil {
		return "", false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.layerOfLocked(node)
}

func (r *Root) layerOfLocked(node *scene.Node) (string, bool) {
	parent := node.Parent()
	if parent == nil {
		return "", false
	}
	for _, l := range r.layers {
		if l.node == parent {
			return l.name, true
		}
	}
	return "", false
}

// IsAttached reports whether node currently sits in any layer.
func (r *Root) IsAttached(node *scene.Node) bool {
	_, ok := r.LayerOf(node)
	return ok
}

// AttachedViews returns every attached view node, bottom to top, excluding
// the mask and the loading overlay.
func (r *Root) AttachedViews() []*scene.Node {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*scene.Node
	for _, l := range r.layers {
		for _, c := range l.node.Children() {
			if r.isReserved(c) {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

// TopmostView returns the topmost view in the tree along with its layer.
func (r *Root) TopmostView() (*scene.Node, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.topmostLocked()
}

func (r *Root) topmostLocked() (*scene.Node, string, bool) {
	for i := len(r.layers) - 1; i >= 0; i-- {
		l := r.layers[i]
		children := l.node.Children()
		for j := len(children) - 1; j >= 0; j-- {
			if r.isReserved(children[j]) {
				continue
			}
			return children[j], l.name, true
		}
	}
	return nil, "", false
}

func (r *Root) isReserved(n *scene.Node) bool {
	return n == r.mask || (r.overlay != nil && n == r.overlay)
}

// AdjustMask re-applies the mask placement rules.
func (r *Root) AdjustMask() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adjustMaskLocked()
}

func (r *Root) adjustMaskLocked() {
	top, layerName, ok := r.topmostLocked()
	if !ok {
		r.hideMaskLocked()
		return
	}

	l := r.byName[layerName]
	if !l.needMask {
		r.hideMaskLocked()
		return
	}

	r.mask.RemoveFromParent()
	l.node.InsertChild(r.mask, l.node.IndexOf(top))
	r.mask.SetActive(true)
}

func (r *Root) hideMaskLocked() {
	r.mask.SetActive(false)
	r.mask.RemoveFromParent()
}

// MaskVisible reports whether the mask is shown.
func (r *Root) MaskVisible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mask.Active() && r.mask.Parent() != nil
}

// Walk visits the whole tree, bottom to top, while attach and detach are
// held off. Returning false from fn skips a node's children.
func (r *Root) Walk(fn func(*scene.Node) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.root.Walk(fn)
}

// Update runs fn while attach, detach and Walk are held off, so fn can move
// or restyle attached nodes without racing a painter.
func (r *Root) Update(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}

// MaskHit reports whether a tap at (x, y) lands on the mask: the mask is
// shown, the point is outside the topmost view and no loading overlay is up.
// Views with zero bounds cover the whole screen.
func (r *Root) MaskHit(x, y int32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.mask.Active() || r.mask.Parent() == nil {
		return false
	}
	if r.overlay != nil && r.overlay.Active() && r.overlay.Parent() != nil {
		return false
	}
	if !r.mask.Bounds.IsZero() && !r.mask.Bounds.Contains(x, y) {
		return false
	}

	top, _, ok := r.topmostLocked()
	if !ok {
		return false
	}
	return !top.Bounds.IsZero() && !top.Bounds.Contains(x, y)
}

// ShowLoading shows the loading overlay as the topmost child of the named
// layer, or above every layer when layerName is empty. The overlay is
// created on first use; creation errors are returned to the caller.
func (r *Root) ShowLoading(ctx context.Context, layerName string) error {
	overlay, err := r.ensureOverlay(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	parent := r.root
	if layerName != "" {
		l, ok := r.byName[layerName]
		if !ok {
			r.logger.Warn("Cannot show loading on unknown layer", "layer", layerName)
			return fmt.Errorf("%w: %q", ErrUnknownLayer, layerName)
		}
		parent = l.node
	}

	parent.AddChild(overlay)
	overlay.SetActive(true)
	return nil
}

// PrepareLoading creates the loading overlay without showing it, so a later
// ShowLoading does not run the factory.
func (r *Root) PrepareLoading(ctx context.Context) error {
	_, err := r.ensureOverlay(ctx)
	return err
}

// HideLoading hides and detaches the overlay. The overlay is kept for reuse.
func (r *Root) HideLoading() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.overlay == nil {
		return
	}
	r.overlay.SetActive(false)
	r.overlay.RemoveFromParent()
}

// LoadingVisible reports whether the overlay is shown.
func (r *Root) LoadingVisible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlay != nil && r.overlay.Active() && r.overlay.Parent() != nil
}

func (r *Root) ensureOverlay(ctx context.Context) (*scene.Node, error) {
	r.overlayMu.Lock()
	defer r.overlayMu.Unlock()

	r.mu.Lock()
	existing := r.overlay
	r.mu.Unlock()
	if existing != nil {
		return existing, nil
	}

	var node *scene.Node
	if r.overlayFactory != nil {
		var err error
		node, err = r.overlayFactory(ctx)
		if err != nil {
			return nil, fmt.Errorf("layer: create loading overlay: %w", err)
		}
	}
	if node == nil {
		node = scene.New(constants.LoadingNodeName)
		node.Bounds = r.root.Bounds
	}

	r.mu.Lock()
	r.overlay = node
	r.mu.Unlock()
	return node, nil
}

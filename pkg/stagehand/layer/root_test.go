package layer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonKowalski/stagehand/pkg/stagehand/scene"
)

func newTestRoot(t *testing.T, opts ...Option) (*Root, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts = append([]Option{WithLogger(logger)}, opts...)
	r := New(nil, opts...)
	r.CreateLayers(Masked("ui"), Masked("popup"), Unmasked("tip"))
	return r, &buf
}

func TestCreateLayers(t *testing.T) {
	t.Run("creation order is z-order", func(t *testing.T) {
		r, _ := newTestRoot(t)
		assert.Equal(t, []string{"ui", "popup", "tip"}, r.LayerNames())
		children := r.Node().Children()
		require.Len(t, children, 3)
		assert.Equal(t, "tip", children[2].Name)
	})

	t.Run("second call with same name is a no-op", func(t *testing.T) {
		r, _ := newTestRoot(t)
		before, _ := r.LayerNode("ui")

		r.CreateLayers(Unmasked("ui"), Masked("system"))

		after, _ := r.LayerNode("ui")
		assert.Same(t, before, after)
		assert.Equal(t, []string{"ui", "popup", "tip", "system"}, r.LayerNames())
		assert.Equal(t, 4, r.Node().ChildCount())
	})

	t.Run("empty names are skipped", func(t *testing.T) {
		r, buf := newTestRoot(t)
		r.CreateLayers(Config{})
		assert.Len(t, r.LayerNames(), 3)
		assert.Contains(t, buf.String(), "empty name")
	})
}

func TestAddViewNode(t *testing.T) {
	t.Run("unknown layer warns and does nothing", func(t *testing.T) {
		r, buf := newTestRoot(t)
		view := scene.New("view")

		err := r.AddViewNode(view, "nope")

		assert.True(t, errors.Is(err, ErrUnknownLayer))
		assert.Nil(t, view.Parent())
		assert.Contains(t, buf.String(), "level=WARN")
		assert.False(t, r.MaskVisible())
	})

	t.Run("attached view becomes topmost with mask below", func(t *testing.T) {
		r, _ := newTestRoot(t)
		a, b := scene.New("a"), scene.New("b")
		require.NoError(t, r.AddViewNode(a, "ui"))
		require.NoError(t, r.AddViewNode(b, "ui"))

		top, layerName, ok := r.TopmostView()
		require.True(t, ok)
		assert.Same(t, b, top)
		assert.Equal(t, "ui", layerName)

		ui, _ := r.LayerNode("ui")
		assert.Equal(t, []*scene.Node{a, r.Mask(), b}, ui.Children())
		assert.True(t, r.MaskVisible())
	})

	t.Run("mask follows the topmost layer", func(t *testing.T) {
		r, _ := newTestRoot(t)
		a, p := scene.New("a"), scene.New("p")
		require.NoError(t, r.AddViewNode(a, "ui"))
		require.NoError(t, r.AddViewNode(p, "popup"))

		popup, _ := r.LayerNode("popup")
		assert.Same(t, popup, r.Mask().Parent())
		assert.Equal(t, 0, r.Mask().SiblingIndex())

		r.RemoveViewNode(p)
		ui, _ := r.LayerNode("ui")
		assert.Same(t, ui, r.Mask().Parent())
		assert.Equal(t, r.Mask().SiblingIndex()+1, a.SiblingIndex())
	})

	t.Run("unmasked topmost layer hides the mask", func(t *testing.T) {
		r, _ := newTestRoot(t)
		require.NoError(t, r.AddViewNode(scene.New("a"), "ui"))
		require.NoError(t, r.AddViewNode(scene.New("toast"), "tip"))

		assert.False(t, r.MaskVisible())
		assert.Nil(t, r.Mask().Parent())
	})

	t.Run("no views hides the mask", func(t *testing.T) {
		r, _ := newTestRoot(t)
		a := scene.New("a")
		require.NoError(t, r.AddViewNode(a, "ui"))
		r.RemoveViewNode(a)

		_, _, ok := r.TopmostView()
		assert.False(t, ok)
		assert.False(t, r.MaskVisible())
	})
}

func TestTopmostSkipsReservedNodes(t *testing.T) {
	r, _ := newTestRoot(t)
	a := scene.New("a")
	require.NoError(t, r.AddViewNode(a, "popup"))
	require.NoError(t, r.ShowLoading(context.Background(), "popup"))

	top, _, ok := r.TopmostView()
	require.True(t, ok)
	assert.Same(t, a, top)

	views := r.AttachedViews()
	assert.Equal(t, []*scene.Node{a}, views)
}

func TestLayerOf(t *testing.T) {
	r, _ := newTestRoot(t)
	a := scene.New("a")
	assert.False(t, r.IsAttached(a))

	require.NoError(t, r.AddViewNode(a, "tip"))
	name, ok := r.LayerOf(a)
	assert.True(t, ok)
	assert.Equal(t, "tip", name)
}

func TestLoadingOverlay(t *testing.T) {
	t.Run("created once and reused", func(t *testing.T) {
		calls := 0
		r, _ := newTestRoot(t, WithOverlayFactory(func(ctx context.Context) (*scene.Node, error) {
			calls++
			return scene.New("spinner"), nil
		}))
		ctx := context.Background()

		require.NoError(t, r.ShowLoading(ctx, ""))
		assert.True(t, r.LoadingVisible())
		assert.Equal(t, "spinner", r.Node().LastChild().Name)

		r.HideLoading()
		assert.False(t, r.LoadingVisible())

		require.NoError(t, r.ShowLoading(ctx, "ui"))
		assert.Equal(t, 1, calls)
	})

	t.Run("factory error propagates", func(t *testing.T) {
		boom := errors.New("boom")
		r, _ := newTestRoot(t, WithOverlayFactory(func(ctx context.Context) (*scene.Node, error) {
			return nil, boom
		}))

		err := r.ShowLoading(context.Background(), "")
		assert.ErrorIs(t, err, boom)
		assert.False(t, r.LoadingVisible())
	})

	t.Run("layers created later stay below a root overlay", func(t *testing.T) {
		r, _ := newTestRoot(t)
		require.NoError(t, r.ShowLoading(context.Background(), ""))

		r.CreateLayers(Masked("system"))

		last := r.Node().LastChild()
		assert.NotEqual(t, "system", last.Name)
	})

	t.Run("prepare builds without showing", func(t *testing.T) {
		calls := 0
		r, _ := newTestRoot(t, WithOverlayFactory(func(ctx context.Context) (*scene.Node, error) {
			calls++
			return scene.New("spinner"), nil
		}))
		ctx := context.Background()

		require.NoError(t, r.PrepareLoading(ctx))
		assert.False(t, r.LoadingVisible())
		require.NoError(t, r.ShowLoading(ctx, ""))
		assert.True(t, r.LoadingVisible())
		assert.Equal(t, 1, calls)
	})

	t.Run("hide without overlay is harmless", func(t *testing.T) {
		r, _ := newTestRoot(t)
		r.HideLoading()
		assert.False(t, r.LoadingVisible())
	})
}

func TestMaskOptions(t *testing.T) {
	color := scene.Color{R: 1, G: 2, B: 3, A: 4}
	bounds := scene.Rect{W: 640, H: 480}
	r := New(nil, WithMaskColor(color), WithScreen(bounds))

	assert.Equal(t, color, r.Mask().Payload)
	assert.Equal(t, bounds, r.Mask().Bounds)
}

func TestMaskHit(t *testing.T) {
	r, _ := newTestRoot(t, WithScreen(scene.Rect{W: 800, H: 600}))

	assert.False(t, r.MaskHit(10, 10), "no view, no mask")

	dialog := scene.New("dialog")
	dialog.Bounds = scene.Rect{X: 200, Y: 150, W: 400, H: 300}
	require.NoError(t, r.AddViewNode(dialog, "ui"))

	assert.True(t, r.MaskHit(10, 10))
	assert.False(t, r.MaskHit(300, 200), "inside the view")
	assert.False(t, r.MaskHit(900, 10), "off screen")

	fullscreen := scene.New("fullscreen")
	require.NoError(t, r.AddViewNode(fullscreen, "popup"))
	assert.False(t, r.MaskHit(10, 10), "zero bounds cover the screen")
	r.RemoveViewNode(fullscreen)

	require.NoError(t, r.ShowLoading(context.Background(), ""))
	assert.False(t, r.MaskHit(10, 10), "overlay swallows taps")
	r.HideLoading()
	assert.True(t, r.MaskHit(10, 10))

	tip := scene.New("tip")
	tip.Bounds = scene.Rect{W: 10, H: 10}
	require.NoError(t, r.AddViewNode(tip, "tip"))
	assert.False(t, r.MaskHit(500, 500), "unmasked top layer")
}

func TestUpdateExcludesWalk(t *testing.T) {
	r, _ := newTestRoot(t)
	view := scene.New("view")
	require.NoError(t, r.AddViewNode(view, "ui"))

	inside := make(chan struct{})
	release := make(chan struct{})
	go r.Update(func() {
		close(inside)
		<-release
		view.Bounds.X = 42
	})
	<-inside

	walked := make(chan int32, 1)
	go r.Walk(func(n *scene.Node) bool {
		if n == view {
			walked <- n.Bounds.X
		}
		return true
	})

	select {
	case <-walked:
		t.Fatal("walk ran during update")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	assert.Equal(t, int32(42), <-walked)
}

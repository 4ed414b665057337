package loader

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopBlueprint = `
name = "shop"
bounds = { x = 0, y = 0, w = 640, h = 480 }

[[children]]
name = "title"
bounds = { x = 20, y = 20, w = 600, h = 40 }
props = { text = "Shop" }

[[children]]
name = "list"
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"views/shop.toml":   {Data: []byte(shopBlueprint)},
		"views/broken.toml": {Data: []byte("name = ")},
		"views/blank.toml":  {Data: []byte("")},
	}
}

func TestLoadAndInstantiate(t *testing.T) {
	l := New(testFS())

	tmpl, err := l.Load(context.Background(), "views/shop.toml")
	require.NoError(t, err)

	node, err := tmpl.Instantiate()
	require.NoError(t, err)
	assert.Equal(t, "shop", node.Name)
	assert.Equal(t, int32(640), node.Bounds.W)
	require.Equal(t, 2, node.ChildCount())

	title := node.FindChild("title")
	require.NotNil(t, title)
	assert.Equal(t, map[string]any{"text": "Shop"}, title.Payload)

	// every instantiation is a fresh tree
	again, _ := tmpl.Instantiate()
	assert.NotSame(t, node, again)
}

func TestLoadErrors(t *testing.T) {
	l := New(testFS())
	ctx := context.Background()

	_, err := l.Load(ctx, "views/missing.toml")
	assert.Error(t, err)

	_, err = l.Load(ctx, "views/broken.toml")
	assert.Error(t, err)
	assert.Equal(t, 0, l.Refs("views/broken.toml"))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = l.Load(cancelled, "views/shop.toml")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBlankBlueprintIsNamedAfterPath(t *testing.T) {
	l := New(testFS())
	tmpl, err := l.Load(context.Background(), "views/blank.toml")
	require.NoError(t, err)
	node, _ := tmpl.Instantiate()
	assert.Equal(t, "views/blank.toml", node.Name)
}

func TestReferenceCounting(t *testing.T) {
	var buf bytes.Buffer
	l := New(testFS()).WithLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	ctx := context.Background()
	path := "views/shop.toml"

	first, err := l.Load(ctx, path)
	require.NoError(t, err)
	second, err := l.Load(ctx, path)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 2, l.Refs(path))

	l.Release(path, false)
	assert.Equal(t, 1, l.Refs(path))

	l.Release(path, false)
	assert.Equal(t, 0, l.Refs(path))

	l.Release(path, false)
	assert.Contains(t, buf.String(), "no references")

	_, _ = l.Load(ctx, path)
	_, _ = l.Load(ctx, path)
	l.Release(path, true)
	assert.Equal(t, 0, l.Refs(path))
}

func TestConcurrentLoadsShareOneParse(t *testing.T) {
	l := New(testFS())
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	results := make([]any, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tmpl, err := l.Load(ctx, "views/shop.toml")
			if err == nil {
				results[i] = tmpl
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, results[0], results[i])
	}
	assert.Equal(t, n, l.Refs("views/shop.toml"))
}

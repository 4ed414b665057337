package stagehand

import (
	"context"
	"fmt"

	"github.com/BrandonKowalski/stagehand/pkg/stagehand/layer"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/scene"
)

// Template is a loaded blueprint that can be turned into live nodes.
type Template interface {
	Instantiate() (*scene.Node, error)
}

// Loader loads templates by path and tracks references to them. Each
// successful Load takes one reference that a later Release gives back.
// Concurrent loads of the same path must be safe.
type Loader interface {
	Load(ctx context.Context, path string) (Template, error)
	Release(path string, force bool)
}

// InputGate toggles all pointer input on or off.
type InputGate interface {
	BlockAllPointerInput(on bool)
}

// NopGate is an InputGate that does nothing.
type NopGate struct{}

func (NopGate) BlockAllPointerInput(bool) {}

// TemplateOverlay builds a loading overlay factory that instantiates the
// template at path through loader. The template reference is held for the
// life of the process, since the overlay is never destroyed.
func TemplateOverlay(loader Loader, path string) layer.OverlayFactory {
	return func(ctx context.Context) (*scene.Node, error) {
		tmpl, err := loader.Load(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		node, err := tmpl.Instantiate()
		if err != nil {
			loader.Release(path, false)
			return nil, fmt.Errorf("instantiate overlay %s: %w", path, err)
		}
		return node, nil
	}
}

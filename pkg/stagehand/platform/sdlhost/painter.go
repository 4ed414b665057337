package sdlhost

import (
	"log/slog"

	"github.com/veandco/go-sdl2/img"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/BrandonKowalski/stagehand/pkg/stagehand/internal"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/layer"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/scene"
)

const defaultImageCacheSize = 16

// Painter draws the layer tree. It understands these node payloads:
//
//   - scene.Color fills the node bounds (the mask, dimmed overlays)
//   - *sdl.Texture is stretched over the node bounds
//   - *Spinner draws a rotating spinner
//   - map[string]any, as produced by blueprint props, with "color" (hex
//     string) and "image" (file path) keys
//
// Inactive nodes and their children are skipped.
type Painter struct {
	renderer *sdl.Renderer
	images   *textureCache
	logger   *slog.Logger
}

func NewPainter(renderer *sdl.Renderer) *Painter {
	return &Painter{
		renderer: renderer,
		images:   newTextureCache(defaultImageCacheSize),
		logger:   internal.GetLogger(),
	}
}

// Paint draws every active node, bottom to top.
func (p *Painter) Paint(root *layer.Root) {
	root.Walk(func(n *scene.Node) bool {
		if !n.Active() {
			return false
		}
		p.draw(n)
		return true
	})
}

func (p *Painter) draw(n *scene.Node) {
	dst := toSDLRect(n.Bounds)

	switch v := n.Payload.(type) {
	case scene.Color:
		p.fill(v, dst)
	case *sdl.Texture:
		p.renderer.Copy(v, nil, dst)
	case *Spinner:
		v.Draw(p.renderer, dst)
	case map[string]any:
		if hex, ok := v["color"].(string); ok {
			c, err := scene.ParseColor(hex)
			if err != nil {
				p.logger.Warn("Bad node color", "node", n.Name, "color", hex, "error", err)
			} else {
				p.fill(c, dst)
			}
		}
		if path, ok := v["image"].(string); ok {
			if tex := p.image(path); tex != nil {
				p.renderer.Copy(tex, nil, dst)
			}
		}
	}
}

func (p *Painter) fill(c scene.Color, dst *sdl.Rect) {
	p.renderer.SetDrawColor(c.R, c.G, c.B, c.A)
	p.renderer.FillRect(dst)
}

func (p *Painter) image(path string) *sdl.Texture {
	if tex := p.images.Get(path); tex != nil {
		return tex
	}
	tex, err := img.LoadTexture(p.renderer, path)
	if err != nil {
		p.logger.Warn("Failed to load image", "path", path, "error", err)
		return nil
	}
	p.images.Set(path, tex)
	return tex
}

// Close frees cached image textures.
func (p *Painter) Close() {
	p.images.Destroy()
}

// toSDLRect maps a zero rect to nil, which SDL reads as the whole target.
func toSDLRect(r scene.Rect) *sdl.Rect {
	if r.IsZero() {
		return nil
	}
	return &sdl.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

// textureCache keeps recently drawn image textures, destroying the least
// recently used one when full.
type textureCache struct {
	textures map[string]*sdl.Texture
	order    *internal.LRU
	maxSize  int
}

func newTextureCache(maxSize int) *textureCache {
	return &textureCache{
		textures: make(map[string]*sdl.Texture),
		order:    internal.NewLRU(),
		maxSize:  maxSize,
	}
}

func (c *textureCache) Get(key string) *sdl.Texture {
	tex, ok := c.textures[key]
	if !ok {
		return nil
	}
	c.order.Touch(key)
	return tex
}

func (c *textureCache) Set(key string, tex *sdl.Texture) {
	if old, ok := c.textures[key]; ok && old != tex {
		old.Destroy()
	}
	c.textures[key] = tex
	c.order.Touch(key)

	for c.order.Len() > c.maxSize {
		oldest, _ := c.order.Oldest()
		c.order.Remove(oldest)
		if t, ok := c.textures[oldest]; ok {
			t.Destroy()
			delete(c.textures, oldest)
		}
	}
}

func (c *textureCache) Destroy() {
	for _, tex := range c.textures {
		tex.Destroy()
	}
	c.textures = make(map[string]*sdl.Texture)
	c.order.Clear()
}

package sdlhost

import (
	"context"
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
	"github.com/veandco/go-sdl2/ttf"

	"github.com/BrandonKowalski/stagehand/pkg/stagehand/constants"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/internal/locale"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/internal/raster"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/layer"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/scene"
)

// Spinner is a pre-rasterized spinner texture drawn with a rotation that
// follows the SDL tick clock.
type Spinner struct {
	texture *sdl.Texture
	size    int32
	period  uint64 // ms per turn
}

// NewSpinner rasterizes the built-in spinner icon into a size x size texture.
func NewSpinner(renderer *sdl.Renderer, size int32) (*Spinner, error) {
	rgba, err := raster.Spinner(int(size))
	if err != nil {
		return nil, err
	}

	surface, err := sdl.CreateRGBSurfaceWithFormat(0, size, size, 32, sdl.PIXELFORMAT_ABGR8888)
	if err != nil {
		return nil, fmt.Errorf("sdlhost: spinner surface: %w", err)
	}
	defer surface.Free()

	pixels := surface.Pixels()
	rowBytes := int(size) * 4
	for y := 0; y < int(size); y++ {
		copy(pixels[y*int(surface.Pitch):y*int(surface.Pitch)+rowBytes], rgba.Pix[y*rgba.Stride:y*rgba.Stride+rowBytes])
	}

	tex, err := renderer.CreateTextureFromSurface(surface)
	if err != nil {
		return nil, fmt.Errorf("sdlhost: spinner texture: %w", err)
	}
	tex.SetBlendMode(sdl.BLENDMODE_BLEND)

	return &Spinner{texture: tex, size: size, period: 900}, nil
}

// Draw renders the spinner centered in dst, or centered on the target when
// dst is nil.
func (s *Spinner) Draw(renderer *sdl.Renderer, dst *sdl.Rect) {
	var cx, cy int32
	if dst != nil {
		cx, cy = dst.X+dst.W/2, dst.Y+dst.H/2
	} else {
		w, h, _ := renderer.GetOutputSize()
		cx, cy = w/2, h/2
	}
	angle := float64(sdl.GetTicks64()%s.period) / float64(s.period) * 360
	rect := &sdl.Rect{X: cx - s.size/2, Y: cy - s.size/2, W: s.size, H: s.size}
	renderer.CopyEx(s.texture, nil, rect, angle, nil, sdl.FLIP_NONE)
}

func (s *Spinner) Destroy() {
	s.texture.Destroy()
}

// OverlayOptions configures NewOverlay.
type OverlayOptions struct {
	Font        *ttf.Font   // caption font; nil draws no caption
	Locale      string      // caption language
	Caption     string      // caption message ID, locale.Loading by default
	Dim         scene.Color // backdrop color
	SpinnerSize int32
}

// Overlay holds the loading overlay's textures. They are built by
// NewOverlay on the render thread; Factory only assembles scene nodes around
// them, so it is safe to call from whichever goroutine shows the overlay.
type Overlay struct {
	bounds  scene.Rect
	dim     scene.Color
	size    int32
	spinner *Spinner
	caption *sdl.Texture
	capW    int32
	capH    int32
}

// NewOverlay rasterizes the spinner and renders the localized caption for a
// full-window loading overlay. Call it from the thread that called Init.
func NewOverlay(w *Window, opts OverlayOptions) (*Overlay, error) {
	if opts.Caption == "" {
		opts.Caption = locale.Loading
	}
	if opts.SpinnerSize <= 0 {
		opts.SpinnerSize = 64
	}
	if opts.Dim == (scene.Color{}) {
		opts.Dim = scene.DefaultMaskColor
	}

	spinner, err := NewSpinner(w.Renderer, opts.SpinnerSize)
	if err != nil {
		return nil, err
	}
	o := &Overlay{
		bounds:  w.Bounds(),
		dim:     opts.Dim,
		size:    opts.SpinnerSize,
		spinner: spinner,
	}
	if opts.Font == nil {
		return o, nil
	}

	text := locale.Default().Text(opts.Locale, opts.Caption, nil)
	surface, err := opts.Font.RenderUTF8Blended(text, sdl.Color{R: 255, G: 255, B: 255, A: 255})
	if err != nil {
		spinner.Destroy()
		return nil, fmt.Errorf("sdlhost: render caption: %w", err)
	}
	defer surface.Free()

	tex, err := w.Renderer.CreateTextureFromSurface(surface)
	if err != nil {
		spinner.Destroy()
		return nil, fmt.Errorf("sdlhost: caption texture: %w", err)
	}
	o.caption, o.capW, o.capH = tex, surface.W, surface.H
	return o, nil
}

// Factory returns the layer.OverlayFactory that lays out a dimmed backdrop,
// the spinner and the caption under it.
func (o *Overlay) Factory() layer.OverlayFactory {
	return func(ctx context.Context) (*scene.Node, error) {
		node := scene.New(constants.LoadingNodeName)
		node.Bounds = o.bounds
		node.Payload = o.dim

		spin := scene.New("spinner")
		spin.Bounds = scene.Rect{
			X: o.bounds.W/2 - o.size/2,
			Y: o.bounds.H/2 - o.size/2,
			W: o.size,
			H: o.size,
		}
		spin.Payload = o.spinner
		node.AddChild(spin)

		if o.caption == nil {
			return node, nil
		}
		caption := scene.New("caption")
		caption.Bounds = scene.Rect{
			X: o.bounds.W/2 - o.capW/2,
			Y: spin.Bounds.Y + spin.Bounds.H + 16,
			W: o.capW,
			H: o.capH,
		}
		caption.Payload = o.caption
		node.AddChild(caption)
		return node, nil
	}
}

// Destroy frees the overlay's textures.
func (o *Overlay) Destroy() {
	o.spinner.Destroy()
	if o.caption != nil {
		o.caption.Destroy()
	}
}

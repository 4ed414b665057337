// Package sdlhost runs a stagehand Manager on an SDL2 window: it paints the
// layer tree, gates pointer input during transitions and turns taps on the
// mask into Manager.HandleMaskClick.
//
// Drawing must stay on the thread that called Init, so Run belongs there.
// Manager operations block on loads and animations; run them on their own
// goroutines to keep frames coming.
package sdlhost

import (
	"context"
	"fmt"

	"github.com/veandco/go-sdl2/img"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/veandco/go-sdl2/ttf"

	"github.com/BrandonKowalski/stagehand/pkg/stagehand"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/scene"
)

// Init starts the SDL video, image and font subsystems.
func Init() error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("sdlhost: init sdl: %w", err)
	}
	if err := img.Init(img.INIT_PNG | img.INIT_JPG); err != nil {
		sdl.Quit()
		return fmt.Errorf("sdlhost: init img: %w", err)
	}
	if err := ttf.Init(); err != nil {
		img.Quit()
		sdl.Quit()
		return fmt.Errorf("sdlhost: init ttf: %w", err)
	}
	return nil
}

// Quit shuts the subsystems started by Init down.
func Quit() {
	ttf.Quit()
	img.Quit()
	sdl.Quit()
}

// Host owns the per-frame loop for one window.
type Host struct {
	Window  *Window
	Gate    *Gate
	Painter *Painter

	manager    *stagehand.Manager
	background scene.Color
}

// New creates a Host drawing manager's layer tree into w. The gate should be
// the one the manager was built with.
func New(w *Window, manager *stagehand.Manager, gate *Gate) *Host {
	return &Host{
		Window:     w,
		Gate:       gate,
		Painter:    NewPainter(w.Renderer),
		manager:    manager,
		background: scene.Color{A: 255},
	}
}

// SetBackground sets the color the frame is cleared to.
func (h *Host) SetBackground(c scene.Color) {
	h.background = c
}

// Dispatch handles one event and reports whether it was consumed. Pointer
// events are swallowed while input is gated; a left button release on the
// mask outside the topmost view starts HandleMaskClick on its own
// goroutine. SDL
// synthesizes mouse events for touches, so finger events need no handling.
func (h *Host) Dispatch(ctx context.Context, ev sdl.Event) bool {
	if isPointerEvent(ev) && h.Gate != nil && h.Gate.Blocked() {
		return true
	}

	btn, ok := ev.(*sdl.MouseButtonEvent)
	if !ok || btn.Type != sdl.MOUSEBUTTONUP || btn.Button != sdl.BUTTON_LEFT {
		return false
	}
	if !h.manager.Root().MaskHit(btn.X, btn.Y) {
		return false
	}
	// blocks through exit animations
	go h.manager.HandleMaskClick(ctx)
	return true
}

// Frame clears the window, paints the tree and presents it.
func (h *Host) Frame() {
	r := h.Window.Renderer
	r.SetDrawColor(h.background.R, h.background.G, h.background.B, h.background.A)
	r.Clear()
	h.Painter.Paint(h.manager.Root())
	h.Window.Present()
}

// Run pumps events and draws frames until the window is closed or ctx is
// done. Events not consumed by Dispatch are passed to onEvent, which may be
// nil.
func (h *Host) Run(ctx context.Context, onEvent func(sdl.Event)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
			if _, quit := ev.(*sdl.QuitEvent); quit {
				return nil
			}
			if h.Dispatch(ctx, ev) {
				continue
			}
			if onEvent != nil {
				onEvent(ev)
			}
		}

		h.Frame()
	}
}

// Close frees the painter's textures and the window.
func (h *Host) Close() {
	h.Painter.Close()
	h.Window.Close()
}

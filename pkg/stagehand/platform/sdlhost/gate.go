package sdlhost

import (
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/atomic"

	"github.com/BrandonKowalski/stagehand/pkg/stagehand"
)

var pointerEvents = []uint32{
	sdl.MOUSEMOTION,
	sdl.MOUSEBUTTONDOWN,
	sdl.MOUSEBUTTONUP,
	sdl.MOUSEWHEEL,
	sdl.FINGERDOWN,
	sdl.FINGERUP,
	sdl.FINGERMOTION,
}

// Gate blocks pointer input by telling SDL to drop mouse and touch events
// at the source. Events already queued are filtered by Blocked.
type Gate struct {
	blocked atomic.Bool
}

var _ stagehand.InputGate = (*Gate)(nil)

func NewGate() *Gate {
	return &Gate{}
}

// BlockAllPointerInput turns SDL pointer event delivery off or on.
func (g *Gate) BlockAllPointerInput(on bool) {
	state := sdl.ENABLE
	if on {
		state = sdl.IGNORE
	}
	for _, t := range pointerEvents {
		sdl.EventState(t, state)
	}
	g.blocked.Store(on)
}

func (g *Gate) Blocked() bool {
	return g.blocked.Load()
}

func isPointerEvent(ev sdl.Event) bool {
	switch ev.(type) {
	case *sdl.MouseButtonEvent, *sdl.MouseMotionEvent, *sdl.MouseWheelEvent, *sdl.TouchFingerEvent:
		return true
	}
	return false
}

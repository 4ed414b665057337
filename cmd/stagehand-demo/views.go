package main

import (
	"context"
	"time"

	"github.com/BrandonKowalski/stagehand/pkg/stagehand"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/layer"
)

const slideDuration = 180 * time.Millisecond

// stage gives views the layer root once Setup has built it.
type stage struct {
	root *layer.Root
}

type menuView struct {
	stagehand.BaseView
}

func (v *menuView) OnEnter(args any) {
	stagehand.GetLogger().Info("Menu shown", "id", v.ID())
}

func (v *menuView) OnResume() {
	stagehand.GetLogger().Info("Menu resumed", "id", v.ID())
}

// settingsView slides in from the right and back out.
type settingsView struct {
	stagehand.BaseView
	stage  *stage
	homeX  int32
	placed bool
}

func (v *settingsView) OnEnter(args any) {
	if !v.placed {
		v.stage.root.Update(func() { v.homeX = v.Node().Bounds.X })
		v.placed = true
	}
	ticker := time.NewTicker(5 * time.Second)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				stagehand.GetLogger().Debug("Settings still open", "id", v.ID())
			case <-done:
				return
			}
		}
	}()
	v.Scope().Add(ticker.Stop)
	v.Scope().Add(func() { close(done) })
}

func (v *settingsView) OnPause() {
	stagehand.GetLogger().Info("Settings paused", "id", v.ID())
}

func (v *settingsView) EnterAnimation(ctx context.Context) error {
	return slide(ctx, v.stage.root, v, 1024, v.homeX)
}

func (v *settingsView) ExitAnimation(ctx context.Context) error {
	var from int32
	v.stage.root.Update(func() { from = v.Node().Bounds.X })
	return slide(ctx, v.stage.root, v, from, 1024)
}

type dialogView struct {
	stagehand.BaseView
	confirm bool
}

func (v *dialogView) OnEnter(args any) {
	if msg, ok := args.(string); ok {
		stagehand.GetLogger().Info("Dialog shown", "message", msg, "confirm", v.confirm)
	}
}

func (v *dialogView) OnExit() {
	stagehand.GetLogger().Info("Dialog closed", "id", v.ID())
}

// slide moves the view's node, and its children, horizontally from one x to
// another. Each step happens inside root.Update so the painter never sees a
// half-moved view.
func slide(ctx context.Context, root *layer.Root, v stagehand.View, from, to int32) error {
	node := v.Base().Node()
	start := time.Now()
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	for {
		t := float64(time.Since(start)) / float64(slideDuration)
		if t > 1 {
			t = 1
		}
		x := from + int32(float64(to-from)*t)
		root.Update(func() {
			dx := x - node.Bounds.X
			node.Bounds.X = x
			for _, c := range node.Children() {
				c.Bounds.X += dx
			}
		})
		if t == 1 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

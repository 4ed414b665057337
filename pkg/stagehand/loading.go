package stagehand

import (
	"context"
	"sync"
	"time"
)

// loadingState reference counts loading overlay requests. The overlay is
// shown once for overlapping loads and hidden when the last one ends.
type loadingState struct {
	enabled     bool
	delay       time.Duration
	minShowTime time.Duration

	mu      sync.Mutex
	depth   int
	shown   bool
	shownAt time.Time
	timer   *time.Timer
}

// beginLoading registers a load that wants the overlay and returns the
// function that ends it. The overlay appears after the configured delay if
// the load is still running. The end function waits out the minimum show
// time before hiding. The overlay factory never runs under the loading lock.
func (m *Manager) beginLoading(layerName string) func(ctx context.Context) {
	ls := &m.loading

	ls.mu.Lock()
	ls.depth++
	first := ls.depth == 1 && !ls.shown
	if first && ls.delay > 0 {
		ls.timer = time.AfterFunc(ls.delay, func() { m.showLoading(layerName) })
	}
	ls.mu.Unlock()

	if first && ls.delay <= 0 {
		m.showLoading(layerName)
	}

	var once sync.Once
	return func(ctx context.Context) {
		once.Do(func() { m.endLoading(ctx) })
	}
}

func (m *Manager) showLoading(layerName string) {
	if err := m.root.PrepareLoading(context.Background()); err != nil {
		m.logger.Warn("Cannot create loading overlay", "error", err)
		return
	}

	ls := &m.loading
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.depth == 0 || ls.shown {
		return
	}
	if err := m.root.ShowLoading(context.Background(), layerName); err != nil {
		m.logger.Warn("Cannot show loading overlay", "layer", layerName, "error", err)
		return
	}
	ls.shown = true
	ls.shownAt = time.Now()
}

func (m *Manager) endLoading(ctx context.Context) {
	ls := &m.loading

	ls.mu.Lock()
	ls.depth--
	if ls.depth > 0 {
		ls.mu.Unlock()
		return
	}
	if ls.timer != nil {
		ls.timer.Stop()
		ls.timer = nil
	}
	if !ls.shown {
		ls.mu.Unlock()
		return
	}
	wait := ls.minShowTime - time.Since(ls.shownAt)
	ls.mu.Unlock()

	if wait > 0 {
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
		case <-t.C:
		}
		t.Stop()
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	// a new load may have started while we waited
	if ls.depth == 0 && ls.shown {
		m.root.HideLoading()
		ls.shown = false
	}
}

// LoadingVisible reports whether the loading overlay is on screen.
func (m *Manager) LoadingVisible() bool {
	m.loading.mu.Lock()
	defer m.loading.mu.Unlock()
	return m.loading.shown
}

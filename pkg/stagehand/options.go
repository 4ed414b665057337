package stagehand

import (
	"log/slog"
	"time"
)

// OpenOptions is the configuration a view is opened with. It is stored on
// the view and read back when the view is resumed or the mask is clicked.
type OpenOptions struct {
	Args             any
	Layer            string
	ShowLoading      bool
	ClickToCloseMask bool
}

// OpenOption customizes a single Open or OpenAndPush call.
type OpenOption func(*OpenOptions)

// WithArgs passes args to the view's OnEnter.
func WithArgs(args any) OpenOption {
	return func(o *OpenOptions) { o.Args = args }
}

// WithLayer places the view in the named layer instead of the default.
func WithLayer(name string) OpenOption {
	return func(o *OpenOptions) { o.Layer = name }
}

// WithLoading shows the loading overlay while the view's template loads.
func WithLoading(show bool) OpenOption {
	return func(o *OpenOptions) { o.ShowLoading = show }
}

// WithClickToCloseMask lets a tap on the mask close (or pop) the view.
func WithClickToCloseMask(enabled bool) OpenOption {
	return func(o *OpenOptions) { o.ClickToCloseMask = enabled }
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger. The default is the package logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithCache sets the cache limit and whether LRU eviction runs. A maxSize of
// zero or less disables eviction.
func WithCache(maxSize int, enableLRU bool) ManagerOption {
	return func(m *Manager) {
		m.maxSize = maxSize
		m.enableLRU = enableLRU
	}
}

// WithDefaultLayer sets the layer used when an open call names none.
func WithDefaultLayer(name string) ManagerOption {
	return func(m *Manager) {
		if name != "" {
			m.defaultLayer = name
		}
	}
}

// WithClickToCloseDefault sets the default for WithClickToCloseMask.
func WithClickToCloseDefault(enabled bool) ManagerOption {
	return func(m *Manager) { m.clickToCloseDefault = enabled }
}

// WithLoadingOverlay enables the loading overlay. The overlay shows only for
// loads that run longer than delay, and once shown stays for at least
// minShowTime.
func WithLoadingOverlay(enabled bool, delay, minShowTime time.Duration) ManagerOption {
	return func(m *Manager) {
		m.loading.enabled = enabled
		m.loading.delay = delay
		m.loading.minShowTime = minShowTime
	}
}

// WithPreload sets the keys StartPreload instantiates, and how long it waits
// first.
func WithPreload(keys []string, delay time.Duration) ManagerOption {
	return func(m *Manager) {
		m.preloadKeys = append([]string(nil), keys...)
		m.preloadDelay = delay
	}
}

// Package stagehand provides a view stack and layer manager: it opens,
// closes, stacks, caches and layers on-screen views backed by instantiated
// templates.
//
// The Manager loads views through a Loader, places them into a layer.Root,
// keeps one cached instance per view key with LRU eviction of detached
// entries, and tracks named back-navigation groups. A dimming mask always
// sits directly below the topmost view, and an optional loading overlay
// covers slow loads.
package stagehand

import (
	"log/slog"

	"github.com/BrandonKowalski/stagehand/pkg/stagehand/config"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/internal"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/layer"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/scene"
)

// Options bundles the collaborators Setup wires together.
type Options struct {
	Config   config.Config
	Loader   Loader
	Registry *Registry
	Gate     InputGate            // nil for no input gating
	Root     *scene.Node          // nil creates a fresh root
	Screen   scene.Rect           // bounds of the root and the mask
	Overlay  layer.OverlayFactory // overrides Config.Loading.TemplatePath
	Logger   *slog.Logger         // nil uses the package logger
}

// Setup applies logging settings, builds the layer tree from the config and
// returns a ready Manager. The registry is validated first so a view without
// a template path fails here rather than on first open.
func Setup(opts Options) (*Manager, error) {
	cfg := opts.Config

	if cfg.Log.Path != "" {
		internal.SetLogPath(cfg.Log.Path)
	}
	if cfg.Log.Level != "" {
		internal.SetRawLogLevel(cfg.Log.Level)
	}

	logger := opts.Logger
	if logger == nil {
		logger = internal.GetLogger()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Registry != nil {
		if err := opts.Registry.Validate(); err != nil {
			return nil, err
		}
	}

	overlay := opts.Overlay
	if overlay == nil && cfg.Loading.TemplatePath != "" && opts.Loader != nil {
		overlay = TemplateOverlay(opts.Loader, cfg.Loading.TemplatePath)
	}

	rootOpts := []layer.Option{
		layer.WithLogger(logger),
		layer.WithMaskColor(cfg.Mask.Color.Color),
	}
	if !opts.Screen.IsZero() {
		rootOpts = append(rootOpts, layer.WithScreen(opts.Screen))
	}
	if overlay != nil {
		rootOpts = append(rootOpts, layer.WithOverlayFactory(overlay))
	}

	root := layer.New(opts.Root, rootOpts...)
	root.CreateLayers(cfg.LayerConfigs()...)

	return NewManager(opts.Loader, opts.Registry, opts.Gate, root,
		WithLogger(logger),
		WithCache(cfg.Cache.MaxSize, cfg.Cache.EnableLRU),
		WithDefaultLayer(cfg.DefaultLayer),
		WithClickToCloseDefault(cfg.Mask.ClickToCloseDefault),
		WithLoadingOverlay(cfg.Loading.Enabled, cfg.Loading.Delay.Duration, cfg.Loading.MinShowTime.Duration),
		WithPreload(cfg.Preload.Keys, cfg.Preload.Delay.Duration),
	)
}

// Close releases process wide resources such as the log file.
func Close() {
	internal.CloseLogger()
}

// SetLogPath sets the full path for the log file, including filename.
// Call before Setup or GetLogger to take effect.
func SetLogPath(path string) {
	internal.SetLogPath(path)
}

// GetLogger returns the package logger.
func GetLogger() *slog.Logger {
	return internal.GetLogger()
}

// SetLogLevel sets the minimum log level of the package logger.
func SetLogLevel(level slog.Level) {
	internal.SetLogLevel(level)
}

// SetRawLogLevel parses and sets the log level from a string (e.g., "debug", "info", "error").
func SetRawLogLevel(level string) {
	internal.SetRawLogLevel(level)
}

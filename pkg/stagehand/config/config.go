// Package config loads stagehand settings from TOML.
//
// A minimal file looks like:
//
//	default_layer = "ui"
//	locale = "en"
//
//	[cache]
//	max_size = 8
//	enable_lru = true
//
//	[loading]
//	enabled = true
//	template_path = "common/loading.toml"
//	delay = "150ms"
//	min_show_time = "400ms"
//	caption = "loading"
//
//	[mask]
//	color = "#000000A0"
//	click_to_close_default = true
//
//	[[layers]]
//	name = "ui"
//
//	[[layers]]
//	name = "tip"
//	need_mask = false
//
//	[preload]
//	keys = ["MainMenu", "Settings"]
//	delay = "2s"
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/BrandonKowalski/stagehand/pkg/stagehand/constants"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/layer"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/scene"
)

// Config is the full configuration surface.
type Config struct {
	DefaultLayer string  `toml:"default_layer"`
	Locale       string  `toml:"locale"`
	Cache        Cache   `toml:"cache"`
	Loading      Loading `toml:"loading"`
	Mask         Mask    `toml:"mask"`
	Layers       []Layer `toml:"layers"`
	Preload      Preload `toml:"preload"`
	Log          Log     `toml:"log"`
}

// Cache configures the view instance cache.
type Cache struct {
	MaxSize   int  `toml:"max_size"`
	EnableLRU bool `toml:"enable_lru"`
}

// Loading configures the loading overlay.
type Loading struct {
	Enabled      bool     `toml:"enabled"`
	TemplatePath string   `toml:"template_path"`
	Delay        Duration `toml:"delay"`         // overlay appears only for loads slower than this
	MinShowTime  Duration `toml:"min_show_time"` // once shown, the overlay stays at least this long
	Caption      string   `toml:"caption"`       // message ID of the overlay caption
}

// Mask configures the dimming mask.
type Mask struct {
	Color               Color `toml:"color"`
	ClickToCloseDefault bool  `toml:"click_to_close_default"`
}

// Layer is one entry of the layer list. NeedMask defaults to true.
type Layer struct {
	Name     string `toml:"name"`
	NeedMask *bool  `toml:"need_mask"`
}

// Preload lists views instantiated ahead of need.
type Preload struct {
	Keys  []string `toml:"keys"`
	Delay Duration `toml:"delay"`
}

// Log configures the process logger.
type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

// Duration is a time.Duration written as a Go duration string ("250ms").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Color is a scene.Color written as "#RRGGBB" or "#RRGGBBAA".
type Color struct {
	scene.Color
}

func (c *Color) UnmarshalText(text []byte) error {
	v, err := scene.ParseColor(string(text))
	if err != nil {
		return err
	}
	c.Color = v
	return nil
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Color.String()), nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DefaultLayer: constants.DefaultLayer,
		Locale:       constants.DefaultLocale,
		Cache: Cache{
			MaxSize:   constants.DefaultCacheSize,
			EnableLRU: true,
		},
		Loading: Loading{
			Enabled:     true,
			Delay:       Duration{constants.DefaultLoadingDelay},
			MinShowTime: Duration{constants.DefaultLoadingMinShowTime},
			Caption:     "loading",
		},
		Mask: Mask{
			Color:               Color{scene.DefaultMaskColor},
			ClickToCloseDefault: false,
		},
		Layers: []Layer{
			{Name: constants.LayerScene, NeedMask: boolPtr(false)},
			{Name: constants.LayerUI},
			{Name: constants.LayerPopup},
			{Name: constants.LayerTip, NeedMask: boolPtr(false)},
			{Name: constants.LayerSystem},
		},
		Preload: Preload{
			Delay: Duration{constants.DefaultPreloadDelay},
		},
		Log: Log{Level: "warn"},
	}
}

// Load reads and validates a TOML file. Fields missing from the file keep
// their Default values, except layers, which replace the default list when
// present.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates TOML data.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	defaultLayers := cfg.Layers
	cfg.Layers = nil

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config: unknown keys %v", undecoded)
	}
	if !md.IsDefined("layers") {
		cfg.Layers = defaultLayers
	}

	if level := os.Getenv(constants.LogLevelEnvVar); level != "" {
		cfg.Log.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	var errs []error

	if c.Cache.MaxSize < 0 {
		errs = append(errs, fmt.Errorf("cache.max_size must not be negative, got %d", c.Cache.MaxSize))
	}
	if c.Loading.Delay.Duration < 0 || c.Loading.MinShowTime.Duration < 0 || c.Preload.Delay.Duration < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}

	seen := make(map[string]bool, len(c.Layers))
	for i, l := range c.Layers {
		if l.Name == "" {
			errs = append(errs, fmt.Errorf("layers[%d] has no name", i))
			continue
		}
		if seen[l.Name] {
			errs = append(errs, fmt.Errorf("layer %q declared twice", l.Name))
		}
		seen[l.Name] = true
	}
	if c.DefaultLayer == "" {
		errs = append(errs, errors.New("default_layer is empty"))
	} else if len(c.Layers) > 0 && !seen[c.DefaultLayer] {
		errs = append(errs, fmt.Errorf("default_layer %q is not a declared layer", c.DefaultLayer))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// LayerConfigs converts the layer list for layer.Root.CreateLayers.
func (c Config) LayerConfigs() []layer.Config {
	out := make([]layer.Config, 0, len(c.Layers))
	for _, l := range c.Layers {
		needMask := true
		if l.NeedMask != nil {
			needMask = *l.NeedMask
		}
		out = append(out, layer.Config{Name: l.Name, NeedMask: needMask})
	}
	return out
}

func boolPtr(b bool) *bool {
	return &b
}

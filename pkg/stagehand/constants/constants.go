// Package constants defines shared defaults and environment switches used
// throughout stagehand.
package constants

import (
	"os"
	"time"
)

// Development is the environment variable value for development mode.
const Development = "DEV"

// LogLevelEnvVar overrides the configured log level when set.
const LogLevelEnvVar = "STAGEHAND_LOG_LEVEL"

// TouchDeviceEnvVar names the evdev touch device used for input gating.
const TouchDeviceEnvVar = "STAGEHAND_TOUCH_DEVICE"

// Window size overrides honored in development mode.
const (
	WindowWidthEnvVar  = "WINDOW_WIDTH"
	WindowHeightEnvVar = "WINDOW_HEIGHT"
)

// IsDevMode returns true if running in development mode (ENVIRONMENT=DEV).
func IsDevMode() bool {
	return os.Getenv("ENVIRONMENT") == Development
}

// Layer names created by config.Default.
const (
	LayerScene  = "scene"
	LayerUI     = "ui"
	LayerPopup  = "popup"
	LayerTip    = "tip"
	LayerSystem = "system"
)

// DefaultLayer receives views opened without an explicit layer.
const DefaultLayer = LayerUI

// Node names reserved by the layer root.
const (
	MaskNodeName    = "__mask"
	LoadingNodeName = "__loading"
)

// Cache and timing defaults.
const (
	DefaultCacheSize          = 10
	DefaultLoadingDelay       = 0 * time.Millisecond
	DefaultLoadingMinShowTime = 300 * time.Millisecond
	DefaultPreloadDelay       = 1 * time.Second
	DefaultLocale             = "en"
)

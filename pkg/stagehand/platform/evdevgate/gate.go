// Package evdevgate blocks touch input on Linux by taking an exclusive grab
// on the touch screen's evdev device. While grabbed, no other reader (the
// display server, SDL) receives its events.
package evdevgate

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	evdev "github.com/holoplot/go-evdev"

	"github.com/BrandonKowalski/stagehand/pkg/stagehand"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/constants"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/internal"
)

// ErrNoDevice is returned when no touch device can be found.
var ErrNoDevice = errors.New("evdevgate: no touch device")

// Gate grabs and releases one input device.
type Gate struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	dev     *evdev.InputDevice
	grabbed bool
}

var _ stagehand.InputGate = (*Gate)(nil)

// Open opens the device at path. An empty path falls back to the
// STAGEHAND_TOUCH_DEVICE environment variable, then to the first device
// whose name mentions "touch".
func Open(path string) (*Gate, error) {
	if path == "" {
		path = os.Getenv(constants.TouchDeviceEnvVar)
	}
	if path == "" {
		found, err := FindTouchDevice()
		if err != nil {
			return nil, err
		}
		path = found
	}

	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("evdevgate: open %s: %w", path, err)
	}

	logger := internal.GetLogger()
	if name, err := dev.Name(); err == nil {
		logger.Debug("Touch device opened", "path", path, "name", name)
	}

	return &Gate{path: path, logger: logger, dev: dev}, nil
}

// FindTouchDevice returns the path of the first input device whose name
// contains "touch", case insensitive.
func FindTouchDevice() (string, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return "", fmt.Errorf("evdevgate: list devices: %w", err)
	}
	for _, p := range paths {
		if strings.Contains(strings.ToLower(p.Name), "touch") {
			return p.Path, nil
		}
	}
	return "", ErrNoDevice
}

// Path returns the device path.
func (g *Gate) Path() string {
	return g.path
}

// BlockAllPointerInput grabs the device when on and releases it otherwise.
// Failures are logged; input then stays as it was.
func (g *Gate) BlockAllPointerInput(on bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dev == nil || on == g.grabbed {
		return
	}

	var err error
	if on {
		err = g.dev.Grab()
	} else {
		err = g.dev.Ungrab()
	}
	if err != nil {
		g.logger.Warn("Touch grab toggle failed", "path", g.path, "grab", on, "error", err)
		return
	}
	g.grabbed = on
}

// Grabbed reports whether the device is currently grabbed.
func (g *Gate) Grabbed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.grabbed
}

// Close releases the grab, if held, and closes the device.
func (g *Gate) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dev == nil {
		return nil
	}
	if g.grabbed {
		_ = g.dev.Ungrab()
		g.grabbed = false
	}
	err := g.dev.Close()
	g.dev = nil
	return err
}

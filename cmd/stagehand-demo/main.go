// Command stagehand-demo opens an SDL window with a main menu, a pushable
// settings view and a confirm dialog.
//
//	s        push Settings onto the "main" group
//	d        open the confirm dialog (tap the mask to close it)
//	escape   pop the "main" group
//	q        close everything and quit
package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"github.com/veandco/go-sdl2/ttf"

	"github.com/BrandonKowalski/stagehand/pkg/stagehand"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/config"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/constants"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/loader"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/platform/evdevgate"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/platform/sdlhost"
)

//go:embed assets
var assets embed.FS

const mainGroup = "main"

func init() {
	// SDL wants the main thread
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to a stagehand TOML config (default: built-in)")
	fontPath := flag.String("font", "", "TTF font for the loading caption")
	touch := flag.Bool("touch-grab", false, "also gate input by grabbing the evdev touch device")
	flag.Parse()

	defer stagehand.Close()
	logger := stagehand.GetLogger()

	if err := run(*configPath, *fontPath, *touch); err != nil {
		logger.Error("Demo failed", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	data, err := assets.ReadFile("assets/stagehand.toml")
	if err != nil {
		return config.Config{}, err
	}
	return config.Parse(data)
}

func run(configPath, fontPath string, touch bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if err := sdlhost.Init(); err != nil {
		return err
	}
	defer sdlhost.Quit()

	window, err := sdlhost.NewWindow("stagehand", sdlhost.WindowOptions{Resizable: true})
	if err != nil {
		return err
	}

	var font *ttf.Font
	if fontPath != "" {
		if font, err = ttf.OpenFont(fontPath, 28); err != nil {
			return err
		}
		defer font.Close()
	}

	sdlGate := sdlhost.NewGate()
	gates := gateSet{sdlGate}
	if touch {
		g, err := evdevgate.Open("")
		if err != nil {
			stagehand.GetLogger().Warn("Touch gate unavailable", "error", err)
		} else {
			defer g.Close()
			gates = append(gates, g)
		}
	}

	views, err := fs.Sub(assets, "assets")
	if err != nil {
		return err
	}

	overlay, err := sdlhost.NewOverlay(window, sdlhost.OverlayOptions{
		Font:    font,
		Locale:  cfg.Locale,
		Caption: cfg.Loading.Caption,
		Dim:     cfg.Mask.Color.Color,
	})
	if err != nil {
		return err
	}
	defer overlay.Destroy()

	st := &stage{}
	m, err := stagehand.Setup(stagehand.Options{
		Config:   cfg,
		Loader:   loader.New(views),
		Registry: registry(st),
		Gate:     gates,
		Screen:   window.Bounds(),
		Overlay:  overlay.Factory(),
	})
	if err != nil {
		return err
	}
	st.root = m.Root()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := m.Open(ctx, "MainMenu", stagehand.WithLayer(constants.LayerScene)); err != nil {
		return err
	}
	m.StartPreload(ctx)

	host := sdlhost.New(window, m, sdlGate)
	defer host.Close()

	quit := make(chan struct{})
	err = host.Run(ctx, func(ev sdl.Event) {
		key, ok := ev.(*sdl.KeyboardEvent)
		if !ok || key.Type != sdl.KEYDOWN || key.Repeat != 0 {
			return
		}
		switch key.Keysym.Sym {
		case sdl.K_s:
			go func() {
				if _, err := m.OpenAndPush(ctx, "Settings", mainGroup, stagehand.WithLoading(true)); err != nil {
					stagehand.GetLogger().Error("Open settings failed", "error", err)
				}
			}()
		case sdl.K_d:
			go func() {
				_, err := m.Open(ctx, "ConfirmDialog",
					stagehand.WithLayer(constants.LayerPopup),
					stagehand.WithClickToCloseMask(true),
					stagehand.WithArgs("Discard changes?"),
				)
				if err != nil {
					stagehand.GetLogger().Error("Open dialog failed", "error", err)
				}
			}()
		case sdl.K_ESCAPE:
			go m.CloseAndPop(ctx, mainGroup, false)
		case sdl.K_q:
			m.CloseAll(true)
			close(quit)
			stop()
		}
	})
	select {
	case <-quit:
		return nil
	default:
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func registry(st *stage) *stagehand.Registry {
	return stagehand.NewRegistry().
		Register("MainMenu", "views/menu.toml", func() stagehand.View { return &menuView{} }).
		Register("Settings", "views/settings.toml", func() stagehand.View { return &settingsView{stage: st} }).
		Register("Dialog", "views/dialog.toml", func() stagehand.View { return &dialogView{} }).
		Extend("ConfirmDialog", "Dialog", func() stagehand.View { return &dialogView{confirm: true} })
}

// gateSet fans one gate toggle out to several gates.
type gateSet []stagehand.InputGate

func (s gateSet) BlockAllPointerInput(on bool) {
	for _, g := range s {
		g.BlockAllPointerInput(on)
	}
}

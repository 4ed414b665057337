package stagehand

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonKowalski/stagehand/pkg/stagehand/config"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/constants"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/scene"
)

func TestSetup(t *testing.T) {
	l := newFakeLoader()
	reg := NewRegistry().Register("Shop", "shop/main", func() View { return &BaseView{} })

	cfg := config.Default()
	cfg.Log.Level = ""
	cfg.Loading.TemplatePath = "common/loading"
	cfg.Loading.MinShowTime = config.Duration{}
	cfg.Mask.ClickToCloseDefault = true

	m, err := Setup(Options{
		Config:   cfg,
		Loader:   l,
		Registry: reg,
		Screen:   scene.Rect{W: 640, H: 480},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	root := m.Root()
	assert.Equal(t, []string{
		constants.LayerScene, constants.LayerUI, constants.LayerPopup, constants.LayerTip, constants.LayerSystem,
	}, root.LayerNames())
	assert.Equal(t, scene.Rect{W: 640, H: 480}, root.Mask().Bounds)

	v, err := m.Open(context.Background(), "Shop", WithLoading(true))
	require.NoError(t, err)
	assert.True(t, v.Base().Options().ClickToCloseMask)
	assert.Equal(t, constants.DefaultLayer, v.Base().Options().Layer)
	assert.Equal(t, 1, l.loadCount("common/loading"))
	assert.False(t, root.LoadingVisible())

	// the overlay is built once and reused
	m.Close(context.Background(), "Shop", true)
	_, err = m.Open(context.Background(), "Shop", WithLoading(true))
	require.NoError(t, err)
	assert.Equal(t, 1, l.loadCount("common/loading"))
}

func TestSetupRejectsBrokenRegistry(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = ""
	reg := NewRegistry().Extend("Orphan", "Missing", func() View { return &BaseView{} })

	_, err := Setup(Options{Config: cfg, Loader: newFakeLoader(), Registry: reg})
	assert.True(t, IsTemplatePathError(err))
}

func TestSetupRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = ""
	cfg.DefaultLayer = "nowhere"

	_, err := Setup(Options{Config: cfg, Loader: newFakeLoader(), Registry: NewRegistry()})
	assert.Error(t, err)
}

func TestSetupRequiresLoader(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = ""

	_, err := Setup(Options{Config: cfg, Registry: NewRegistry()})
	assert.ErrorIs(t, err, ErrNilLoader)
}

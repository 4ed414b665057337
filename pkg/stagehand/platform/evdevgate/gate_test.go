package evdevgate

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingDevice(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "event99"))
	assert.Error(t, err)
}

func TestClosedGateIsInert(t *testing.T) {
	g := &Gate{path: "/dev/input/event1", logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	g.BlockAllPointerInput(true)
	assert.False(t, g.Grabbed())

	require.NoError(t, g.Close())
	require.NoError(t, g.Close())
	assert.Equal(t, "/dev/input/event1", g.Path())
}

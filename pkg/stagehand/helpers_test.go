package stagehand

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BrandonKowalski/stagehand/pkg/stagehand/constants"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/layer"
	"github.com/BrandonKowalski/stagehand/pkg/stagehand/scene"
)

type fakeTemplate struct {
	path string
}

func (t fakeTemplate) Instantiate() (*scene.Node, error) {
	n := scene.New(t.path)
	n.Bounds = scene.Rect{X: 100, Y: 100, W: 200, H: 200}
	return n, nil
}

// fakeLoader counts loads and releases per path. Setting block makes every
// Load wait until the channel is closed.
type fakeLoader struct {
	mu       sync.Mutex
	loads    map[string]int
	releases map[string]int
	fail     map[string]error
	block    chan struct{}
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		loads:    make(map[string]int),
		releases: make(map[string]int),
		fail:     make(map[string]error),
	}
}

func (l *fakeLoader) Load(ctx context.Context, path string) (Template, error) {
	l.mu.Lock()
	block := l.block
	l.mu.Unlock()
	if block != nil {
		<-block
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads[path]++
	if err := l.fail[path]; err != nil {
		return nil, err
	}
	return fakeTemplate{path: path}, nil
}

func (l *fakeLoader) Release(path string, force bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releases[path]++
}

func (l *fakeLoader) loadCount(path string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads[path]
}

func (l *fakeLoader) releaseCount(path string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.releases[path]
}

func (l *fakeLoader) setBlock(ch chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.block = ch
}

func (l *fakeLoader) setFail(path string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err == nil {
		delete(l.fail, path)
		return
	}
	l.fail[path] = err
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *eventLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

// recView records every lifecycle call and animation into a shared log.
type recView struct {
	BaseView
	log     *eventLog
	onEnter func(args any)
}

func (v *recView) OnEnter(args any) {
	if args != nil {
		v.log.add("%s:enter(%v)", v.Key(), args)
	} else {
		v.log.add("%s:enter", v.Key())
	}
	if v.onEnter != nil {
		v.onEnter(args)
	}
}

func (v *recView) OnExit()   { v.log.add("%s:exit", v.Key()) }
func (v *recView) OnPause()  { v.log.add("%s:pause", v.Key()) }
func (v *recView) OnResume() { v.log.add("%s:resume", v.Key()) }

func (v *recView) EnterAnimation(ctx context.Context) error {
	v.log.add("%s:animIn", v.Key())
	return nil
}

func (v *recView) ExitAnimation(ctx context.Context) error {
	v.log.add("%s:animOut", v.Key())
	return nil
}

type recordingGate struct {
	mu    sync.Mutex
	calls []bool
}

func (g *recordingGate) BlockAllPointerInput(on bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, on)
}

func (g *recordingGate) all() []bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]bool(nil), g.calls...)
}

type harness struct {
	m      *Manager
	loader *fakeLoader
	reg    *Registry
	gate   *recordingGate
	root   *layer.Root
	log    *eventLog
	out    *bytes.Buffer
}

func (h *harness) register(keys ...string) {
	for _, key := range keys {
		h.reg.Register(key, "views/"+key, func() View { return &recView{log: h.log} })
	}
}

func newHarness(t *testing.T, opts ...ManagerOption) *harness {
	t.Helper()

	h := &harness{
		loader: newFakeLoader(),
		reg:    NewRegistry(),
		gate:   &recordingGate{},
		log:    &eventLog{},
		out:    &bytes.Buffer{},
	}
	logger := slog.New(slog.NewTextHandler(h.out, nil))

	root := scene.New("root")
	root.Bounds = scene.Rect{W: 1024, H: 768}
	h.root = layer.New(root, layer.WithLogger(logger))
	h.root.CreateLayers(
		layer.Unmasked(constants.LayerScene),
		layer.Masked(constants.LayerUI),
		layer.Masked(constants.LayerPopup),
		layer.Unmasked(constants.LayerTip),
	)

	h.register("ViewX", "ViewY", "ViewA", "ViewB", "ViewC")

	all := append([]ManagerOption{WithLogger(logger)}, opts...)
	m, err := NewManager(h.loader, h.reg, h.gate, h.root, all...)
	require.NoError(t, err)
	h.m = m
	return h
}
